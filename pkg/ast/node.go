// Package ast defines the binary syntax tree produced by the parser.
//
// Every construct is built from the same Node type. The kind of a node fixes
// how its payload reads and how its two children are used:
//
//	construct        node               Left                    Right
//	statement link   SEP(EndLine)       previous link or nil    statement
//	function         DECL(Func)         signature               body block
//	signature        SEP(BeginParams)   VAR(name)               parameter links
//	parameter link   SEP(EndParams)     previous link or nil    VAR(param)
//	block            SEP(BeginBody)     statement links or nil  nil
//	if               KW(If)             KW(Else) branches       condition
//	branches         KW(Else)           then                    else or nil
//	while            KW(While)          body                    condition
//	assignment       OP(Assign)         VAR(target)             value
//	var declaration  DECL(Var)          OP(Assign)              nil
//	return, print    KW(Return/Print)   expression              nil
//	scan             KW(Scan)           VAR(target)             nil
//	binary operator  OP(op)             left operand            right operand
//	square root      OP(Sqrt)           operand                 nil
//	call             SEP(BeginExpr)     VAR(callee)             argument links
//	argument link    SEP(EndExpr)       previous link or nil    argument
//
// Lists (statements, parameters, arguments) grow to the right: each new link
// takes the previous link as Left and the new item as Right, so an in-order
// walk visits the items in source order.
package ast

import (
	"fmt"

	"lectern/pkg/syntax"
)

// Kind tags a Node.
type Kind uint8

const (
	Number Kind = iota
	Variable
	Declarator
	Keyword
	Separator
	Operator
)

var kindNames = [...]string{
	Number:     "NUM",
	Variable:   "VAR",
	Declarator: "DECL",
	Keyword:    "KW",
	Separator:  "SEP",
	Operator:   "OP",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindByName is the inverse of Kind.String.
func KindByName(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

// IsLeaf reports whether nodes of kind k never have children.
func (k Kind) IsLeaf() bool { return k == Number || k == Variable }

// Node is a tree node. Kind and payload are fixed at construction; a node
// owns its children.
type Node struct {
	kind  Kind
	value int64

	Left  *Node
	Right *Node
}

// NewNumber returns a literal leaf.
func NewNumber(v int64) *Node { return &Node{kind: Number, value: v} }

// NewVariable returns an identifier leaf holding a name-table index.
func NewVariable(index int) *Node { return &Node{kind: Variable, value: int64(index)} }

func NewDecl(d syntax.Declarator, left, right *Node) *Node {
	return &Node{kind: Declarator, value: int64(d), Left: left, Right: right}
}

func NewKeyword(k syntax.Keyword, left, right *Node) *Node {
	return &Node{kind: Keyword, value: int64(k), Left: left, Right: right}
}

func NewSep(s syntax.Separator, left, right *Node) *Node {
	return &Node{kind: Separator, value: int64(s), Left: left, Right: right}
}

func NewOp(o syntax.Operator, left, right *Node) *Node {
	return &Node{kind: Operator, value: int64(o), Left: left, Right: right}
}

func (n *Node) Kind() Kind { return n.kind }

// NumberValue returns the literal held by a Number node.
func (n *Node) NumberValue() (int64, bool) {
	if n == nil || n.kind != Number {
		return 0, false
	}
	return n.value, true
}

// NameIndex returns the name-table index held by a Variable node.
func (n *Node) NameIndex() (int, bool) {
	if n == nil || n.kind != Variable {
		return 0, false
	}
	return int(n.value), true
}

func (n *Node) Declarator() (syntax.Declarator, bool) {
	if n == nil || n.kind != Declarator {
		return 0, false
	}
	return syntax.Declarator(n.value), true
}

func (n *Node) Keyword() (syntax.Keyword, bool) {
	if n == nil || n.kind != Keyword {
		return 0, false
	}
	return syntax.Keyword(n.value), true
}

func (n *Node) Separator() (syntax.Separator, bool) {
	if n == nil || n.kind != Separator {
		return 0, false
	}
	return syntax.Separator(n.value), true
}

func (n *Node) Operator() (syntax.Operator, bool) {
	if n == nil || n.kind != Operator {
		return 0, false
	}
	return syntax.Operator(n.value), true
}

// IsOp reports whether n is an operator node for op.
func (n *Node) IsOp(op syntax.Operator) bool {
	got, ok := n.Operator()
	return ok && got == op
}

// IsNumber reports whether n is a Number leaf holding v.
func (n *Node) IsNumber(v int64) bool {
	got, ok := n.NumberValue()
	return ok && got == v
}

// Payload returns the raw payload, for serializers that already switched on Kind.
func (n *Node) Payload() int64 { return n.value }

// Code returns the catalog name of a Declarator, Keyword, Separator or
// Operator node, e.g. "Add" or "BeginBody".
func (n *Node) Code() string {
	switch n.kind {
	case Declarator:
		return syntax.Declarator(n.value).String()
	case Keyword:
		return syntax.Keyword(n.value).String()
	case Separator:
		return syntax.Separator(n.value).String()
	case Operator:
		return syntax.Operator(n.value).String()
	}
	return ""
}

// String renders the subtree in the compact form (KIND payload left right),
// without name resolution.
func (n *Node) String() string {
	if n == nil {
		return "_"
	}
	switch n.kind {
	case Number:
		return fmt.Sprintf("%d", n.value)
	case Variable:
		return fmt.Sprintf("$%d", n.value)
	}
	return fmt.Sprintf("(%s %s %s %s)", n.kind, n.Code(), n.Left, n.Right)
}

// Size counts the nodes of the subtree rooted at n.
func (n *Node) Size() int {
	if n == nil {
		return 0
	}
	return 1 + n.Left.Size() + n.Right.Size()
}

// Depth returns the number of levels of the subtree rooted at n.
func (n *Node) Depth() int {
	if n == nil {
		return 0
	}
	return 1 + max(n.Left.Depth(), n.Right.Depth())
}

// Walk visits the subtree in pre-order, calling fn with each node and its depth.
// Walking stops early when fn returns false for a node; its children are skipped.
func Walk(n *Node, fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	walk(n.Left, depth+1, fn)
	walk(n.Right, depth+1, fn)
}

// Equal reports whether a and b have the same shape, kinds and payloads.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.kind != b.kind || a.value != b.value {
		return false
	}
	return Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
}

// Clone returns a deep copy of the subtree rooted at n.
func Clone(n *Node) *Node {
	if n == nil {
		return nil
	}
	return &Node{kind: n.kind, value: n.value, Left: Clone(n.Left), Right: Clone(n.Right)}
}

// List collects the items of a link chain (see the package comment) in
// source order.
func List(links *Node) []*Node {
	var items []*Node
	for l := links; l != nil; l = l.Left {
		items = append(items, l.Right)
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	return items
}

// Link appends item to the chain ending at last and returns the new last link.
func Link(sep syntax.Separator, last, item *Node) *Node {
	return NewSep(sep, last, item)
}
