// Package printer turns a syntax tree back into program text in a chosen
// vocabulary. Lexing and parsing the output of Source reproduces the tree,
// including name indices, because names are printed in the order the lexer
// first met them.
package printer

import (
	"fmt"
	"strconv"
	"strings"

	"lectern/pkg/ast"
	"lectern/pkg/syntax"
)

const indentWidth = 4

type printer struct {
	tree   *ast.Tree
	vocab  *syntax.Vocabulary
	sb     strings.Builder
	indent int
	fresh  bool // nothing written on the current line yet
}

// Source prints tree in vocab, one statement per line.
func Source(tree *ast.Tree, vocab *syntax.Vocabulary) (string, error) {
	p := &printer{tree: tree, vocab: vocab, fresh: true}
	if err := p.checkNames(); err != nil {
		return "", err
	}
	for _, item := range ast.List(tree.Root) {
		if err := p.stmt(item); err != nil {
			return "", err
		}
	}
	return p.sb.String(), nil
}

// checkNames rejects names the target vocabulary would lex as something else.
func (p *printer) checkNames() error {
	v := p.vocab
	for i := 0; i < p.tree.Names.Len(); i++ {
		name := p.tree.Names.Name(i)
		_, isDecl := v.LookupDeclarator(name)
		_, isKeyword := v.LookupKeyword(name)
		_, isOp := v.LookupOperator(name)
		_, isSep := v.LookupSeparator(name)
		if isDecl || isKeyword || isOp || isSep || v.IsFiller(name) {
			return fmt.Errorf("printer: name %q is a reserved word in vocabulary %s", name, v.Name)
		}
	}
	return nil
}

func (p *printer) word(w string) {
	if p.fresh {
		p.sb.WriteString(strings.Repeat(" ", p.indent*indentWidth))
		p.fresh = false
	} else {
		p.sb.WriteByte(' ')
	}
	p.sb.WriteString(w)
}

func (p *printer) words(ws []string) {
	for _, w := range ws {
		p.word(w)
	}
}

func (p *printer) newline() {
	if !p.fresh {
		p.sb.WriteByte('\n')
		p.fresh = true
	}
}

func (p *printer) missing(what fmt.Stringer) error {
	return fmt.Errorf("printer: vocabulary %s has no spelling for %s", p.vocab.Name, what)
}

func (p *printer) sep(s syntax.Separator) (string, error) {
	if text, ok := p.vocab.SpellSeparator(s); ok {
		return text, nil
	}
	return "", p.missing(s)
}

func (p *printer) keyword(k syntax.Keyword) (string, error) {
	if text, ok := p.vocab.SpellKeyword(k); ok {
		return text, nil
	}
	return "", p.missing(k)
}

func (p *printer) op(o syntax.Operator) (string, error) {
	if text, ok := p.vocab.SpellOperator(o); ok {
		return text, nil
	}
	return "", p.missing(o)
}

func (p *printer) decl(d syntax.Declarator) (string, error) {
	if text, ok := p.vocab.SpellDeclarator(d); ok {
		return text, nil
	}
	return "", p.missing(d)
}

func (p *printer) name(n *ast.Node) (string, error) {
	if _, ok := n.NameIndex(); !ok {
		return "", fmt.Errorf("printer: expected a variable, found %s", n)
	}
	return p.tree.VarName(n), nil
}

// terminate writes the end-of-statement separator and ends the line.
func (p *printer) terminate() error {
	end, err := p.sep(syntax.EndLine)
	if err != nil {
		return err
	}
	p.word(end)
	p.newline()
	return nil
}

func (p *printer) stmt(n *ast.Node) error {
	if n == nil {
		return fmt.Errorf("printer: missing statement")
	}
	if d, ok := n.Declarator(); ok {
		if d == syntax.FuncDecl {
			return p.function(n)
		}
		text, err := p.decl(d)
		if err != nil {
			return err
		}
		p.word(text)
		if err := p.assignment(n.Left); err != nil {
			return err
		}
		return p.terminate()
	}
	if n.IsOp(syntax.Assign) {
		if err := p.assignment(n); err != nil {
			return err
		}
		return p.terminate()
	}
	if s, ok := n.Separator(); ok && s == syntax.BeginBody {
		return p.block(n)
	}
	k, ok := n.Keyword()
	if !ok {
		return fmt.Errorf("printer: %s is not a statement", n)
	}
	text, err := p.keyword(k)
	if err != nil {
		return err
	}
	switch k {
	case syntax.If:
		return p.ifStmt(text, n)
	case syntax.While:
		return p.conditional(text, n.Right, n.Left)
	case syntax.Scan:
		target, err := p.name(n.Left)
		if err != nil {
			return err
		}
		p.word(text)
		p.word(target)
		return p.terminate()
	case syntax.Return, syntax.Print:
		p.word(text)
		if err := p.expr(n.Left); err != nil {
			return err
		}
		return p.terminate()
	}
	return fmt.Errorf("printer: keyword %s is not a statement", k)
}

func (p *printer) function(n *ast.Node) error {
	sig := n.Left
	if s, ok := sig.Separator(); !ok || s != syntax.BeginParams {
		return fmt.Errorf("printer: function without signature: %s", n)
	}
	text, err := p.decl(syntax.FuncDecl)
	if err != nil {
		return err
	}
	fname, err := p.name(sig.Left)
	if err != nil {
		return err
	}
	open, err := p.sep(syntax.BeginParams)
	if err != nil {
		return err
	}
	closing, err := p.sep(syntax.EndParams)
	if err != nil {
		return err
	}
	p.words([]string{text, fname, open})
	for _, param := range ast.List(sig.Right) {
		pname, err := p.name(param)
		if err != nil {
			return err
		}
		p.word(pname)
	}
	p.word(closing)
	return p.block(n.Right)
}

func (p *printer) block(n *ast.Node) error {
	if s, ok := n.Separator(); !ok || s != syntax.BeginBody {
		return fmt.Errorf("printer: expected a block, found %s", n)
	}
	open, err := p.sep(syntax.BeginBody)
	if err != nil {
		return err
	}
	closing, err := p.sep(syntax.EndBody)
	if err != nil {
		return err
	}
	p.word(open)
	p.newline()
	p.indent++
	for _, item := range ast.List(n.Left) {
		if err := p.stmt(item); err != nil {
			return err
		}
	}
	p.indent--
	p.word(closing)
	p.newline()
	return nil
}

// conditional prints "keyword cond => body", shared by if and while.
func (p *printer) conditional(keyword string, cond, body *ast.Node) error {
	arrow, err := p.sep(syntax.EndCondition)
	if err != nil {
		return err
	}
	p.word(keyword)
	if err := p.expr(cond); err != nil {
		return err
	}
	p.word(arrow)
	return p.stmt(body)
}

func (p *printer) ifStmt(keyword string, n *ast.Node) error {
	branches := n.Left
	if k, ok := branches.Keyword(); !ok || k != syntax.Else {
		return fmt.Errorf("printer: if without branches: %s", n)
	}
	then, els := branches.Left, branches.Right
	if els != nil && endsInOpenIf(then) {
		return fmt.Errorf("printer: else after an unbraced if cannot be printed unambiguously")
	}
	if err := p.conditional(keyword, n.Right, then); err != nil {
		return err
	}
	if els == nil {
		return nil
	}
	text, err := p.keyword(syntax.Else)
	if err != nil {
		return err
	}
	p.word(text)
	return p.stmt(els)
}

// endsInOpenIf reports whether statement n ends with an if that has no else
// and no braces around it, so that a following else would bind to it.
func endsInOpenIf(n *ast.Node) bool {
	k, ok := n.Keyword()
	if !ok {
		return false
	}
	switch k {
	case syntax.If:
		if n.Left == nil || n.Left.Right == nil {
			return true
		}
		return endsInOpenIf(n.Left.Right)
	case syntax.While:
		return n.Left != nil && endsInOpenIf(n.Left)
	}
	return false
}

func (p *printer) assignment(n *ast.Node) error {
	if !n.IsOp(syntax.Assign) {
		return fmt.Errorf("printer: expected an assignment, found %s", n)
	}
	target, err := p.name(n.Left)
	if err != nil {
		return err
	}
	eq, err := p.op(syntax.Assign)
	if err != nil {
		return err
	}
	p.words([]string{target, eq})
	return p.expr(n.Right)
}

func (p *printer) expr(n *ast.Node) error {
	ws, err := p.exprWords(nil, n, 0)
	if err != nil {
		return err
	}
	p.words(ws)
	return nil
}

// precedence levels of the expression grammar; operands below the level
// their position requires are bracketed.
const (
	precCompare = 1 + iota
	precAddSub
	precMulDiv
	precAtom
)

func precedence(n *ast.Node) int {
	op, ok := n.Operator()
	switch {
	case !ok || op == syntax.Sqrt:
		return precAtom
	case op.IsComparison():
		return precCompare
	case op == syntax.Add || op == syntax.Sub:
		return precAddSub
	}
	return precMulDiv
}

func (p *printer) exprWords(ws []string, n *ast.Node, min int) ([]string, error) {
	if n == nil {
		return nil, fmt.Errorf("printer: missing operand")
	}
	if precedence(n) < min {
		open, err := p.sep(syntax.BeginExpr)
		if err != nil {
			return nil, err
		}
		closing, err := p.sep(syntax.EndExpr)
		if err != nil {
			return nil, err
		}
		ws = append(ws, open)
		if ws, err = p.exprWords(ws, n, 0); err != nil {
			return nil, err
		}
		return append(ws, closing), nil
	}

	switch n.Kind() {
	case ast.Number:
		v, _ := n.NumberValue()
		return append(ws, strconv.FormatInt(v, 10)), nil
	case ast.Variable:
		return append(ws, p.tree.VarName(n)), nil
	case ast.Separator:
		return p.call(ws, n)
	case ast.Operator:
		op, _ := n.Operator()
		text, err := p.op(op)
		if err != nil {
			return nil, err
		}
		if op == syntax.Sqrt {
			return p.sqrt(ws, text, n)
		}
		if op == syntax.Assign {
			return nil, fmt.Errorf("printer: assignment inside an expression")
		}
		prec := precedence(n)
		left, right := prec, prec+1
		if prec == precCompare {
			left, right = precAddSub, precAddSub
		}
		if ws, err = p.exprWords(ws, n.Left, left); err != nil {
			return nil, err
		}
		ws = append(ws, text)
		return p.exprWords(ws, n.Right, right)
	}
	return nil, fmt.Errorf("printer: %s is not an expression", n)
}

func (p *printer) sqrt(ws []string, text string, n *ast.Node) ([]string, error) {
	open, err := p.sep(syntax.BeginExpr)
	if err != nil {
		return nil, err
	}
	closing, err := p.sep(syntax.EndExpr)
	if err != nil {
		return nil, err
	}
	ws = append(ws, text, open)
	if ws, err = p.exprWords(ws, n.Left, precAddSub); err != nil {
		return nil, err
	}
	return append(ws, closing), nil
}

func (p *printer) call(ws []string, n *ast.Node) ([]string, error) {
	if s, _ := n.Separator(); s != syntax.BeginExpr {
		return nil, fmt.Errorf("printer: %s is not an expression", n)
	}
	callee, err := p.name(n.Left)
	if err != nil {
		return nil, err
	}
	open, err := p.sep(syntax.BeginExpr)
	if err != nil {
		return nil, err
	}
	closing, err := p.sep(syntax.EndExpr)
	if err != nil {
		return nil, err
	}
	ws = append(ws, callee, open)

	var prev []string
	for _, arg := range ast.List(n.Right) {
		cur, err := p.exprWords(nil, arg, 0)
		if err != nil {
			return nil, err
		}
		// A name followed by an opening bracket would read as a call.
		if prev != nil && cur[0] == open && p.isName(prev[len(prev)-1]) {
			prev = append(append([]string{open}, prev...), closing)
		}
		ws = append(ws, prev...)
		prev = cur
	}
	ws = append(ws, prev...)
	return append(ws, closing), nil
}

func (p *printer) isName(word string) bool {
	_, ok := p.tree.Names.Find(word)
	return ok
}
