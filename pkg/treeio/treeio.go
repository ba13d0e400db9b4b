// Package treeio reads and writes syntax trees in a small s-expression format:
//
//	names {
//	  "f" 1
//	  "x" -1
//	}
//	(SEP EndLine _
//	  (DECL Func
//	    (SEP BeginParams (VAR "f") (SEP EndParams _ (VAR "x")))
//	    (SEP BeginBody _ _)))
//
// The names block lists the name table in index order with each slot's
// parameter count (-1 for none). A node is _ (absent), a leaf (NUM value) or
// (VAR "name"), or (KIND Code left right) for the other kinds.
package treeio

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"lectern/pkg/ast"
	"lectern/pkg/nametable"
	"lectern/pkg/syntax"
)

// Format renders tree in the text format.
func Format(tree *ast.Tree) string {
	var sb strings.Builder
	sb.WriteString("names {\n")
	for i := 0; i < tree.Names.Len(); i++ {
		n, ok := tree.Names.ParameterCount(i)
		if !ok {
			n = -1
		}
		fmt.Fprintf(&sb, "  %s %d\n", strconv.Quote(tree.Names.Name(i)), n)
	}
	sb.WriteString("}\n")
	writeNode(&sb, tree, tree.Root, 0)
	sb.WriteByte('\n')
	return sb.String()
}

// Write writes Format(tree) to w.
func Write(w io.Writer, tree *ast.Tree) error {
	_, err := io.WriteString(w, Format(tree))
	return err
}

func writeNode(sb *strings.Builder, tree *ast.Tree, n *ast.Node, depth int) {
	if n == nil {
		sb.WriteByte('_')
		return
	}
	switch n.Kind() {
	case ast.Number:
		v, _ := n.NumberValue()
		fmt.Fprintf(sb, "(NUM %d)", v)
		return
	case ast.Variable:
		fmt.Fprintf(sb, "(VAR %s)", strconv.Quote(tree.VarName(n)))
		return
	}
	fmt.Fprintf(sb, "(%s %s", n.Kind(), n.Code())
	for _, child := range []*ast.Node{n.Left, n.Right} {
		if child == nil || child.Kind().IsLeaf() {
			sb.WriteByte(' ')
		} else {
			sb.WriteByte('\n')
			sb.WriteString(strings.Repeat("  ", depth+1))
		}
		writeNode(sb, tree, child, depth+1)
	}
	sb.WriteByte(')')
}

var treeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `-?\d+`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9]*`},
	{Name: "Punct", Pattern: `[(){}_]`},
})

var treeParser = participle.MustBuild[treeFile](
	participle.Lexer(treeLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
)

type treeFile struct {
	Names []*nameEntry `"names" "{" @@* "}"`
	Root  *treeNode    `@@`
}

type nameEntry struct {
	Pos    lexer.Position
	Name   string `@String`
	Params int    `@Int`
}

type treeNode struct {
	Pos   lexer.Position
	Nil   bool       `  @"_"`
	Inner *innerNode `| "(" @@ ")"`
}

type innerNode struct {
	Pos    lexer.Position
	Kind   string    `@("NUM" | "VAR" | "DECL" | "KW" | "SEP" | "OP")`
	Number *int64    `( @Int`
	Name   *string   `| @String`
	Code   *string   `| @Ident )`
	Left   *treeNode `( @@`
	Right  *treeNode `  @@ )?`
}

// Read parses the text format and rebuilds the tree with its name table.
func Read(r io.Reader) (*ast.Tree, error) {
	file, err := treeParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("treeio: %w", err)
	}
	return build(file)
}

// ReadString is Read over a string.
func ReadString(text string) (*ast.Tree, error) {
	return Read(strings.NewReader(text))
}

func build(file *treeFile) (*ast.Tree, error) {
	names := nametable.New()
	for _, e := range file.Names {
		if _, dup := names.Find(e.Name); dup {
			return nil, fmt.Errorf("treeio: %s: duplicate name %q", e.Pos, e.Name)
		}
		idx, err := names.Insert(e.Name)
		if err != nil {
			return nil, fmt.Errorf("treeio: %s: %w", e.Pos, err)
		}
		if e.Params >= 0 {
			if err := names.SetParameterCount(idx, e.Params); err != nil {
				return nil, fmt.Errorf("treeio: %s: %w", e.Pos, err)
			}
		}
	}
	tree := ast.NewTree(names)
	root, err := buildNode(tree, file.Root)
	if err != nil {
		return nil, err
	}
	tree.Root = root
	if err := tree.Validate(); err != nil {
		return nil, fmt.Errorf("treeio: %w", err)
	}
	return tree, nil
}

func buildNode(tree *ast.Tree, tn *treeNode) (*ast.Node, error) {
	if tn == nil || tn.Nil {
		return nil, nil
	}
	in := tn.Inner
	kind, _ := ast.KindByName(in.Kind)
	if kind.IsLeaf() && (in.Left != nil || in.Right != nil) {
		return nil, fmt.Errorf("treeio: %s: %s leaf with children", in.Pos, in.Kind)
	}

	switch kind {
	case ast.Number:
		if in.Number == nil {
			return nil, fmt.Errorf("treeio: %s: NUM needs an integer", in.Pos)
		}
		return ast.NewNumber(*in.Number), nil
	case ast.Variable:
		if in.Name == nil {
			return nil, fmt.Errorf("treeio: %s: VAR needs a quoted name", in.Pos)
		}
		idx, ok := tree.Names.Find(*in.Name)
		if !ok {
			return nil, fmt.Errorf("treeio: %s: name %q not in names block", in.Pos, *in.Name)
		}
		return ast.NewVariable(idx), nil
	}

	if in.Code == nil {
		return nil, fmt.Errorf("treeio: %s: %s needs a code name", in.Pos, in.Kind)
	}
	left, err := buildNode(tree, in.Left)
	if err != nil {
		return nil, err
	}
	right, err := buildNode(tree, in.Right)
	if err != nil {
		return nil, err
	}

	code := *in.Code
	bad := fmt.Errorf("treeio: %s: unknown %s code %q", in.Pos, in.Kind, code)
	switch kind {
	case ast.Declarator:
		d, ok := syntax.DeclaratorByName(code)
		if !ok {
			return nil, bad
		}
		return ast.NewDecl(d, left, right), nil
	case ast.Keyword:
		k, ok := syntax.KeywordByName(code)
		if !ok {
			return nil, bad
		}
		return ast.NewKeyword(k, left, right), nil
	case ast.Separator:
		s, ok := syntax.SeparatorByName(code)
		if !ok {
			return nil, bad
		}
		return ast.NewSep(s, left, right), nil
	default:
		o, ok := syntax.OperatorByName(code)
		if !ok {
			return nil, bad
		}
		return ast.NewOp(o, left, right), nil
	}
}
