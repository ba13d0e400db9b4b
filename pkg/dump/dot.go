// Package dump renders syntax trees for inspection: graphviz sources, PNG
// pictures, and an HTML log that collects successive snapshots.
//
// Nothing in this package modifies the trees it is given.
package dump

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"lectern/pkg/ast"
	"lectern/pkg/syntax"
)

func tracer() tracing.Trace {
	return tracing.Select("lectern.dump")
}

// Fill colours per node kind, by graphviz colour name and RGB.
var kindColours = [...]struct {
	name string
	rgb  color.RGBA
}{
	ast.Number:     {"lightblue", color.RGBA{173, 216, 230, 255}},
	ast.Variable:   {"lightgreen", color.RGBA{144, 238, 144, 255}},
	ast.Declarator: {"red", color.RGBA{255, 0, 0, 255}},
	ast.Keyword:    {"orange", color.RGBA{255, 165, 0, 255}},
	ast.Separator:  {"pink", color.RGBA{255, 192, 203, 255}},
	ast.Operator:   {"yellow", color.RGBA{255, 255, 0, 255}},
}

// Label is the text shown for n: the literal, the variable name, the
// operator code, or the vocabulary's spelling of a declarator, keyword or
// separator.
func Label(tree *ast.Tree, vocab *syntax.Vocabulary, n *ast.Node) string {
	var (
		text string
		ok   bool
	)
	switch n.Kind() {
	case ast.Number:
		v, _ := n.NumberValue()
		return strconv.FormatInt(v, 10)
	case ast.Variable:
		return tree.VarName(n)
	case ast.Operator:
		return n.Code()
	case ast.Declarator:
		d, _ := n.Declarator()
		text, ok = vocab.SpellDeclarator(d)
	case ast.Keyword:
		k, _ := n.Keyword()
		text, ok = vocab.SpellKeyword(k)
	case ast.Separator:
		s, _ := n.Separator()
		text, ok = vocab.SpellSeparator(s)
	}
	if !ok {
		return n.Code()
	}
	return text
}

func dotEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`)
	return r.Replace(s)
}

// Dot returns a graphviz digraph of tree. Nodes are numbered in pre-order;
// edges are labelled L and R.
func Dot(tree *ast.Tree, vocab *syntax.Vocabulary) string {
	var sb strings.Builder
	sb.WriteString("digraph tree {\n")
	sb.WriteString("\tnode[shape=Mrecord,style=\"rounded,filled\",fontsize=14];\n")
	fmt.Fprintf(&sb, "\tinfo[shape=record,style=solid,label=\"nodes=%d | names=%d\"];\n",
		tree.Root.Size(), tree.Names.Len())

	next := 0
	var visit func(n *ast.Node) int
	visit = func(n *ast.Node) int {
		id := next
		next++
		fmt.Fprintf(&sb, "\tn%d[fillcolor=\"%s\",label=\"%s | %s\"];\n",
			id, kindColours[n.Kind()].name, n.Kind(), dotEscape(Label(tree, vocab, n)))
		for i, child := range []*ast.Node{n.Left, n.Right} {
			if child == nil {
				continue
			}
			cid := visit(child)
			fmt.Fprintf(&sb, "\tn%d -> n%d[label=\"%s\"];\n", id, cid, "LR"[i:i+1])
		}
		return id
	}
	if tree.Root != nil {
		visit(tree.Root)
	}
	sb.WriteString("}\n")
	return sb.String()
}
