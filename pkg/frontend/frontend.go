// Package frontend runs the whole pipeline: lex, parse and optionally
// simplify, with optional dumps of the tree before and after simplification.
package frontend

import (
	"fmt"

	"lectern/pkg/ast"
	"lectern/pkg/dump"
	"lectern/pkg/lexer"
	"lectern/pkg/parser"
	"lectern/pkg/simplify"
	"lectern/pkg/syntax"
	"lectern/pkg/utils"
)

// Options selects what Compile does. The zero value lexes and parses
// English source without simplifying.
type Options struct {
	Vocab    *syntax.Vocabulary
	Simplify bool
	Dumper   *dump.Dumper // when set, snapshots the tree after each stage
}

// Result holds every stage's output.
type Result struct {
	Tokens *lexer.Stream
	Tree   *ast.Tree // simplified when Options.Simplify is set
	Raw    *ast.Tree // the parsed tree before simplification, when it differs from Tree
	Stats  simplify.Stats
}

func (o Options) vocab() *syntax.Vocabulary {
	if o.Vocab == nil {
		return syntax.English
	}
	return o.Vocab
}

// Compile runs the pipeline over program text. Errors are prefixed with the
// failing stage and wrap the stage's own error.
func Compile(src string, opts Options) (*Result, error) {
	return run(lexer.NewSource(src), opts)
}

// CompileFile reads the program at path and compiles it.
func CompileFile(path string, opts Options) (*Result, error) {
	full, _, err := utils.ResolveSource(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	src, err := lexer.ReadSource(full)
	if err != nil {
		return nil, err
	}
	return run(src, opts)
}

func run(src *lexer.Source, opts Options) (*Result, error) {
	vocab := opts.vocab()

	tokens, err := lexer.Tokenize(src, vocab)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	res := &Result{Tokens: tokens}

	res.Tree, err = parser.Parse(tokens, vocab)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := snapshot(opts.Dumper, res.Tree, "parsed"); err != nil {
		return nil, err
	}
	if !opts.Simplify {
		return res, nil
	}

	res.Raw = res.Tree.Clone()
	res.Stats, err = simplify.Simplify(res.Tree)
	if err != nil {
		return nil, fmt.Errorf("simplify: %w", err)
	}
	if err := snapshot(opts.Dumper, res.Tree, "simplified: "+res.Stats.String()); err != nil {
		return nil, err
	}
	return res, nil
}

func snapshot(d *dump.Dumper, tree *ast.Tree, title string) error {
	if d == nil {
		return nil
	}
	if _, err := d.Dump(tree, title); err != nil {
		return fmt.Errorf("dump: %w", err)
	}
	return nil
}
