package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/spf13/cobra"

	"lectern/pkg/ast"
	"lectern/pkg/frontend"
	"lectern/pkg/syntax"
	"lectern/pkg/treeio"
)

// tracerKeys are the trace selectors used across the module.
var tracerKeys = []string{"lectern.lexer", "lectern.parser", "lectern.simplify", "lectern.dump"}

// settings holds the persistent flags shared by every command.
type settings struct {
	vocabName  string
	traceLevel string
	treeInput  bool
}

func (s *settings) vocab() (*syntax.Vocabulary, error) {
	return syntax.Lookup(s.vocabName)
}

// load compiles the program at path, or reads it as a serialized tree when
// --tree is set.
func (s *settings) load(path string, simplify bool) (*frontend.Result, error) {
	vocab, err := s.vocab()
	if err != nil {
		return nil, err
	}
	if !s.treeInput {
		return frontend.CompileFile(path, frontend.Options{Vocab: vocab, Simplify: simplify})
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tree, err := treeio.Read(f)
	if err != nil {
		return nil, err
	}
	res := &frontend.Result{Tree: tree}
	if simplify {
		res.Raw = tree.Clone()
		if res.Stats, err = simplifyTree(tree); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func newRootCmd() *cobra.Command {
	s := &settings{}
	root := &cobra.Command{
		Use:   "lectern",
		Short: "lectern is a front-end for the lecture language",
		Long: `lectern lexes, parses and simplifies programs written in the lecture
language, in any registered vocabulary.

Commands:
  tokens     Print the token stream and name table of a program
  parse      Print the syntax tree of a program
  simplify   Print the simplified syntax tree of a program
  dump       Write graphviz, PNG and HTML dumps of a program's trees
  translate  Reprint a program in another vocabulary
`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := tracing.TraceLevelFromString(s.traceLevel)
			for _, key := range tracerKeys {
				tracing.Select(key).SetTraceLevel(level)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&s.vocabName, "vocab", "v", syntax.English.Name, "vocabulary of the input program")
	root.PersistentFlags().StringVar(&s.traceLevel, "trace", "Error", "trace level: Error, Info or Debug")
	root.PersistentFlags().BoolVar(&s.treeInput, "tree", false, "input is a serialized tree instead of source")

	root.AddCommand(
		newTokensCmd(s),
		newParseCmd(s),
		newSimplifyCmd(s),
		newDumpCmd(s),
		newTranslateCmd(s),
	)
	return root
}

// Execute runs the command line.
func Execute() error {
	return newRootCmd().Execute()
}

func writeTree(w io.Writer, tree *ast.Tree) error {
	if err := treeio.Write(w, tree); err != nil {
		return fmt.Errorf("write tree: %w", err)
	}
	return nil
}
