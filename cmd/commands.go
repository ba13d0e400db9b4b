package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lectern/pkg/ast"
	"lectern/pkg/dump"
	"lectern/pkg/dumpfs"
	"lectern/pkg/frontend"
	"lectern/pkg/printer"
	"lectern/pkg/simplify"
	"lectern/pkg/syntax"
	"lectern/pkg/utils"
)

// tokens: print the lexer's output
func newTokensCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <program>",
		Short: "Print the token stream and name table of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.treeInput {
				return errors.New("tokens needs source input, not --tree")
			}
			res, err := s.load(args[0], false)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tokens (%d)\n", res.Tokens.Len())
			for _, tok := range res.Tokens.Tokens() {
				fmt.Fprintln(out, " ", tok)
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, res.Tokens.Names())
			return nil
		},
	}
}

// parse: print the syntax tree
func newParseCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <program>",
		Short: "Print the syntax tree of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.load(args[0], false)
			if err != nil {
				return err
			}
			return writeTree(cmd.OutOrStdout(), res.Tree)
		},
	}
}

// simplify: fold constants and drop identities, then print the tree
func newSimplifyCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "simplify <program>",
		Short: "Print the simplified syntax tree of a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := s.load(args[0], true)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "simplified in %s\n", res.Stats)
			return writeTree(cmd.OutOrStdout(), res.Tree)
		},
	}
}

func simplifyTree(tree *ast.Tree) (simplify.Stats, error) {
	st, err := simplify.Simplify(tree)
	if err != nil {
		return st, fmt.Errorf("simplify: %w", err)
	}
	return st, nil
}

// dump: write dot, png and html snapshots before and after simplification
func newDumpCmd(s *settings) *cobra.Command {
	var outDir string
	c := &cobra.Command{
		Use:   "dump <program>",
		Short: "Write graphviz, PNG and HTML dumps of a program's trees",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vocab, err := s.vocab()
			if err != nil {
				return err
			}
			full, _, err := utils.ResolveSource(args[0])
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = utils.DumpDir(full)
			}

			store := dumpfs.NewStore(0)
			if err := store.LoadFrom(outDir); err != nil {
				return err
			}
			d := dump.NewDumper(store, vocab)
			if s.treeInput {
				res, err := s.load(full, true)
				if err != nil {
					return err
				}
				if _, err := d.Dump(res.Raw, "loaded"); err != nil {
					return err
				}
				if _, err := d.Dump(res.Tree, "simplified: "+res.Stats.String()); err != nil {
					return err
				}
			} else {
				opts := frontend.Options{Vocab: vocab, Simplify: true, Dumper: d}
				if _, err := frontend.CompileFile(full, opts); err != nil {
					return err
				}
			}
			if err := store.PersistTo(outDir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d dumps to %s\n", d.Count(), outDir)
			return nil
		},
	}
	c.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: <program>_dumps next to the program)")
	return c
}

// translate: reprint a program in another vocabulary
func newTranslateCmd(s *settings) *cobra.Command {
	var target string
	c := &cobra.Command{
		Use:   "translate <program>",
		Short: "Reprint a program in another vocabulary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := syntax.Lookup(target)
			if err != nil {
				return err
			}
			res, err := s.load(args[0], false)
			if err != nil {
				return err
			}
			text, err := printer.Source(res.Tree, to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
	c.Flags().StringVar(&target, "to", syntax.Lecture.Name, "vocabulary to print in")
	return c
}
