package frontend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/pkg/dump"
	"lectern/pkg/dumpfs"
	"lectern/pkg/lexer"
	"lectern/pkg/nametable"
	"lectern/pkg/parser"
	"lectern/pkg/simplify"
	"lectern/pkg/syntax"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     Options
		expected string
	}{
		{
			name:     "Parse Only",
			input:    "vardecl a = 2 + 3 ;",
			expected: "(SEP EndLine _ (DECL Var (OP Assign $0 (OP Add 2 3)) _))",
		},
		{
			name:     "Simplified",
			input:    "vardecl a = 2 + 3 ;",
			opts:     Options{Simplify: true},
			expected: "(SEP EndLine _ (DECL Var (OP Assign $0 5) _))",
		},
		{
			name:     "Lecture",
			input:    "покажем_что икс * 1 перерыв_коллеги",
			opts:     Options{Vocab: syntax.Lecture, Simplify: true},
			expected: "(SEP EndLine _ (KW Print $0 _))",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.input, tt.opts)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if got := res.Tree.Root.String(); got != tt.expected {
				t.Errorf("Compile() = %s, want %s", got, tt.expected)
			}
			if res.Tokens == nil || res.Tokens.Len() == 0 {
				t.Error("token stream missing from result")
			}
			if tt.opts.Simplify != (res.Raw != nil) {
				t.Errorf("Raw = %v with Simplify = %v", res.Raw, tt.opts.Simplify)
			}
		})
	}
}

func TestCompileKeepsRawTree(t *testing.T) {
	res, err := Compile("print x + 0 ;", Options{Simplify: true})
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Raw.Root.Right.Left.String(); got != "(OP Add $0 0)" {
		t.Errorf("raw expression = %s", got)
	}
	if got := res.Tree.Root.Right.Left.String(); got != "$0" {
		t.Errorf("simplified expression = %s", got)
	}
	if res.Stats.Eliminations != 1 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		opts   Options
		prefix string
		check  func(error) bool
	}{
		{
			name:   "Lex",
			input:  "print x+0 ;",
			prefix: "lex: ",
			check:  func(err error) bool { var e *lexer.LexError; return errors.As(err, &e) },
		},
		{
			name:   "Name Table Full",
			input:  manyNames(nametable.Capacity + 1),
			prefix: "lex: ",
			check:  func(err error) bool { return errors.Is(err, nametable.ErrCapacityExceeded) },
		},
		{
			name:   "Parse",
			input:  "print ( 1 ;",
			prefix: "parse: ",
			check:  func(err error) bool { var e *parser.SyntaxError; return errors.As(err, &e) },
		},
		{
			name:   "Simplify",
			input:  "print 4 / ( 2 - 2 ) ;",
			opts:   Options{Simplify: true},
			prefix: "simplify: ",
			check:  func(err error) bool { return errors.Is(err, simplify.ErrDivideByZero) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Compile(tt.input, tt.opts)
			if err == nil {
				t.Fatalf("Compile() = %v, want error", res)
			}
			if res != nil {
				t.Error("result returned alongside error")
			}
			if !strings.HasPrefix(err.Error(), tt.prefix) {
				t.Errorf("error %q lacks prefix %q", err, tt.prefix)
			}
			if !tt.check(err) {
				t.Errorf("error %v does not wrap the stage error", err)
			}
		})
	}
}

func manyNames(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "scan v%d ; ", i)
	}
	return sb.String()
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.lec")
	if err := os.WriteFile(path, []byte("funcdecl f ( x ) {\n    return x + 0 ;\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	res, err := CompileFile(path, Options{Simplify: true})
	if err != nil {
		t.Fatal(err)
	}
	if n, ok := res.Tree.Names.ParameterCount(0); !ok || n != 1 {
		t.Errorf("ParameterCount(f) = %d, %v", n, ok)
	}

	if _, err := CompileFile(filepath.Join(t.TempDir(), "missing.lec"), Options{}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}

func TestCompileDumpsEachStage(t *testing.T) {
	store := dumpfs.NewStore(0)
	d := dump.NewDumper(store, syntax.English)
	if _, err := Compile("print 1 + 1 ;", Options{Simplify: true, Dumper: d}); err != nil {
		t.Fatal(err)
	}
	if d.Count() != 2 {
		t.Fatalf("dumps = %d, want 2", d.Count())
	}
	log, err := store.Read(dump.LogName)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(log), "simplified: 2 passes, 1 folds, 0 eliminations") {
		t.Errorf("log lacks the simplify title:\n%s", log)
	}
}
