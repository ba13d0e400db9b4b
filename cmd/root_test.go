package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/pkg/frontend"
	"lectern/pkg/printer"
	"lectern/pkg/simplify"
	"lectern/pkg/syntax"
	"lectern/pkg/treeio"
)

const program = "funcdecl f ( x ) {\n    return x + 0 ;\n}\nprint f ( 2 * 3 ) ;\n"

func writeProgram(t *testing.T, name, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func compile(t *testing.T, simplify bool) *frontend.Result {
	t.Helper()
	res, err := frontend.Compile(program, frontend.Options{Simplify: simplify})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func TestParseCommand(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	out, _, err := run(t, "parse", path)
	if err != nil {
		t.Fatal(err)
	}
	if want := treeio.Format(compile(t, false).Tree); out != want {
		t.Errorf("parse output:\n%s\nwant:\n%s", out, want)
	}
}

func TestSimplifyCommand(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	out, errOut, err := run(t, "simplify", path)
	if err != nil {
		t.Fatal(err)
	}
	res := compile(t, true)
	if want := treeio.Format(res.Tree); out != want {
		t.Errorf("simplify output:\n%s\nwant:\n%s", out, want)
	}
	if !strings.Contains(errOut, res.Stats.String()) {
		t.Errorf("stderr %q lacks stats %q", errOut, res.Stats)
	}
}

func TestSimplifyTreeInput(t *testing.T) {
	parsed := writeProgram(t, "prog.tree", treeio.Format(compile(t, false).Tree))
	out, _, err := run(t, "simplify", "--tree", parsed)
	if err != nil {
		t.Fatal(err)
	}
	if want := treeio.Format(compile(t, true).Tree); out != want {
		t.Errorf("simplify --tree output:\n%s\nwant:\n%s", out, want)
	}
}

func TestTokensCommand(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	out, _, err := run(t, "tokens", path)
	if err != nil {
		t.Fatal(err)
	}
	res := compile(t, false)
	for _, tok := range res.Tokens.Tokens() {
		if !strings.Contains(out, tok.String()) {
			t.Errorf("output lacks token %s", tok)
		}
	}
	if !strings.HasSuffix(out, res.Tokens.Names().String()) {
		t.Errorf("output does not end with the name table:\n%s", out)
	}

	if _, _, err := run(t, "tokens", "--tree", path); err == nil {
		t.Error("tokens --tree: want error")
	}
}

func TestTranslateCommand(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	out, _, err := run(t, "translate", path)
	if err != nil {
		t.Fatal(err)
	}
	want, err := printer.Source(compile(t, false).Tree, syntax.Lecture)
	if err != nil {
		t.Fatal(err)
	}
	if out != want {
		t.Errorf("translate output:\n%s\nwant:\n%s", out, want)
	}

	// and back again
	lec := writeProgram(t, "prog.lec", out)
	back, _, err := run(t, "translate", "--vocab", "lecture", "--to", "english", lec)
	if err != nil {
		t.Fatal(err)
	}
	english, err := printer.Source(compile(t, false).Tree, syntax.English)
	if err != nil {
		t.Fatal(err)
	}
	if back != english {
		t.Errorf("round trip:\n%s\nwant:\n%s", back, english)
	}
}

func TestDumpCommand(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	outDir := filepath.Join(t.TempDir(), "dumps")
	out, _, err := run(t, "dump", "--out", outDir, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "wrote 2 dumps") {
		t.Errorf("output = %q", out)
	}
	for _, name := range []string{"dump0001.dot", "dump0001.png", "dump0002.dot", "dump0002.png", "log.html"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestDumpCommandAppendsToExistingDir(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	outDir := filepath.Join(t.TempDir(), "dumps")
	for i := 0; i < 2; i++ {
		out, _, err := run(t, "dump", "--out", outDir, path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(out, "wrote 2 dumps") {
			t.Errorf("run %d: output = %q", i+1, out)
		}
	}
	if _, err := os.Stat(filepath.Join(outDir, "dump0004.png")); err != nil {
		t.Errorf("second run did not continue numbering: %v", err)
	}
	log, err := os.ReadFile(filepath.Join(outDir, "log.html"))
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(log), `<img src="dump0001.png">`); n != 1 {
		t.Errorf("log.html references dump0001.png %d times", n)
	}
}

func TestDumpCommandDefaultDir(t *testing.T) {
	path := writeProgram(t, "prog.lec", program)
	if _, _, err := run(t, "dump", path); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(path), "prog_dumps", "log.html")); err != nil {
		t.Error(err)
	}
}

func TestCommandErrors(t *testing.T) {
	good := writeProgram(t, "prog.lec", program)
	divide := writeProgram(t, "div.lec", "print 1 / 0 ;")
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Unknown Vocabulary", []string{"parse", "--vocab", "klingon", good}, "unknown vocabulary"},
		{"Unknown Target", []string{"translate", "--to", "klingon", good}, "unknown vocabulary"},
		{"Missing File", []string{"parse", filepath.Join(t.TempDir(), "nope.lec")}, "no such file"},
		{"Wrong Vocabulary", []string{"parse", "--vocab", "lecture", good}, "lex: "},
		{"Bad Tree", []string{"parse", "--tree", good}, "treeio"},
		{"No Argument", []string{"parse"}, "accepts 1 arg"},
		{"Divide By Zero", []string{"simplify", divide}, "simplify: "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestSimplifyTreeWrapsError(t *testing.T) {
	res, err := frontend.Compile("print 1 / 0 ;", frontend.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := simplifyTree(res.Tree); !errors.Is(err, simplify.ErrDivideByZero) {
		t.Errorf("simplifyTree() error = %v", err)
	}
}
