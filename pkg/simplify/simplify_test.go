package simplify

import (
	"errors"
	"math"
	"testing"

	"lectern/pkg/ast"
	"lectern/pkg/lexer"
	"lectern/pkg/parser"
	"lectern/pkg/syntax"
)

func parseEnglish(t *testing.T, src string) *ast.Tree {
	t.Helper()
	tokens, err := lexer.Lex(src, syntax.English)
	if err != nil {
		t.Fatalf("Lex(%q): %v", src, err)
	}
	tree, err := parser.Parse(tokens, syntax.English)
	if err != nil {
		t.Fatalf("Parse(%q): %v", src, err)
	}
	return tree
}

// printed returns the expression of the single print statement in tree.
func printed(tree *ast.Tree) *ast.Node { return tree.Root.Right.Left }

func TestSimplifyExpressions(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2 + 3", "5"},
		{"2 - 3", "-1"},
		{"6 * 7", "42"},
		{"7 / 2", "3"},
		{"-7 / 2", "-3"},
		{"1 + 2 * 3 - 4", "3"},
		{"x + 0", "$0"},
		{"0 + x", "$0"},
		{"x - 0", "$0"},
		{"0 - x", "(OP Sub 0 $0)"},
		{"x * 1", "$0"},
		{"1 * x", "$0"},
		{"x * 0", "0"},
		{"0 * x", "0"},
		{"0 / x", "0"},
		{"x / 1", "(OP Div $0 1)"},
		{"x + 2 * 0", "$0"},
		{"( 3 - 3 ) * x + y * ( 5 - 4 )", "$1"},
		{"x * ( 4 / 4 ) + ( 0 - 0 )", "$0"},
		{"x < 1 + 1", "(OP Less $0 2)"},
		{"sqrt ( 2 * 8 )", "(OP Sqrt 16 _)"},
		{"f ( 1 + 1 x * 1 )", "(SEP BeginExpr $0 (SEP EndExpr (SEP EndExpr _ 2) $1))"},
		{"x + y", "(OP Add $0 $1)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tree := parseEnglish(t, "print "+tt.input+" ;")
			if _, err := Simplify(tree); err != nil {
				t.Fatalf("Simplify() error: %v", err)
			}
			if got := printed(tree).String(); got != tt.expected {
				t.Errorf("Simplify(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		op   syntax.Operator
		a, b int64
		want int64
	}{
		{syntax.Add, 2, 3, 5},
		{syntax.Add, math.MaxInt64, 1, math.MinInt64},
		{syntax.Sub, 2, 3, -1},
		{syntax.Sub, math.MinInt64, 1, math.MaxInt64},
		{syntax.Mul, -4, 5, -20},
		{syntax.Mul, math.MaxInt64, 2, -2},
		{syntax.Div, 9, 2, 4},
		{syntax.Div, -9, 2, -4},
		{syntax.Div, 9, -2, -4},
		{syntax.Div, math.MinInt64, -1, math.MinInt64},
	}
	for _, tt := range tests {
		got, err := Fold(tt.op, tt.a, tt.b)
		if err != nil {
			t.Errorf("Fold(%s, %d, %d) error: %v", tt.op, tt.a, tt.b, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Fold(%s, %d, %d) = %d, want %d", tt.op, tt.a, tt.b, got, tt.want)
		}
	}
	if _, err := Fold(syntax.Less, 1, 2); err == nil {
		t.Error("Fold accepted a comparison")
	}
}

func TestFoldMatchesGoArithmetic(t *testing.T) {
	values := []int64{0, 1, -1, 2, 17, -300, 1 << 40, math.MaxInt64, math.MinInt64}
	for _, a := range values {
		for _, b := range values {
			cases := map[syntax.Operator]int64{syntax.Add: a + b, syntax.Sub: a - b, syntax.Mul: a * b}
			for op, want := range cases {
				tree := ast.NewTree(nil)
				tree.Root = ast.NewOp(op, ast.NewNumber(a), ast.NewNumber(b))
				if _, err := Simplify(tree); err != nil {
					t.Fatalf("%d %s %d: %v", a, op, b, err)
				}
				if !tree.Root.IsNumber(want) {
					t.Errorf("%d %s %d folded to %s, want %d", a, op, b, tree.Root, want)
				}
			}
		}
	}
}

func TestIdentityKeepsOriginalSubtree(t *testing.T) {
	x := ast.NewOp(syntax.Add, ast.NewVariable(0), ast.NewSep(syntax.BeginExpr, ast.NewVariable(1), nil))
	want := ast.Clone(x)

	tree := ast.NewTree(nil)
	tree.Root = ast.NewKeyword(syntax.Print, ast.NewOp(syntax.Mul, x, ast.NewNumber(1)), nil)
	st, err := Simplify(tree)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Root.Left != x {
		t.Fatalf("x * 1 became %s, not the original x subtree", tree.Root.Left)
	}
	if !ast.Equal(tree.Root.Left, want) {
		t.Errorf("x subtree changed: %s, want %s", tree.Root.Left, want)
	}
	if st.Eliminations != 1 || st.Folds != 0 {
		t.Errorf("stats = %+v", st)
	}
}

func TestZeroIdentityKeepsZeroLeaf(t *testing.T) {
	tests := []struct {
		name string
		op   syntax.Operator
		zero bool // zero on the left
	}{
		{"x * 0", syntax.Mul, false},
		{"0 * x", syntax.Mul, true},
		{"0 / x", syntax.Div, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			zero, x := ast.NewNumber(0), ast.NewVariable(0)
			n := ast.NewOp(tt.op, x, zero)
			if tt.zero {
				n = ast.NewOp(tt.op, zero, x)
			}
			tree := ast.NewTree(nil)
			tree.Root = ast.NewKeyword(syntax.Print, n, nil)
			if _, err := Simplify(tree); err != nil {
				t.Fatal(err)
			}
			if tree.Root.Left != zero {
				t.Errorf("%s became %s, not the existing zero leaf", tt.name, tree.Root.Left)
			}
		})
	}
}

func TestSimplifyIsIdempotent(t *testing.T) {
	sources := []string{
		"funcdecl f ( x ) { return x + 0 ; }",
		"vardecl a = 2 + 3 ; print a * ( 1 + 0 ) ;",
		"while x > 0 * y => { x = x - 1 * 1 ; } if 1 => print 0 / x ;",
	}
	for _, src := range sources {
		tree := parseEnglish(t, src)
		if _, err := Simplify(tree); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
		once := tree.Clone()
		st, err := Simplify(tree)
		if err != nil {
			t.Fatalf("%q second run: %v", src, err)
		}
		if !tree.Equal(once) {
			t.Errorf("%q: second run changed the tree to %s", src, tree.Root)
		}
		if st.Passes != 1 || st.Folds != 0 || st.Eliminations != 0 {
			t.Errorf("%q: second run stats = %+v", src, st)
		}
	}
}

func TestSimplifyStats(t *testing.T) {
	tree := parseEnglish(t, "print ( 1 + 2 ) * x + 0 ;")
	st, err := Simplify(tree)
	if err != nil {
		t.Fatal(err)
	}
	want := Stats{Passes: 2, Folds: 1, Eliminations: 1}
	if st != want {
		t.Errorf("Stats = %+v, want %+v", st, want)
	}
	if got := printed(tree).String(); got != "(OP Mul 3 $0)" {
		t.Errorf("tree = %s", got)
	}
}

func TestDivideByZero(t *testing.T) {
	tests := []string{
		"print 1 / 0 ;",
		"print 5 / ( 2 - 2 ) ;",
		"print x / 0 + 4 / ( 0 * 1 ) ;",
	}
	for _, src := range tests {
		tree := parseEnglish(t, src)
		_, err := Simplify(tree)
		if !errors.Is(err, ErrDivideByZero) {
			t.Errorf("%q: err = %v, want ErrDivideByZero", src, err)
		}
		if err := tree.Validate(); err != nil {
			t.Errorf("%q: tree left invalid: %v", src, err)
		}
	}

	tree := parseEnglish(t, "print x / 0 ;")
	if _, err := Simplify(tree); err != nil {
		t.Fatalf("x / 0 should be left alone, got %v", err)
	}
	if got := printed(tree).String(); got != "(OP Div $0 0)" {
		t.Errorf("x / 0 became %s", got)
	}
}

func TestScenarios(t *testing.T) {
	t.Run("Return Of Identity", func(t *testing.T) {
		tree := parseEnglish(t, "funcdecl f ( x ) { return x + 0 ; }")
		if _, err := Simplify(tree); err != nil {
			t.Fatal(err)
		}
		fn := tree.Root.Right
		if d, ok := fn.Declarator(); !ok || d != syntax.FuncDecl {
			t.Fatalf("root statement is %s", fn)
		}
		ret := ast.List(fn.Right.Left)[0]
		expr := ret.Left
		if idx, ok := expr.NameIndex(); !ok || tree.Names.Name(idx) != "x" || expr.Left != nil || expr.Right != nil {
			t.Errorf("return expression = %s, want bare x", expr)
		}
	})

	t.Run("Folded Declaration", func(t *testing.T) {
		tree := parseEnglish(t, "vardecl a = 2 + 3 ;")
		if _, err := Simplify(tree); err != nil {
			t.Fatal(err)
		}
		value := tree.Root.Right.Left.Right
		if !value.IsNumber(5) {
			t.Errorf("right-hand side = %s, want 5", value)
		}
	})
}
