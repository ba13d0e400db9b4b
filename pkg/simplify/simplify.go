// Package simplify rewrites a syntax tree into a smaller equivalent one by
// folding constant arithmetic and dropping identity operations.
package simplify

import (
	"errors"
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"lectern/pkg/ast"
	"lectern/pkg/syntax"
)

func tracer() tracing.Trace {
	return tracing.Select("lectern.simplify")
}

// ErrDivideByZero is returned when a constant division has a zero divisor.
var ErrDivideByZero = errors.New("division by zero in constant expression")

// Stats counts the work done by Simplify.
type Stats struct {
	Passes       int // full traversals, including the final one that changed nothing
	Folds        int
	Eliminations int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d passes, %d folds, %d eliminations", s.Passes, s.Folds, s.Eliminations)
}

// Simplify rewrites tree in place until a full pass changes nothing.
//
// Every rewrite replaces an owned child: the parent's pointer is redirected to
// the surviving subtree, so nodes kept by an identity rule are the very nodes
// that were there before. On ErrDivideByZero the tree is left consistent but
// partly simplified.
func Simplify(tree *ast.Tree) (Stats, error) {
	var st Stats
	for {
		st.Passes++
		before := st.Folds + st.Eliminations
		root, err := st.rewrite(tree.Root)
		if err != nil {
			tracer().Errorf("simplify: pass %d: %v", st.Passes, err)
			return st, err
		}
		tree.Root = root
		if st.Folds+st.Eliminations == before {
			break
		}
		tracer().Debugf("pass %d: %s so far", st.Passes, st)
	}
	tracer().Infof("simplified in %s", st)
	return st, nil
}

// rewrite simplifies the subtree at n post-order and returns what should
// take n's place in its parent.
func (st *Stats) rewrite(n *ast.Node) (*ast.Node, error) {
	if n == nil {
		return nil, nil
	}
	var err error
	if n.Left, err = st.rewrite(n.Left); err != nil {
		return n, err
	}
	if n.Right, err = st.rewrite(n.Right); err != nil {
		return n, err
	}

	op, ok := n.Operator()
	if !ok || !op.IsArithmetic() {
		return n, nil
	}

	a, aok := n.Left.NumberValue()
	b, bok := n.Right.NumberValue()
	if aok && bok {
		v, err := Fold(op, a, b)
		if err != nil {
			return n, err
		}
		st.Folds++
		return ast.NewNumber(v), nil
	}

	if keep := identity(op, n); keep != nil {
		st.Eliminations++
		return keep, nil
	}
	return n, nil
}

// identity returns the replacement for n when an identity rule applies:
// x+0, 0+x, x-0, x*1 and 1*x become x; x*0, 0*x and 0/x become 0.
// x/0 is left alone.
func identity(op syntax.Operator, n *ast.Node) *ast.Node {
	l, r := n.Left, n.Right
	switch op {
	case syntax.Add:
		if r.IsNumber(0) {
			return l
		}
		if l.IsNumber(0) {
			return r
		}
	case syntax.Sub:
		if r.IsNumber(0) {
			return l
		}
	case syntax.Mul:
		if l.IsNumber(0) {
			return l
		}
		if r.IsNumber(0) {
			return r
		}
		if r.IsNumber(1) {
			return l
		}
		if l.IsNumber(1) {
			return r
		}
	case syntax.Div:
		if l.IsNumber(0) {
			return l
		}
	}
	return nil
}

// Fold evaluates a op b with int64 wrap-around. Division truncates toward
// zero; a zero divisor yields ErrDivideByZero.
func Fold(op syntax.Operator, a, b int64) (int64, error) {
	switch op {
	case syntax.Add:
		return a + b, nil
	case syntax.Sub:
		return a - b, nil
	case syntax.Mul:
		return a * b, nil
	case syntax.Div:
		if b == 0 {
			return 0, fmt.Errorf("%w: %d / 0", ErrDivideByZero, a)
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("cannot fold operator %s", op)
}
