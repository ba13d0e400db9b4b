// Package parser builds an ast.Tree from a token stream by recursive descent.
//
// Every rule returns (node, nil) on a match, (nil, nil) when its first tokens
// do not fit, or (nil, err) once it has committed and the input turns out to
// be malformed. Alternatives are tried through alt, which rewinds the stream
// to where the failed branch started. A rule commits as soon as it consumes
// its leading keyword, declarator or opening separator; an assignment
// without a declarator commits on its '=' and a call on the bracket after
// the callee name.
package parser

import (
	"fmt"
	"strings"

	"github.com/npillmayer/schuko/tracing"

	"lectern/pkg/ast"
	"lectern/pkg/lexer"
	"lectern/pkg/syntax"
)

func tracer() tracing.Trace {
	return tracing.Select("lectern.parser")
}

// Parser holds the state of one parse.
type Parser struct {
	tokens *lexer.Stream
	vocab  *syntax.Vocabulary
	tree   *ast.Tree
}

// rule is one grammar production.
type rule func() (*ast.Node, error)

// Parse consumes the whole stream and returns the program tree. The tree
// owns a copy of the stream's name table, with the parameter count of every
// declared function filled in. On error no tree is returned.
func Parse(tokens *lexer.Stream, vocab *syntax.Vocabulary) (*ast.Tree, error) {
	p := &Parser{
		tokens: tokens,
		vocab:  vocab,
		tree:   ast.NewTree(tokens.Names().Copy()),
	}
	root, err := p.program()
	if err != nil {
		tracer().Errorf("parse: %v", err)
		return nil, err
	}
	p.tree.Root = root
	tracer().Infof("parsed %d tokens into %d nodes", tokens.Len(), root.Size())
	return p.tree, nil
}

// fail builds a SyntaxError at the next unconsumed token.
func (p *Parser) fail(construct, format string, args ...any) error {
	err := &SyntaxError{Construct: construct, Msg: fmt.Sprintf(format, args...)}
	if tok, ok := p.tokens.Peek(); ok {
		err.Pos, err.Lexeme = tok.Pos, tok.Lexeme
	} else {
		err.Pos = p.tokens.End()
	}
	err.Snippet = strings.TrimSpace(p.tokens.Line(err.Pos.Line))
	return err
}

// found describes the next token for error messages.
func (p *Parser) found() string {
	tok, ok := p.tokens.Peek()
	if !ok {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *Parser) sepText(s syntax.Separator) string {
	if text, ok := p.vocab.SpellSeparator(s); ok {
		return fmt.Sprintf("%q", text)
	}
	return s.String()
}

// alt tries rules in order and returns the first match. The cursor is
// rewound after every branch that does not match.
func (p *Parser) alt(rules ...rule) (*ast.Node, error) {
	for _, r := range rules {
		mark := p.tokens.Mark()
		n, err := r()
		if err != nil {
			return nil, err
		}
		if n != nil {
			return n, nil
		}
		p.tokens.Reset(mark)
	}
	return nil, nil
}

// require runs r and turns a no-match into a SyntaxError.
func (p *Parser) require(construct, what string, r rule) (*ast.Node, error) {
	n, err := r()
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, p.fail(construct, "expected %s, found %s", what, p.found())
	}
	return n, nil
}

func (p *Parser) peekSep(s syntax.Separator) bool {
	tok, ok := p.tokens.Peek()
	if !ok {
		return false
	}
	got, ok := tok.Node.Separator()
	return ok && p.vocab.Canonical(got) == p.vocab.Canonical(s)
}

func (p *Parser) acceptSep(s syntax.Separator) bool {
	if p.peekSep(s) {
		p.tokens.Next()
		return true
	}
	return false
}

func (p *Parser) expectSep(construct string, s syntax.Separator) error {
	if !p.acceptSep(s) {
		return p.fail(construct, "expected %s, found %s", p.sepText(s), p.found())
	}
	return nil
}

func (p *Parser) acceptKeyword(k syntax.Keyword) bool {
	tok, ok := p.tokens.Peek()
	if !ok {
		return false
	}
	if got, ok := tok.Node.Keyword(); ok && got == k {
		p.tokens.Next()
		return true
	}
	return false
}

func (p *Parser) acceptDecl(d syntax.Declarator) bool {
	tok, ok := p.tokens.Peek()
	if !ok {
		return false
	}
	if got, ok := tok.Node.Declarator(); ok && got == d {
		p.tokens.Next()
		return true
	}
	return false
}

// acceptOp consumes the next token if it is one of ops.
func (p *Parser) acceptOp(ops ...syntax.Operator) (syntax.Operator, bool) {
	tok, ok := p.tokens.Peek()
	if !ok {
		return 0, false
	}
	got, ok := tok.Node.Operator()
	if !ok {
		return 0, false
	}
	for _, op := range ops {
		if got == op {
			p.tokens.Next()
			return got, true
		}
	}
	return 0, false
}

func (p *Parser) acceptComparison() (syntax.Operator, bool) {
	tok, ok := p.tokens.Peek()
	if !ok {
		return 0, false
	}
	if got, ok := tok.Node.Operator(); ok && got.IsComparison() {
		p.tokens.Next()
		return got, true
	}
	return 0, false
}

// identifier matches a Variable token and returns a fresh node for it.
func (p *Parser) identifier() (*ast.Node, error) {
	tok, ok := p.tokens.Peek()
	if !ok {
		return nil, nil
	}
	idx, ok := tok.Node.NameIndex()
	if !ok {
		return nil, nil
	}
	p.tokens.Next()
	return ast.NewVariable(idx), nil
}

func (p *Parser) number() (*ast.Node, error) {
	tok, ok := p.tokens.Peek()
	if !ok {
		return nil, nil
	}
	v, ok := tok.Node.NumberValue()
	if !ok {
		return nil, nil
	}
	p.tokens.Next()
	return ast.NewNumber(v), nil
}

// program := (funcDecl | compoundStmt)+
func (p *Parser) program() (*ast.Node, error) {
	var links *ast.Node
	for !p.tokens.Exhausted() {
		n, err := p.alt(p.funcDecl, p.compoundStmt)
		if err != nil {
			return nil, err
		}
		if n == nil {
			return nil, p.fail("Program", "expected declaration or statement, found %s", p.found())
		}
		links = ast.Link(syntax.EndLine, links, n)
	}
	if links == nil {
		return nil, p.fail("Program", "empty program")
	}
	return links, nil
}

// funcDecl := DECL(func) identifier BEGIN_PARAMS identifier* END_PARAMS block
func (p *Parser) funcDecl() (*ast.Node, error) {
	const construct = "FuncDecl"
	if !p.acceptDecl(syntax.FuncDecl) {
		return nil, nil
	}
	name, err := p.require(construct, "function name", p.identifier)
	if err != nil {
		return nil, err
	}
	if err := p.expectSep(construct, syntax.BeginParams); err != nil {
		return nil, err
	}
	var params *ast.Node
	count := 0
	for !p.acceptSep(syntax.EndParams) {
		param, err := p.require(construct, "parameter name or "+p.sepText(syntax.EndParams), p.identifier)
		if err != nil {
			return nil, err
		}
		params = ast.Link(syntax.EndParams, params, param)
		count++
	}
	idx, _ := name.NameIndex()
	if err := p.tree.Names.SetParameterCount(idx, count); err != nil {
		return nil, p.fail(construct, "%v", err)
	}
	body, err := p.require(construct, "function body", p.block)
	if err != nil {
		return nil, err
	}
	tracer().Debugf("function %s with %d parameters", p.tree.Names.Name(idx), count)
	return ast.NewDecl(syntax.FuncDecl, ast.NewSep(syntax.BeginParams, name, params), body), nil
}

// compoundStmt := block | simpleStmt
func (p *Parser) compoundStmt() (*ast.Node, error) {
	return p.alt(p.block, p.simpleStmt)
}

// block := BEGIN_BODY compoundStmt* END_BODY
func (p *Parser) block() (*ast.Node, error) {
	const construct = "Block"
	if !p.acceptSep(syntax.BeginBody) {
		return nil, nil
	}
	var links *ast.Node
	for !p.acceptSep(syntax.EndBody) {
		what := "statement or " + p.sepText(syntax.EndBody)
		stmt, err := p.require(construct, what, p.compoundStmt)
		if err != nil {
			return nil, err
		}
		links = ast.Link(syntax.EndLine, links, stmt)
	}
	return ast.NewSep(syntax.BeginBody, links, nil), nil
}

// simpleStmt := if | while | (assign | scan | return | print) END_LINE
func (p *Parser) simpleStmt() (*ast.Node, error) {
	return p.alt(
		p.ifStmt,
		p.whileStmt,
		p.terminated("Assign", p.assign),
		p.terminated("Scan", p.scan),
		p.terminated("Return", p.returnStmt),
		p.terminated("Print", p.printStmt),
	)
}

// terminated wraps r so that a match must be followed by END_LINE.
func (p *Parser) terminated(construct string, r rule) rule {
	return func() (*ast.Node, error) {
		n, err := r()
		if n == nil || err != nil {
			return n, err
		}
		if err := p.expectSep(construct, syntax.EndLine); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// ifStmt := KW(if) expr END_CONDITION compoundStmt (KW(else) compoundStmt)?
func (p *Parser) ifStmt() (*ast.Node, error) {
	const construct = "If"
	if !p.acceptKeyword(syntax.If) {
		return nil, nil
	}
	cond, err := p.require(construct, "condition", p.expr)
	if err != nil {
		return nil, err
	}
	if err := p.expectSep(construct, syntax.EndCondition); err != nil {
		return nil, err
	}
	then, err := p.require(construct, "statement", p.compoundStmt)
	if err != nil {
		return nil, err
	}
	var els *ast.Node
	if p.acceptKeyword(syntax.Else) {
		if els, err = p.require(construct, "statement after else", p.compoundStmt); err != nil {
			return nil, err
		}
	}
	return ast.NewKeyword(syntax.If, ast.NewKeyword(syntax.Else, then, els), cond), nil
}

// whileStmt := KW(while) expr END_CONDITION compoundStmt
func (p *Parser) whileStmt() (*ast.Node, error) {
	const construct = "While"
	if !p.acceptKeyword(syntax.While) {
		return nil, nil
	}
	cond, err := p.require(construct, "condition", p.expr)
	if err != nil {
		return nil, err
	}
	if err := p.expectSep(construct, syntax.EndCondition); err != nil {
		return nil, err
	}
	body, err := p.require(construct, "loop body", p.compoundStmt)
	if err != nil {
		return nil, err
	}
	return ast.NewKeyword(syntax.While, body, cond), nil
}

// assign := DECL(var)? identifier '=' expr
func (p *Parser) assign() (*ast.Node, error) {
	const construct = "Assign"
	declared := p.acceptDecl(syntax.VarDecl)
	var target *ast.Node
	var err error
	if declared {
		target, err = p.require(construct, "variable name", p.identifier)
		if err != nil {
			return nil, err
		}
		if _, ok := p.acceptOp(syntax.Assign); !ok {
			return nil, p.fail(construct, "expected assignment, found %s", p.found())
		}
	} else {
		if target, _ = p.identifier(); target == nil {
			return nil, nil
		}
		if _, ok := p.acceptOp(syntax.Assign); !ok {
			return nil, nil
		}
	}
	value, err := p.require(construct, "expression", p.expr)
	if err != nil {
		return nil, err
	}
	n := ast.NewOp(syntax.Assign, target, value)
	if declared {
		return ast.NewDecl(syntax.VarDecl, n, nil), nil
	}
	return n, nil
}

// scan := KW(scan) identifier
func (p *Parser) scan() (*ast.Node, error) {
	if !p.acceptKeyword(syntax.Scan) {
		return nil, nil
	}
	target, err := p.require("Scan", "variable name", p.identifier)
	if err != nil {
		return nil, err
	}
	return ast.NewKeyword(syntax.Scan, target, nil), nil
}

// returnStmt := KW(return) expr
func (p *Parser) returnStmt() (*ast.Node, error) {
	return p.keywordExpr("Return", syntax.Return)
}

// printStmt := KW(print) expr
func (p *Parser) printStmt() (*ast.Node, error) {
	return p.keywordExpr("Print", syntax.Print)
}

func (p *Parser) keywordExpr(construct string, k syntax.Keyword) (*ast.Node, error) {
	if !p.acceptKeyword(k) {
		return nil, nil
	}
	e, err := p.require(construct, "expression", p.expr)
	if err != nil {
		return nil, err
	}
	return ast.NewKeyword(k, e, nil), nil
}

// expr := addSub (comparison addSub)?
//
// Comparisons do not chain: a < b < c stops after a < b.
func (p *Parser) expr() (*ast.Node, error) {
	left, err := p.addSub()
	if left == nil || err != nil {
		return nil, err
	}
	op, ok := p.acceptComparison()
	if !ok {
		return left, nil
	}
	right, err := p.require("Expr", "operand after "+op.String(), p.addSub)
	if err != nil {
		return nil, err
	}
	return ast.NewOp(op, left, right), nil
}

// addSub := mulDiv (('+'|'-') mulDiv)*
func (p *Parser) addSub() (*ast.Node, error) {
	return p.leftAssoc("AddSub", p.mulDiv, syntax.Add, syntax.Sub)
}

// mulDiv := sqrt (('*'|'/') sqrt)*
func (p *Parser) mulDiv() (*ast.Node, error) {
	return p.leftAssoc("MulDiv", p.sqrt, syntax.Mul, syntax.Div)
}

func (p *Parser) leftAssoc(construct string, operand rule, ops ...syntax.Operator) (*ast.Node, error) {
	left, err := operand()
	if left == nil || err != nil {
		return nil, err
	}
	for {
		op, ok := p.acceptOp(ops...)
		if !ok {
			return left, nil
		}
		right, err := p.require(construct, "operand after "+op.String(), operand)
		if err != nil {
			return nil, err
		}
		left = ast.NewOp(op, left, right)
	}
}

// sqrt := OP(sqrt) BEGIN_EXPR addSub END_EXPR | primary
func (p *Parser) sqrt() (*ast.Node, error) {
	const construct = "Sqrt"
	if _, ok := p.acceptOp(syntax.Sqrt); !ok {
		return p.primary()
	}
	if err := p.expectSep(construct, syntax.BeginExpr); err != nil {
		return nil, err
	}
	arg, err := p.require(construct, "operand", p.addSub)
	if err != nil {
		return nil, err
	}
	if err := p.expectSep(construct, syntax.EndExpr); err != nil {
		return nil, err
	}
	return ast.NewOp(syntax.Sqrt, arg, nil), nil
}

// primary := BEGIN_EXPR expr END_EXPR | funcCall | identifier | number
func (p *Parser) primary() (*ast.Node, error) {
	return p.alt(p.parenthesized, p.funcCall, p.identifier, p.number)
}

func (p *Parser) parenthesized() (*ast.Node, error) {
	const construct = "Primary"
	if !p.acceptSep(syntax.BeginExpr) {
		return nil, nil
	}
	e, err := p.require(construct, "expression", p.expr)
	if err != nil {
		return nil, err
	}
	if err := p.expectSep(construct, syntax.EndExpr); err != nil {
		return nil, err
	}
	return e, nil
}

// funcCall := identifier BEGIN_EXPR expr* END_EXPR
func (p *Parser) funcCall() (*ast.Node, error) {
	const construct = "FuncCall"
	callee, _ := p.identifier()
	if callee == nil || !p.acceptSep(syntax.BeginExpr) {
		return nil, nil
	}
	var args *ast.Node
	for !p.acceptSep(syntax.EndExpr) {
		arg, err := p.require(construct, "argument or "+p.sepText(syntax.EndExpr), p.expr)
		if err != nil {
			return nil, err
		}
		args = ast.Link(syntax.EndExpr, args, arg)
	}
	return ast.NewSep(syntax.BeginExpr, callee, args), nil
}
