// Package lexer splits program text into classified tokens.
//
// Lexemes are whitespace-delimited. Each one is, in order: a line comment,
// a filler word (dropped), a declarator, keyword, operator or separator from
// the vocabulary, a decimal integer, or an identifier. Anything else is a
// LexError and no stream is produced.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/npillmayer/schuko/tracing"

	"lectern/pkg/ast"
	"lectern/pkg/nametable"
	"lectern/pkg/syntax"
)

func tracer() tracing.Trace {
	return tracing.Select("lectern.lexer")
}

// LexError reports a lexeme that no catalog or literal shape accepts.
type LexError struct {
	Lexeme string
	Pos    Pos
	Err    error // set when the lexeme had the right shape but could not be converted
}

func (e *LexError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: bad lexeme %q: %v", e.Pos, e.Lexeme, e.Err)
	}
	return fmt.Sprintf("%s: unknown lexeme %q", e.Pos, e.Lexeme)
}

func (e *LexError) Unwrap() error { return e.Err }

// Lexer holds the state of one tokenizing pass.
type Lexer struct {
	src   *Source
	vocab *syntax.Vocabulary
	names *nametable.Table
}

// Tokenize consumes src and returns its tokens. The returned stream owns a
// fresh name table holding every identifier in first-occurrence order.
func Tokenize(src *Source, vocab *syntax.Vocabulary) (*Stream, error) {
	l := &Lexer{src: src, vocab: vocab, names: nametable.New()}
	tokens := make([]Token, 0, initialTokens)
	for {
		lexeme, at, ok := src.nextLexeme()
		if !ok {
			break
		}
		// A comment marker inside a lexeme ends it; the rest of the line is dropped.
		if i := strings.Index(lexeme, vocab.Comment); i >= 0 {
			lexeme = lexeme[:i]
			src.skipLine()
		}
		if lexeme == "" || vocab.IsFiller(lexeme) {
			continue
		}
		node, err := l.classify(lexeme, at)
		if err != nil {
			tracer().Errorf("lex: %v", err)
			return nil, err
		}
		tok := Token{Node: node, Lexeme: lexeme, Pos: at}
		tracer().Debugf("token %s", tok)
		tokens = append(tokens, tok)
	}
	tracer().Infof("lexed %d tokens, %d names", len(tokens), l.names.Len())
	return &Stream{
		tokens: tokens,
		names:  l.names,
		lines:  src.Lines(),
		end:    src.pos(),
	}, nil
}

// Lex is Tokenize over a string.
func Lex(text string, vocab *syntax.Vocabulary) (*Stream, error) {
	return Tokenize(NewSource(text), vocab)
}

func (l *Lexer) classify(lexeme string, at Pos) (*ast.Node, error) {
	if d, ok := l.vocab.LookupDeclarator(lexeme); ok {
		return ast.NewDecl(d, nil, nil), nil
	}
	if k, ok := l.vocab.LookupKeyword(lexeme); ok {
		return ast.NewKeyword(k, nil, nil), nil
	}
	if o, ok := l.vocab.LookupOperator(lexeme); ok {
		return ast.NewOp(o, nil, nil), nil
	}
	if s, ok := l.vocab.LookupSeparator(lexeme); ok {
		return ast.NewSep(s, nil, nil), nil
	}
	if isNumber(lexeme) {
		v, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return nil, &LexError{Lexeme: lexeme, Pos: at, Err: err}
		}
		return ast.NewNumber(v), nil
	}
	if isIdentifier(lexeme) {
		idx, err := l.names.Intern(lexeme)
		if err != nil {
			return nil, fmt.Errorf("%s: identifier %q: %w", at, lexeme, err)
		}
		return ast.NewVariable(idx), nil
	}
	return nil, &LexError{Lexeme: lexeme, Pos: at}
}

// isNumber matches an optional '-' followed by one or more ASCII digits.
func isNumber(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return false
		}
	}
	return true
}

// isIdentifier matches a letter followed by letters or digits. Underscores
// are reserved for catalog spellings.
func isIdentifier(s string) bool {
	for i, r := range s {
		if i == 0 && !unicode.IsLetter(r) {
			return false
		}
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
