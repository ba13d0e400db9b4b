package lexer

import (
	"fmt"

	"lectern/pkg/ast"
	"lectern/pkg/nametable"
)

// initialTokens pre-sizes the token slice.
const initialTokens = 1024

// Token is one classified lexeme: a childless node plus where it came from.
type Token struct {
	Node   *ast.Node
	Lexeme string // the exact source text that was matched
	Pos    Pos
}

func (t Token) String() string {
	return fmt.Sprintf("%-4s %-10s %-14q  line %d", t.Node.Kind(), t.payload(), t.Lexeme, t.Pos.Line)
}

func (t Token) payload() string {
	if v, ok := t.Node.NumberValue(); ok {
		return fmt.Sprintf("%d", v)
	}
	if idx, ok := t.Node.NameIndex(); ok {
		return fmt.Sprintf("#%d", idx)
	}
	return t.Node.Code()
}

// Stream is the lexer's output: tokens in source order, a cursor, and the
// name table filled while lexing.
type Stream struct {
	tokens []Token
	offset int
	names  *nametable.Table
	lines  []string
	end    Pos
}

// Len is the number of tokens produced.
func (s *Stream) Len() int { return len(s.tokens) }

// Offset is the index of the next unconsumed token.
func (s *Stream) Offset() int { return s.offset }

func (s *Stream) Exhausted() bool { return s.offset >= len(s.tokens) }

// Peek returns the next token without consuming it.
func (s *Stream) Peek() (Token, bool) {
	if s.Exhausted() {
		return Token{}, false
	}
	return s.tokens[s.offset], true
}

// Next consumes and returns the next token.
func (s *Stream) Next() (Token, bool) {
	tok, ok := s.Peek()
	if ok {
		s.offset++
	}
	return tok, ok
}

// Mark returns a checkpoint for Reset.
func (s *Stream) Mark() int { return s.offset }

// Reset moves the cursor back to a checkpoint taken with Mark.
func (s *Stream) Reset(mark int) {
	if mark < 0 || mark > len(s.tokens) {
		panic(fmt.Sprintf("lexer: reset to %d outside stream of %d tokens", mark, len(s.tokens)))
	}
	s.offset = mark
}

// Tokens returns the produced tokens. Callers must not modify them.
func (s *Stream) Tokens() []Token { return s.tokens }

// Names is the name table built while lexing.
func (s *Stream) Names() *nametable.Table { return s.names }

// End is the position just past the last lexeme.
func (s *Stream) End() Pos { return s.end }

// Line returns source line n (1-based), or "" when out of range.
func (s *Stream) Line(n int) string {
	if n < 1 || n > len(s.lines) {
		return ""
	}
	return s.lines[n-1]
}
