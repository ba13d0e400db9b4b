package lexer

import (
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pos is a location in the source text. Line and Col are 1-based; Col counts runes.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string { return fmt.Sprintf("line %d, col %d", p.Line, p.Col) }

// Source owns program text and a read cursor that only moves forward.
type Source struct {
	text   string
	offset int
	line   int
	col    int
}

func NewSource(text string) *Source {
	return &Source{text: text, line: 1, col: 1}
}

// ReadSource loads the program stored at path.
func ReadSource(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program %q: %w", path, err)
	}
	return NewSource(string(data)), nil
}

// Text returns the whole program text.
func (s *Source) Text() string { return s.text }

// Exhausted reports whether the cursor has reached the end of the text.
func (s *Source) Exhausted() bool { return s.offset >= len(s.text) }

func (s *Source) pos() Pos { return Pos{Offset: s.offset, Line: s.line, Col: s.col} }

// peek returns the rune under the cursor, or utf8.RuneError at the end.
func (s *Source) peek() rune {
	if s.offset >= len(s.text) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(s.text[s.offset:])
	return r
}

func (s *Source) advance() {
	if s.offset >= len(s.text) {
		return
	}
	r, size := utf8.DecodeRuneInString(s.text[s.offset:])
	s.offset += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func (s *Source) skipSpace() {
	for !s.Exhausted() && unicode.IsSpace(s.peek()) {
		s.advance()
	}
}

// nextLexeme returns the next whitespace-delimited lexeme and where it starts.
// ok is false once only whitespace remains.
func (s *Source) nextLexeme() (lexeme string, at Pos, ok bool) {
	s.skipSpace()
	if s.Exhausted() {
		return "", s.pos(), false
	}
	at = s.pos()
	for !s.Exhausted() && !unicode.IsSpace(s.peek()) {
		s.advance()
	}
	return s.text[at.Offset:s.offset], at, true
}

// skipLine moves the cursor to the next newline, which is left unconsumed.
func (s *Source) skipLine() {
	for !s.Exhausted() && s.peek() != '\n' {
		s.advance()
	}
}

// Lines splits the text for diagnostics.
func (s *Source) Lines() []string {
	return strings.Split(s.text, "\n")
}
