package lexer

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"lectern/pkg/ast"
	"lectern/pkg/nametable"
	"lectern/pkg/syntax"
)

// tok is the comparable shape of a Token used by the tables below.
type tok struct {
	Kind    ast.Kind
	Payload string
	Lexeme  string
	Line    int
}

func shapes(s *Stream) []tok {
	var out []tok
	for _, t := range s.Tokens() {
		out = append(out, tok{Kind: t.Node.Kind(), Payload: t.payload(), Lexeme: t.Lexeme, Line: t.Pos.Line})
	}
	return out
}

func TestLex(t *testing.T) {
	tests := []struct {
		name     string
		vocab    *syntax.Vocabulary
		input    string
		expected []tok
	}{
		{
			name:     "Empty",
			vocab:    syntax.English,
			input:    "",
			expected: nil,
		},
		{
			name:     "Only Whitespace",
			vocab:    syntax.English,
			input:    " \n\t \n",
			expected: nil,
		},
		{
			name:  "Variable Declaration",
			vocab: syntax.English,
			input: "vardecl a = 2 + 3 ;",
			expected: []tok{
				{ast.Declarator, "Var", "vardecl", 1},
				{ast.Variable, "#0", "a", 1},
				{ast.Operator, "Assign", "=", 1},
				{ast.Number, "2", "2", 1},
				{ast.Operator, "Add", "+", 1},
				{ast.Number, "3", "3", 1},
				{ast.Separator, "EndLine", ";", 1},
			},
		},
		{
			name:  "Keywords Operators Separators",
			vocab: syntax.English,
			input: "if else while return scan print <= >= == != < > ( ) { } =>",
			expected: []tok{
				{ast.Keyword, "If", "if", 1},
				{ast.Keyword, "Else", "else", 1},
				{ast.Keyword, "While", "while", 1},
				{ast.Keyword, "Return", "return", 1},
				{ast.Keyword, "Scan", "scan", 1},
				{ast.Keyword, "Print", "print", 1},
				{ast.Operator, "LessEqual", "<=", 1},
				{ast.Operator, "MoreEqual", ">=", 1},
				{ast.Operator, "Equal", "==", 1},
				{ast.Operator, "NotEqual", "!=", 1},
				{ast.Operator, "Less", "<", 1},
				{ast.Operator, "More", ">", 1},
				{ast.Separator, "BeginExpr", "(", 1},
				{ast.Separator, "EndExpr", ")", 1},
				{ast.Separator, "BeginBody", "{", 1},
				{ast.Separator, "EndBody", "}", 1},
				{ast.Separator, "EndCondition", "=>", 1},
			},
		},
		{
			name:  "Line Comments",
			vocab: syntax.English,
			input: "print x // the rest ; is ignored\n// whole line\nprint 1 ;",
			expected: []tok{
				{ast.Keyword, "Print", "print", 1},
				{ast.Variable, "#0", "x", 1},
				{ast.Keyword, "Print", "print", 3},
				{ast.Number, "1", "1", 3},
				{ast.Separator, "EndLine", ";", 3},
			},
		},
		{
			name:  "Comment Marker Glued To Text",
			vocab: syntax.English,
			input: "x //comment\ny",
			expected: []tok{
				{ast.Variable, "#0", "x", 1},
				{ast.Variable, "#1", "y", 2},
			},
		},
		{
			name:  "Comment Marker Ends A Lexeme",
			vocab: syntax.English,
			input: "print x// rest ;\nprint 1 ;//done\n",
			expected: []tok{
				{ast.Keyword, "Print", "print", 1},
				{ast.Variable, "#0", "x", 1},
				{ast.Keyword, "Print", "print", 2},
				{ast.Number, "1", "1", 2},
				{ast.Separator, "EndLine", ";", 2},
			},
		},
		{
			name:  "Filler Words Dropped",
			vocab: syntax.English,
			input: "note x obviously clearly",
			expected: []tok{
				{ast.Variable, "#0", "x", 1},
			},
		},
		{
			name:  "Numbers",
			vocab: syntax.English,
			input: "0 42 -5 - 007",
			expected: []tok{
				{ast.Number, "0", "0", 1},
				{ast.Number, "42", "42", 1},
				{ast.Number, "-5", "-5", 1},
				{ast.Operator, "Sub", "-", 1},
				{ast.Number, "7", "007", 1},
			},
		},
		{
			name:  "Identifiers Interned In Order",
			vocab: syntax.English,
			input: "b a b x1",
			expected: []tok{
				{ast.Variable, "#0", "b", 1},
				{ast.Variable, "#1", "a", 1},
				{ast.Variable, "#0", "b", 1},
				{ast.Variable, "#2", "x1", 1},
			},
		},
		{
			name:  "Lecture Vocabulary",
			vocab: syntax.Lecture,
			input: "заметим родные_фивты икс зафиксируем_эпсилон: 5 перерыв_коллеги",
			expected: []tok{
				{ast.Declarator, "Var", "родные_фивты", 1},
				{ast.Variable, "#0", "икс", 1},
				{ast.Operator, "Assign", "зафиксируем_эпсилон:", 1},
				{ast.Number, "5", "5", 1},
				{ast.Separator, "EndLine", "перерыв_коллеги", 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lex(tt.input, tt.vocab)
			if err != nil {
				t.Fatalf("Lex() error = %v", err)
			}
			got := shapes(s)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Lex() =\n%v\nwant\n%v", got, tt.expected)
			}
			if s.Len() != len(tt.expected) {
				t.Errorf("Len() = %d, want %d", s.Len(), len(tt.expected))
			}
		})
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		lexeme string
		line   int
		col    int
	}{
		{"Underscore Identifier", "print x_y ;", "x_y", 1, 7},
		{"Digit Led Identifier", "vardecl 2x = 1 ;", "2x", 1, 9},
		{"Glued Operator", "return x+0 ;", "x+0", 1, 8},
		{"Unknown Symbol", "a\n  @", "@", 2, 3},
		{"Lone Minus Sign Glued", "--", "--", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Lex(tt.input, syntax.English)
			if err == nil {
				t.Fatal("expected an error")
			}
			if s != nil {
				t.Error("a stream was returned alongside the error")
			}
			var lexErr *LexError
			if !errors.As(err, &lexErr) {
				t.Fatalf("error %v is not a *LexError", err)
			}
			if lexErr.Lexeme != tt.lexeme || lexErr.Pos.Line != tt.line || lexErr.Pos.Col != tt.col {
				t.Errorf("got %q at %d:%d, want %q at %d:%d",
					lexErr.Lexeme, lexErr.Pos.Line, lexErr.Pos.Col, tt.lexeme, tt.line, tt.col)
			}
			if !strings.Contains(err.Error(), tt.lexeme) {
				t.Errorf("message %q does not name the lexeme", err.Error())
			}
		})
	}
}

func TestLexNumberOverflow(t *testing.T) {
	_, err := Lex("99999999999999999999", syntax.English)
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("err = %v, want *LexError", err)
	}
	if !errors.Is(err, strconv.ErrRange) {
		t.Errorf("err = %v, want it to wrap strconv.ErrRange", err)
	}
}

func TestLexNameTableOverflow(t *testing.T) {
	var sb strings.Builder
	for i := 0; i <= nametable.Capacity; i++ {
		fmt.Fprintf(&sb, "v%d ", i)
	}
	_, err := Lex(sb.String(), syntax.English)
	if !errors.Is(err, nametable.ErrCapacityExceeded) {
		t.Fatalf("err = %v, want ErrCapacityExceeded", err)
	}
}

func TestStreamCursor(t *testing.T) {
	s, err := Lex("a b c", syntax.English)
	if err != nil {
		t.Fatal(err)
	}
	mark := s.Mark()
	first, _ := s.Next()
	second, _ := s.Next()
	if first.Lexeme != "a" || second.Lexeme != "b" || s.Offset() != 2 {
		t.Fatalf("Next sequence wrong: %q %q offset %d", first.Lexeme, second.Lexeme, s.Offset())
	}
	s.Reset(mark)
	if p, _ := s.Peek(); p.Lexeme != "a" {
		t.Errorf("after Reset Peek = %q", p.Lexeme)
	}
	s.Reset(3)
	if !s.Exhausted() {
		t.Error("stream not exhausted at end")
	}
	if _, ok := s.Next(); ok {
		t.Error("Next past the end succeeded")
	}
	if s.Names().Len() != 3 {
		t.Errorf("Names().Len() = %d", s.Names().Len())
	}
}

func TestStreamLines(t *testing.T) {
	s, err := Lex("print x ;\n  print y ;", syntax.English)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Line(2); got != "  print y ;" {
		t.Errorf("Line(2) = %q", got)
	}
	if got := s.Line(9); got != "" {
		t.Errorf("Line(9) = %q", got)
	}
	if end := s.End(); end.Line != 2 {
		t.Errorf("End().Line = %d", end.Line)
	}
}
