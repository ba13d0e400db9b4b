package parser

import (
	"fmt"

	"lectern/pkg/lexer"
)

// SyntaxError is the single diagnostic of a failed parse.
type SyntaxError struct {
	Construct string    // grammar rule that had committed, e.g. "FuncDecl"
	Pos       lexer.Pos // position of the offending token, or end of input
	Lexeme    string    // offending source text; empty at end of input
	Msg       string
	Snippet   string // trimmed source line holding Pos
}

func (e *SyntaxError) Error() string {
	snippet := e.Snippet
	if snippet == "" {
		snippet = "<source unavailable>"
	}
	return fmt.Sprintf("%s: %s: %s\n  |> %s", e.Pos, e.Construct, e.Msg, snippet)
}
