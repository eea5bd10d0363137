package parser

import (
	"fmt"

	"github.com/midiscript/midiscript/internal/lexer"
)

// ParseError reports an unexpected token or an invalid statement.
//
// Syntax errors set Expected and Actual. Errors about well-formed but
// invalid statements (duplicate tempo, channel 17, ...) set Message.
type ParseError struct {
	Expected string     // expected token kind(s), e.g. "DURATION"
	Actual   lexer.Kind // kind of the offending token
	Literal  string     // literal of the offending token
	Message  string
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
	}
	if e.Literal != "" && e.Actual != lexer.NEWLINE {
		return fmt.Sprintf("%d:%d: expected %s, got %s %q", e.Line, e.Column, e.Expected, e.Actual, e.Literal)
	}
	return fmt.Sprintf("%d:%d: expected %s, got %s", e.Line, e.Column, e.Expected, e.Actual)
}

func unexpected(expected string, tok lexer.Token) *ParseError {
	return &ParseError{
		Expected: expected,
		Actual:   tok.Kind,
		Literal:  tok.Literal,
		Line:     tok.Line,
		Column:   tok.Column,
	}
}

func invalid(tok lexer.Token, format string, args ...any) *ParseError {
	return &ParseError{
		Actual:  tok.Kind,
		Literal: tok.Literal,
		Message: fmt.Sprintf(format, args...),
		Line:    tok.Line,
		Column:  tok.Column,
	}
}
