package compiler

import (
	"errors"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/generator"
	"github.com/midiscript/midiscript/internal/lexer"
	"github.com/midiscript/midiscript/internal/parser"
)

// Error codes (E2xx pipeline, W3xx warnings).
const (
	ErrConfig            = "E008" // invalid configuration
	ErrLex               = "E201" // unexpected character
	ErrParse             = "E202" // grammar or semantic parse failure
	ErrUndefinedSequence = "E203" // reference to an undeclared sequence
	ErrCyclicSequence    = "E204" // sequence reaches itself
	ErrInvalidNote       = "E205" // malformed note or pitch outside 0..127
	ErrInvalidDuration   = "E206" // zero duration or delta overflow
	ErrNoMainSequence    = "E207" // missing or undeclared play target

	WarnUnusedSequence = "W301" // declared but unreachable from the play target
	WarnCycleUnreached = "W302" // cycle among sequences that are never played
)

// ErrorCode returns the code for a pipeline or config error, or "" when err
// is none of them.
func ErrorCode(err error) string {
	var (
		lexErr      *lexer.LexError
		parseErr    *parser.ParseError
		undefErr    *generator.UndefinedSequenceError
		cycleErr    *generator.CyclicSequenceError
		noteErr     *generator.InvalidNoteError
		durationErr *ast.InvalidDurationError
		noMainErr   *generator.NoMainSequenceError
		cfgErr      *config.Error
	)
	switch {
	case errors.As(err, &lexErr):
		return ErrLex
	case errors.As(err, &parseErr):
		return ErrParse
	case errors.As(err, &undefErr):
		return ErrUndefinedSequence
	case errors.As(err, &cycleErr):
		return ErrCyclicSequence
	case errors.As(err, &noteErr):
		return ErrInvalidNote
	case errors.As(err, &durationErr):
		return ErrInvalidDuration
	case errors.As(err, &noMainErr):
		return ErrNoMainSequence
	case errors.As(err, &cfgErr):
		return ErrConfig
	default:
		return ""
	}
}

// ErrorPos returns the source position carried by a pipeline error.
func ErrorPos(err error) (ast.Pos, bool) {
	var (
		lexErr      *lexer.LexError
		parseErr    *parser.ParseError
		undefErr    *generator.UndefinedSequenceError
		cycleErr    *generator.CyclicSequenceError
		noteErr     *generator.InvalidNoteError
		durationErr *ast.InvalidDurationError
		noMainErr   *generator.NoMainSequenceError
	)
	var pos ast.Pos
	switch {
	case errors.As(err, &lexErr):
		pos = ast.Pos{Line: lexErr.Line, Column: lexErr.Column}
	case errors.As(err, &parseErr):
		pos = ast.Pos{Line: parseErr.Line, Column: parseErr.Column}
	case errors.As(err, &undefErr):
		pos = undefErr.Pos
	case errors.As(err, &cycleErr):
		pos = cycleErr.Pos
	case errors.As(err, &noteErr):
		pos = noteErr.Pos
	case errors.As(err, &durationErr):
		pos = durationErr.Pos
	case errors.As(err, &noMainErr):
		pos = noMainErr.Pos
	}
	return pos, pos.IsValid()
}
