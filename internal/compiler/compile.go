package compiler

import (
	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/generator"
	"github.com/midiscript/midiscript/internal/lexer"
	"github.com/midiscript/midiscript/internal/parser"
)

// Parse lexes and parses source.
func Parse(source string) (*ast.Program, error) {
	tokens, err := lexer.Tokenize(source)
	if err != nil {
		return nil, err
	}
	return parser.Parse(tokens)
}

// Compile compiles source with the default configuration.
func Compile(source string) ([]byte, error) {
	return CompileWithConfig(source, config.Default())
}

// CompileWithConfig compiles source into Standard MIDI File bytes. Errors are
// returned unwrapped so callers can match the stage that failed with
// errors.As.
func CompileWithConfig(source string, cfg config.Config) ([]byte, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return generator.Generate(prog, cfg)
}
