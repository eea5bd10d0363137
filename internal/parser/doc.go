// Package parser builds an ast.Program from a lexer token stream.
//
// The parser is strict recursive descent with one token of lookahead. It
// fails on the first error and never returns a partial program: a compiler
// whose output is a binary file must not silently drop constructs.
package parser
