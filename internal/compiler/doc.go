// Package compiler wires the lexer, parser and generator into a single
// source-to-bytes call and adds whole-program checks that do not need a
// generation pass.
//
// Compile and CompileWithConfig are fail-fast: they return the first error
// and no bytes. Check collects every problem it can find (undefined
// references, invalid note names, reference cycles, unused sequences) so an
// editor or the CLI can report them together.
//
// ErrorCode maps pipeline errors to the stable codes printed by the CLI.
package compiler
