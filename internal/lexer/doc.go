// Package lexer turns MidiScript source text into tokens.
//
// Newlines are significant and produced as NEWLINE tokens; other whitespace
// and // comments are dropped. The only context the lexer carries between
// tokens is a single mode slot that keeps "time 4/4" from being read as a
// duration literal.
package lexer
