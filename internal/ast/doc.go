// Package ast defines the syntax tree produced by the MidiScript parser.
//
// The tree is built once by internal/parser and is read-only afterwards.
// The generator walks it but never mutates it, so a *Program can be shared
// between goroutines once Parse returns.
//
// Key constraints:
//   - Optional values (tempo, time signature, channel, velocity, play target)
//     are pointers, never sentinel values
//   - Sequences keep declaration order and are unique by name
//   - Every node records the source position of its first token
package ast
