package generator

import (
	"fmt"
	"strings"

	"github.com/midiscript/midiscript/internal/ast"
)

// NoMainSequenceError means the program has no play statement, or plays a
// sequence that was never declared.
type NoMainSequenceError struct {
	Name string // empty when there is no play statement
	Pos  ast.Pos
}

func (e *NoMainSequenceError) Error() string {
	if e.Name == "" {
		return "no main sequence: program has no play statement"
	}
	return fmt.Sprintf("%s: no main sequence: play target %q is not declared", e.Pos, e.Name)
}

// UndefinedSequenceError is a reference to a sequence that was never declared.
type UndefinedSequenceError struct {
	Name string
	Pos  ast.Pos
}

func (e *UndefinedSequenceError) Error() string {
	return fmt.Sprintf("%s: undefined sequence %q", e.Pos, e.Name)
}

// CyclicSequenceError is a reference back into a sequence that is still
// being expanded. Path runs from the first occurrence of Name to the
// offending reference, e.g. [a b a].
type CyclicSequenceError struct {
	Name string
	Path []string
	Pos  ast.Pos
}

func (e *CyclicSequenceError) Error() string {
	return fmt.Sprintf("%s: cyclic sequence reference: %s", e.Pos, strings.Join(e.Path, " -> "))
}

// InvalidNoteError is a note name that is malformed or maps outside 0..127.
type InvalidNoteError struct {
	Name   string
	Reason string
	Pos    ast.Pos
}

func (e *InvalidNoteError) Error() string {
	return fmt.Sprintf("%s: invalid note %q: %s", e.Pos, e.Name, e.Reason)
}
