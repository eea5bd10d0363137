package compiler

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/generator"
)

// Diagnostic levels.
const (
	LevelError   = "error"
	LevelWarning = "warning"
)

// Diagnostic is one problem found by Check.
type Diagnostic struct {
	Code    string `json:"code"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("[%s] %d:%d: %s", d.Code, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("[%s] %s", d.Code, d.Message)
}

// Check reports every problem in prog without generating output. It does
// not stop at the first one. Diagnostics are ordered by source position;
// those without a position come first.
func Check(prog *ast.Program) []Diagnostic {
	var diags []Diagnostic
	add := func(code, level string, pos ast.Pos, format string, args ...any) {
		diags = append(diags, Diagnostic{
			Code:    code,
			Level:   level,
			Message: fmt.Sprintf(format, args...),
			Line:    pos.Line,
			Column:  pos.Column,
		})
	}

	mainOK := false
	switch {
	case prog.Main == nil:
		add(ErrNoMainSequence, LevelError, ast.Pos{}, "program has no play statement")
	default:
		if _, ok := prog.Lookup(prog.Main.Name); ok {
			mainOK = true
		} else {
			add(ErrNoMainSequence, LevelError, prog.Main.Start, "play target %q is not declared", prog.Main.Name)
		}
	}

	// Problems in sequences the play target never reaches cannot affect the
	// output and are lowered to warnings, as unreached cycles are.
	graph, _ := buildReferenceGraph(prog)
	reachable := reachableFrom(prog, graph)

	for _, seq := range prog.Sequences() {
		level := LevelError
		if !reachable[seq.Name] {
			level = LevelWarning
		}
		for _, ev := range seq.Events {
			switch ev := ev.(type) {
			case *ast.SequenceRef:
				if _, ok := prog.Lookup(ev.Name); !ok {
					add(ErrUndefinedSequence, level, ev.Start, "undefined sequence %q", ev.Name)
				}
			case *ast.Note:
				checkNote(add, level, ev.Name, ev.Start)
			case *ast.Chord:
				for _, name := range ev.Notes {
					checkNote(add, level, name, ev.Start)
				}
			}
		}
	}

	for _, c := range AnalyzeCycles(prog) {
		code := ErrCyclicSequence
		if c.Level == LevelWarning {
			code = WarnCycleUnreached
		}
		add(code, c.Level, c.Pos, "%s", c.Message)
	}

	if mainOK {
		for _, seq := range prog.Sequences() {
			if !reachable[seq.Name] {
				add(WarnUnusedSequence, LevelWarning, seq.Start, "sequence %q is never played", seq.Name)
			}
		}
	}

	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if c := cmp.Compare(a.Line, b.Line); c != 0 {
			return c
		}
		return cmp.Compare(a.Column, b.Column)
	})
	return diags
}

func checkNote(add func(string, string, ast.Pos, string, ...any), level, name string, pos ast.Pos) {
	_, err := generator.Key(name, pos)
	var noteErr *generator.InvalidNoteError
	if errors.As(err, &noteErr) {
		add(ErrInvalidNote, level, pos, "invalid note %q: %s", name, noteErr.Reason)
	}
}

// HasErrors reports whether any diagnostic is at level "error".
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return d.Level == LevelError
	})
}
