package parser

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/lexer"
)

func parseSource(t *testing.T, source string) (*ast.Program, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(source)
	require.NoError(t, err)
	return Parse(tokens)
}

func requireParseError(t *testing.T, err error) *ParseError {
	t.Helper()
	require.Error(t, err)
	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T: %v", err, err)
	return parseErr
}

func TestParseProgram(t *testing.T) {
	source := `
    tempo 120
    time 4/4

    sequence main {
        C4 1/4
        [C4 E4 G4] 1/2
        R 1/4
    }

    play main
    `

	prog, err := parseSource(t, source)
	require.NoError(t, err)

	require.NotNil(t, prog.Tempo)
	assert.Equal(t, 120, prog.Tempo.BPM)
	require.NotNil(t, prog.TimeSignature)
	assert.Equal(t, 4, prog.TimeSignature.Numerator)
	assert.Equal(t, 4, prog.TimeSignature.Denominator)
	assert.Nil(t, prog.Channel)
	assert.Equal(t, "main", prog.MainName())

	seqs := prog.Sequences()
	require.Len(t, seqs, 1)
	main := seqs[0]
	require.Len(t, main.Events, 3)

	note, ok := main.Events[0].(*ast.Note)
	require.True(t, ok)
	assert.Equal(t, "C4", note.Name)
	assert.Equal(t, "1/4", note.Duration.Literal)
	assert.Nil(t, note.Velocity)
	assert.Equal(t, ast.Pos{Line: 6, Column: 9}, note.Pos())

	chord, ok := main.Events[1].(*ast.Chord)
	require.True(t, ok)
	assert.Equal(t, []string{"C4", "E4", "G4"}, chord.Notes)
	assert.Equal(t, int64(1), chord.Duration.Numerator)
	assert.Equal(t, int64(2), chord.Duration.Denominator)

	rest, ok := main.Events[2].(*ast.Rest)
	require.True(t, ok)
	assert.Equal(t, "1/4", rest.Duration.Literal)
}

func TestParseEmptySource(t *testing.T) {
	prog, err := parseSource(t, "")
	require.NoError(t, err)
	assert.Nil(t, prog.Tempo)
	assert.Nil(t, prog.Main)
	assert.Empty(t, prog.Sequences())
}

func TestParseMissingEOFToken(t *testing.T) {
	prog, err := Parse([]lexer.Token{
		{Kind: lexer.PLAY, Literal: "play", Line: 1, Column: 1},
		{Kind: lexer.IDENTIFIER, Literal: "main", Line: 1, Column: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, "main", prog.MainName())
}

func TestParseSequenceRefsAndForwardDeclarations(t *testing.T) {
	source := `sequence main {
    intro
    verse verse
}
sequence intro { R 1/1 }
sequence verse { D4 1/8 }
play main`

	prog, err := parseSource(t, source)
	require.NoError(t, err)

	main, ok := prog.Lookup("main")
	require.True(t, ok)
	require.Len(t, main.Events, 3)
	for i, want := range []string{"intro", "verse", "verse"} {
		ref, ok := main.Events[i].(*ast.SequenceRef)
		require.True(t, ok)
		assert.Equal(t, want, ref.Name)
	}

	var names []string
	for _, seq := range prog.Sequences() {
		names = append(names, seq.Name)
	}
	assert.Equal(t, []string{"main", "intro", "verse"}, names)
}

func TestParseVelocitySuffix(t *testing.T) {
	prog, err := parseSource(t, "sequence m {\n  C4 1/4 velocity 90\n  [C4 G4] 1/2 velocity 1\n  D4 1/4\n}")
	require.NoError(t, err)

	m, _ := prog.Lookup("m")
	require.Len(t, m.Events, 3)

	note := m.Events[0].(*ast.Note)
	require.NotNil(t, note.Velocity)
	assert.Equal(t, 90, *note.Velocity)

	chord := m.Events[1].(*ast.Chord)
	require.NotNil(t, chord.Velocity)
	assert.Equal(t, 1, *chord.Velocity)

	assert.Nil(t, m.Events[2].(*ast.Note).Velocity)
}

func TestParseChannel(t *testing.T) {
	prog, err := parseSource(t, "channel 10\nsequence drums { C2 1/4 }\nplay drums")
	require.NoError(t, err)
	require.NotNil(t, prog.Channel)
	assert.Equal(t, 10, prog.Channel.Channel)
}

func TestParseChordAcrossLines(t *testing.T) {
	prog, err := parseSource(t, "sequence m {\n  [C4\n   E4\n   G4] 1/2\n}")
	require.NoError(t, err)

	m, _ := prog.Lookup("m")
	require.Len(t, m.Events, 1)
	assert.Equal(t, []string{"C4", "E4", "G4"}, m.Events[0].(*ast.Chord).Notes)
}

func TestParseStatementsSpanNewlines(t *testing.T) {
	// expect skips newlines, so a statement may wrap after its keyword.
	prog, err := parseSource(t, "tempo\n  96\nplay\n  main")
	require.NoError(t, err)
	assert.Equal(t, 96, prog.Tempo.BPM)
	assert.Equal(t, "main", prog.MainName())
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
		actual   lexer.Kind
		line     int
		column   int
	}{
		{
			name:     "Note without duration",
			source:   "sequence m { C4 }",
			expected: "DURATION",
			actual:   lexer.RBRACE,
			line:     1, column: 17,
		},
		{
			name:     "Empty chord",
			source:   "sequence m { [] 1/4 }",
			expected: "NOTE",
			actual:   lexer.RBRACKET,
			line:     1, column: 15,
		},
		{
			name:     "Unterminated sequence",
			source:   "sequence m {\n  C4 1/4\n",
			expected: "RBRACE",
			actual:   lexer.EOF,
			line:     3, column: 1,
		},
		{
			name:     "Number where duration expected",
			source:   "sequence m { C4 4 }",
			expected: "DURATION",
			actual:   lexer.NUMBER,
			line:     1, column: 17,
		},
		{
			name:     "Unknown top-level token",
			source:   "C4 1/4",
			expected: "TEMPO, TIME, CHANNEL, SEQUENCE or PLAY",
			actual:   lexer.NOTE,
			line:     1, column: 1,
		},
		{
			name:     "Time signature written as duration",
			source:   "time\n4/4",
			expected: "NUMBER",
			actual:   lexer.DURATION,
			line:     2, column: 1,
		},
		{
			name:     "Play without name",
			source:   "play {",
			expected: "IDENTIFIER",
			actual:   lexer.LBRACE,
			line:     1, column: 6,
		},
		{
			name:     "Sequence named like a note",
			source:   "sequence bass1 { C2 1/4 }",
			expected: "IDENTIFIER",
			actual:   lexer.NOTE,
			line:     1, column: 10,
		},
		{
			name:     "Unexpected token in body",
			source:   "sequence m { C4 1/4 tempo }",
			expected: "RBRACE",
			actual:   lexer.TEMPO,
			line:     1, column: 21,
		},
		{
			name:     "Velocity without value",
			source:   "sequence m { C4 1/4 velocity }",
			expected: "NUMBER",
			actual:   lexer.RBRACE,
			line:     1, column: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := parseSource(t, tt.source)
			assert.Nil(t, prog, "no partial program on error")

			parseErr := requireParseError(t, err)
			assert.Equal(t, tt.expected, parseErr.Expected)
			assert.Equal(t, tt.actual, parseErr.Actual)
			assert.Equal(t, tt.line, parseErr.Line)
			assert.Equal(t, tt.column, parseErr.Column)
		})
	}
}

func TestParseInvalidStatements(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{name: "Duplicate tempo", source: "tempo 120\ntempo 90", message: "tempo already set at 1:1"},
		{name: "Duplicate time", source: "time 4/4\ntime 3/4", message: "time signature already set"},
		{name: "Duplicate channel", source: "channel 1 channel 2", message: "channel already set"},
		{name: "Duplicate play", source: "play a\nplay b", message: `play target already set to "a"`},
		{name: "Duplicate sequence", source: "sequence a { }\nsequence a { }", message: `sequence "a" already declared at 1:1`},
		{name: "Tempo zero", source: "tempo 0", message: "tempo 0 out of range"},
		{name: "Tempo too slow for meta event", source: "tempo 3", message: "tempo 3 out of range"},
		{name: "Tempo overflow", source: "tempo 99999999999999999999", message: "out of range"},
		{name: "Numerator zero", source: "time 0/4", message: "numerator 0 out of range"},
		{name: "Denominator not power of two", source: "time 4/3", message: "denominator 3 is not a power of two"},
		{name: "Denominator past a byte", source: "time 4/256", message: "denominator 256 out of range [1, 128]"},
		{name: "Channel zero", source: "channel 0", message: "channel 0 out of range [1, 16]"},
		{name: "Channel seventeen", source: "channel 17", message: "channel 17 out of range"},
		{name: "Velocity too loud", source: "sequence m { C4 1/4 velocity 128 }", message: "velocity 128 out of range [1, 127]"},
		{name: "Velocity zero", source: "sequence m { C4 1/4 velocity 0 }", message: "velocity 0 out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := parseSource(t, tt.source)
			assert.Nil(t, prog)
			parseErr := requireParseError(t, err)
			assert.Contains(t, parseErr.Message, tt.message)
		})
	}
}

func TestParseInvalidDuration(t *testing.T) {
	prog, err := parseSource(t, "sequence m {\n  C4 0/4\n}")
	assert.Nil(t, prog)
	require.Error(t, err)

	var durErr *ast.InvalidDurationError
	require.True(t, errors.As(err, &durErr))
	assert.Equal(t, "0/4", durErr.Literal)
	assert.Equal(t, ast.Pos{Line: 2, Column: 6}, durErr.Pos)
}

func TestParseErrorMessages(t *testing.T) {
	err := &ParseError{Expected: "DURATION", Actual: lexer.RBRACE, Literal: "}", Line: 1, Column: 17}
	assert.Equal(t, `1:17: expected DURATION, got RBRACE "}"`, err.Error())

	err = &ParseError{Expected: "RBRACE", Actual: lexer.EOF, Line: 3, Column: 1}
	assert.Equal(t, "3:1: expected RBRACE, got EOF", err.Error())

	err = &ParseError{Expected: "NOTE", Actual: lexer.NEWLINE, Literal: "\n", Line: 2, Column: 4}
	assert.Equal(t, "2:4: expected NOTE, got NEWLINE", err.Error())

	err = &ParseError{Message: "channel 17 out of range [1, 16]", Line: 1, Column: 9}
	assert.Equal(t, "1:9: channel 17 out of range [1, 16]", err.Error())
}
