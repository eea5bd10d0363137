package lexer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(tokens []Token) []Kind {
	out := make([]Kind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}
	return out
}

func withoutNewlines(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if tok.Kind != NEWLINE {
			out = append(out, tok)
		}
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:     "Empty",
			input:    "",
			expected: []Token{{Kind: EOF, Line: 1, Column: 1}},
		},
		{
			name:  "Time signature stays split",
			input: "time 4/4",
			expected: []Token{
				{Kind: TIME, Literal: "time", Line: 1, Column: 1},
				{Kind: NUMBER, Literal: "4", Line: 1, Column: 6},
				{Kind: SLASH, Literal: "/", Line: 1, Column: 7},
				{Kind: NUMBER, Literal: "4", Line: 1, Column: 8},
				{Kind: EOF, Line: 1, Column: 9},
			},
		},
		{
			name:  "Note duration fuses",
			input: "C4 1/4",
			expected: []Token{
				{Kind: NOTE, Literal: "C4", Line: 1, Column: 1},
				{Kind: DURATION, Literal: "1/4", Line: 1, Column: 4},
				{Kind: EOF, Line: 1, Column: 7},
			},
		},
		{
			name:  "Single characters",
			input: "{ } [ ] /",
			expected: []Token{
				{Kind: LBRACE, Literal: "{", Line: 1, Column: 1},
				{Kind: RBRACE, Literal: "}", Line: 1, Column: 3},
				{Kind: LBRACKET, Literal: "[", Line: 1, Column: 5},
				{Kind: RBRACKET, Literal: "]", Line: 1, Column: 7},
				{Kind: SLASH, Literal: "/", Line: 1, Column: 9},
				{Kind: EOF, Line: 1, Column: 10},
			},
		},
		{
			name:  "Keywords and identifiers",
			input: "tempo time sequence channel velocity play R melody_1 Rx",
			expected: []Token{
				{Kind: TEMPO, Literal: "tempo", Line: 1, Column: 1},
				{Kind: TIME, Literal: "time", Line: 1, Column: 7},
				{Kind: SEQUENCE, Literal: "sequence", Line: 1, Column: 12},
				{Kind: CHANNEL, Literal: "channel", Line: 1, Column: 21},
				{Kind: VELOCITY, Literal: "velocity", Line: 1, Column: 29},
				{Kind: PLAY, Literal: "play", Line: 1, Column: 38},
				{Kind: REST, Literal: "R", Line: 1, Column: 43},
				{Kind: IDENTIFIER, Literal: "melody_1", Line: 1, Column: 45},
				{Kind: IDENTIFIER, Literal: "Rx", Line: 1, Column: 54},
				{Kind: EOF, Line: 1, Column: 56},
			},
		},
		{
			name:  "Notes with accidentals and case",
			input: "D#3 Bb2 c10 g4",
			expected: []Token{
				{Kind: NOTE, Literal: "D#3", Line: 1, Column: 1},
				{Kind: NOTE, Literal: "Bb2", Line: 1, Column: 5},
				{Kind: NOTE, Literal: "c10", Line: 1, Column: 9},
				{Kind: NOTE, Literal: "g4", Line: 1, Column: 13},
				{Kind: EOF, Line: 1, Column: 15},
			},
		},
		{
			name:  "Comments are dropped, newline kept",
			input: "tempo 90 // slow\nplay main",
			expected: []Token{
				{Kind: TEMPO, Literal: "tempo", Line: 1, Column: 1},
				{Kind: NUMBER, Literal: "90", Line: 1, Column: 7},
				{Kind: NEWLINE, Literal: "\n", Line: 1, Column: 17},
				{Kind: PLAY, Literal: "play", Line: 2, Column: 1},
				{Kind: IDENTIFIER, Literal: "main", Line: 2, Column: 6},
				{Kind: EOF, Line: 2, Column: 10},
			},
		},
		{
			name:  "Slash without digits does not fuse",
			input: "4/ x",
			expected: []Token{
				{Kind: NUMBER, Literal: "4", Line: 1, Column: 1},
				{Kind: SLASH, Literal: "/", Line: 1, Column: 2},
				{Kind: IDENTIFIER, Literal: "x", Line: 1, Column: 4},
				{Kind: EOF, Line: 1, Column: 5},
			},
		},
		{
			name:  "Number then comment",
			input: "120//x",
			expected: []Token{
				{Kind: NUMBER, Literal: "120", Line: 1, Column: 1},
				{Kind: EOF, Line: 1, Column: 7},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, tokens)
		})
	}
}

func TestTokenizeSignatureModeResets(t *testing.T) {
	tokens, err := Tokenize("time 3/4\nsequence m { E4 3/8 }")
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		TIME, NUMBER, SLASH, NUMBER, NEWLINE,
		SEQUENCE, IDENTIFIER, LBRACE, NOTE, DURATION, RBRACE, EOF,
	}, kinds(tokens))
}

func TestTokenizeSignatureModeNeedsAdjacentKeyword(t *testing.T) {
	// A newline between the keyword and the numbers clears the mode.
	tokens, err := Tokenize("time\n4/4")
	require.NoError(t, err)
	assert.Equal(t, []Kind{TIME, NEWLINE, DURATION, EOF}, kinds(tokens))
}

func TestTokenizeProgram(t *testing.T) {
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

	tokens, err := Tokenize(source)
	require.NoError(t, err)

	assert.Equal(t, []Kind{
		TEMPO, NUMBER,
		TIME, NUMBER, SLASH, NUMBER,
		SEQUENCE, IDENTIFIER, LBRACE,
		NOTE, DURATION,
		LBRACKET, NOTE, NOTE, NOTE, RBRACKET, DURATION,
		REST, DURATION,
		RBRACE,
		PLAY, IDENTIFIER,
		EOF,
	}, kinds(withoutNewlines(tokens)))
}

func TestTokenizeNoteShapeWins(t *testing.T) {
	// Any word that starts with A-G and ends in a digit is a NOTE; the
	// generator decides whether it names a real pitch.
	tokens, err := Tokenize("bass1 Cmaj7 verse2")
	require.NoError(t, err)
	assert.Equal(t, []Kind{NOTE, NOTE, IDENTIFIER, EOF}, kinds(tokens))
}

func TestTokenizeLexError(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		char   rune
		line   int
		column int
	}{
		{name: "At sign", input: "tempo @", char: '@', line: 1, column: 7},
		{name: "Second line", input: "play main\n  C4 1/4 -", char: '-', line: 2, column: 10},
		{name: "Parenthesis", input: "(", char: '(', line: 1, column: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Tokenize(tt.input)
			require.Error(t, err)
			assert.Nil(t, tokens, "no partial token stream on error")

			var lexErr *LexError
			require.True(t, errors.As(err, &lexErr))
			assert.Equal(t, tt.char, lexErr.Char)
			assert.Equal(t, tt.line, lexErr.Line)
			assert.Equal(t, tt.column, lexErr.Column)
		})
	}
}

func TestLexErrorMessage(t *testing.T) {
	err := &LexError{Char: '$', Line: 3, Column: 14}
	assert.Equal(t, `3:14: unexpected character '$'`, err.Error())
}

func TestStepIsPure(t *testing.T) {
	c := cursor{src: []rune("4/4"), line: 1, col: 1}

	first, _, err := step(c, modeDefault)
	require.NoError(t, err)
	again, _, err := step(c, modeDefault)
	require.NoError(t, err)
	sig, _, err := step(c, modeSignature)
	require.NoError(t, err)

	assert.Equal(t, first, again)
	assert.Equal(t, DURATION, first.Kind)
	assert.Equal(t, NUMBER, sig.Kind)
	assert.Equal(t, "4", sig.Literal)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "DURATION", DURATION.String())
	assert.Equal(t, "Kind(99)", Kind(99).String())
	assert.Equal(t, `NOTE("C4")`, Token{Kind: NOTE, Literal: "C4"}.String())
	assert.Equal(t, "EOF", Token{Kind: EOF}.String())
}
