package lexer

import (
	"fmt"

	"github.com/midiscript/midiscript/internal/ast"
)

// Kind identifies the category of a lexed token.
type Kind int

const (
	EOF     Kind = iota // sentinel: end of input
	NEWLINE             // statement separator

	// Literals
	NOTE       // C4, D#3, Bb2
	DURATION   // 1/4, 3/8
	NUMBER     // 120
	IDENTIFIER // sequence names

	// Keywords
	TEMPO    // "tempo"
	TIME     // "time"
	SEQUENCE // "sequence"
	CHANNEL  // "channel"
	VELOCITY // "velocity"
	PLAY     // "play"
	REST     // "R"

	// Single-character tokens
	LBRACE   // {
	RBRACE   // }
	LBRACKET // [
	RBRACKET // ]
	SLASH    // /
)

var kindNames = map[Kind]string{
	EOF:        "EOF",
	NEWLINE:    "NEWLINE",
	NOTE:       "NOTE",
	DURATION:   "DURATION",
	NUMBER:     "NUMBER",
	IDENTIFIER: "IDENTIFIER",
	TEMPO:      "TEMPO",
	TIME:       "TIME",
	SEQUENCE:   "SEQUENCE",
	CHANNEL:    "CHANNEL",
	VELOCITY:   "VELOCITY",
	PLAY:       "PLAY",
	REST:       "REST",
	LBRACE:     "LBRACE",
	RBRACE:     "RBRACE",
	LBRACKET:   "LBRACKET",
	RBRACKET:   "RBRACKET",
	SLASH:      "SLASH",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// keywords maps source text to its keyword Kind.
var keywords = map[string]Kind{
	"tempo":    TEMPO,
	"time":     TIME,
	"sequence": SEQUENCE,
	"channel":  CHANNEL,
	"velocity": VELOCITY,
	"play":     PLAY,
	"R":        REST,
}

// Token is a single lexeme with its 1-based source position.
type Token struct {
	Kind    Kind
	Literal string
	Line    int
	Column  int
}

// Pos returns the token position as an ast.Pos.
func (t Token) Pos() ast.Pos {
	return ast.Pos{Line: t.Line, Column: t.Column}
}

func (t Token) String() string {
	switch t.Kind {
	case EOF, NEWLINE:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Literal)
}

// LexError reports a character that cannot start any token.
type LexError struct {
	Char   rune
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: unexpected character %q", e.Line, e.Column, e.Char)
}
