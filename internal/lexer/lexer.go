package lexer

import "unicode"

// mode is the lexer's single slot of context: the kind of the previously
// emitted token matters only in one case, right after the "time" keyword.
type mode int

const (
	modeDefault   mode = iota
	modeSignature      // previous token was TIME: "4/4" is NUMBER SLASH NUMBER
)

// modeAfter returns the mode for the token that follows one of kind k.
func modeAfter(k Kind) mode {
	if k == TIME {
		return modeSignature
	}
	return modeDefault
}

// cursor is an immutable view of the remaining input.
type cursor struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int
	col  int
}

func (c cursor) done() bool {
	return c.pos >= len(c.src)
}

func (c cursor) peek() rune {
	if c.pos >= len(c.src) {
		return 0
	}
	return c.src[c.pos]
}

func (c cursor) peekAt(offset int) rune {
	if c.pos+offset >= len(c.src) {
		return 0
	}
	return c.src[c.pos+offset]
}

func (c cursor) advance() cursor {
	if c.pos >= len(c.src) {
		return c
	}
	if c.src[c.pos] == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	c.pos++
	return c
}

// Tokenize scans text into tokens terminated by an EOF token.
// It either returns every token or the first LexError, never a prefix.
func Tokenize(text string) ([]Token, error) {
	c := cursor{src: []rune(text), line: 1, col: 1}
	m := modeDefault

	var tokens []Token
	for {
		tok, next, err := step(c, m)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens, nil
		}
		c, m = next, modeAfter(tok.Kind)
	}
}

// step scans one token from c. It is a pure function of the remaining input
// and the mode, returning the cursor positioned after the token.
func step(c cursor, m mode) (Token, cursor, error) {
	for !c.done() {
		r := c.peek()

		switch {
		case r == '\n':
			tok := Token{Kind: NEWLINE, Literal: "\n", Line: c.line, Column: c.col}
			return tok, c.advance(), nil

		case unicode.IsSpace(r):
			c = c.advance()
			continue

		case r == '/' && c.peekAt(1) == '/':
			c = skipComment(c)
			continue

		case isDigit(r):
			tok, next := scanNumber(c, m)
			return tok, next, nil

		case isWordStart(r):
			tok, next := scanWord(c)
			return tok, next, nil
		}

		if kind, ok := singleChar(r); ok {
			tok := Token{Kind: kind, Literal: string(r), Line: c.line, Column: c.col}
			return tok, c.advance(), nil
		}

		return Token{}, c, &LexError{Char: r, Line: c.line, Column: c.col}
	}

	return Token{Kind: EOF, Line: c.line, Column: c.col}, c, nil
}

// skipComment discards everything up to, not including, the next newline.
func skipComment(c cursor) cursor {
	for !c.done() && c.peek() != '\n' {
		c = c.advance()
	}
	return c
}

// scanNumber reads a digit run. Outside signature mode a digit run followed
// by '/' and another digit run becomes one DURATION token.
func scanNumber(c cursor, m mode) (Token, cursor) {
	line, col, start := c.line, c.col, c.pos
	c = scanDigits(c)

	if m != modeSignature && c.peek() == '/' && isDigit(c.peekAt(1)) {
		c = scanDigits(c.advance())
		return Token{Kind: DURATION, Literal: string(c.src[start:c.pos]), Line: line, Column: col}, c
	}

	return Token{Kind: NUMBER, Literal: string(c.src[start:c.pos]), Line: line, Column: col}, c
}

func scanDigits(c cursor) cursor {
	for isDigit(c.peek()) {
		c = c.advance()
	}
	return c
}

// scanWord reads a run of letters, digits, '#' and '_' and classifies it as
// NOTE, a keyword, or IDENTIFIER.
func scanWord(c cursor) (Token, cursor) {
	line, col, start := c.line, c.col, c.pos
	for !c.done() && isWordPart(c.peek()) {
		c = c.advance()
	}
	word := string(c.src[start:c.pos])

	kind := IDENTIFIER
	if isNoteShape(word) {
		kind = NOTE
	} else if kw, ok := keywords[word]; ok {
		kind = kw
	}
	return Token{Kind: kind, Literal: word, Line: line, Column: col}, c
}

// isNoteShape reports whether a word starts with a note letter (either case)
// and ends in a digit. Whether it is a playable pitch is decided later.
func isNoteShape(word string) bool {
	runes := []rune(word)
	if len(runes) < 2 {
		return false
	}
	first := unicode.ToUpper(runes[0])
	return first >= 'A' && first <= 'G' && isDigit(runes[len(runes)-1])
}

func singleChar(r rune) (Kind, bool) {
	switch r {
	case '{':
		return LBRACE, true
	case '}':
		return RBRACE, true
	case '[':
		return LBRACKET, true
	case ']':
		return RBRACKET, true
	case '/':
		return SLASH, true
	}
	return EOF, false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || r == '#' || r == '_'
}

func isWordPart(r rune) bool {
	return isWordStart(r) || isDigit(r)
}
