package parser

import (
	"strconv"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/lexer"
	"github.com/midiscript/midiscript/internal/midifile"
)

// Statement limits. Tempo must fit the 24-bit microseconds-per-quarter field
// of the tempo meta event; time signature parts are single bytes, and the
// denominator is a byte before its logarithm is taken.
const (
	MinTempo       = 4
	MaxTempo       = 60_000_000
	MaxNumerator   = 255
	MaxDenominator = midifile.MaxDenominator
	MinChannel     = 1
	MaxChannel     = 16
	MinVelocity    = 1
	MaxVelocity    = 127
)

type parser struct {
	tokens []lexer.Token
	pos    int
}

// Parse consumes the full token stream and returns the program.
// The stream should end with an EOF token; a missing one is treated as
// end of input at the last token's position.
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

// current returns the lookahead token.
func (p *parser) current() lexer.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	eof := lexer.Token{Kind: lexer.EOF, Line: 1, Column: 1}
	if n := len(p.tokens); n > 0 {
		eof.Line, eof.Column = p.tokens[n-1].Line, p.tokens[n-1].Column
	}
	return eof
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) skipNewlines() {
	for p.current().Kind == lexer.NEWLINE {
		p.advance()
	}
}

// expect skips newlines, then consumes a token of the given kind or fails.
func (p *parser) expect(kind lexer.Kind) (lexer.Token, error) {
	p.skipNewlines()
	tok := p.current()
	if tok.Kind != kind {
		return tok, unexpected(kind.String(), tok)
	}
	p.advance()
	return tok, nil
}

func (p *parser) parseProgram() (*ast.Program, error) {
	prog := ast.NewProgram()

	for {
		p.skipNewlines()
		tok := p.current()

		var err error
		switch tok.Kind {
		case lexer.EOF:
			return prog, nil
		case lexer.TEMPO:
			err = p.parseTempo(prog)
		case lexer.TIME:
			err = p.parseTimeSignature(prog)
		case lexer.CHANNEL:
			err = p.parseChannel(prog)
		case lexer.SEQUENCE:
			err = p.parseSequence(prog)
		case lexer.PLAY:
			err = p.parsePlay(prog)
		default:
			err = unexpected("TEMPO, TIME, CHANNEL, SEQUENCE or PLAY", tok)
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseTempo(prog *ast.Program) error {
	kw, err := p.expect(lexer.TEMPO)
	if err != nil {
		return err
	}
	if prog.Tempo != nil {
		return invalid(kw, "tempo already set at %s", prog.Tempo.Start)
	}

	bpm, err := p.expectInt(MinTempo, MaxTempo, "tempo")
	if err != nil {
		return err
	}

	prog.Tempo = &ast.TempoChange{BPM: bpm, Start: kw.Pos()}
	return nil
}

func (p *parser) parseTimeSignature(prog *ast.Program) error {
	kw, err := p.expect(lexer.TIME)
	if err != nil {
		return err
	}
	if prog.TimeSignature != nil {
		return invalid(kw, "time signature already set at %s", prog.TimeSignature.Start)
	}

	num, err := p.expectInt(1, MaxNumerator, "time signature numerator")
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.SLASH); err != nil {
		return err
	}

	denTok := p.current()
	den, err := p.expectInt(1, MaxDenominator, "time signature denominator")
	if err != nil {
		return err
	}
	if den&(den-1) != 0 {
		return invalid(denTok, "time signature denominator %d is not a power of two", den)
	}

	prog.TimeSignature = &ast.TimeSignature{Numerator: num, Denominator: den, Start: kw.Pos()}
	return nil
}

func (p *parser) parseChannel(prog *ast.Program) error {
	kw, err := p.expect(lexer.CHANNEL)
	if err != nil {
		return err
	}
	if prog.Channel != nil {
		return invalid(kw, "channel already set at %s", prog.Channel.Start)
	}

	ch, err := p.expectInt(MinChannel, MaxChannel, "channel")
	if err != nil {
		return err
	}

	prog.Channel = &ast.ChannelChange{Channel: ch, Start: kw.Pos()}
	return nil
}

func (p *parser) parsePlay(prog *ast.Program) error {
	kw, err := p.expect(lexer.PLAY)
	if err != nil {
		return err
	}
	if prog.Main != nil {
		return invalid(kw, "play target already set to %q at %s", prog.Main.Name, prog.Main.Start)
	}

	name, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return err
	}

	prog.Main = &ast.PlayStatement{Name: name.Literal, Start: kw.Pos()}
	return nil
}

// parseSequence parses: "sequence" IDENT "{" Event* "}".
func (p *parser) parseSequence(prog *ast.Program) error {
	kw, err := p.expect(lexer.SEQUENCE)
	if err != nil {
		return err
	}
	name, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return err
	}
	if _, err := p.expect(lexer.LBRACE); err != nil {
		return err
	}

	seq := &ast.Sequence{Name: name.Literal, Start: kw.Pos()}

events:
	for {
		p.skipNewlines()

		var ev ast.Event
		switch p.current().Kind {
		case lexer.NOTE:
			ev, err = p.parseNote()
		case lexer.LBRACKET:
			ev, err = p.parseChord()
		case lexer.REST:
			ev, err = p.parseRest()
		case lexer.IDENTIFIER:
			ev, err = p.parseSequenceRef()
		default:
			break events
		}
		if err != nil {
			return err
		}
		seq.Events = append(seq.Events, ev)
	}

	if _, err := p.expect(lexer.RBRACE); err != nil {
		return err
	}

	if err := prog.AddSequence(seq); err != nil {
		return invalid(name, "%v", err)
	}
	return nil
}

func (p *parser) parseNote() (ast.Event, error) {
	tok, err := p.expect(lexer.NOTE)
	if err != nil {
		return nil, err
	}
	dur, err := p.parseDuration()
	if err != nil {
		return nil, err
	}
	vel, err := p.parseVelocity()
	if err != nil {
		return nil, err
	}
	return &ast.Note{Name: tok.Literal, Duration: dur, Velocity: vel, Start: tok.Pos()}, nil
}

// parseChord parses: "[" NOTE+ "]" DURATION.
func (p *parser) parseChord() (ast.Event, error) {
	open, err := p.expect(lexer.LBRACKET)
	if err != nil {
		return nil, err
	}

	first, err := p.expect(lexer.NOTE)
	if err != nil {
		return nil, err
	}
	notes := []string{first.Literal}
	for {
		p.skipNewlines()
		if p.current().Kind != lexer.NOTE {
			break
		}
		notes = append(notes, p.current().Literal)
		p.advance()
	}

	if _, err := p.expect(lexer.RBRACKET); err != nil {
		return nil, err
	}
	dur, err := p.parseDuration()
	if err != nil {
		return nil, err
	}
	vel, err := p.parseVelocity()
	if err != nil {
		return nil, err
	}
	return &ast.Chord{Notes: notes, Duration: dur, Velocity: vel, Start: open.Pos()}, nil
}

func (p *parser) parseRest() (ast.Event, error) {
	tok, err := p.expect(lexer.REST)
	if err != nil {
		return nil, err
	}
	dur, err := p.parseDuration()
	if err != nil {
		return nil, err
	}
	return &ast.Rest{Duration: dur, Start: tok.Pos()}, nil
}

func (p *parser) parseSequenceRef() (ast.Event, error) {
	tok, err := p.expect(lexer.IDENTIFIER)
	if err != nil {
		return nil, err
	}
	return &ast.SequenceRef{Name: tok.Literal, Start: tok.Pos()}, nil
}

func (p *parser) parseDuration() (ast.Duration, error) {
	tok, err := p.expect(lexer.DURATION)
	if err != nil {
		return ast.Duration{}, err
	}
	return ast.ParseDuration(tok.Literal, tok.Pos())
}

// parseVelocity parses an optional "velocity" NUMBER suffix. The keyword
// must be on the same line as the event it modifies. Zero is rejected since
// a note-on with velocity 0 means note-off.
func (p *parser) parseVelocity() (*int, error) {
	if p.current().Kind != lexer.VELOCITY {
		return nil, nil
	}
	p.advance()

	vel, err := p.expectInt(MinVelocity, MaxVelocity, "velocity")
	if err != nil {
		return nil, err
	}
	return &vel, nil
}

// expectInt consumes a NUMBER and checks it lies in [lo, hi].
func (p *parser) expectInt(lo, hi int, what string) (int, error) {
	tok, err := p.expect(lexer.NUMBER)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(tok.Literal)
	if err != nil || n < lo || n > hi {
		return 0, invalid(tok, "%s %s out of range [%d, %d]", what, tok.Literal, lo, hi)
	}
	return n, nil
}
