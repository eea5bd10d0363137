package ast

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position refers to a real source location.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Event is one entry of a sequence body: *Note, *Chord, *Rest or *SequenceRef.
type Event interface {
	Pos() Pos
	eventNode()
}

// Note is a single pitch held for Duration.
type Note struct {
	Name     string // e.g. "C4", "D#3", "Bb2"
	Duration Duration
	Velocity *int // nil means the configured default
	Start    Pos
}

// Chord is a set of pitches that sound together for Duration.
type Chord struct {
	Notes    []string
	Duration Duration
	Velocity *int
	Start    Pos
}

// Rest advances time without sounding.
type Rest struct {
	Duration Duration
	Start    Pos
}

// SequenceRef splices another sequence in place. The target is resolved by
// the generator, so forward references are allowed.
type SequenceRef struct {
	Name  string
	Start Pos
}

func (n *Note) Pos() Pos        { return n.Start }
func (c *Chord) Pos() Pos       { return c.Start }
func (r *Rest) Pos() Pos        { return r.Start }
func (s *SequenceRef) Pos() Pos { return s.Start }

func (*Note) eventNode()        {}
func (*Chord) eventNode()       {}
func (*Rest) eventNode()        {}
func (*SequenceRef) eventNode() {}

// Sequence is a named, ordered list of events.
type Sequence struct {
	Name   string
	Events []Event
	Start  Pos
}

// TempoChange sets the tempo in beats (quarter notes) per minute.
type TempoChange struct {
	BPM   int
	Start Pos
}

// TimeSignature is numerator/denominator, e.g. 3/4.
// Denominator is always a power of two.
type TimeSignature struct {
	Numerator   int
	Denominator int
	Start       Pos
}

// ChannelChange selects the MIDI channel, 1..16 as written in source.
type ChannelChange struct {
	Channel int
	Start   Pos
}

// PlayStatement names the sequence that becomes the output track.
type PlayStatement struct {
	Name  string
	Start Pos
}
