package ast

import "fmt"

// Program is the root of the tree.
type Program struct {
	Tempo         *TempoChange
	TimeSignature *TimeSignature
	Channel       *ChannelChange
	Main          *PlayStatement

	order  []*Sequence
	byName map[string]*Sequence
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{byName: make(map[string]*Sequence)}
}

// AddSequence appends seq, rejecting a name that is already declared.
// Only the parser calls this; the program is read-only once parsing ends.
func (p *Program) AddSequence(seq *Sequence) error {
	if p.byName == nil {
		p.byName = make(map[string]*Sequence)
	}
	if prev, ok := p.byName[seq.Name]; ok {
		return fmt.Errorf("sequence %q already declared at %s", seq.Name, prev.Start)
	}
	p.byName[seq.Name] = seq
	p.order = append(p.order, seq)
	return nil
}

// Lookup returns the sequence declared under name.
func (p *Program) Lookup(name string) (*Sequence, bool) {
	seq, ok := p.byName[name]
	return seq, ok
}

// Sequences returns the declared sequences in declaration order.
func (p *Program) Sequences() []*Sequence {
	out := make([]*Sequence, len(p.order))
	copy(out, p.order)
	return out
}

// MainName returns the play target, or "" when the program has no play statement.
func (p *Program) MainName() string {
	if p.Main == nil {
		return ""
	}
	return p.Main.Name
}
