package generator

import (
	"cmp"
	"fmt"
	"math/big"
	"slices"

	"gitlab.com/gomidi/midi/v2"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/midifile"
)

// EventKind orders events that share a tick: meta first, then note-off,
// then note-on, so a repeated pitch is released before it is struck again.
type EventKind int

const (
	KindMeta EventKind = iota
	KindNoteOff
	KindNoteOn
)

func (k EventKind) String() string {
	switch k {
	case KindMeta:
		return "meta"
	case KindNoteOff:
		return "note_off"
	case KindNoteOn:
		return "note_on"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is one timeline entry at an absolute tick.
type Event struct {
	Tick     uint64
	Kind     EventKind
	Data     []byte // encoded status and data bytes, or a full meta event
	Key      uint8  // note events only
	Velocity uint8  // note-on only
	Pos      ast.Pos
	Duration string // literal of the note or chord that produced the event
}

// Timeline flattens prog from its play target and returns every event,
// sorted as it will be written.
func Timeline(prog *ast.Program, cfg config.Config) ([]Event, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	root, err := mainSequence(prog)
	if err != nil {
		return nil, err
	}

	f := newFlattener(prog, cfg)
	if err := f.meta(); err != nil {
		return nil, err
	}
	if err := f.expand(root, root.Start); err != nil {
		return nil, err
	}

	slices.SortStableFunc(f.events, func(a, b Event) int {
		if c := cmp.Compare(a.Tick, b.Tick); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})
	return f.events, nil
}

func mainSequence(prog *ast.Program) (*ast.Sequence, error) {
	if prog == nil || prog.Main == nil {
		return nil, &NoMainSequenceError{}
	}
	seq, ok := prog.Lookup(prog.Main.Name)
	if !ok {
		return nil, &NoMainSequenceError{Name: prog.Main.Name, Pos: prog.Main.Start}
	}
	return seq, nil
}

// flattener holds the state of one expansion. The cursor is measured in
// whole notes.
type flattener struct {
	prog      *ast.Program
	channel   uint8 // 0-based
	velocity  uint8
	wholeTick *big.Rat // ticks per whole note
	cursor    *big.Rat
	active    []string
	onPath    map[string]bool
	events    []Event
}

func newFlattener(prog *ast.Program, cfg config.Config) *flattener {
	channel := cfg.Channel
	if prog.Channel != nil {
		channel = prog.Channel.Channel
	}
	return &flattener{
		prog:      prog,
		channel:   uint8(channel - 1),
		velocity:  uint8(cfg.DefaultVelocity),
		wholeTick: new(big.Rat).SetInt64(4 * int64(cfg.TicksPerQuarterNote)),
		cursor:    new(big.Rat),
		onPath:    make(map[string]bool),
	}
}

func (f *flattener) meta() error {
	if t := f.prog.Tempo; t != nil {
		data, err := midifile.TempoEvent(t.BPM)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Start, err)
		}
		f.events = append(f.events, Event{Kind: KindMeta, Data: data, Pos: t.Start})
	}
	if ts := f.prog.TimeSignature; ts != nil {
		data, err := midifile.TimeSignatureEvent(ts.Numerator, ts.Denominator)
		if err != nil {
			return fmt.Errorf("%s: %w", ts.Start, err)
		}
		f.events = append(f.events, Event{Kind: KindMeta, Data: data, Pos: ts.Start})
	}
	return nil
}

func (f *flattener) expand(seq *ast.Sequence, at ast.Pos) error {
	if f.onPath[seq.Name] {
		start := slices.Index(f.active, seq.Name)
		path := append(slices.Clone(f.active[start:]), seq.Name)
		return &CyclicSequenceError{Name: seq.Name, Path: path, Pos: at}
	}
	f.onPath[seq.Name] = true
	f.active = append(f.active, seq.Name)
	defer func() {
		f.active = f.active[:len(f.active)-1]
		delete(f.onPath, seq.Name)
	}()

	for _, ev := range seq.Events {
		var err error
		switch ev := ev.(type) {
		case *ast.Note:
			err = f.sound([]string{ev.Name}, ev.Duration, ev.Velocity, ev.Start)
		case *ast.Chord:
			err = f.sound(ev.Notes, ev.Duration, ev.Velocity, ev.Start)
		case *ast.Rest:
			f.advance(ev.Duration)
		case *ast.SequenceRef:
			target, ok := f.prog.Lookup(ev.Name)
			if !ok {
				return &UndefinedSequenceError{Name: ev.Name, Pos: ev.Start}
			}
			err = f.expand(target, ev.Start)
		default:
			err = fmt.Errorf("%s: unsupported event %T", ev.Pos(), ev)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// sound emits note-ons for names at the cursor and note-offs one duration
// later, then advances the cursor once.
func (f *flattener) sound(names []string, d ast.Duration, velocity *int, pos ast.Pos) error {
	vel := f.velocity
	if velocity != nil {
		vel = uint8(*velocity)
	}

	on, err := f.tick(f.cursor, d, pos)
	if err != nil {
		return err
	}
	end := new(big.Rat).Add(f.cursor, whole(d))
	off, err := f.tick(end, d, pos)
	if err != nil {
		return err
	}

	keys := make([]uint8, len(names))
	for i, name := range names {
		if keys[i], err = Key(name, pos); err != nil {
			return err
		}
	}
	for _, key := range keys {
		f.events = append(f.events, Event{
			Tick: on, Kind: KindNoteOn, Data: midi.NoteOn(f.channel, key, vel),
			Key: key, Velocity: vel, Pos: pos, Duration: d.Literal,
		})
	}
	for _, key := range keys {
		f.events = append(f.events, Event{
			Tick: off, Kind: KindNoteOff, Data: midi.NoteOff(f.channel, key),
			Key: key, Pos: pos, Duration: d.Literal,
		})
	}

	f.cursor = end
	return nil
}

func (f *flattener) advance(d ast.Duration) {
	f.cursor = new(big.Rat).Add(f.cursor, whole(d))
}

// tick converts a position in whole notes to ticks, rounding half up.
func (f *flattener) tick(at *big.Rat, d ast.Duration, pos ast.Pos) (uint64, error) {
	t := new(big.Rat).Mul(at, f.wholeTick)
	num := new(big.Int).Lsh(t.Num(), 1)
	num.Add(num, t.Denom())
	den := new(big.Int).Lsh(t.Denom(), 1)
	q := num.Quo(num, den)
	if !q.IsUint64() {
		return 0, &ast.InvalidDurationError{Literal: d.Literal, Reason: "song is too long to address in ticks", Pos: pos}
	}
	return q.Uint64(), nil
}

func whole(d ast.Duration) *big.Rat {
	return big.NewRat(d.Numerator, d.Denominator)
}
