package midifile

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"

	"gitlab.com/gomidi/midi/v2/smf"
)

// EventKind classifies a decoded event.
type EventKind string

const (
	KindNoteOn        EventKind = "note_on"
	KindNoteOff       EventKind = "note_off"
	KindTempo         EventKind = "tempo"
	KindTimeSignature EventKind = "time_signature"
	KindEndOfTrack    EventKind = "end_of_track"
	KindOther         EventKind = "other"
)

// Event is a decoded track event with its absolute tick.
type Event struct {
	Tick                   uint64    `json:"tick"`
	Delta                  uint32    `json:"delta"`
	Kind                   EventKind `json:"kind"`
	Channel                uint8     `json:"channel"`
	Key                    uint8     `json:"key,omitempty"`
	Velocity               uint8     `json:"velocity,omitempty"`
	MicrosecondsPerQuarter uint32    `json:"us_per_quarter,omitempty"`
	Numerator              uint8     `json:"numerator,omitempty"`
	Denominator            int       `json:"denominator,omitempty"`
	Raw                    string    `json:"raw,omitempty"`
}

// File is a decoded Standard MIDI File.
type File struct {
	Format          uint16    `json:"format"`
	TicksPerQuarter uint16    `json:"ticks_per_quarter"`
	Tracks          [][]Event `json:"tracks"`
}

// NoteOns returns the note-on events of every track in file order.
func (f *File) NoteOns() []Event {
	var out []Event
	for _, track := range f.Tracks {
		for _, ev := range track {
			if ev.Kind == KindNoteOn {
				out = append(out, ev)
			}
		}
	}
	return out
}

// Read decodes a Standard MIDI File from r.
func Read(r io.Reader) (file *File, err error) {
	// smf.ReadFrom can panic on malformed input
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if rec := recover(); rec != nil {
			file = nil
			err = fmt.Errorf("decoding midi file: %v", rec)
		}
	}()

	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("decoding midi file: %w", err)
	}

	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, errors.New("decoding midi file: only metric (ticks per quarter note) timing is supported")
	}

	file = &File{
		Format:          s.Format(),
		TicksPerQuarter: uint16(ticks),
	}
	for _, track := range s.Tracks {
		var abs uint64
		events := make([]Event, 0, len(track))
		for _, ev := range track {
			abs += uint64(ev.Delta)
			events = append(events, decodeEvent(abs, ev))
		}
		file.Tracks = append(file.Tracks, events)
	}
	return file, nil
}

func decodeEvent(tick uint64, ev smf.Event) Event {
	out := Event{Tick: tick, Delta: ev.Delta, Kind: KindOther}
	msg := ev.Message

	var channel, key, velocity uint8
	var bpm float64
	var num, den, clocks, thirtySeconds uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		out.Kind, out.Channel, out.Key, out.Velocity = KindNoteOn, channel, key, velocity
	case msg.GetNoteOff(&channel, &key, &velocity):
		out.Kind, out.Channel, out.Key, out.Velocity = KindNoteOff, channel, key, velocity
	case msg.GetMetaTempo(&bpm):
		out.Kind = KindTempo
		// smf reports bpm; keep the microseconds value stored in the file
		out.MicrosecondsPerQuarter = uint32(math.Round(60_000_000 / bpm))
	case msg.GetMetaTimeSig(&num, &den, &clocks, &thirtySeconds):
		out.Kind, out.Numerator, out.Denominator = KindTimeSignature, num, int(den)
	case msg.Is(smf.MetaEndOfTrackMsg):
		out.Kind = KindEndOfTrack
	default:
		out.Raw = hex.EncodeToString(msg)
	}
	return out
}
