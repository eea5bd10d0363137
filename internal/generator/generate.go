package generator

import (
	"bytes"
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/midifile"
)

// Generate compiles prog into the bytes of a format 0 Standard MIDI File.
// Every event carries its own status byte. It returns nil bytes with any
// error.
func Generate(prog *ast.Program, cfg config.Config) ([]byte, error) {
	events, err := Timeline(prog, cfg)
	if err != nil {
		return nil, err
	}

	var track smf.Track
	var prev uint64
	for _, ev := range events {
		delta := ev.Tick - prev
		if delta > midifile.MaxDelta {
			return nil, &ast.InvalidDurationError{
				Literal: ev.Duration,
				Reason:  fmt.Sprintf("gap of %d ticks exceeds the maximum delta %d", delta, midifile.MaxDelta),
				Pos:     ev.Pos,
			}
		}
		track.Add(uint32(delta), ev.Data)
		prev = ev.Tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(cfg.TicksPerQuarterNote)
	s.NoRunningStatus = true
	if err := s.Add(track); err != nil {
		return nil, fmt.Errorf("encoding midi file: %w", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encoding midi file: %w", err)
	}
	return buf.Bytes(), nil
}
