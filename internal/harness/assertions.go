package harness

import (
	"bytes"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/midiscript/midiscript/internal/ast"
	"github.com/midiscript/midiscript/internal/generator"
	"github.com/midiscript/midiscript/internal/midifile"
)

// checkExpect evaluates every expectation and records failures on r.
func checkExpect(r *Result, e Expect) {
	if e.Error != "" {
		checkError(r, e)
		return
	}
	if r.Err != nil {
		r.AddError("unexpected error %s: %v", r.Code, r.Err)
		return
	}

	file, err := midifile.Read(bytes.NewReader(r.Output))
	if err != nil {
		r.AddError("output does not decode: %v", err)
		return
	}
	noteOns := file.NoteOns()

	if e.NoteCount != nil && len(noteOns) != *e.NoteCount {
		r.AddError("note_count: expected %d, got %d", *e.NoteCount, len(noteOns))
	}
	if len(e.NoteOns) > 0 {
		checkNoteOns(r, e.NoteOns, noteOns)
	}
	if e.Ticks != nil {
		var last uint64
		if n := len(r.Timeline); n > 0 {
			last = r.Timeline[n-1].Tick
		}
		if last != *e.Ticks {
			r.AddError("ticks: expected last event at %d, got %d", *e.Ticks, last)
		}
	}
	if e.Bytes != "" {
		want, _ := decodeHex(e.Bytes) // validated at load
		checkBytes(r, want, r.Output)
	}
}

func checkError(r *Result, e Expect) {
	if r.Err == nil {
		r.AddError("expected error %s, compiled successfully", e.Error)
		return
	}
	if r.Code != e.Error {
		r.AddError("expected error %s, got %s: %v", e.Error, r.Code, r.Err)
	}
	if e.Message != "" && !strings.Contains(r.Err.Error(), e.Message) {
		r.AddError("expected error message containing %q, got %q", e.Message, r.Err.Error())
	}
}

func checkNoteOns(r *Result, want []NoteOnExpect, got []midifile.Event) {
	if len(want) != len(got) {
		r.AddError("note_ons: expected %d events, got %d", len(want), len(got))
	}

	for i := range min(len(want), len(got)) {
		w, g := want[i], got[i]

		key, ok := expectedKey(r, i, w)
		if !ok {
			continue
		}
		if g.Tick != w.Tick || g.Key != key {
			r.AddError("note_ons[%d]: expected key %d at tick %d, got key %d at tick %d", i, key, w.Tick, g.Key, g.Tick)
		}
		if w.Velocity != nil && int(g.Velocity) != *w.Velocity {
			r.AddError("note_ons[%d]: expected velocity %d, got %d", i, *w.Velocity, g.Velocity)
		}
		if w.Channel != nil && int(g.Channel)+1 != *w.Channel {
			r.AddError("note_ons[%d]: expected channel %d, got %d", i, *w.Channel, int(g.Channel)+1)
		}
	}
}

func expectedKey(r *Result, i int, w NoteOnExpect) (uint8, bool) {
	if w.Key != nil {
		return uint8(*w.Key), true
	}
	key, err := generator.Key(w.Note, ast.Pos{})
	if err != nil {
		r.AddError("note_ons[%d]: %v", i, err)
		return 0, false
	}
	return key, true
}

func checkBytes(r *Result, want, got []byte) {
	if bytes.Equal(want, got) {
		return
	}
	offset := 0
	for offset < len(want) && offset < len(got) && want[offset] == got[offset] {
		offset++
	}
	r.AddError("bytes: output differs at offset %d (expected %d bytes, got %d)", offset, len(want), len(got))
}

// decodeHex parses hex with arbitrary whitespace.
func decodeHex(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return hex.DecodeString(compact)
}
