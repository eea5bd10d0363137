package midifile

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"
)

// Limits of the file format.
const (
	// MaxDelta is the largest value a 4-byte variable-length quantity holds.
	MaxDelta = 0x0FFFFFFF

	// MaxDivision is the largest ticks-per-quarter-note value; bit 15 set
	// would select SMPTE timing instead.
	MaxDivision = 0x7FFF

	// MaxTempoMicroseconds is the largest value of the 24-bit tempo field.
	MaxTempoMicroseconds = 0xFFFFFF

	// MaxDenominator is the largest time signature denominator smf can
	// carry in a byte before taking its logarithm.
	MaxDenominator = 128
)

// Time signature fields the DSL does not expose.
const (
	ClocksPerClick          = 24 // MIDI clocks per metronome click
	ThirtySecondsPerQuarter = 8
)

// MicrosecondsPerQuarter converts beats per minute to the tempo meta value,
// rounding half up.
func MicrosecondsPerQuarter(bpm int) uint32 {
	return uint32((60_000_000 + bpm/2) / bpm)
}

// TempoEvent returns the tempo meta message FF 51 03 tt tt tt for bpm.
func TempoEvent(bpm int) (smf.Message, error) {
	if bpm <= 0 {
		return nil, fmt.Errorf("tempo %d must be positive", bpm)
	}
	if MicrosecondsPerQuarter(bpm) > MaxTempoMicroseconds {
		return nil, fmt.Errorf("tempo %d bpm is too slow for a 24-bit tempo event", bpm)
	}
	return smf.MetaTempo(float64(bpm)), nil
}

// TimeSignatureEvent returns the meta message FF 58 04 nn dd cc bb, with the
// denominator written as its base-2 logarithm.
func TimeSignatureEvent(numerator, denominator int) (smf.Message, error) {
	if numerator < 1 || numerator > 0xFF {
		return nil, fmt.Errorf("time signature numerator %d out of range [1, 255]", numerator)
	}
	if denominator < 1 || denominator > MaxDenominator || denominator&(denominator-1) != 0 {
		return nil, fmt.Errorf("time signature denominator %d is not a power of two in [1, %d]", denominator, MaxDenominator)
	}
	return smf.MetaTimeSig(uint8(numerator), uint8(denominator), ClocksPerClick, ThirtySecondsPerQuarter), nil
}
