// Package generator turns a parsed program into a Standard MIDI File.
//
// Generation runs in two passes. Flattening walks the play target depth
// first, splicing referenced sequences in place and emitting note-on,
// note-off and meta events at absolute ticks. The timeline is then sorted
// (by tick; at equal ticks meta before note-off before note-on) and
// serialized as a single format 0 track.
//
// Time is tracked as an exact fraction of a whole note and rounded to the
// nearest tick only when an event is emitted, so durations such as 1/3 or
// 1/7 never accumulate rounding drift.
//
// Generation is pure: no I/O, no shared state, and the same program and
// configuration always yield the same bytes.
package generator
