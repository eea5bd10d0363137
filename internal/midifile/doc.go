// Package midifile holds the Standard MIDI File limits and meta messages the
// generator needs, and reads files back through gitlab.com/gomidi/midi/v2/smf
// into flat events with absolute ticks.
package midifile
