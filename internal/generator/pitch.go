package generator

import (
	"strconv"

	"github.com/midiscript/midiscript/internal/ast"
)

// MaxKey is the highest MIDI note number.
const MaxKey = 127

var pitchClasses = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Key maps a note name such as "C4", "d#3" or "Bb10" to a MIDI note number
// using (octave+1)*12 + pitch class + accidental, so C4 is 60.
func Key(name string, pos ast.Pos) (uint8, error) {
	fail := func(reason string) (uint8, error) {
		return 0, &InvalidNoteError{Name: name, Reason: reason, Pos: pos}
	}

	if name == "" {
		return fail("empty note name")
	}
	letter := name[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	pc, ok := pitchClasses[letter]
	if !ok {
		return fail("note letter must be A-G")
	}

	rest := name[1:]
	accidental := 0
	if rest != "" {
		switch rest[0] {
		case '#':
			accidental = 1
			rest = rest[1:]
		case 'b':
			accidental = -1
			rest = rest[1:]
		}
	}

	if rest == "" {
		return fail("missing octave")
	}
	for i := 0; i < len(rest); i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return fail("octave must be digits")
		}
	}
	octave, err := strconv.Atoi(rest)
	if err != nil || octave > MaxKey {
		return fail("octave out of range")
	}

	key := (octave+1)*12 + pc + accidental
	if key > MaxKey {
		return fail("pitch " + strconv.Itoa(key) + " outside 0..127")
	}
	return uint8(key), nil
}
