package ast

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Duration is a note length as a fraction of a whole note.
type Duration struct {
	Numerator   int64
	Denominator int64
	Literal     string
}

func (d Duration) String() string {
	return d.Literal
}

// InvalidDurationError reports a malformed or non-positive duration.
type InvalidDurationError struct {
	Literal string
	Reason  string
	Pos     Pos
}

func (e *InvalidDurationError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: invalid duration %q: %s", e.Pos, e.Literal, e.Reason)
	}
	return fmt.Sprintf("invalid duration %q: %s", e.Literal, e.Reason)
}

// ParseDuration parses an "N/D" literal. Both parts must be positive integers.
func ParseDuration(lit string, pos Pos) (Duration, error) {
	num, den, ok := strings.Cut(lit, "/")
	if !ok {
		return Duration{}, &InvalidDurationError{Literal: lit, Reason: "expected N/D", Pos: pos}
	}

	n, err := parsePart(num, "numerator")
	if err != nil {
		return Duration{}, &InvalidDurationError{Literal: lit, Reason: err.Error(), Pos: pos}
	}
	d, err := parsePart(den, "denominator")
	if err != nil {
		return Duration{}, &InvalidDurationError{Literal: lit, Reason: err.Error(), Pos: pos}
	}
	if n <= 0 {
		return Duration{}, &InvalidDurationError{Literal: lit, Reason: "numerator must be positive", Pos: pos}
	}
	if d <= 0 {
		return Duration{}, &InvalidDurationError{Literal: lit, Reason: "denominator must be positive", Pos: pos}
	}

	return Duration{Numerator: n, Denominator: d, Literal: lit}, nil
}

// parsePart parses one side of a duration as a 32-bit integer.
func parsePart(s, what string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return 0, fmt.Errorf("%s %s out of range", what, s)
	case err != nil:
		return 0, fmt.Errorf("%s is not an integer", what)
	}
	return v, nil
}
