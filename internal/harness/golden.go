package harness

import (
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot renders a result for golden comparison: the effective config,
// then either the error or the sorted timeline and a hex dump of the file.
func Snapshot(r *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", r.Name)
	fmt.Fprintf(&b, "config: tpq=%d velocity=%d channel=%d\n",
		r.Config.TicksPerQuarterNote, r.Config.DefaultVelocity, r.Config.Channel)

	if r.Err != nil {
		fmt.Fprintf(&b, "error: %s %v\n", r.Code, r.Err)
		return []byte(b.String())
	}

	fmt.Fprintf(&b, "events: %d\n", len(r.Timeline))
	for _, ev := range r.Timeline {
		fmt.Fprintf(&b, "%8d  %-8s  %x\n", ev.Tick, ev.Kind, ev.Data)
	}
	fmt.Fprintf(&b, "bytes: %d\n", len(r.Output))
	b.WriteString(hex.Dump(r.Output))
	return []byte(b.String())
}

// RunWithGolden runs a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run; mismatches fail t through
// goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Snapshot(result))
}
