// Package harness runs MidiScript conformance scenarios.
//
// A scenario is a YAML file pairing a source program with what compiling it
// must produce: either a specific error code, or output properties such as
// note-on events, the final tick, or the exact file bytes.
//
// # Scenario Format
//
//	name: chord_advances_once
//	description: "A chord sounds all notes together and advances once"
//	source: |
//	  sequence main { [C4 E4 G4] 1/2 C5 1/4 }
//	  play main
//	config:
//	  ticks_per_quarter_note: 480
//	expect:
//	  note_count: 4
//	  ticks: 1440
//	  note_ons:
//	    - { tick: 0, note: C4 }
//	    - { tick: 960, note: C5, velocity: 100 }
//
// source_file may replace source; it is resolved relative to the scenario.
// An expected failure uses expect.error with the CLI error code (E201..E207,
// E008) and optionally expect.message, a substring of the error text.
//
// # Golden Files
//
// Snapshot renders a result as text (the sorted timeline plus a hex dump of
// the file) for golden comparison. Tests use RunWithGolden, which stores
// fixtures under testdata/golden; the CLI reads golden/<name>.golden next to
// the scenarios unless --golden-dir points elsewhere.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/chord.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range result.Errors {
//	    log.Println(msg)
//	}
package harness
