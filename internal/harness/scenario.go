package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/midiscript/midiscript/internal/config"
)

// Scenario is one conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Source is the program text. Exactly one of Source and SourceFile is set.
	Source string `yaml:"source,omitempty"`

	// SourceFile is a path to the program, relative to the scenario file.
	// LoadScenario reads it into Source.
	SourceFile string `yaml:"source_file,omitempty"`

	// Config overrides individual configuration fields.
	Config *ConfigOverride `yaml:"config,omitempty"`

	// Expect describes the required outcome.
	Expect Expect `yaml:"expect"`
}

// ConfigOverride sets the fields it names on top of config.Default().
type ConfigOverride struct {
	TicksPerQuarterNote *int `yaml:"ticks_per_quarter_note,omitempty"`
	DefaultVelocity     *int `yaml:"default_velocity,omitempty"`
	Channel             *int `yaml:"channel,omitempty"`
}

// Apply returns base with the overridden fields replaced.
func (o *ConfigOverride) Apply(base config.Config) config.Config {
	if o == nil {
		return base
	}
	if o.TicksPerQuarterNote != nil {
		base.TicksPerQuarterNote = *o.TicksPerQuarterNote
	}
	if o.DefaultVelocity != nil {
		base.DefaultVelocity = *o.DefaultVelocity
	}
	if o.Channel != nil {
		base.Channel = *o.Channel
	}
	return base
}

// Expect is the required outcome. Unset fields are not checked.
type Expect struct {
	// Error is the expected error code, e.g. "E204". Empty means the
	// program must compile.
	Error string `yaml:"error,omitempty"`

	// Message must be a substring of the error text.
	Message string `yaml:"message,omitempty"`

	// NoteOns lists every expected note-on in file order.
	NoteOns []NoteOnExpect `yaml:"note_ons,omitempty"`

	// NoteCount is the expected number of note-on events.
	NoteCount *int `yaml:"note_count,omitempty"`

	// Ticks is the tick of the last timeline event.
	Ticks *uint64 `yaml:"ticks,omitempty"`

	// Bytes is the exact output in hex. Whitespace is ignored.
	Bytes string `yaml:"bytes,omitempty"`
}

// NoteOnExpect matches one note-on event. The pitch is given either as a
// note name or a MIDI key number.
type NoteOnExpect struct {
	Tick     uint64 `yaml:"tick"`
	Note     string `yaml:"note,omitempty"`
	Key      *int   `yaml:"key,omitempty"`
	Velocity *int   `yaml:"velocity,omitempty"`
	Channel  *int   `yaml:"channel,omitempty"` // 1..16
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict decoding catches typos like "note_on:" for "note_ons:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.SourceFile != "" {
		if scenario.Source != "" {
			return nil, fmt.Errorf("invalid scenario: source and source_file are mutually exclusive")
		}
		srcPath := scenario.SourceFile
		if !filepath.IsAbs(srcPath) {
			srcPath = filepath.Join(filepath.Dir(path), srcPath)
		}
		src, err := os.ReadFile(srcPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read source file: %w", err)
		}
		scenario.Source = string(src)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Source == "" {
		return fmt.Errorf("source or source_file is required")
	}

	e := s.Expect
	if e.Error != "" && (len(e.NoteOns) > 0 || e.NoteCount != nil || e.Ticks != nil || e.Bytes != "") {
		return fmt.Errorf("expect: error cannot be combined with output expectations")
	}
	if e.Error == "" && e.Message != "" {
		return fmt.Errorf("expect: message requires error")
	}

	for i, n := range e.NoteOns {
		if (n.Note == "") == (n.Key == nil) {
			return fmt.Errorf("expect.note_ons[%d]: exactly one of note and key is required", i)
		}
	}

	if e.Bytes != "" {
		if _, err := decodeHex(e.Bytes); err != nil {
			return fmt.Errorf("expect.bytes: %w", err)
		}
	}

	return nil
}
