package harness

import (
	"errors"
	"fmt"

	"github.com/midiscript/midiscript/internal/compiler"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/generator"
)

// Run compiles the scenario's source and checks its expectations.
//
// Compile errors are part of the result, not returned: a scenario may
// expect one. The returned error is reserved for scenarios that cannot run
// at all.
func Run(s *Scenario) (*Result, error) {
	if s == nil {
		return nil, errors.New("nil scenario")
	}
	if s.Source == "" {
		return nil, fmt.Errorf("scenario %q has no source", s.Name)
	}

	result := NewResult(s.Name)
	result.Config = s.Config.Apply(config.Default())

	result.Output, result.Timeline, result.Err = compile(s.Source, result.Config)
	if result.Err != nil {
		result.Code = codeOf(result.Err)
	}

	checkExpect(result, s.Expect)
	return result, nil
}

// compile produces both the bytes and the timeline they were written from.
func compile(source string, cfg config.Config) ([]byte, []generator.Event, error) {
	prog, err := compiler.Parse(source)
	if err != nil {
		return nil, nil, err
	}
	timeline, err := generator.Timeline(prog, cfg)
	if err != nil {
		return nil, nil, err
	}
	out, err := generator.Generate(prog, cfg)
	if err != nil {
		return nil, nil, err
	}
	return out, timeline, nil
}

// codeOf falls back to the CLI's generic code for errors outside the pipeline.
func codeOf(err error) string {
	if code := compiler.ErrorCode(err); code != "" {
		return code
	}
	return "E001"
}
