package harness

import (
	"fmt"

	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/generator"
)

// Result is the outcome of running a scenario.
type Result struct {
	// Name of the scenario that produced this result.
	Name string `json:"name"`

	// Pass is true when every expectation held.
	Pass bool `json:"pass"`

	// Errors describes each failed expectation. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Config is the effective configuration.
	Config config.Config `json:"config"`

	// Output is the compiled file; nil when compilation failed.
	Output []byte `json:"-"`

	// Timeline is the sorted event list behind Output.
	Timeline []generator.Event `json:"-"`

	// Err is the compile error, if any, and Code its error code.
	Err  error  `json:"-"`
	Code string `json:"code,omitempty"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(name string) *Result {
	return &Result{
		Name:   name,
		Pass:   true,
		Errors: []string{},
	}
}

// AddError records a failed expectation and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}
