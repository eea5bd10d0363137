package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	names := []string{
		"tempo_time_single_note",
		"chord_advances_once",
		"velocity_and_channel",
		"cyclic_reference",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestSnapshot_Error(t *testing.T) {
	result, err := Run(&Scenario{Name: "no_main", Source: "sequence main { C4 1/4 }"})
	require.NoError(t, err)

	assert.Equal(t,
		"scenario: no_main\n"+
			"config: tpq=480 velocity=100 channel=1\n"+
			"error: E207 no main sequence: program has no play statement\n",
		string(Snapshot(result)))
}
