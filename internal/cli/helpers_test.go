package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/midiscript/midiscript/internal/config"
)

const singleNote = "tempo 120\ntime 4/4\nsequence main { C4 1/4 }\nplay main\n"

const cycle = "sequence a { b }\nsequence b { a }\nplay a\n"

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// clearEnv keeps the caller's environment out of config resolution.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{config.EnvTicksPerQuarterNote, config.EnvDefaultVelocity, config.EnvChannel} {
		t.Setenv(name, "")
	}
}

// unsetForTest removes name for the duration of the test.
func unsetForTest(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}

func readOutput(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
