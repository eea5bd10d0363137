package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]string{"result": "success"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(CLIError{Code: "E204", Message: "cyclic sequence reference: a -> b -> a", File: "song.ms", Line: 2, Column: 14})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E204", resp.Error.Code)
	assert.Equal(t, "song.ms", resp.Error.File)
	assert.Equal(t, 2, resp.Error.Line)
	assert.Equal(t, 14, resp.Error.Column)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name string
		err  CLIError
		want string
	}{
		{
			name: "file and position",
			err:  CLIError{Code: "E203", Message: `undefined sequence "x"`, File: "song.ms", Line: 3, Column: 3},
			want: "song.ms:3:3: error [E203]: undefined sequence \"x\"\n",
		},
		{
			name: "position only",
			err:  CLIError{Code: "E201", Message: "unexpected character '$'", Line: 1, Column: 5},
			want: "1:5: error [E201]: unexpected character '$'\n",
		},
		{
			name: "file only",
			err:  CLIError{Code: "E005", Message: "path not found", File: "missing.ms"},
			want: "missing.ms: error [E005]: path not found\n",
		},
		{
			name: "bare",
			err:  CLIError{Code: "E001", Message: "boom"},
			want: "error [E001]: boom\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}
			require.NoError(t, formatter.Error(tt.err))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestOutputFormatter_TextErrorDetailsVerboseOnly(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}
	require.NoError(t, formatter.Error(CLIError{Code: "E001", Message: "boom", Details: "more"}))
	assert.NotContains(t, buf.String(), "Details")

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error(CLIError{Code: "E001", Message: "boom", Details: "more"}))
	assert.Contains(t, buf.String(), "Details: more")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut}

	formatter.VerboseLog("hidden %d", 1)
	assert.Empty(t, errOut.String())

	formatter.Verbose = true
	formatter.VerboseLog("shown %d", 2)
	assert.Equal(t, "shown 2\n", errOut.String())
	assert.Empty(t, out.String(), "verbose output must not corrupt JSON")

	noErrWriter := &OutputFormatter{Writer: out, Verbose: true}
	noErrWriter.VerboseLog("fallback")
	assert.Equal(t, "fallback\n", out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitCommandError, "bad"))))
}

func TestExitError(t *testing.T) {
	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "writing output", inner)
	assert.Equal(t, "writing output: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.False(t, err.Reported)

	assert.True(t, reported(ExitFailure, "x").Reported)
}
