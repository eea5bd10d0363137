package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/midiscript/midiscript/internal/compiler"
)

// CheckResult holds the diagnostics for one program.
type CheckResult struct {
	File        string                `json:"file"`
	Valid       bool                  `json:"valid"`
	Diagnostics []compiler.Diagnostic `json:"diagnostics"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.ms>",
		Short: "Report problems without generating output",
		Long: `Lex, parse and analyze a MidiScript program without writing a MIDI file.

Unlike compile, check does not stop at the first problem: it reports every
undefined reference, invalid note and reference cycle, and warns about
sequences that are never played.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	src, err := loadSingle(path)
	if err != nil {
		return formatter.fail(toCLIError(path, err))
	}

	result := CheckResult{File: src.Path, Diagnostics: []compiler.Diagnostic{}}

	prog, err := compiler.Parse(src.Text)
	if err != nil {
		// Lex and parse errors stop analysis; report them as the only diagnostic.
		e := toCLIError(src.Path, err)
		result.Diagnostics = append(result.Diagnostics, compiler.Diagnostic{
			Code:    e.Code,
			Level:   compiler.LevelError,
			Message: e.Message,
			Line:    e.Line,
			Column:  e.Column,
		})
	} else {
		formatter.VerboseLog("Parsed %d sequence(s)", len(prog.Sequences()))
		result.Diagnostics = append(result.Diagnostics, compiler.Check(prog)...)
	}
	result.Valid = !compiler.HasErrors(result.Diagnostics)

	return outputCheckResult(formatter, result)
}

// loadSingle reads one program file; directories are rejected.
func loadSingle(path string) (SourceFile, error) {
	files, err := LoadSources(path)
	if err != nil {
		return SourceFile{}, err
	}
	if len(files) != 1 || files[0].Path != path {
		return SourceFile{}, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("expected a single %s file", SourceExt), Path: path}
	}
	return files[0], nil
}

func outputCheckResult(formatter *OutputFormatter, result CheckResult) error {
	failed := reported(ExitCommandError, fmt.Sprintf("%s: check failed", result.File))

	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{Code: firstErrorCode(result.Diagnostics), Message: "check failed", File: result.File}
		}
		if err := formatter.encode(resp); err != nil {
			return err
		}
		if !result.Valid {
			return failed
		}
		return nil
	}

	w := formatter.Writer
	for _, d := range result.Diagnostics {
		loc := CLIError{File: result.File, Line: d.Line, Column: d.Column}.Location()
		fmt.Fprintf(w, "%s: %s [%s]: %s\n", loc, d.Level, d.Code, d.Message)
	}
	if !result.Valid {
		fmt.Fprintf(w, "✗ %s has errors\n", result.File)
		return failed
	}
	fmt.Fprintf(w, "✓ %s is valid\n", result.File)
	return nil
}

func firstErrorCode(diags []compiler.Diagnostic) string {
	for _, d := range diags {
		if d.Level == compiler.LevelError {
			return d.Code
		}
	}
	return ErrCodeGeneric
}
