package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/midiscript/midiscript/internal/compiler"
	"github.com/midiscript/midiscript/internal/config"
	"github.com/midiscript/midiscript/internal/midifile"
	"github.com/midiscript/midiscript/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path; single input only
	Config string // config file path
	Store  string // build history database
}

// CompiledFile describes one written MIDI file.
type CompiledFile struct {
	Source     string `json:"source"`
	Output     string `json:"output"`
	Bytes      int    `json:"bytes"`
	NoteCount  int    `json:"note_count"`
	SourceHash string `json:"source_hash"`
	OutputHash string `json:"output_hash"`
	BuildID    string `json:"build_id,omitempty"`
}

// CompilationResult is the JSON payload of a successful compile.
type CompilationResult struct {
	Config config.Config  `json:"config"`
	Files  []CompiledFile `json:"files"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <file.ms|dir>",
		Short: "Compile MidiScript to a Standard MIDI File",
		Long: `Compile a MidiScript program, or every .ms file under a directory,
into format 0 Standard MIDI Files.

Each output is written next to its source with a .mid extension unless
--output names the file. With --store every build is recorded in a SQLite
history database.

Examples:
  midiscript compile song.ms
  midiscript compile song.ms -o /tmp/song.mid --config midiscript.yaml
  midiscript compile ./songs --store builds.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.Config, "config", "", "config file (.yaml, .yml or .cue)")
	cmd.Flags().StringVar(&opts.Store, "store", "", "record builds in this SQLite database")

	return cmd
}

func runCompile(ctx context.Context, opts *CompileOptions, input string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	cfg, err := ResolveConfig(opts.Config)
	if err != nil {
		return formatter.fail(toCLIError(opts.Config, err))
	}
	formatter.VerboseLog("Config: tpq=%d velocity=%d channel=%d",
		cfg.TicksPerQuarterNote, cfg.DefaultVelocity, cfg.Channel)

	sources, err := LoadSources(input)
	if err != nil {
		return formatter.fail(toCLIError(input, err))
	}
	if opts.Output != "" && len(sources) > 1 {
		return formatter.fail(CLIError{
			Code:    ErrCodeGeneric,
			Message: fmt.Sprintf("--output requires a single input, found %d files", len(sources)),
			File:    input,
		})
	}

	var st *store.Store
	if opts.Store != "" {
		st, err = store.Open(opts.Store)
		if err != nil {
			return formatter.fail(CLIError{Code: ErrCodeStore, Message: err.Error(), File: opts.Store})
		}
		defer st.Close()
	}

	result := CompilationResult{Config: cfg, Files: make([]CompiledFile, 0, len(sources))}
	var failures []CLIError
	for _, src := range sources {
		formatter.VerboseLog("Compiling %s", src.Path)

		out := opts.Output
		if out == "" {
			out = DefaultOutputPath(src.Path)
		}
		file, cliErr := compileOne(ctx, formatter, st, cfg, src, out)
		if cliErr != nil {
			failures = append(failures, *cliErr)
			continue
		}
		result.Files = append(result.Files, file)
	}

	if len(failures) > 0 {
		return outputCompileErrors(formatter, failures)
	}
	return outputCompileSuccess(formatter, result)
}

// compileOne compiles, writes and optionally records a single program.
func compileOne(ctx context.Context, formatter *OutputFormatter, st *store.Store, cfg config.Config, src SourceFile, out string) (CompiledFile, *CLIError) {
	data, err := compiler.CompileWithConfig(src.Text, cfg)
	if err != nil {
		e := toCLIError(src.Path, err)
		return CompiledFile{}, &e
	}

	noteCount, err := countNotes(data)
	if err != nil {
		return CompiledFile{}, &CLIError{Code: ErrCodeDecode, Message: err.Error(), File: src.Path}
	}

	if err := os.WriteFile(out, data, 0644); err != nil {
		return CompiledFile{}, &CLIError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("writing output file: %v", err), File: out}
	}
	formatter.VerboseLog("Wrote %d bytes to %s", len(data), out)

	build := store.NewBuild(src.Path, src.Text, out, data, cfg, noteCount)
	file := CompiledFile{
		Source:     src.Path,
		Output:     out,
		Bytes:      len(data),
		NoteCount:  noteCount,
		SourceHash: build.SourceHash,
		OutputHash: build.OutputHash,
	}
	if st == nil {
		return file, nil
	}

	checkDeterminism(ctx, formatter, st, build)
	recorded, err := st.RecordBuild(ctx, build)
	if err != nil {
		return CompiledFile{}, &CLIError{Code: ErrCodeStore, Message: err.Error(), File: src.Path}
	}
	formatter.VerboseLog("Recorded build %s", recorded.ID)
	file.BuildID = recorded.ID
	return file, nil
}

// checkDeterminism compares a build against the previous one of the same
// source and config. A different output means the compiler changed.
func checkDeterminism(ctx context.Context, formatter *OutputFormatter, st *store.Store, build store.Build) {
	prev, err := st.LatestBySource(ctx, build.SourceHash)
	if errors.Is(err, store.ErrBuildNotFound) {
		return
	}
	if err != nil {
		formatter.VerboseLog("Skipping determinism check: %v", err)
		return
	}
	if prev.Config != build.Config {
		return
	}
	if prev.OutputHash != build.OutputHash {
		fmt.Fprintf(formatter.ErrWriter, "warning: %s compiled to different bytes than build %s\n",
			build.SourcePath, prev.ID)
		return
	}
	formatter.VerboseLog("Output matches build %s", prev.ID)
}

// countNotes reads the output back to count note-ons.
func countNotes(data []byte) (int, error) {
	file, err := midifile.Read(bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	return len(file.NoteOns()), nil
}

func outputCompileSuccess(formatter *OutputFormatter, result CompilationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, f := range result.Files {
		fmt.Fprintf(w, "✓ %s -> %s (%d notes, %d bytes)\n", f.Source, f.Output, f.NoteCount, f.Bytes)
	}
	return nil
}

// outputCompileErrors reports every failed file.
func outputCompileErrors(formatter *OutputFormatter, errs []CLIError) error {
	if formatter.JSON() {
		if err := formatter.encode(CLIResponse{
			Status: "error",
			Error:  &errs[0],
			Data:   errs,
		}); err != nil {
			return err
		}
		return reported(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	for _, e := range errs {
		_ = formatter.Error(e)
	}
	return reported(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}
