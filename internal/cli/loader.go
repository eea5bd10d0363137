package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/midiscript/midiscript/internal/compiler"
	"github.com/midiscript/midiscript/internal/config"
)

// SourceExt is the file extension of MidiScript programs.
const SourceExt = ".ms"

// Error code constants shared by every command. Compile-stage codes come
// from compiler.ErrorCode.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNoFiles     = "E003" // No source files found
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeConfig      = "E008" // Invalid configuration
	ErrCodeStore       = "E009" // Build store error
	ErrCodeDecode      = "E010" // Input is not a readable MIDI file
)

// SourceFile is a program read from disk.
type SourceFile struct {
	Path string
	Text string
}

// LoadError is a failure to locate or read inputs.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSources reads a single program, or every program under a directory
// in lexical path order.
func LoadSources(path string) ([]SourceFile, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("path not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing path: %v", err)}
	}

	paths := []string{path}
	if info.IsDir() {
		paths, err = FindSourceFiles(path)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("error scanning directory: %v", err)}
		}
		if len(paths) == 0 {
			return nil, &LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no %s files found in %s", SourceExt, path)}
		}
	}

	files := make([]SourceFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading source: %v", err), Path: p}
		}
		files = append(files, SourceFile{Path: p, Text: string(data)})
	}
	return files, nil
}

// FindSourceFiles walks dir and returns every program path, sorted.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	slices.Sort(files)
	return files, err
}

// DefaultOutputPath swaps the source extension for .mid.
func DefaultOutputPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".mid"
}

// ResolveConfig applies defaults, the config file and the environment.
func ResolveConfig(path string) (config.Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("config file not found: %s", path)}
		}
	}
	return config.Resolve(path)
}

// MapErrorCode returns the stable code for err.
func MapErrorCode(err error) string {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code
	}
	if code := compiler.ErrorCode(err); code != "" {
		return code
	}
	return ErrCodeGeneric
}

// toCLIError converts err into its reported form, attaching the source
// position when the error carries one.
func toCLIError(file string, err error) CLIError {
	e := CLIError{Code: MapErrorCode(err), Message: err.Error(), File: file}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		e.Message = loadErr.Message
		if loadErr.Path != "" {
			e.File = loadErr.Path
		}
	}
	if pos, ok := compiler.ErrorPos(err); ok {
		e.Line, e.Column = pos.Line, pos.Column
		e.Message = strings.TrimPrefix(e.Message, pos.String()+": ")
	}
	return e
}
