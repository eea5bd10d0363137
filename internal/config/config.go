package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Defaults.
const (
	DefaultTicksPerQuarterNote = 480
	DefaultVelocity            = 100
	DefaultChannel             = 1
)

// Environment variables read by FromEnv.
const (
	EnvTicksPerQuarterNote = "MIDISCRIPT_TPQ"
	EnvDefaultVelocity     = "MIDISCRIPT_VELOCITY"
	EnvChannel             = "MIDISCRIPT_CHANNEL"
)

// Config controls code generation. Identical source and Config always
// produce identical bytes.
type Config struct {
	TicksPerQuarterNote int `json:"ticks_per_quarter_note" yaml:"ticks_per_quarter_note"`
	DefaultVelocity     int `json:"default_velocity" yaml:"default_velocity"`
	Channel             int `json:"channel" yaml:"channel"` // 1..16
}

// Default returns 480 ticks per quarter note, velocity 100, channel 1.
func Default() Config {
	return Config{
		TicksPerQuarterNote: DefaultTicksPerQuarterNote,
		DefaultVelocity:     DefaultVelocity,
		Channel:             DefaultChannel,
	}
}

// Error reports an invalid or unreadable configuration.
type Error struct {
	Path    string // file or environment variable, empty for in-memory values
	Line    int    // set for CUE errors that carry a position
	Column  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Line > 0:
		return fmt.Sprintf("config %s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	case e.Path != "":
		return fmt.Sprintf("config %s: %s", e.Path, e.Message)
	default:
		return fmt.Sprintf("config: %s", e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// cueError converts a CUE error, keeping the position of the first
// underlying error when it has one.
func cueError(path string, err error) *Error {
	out := &Error{Path: path, Message: err.Error(), Err: err}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return out
	}
	first := errs[0]
	out.Message = first.Error()
	if positions := cueerrors.Positions(first); len(positions) > 0 && positions[0].IsValid() {
		out.Line = positions[0].Line()
		out.Column = positions[0].Column()
	}
	return out
}

// schema compiles the embedded schema and returns the #Config definition.
func schema(ctx *cue.Context) (cue.Value, error) {
	v := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compiling config schema: %w", err)
	}
	return v.LookupPath(cue.ParsePath("#Config")), nil
}

// The schema is compiled once per process. Everything built from it shares
// one cue.Context, which is not safe for concurrent use, so callers hold
// schemaMu.
var (
	schemaMu       sync.Mutex
	compiledSchema = sync.OnceValues(func() (cue.Value, error) {
		return schema(cuecontext.New())
	})
)

// Validate checks c against the schema.
func (c Config) Validate() error {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	def, err := compiledSchema()
	if err != nil {
		return &Error{Message: err.Error(), Err: err}
	}

	unified := def.Unify(def.Context().Encode(c))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return cueError("", err)
	}
	return nil
}

// Load reads a .yaml, .yml or .cue file. Fields the file omits keep their
// defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &Error{Path: path, Message: "reading file", Err: err}
	}

	var cfg Config
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		cfg, err = decodeYAML(data)
		if err != nil {
			return Config{}, &Error{Path: path, Message: err.Error(), Err: err}
		}
	case ".cue":
		cfg, err = decodeCUE(path, data)
		if err != nil {
			return Config{}, cueError(path, err)
		}
	default:
		return Config{}, &Error{Path: path, Message: fmt.Sprintf("unsupported config format %q (want .yaml, .yml or .cue)", ext)}
	}

	if err := cfg.Validate(); err != nil {
		var cfgErr *Error
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return Config{}, err
	}
	return cfg, nil
}

func decodeYAML(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// An empty document decodes to io.EOF and means "all defaults".
		if errors.Is(err, io.EOF) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("decoding yaml: %w", err)
	}
	return cfg, nil
}

// decodeCUE returns CUE errors unwrapped so cueError can read positions.
func decodeCUE(path string, data []byte) (Config, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	def, err := compiledSchema()
	if err != nil {
		return Config{}, err
	}

	v := def.Context().CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return Config{}, err
	}

	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv overlays environment variables on base.
func FromEnv(base Config) (Config, error) {
	cfg := base
	fields := []struct {
		name string
		dst  *int
	}{
		{EnvTicksPerQuarterNote, &cfg.TicksPerQuarterNote},
		{EnvDefaultVelocity, &cfg.DefaultVelocity},
		{EnvChannel, &cfg.Channel},
	}

	for _, f := range fields {
		raw, ok := os.LookupEnv(f.name)
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, &Error{Path: f.name, Message: fmt.Sprintf("%q is not an integer", raw), Err: err}
		}
		*f.dst = n
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return &Error{Path: p, Message: "loading env file", Err: err}
		}
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the file at
// path (if non-empty), then the environment.
func Resolve(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	return FromEnv(cfg)
}
