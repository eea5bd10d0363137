// Package config holds the generator settings and loads them from YAML or
// CUE files and the environment.
//
// Every source is validated against the embedded CUE schema (schema.cue), so
// a YAML file and a CUE file with the same values are accepted or rejected
// identically.
//
// Precedence, lowest first: defaults, config file, environment variables
// (MIDISCRIPT_TPQ, MIDISCRIPT_VELOCITY, MIDISCRIPT_CHANNEL).
package config
