// Package config holds the options that steer control-flow structuring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Options controls how function bodies are produced
type Options struct {
	// AndorDetection enables recognizing && / || chains
	AndorDetection bool `yaml:"andor_detection" env:"RALPH_DC_ANDOR_DETECTION"`

	// StructureIfs selects the structuring engine; when false every
	// function is emitted with gotos only.
	StructureIfs bool `yaml:"structure_ifs" env:"RALPH_DC_STRUCTURE_IFS"`

	// Debug adds a "// Node N" comment before each node's content
	Debug bool `yaml:"debug" env:"RALPH_DC_DEBUG"`

	// IndentWidth is the number of spaces per nesting level
	IndentWidth int `yaml:"indent_width" env:"RALPH_DC_INDENT_WIDTH"`
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() *Options {
	return &Options{
		AndorDetection: true,
		StructureIfs:   true,
		Debug:          false,
		IndentWidth:    4,
	}
}

// Load returns the defaults, overridden by path (if non-empty) and then by
// environment variables.
func Load(path string) (*Options, error) {
	if path == "" {
		opts := DefaultOptions()
		if err := applyEnvOverrides(opts); err != nil {
			return nil, err
		}
		if err := opts.Validate(); err != nil {
			return nil, err
		}
		return opts, nil
	}
	return LoadFromFile(path)
}

// LoadFromFile reads options from a YAML file. Keys missing from the file
// keep their default values.
func LoadFromFile(path string) (*Options, error) {
	opts := DefaultOptions()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := applyEnvOverrides(opts); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Save writes the options to path as YAML, creating parent directories
func (o *Options) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks option ranges
func (o *Options) Validate() error {
	if o.IndentWidth < 1 || o.IndentWidth > 16 {
		return fmt.Errorf("indent_width must be between 1 and 16, got %d", o.IndentWidth)
	}
	return nil
}

// ErrBadEnvValue is returned when an override variable cannot be parsed
var ErrBadEnvValue = errors.New("invalid environment override")

// applyEnvOverrides applies environment variable overrides to the options
func applyEnvOverrides(o *Options) error {
	if err := envBool("RALPH_DC_ANDOR_DETECTION", &o.AndorDetection); err != nil {
		return err
	}
	if err := envBool("RALPH_DC_STRUCTURE_IFS", &o.StructureIfs); err != nil {
		return err
	}
	if err := envBool("RALPH_DC_DEBUG", &o.Debug); err != nil {
		return err
	}
	if v := os.Getenv("RALPH_DC_INDENT_WIDTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: RALPH_DC_INDENT_WIDTH=%q is not an integer", ErrBadEnvValue, v)
		}
		o.IndentWidth = n
	}
	return nil
}

// envBool sets *dst from key if the variable is set
func envBool(key string, dst *bool) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q is not a boolean", ErrBadEnvValue, key, v)
	}
	*dst = b
	return nil
}
