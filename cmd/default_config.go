package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wastewise-india/sortline/sim"
)

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version string         `yaml:"version"`
	Line    sim.LineConfig `yaml:"line"`
}

// loadLineConfig returns the built-in line constants with the overrides in
// path applied. An empty path returns the built-in constants. Fields absent
// from the file keep their defaults; unknown fields are an error.
func loadLineConfig(path string) (sim.LineConfig, error) {
	cfg := Config{Line: sim.DefaultLineConfig()}
	if path == "" {
		return cfg.Line, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return sim.LineConfig{}, fmt.Errorf("read config file: %w", err)
	}

	// Parse YAML with strict field checking: typos must cause errors
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	// a file with no documents (empty or comments only) overrides nothing
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return sim.LineConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Line.Validate(); err != nil {
		return sim.LineConfig{}, err
	}
	return cfg.Line, nil
}
