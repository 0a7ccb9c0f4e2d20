// Package config loads the progression tuning. The shipped defaults are
// embedded; a user file at ~/.noctisium.yaml (or NOCTISIUM_CONFIG)
// overrides them wholesale.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"noctisium/internal/progression"
)

//go:embed default.yaml
var defaultTuning []byte

// DefaultPath returns the default user override location.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(homeDir, ".noctisium.yaml"), nil
}

// Load returns the progression tuning: the user override when one
// exists, the embedded defaults otherwise. The result is validated
// either way.
func Load() (progression.Config, error) {
	path := os.Getenv("NOCTISIUM_CONFIG")
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return progression.Config{}, err
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Parse(defaultTuning)
		}
		return progression.Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	log.Debug().Str("path", path).Msg("using tuning override")
	cfg, err := Parse(data)
	if err != nil {
		return progression.Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals and validates a tuning document.
func Parse(data []byte) (progression.Config, error) {
	var cfg progression.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return progression.Config{}, fmt.Errorf("parse tuning: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return progression.Config{}, fmt.Errorf("validate tuning: %w", err)
	}
	return cfg, nil
}
