package runtimeconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// LoadFile merges a YAML config file into cfg. A missing file is not an
// error so a bare checkout runs on defaults.
func LoadFile(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config: nil target")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays GREENBAR_* environment variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil target")
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("config: parse env: %w", err)
	}
	return nil
}

// Load builds the effective configuration: defaults, then the optional YAML
// file at path, then environment overrides, validated at the end.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := LoadFile(&cfg, path); err != nil {
		return cfg, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
