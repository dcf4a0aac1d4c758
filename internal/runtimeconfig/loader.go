package runtimeconfig

import (
	"fmt"
	"os"

	"github.com/goliatone/go-folio/internal/schema"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a YAML site configuration, validates it against the embedded
// schema, and merges it over DefaultConfig.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("folio config: read %s: %w", path, err)
	}
	cfg, err := Load(data)
	if err != nil {
		return Config{}, fmt.Errorf("folio config: %s: %w", path, err)
	}
	return cfg, nil
}

// Load parses YAML configuration bytes. Values absent from the document keep
// their defaults, so a minimal site file stays minimal.
func Load(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("parse: %w", err)
	}
	if err := schema.ValidateSite(raw); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
