package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig reads, parses, and validates the YAML configuration file.
// Keys absent from the file keep the values of Default().
func LoadConfig(filename string) (*Config, error) {
	fileBytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", filename, err)
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(fileBytes))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML in '%s': %w", filename, err)
	}

	applyDefaults(cfg)

	if err := ValidateConfigManually(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills fields that were explicitly set to empty values.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = DefaultLanguage
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "error"
	}
	cfg.Auth.Type = strings.ToLower(strings.TrimSpace(cfg.Auth.Type))
	if cfg.Auth.Type == "" {
		cfg.Auth.Type = "none"
	}
}
