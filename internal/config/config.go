package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type ValidationMode int

const (
	ValidationRecover ValidationMode = iota
	ValidationSelftest
)

type Config struct {
	Relation RelationConfig `yaml:"relation"`
	Solver   SolverConfig   `yaml:"solver"`
	Selftest SelftestConfig `yaml:"selftest"`
}

type RelationConfig struct {
	File string `yaml:"file"`
}

type SolverConfig struct {
	// Timeout is a Go duration such as "10m". Empty means no limit.
	Timeout string `yaml:"timeout"`
}

type SelftestConfig struct {
	Rounds   *int `yaml:"rounds"`
	HintBits *int `yaml:"hint_bits"`
}

func Load(path string) (*Config, error) {
	return LoadWithMode(path, ValidationRecover)
}

func LoadWithMode(path string, mode ValidationMode) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	cfg.resolvePaths(path)
	if err := cfg.ValidateWithMode(mode); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	return c.ValidateWithMode(ValidationRecover)
}

func (c *Config) ValidateWithMode(mode ValidationMode) error {
	if err := c.validateCommon(); err != nil {
		return err
	}

	switch mode {
	case ValidationRecover:
		return nil
	case ValidationSelftest:
		return c.validateSelftestMode()
	default:
		return fmt.Errorf("unsupported validation mode: %d", mode)
	}
}

func (c *Config) validateCommon() error {
	if strings.TrimSpace(c.Relation.File) == "" {
		return fmt.Errorf("config.relation.file is required")
	}
	if err := validateReadableFile(c.Relation.File, "config.relation.file"); err != nil {
		return err
	}

	if strings.TrimSpace(c.Solver.Timeout) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(c.Solver.Timeout))
		if err != nil {
			return fmt.Errorf("config.solver.timeout is invalid: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("config.solver.timeout must be >= 0")
		}
	}
	return nil
}

func (c *Config) validateSelftestMode() error {
	if c.Selftest.Rounds == nil {
		return fmt.Errorf("config.selftest.rounds is required")
	}
	if *c.Selftest.Rounds < 1 {
		return fmt.Errorf("config.selftest.rounds must be >= 1")
	}
	if c.Selftest.HintBits == nil {
		return fmt.Errorf("config.selftest.hint_bits is required")
	}
	if *c.Selftest.HintBits < 0 || *c.Selftest.HintBits > 48 {
		return fmt.Errorf("config.selftest.hint_bits must be 0..48")
	}
	return nil
}

// SolverTimeout returns the validated solver timeout, 0 when unset.
func (c *Config) SolverTimeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Solver.Timeout))
	if err != nil {
		return 0
	}
	return d
}

func (c *Config) resolvePaths(configPath string) {
	configDir := filepath.Dir(configPath)
	c.Relation.File = resolvePath(configDir, c.Relation.File)
}

func resolvePath(baseDir, path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || filepath.IsAbs(trimmed) {
		return trimmed
	}
	return filepath.Clean(filepath.Join(baseDir, trimmed))
}

func validateReadableFile(path string, field string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s must point to a file, got directory", field)
	}
	return nil
}
