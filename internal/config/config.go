// Package config handles loading and saving user configuration for tolk.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/f3rmion/tolk/internal/align"
	"gopkg.in/yaml.v3"
)

// FileName is the config file inside the config directory.
const FileName = "config.yaml"

// Config holds all user configuration for tolk.
type Config struct {
	ServerURL      string        `yaml:"server_url"`
	SourceLanguage string        `yaml:"source_language"` // default language of read texts
	TargetLanguage string        `yaml:"target_language"`
	Languages      []string      `yaml:"languages"`
	Palette        []string      `yaml:"palette"` // colors for aligned token pairs, in order
	Timeout        time.Duration `yaml:"timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	palette := make([]string, len(align.DefaultPalette))
	for i, c := range align.DefaultPalette {
		palette[i] = string(c)
	}
	return &Config{
		ServerURL:      "http://127.0.0.1:5000",
		SourceLanguage: "sv",
		TargetLanguage: "en",
		Languages:      []string{"EN", "SV", "DE", "FR", "ES", "JA", "ZH"},
		Palette:        palette,
		Timeout:        30 * time.Second,
		LogLevel:       "info",
	}
}

// Validate reports the first problem with the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return errors.New("server_url is empty")
	}
	if strings.TrimSpace(c.SourceLanguage) == "" {
		return errors.New("source_language is empty")
	}
	if len(c.Palette) == 0 {
		return errors.New("palette is empty")
	}
	for i, color := range c.Palette {
		if strings.TrimSpace(color) == "" {
			return fmt.Errorf("palette entry %d is empty", i)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout %s is negative", c.Timeout)
	}
	return nil
}

// AlignPalette returns the palette as colorizer input.
func (c *Config) AlignPalette() align.Palette {
	p := make(align.Palette, len(c.Palette))
	for i, color := range c.Palette {
		p[i] = align.Color(color)
	}
	return p
}

// Load reads config.yaml from dir. Fields missing from the file keep their
// defaults; a missing file yields the defaults.
func Load(dir string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save writes cfg to config.yaml in dir.
func Save(dir string, cfg *Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, FileName), out, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// GetConfigDir returns the default configuration directory.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tolk"), nil
}

// EnsureConfigDir creates dir if it doesn't exist. An empty dir means the
// default configuration directory.
func EnsureConfigDir(dir string) (string, error) {
	if dir == "" {
		var err error
		if dir, err = GetConfigDir(); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}
