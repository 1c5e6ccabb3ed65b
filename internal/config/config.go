package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable lineprof settings.
type Config struct {
	DefaultFormat  string   `json:"default_format" yaml:"default_format"` // "markdown" | "json" | "pprof"
	OutputDir      string   `json:"output_dir" yaml:"output_dir"`
	Shell          string   `json:"shell" yaml:"shell"`         // interpreter for `run`
	LogLevel       string   `json:"log_level" yaml:"log_level"` // zerolog level name
	TopN           int      `json:"top_n" yaml:"top_n"`         // hotspot count in reports
	IgnorePatterns []string `json:"ignore_patterns" yaml:"ignore_patterns"`
}

// Project config file names, in lookup order.
const (
	ProjectJSON = ".lineprofconfig"
	ProjectYAML = ".lineprof.yaml"
)

// Defaults returns sensible default configuration values.
func Defaults() Config {
	return Config{
		DefaultFormat:  "markdown",
		OutputDir:      ".",
		Shell:          "bash",
		LogLevel:       "warn",
		TopN:           10,
		IgnorePatterns: []string{},
	}
}

// Dir returns the lineprof config directory.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "lineprof"), nil
}

// GlobalPath returns the path of the global config file.
func GlobalPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Exists reports whether a global config file is present on disk.
func Exists() bool {
	p, err := GlobalPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// LoadGlobal reads ~/.config/lineprof/config.json.
// Returns defaults if the file is absent.
func LoadGlobal() (*Config, error) {
	path, err := GlobalPath()
	if err != nil {
		return nil, err
	}
	return loadFile(path, json.Unmarshal, true)
}

// LoadProject reads .lineprofconfig, or failing that .lineprof.yaml, in the
// current working directory. Returns nil (no error) if neither exists.
func LoadProject() (*Config, error) {
	cfg, err := loadFile(ProjectJSON, json.Unmarshal, false)
	if cfg != nil || err != nil {
		return cfg, err
	}
	return loadFile(ProjectYAML, yaml.Unmarshal, false)
}

// loadFile reads and decodes a config file at path.
// If returnDefaults is true, returns defaults when the file is absent.
// If returnDefaults is false, returns nil when the file is absent.
func loadFile(path string, decode func([]byte, any) error, returnDefaults bool) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if returnDefaults {
				d := Defaults()
				return &d, nil
			}
			return nil, nil
		}
		return nil, err
	}
	var cfg Config
	if err := decode(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	return &cfg, nil
}

// Save writes cfg as the global config, creating the config directory if needed.
func Save(cfg *Config) error {
	p, err := GlobalPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Merge combines global and project configs, with project taking precedence.
// Missing keys fall back to global, then defaults.
func Merge(global, project *Config) Config {
	result := Defaults()
	for _, layer := range []*Config{global, project} {
		if layer == nil {
			continue
		}
		if layer.DefaultFormat != "" {
			result.DefaultFormat = layer.DefaultFormat
		}
		if layer.OutputDir != "" {
			result.OutputDir = layer.OutputDir
		}
		if layer.Shell != "" {
			result.Shell = layer.Shell
		}
		if layer.LogLevel != "" {
			result.LogLevel = layer.LogLevel
		}
		if layer.TopN > 0 {
			result.TopN = layer.TopN
		}
		if len(layer.IgnorePatterns) > 0 {
			result.IgnorePatterns = layer.IgnorePatterns
		}
	}
	return result
}

// ParseError is returned when a config file exists but cannot be parsed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return "failed to parse config file " + e.Path + ": " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
