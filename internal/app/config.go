package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the project root when no config file is
// given explicitly.
const DefaultConfigFile = "buildparse.yaml"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ProjectRoot string `yaml:"project_root"`

	// Manifests are files or directories with *.rules.hcl rule manifests.
	Manifests      []string `yaml:"manifests"`
	NoDefaultRules bool     `yaml:"no_default_rules"`

	// BuildFileName is the name of build files, e.g. "BUCK".
	BuildFileName string `yaml:"build_file_name"`

	// Include are doublestar patterns relative to the project root selecting
	// build files. Defaults to "**/<BuildFileName>".
	Include []string `yaml:"include"`

	Workers   int  `yaml:"workers"`
	KeepGoing bool `yaml:"keep_going"`

	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	// MetricsAddr is the listen address of the /metrics and /health server.
	// Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// NewConfig fills in defaults and validates cfg.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ProjectRoot == "" {
		return nil, errors.New("ProjectRoot is a required configuration field and cannot be empty")
	}
	root, err := filepath.Abs(cfg.ProjectRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	cfg.ProjectRoot = root

	if cfg.NoDefaultRules && len(cfg.Manifests) == 0 {
		return nil, errors.New("no rule types available: default rules are disabled and no manifests are configured")
	}
	manifests := make([]string, 0, len(cfg.Manifests))
	for _, m := range cfg.Manifests {
		if !filepath.IsAbs(m) {
			m = filepath.Join(root, m)
		}
		manifests = append(manifests, m)
	}
	cfg.Manifests = manifests

	if cfg.BuildFileName == "" {
		cfg.BuildFileName = "BUCK"
	}
	if len(cfg.Include) == 0 {
		cfg.Include = []string{"**/" + cfg.BuildFileName}
	}

	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "":
		cfg.LogLevel = "info"
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	if cfg.WatchDebounce == 0 {
		cfg.WatchDebounce = 100 * time.Millisecond
	}

	return &cfg, nil
}

// LoadConfigFile reads a YAML config file. Unknown keys are an error. A
// relative project_root is resolved against the file's directory.
func LoadConfigFile(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = "."
	}
	if !filepath.IsAbs(cfg.ProjectRoot) {
		cfg.ProjectRoot = filepath.Join(filepath.Dir(path), cfg.ProjectRoot)
	}
	return cfg, nil
}
