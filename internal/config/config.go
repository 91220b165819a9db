package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/synthesis"
)

// FileNames are the config file names Load looks for, in order.
var FileNames = []string{"fourfold.yml", "fourfold.yaml"}

// Config holds project-level settings loaded from fourfold.yml.
type Config struct {
	Timeouts  TimeoutConfig   `yaml:"timeouts"`
	Conflict  ConflictConfig  `yaml:"conflict,omitempty"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Patterns  PatternsConfig  `yaml:"patterns"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`

	// StreamDelay slows every built-in stream down between steps. Useful for
	// demonstrating timeouts.
	StreamDelay time.Duration `yaml:"streamDelay,omitempty"`
}

// TimeoutConfig bounds an orchestration run.
type TimeoutConfig struct {
	PerTask    time.Duration `yaml:"perTask"`
	Total      time.Duration `yaml:"total"`
	ShareDelay time.Duration `yaml:"shareDelay"`
}

// ConflictConfig overrides individual conflict thresholds. Nil fields keep
// the defaults.
type ConflictConfig struct {
	SimilarityOverlap *float64                  `yaml:"similarityOverlap,omitempty"`
	CriticalMean      *float64                  `yaml:"criticalMean,omitempty"`
	HighMean          *float64                  `yaml:"highMean,omitempty"`
	MediumMean        *float64                  `yaml:"mediumMean,omitempty"`
	TypeWeights       map[conflict.Type]float64 `yaml:"typeWeights,omitempty"`
}

// SynthesisConfig tunes the synthesis engine.
type SynthesisConfig struct {
	ImportanceCutoff float64 `yaml:"importanceCutoff"`
}

// PatternsConfig selects where learned conflict patterns are persisted.
type PatternsConfig struct {
	// Backend is "memory" or "kuzu".
	Backend string `yaml:"backend"`
	// Path is the Kuzu database directory, relative to the project root.
	Path string `yaml:"path,omitempty"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TelemetryConfig enables OTLP trace export when Endpoint is set.
type TelemetryConfig struct {
	Endpoint    string `yaml:"endpoint,omitempty"`
	ServiceName string `yaml:"serviceName,omitempty"`
	Headers     string `yaml:"headers,omitempty"`
}

// Enabled reports whether traces should be exported.
func (t TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	return &Config{
		Timeouts: TimeoutConfig{
			PerTask:    10 * time.Second,
			Total:      30 * time.Second,
			ShareDelay: time.Second,
		},
		Synthesis: SynthesisConfig{ImportanceCutoff: synthesis.DefaultImportanceCutoff},
		Patterns:  PatternsConfig{Backend: "memory", Path: ".fourfold/patterns"},
		Log:       LogConfig{Level: "info", Format: "text"},
		Telemetry: TelemetryConfig{ServiceName: "fourfold"},
	}
}

// Load attempts to read fourfold.yml or fourfold.yaml from the given
// directory. Values in the file override Defaults. Returns the defaults (not
// an error) if no config file exists.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg := Defaults()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		return cfg, nil
	}
	return Defaults(), nil
}

// Write stores cfg as YAML in dir/fourfold.yml.
func Write(dir string, cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	path := filepath.Join(dir, FileNames[0])
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// Validate rejects settings the orchestrator cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeouts.PerTask <= 0 {
		errs = append(errs, errors.New("timeouts.perTask must be positive"))
	}
	if c.Timeouts.Total <= 0 {
		errs = append(errs, errors.New("timeouts.total must be positive"))
	}
	if c.Timeouts.ShareDelay < 0 {
		errs = append(errs, errors.New("timeouts.shareDelay must not be negative"))
	}
	if c.StreamDelay < 0 {
		errs = append(errs, errors.New("streamDelay must not be negative"))
	}
	if v := c.Synthesis.ImportanceCutoff; v < 0 || v > 1 {
		errs = append(errs, fmt.Errorf("synthesis.importanceCutoff must be within [0, 1], got %g", v))
	}
	switch c.Patterns.Backend {
	case "memory", "kuzu":
	default:
		errs = append(errs, fmt.Errorf("patterns.backend must be memory or kuzu, got %q", c.Patterns.Backend))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if err := c.Thresholds().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("conflict: %w", err))
	}
	return errors.Join(errs...)
}

// Thresholds applies the conflict overrides to conflict.DefaultThresholds.
func (c *Config) Thresholds() conflict.Thresholds {
	th := conflict.DefaultThresholds()
	if v := c.Conflict.SimilarityOverlap; v != nil {
		th.SimilarityOverlap = *v
	}
	if v := c.Conflict.CriticalMean; v != nil {
		th.CriticalMean = *v
	}
	if v := c.Conflict.HighMean; v != nil {
		th.HighMean = *v
	}
	if v := c.Conflict.MediumMean; v != nil {
		th.MediumMean = *v
	}
	for t, w := range c.Conflict.TypeWeights {
		th.TypeWeights[t] = w
	}
	return th
}
