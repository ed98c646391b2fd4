// Package config loads and validates the sitegen.yaml site configuration.
package config

import (
	"fmt"
	"os"

	"git.home.luguber.info/inful/sitegen/internal/errors"
	"gopkg.in/yaml.v3"
)

// Rule maps a glob pattern over item identifiers to a filter chain and an
// optional layout. Rules are evaluated in order; the first match wins.
type Rule struct {
	Pattern string   `yaml:"pattern"`
	Filters []string `yaml:"filters,omitempty"`
	Layout  string   `yaml:"layout,omitempty"`

	// Write controls whether the compiled result is written to disk.
	// Defaults to true; rules with write: false produce compiled but
	// unwritten representations.
	Write *bool `yaml:"write,omitempty"`
}

// ShouldWrite reports whether reps matched by this rule get written.
func (r Rule) ShouldWrite() bool { return r.Write == nil || *r.Write }

// GitSource configures an optional git-backed content source.
type GitSource struct {
	URL    string `yaml:"url"`
	Branch string `yaml:"branch,omitempty"`
}

// JournalConfig configures the optional SQLite event journal.
type JournalConfig struct {
	Path string `yaml:"path"`
}

// EventsConfig configures the optional NATS event relay.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject,omitempty"`
}

// MetricsConfig configures the optional Prometheus endpoint (watch mode).
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// Config is the root sitegen configuration.
type Config struct {
	ContentDir string         `yaml:"content_dir"`
	LayoutsDir string         `yaml:"layouts_dir"`
	OutputDir  string         `yaml:"output_dir"`
	Git        *GitSource     `yaml:"git,omitempty"`
	Rules      []Rule         `yaml:"rules"`
	Journal    *JournalConfig `yaml:"journal,omitempty"`
	Events     *EventsConfig  `yaml:"events,omitempty"`
	Metrics    *MetricsConfig `yaml:"metrics,omitempty"`

	// Retired fields kept so their presence can be rejected with a clear
	// message instead of being silently ignored.
	Compass  any `yaml:"compass,omitempty"`
	Filters2 any `yaml:"filters2,omitempty"`
}

// Load reads, parses, and validates a configuration file, then applies
// SITEGEN_* environment overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	applyEnv(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ContentDir: "content",
		LayoutsDir: "layouts",
		OutputDir:  "site",
	}
}

// applyEnv lets environment variables override file values. Godotenv in
// main loads .env before this runs.
func applyEnv(cfg *Config) {
	if v := os.Getenv("SITEGEN_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("SITEGEN_NATS_URL"); v != "" {
		if cfg.Events == nil {
			cfg.Events = &EventsConfig{}
		}
		cfg.Events.NATSURL = v
	}
	if v := os.Getenv("SITEGEN_METRICS_LISTEN"); v != "" {
		if cfg.Metrics == nil {
			cfg.Metrics = &MetricsConfig{}
		}
		cfg.Metrics.Listen = v
	}
}

func validate(cfg *Config) error {
	if cfg.Compass != nil {
		return errors.New(errors.KindNoLongerSupported, "the compass setting was removed; configure filters per rule instead")
	}
	if cfg.Filters2 != nil {
		return errors.New(errors.KindNoLongerSupported, "the filters2 setting was removed; use rules[].filters")
	}
	if cfg.ContentDir == "" {
		return fmt.Errorf("content_dir must not be empty")
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	for i, rule := range cfg.Rules {
		if rule.Pattern == "" {
			return fmt.Errorf("rules[%d]: pattern must not be empty", i)
		}
	}
	if cfg.Events != nil && cfg.Events.Subject == "" {
		cfg.Events.Subject = "sitegen.events"
	}
	return nil
}
