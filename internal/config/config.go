// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the analyzer configuration from a YAML file, applies
// defaults for omitted keys, and lets LEARNPATH_-prefixed environment
// variables override individual settings.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Events holds the keyword lists used to categorize raw event types.
// Matching is case-insensitive substring, in the priority order
// login > content > assessment > social > milestone.
type Events struct {
	LoginEvents      []string `yaml:"login_events"`
	ContentEvents    []string `yaml:"content_events"`
	AssessmentEvents []string `yaml:"assessment_events"`
	SocialEvents     []string `yaml:"social_events"`
	ImportantEvents  []string `yaml:"important_events"`
}

// Analysis holds thresholds for the analyzer and recommendation engine.
type Analysis struct {
	MinGradeThreshold    float64 `yaml:"min_grade_threshold"`
	CorrelationThreshold float64 `yaml:"correlation_threshold"`
	TopNRecommendations  int     `yaml:"top_n_recommendations"`
	ClusteringNClusters  int     `yaml:"clustering_n_clusters"`
}

// Visualization holds chart rendering options.
type Visualization struct {
	Style  string   `yaml:"style"`
	Theme  string   `yaml:"theme"`
	Colors []string `yaml:"colors"`
	DPI    int      `yaml:"dpi"`
}

// Report holds HTML report options.
type Report struct {
	AutoOpenBrowser bool   `yaml:"auto_open_browser"`
	IntroMarkdown   string `yaml:"intro_markdown"`
}

// Config is the full analyzer configuration.
type Config struct {
	Events        Events        `yaml:"events"`
	Analysis      Analysis      `yaml:"analysis"`
	Visualization Visualization `yaml:"visualization"`
	Report        Report        `yaml:"report"`

	// LogLevel is set from the environment only (debug|info|warn|error).
	LogLevel string `yaml:"-"`
}

// envOverrides are optional environment overrides applied after the YAML
// file is read. Pointer fields distinguish "unset" from zero values.
type envOverrides struct {
	LogLevel             string   `env:"LEARNPATH_LOG_LEVEL"`
	MinGradeThreshold    *float64 `env:"LEARNPATH_MIN_GRADE_THRESHOLD"`
	CorrelationThreshold *float64 `env:"LEARNPATH_CORRELATION_THRESHOLD"`
	TopNRecommendations  *int     `env:"LEARNPATH_TOP_N_RECOMMENDATIONS"`
	ClusteringNClusters  *int     `env:"LEARNPATH_CLUSTERING_N_CLUSTERS"`
	DPI                  *int     `env:"LEARNPATH_DPI"`
	AutoOpenBrowser      *bool    `env:"LEARNPATH_AUTO_OPEN_BROWSER"`
}

// Default returns the built-in configuration used when no config file is
// available. The keyword lists mirror the documented defaults.
func Default() *Config {
	return &Config{
		Events: Events{
			LoginEvents:      []string{"login", "logout", "session_start"},
			ContentEvents:    []string{"view", "download", "read", "resource_access"},
			AssessmentEvents: []string{"assignment", "quiz", "exam", "test"},
			SocialEvents:     []string{"forum", "comment", "reply", "message"},
			ImportantEvents:  []string{"complete", "certificate", "badge"},
		},
		Analysis: Analysis{
			MinGradeThreshold:    60,
			CorrelationThreshold: 0.3,
			TopNRecommendations:  5,
			ClusteringNClusters:  4,
		},
		Visualization: Visualization{
			Style: "default",
			Theme: "light",
			Colors: []string{
				"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728",
				"#9467bd", "#8c564b", "#e377c2", "#7f7f7f",
			},
			DPI: 100,
		},
		Report: Report{
			AutoOpenBrowser: false,
		},
		LogLevel: "info",
	}
}

// Load reads the YAML configuration at path, fills defaults for omitted
// keys, applies environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default (with
// environment overrides applied) when the file does not exist.
func LoadOrDefault(path string) (*Config, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.applyEnv(); err != nil {
			return nil, false, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, false, err
		}
		return cfg, false, nil
	}
	cfg, err := Load(path)
	return cfg, true, err
}

func (c *Config) applyEnv() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("parsing environment overrides: %w", err)
	}

	if ov.LogLevel != "" {
		c.LogLevel = ov.LogLevel
	}
	if ov.MinGradeThreshold != nil {
		c.Analysis.MinGradeThreshold = *ov.MinGradeThreshold
	}
	if ov.CorrelationThreshold != nil {
		c.Analysis.CorrelationThreshold = *ov.CorrelationThreshold
	}
	if ov.TopNRecommendations != nil {
		c.Analysis.TopNRecommendations = *ov.TopNRecommendations
	}
	if ov.ClusteringNClusters != nil {
		c.Analysis.ClusteringNClusters = *ov.ClusteringNClusters
	}
	if ov.DPI != nil {
		c.Visualization.DPI = *ov.DPI
	}
	if ov.AutoOpenBrowser != nil {
		c.Report.AutoOpenBrowser = *ov.AutoOpenBrowser
	}
	return nil
}

// Validate checks value ranges. It is called by Load; callers constructing a
// Config by hand should call it themselves.
func (c *Config) Validate() error {
	if c.Analysis.MinGradeThreshold < 0 || c.Analysis.MinGradeThreshold > 100 {
		return fmt.Errorf("min_grade_threshold must be in [0, 100], got %v", c.Analysis.MinGradeThreshold)
	}
	if c.Analysis.TopNRecommendations < 1 {
		return fmt.Errorf("top_n_recommendations must be at least 1, got %d", c.Analysis.TopNRecommendations)
	}
	if c.Analysis.ClusteringNClusters < 1 {
		return fmt.Errorf("clustering_n_clusters must be at least 1, got %d", c.Analysis.ClusteringNClusters)
	}
	if c.Visualization.DPI < 1 {
		return fmt.Errorf("dpi must be positive, got %d", c.Visualization.DPI)
	}
	return nil
}
