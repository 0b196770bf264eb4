// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config is invalid: %v", err)
	}
	if cfg.Analysis.MinGradeThreshold != 60 {
		t.Errorf("MinGradeThreshold = %v, want 60", cfg.Analysis.MinGradeThreshold)
	}
	if cfg.Analysis.ClusteringNClusters != 4 {
		t.Errorf("ClusteringNClusters = %d, want 4", cfg.Analysis.ClusteringNClusters)
	}
	if len(cfg.Visualization.Colors) == 0 {
		t.Error("default color palette is empty")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
analysis:
  min_grade_threshold: 75
  top_n_recommendations: 3
events:
  login_events:
    - signin
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Analysis.MinGradeThreshold != 75 {
		t.Errorf("MinGradeThreshold = %v, want 75", cfg.Analysis.MinGradeThreshold)
	}
	if cfg.Analysis.TopNRecommendations != 3 {
		t.Errorf("TopNRecommendations = %d, want 3", cfg.Analysis.TopNRecommendations)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Analysis.ClusteringNClusters != 4 {
		t.Errorf("ClusteringNClusters = %d, want default 4", cfg.Analysis.ClusteringNClusters)
	}
	if len(cfg.Events.LoginEvents) != 1 || cfg.Events.LoginEvents[0] != "signin" {
		t.Errorf("LoginEvents = %v, want [signin]", cfg.Events.LoginEvents)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() on a missing file should fail")
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"threshold too high", "analysis:\n  min_grade_threshold: 150\n"},
		{"zero top n", "analysis:\n  top_n_recommendations: 0\n"},
		{"zero clusters", "analysis:\n  clustering_n_clusters: 0\n"},
		{"zero dpi", "visualization:\n  dpi: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should reject invalid values")
			}
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if found {
		t.Error("found = true for an absent file")
	}
	if cfg.Analysis.MinGradeThreshold != 60 {
		t.Errorf("MinGradeThreshold = %v, want default 60", cfg.Analysis.MinGradeThreshold)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LEARNPATH_MIN_GRADE_THRESHOLD", "80")
	t.Setenv("LEARNPATH_CLUSTERING_N_CLUSTERS", "6")
	t.Setenv("LEARNPATH_LOG_LEVEL", "debug")

	cfg, _, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error: %v", err)
	}
	if cfg.Analysis.MinGradeThreshold != 80 {
		t.Errorf("MinGradeThreshold = %v, want env override 80", cfg.Analysis.MinGradeThreshold)
	}
	if cfg.Analysis.ClusteringNClusters != 6 {
		t.Errorf("ClusteringNClusters = %d, want env override 6", cfg.Analysis.ClusteringNClusters)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestEnvOverridesWinOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("analysis:\n  top_n_recommendations: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LEARNPATH_TOP_N_RECOMMENDATIONS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Analysis.TopNRecommendations != 2 {
		t.Errorf("TopNRecommendations = %d, want env override 2", cfg.Analysis.TopNRecommendations)
	}
}
