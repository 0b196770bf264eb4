// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists and reloads the JSON artifacts produced by a run:
// the analysis result hand-off document, recommendation lists, and the
// optional processed-event dump.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/olegiv/learnpath-go/internal/model"
)

// ResultsFileName is the analysis result artifact written into the output
// directory; the visualize-only mode reads it back.
const ResultsFileName = "analysis_results.json"

// SaveResults writes the analysis result document to path, creating parent
// directories as needed.
func SaveResults(result *model.AnalysisResult, path string) error {
	return writeJSON(result, path)
}

// LoadResults reads an analysis result document written by a prior run.
func LoadResults(path string) (*model.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading analysis results: %w", err)
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parsing analysis results %s: %w", path, err)
	}
	return &result, nil
}

// SaveRecommendations writes a student-id → advisory-list mapping.
func SaveRecommendations(recs map[string][]string, path string) error {
	return writeJSON(recs, path)
}

// SaveProcessedData writes the row-oriented dump of the cleaned,
// feature-augmented event table (the -export-json artifact).
func SaveProcessedData(events []model.Event, path string) error {
	return writeJSON(events, path)
}

func writeJSON(v any, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
