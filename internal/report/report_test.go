// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Version: model.ResultVersion,
		RunID:   "run-abc",
		BasicStats: model.BasicStats{
			TotalStudents:       42,
			TotalEvents:         1234,
			AvgEventsPerStudent: 29.4,
			TimeRange:           model.TimeRange{Start: "2024-01-01", End: "2024-03-31"},
			EventDistribution:   map[model.EventCategory]int{model.CategoryLogin: 400},
			GradeStats:          &model.GradeStats{Mean: 74.2, Median: 76, Std: 12.1, Min: 31, Max: 99},
		},
		CorrelationMatrix: model.CorrelationMatrix{
			Features: []string{"event_count", "grade_mean", "activity_days"},
			Values: [][]float64{
				{1, 0.65, 0.2},
				{0.65, 1, 0.05},
				{0.2, 0.05, 1},
			},
		},
		Clusters: []model.ClusterAssignment{
			{StudentID: "a", Cluster: 0},
			{StudentID: "b", Cluster: 0},
			{StudentID: "c", Cluster: 1},
		},
		Timestamp: time.Now(),
	}
}

func TestGenerateHTML(t *testing.T) {
	outDir := t.TempDir()
	r, err := NewReporter(config.Default(), nil, "test")
	if err != nil {
		t.Fatalf("NewReporter() error: %v", err)
	}

	path, err := r.GenerateHTML(sampleResult(), []string{"Do more quizzes"}, outDir)
	if err != nil {
		t.Fatalf("GenerateHTML() error: %v", err)
	}
	if path != filepath.Join(outDir, ReportFileName) {
		t.Errorf("report path = %q, want it inside %q", path, outDir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	for _, want := range []string{"42", "1234", "run-abc", "Do more quizzes", "event_count"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	// activity_days correlates at 0.05, below the 0.3 threshold.
	if strings.Contains(html, "activity_days") {
		t.Error("report should not list correlations below the threshold")
	}
}

func TestGenerateHTMLNilResult(t *testing.T) {
	outDir := t.TempDir()
	r, err := NewReporter(config.Default(), nil, "test")
	if err != nil {
		t.Fatalf("NewReporter() error: %v", err)
	}

	path, err := r.GenerateHTML(nil, nil, outDir)
	if err != nil {
		t.Fatalf("GenerateHTML(nil) error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "Total Students") {
		t.Error("nil result should omit the statistics section")
	}
}

func TestGenerateHTMLSanitizesInput(t *testing.T) {
	cfg := config.Default()
	cfg.Report.IntroMarkdown = "## Weekly review\n\n<script>alert(1)</script>Stay on track."
	r, err := NewReporter(cfg, nil, "test")
	if err != nil {
		t.Fatalf("NewReporter() error: %v", err)
	}

	path, err := r.GenerateHTML(nil, []string{"<script>alert(2)</script>plain advice"}, t.TempDir())
	if err != nil {
		t.Fatalf("GenerateHTML() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	html := string(data)
	if strings.Contains(html, "<script>") {
		t.Error("script tags must be stripped")
	}
	if !strings.Contains(html, "Weekly review") || !strings.Contains(html, "plain advice") {
		t.Error("sanitization removed legitimate content")
	}
}

func TestAvailableCharts(t *testing.T) {
	outDir := t.TempDir()
	plots := filepath.Join(outDir, "plots")
	if err := os.MkdirAll(plots, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(plots, "hourly_activity.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := NewReporter(config.Default(), nil, "test")
	if err != nil {
		t.Fatal(err)
	}
	charts := r.availableCharts(outDir)
	if len(charts) != 1 {
		t.Fatalf("got %d charts, want 1", len(charts))
	}
	if charts[0].Title != "Activity by Hour of Day" {
		t.Errorf("chart title = %q", charts[0].Title)
	}
}

func TestCountClusters(t *testing.T) {
	sizes := countClusters([]model.ClusterAssignment{
		{StudentID: "a", Cluster: 1},
		{StudentID: "b", Cluster: 0},
		{StudentID: "c", Cluster: 1},
	})
	if len(sizes) != 2 {
		t.Fatalf("got %d cluster sizes, want 2", len(sizes))
	}
	if sizes[0].Cluster != 0 || sizes[0].Count != 1 {
		t.Errorf("sizes[0] = %+v, want cluster 0 with 1 member", sizes[0])
	}
	if sizes[1].Cluster != 1 || sizes[1].Count != 2 {
		t.Errorf("sizes[1] = %+v, want cluster 1 with 2 members", sizes[1])
	}
}

func TestThumbPath(t *testing.T) {
	if got := ThumbPath(filepath.Join("plots", "hourly_activity.png")); !strings.HasSuffix(got, "hourly_activity_thumb.png") {
		t.Errorf("ThumbPath = %q", got)
	}
}
