// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
	"github.com/olegiv/learnpath-go/web"
)

// ReportFileName is the HTML report written into the output directory.
const ReportFileName = "analysis_report.html"

// gradeMeanFeature is the feature column the top-correlation table pivots on.
const gradeMeanFeature = "grade_mean"

// chartCatalog lists the known chart files in display order. Only charts
// that exist on disk end up in the report gallery.
var chartCatalog = []struct {
	title string
	file  string
}{
	{"Correlation Heatmap", "correlation_heatmap.png"},
	{"Student Clusters", "student_clusters.png"},
	{"Activity by Hour of Day", "hourly_activity.png"},
	{"Activity by Day of Week", "weekday_activity.png"},
	{"Grade Distribution", "grade_distribution.png"},
	{"Daily Activity Timeline", "activity_timeline.png"},
}

// Reporter assembles the static HTML summary document.
type Reporter struct {
	cfg       *config.Config
	logger    *slog.Logger
	tmpl      *template.Template
	sanitizer *bluemonday.Policy
	version   string
}

// NewReporter parses the embedded report template.
func NewReporter(cfg *config.Config, logger *slog.Logger, version string) (*Reporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.ParseFS(web.Templates, "templates/report.html")
	if err != nil {
		return nil, fmt.Errorf("parsing report template: %w", err)
	}
	return &Reporter{
		cfg:       cfg,
		logger:    logger,
		tmpl:      tmpl,
		sanitizer: bluemonday.UGCPolicy(),
		version:   version,
	}, nil
}

// correlationEntry is one row of the top-correlations table.
type correlationEntry struct {
	Feature string
	Value   float64
}

// clusterSize is one row of the cluster-size table.
type clusterSize struct {
	Cluster int
	Count   int
}

// chartLink is one gallery entry; File is relative to the report location.
type chartLink struct {
	Title string
	File  string
}

// reportData feeds the HTML template.
type reportData struct {
	GeneratedAt     string
	RunID           string
	Version         string
	IntroHTML       template.HTML
	HasResult       bool
	Stats           model.BasicStats
	TopCorrelations []correlationEntry
	ClusterSizes    []clusterSize
	Recommendations []string
	Charts          []chartLink
}

// GenerateHTML writes the report into outDir and returns the report path.
// result may be nil (visualize-only invocation against a missing artifact):
// the report then carries only the chart gallery.
func (r *Reporter) GenerateHTML(result *model.AnalysisResult, recommendations []string, outDir string) (string, error) {
	data := reportData{
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Version:     r.version,
		Charts:      r.availableCharts(outDir),
	}

	for _, rec := range recommendations {
		data.Recommendations = append(data.Recommendations, r.sanitizer.Sanitize(rec))
	}

	if result != nil {
		data.HasResult = true
		data.RunID = result.RunID
		data.Stats = result.BasicStats
		data.TopCorrelations = r.topCorrelations(result.CorrelationMatrix)
		data.ClusterSizes = countClusters(result.Clusters)
	}

	if intro := r.cfg.Report.IntroMarkdown; intro != "" {
		html, err := r.renderMarkdown(intro)
		if err != nil {
			r.logger.Warn("rendering report intro failed", "error", err)
		} else {
			data.IntroHTML = html
		}
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(outDir, ReportFileName)

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing report template: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}

	r.logger.Info("HTML report generated", "path", path)
	return path, nil
}

// renderMarkdown converts the configured intro markdown to sanitized HTML.
func (r *Reporter) renderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}

// topCorrelations returns the features whose correlation with grade_mean
// clears the configured threshold (in either direction), ordered by raw
// value descending, so negative correlations sort last.
func (r *Reporter) topCorrelations(matrix model.CorrelationMatrix) []correlationEntry {
	if matrix.IsEmpty() {
		return nil
	}

	var entries []correlationEntry
	for _, feature := range matrix.Features {
		if feature == gradeMeanFeature {
			continue
		}
		v := matrix.At(feature, gradeMeanFeature)
		if v >= r.cfg.Analysis.CorrelationThreshold || v <= -r.cfg.Analysis.CorrelationThreshold {
			entries = append(entries, correlationEntry{Feature: feature, Value: v})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Value > entries[j].Value
	})
	return entries
}

// availableCharts lists the catalog charts that actually exist under
// outDir/plots.
func (r *Reporter) availableCharts(outDir string) []chartLink {
	var charts []chartLink
	for _, entry := range chartCatalog {
		rel := filepath.Join("plots", entry.file)
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			continue
		}
		charts = append(charts, chartLink{Title: entry.title, File: rel})
	}
	return charts
}

func countClusters(assignments []model.ClusterAssignment) []clusterSize {
	if len(assignments) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, a := range assignments {
		counts[a.Cluster]++
	}
	sizes := make([]clusterSize, 0, len(counts))
	for cluster, count := range counts {
		sizes = append(sizes, clusterSize{Cluster: cluster, Count: count})
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].Cluster < sizes[j].Cluster })
	return sizes
}
