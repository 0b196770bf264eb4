// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command learnpath analyzes LMS event logs: it parses a CSV export, runs
// descriptive and cluster analysis, generates study recommendations, and
// renders charts plus a static HTML report.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/olegiv/learnpath-go/internal/aggregate"
	"github.com/olegiv/learnpath-go/internal/analyzer"
	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
	"github.com/olegiv/learnpath-go/internal/parser"
	"github.com/olegiv/learnpath-go/internal/recommend"
	"github.com/olegiv/learnpath-go/internal/report"
	"github.com/olegiv/learnpath-go/internal/store"
	"github.com/olegiv/learnpath-go/internal/util"
	"github.com/olegiv/learnpath-go/internal/version"
)

// defaultConfigPath is the config file looked up when -config is not given;
// a missing default file falls back to built-in defaults with a warning.
const defaultConfigPath = "config.yaml"

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// options collects the parsed command-line flags.
type options struct {
	input         string
	output        string
	configPath    string
	studentID     string
	timeframe     string
	minGrade      string
	exportJSON    bool
	visualizeOnly bool
	logLevel      string
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "input", "", "Input CSV file path")
	flag.StringVar(&opts.input, "i", "", "Input CSV file path (shorthand)")
	flag.StringVar(&opts.output, "output", "reports", "Output directory")
	flag.StringVar(&opts.output, "o", "reports", "Output directory (shorthand)")
	flag.StringVar(&opts.configPath, "config", defaultConfigPath, "Config file path")
	flag.StringVar(&opts.configPath, "c", defaultConfigPath, "Config file path (shorthand)")
	flag.StringVar(&opts.studentID, "student-id", "", "Analyze specific student ID")
	flag.StringVar(&opts.timeframe, "timeframe", "", "Timeframe filter (YYYY or YYYY-MM)")
	flag.StringVar(&opts.minGrade, "min-grade", "", "Minimum grade threshold filter")
	flag.BoolVar(&opts.exportJSON, "export-json", false, "Export processed data as JSON")
	flag.BoolVar(&opts.visualizeOnly, "visualize-only", false, "Only regenerate visualizations from a prior run")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "learnpath - Learning Path Analyzer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s -i events.csv [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if *showVersion {
		info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
		fmt.Println(info)
		return
	}
	if *showHelp {
		flag.Usage()
		return
	}

	if err := run(opts); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	// .env is optional; real environment variables win either way.
	_ = godotenv.Load()

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	setupLogger(cfg.LogLevel)

	if opts.input == "" && !opts.visualizeOnly {
		flag.Usage()
		return fmt.Errorf("input file is required")
	}

	plotsDir := filepath.Join(opts.output, "plots")
	if err := os.MkdirAll(plotsDir, 0o755); err != nil {
		return fmt.Errorf("creating output directories: %w", err)
	}

	slog.Info("starting learning path analyzer",
		"input", opts.input, "output", opts.output, "version", appVersion)

	reporter, err := report.NewReporter(cfg, slog.Default(), appVersion)
	if err != nil {
		return err
	}
	charts := report.NewChartRenderer(cfg, slog.Default())

	if opts.visualizeOnly {
		return visualizeOnly(opts, charts, reporter)
	}

	// Step 1: parse and filter.
	p := parser.New(cfg, slog.Default())
	events, err := p.ParseCSV(opts.input)
	if err != nil {
		return err
	}
	if opts.timeframe != "" {
		events = p.FilterByTimeframe(events, opts.timeframe)
	}
	if opts.minGrade != "" {
		min, err := strconv.ParseFloat(opts.minGrade, 64)
		if err != nil {
			return fmt.Errorf("invalid -min-grade value %q: %w", opts.minGrade, err)
		}
		events = parser.FilterByMinGrade(events, min)
	}

	// Step 2: analysis.
	a := analyzer.New(cfg, slog.Default())
	basic := a.BasicMetrics(events)
	slog.Info("basic metrics computed",
		"students", basic.TotalStudents,
		"events", basic.TotalEvents,
		"from", basic.TimeRange.Start,
		"to", basic.TimeRange.End)

	matrix := a.Correlations(events)
	clusters := a.ClusterStudents(events, 0)
	patterns := a.TimePatterns(events)
	learning := a.LearningPatterns(events)

	result := &model.AnalysisResult{
		Version:           model.ResultVersion,
		RunID:             uuid.NewString(),
		BasicStats:        basic,
		CorrelationMatrix: matrix,
		Clusters:          clusters,
		TimePatterns:      patterns,
		LearningPatterns:  learning,
		Timestamp:         time.Now(),
	}

	// Step 3: recommendations.
	engine := recommend.New(cfg, slog.Default())
	var recommendations []string
	if opts.studentID != "" {
		recommendations = engine.Personalized(events, opts.studentID)
		recsPath := filepath.Join(opts.output,
			fmt.Sprintf("recommendations_%s.json", util.Slugify(opts.studentID)))
		if err := store.SaveRecommendations(map[string][]string{opts.studentID: recommendations}, recsPath); err != nil {
			return err
		}
		slog.Info("personalized recommendations saved", "student", opts.studentID, "path", recsPath)
	} else {
		recommendations = engine.General(events)
	}
	for i, rec := range recommendations {
		slog.Info("recommendation", "rank", i+1, "text", rec)
	}

	// Step 4: persist artifacts.
	resultsPath := filepath.Join(opts.output, store.ResultsFileName)
	if err := store.SaveResults(result, resultsPath); err != nil {
		return err
	}
	slog.Info("analysis results saved", "path", resultsPath)

	if opts.exportJSON {
		dataPath := filepath.Join(opts.output, "processed_data.json")
		if err := store.SaveProcessedData(events, dataPath); err != nil {
			return err
		}
		slog.Info("processed data exported", "path", dataPath)
	}

	// Step 5: charts and report.
	if err := renderCharts(charts, events, result, plotsDir); err != nil {
		return err
	}
	reportPath, err := reporter.GenerateHTML(result, recommendations, opts.output)
	if err != nil {
		return err
	}

	slog.Info("analysis complete", "report", reportPath)

	if cfg.Report.AutoOpenBrowser {
		if err := report.OpenBrowser(reportPath); err != nil {
			slog.Warn("could not open browser", "error", err)
		}
	}
	return nil
}

// visualizeOnly regenerates charts and the HTML report from the artifact a
// prior run left in the output directory.
func visualizeOnly(opts options, charts *report.ChartRenderer, reporter *report.Reporter) error {
	resultsPath := filepath.Join(opts.output, store.ResultsFileName)
	result, err := store.LoadResults(resultsPath)
	if err != nil {
		return fmt.Errorf("visualize-only requires a prior run's %s: %w", store.ResultsFileName, err)
	}

	plotsDir := filepath.Join(opts.output, "plots")
	if err := charts.CorrelationHeatmap(result.CorrelationMatrix, filepath.Join(plotsDir, "correlation_heatmap.png")); err != nil {
		return err
	}
	if err := charts.HourlyHistogram(result.TimePatterns, filepath.Join(plotsDir, "hourly_activity.png")); err != nil {
		return err
	}
	if err := charts.DailyHistogram(result.TimePatterns, filepath.Join(plotsDir, "weekday_activity.png")); err != nil {
		return err
	}

	reportPath, err := reporter.GenerateHTML(result, nil, opts.output)
	if err != nil {
		return err
	}
	slog.Info("visualizations regenerated", "report", reportPath)
	return nil
}

// renderCharts draws the full chart set for a completed analysis run.
func renderCharts(charts *report.ChartRenderer, events []model.Event, result *model.AnalysisResult, plotsDir string) error {
	if err := charts.CorrelationHeatmap(result.CorrelationMatrix, filepath.Join(plotsDir, "correlation_heatmap.png")); err != nil {
		return err
	}

	// The scatter projects students on the first two normalized feature
	// axes, using the same scaling the clustering step saw.
	features := aggregate.Aggregate(events)
	scaler := aggregate.FitScaler(features)
	rows := scaler.Transform(features)
	points := make(map[string][2]float64, len(features))
	for i, f := range features {
		points[f.StudentID] = [2]float64{rows[i][0], rows[i][1]}
	}
	if err := charts.ClusterScatter(result.Clusters, points, filepath.Join(plotsDir, "student_clusters.png")); err != nil {
		return err
	}

	if err := charts.HourlyHistogram(result.TimePatterns, filepath.Join(plotsDir, "hourly_activity.png")); err != nil {
		return err
	}
	if err := charts.DailyHistogram(result.TimePatterns, filepath.Join(plotsDir, "weekday_activity.png")); err != nil {
		return err
	}
	if err := charts.GradeDistribution(events, filepath.Join(plotsDir, "grade_distribution.png")); err != nil {
		return err
	}
	return charts.ActivityTimeline(events, filepath.Join(plotsDir, "activity_timeline.png"))
}

// loadConfig loads the YAML config. The default path may be absent (built-in
// defaults apply); an explicitly given path must exist.
func loadConfig(path string) (*config.Config, error) {
	if path == defaultConfigPath {
		cfg, found, err := config.LoadOrDefault(path)
		if err != nil {
			return nil, err
		}
		if !found {
			slog.Warn("config file not found, using built-in defaults", "path", path)
		}
		return cfg, nil
	}
	return config.Load(path)
}

// setupLogger configures the default slog logger from the configured level.
func setupLogger(level string) {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
}
