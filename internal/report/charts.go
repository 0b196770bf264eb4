// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package report renders analysis results into chart images and assembles
// the static HTML summary document.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
)

// thumbWidth is the pixel width of the report gallery thumbnails.
const thumbWidth = 320

// dayNames labels the Monday-first weekday histogram.
var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ChartRenderer renders analysis results as PNG charts, honoring the
// configured color palette and DPI.
type ChartRenderer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewChartRenderer creates a ChartRenderer.
func NewChartRenderer(cfg *config.Config, logger *slog.Logger) *ChartRenderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartRenderer{cfg: cfg, logger: logger}
}

// width and height derive pixel dimensions from the configured DPI, keeping
// the proportions of a 10x6 inch figure.
func (c *ChartRenderer) width() int  { return 10 * c.cfg.Visualization.DPI }
func (c *ChartRenderer) height() int { return 6 * c.cfg.Visualization.DPI }

// color returns the i-th palette color, cycling through the configured list.
func (c *ChartRenderer) color(i int) drawing.Color {
	colors := c.cfg.Visualization.Colors
	if len(colors) == 0 {
		return chart.ColorBlue
	}
	hex := strings.TrimPrefix(colors[i%len(colors)], "#")
	return drawing.ColorFromHex(hex)
}

// HourlyHistogram renders the 24-bucket hour-of-day distribution. An
// all-zero distribution is skipped with a warning, the bar chart cannot
// render a zero value range.
func (c *ChartRenderer) HourlyHistogram(patterns model.TimePatterns, path string) error {
	total := 0
	bars := make([]chart.Value, 24)
	for hour := 0; hour < 24; hour++ {
		total += patterns.HourlyDistribution[hour]
		bars[hour] = chart.Value{
			Label: fmt.Sprintf("%02d", hour),
			Value: float64(patterns.HourlyDistribution[hour]),
			Style: chart.Style{FillColor: c.color(0), StrokeColor: c.color(0)},
		}
	}
	if total == 0 {
		c.logger.Warn("no activity data, skipping hourly activity chart")
		return nil
	}
	return c.renderBars("Activity by Hour of Day", bars, path)
}

// DailyHistogram renders the 7-bucket day-of-week distribution, skipping an
// all-zero distribution like HourlyHistogram does.
func (c *ChartRenderer) DailyHistogram(patterns model.TimePatterns, path string) error {
	total := 0
	bars := make([]chart.Value, 7)
	for day := 0; day < 7; day++ {
		total += patterns.DailyDistribution[day]
		bars[day] = chart.Value{
			Label: dayNames[day],
			Value: float64(patterns.DailyDistribution[day]),
			Style: chart.Style{FillColor: c.color(1), StrokeColor: c.color(1)},
		}
	}
	if total == 0 {
		c.logger.Warn("no activity data, skipping weekday activity chart")
		return nil
	}
	return c.renderBars("Activity by Day of Week", bars, path)
}

// GradeDistribution renders a 20-bin histogram over the graded events.
func (c *ChartRenderer) GradeDistribution(events []model.Event, path string) error {
	const bins = 20
	counts := make([]int, bins)
	graded := 0
	for _, e := range events {
		g, ok := e.GradeValue()
		if !ok {
			continue
		}
		bin := int(g / (100.0 / bins))
		if bin >= bins {
			bin = bins - 1
		}
		counts[bin]++
		graded++
	}
	if graded == 0 {
		c.logger.Warn("no grade data available, skipping grade distribution chart")
		return nil
	}

	bars := make([]chart.Value, bins)
	for i, n := range counts {
		bars[i] = chart.Value{
			Label: fmt.Sprintf("%d", i*100/bins),
			Value: float64(n),
			Style: chart.Style{FillColor: c.color(2), StrokeColor: c.color(2)},
		}
	}
	return c.renderBars("Grade Distribution", bars, path)
}

// ActivityTimeline renders events-per-day over the observed span with a
// dashed mean reference line.
func (c *ChartRenderer) ActivityTimeline(events []model.Event, path string) error {
	if len(events) == 0 {
		c.logger.Warn("no events, skipping activity timeline chart")
		return nil
	}

	perDay := make(map[string]float64)
	for _, e := range events {
		perDay[e.Date]++
	}
	dates := make([]string, 0, len(perDay))
	for d := range perDay {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	xs := make([]time.Time, len(dates))
	ys := make([]float64, len(dates))
	total := 0.0
	for i, d := range dates {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return fmt.Errorf("parsing date %s: %w", d, err)
		}
		xs[i] = t
		ys[i] = perDay[d]
		total += perDay[d]
	}
	mean := total / float64(len(dates))
	meanLine := make([]float64, len(dates))
	for i := range meanLine {
		meanLine[i] = mean
	}

	graph := chart.Chart{
		Title:  "Daily Learning Activity",
		Width:  c.width(),
		Height: c.height(),
		XAxis:  chart.XAxis{ValueFormatter: chart.TimeDateValueFormatter},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Daily Activity",
				XValues: xs,
				YValues: ys,
				Style:   chart.Style{StrokeColor: c.color(0), StrokeWidth: 2},
			},
			chart.TimeSeries{
				Name:    fmt.Sprintf("Average (%.1f)", mean),
				XValues: xs,
				YValues: meanLine,
				Style: chart.Style{
					StrokeColor:     chart.ColorRed,
					StrokeWidth:     1,
					StrokeDashArray: []float64{4, 4},
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return c.render(&graph, path)
}

// ClusterScatter plots students on the first two normalized feature axes,
// one series per cluster. points maps student id to (x, y).
func (c *ChartRenderer) ClusterScatter(assignments []model.ClusterAssignment, points map[string][2]float64, path string) error {
	if len(assignments) == 0 {
		c.logger.Warn("no cluster data to visualize")
		return nil
	}

	byCluster := make(map[int][][2]float64)
	maxCluster := 0
	for _, a := range assignments {
		p, ok := points[a.StudentID]
		if !ok {
			continue
		}
		byCluster[a.Cluster] = append(byCluster[a.Cluster], p)
		if a.Cluster > maxCluster {
			maxCluster = a.Cluster
		}
	}

	var series []chart.Series
	for cluster := 0; cluster <= maxCluster; cluster++ {
		pts := byCluster[cluster]
		if len(pts) == 0 {
			continue
		}
		xs := make([]float64, len(pts))
		ys := make([]float64, len(pts))
		for i, p := range pts {
			xs[i], ys[i] = p[0], p[1]
		}
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("Cluster %d (%d students)", cluster, len(pts)),
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    c.color(cluster),
			},
		})
	}

	graph := chart.Chart{
		Title:  "Student Clusters by Learning Patterns",
		Width:  c.width(),
		Height: c.height(),
		XAxis:  chart.XAxis{Name: "Normalized Event Count"},
		YAxis:  chart.YAxis{Name: "Normalized Grade Mean"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return c.render(&graph, path)
}

// renderBars renders a titled bar chart with the bar width derived from the
// chart width and bar count.
func (c *ChartRenderer) renderBars(title string, bars []chart.Value, path string) error {
	barWidth := (c.width() - 150) / len(bars)
	if barWidth < 4 {
		barWidth = 4
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    c.width(),
		Height:   c.height(),
		BarWidth: barWidth,
		Bars:     bars,
	}

	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer closeQuiet(f, c.logger)

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	return c.thumbnail(path)
}

func (c *ChartRenderer) render(graph *chart.Chart, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer closeQuiet(f, c.logger)

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering %s: %w", filepath.Base(path), err)
	}
	return c.thumbnail(path)
}

// thumbnail writes a downscaled copy next to the chart for the report
// gallery, e.g. plots/foo.png -> plots/foo_thumb.png.
func (c *ChartRenderer) thumbnail(path string) error {
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("reopening chart for thumbnail: %w", err)
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, ThumbPath(path)); err != nil {
		return fmt.Errorf("saving thumbnail: %w", err)
	}
	return nil
}

// ThumbPath returns the thumbnail filename for a chart path.
func ThumbPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_thumb" + ext
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating plot directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return f, nil
}

func closeQuiet(f *os.File, logger *slog.Logger) {
	if err := f.Close(); err != nil {
		logger.Warn("closing chart file", "error", err)
	}
}
