// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analyzer computes descriptive statistics, feature correlations,
// student clusters and temporal activity patterns over parsed event logs.
package analyzer

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/olegiv/learnpath-go/internal/aggregate"
	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
)

// minGradedEvents is the number of graded events a student needs before they
// can be classified as successful.
const minGradedEvents = 3

// Analyzer runs the statistical analyses.
type Analyzer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Analyzer using the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{cfg: cfg, logger: logger}
}

// BasicMetrics computes the population-wide summary. Empty input yields zero
// counts and an N/A time range rather than an error.
func (a *Analyzer) BasicMetrics(events []model.Event) model.BasicStats {
	stats := model.BasicStats{
		TotalEvents:       len(events),
		TimeRange:         model.TimeRange{Start: model.TimeRangeNA, End: model.TimeRangeNA},
		EventDistribution: make(map[model.EventCategory]int),
	}
	if len(events) == 0 {
		return stats
	}

	students := make(map[string]struct{})
	minTime, maxTime := events[0].EventTime, events[0].EventTime
	var grades []float64
	for _, e := range events {
		students[e.StudentID] = struct{}{}
		stats.EventDistribution[e.Category]++
		if e.EventTime.Before(minTime) {
			minTime = e.EventTime
		}
		if e.EventTime.After(maxTime) {
			maxTime = e.EventTime
		}
		if g, graded := e.GradeValue(); graded {
			grades = append(grades, g)
		}
	}

	stats.TotalStudents = len(students)
	stats.AvgEventsPerStudent = float64(len(events)) / float64(len(students))
	stats.TimeRange = model.TimeRange{
		Start: minTime.Format("2006-01-02"),
		End:   maxTime.Format("2006-01-02"),
	}

	if len(grades) > 0 {
		sorted := append([]float64(nil), grades...)
		sort.Float64s(sorted)
		gs := &model.GradeStats{
			Mean:   stat.Mean(sorted, nil),
			Median: median(sorted),
			Min:    sorted[0],
			Max:    sorted[len(sorted)-1],
		}
		if len(sorted) > 1 {
			gs.Std = stat.StdDev(sorted, nil)
		}
		stats.GradeStats = gs
	}
	return stats
}

// Correlations aggregates events into per-student features, normalizes them,
// and computes the full pairwise Pearson correlation matrix. It fails soft
// (empty matrix) when no graded events exist or when fewer than two students
// are present.
func (a *Analyzer) Correlations(events []model.Event) model.CorrelationMatrix {
	if !hasGrades(events) {
		a.logger.Warn("no grade data available for correlation analysis")
		return model.CorrelationMatrix{}
	}

	features := aggregate.Aggregate(events)
	if len(features) < 2 {
		a.logger.Warn("not enough students for correlation analysis", "students", len(features))
		return model.CorrelationMatrix{}
	}

	scaler := aggregate.FitScaler(features)
	rows := scaler.Transform(features)

	names := model.FeatureNames()
	columns := make([][]float64, len(names))
	for _, row := range rows {
		for j, v := range row {
			columns[j] = append(columns[j], v)
		}
	}

	matrix := model.CorrelationMatrix{
		Features: names,
		Values:   make([][]float64, len(names)),
	}
	for i := range names {
		matrix.Values[i] = make([]float64, len(names))
		for j := range names {
			switch {
			case i == j:
				matrix.Values[i][j] = 1
			case j < i:
				matrix.Values[i][j] = matrix.Values[j][i]
			default:
				matrix.Values[i][j] = correlation(columns[i], columns[j])
			}
		}
	}
	return matrix
}

// ClusterStudents partitions students into n clusters by K-Means over the
// normalized feature vectors. Passing n <= 0 uses the configured cluster
// count. When fewer students than clusters exist the call fails soft and
// returns nil. Centroids are discarded; only the label assignments survive.
func (a *Analyzer) ClusterStudents(events []model.Event, n int) []model.ClusterAssignment {
	if n <= 0 {
		n = a.cfg.Analysis.ClusteringNClusters
	}

	features := aggregate.Aggregate(events)
	if len(features) < n {
		a.logger.Warn("not enough students for clustering", "students", len(features), "clusters", n)
		return nil
	}

	scaler := aggregate.FitScaler(features)
	rows := scaler.Transform(features)

	labels := kmeans(rows, n)

	assignments := make([]model.ClusterAssignment, len(features))
	sizes := make([]int, n)
	for i, f := range features {
		assignments[i] = model.ClusterAssignment{StudentID: f.StudentID, Cluster: labels[i]}
		sizes[labels[i]]++
	}
	a.logger.Info("clustered students", "clusters", n, "sizes", sizes)
	return assignments
}

// TimePatterns builds the hour-of-day and day-of-week histograms plus a
// category-by-hour cross-tabulation.
func (a *Analyzer) TimePatterns(events []model.Event) model.TimePatterns {
	patterns := model.TimePatterns{}
	if len(events) == 0 {
		return patterns
	}

	byHour := make(map[model.EventCategory][24]int)
	for _, e := range events {
		patterns.HourlyDistribution[e.Hour]++
		patterns.DailyDistribution[e.DayOfWeek]++
		counts := byHour[e.Category]
		counts[e.Hour]++
		byHour[e.Category] = counts
	}
	patterns.EventByHour = byHour
	return patterns
}

// StudentGrade is a successful-student candidate: mean grade and graded
// event count for one student.
type StudentGrade struct {
	StudentID string  `json:"student_id"`
	Mean      float64 `json:"mean"`
	Count     int     `json:"count"`
}

// SuccessfulStudents returns the students with at least three graded events
// whose mean grade meets the configured threshold, sorted by id.
func (a *Analyzer) SuccessfulStudents(events []model.Event) []StudentGrade {
	sums := make(map[string]*StudentGrade)
	for _, e := range events {
		g, graded := e.GradeValue()
		if !graded {
			continue
		}
		s := sums[e.StudentID]
		if s == nil {
			s = &StudentGrade{StudentID: e.StudentID}
			sums[e.StudentID] = s
		}
		s.Mean += g
		s.Count++
	}

	var successful []StudentGrade
	for _, s := range sums {
		if s.Count < minGradedEvents {
			continue
		}
		mean := s.Mean / float64(s.Count)
		if mean >= a.cfg.Analysis.MinGradeThreshold {
			successful = append(successful, StudentGrade{StudentID: s.StudentID, Mean: mean, Count: s.Count})
		}
	}
	sort.Slice(successful, func(i, j int) bool {
		return successful[i].StudentID < successful[j].StudentID
	})
	return successful
}

// LearningPatterns describes how the successful cohort behaves: activity
// frequency, category mix, modal hours and days, and mean activity duration.
// Returns nil when no successful students exist.
func (a *Analyzer) LearningPatterns(events []model.Event) *model.LearningPatterns {
	successful := a.SuccessfulStudents(events)
	if len(successful) == 0 {
		return nil
	}

	ids := make(map[string]struct{}, len(successful))
	for _, s := range successful {
		ids[s.StudentID] = struct{}{}
	}

	var cohort []model.Event
	for _, e := range events {
		if _, ok := ids[e.StudentID]; ok {
			cohort = append(cohort, e)
		}
	}
	if len(cohort) == 0 {
		return nil
	}

	patterns := &model.LearningPatterns{
		ActivityFrequency: float64(len(cohort)) / float64(len(successful)),
		EventDistribution: make(map[model.EventCategory]float64),
	}

	hourCounts := make(map[int]int)
	dayCounts := make(map[int]int)
	var totalDuration float64
	for _, e := range cohort {
		patterns.EventDistribution[e.Category]++
		hourCounts[e.Hour]++
		dayCounts[e.DayOfWeek]++
		totalDuration += e.Duration
	}
	for c := range patterns.EventDistribution {
		patterns.EventDistribution[c] /= float64(len(cohort))
	}
	patterns.PreferredHours = modes(hourCounts)
	patterns.PreferredDays = modes(dayCounts)
	patterns.AvgDuration = totalDuration / float64(len(cohort))
	return patterns
}

// median returns the middle value of an already-sorted series, averaging
// the two middle values for even-sized input.
func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// correlation is Pearson correlation with zero-variance columns mapped to 0
// instead of NaN.
func correlation(x, y []float64) float64 {
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0
	}
	return stat.Correlation(x, y, nil)
}

func hasGrades(events []model.Event) bool {
	for _, e := range events {
		if e.Grade != nil {
			return true
		}
	}
	return false
}

// modes returns every key with the maximum count, ascending.
func modes(counts map[int]int) []int {
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	var result []int
	for k, n := range counts {
		if n == max && max > 0 {
			result = append(result, k)
		}
	}
	sort.Ints(result)
	return result
}
