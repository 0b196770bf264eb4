// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// ResultVersion is the current version of the analysis result format.
const ResultVersion = "1.0"

// TimeRangeNA is the sentinel used when the input holds no parseable
// timestamps.
const TimeRangeNA = "N/A"

// TimeRange is the span of event timestamps, formatted as YYYY-MM-DD, or
// "N/A"/"N/A" for empty input.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// GradeStats are descriptive statistics over graded events only.
type GradeStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// BasicStats holds the population-wide summary metrics.
type BasicStats struct {
	TotalStudents       int                   `json:"total_students"`
	TotalEvents         int                   `json:"total_events"`
	AvgEventsPerStudent float64               `json:"avg_events_per_student"`
	TimeRange           TimeRange             `json:"time_range"`
	EventDistribution   map[EventCategory]int `json:"event_distribution"`
	GradeStats          *GradeStats           `json:"grade_stats,omitempty"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over the
// aggregated student feature columns. Empty (no features) when correlation
// analysis was not possible.
type CorrelationMatrix struct {
	Features []string    `json:"features"`
	Values   [][]float64 `json:"values"`
}

// IsEmpty reports whether the matrix holds no data.
func (m CorrelationMatrix) IsEmpty() bool {
	return len(m.Features) == 0
}

// At returns the correlation between two named features, or 0 when either
// feature is unknown.
func (m CorrelationMatrix) At(a, b string) float64 {
	ai, bi := -1, -1
	for i, f := range m.Features {
		if f == a {
			ai = i
		}
		if f == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 {
		return 0
	}
	return m.Values[ai][bi]
}

// TimePatterns holds the temporal activity distributions.
type TimePatterns struct {
	HourlyDistribution [24]int                   `json:"hourly_distribution"`
	DailyDistribution  [7]int                    `json:"daily_distribution"` // 0=Monday
	EventByHour        map[EventCategory][24]int `json:"event_by_hour,omitempty"`
}

// LearningPatterns describes the behavior of the successful-student cohort.
type LearningPatterns struct {
	ActivityFrequency float64                   `json:"activity_frequency"`
	EventDistribution map[EventCategory]float64 `json:"event_distribution"`
	PreferredHours    []int                     `json:"preferred_hours"`
	PreferredDays     []int                     `json:"preferred_days"`
	AvgDuration       float64                   `json:"avg_duration"`
}

// AnalysisResult is the persisted hand-off document between the analysis
// phase and the visualization phase. It is written once per run and may be
// read back by a later, independent visualize-only invocation.
type AnalysisResult struct {
	Version           string              `json:"version"`
	RunID             string              `json:"run_id"`
	BasicStats        BasicStats          `json:"basic_stats"`
	CorrelationMatrix CorrelationMatrix   `json:"correlation_matrix"`
	Clusters          []ClusterAssignment `json:"clusters"`
	TimePatterns      TimePatterns        `json:"time_patterns"`
	LearningPatterns  *LearningPatterns   `json:"learning_patterns,omitempty"`
	Timestamp         time.Time           `json:"timestamp"`
}
