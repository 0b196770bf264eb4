// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// StudentFeatures is one aggregated row per student: the raw material for
// correlation analysis and clustering. CategoryCounts always contains every
// category key, zero-filled, so downstream code never deals with missing
// columns.
type StudentFeatures struct {
	StudentID   string                    `json:"student_id"`
	EventCount  float64                   `json:"event_count"`
	GradeMean   float64                   `json:"grade_mean"`
	GradeMax    float64                   `json:"grade_max"`
	GradeMin    float64                   `json:"grade_min"`
	GradeStd    float64                   `json:"grade_std"`
	GradedCount int                       `json:"graded_count"`
	Counts      map[EventCategory]float64 `json:"category_counts"`
	ActiveDays  float64                   `json:"activity_days"`
}

// FeatureNames lists the numeric feature columns in the fixed order used by
// Vector. The identifier is deliberately excluded.
func FeatureNames() []string {
	names := []string{"event_count", "grade_mean", "grade_max", "grade_min", "grade_std"}
	for _, c := range AllCategories() {
		names = append(names, "event_"+c.String())
	}
	return append(names, "activity_days")
}

// Vector returns the numeric feature columns in the order of FeatureNames.
func (f StudentFeatures) Vector() []float64 {
	v := []float64{f.EventCount, f.GradeMean, f.GradeMax, f.GradeMin, f.GradeStd}
	for _, c := range AllCategories() {
		v = append(v, f.Counts[c])
	}
	return append(v, f.ActiveDays)
}

// ClusterAssignment maps a student to the K-Means cluster they fell into.
type ClusterAssignment struct {
	StudentID string `json:"student_id"`
	Cluster   int    `json:"cluster"`
}
