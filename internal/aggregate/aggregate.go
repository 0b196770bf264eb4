// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package aggregate turns per-event rows into one feature row per student
// and provides z-score normalization across the student population.
package aggregate

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/olegiv/learnpath-go/internal/model"
)

// Aggregate groups events by student and computes the per-student feature
// row: event count, grade statistics over graded events, per-category event
// counts (every category present, zero-filled), and the distinct-active-day
// count. The result is sorted by student id so downstream steps are
// deterministic.
func Aggregate(events []model.Event) []model.StudentFeatures {
	type acc struct {
		events int
		grades []float64
		counts map[model.EventCategory]float64
		days   map[string]struct{}
	}

	byStudent := make(map[string]*acc)
	for _, e := range events {
		a := byStudent[e.StudentID]
		if a == nil {
			a = &acc{
				counts: make(map[model.EventCategory]float64),
				days:   make(map[string]struct{}),
			}
			byStudent[e.StudentID] = a
		}
		a.events++
		a.counts[e.Category]++
		a.days[e.Date] = struct{}{}
		if g, graded := e.GradeValue(); graded {
			a.grades = append(a.grades, g)
		}
	}

	features := make([]model.StudentFeatures, 0, len(byStudent))
	for id, a := range byStudent {
		f := model.StudentFeatures{
			StudentID:   id,
			EventCount:  float64(a.events),
			GradedCount: len(a.grades),
			Counts:      make(map[model.EventCategory]float64, len(model.AllCategories())),
			ActiveDays:  float64(len(a.days)),
		}
		for _, c := range model.AllCategories() {
			f.Counts[c] = a.counts[c]
		}
		if len(a.grades) > 0 {
			f.GradeMean = stat.Mean(a.grades, nil)
			f.GradeMin, f.GradeMax = minMax(a.grades)
			if len(a.grades) > 1 {
				f.GradeStd = stat.StdDev(a.grades, nil)
			}
		}
		features = append(features, f)
	}

	sort.Slice(features, func(i, j int) bool {
		return features[i].StudentID < features[j].StudentID
	})
	return features
}

// Scaler holds z-score parameters fitted on one student population. The
// parameters are fitted fresh per run and passed explicitly to whoever needs
// the same scale; nothing is cached between calls.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes per-column mean and standard deviation over the
// population. Columns with zero variance get a standard deviation of 1 so
// Transform maps them to zero instead of dividing by zero.
func FitScaler(features []model.StudentFeatures) *Scaler {
	n := len(model.FeatureNames())
	s := &Scaler{
		Means: make([]float64, n),
		Stds:  make([]float64, n),
	}
	if len(features) == 0 {
		for i := range s.Stds {
			s.Stds[i] = 1
		}
		return s
	}

	columns := make([][]float64, n)
	for _, f := range features {
		for i, v := range f.Vector() {
			columns[i] = append(columns[i], v)
		}
	}
	for i, col := range columns {
		s.Means[i] = stat.Mean(col, nil)
		if len(col) > 1 {
			s.Stds[i] = stat.StdDev(col, nil)
		}
		if s.Stds[i] == 0 {
			s.Stds[i] = 1
		}
	}
	return s
}

// Transform returns the feature vectors normalized to zero mean and unit
// variance, row-aligned with the input slice.
func (s *Scaler) Transform(features []model.StudentFeatures) [][]float64 {
	rows := make([][]float64, len(features))
	for i, f := range features {
		v := f.Vector()
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = (x - s.Means[j]) / s.Stds[j]
		}
		rows[i] = row
	}
	return rows
}

func minMax(values []float64) (min, max float64) {
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
