// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
	"time"
)

func TestClassifyDuration(t *testing.T) {
	tests := []struct {
		minutes float64
		want    DurationClass
	}{
		{-1, DurationUnknown},
		{0, DurationUnknown},
		{2, DurationVeryShort},
		{5, DurationVeryShort},
		{10, DurationShort},
		{30, DurationShort},
		{45, DurationMedium},
		{60, DurationMedium},
		{90, DurationLong},
		{120, DurationLong},
		{200, DurationVeryLong},
	}
	for _, tt := range tests {
		if got := ClassifyDuration(tt.minutes); got != tt.want {
			t.Errorf("ClassifyDuration(%v) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestGradeValue(t *testing.T) {
	grade := func(v float64) *float64 { return &v }

	tests := []struct {
		name       string
		grade      *float64
		want       float64
		wantGraded bool
	}{
		{"nil grade", nil, 0, false},
		{"zero grade", grade(0), 0, false},
		{"negative grade", grade(-5), 0, false},
		{"positive grade", grade(87.5), 87.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Grade: tt.grade}
			got, graded := e.GradeValue()
			if got != tt.want || graded != tt.wantGraded {
				t.Errorf("GradeValue() = (%v, %v), want (%v, %v)", got, graded, tt.want, tt.wantGraded)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	for day := 0; day < 7; day++ {
		e := Event{DayOfWeek: day}
		want := day >= 5
		if e.IsWeekend() != want {
			t.Errorf("IsWeekend() for day %d = %v, want %v", day, e.IsWeekend(), want)
		}
	}
}

func TestAllCategoriesOrder(t *testing.T) {
	want := []EventCategory{
		CategoryLogin, CategoryContent, CategoryAssessment,
		CategorySocial, CategoryMilestone, CategoryOther,
	}
	got := AllCategories()
	if len(got) != len(want) {
		t.Fatalf("AllCategories() has %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("AllCategories()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestFeatureNamesMatchVector(t *testing.T) {
	f := StudentFeatures{
		EventCount: 10,
		GradeMean:  80,
		Counts:     map[EventCategory]float64{CategoryLogin: 3},
		ActiveDays: 4,
	}
	names := FeatureNames()
	vec := f.Vector()
	if len(names) != len(vec) {
		t.Fatalf("FeatureNames has %d entries, Vector has %d", len(names), len(vec))
	}
	if names[0] != "event_count" || vec[0] != 10 {
		t.Errorf("first column = (%q, %v), want (event_count, 10)", names[0], vec[0])
	}
	if names[len(names)-1] != "activity_days" || vec[len(vec)-1] != 4 {
		t.Errorf("last column = (%q, %v), want (activity_days, 4)", names[len(names)-1], vec[len(vec)-1])
	}
}

func TestCorrelationMatrixAt(t *testing.T) {
	m := CorrelationMatrix{
		Features: []string{"a", "b"},
		Values:   [][]float64{{1, 0.5}, {0.5, 1}},
	}
	if got := m.At("a", "b"); got != 0.5 {
		t.Errorf("At(a, b) = %v, want 0.5", got)
	}
	if got := m.At("a", "missing"); got != 0 {
		t.Errorf("At(a, missing) = %v, want 0", got)
	}
	if m.IsEmpty() {
		t.Error("IsEmpty() = true for populated matrix")
	}
	if !(CorrelationMatrix{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero matrix")
	}
}

func TestEventDerivedFieldsZeroValue(t *testing.T) {
	var e Event
	if !e.EventTime.Equal(time.Time{}) {
		t.Error("zero Event should carry zero time")
	}
	if e.Category != "" {
		t.Errorf("zero Event category = %q, want empty", e.Category)
	}
}
