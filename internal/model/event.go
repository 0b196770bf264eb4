// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core data types shared across the analysis
// pipeline: ingested events, per-student feature vectors, and the persisted
// analysis result document.
package model

import "time"

// EventCategory is the fixed set of categories an event can be assigned to.
// Events are matched against configured keyword lists in priority order;
// CategoryOther is the fallback when nothing matches.
type EventCategory string

const (
	CategoryLogin      EventCategory = "login"
	CategoryContent    EventCategory = "content_interaction"
	CategoryAssessment EventCategory = "assessment"
	CategorySocial     EventCategory = "social"
	CategoryMilestone  EventCategory = "milestone"
	CategoryOther      EventCategory = "other"
)

// AllCategories returns every event category in priority order.
func AllCategories() []EventCategory {
	return []EventCategory{
		CategoryLogin,
		CategoryContent,
		CategoryAssessment,
		CategorySocial,
		CategoryMilestone,
		CategoryOther,
	}
}

// String returns the category name as used in JSON artifacts and reports.
func (c EventCategory) String() string {
	return string(c)
}

// DurationClass buckets an activity duration into one of five ordered
// classes. DurationUnknown is used when no duration was recorded.
type DurationClass string

const (
	DurationUnknown   DurationClass = "unknown"
	DurationVeryShort DurationClass = "very_short"
	DurationShort     DurationClass = "short"
	DurationMedium    DurationClass = "medium"
	DurationLong      DurationClass = "long"
	DurationVeryLong  DurationClass = "very_long"
)

// Duration class boundaries in minutes.
const (
	durationVeryShortMax = 5
	durationShortMax     = 30
	durationMediumMax    = 60
	durationLongMax      = 120
)

// ClassifyDuration maps a duration in minutes to its DurationClass.
// Zero or negative durations mean "not recorded" and map to DurationUnknown.
func ClassifyDuration(minutes float64) DurationClass {
	switch {
	case minutes <= 0:
		return DurationUnknown
	case minutes <= durationVeryShortMax:
		return DurationVeryShort
	case minutes <= durationShortMax:
		return DurationShort
	case minutes <= durationMediumMax:
		return DurationMedium
	case minutes <= durationLongMax:
		return DurationLong
	default:
		return DurationVeryLong
	}
}

// Event is one student action from an LMS log, together with the features
// derived by the parser. Grade is nil when the row carried no grade (or an
// unparseable one); a recorded grade of zero stays distinct from "ungraded".
type Event struct {
	StudentID string    `json:"student_id"`
	EventType string    `json:"event_type"`
	EventTime time.Time `json:"event_time"`
	Module    string    `json:"module,omitempty"`
	Course    string    `json:"course,omitempty"`
	Grade     *float64  `json:"grade,omitempty"`
	Duration  float64   `json:"activity_duration,omitempty"` // minutes, 0 when absent

	// Derived calendar features.
	Hour       int    `json:"hour"`
	DayOfWeek  int    `json:"day_of_week"` // 0=Monday .. 6=Sunday
	DayName    string `json:"day_name"`
	WeekNumber int    `json:"week_number"`
	Month      int    `json:"month"`
	Date       string `json:"date"` // YYYY-MM-DD

	// Derived activity features.
	Category      EventCategory `json:"event_category"`
	IsAssessment  bool          `json:"is_assessment"`
	IsSocial      bool          `json:"is_social"`
	IsContent     bool          `json:"is_content"`
	DurationClass DurationClass `json:"activity_category"`
}

// GradeValue returns the recorded grade and whether the event counts as a
// graded event. Grades at or below zero mean "no assessment took place".
func (e Event) GradeValue() (float64, bool) {
	if e.Grade == nil || *e.Grade <= 0 {
		return 0, false
	}
	return *e.Grade, true
}

// IsWeekend reports whether the event happened on Saturday or Sunday.
func (e Event) IsWeekend() bool {
	return e.DayOfWeek >= 5
}
