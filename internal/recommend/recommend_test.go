// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package recommend

import (
	"strings"
	"testing"
	"time"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
	"github.com/olegiv/learnpath-go/internal/parser"
)

func grade(v float64) *float64 { return &v }

func buildEvents(t *testing.T, raw []model.Event) []model.Event {
	t.Helper()
	return parser.New(config.Default(), nil).ParseRecords(raw)
}

func TestPersonalizedUnknownStudent(t *testing.T) {
	e := New(config.Default(), nil)
	got := e.Personalized(nil, "ghost")
	if len(got) != 1 || got[0] != NoDataMessage {
		t.Fatalf("Personalized() = %v, want [%q]", got, NoDataMessage)
	}
}

func TestPersonalizedCapAndUniqueness(t *testing.T) {
	// A struggling student: low grades, no social events, little content,
	// night-time activity. This trips many rules at once.
	base := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	var raw []model.Event
	for i := 0; i < 5; i++ {
		raw = append(raw, model.Event{
			StudentID: "s1",
			EventType: "quiz_attempt",
			EventTime: base.AddDate(0, 0, i*7),
			Grade:     grade(30 + float64(i)),
			Duration:  10,
		})
	}
	// A successful peer so the comparison rules have a cohort.
	for i := 0; i < 30; i++ {
		raw = append(raw, model.Event{
			StudentID: "peer",
			EventType: "forum_post",
			EventTime: base.AddDate(0, 0, i),
		})
		raw = append(raw, model.Event{
			StudentID: "peer",
			EventType: "quiz_attempt",
			EventTime: base.AddDate(0, 0, i),
			Grade:     grade(90),
		})
	}
	events := buildEvents(t, raw)

	cfg := config.Default()
	e := New(cfg, nil)
	recs := e.Personalized(events, "s1")

	if len(recs) == 0 {
		t.Fatal("expected recommendations for a struggling student")
	}
	if len(recs) > cfg.Analysis.TopNRecommendations {
		t.Errorf("got %d recommendations, cap is %d", len(recs), cfg.Analysis.TopNRecommendations)
	}
	seen := make(map[string]struct{})
	for _, r := range recs {
		if _, dup := seen[r]; dup {
			t.Errorf("duplicate recommendation: %q", r)
		}
		seen[r] = struct{}{}
	}

	joined := strings.Join(recs, "\n")
	if !strings.Contains(joined, "forum discussions") {
		t.Errorf("missing social-activity advisory in:\n%s", joined)
	}
	if !strings.Contains(joined, "below threshold") {
		t.Errorf("missing low-grade advisory in:\n%s", joined)
	}
}

func TestPerformanceRuleTrend(t *testing.T) {
	e := New(config.Default(), nil)
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	improving := buildEvents(t, []model.Event{
		{StudentID: "s", EventType: "quiz", EventTime: base, Grade: grade(60)},
		{StudentID: "s", EventType: "quiz", EventTime: base.AddDate(0, 0, 1), Grade: grade(75)},
		{StudentID: "s", EventType: "quiz", EventTime: base.AddDate(0, 0, 2), Grade: grade(90)},
	})
	recs := e.performanceRules(improving)
	if !containsSubstring(recs, "improvement trend") {
		t.Errorf("improving grades: recs = %v, want improvement advisory", recs)
	}

	declining := buildEvents(t, []model.Event{
		{StudentID: "s", EventType: "quiz", EventTime: base, Grade: grade(90)},
		{StudentID: "s", EventType: "quiz", EventTime: base.AddDate(0, 0, 1), Grade: grade(75)},
		{StudentID: "s", EventType: "quiz", EventTime: base.AddDate(0, 0, 2), Grade: grade(60)},
	})
	recs = e.performanceRules(declining)
	if !containsSubstring(recs, "declining") {
		t.Errorf("declining grades: recs = %v, want decline advisory", recs)
	}
}

func TestTemporalRulesNightOwl(t *testing.T) {
	e := New(config.Default(), nil)
	base := time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC) // a Monday
	var raw []model.Event
	for i := 0; i < 6; i++ {
		raw = append(raw, model.Event{
			StudentID: "s", EventType: "content_view", EventTime: base.AddDate(0, 0, i),
		})
	}
	recs := e.temporalRules(buildEvents(t, raw))
	if !containsSubstring(recs, "daylight hours") {
		t.Errorf("night activity: recs = %v, want daylight advisory", recs)
	}
}

func TestPeerComparison(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	var raw []model.Event
	// Successful peer: one high grade qualifies (no minimum event count
	// for the peer cohort), plus lots of activity.
	raw = append(raw, model.Event{
		StudentID: "peer", EventType: "quiz", EventTime: base, Grade: grade(95),
	})
	for i := 0; i < 20; i++ {
		raw = append(raw, model.Event{
			StudentID: "peer", EventType: "forum_post", EventTime: base.AddDate(0, 0, i),
		})
	}
	// Sparse student, no social activity.
	raw = append(raw, model.Event{
		StudentID: "s", EventType: "content_view", EventTime: base,
	})
	events := buildEvents(t, raw)

	e := New(config.Default(), nil)
	var student []model.Event
	for _, ev := range events {
		if ev.StudentID == "s" {
			student = append(student, ev)
		}
	}
	recs := e.peerComparisonRules(events, student)
	if len(recs) != 1 {
		t.Fatalf("got %d peer advisories, want 1 combined", len(recs))
	}
	if !strings.Contains(recs[0], "activity frequency") || !strings.Contains(recs[0], "forum participation") {
		t.Errorf("combined advisory = %q, want both deficits named", recs[0])
	}
}

func TestGeneral(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC) // a Monday
	var raw []model.Event
	// Low weekday-only engagement with scattered grades.
	gradeValues := []float64{30, 95, 40, 90, 35}
	for i, g := range gradeValues {
		raw = append(raw, model.Event{
			StudentID: "s1", EventType: "quiz_attempt", EventTime: base.AddDate(0, 0, i), Grade: grade(g),
		})
	}
	events := buildEvents(t, raw)

	recs := New(config.Default(), nil).General(events)
	joined := strings.Join(recs, "\n")
	if !strings.Contains(joined, "at least 10 activities") {
		t.Errorf("missing engagement advisory in:\n%s", joined)
	}
	if !strings.Contains(joined, "forum participation") {
		t.Errorf("missing social advisory in:\n%s", joined)
	}
	if !strings.Contains(joined, "throughout the week") {
		t.Errorf("missing weekend advisory in:\n%s", joined)
	}
	if !strings.Contains(joined, "additional support") {
		t.Errorf("missing grade-spread advisory in:\n%s", joined)
	}
}

func TestNormalizedTrend(t *testing.T) {
	if got := normalizedTrend([]float64{50}); got != 0 {
		t.Errorf("single grade trend = %v, want 0", got)
	}
	if got := normalizedTrend([]float64{70, 70, 70}); got != 0 {
		t.Errorf("flat series trend = %v, want 0", got)
	}
	if got := normalizedTrend([]float64{50, 60, 70, 80}); got <= 0 {
		t.Errorf("rising series trend = %v, want > 0", got)
	}
}

func TestModalHour(t *testing.T) {
	if _, ok := modalHour(map[int]int{}); ok {
		t.Error("modalHour on empty counts should report no mode")
	}
	// Ties resolve to the earliest hour.
	hour, ok := modalHour(map[int]int{14: 3, 9: 3, 20: 1})
	if !ok || hour != 9 {
		t.Errorf("modalHour = (%d, %v), want (9, true)", hour, ok)
	}
}

func containsSubstring(recs []string, substr string) bool {
	for _, r := range recs {
		if strings.Contains(r, substr) {
			return true
		}
	}
	return false
}
