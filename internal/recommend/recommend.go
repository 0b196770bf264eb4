// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package recommend generates advisory strings from student behavior using a
// fixed set of heuristic threshold rules.
package recommend

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
	"github.com/olegiv/learnpath-go/internal/parser"
)

// NoDataMessage is returned when a personalized request names a student with
// no events.
const NoDataMessage = "No data available for this student"

// Engine evaluates the recommendation rules.
type Engine struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates an Engine using the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Personalized evaluates all rule groups for one student and returns the
// deduplicated advisories, truncated to the configured top-N. Rule groups
// run in a fixed order: activity volume, performance, temporal, then peer
// comparison.
func (e *Engine) Personalized(events []model.Event, studentID string) []string {
	student := parser.FilterByStudent(events, studentID)
	if len(student) == 0 {
		return []string{NoDataMessage}
	}

	var recs []string
	recs = append(recs, e.activityRules(student)...)
	recs = append(recs, e.performanceRules(student)...)
	recs = append(recs, e.temporalRules(student)...)
	recs = append(recs, e.peerComparisonRules(events, student)...)

	return truncate(dedupe(recs), e.cfg.Analysis.TopNRecommendations)
}

// General evaluates the population-wide rules over the whole event set.
func (e *Engine) General(events []model.Event) []string {
	var recs []string

	students := make(map[string]struct{})
	categoryCounts := make(map[model.EventCategory]int)
	weekendEvents := 0
	var grades []float64
	for _, ev := range events {
		students[ev.StudentID] = struct{}{}
		categoryCounts[ev.Category]++
		if ev.IsWeekend() {
			weekendEvents++
		}
		if g, graded := ev.GradeValue(); graded {
			grades = append(grades, g)
		}
	}

	if len(students) > 0 {
		avgEvents := float64(len(events)) / float64(len(students))
		if avgEvents < 10 {
			recs = append(recs, "Increase overall course engagement - aim for at least 10 activities per week")
		}
	}

	if float64(categoryCounts[model.CategorySocial]) < float64(categoryCounts[model.CategoryAssessment])*0.5 {
		recs = append(recs, "Encourage more forum participation and peer collaboration")
	}

	if len(events) > 0 && float64(weekendEvents)/float64(len(events)) < 0.1 {
		recs = append(recs, "Consider distributing learning activities more evenly throughout the week")
	}

	if len(grades) > 1 && stat.StdDev(grades, nil) > 20 {
		recs = append(recs, "Consider additional support for students with grades below 70%")
	}

	return truncate(dedupe(recs), e.cfg.Analysis.TopNRecommendations)
}

// activityRules checks event-category volumes and session durations.
func (e *Engine) activityRules(student []model.Event) []string {
	var recs []string

	social, content := 0, 0
	var totalDuration float64
	for _, ev := range student {
		switch ev.Category {
		case model.CategorySocial:
			social++
		case model.CategoryContent:
			content++
		}
		totalDuration += ev.Duration
	}

	if social < 3 {
		recs = append(recs, "Increase participation in forum discussions and peer collaboration")
	}
	if content < 5 {
		recs = append(recs, "Spend more time reviewing course materials and resources")
	}

	// Duration rules only apply when any duration was recorded at all.
	if totalDuration > 0 {
		avg := totalDuration / float64(len(student))
		if avg > 120 {
			recs = append(recs, "Break study sessions into shorter, more frequent intervals (30-60 minutes)")
		} else if avg < 30 {
			recs = append(recs, "Increase study session duration to at least 30 minutes for better retention")
		}
	}
	return recs
}

// performanceRules checks the graded-event statistics and the grade trend.
func (e *Engine) performanceRules(student []model.Event) []string {
	grades := gradeSeries(student)
	if len(grades) == 0 {
		return nil
	}

	var recs []string
	mean := stat.Mean(grades, nil)
	if mean < e.cfg.Analysis.MinGradeThreshold {
		recs = append(recs, fmt.Sprintf(
			"Seek additional help - current average grade (%.1f%%) is below threshold", mean))
	}

	if len(grades) > 3 && stat.StdDev(grades, nil) > 15 {
		recs = append(recs, "Work on consistency - grades vary significantly between assignments")
	}

	if len(grades) >= 3 {
		switch trend := normalizedTrend(grades); {
		case trend < -0.1:
			recs = append(recs, "Performance trend is declining - consider reviewing study strategies")
		case trend > 0.1:
			recs = append(recs, "Great improvement trend! Continue with current strategies")
		}
	}
	return recs
}

// temporalRules checks when the student studies: modal hour, weekend load
// and engagement regularity over the observed date span.
func (e *Engine) temporalRules(student []model.Event) []string {
	var recs []string

	hourCounts := make(map[int]int)
	weekend := 0
	days := make(map[string]struct{})
	var firstDay, lastDay time.Time
	for i, ev := range student {
		hourCounts[ev.Hour]++
		if ev.IsWeekend() {
			weekend++
		}
		days[ev.Date] = struct{}{}
		day := ev.EventTime.Truncate(24 * time.Hour)
		if i == 0 || day.Before(firstDay) {
			firstDay = day
		}
		if i == 0 || day.After(lastDay) {
			lastDay = day
		}
	}

	if hour, ok := modalHour(hourCounts); ok {
		switch {
		case hour >= 22 || hour <= 4:
			recs = append(recs, "Consider studying during daylight hours for better concentration")
		case hour >= 14 && hour <= 17:
			recs = append(recs, "Good study time detected - afternoon sessions are effective for most learners")
		}
	}

	weekendRatio := float64(weekend) / float64(len(student))
	if weekendRatio > 0.5 {
		recs = append(recs, "Balance study time more evenly throughout the week")
	} else if weekendRatio < 0.1 {
		recs = append(recs, "Consider some weekend review sessions for better retention")
	}

	spanDays := int(lastDay.Sub(firstDay).Hours()/24) + 1
	if spanDays > 7 {
		regularity := float64(len(days)) / float64(spanDays)
		if regularity < 0.5 {
			recs = append(recs, "Increase regularity - aim to engage with the course at least every other day")
		}
	}
	return recs
}

// peerComparisonRules compares the student against the successful cohort:
// students whose mean graded score meets the threshold. Deficient dimensions
// are combined into a single advisory.
func (e *Engine) peerComparisonRules(events, student []model.Event) []string {
	cohort := e.successfulStudents(events)
	if len(cohort) == 0 {
		return nil
	}

	cohortEvents, cohortSocial := 0, 0
	for _, ev := range events {
		if _, ok := cohort[ev.StudentID]; !ok {
			continue
		}
		cohortEvents++
		if ev.Category == model.CategorySocial {
			cohortSocial++
		}
	}
	meanEvents := float64(cohortEvents) / float64(len(cohort))
	meanSocial := float64(cohortSocial) / float64(len(cohort))

	studentSocial := 0
	for _, ev := range student {
		if ev.Category == model.CategorySocial {
			studentSocial++
		}
	}

	var deficits []string
	if float64(len(student)) < meanEvents*0.7 {
		deficits = append(deficits, "activity frequency")
	}
	if float64(studentSocial) < meanSocial*0.5 {
		deficits = append(deficits, "forum participation")
	}
	if len(deficits) == 0 {
		return nil
	}
	return []string{fmt.Sprintf(
		"Increase %s to match patterns of successful students", strings.Join(deficits, ", "))}
}

// successfulStudents returns the ids of students whose mean graded score
// meets the threshold. Unlike the analyzer's successful-student
// classification, the peer cohort has no minimum graded-event count.
func (e *Engine) successfulStudents(events []model.Event) map[string]struct{} {
	type sum struct {
		total float64
		count int
	}
	sums := make(map[string]*sum)
	for _, ev := range events {
		g, graded := ev.GradeValue()
		if !graded {
			continue
		}
		s := sums[ev.StudentID]
		if s == nil {
			s = &sum{}
			sums[ev.StudentID] = s
		}
		s.total += g
		s.count++
	}

	cohort := make(map[string]struct{})
	for id, s := range sums {
		if s.total/float64(s.count) >= e.cfg.Analysis.MinGradeThreshold {
			cohort[id] = struct{}{}
		}
	}
	return cohort
}

// gradeSeries returns the student's graded scores in event-time order.
func gradeSeries(student []model.Event) []float64 {
	ordered := append([]model.Event(nil), student...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].EventTime.Before(ordered[j].EventTime)
	})

	var grades []float64
	for _, ev := range ordered {
		if g, graded := ev.GradeValue(); graded {
			grades = append(grades, g)
		}
	}
	return grades
}

// normalizedTrend is the least-squares slope of the grade sequence divided
// by the population standard deviation of the grades. Zero for fewer than
// two points or a flat series.
func normalizedTrend(grades []float64) float64 {
	if len(grades) < 2 {
		return 0
	}
	std := stat.PopStdDev(grades, nil)
	if std == 0 {
		return 0
	}

	xs := make([]float64, len(grades))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, slope := stat.LinearRegression(xs, grades, nil, false)
	return slope / std
}

// modalHour returns the most frequent activity hour. With ties the earliest
// hour wins, matching a first-mode selection.
func modalHour(counts map[int]int) (int, bool) {
	best, bestCount := 0, 0
	for hour := 0; hour < 24; hour++ {
		if counts[hour] > bestCount {
			best, bestCount = hour, counts[hour]
		}
	}
	return best, bestCount > 0
}

func dedupe(recs []string) []string {
	seen := make(map[string]struct{}, len(recs))
	out := recs[:0]
	for _, r := range recs {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}

func truncate(recs []string, n int) []string {
	if len(recs) > n {
		return recs[:n]
	}
	return recs
}
