// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package parser ingests raw LMS event logs from CSV, cleans them, derives
// calendar and activity features, and assigns each event to a category.
package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/learnpath-go/internal/config"
	"github.com/olegiv/learnpath-go/internal/model"
)

// Required CSV columns. Optional columns: module, course, grade,
// activity_duration.
const (
	colStudentID = "student_id"
	colEventType = "event_type"
	colEventTime = "event_time"
	colModule    = "module"
	colCourse    = "course"
	colGrade     = "grade"
	colDuration  = "activity_duration"
)

// timeLayouts are tried in order when parsing event_time values.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// MissingColumnError indicates a required CSV column is absent. This is a
// structural failure and aborts the run.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column: %s", e.Column)
}

// Parser transforms raw log rows into cleaned, feature-augmented events.
type Parser struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Parser using the given configuration.
func New(cfg *config.Config, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{cfg: cfg, logger: logger}
}

// rawRow is one CSV row before cleaning.
type rawRow struct {
	studentID string
	eventType string
	eventTime string
	module    string
	course    string
	grade     string
	duration  string
}

func (r rawRow) key() string {
	return strings.Join([]string{
		r.studentID, r.eventType, r.eventTime, r.module, r.course, r.grade, r.duration,
	}, "\x1f")
}

// ParseCSV reads and processes the CSV file at path. It fails with a
// MissingColumnError when a required header column is absent; rows with an
// empty student id or unparseable timestamp are dropped and counted.
func (p *Parser) ParseCSV(path string) ([]model.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			p.logger.Warn("closing input file", "error", cerr)
		}
	}()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{colStudentID, colEventType, colEventTime} {
		if _, ok := idx[required]; !ok {
			return nil, &MissingColumnError{Column: required}
		}
	}

	field := func(record []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []rawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		rows = append(rows, rawRow{
			studentID: field(record, colStudentID),
			eventType: field(record, colEventType),
			eventTime: field(record, colEventTime),
			module:    field(record, colModule),
			course:    field(record, colCourse),
			grade:     field(record, colGrade),
			duration:  field(record, colDuration),
		})
	}

	events := p.process(rows)
	p.logger.Info("parsed event log", "file", path, "rows", len(rows), "events", len(events))
	return events, nil
}

// ParseRecords runs the same clean/extract/categorize pipeline over events
// that are already in memory. Only StudentID, EventType, EventTime, Module,
// Course, Grade and Duration are read; every derived field is recomputed.
func (p *Parser) ParseRecords(events []model.Event) []model.Event {
	rows := make([]rawRow, 0, len(events))
	for _, e := range events {
		r := rawRow{
			studentID: e.StudentID,
			eventType: e.EventType,
			module:    e.Module,
			course:    e.Course,
			duration:  strconv.FormatFloat(e.Duration, 'f', -1, 64),
		}
		if !e.EventTime.IsZero() {
			r.eventTime = e.EventTime.Format(time.RFC3339)
		}
		if e.Grade != nil {
			r.grade = strconv.FormatFloat(*e.Grade, 'f', -1, 64)
		}
		rows = append(rows, r)
	}
	return p.process(rows)
}

// process cleans raw rows and derives all event features.
func (p *Parser) process(rows []rawRow) []model.Event {
	seen := make(map[string]struct{}, len(rows))
	var dropped int
	events := make([]model.Event, 0, len(rows))

	for _, row := range rows {
		// Exact duplicates are removed before anything else.
		k := row.key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}

		if row.studentID == "" {
			dropped++
			continue
		}
		ts, ok := parseTime(row.eventTime)
		if !ok {
			dropped++
			continue
		}

		e := model.Event{
			StudentID: row.studentID,
			EventType: row.eventType,
			EventTime: ts,
			Module:    row.module,
			Course:    row.course,
		}
		if g, err := strconv.ParseFloat(row.grade, 64); err == nil && row.grade != "" {
			e.Grade = &g
		}
		if d, err := strconv.ParseFloat(row.duration, 64); err == nil && d > 0 {
			e.Duration = d
		}

		p.extractFeatures(&e)
		e.Category = p.Categorize(e.EventType)
		events = append(events, e)
	}

	if dropped > 0 {
		p.logger.Warn("dropped invalid rows", "count", dropped)
	}
	return events
}

// extractFeatures fills the derived calendar and activity-flag fields.
func (p *Parser) extractFeatures(e *model.Event) {
	t := e.EventTime
	e.Hour = t.Hour()
	e.DayOfWeek = mondayIndexed(t.Weekday())
	e.DayName = t.Weekday().String()
	_, e.WeekNumber = t.ISOWeek()
	e.Month = int(t.Month())
	e.Date = t.Format("2006-01-02")

	lower := strings.ToLower(e.EventType)
	e.IsAssessment = containsAny(lower, "assignment", "quiz", "exam")
	e.IsSocial = containsAny(lower, "forum", "comment", "reply")
	e.IsContent = containsAny(lower, "view", "download", "read")

	e.DurationClass = model.ClassifyDuration(e.Duration)
}

// Categorize assigns an event type to exactly one category. The keyword
// groups are tested in fixed priority order, so a type matching both a login
// keyword and a content keyword resolves to login.
func (p *Parser) Categorize(eventType string) model.EventCategory {
	lower := strings.ToLower(eventType)

	groups := []struct {
		keywords []string
		category model.EventCategory
	}{
		{p.cfg.Events.LoginEvents, model.CategoryLogin},
		{p.cfg.Events.ContentEvents, model.CategoryContent},
		{p.cfg.Events.AssessmentEvents, model.CategoryAssessment},
		{p.cfg.Events.SocialEvents, model.CategorySocial},
		{p.cfg.Events.ImportantEvents, model.CategoryMilestone},
	}
	for _, g := range groups {
		if containsAny(lower, g.keywords...) {
			return g.category
		}
	}
	return model.CategoryOther
}

// FilterByTimeframe keeps events whose timestamp falls in the given year
// ("2024") or year-month ("2024-01"). An unparseable timeframe is non-fatal:
// it logs a warning and returns the input unchanged.
func (p *Parser) FilterByTimeframe(events []model.Event, timeframe string) []model.Event {
	year, month, ok := parseTimeframe(timeframe)
	if !ok {
		p.logger.Warn("invalid timeframe format, using all data", "timeframe", timeframe)
		return events
	}

	filtered := make([]model.Event, 0, len(events))
	for _, e := range events {
		if e.EventTime.Year() != year {
			continue
		}
		if month != 0 && int(e.EventTime.Month()) != month {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// FilterByStudent keeps only the given student's events.
func FilterByStudent(events []model.Event, studentID string) []model.Event {
	filtered := make([]model.Event, 0)
	for _, e := range events {
		if e.StudentID == studentID {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// FilterByMinGrade drops graded events scoring below min. Ungraded events
// pass through untouched.
func FilterByMinGrade(events []model.Event, min float64) []model.Event {
	filtered := make([]model.Event, 0, len(events))
	for _, e := range events {
		if g, graded := e.GradeValue(); graded && g < min {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// parseTimeframe accepts "YYYY" or "YYYY-MM"; month is 0 for a bare year.
func parseTimeframe(s string) (year, month int, ok bool) {
	if y, m, found := strings.Cut(s, "-"); found {
		yv, err1 := strconv.Atoi(y)
		mv, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || len(y) != 4 || mv < 1 || mv > 12 {
			return 0, 0, false
		}
		return yv, mv, true
	}
	if len(s) != 4 {
		return 0, 0, false
	}
	yv, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, false
	}
	return yv, 0, true
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mondayIndexed converts Go's Sunday-first weekday to 0=Monday .. 6=Sunday.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(s, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
