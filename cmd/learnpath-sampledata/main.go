// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command learnpath-sampledata generates synthetic LMS event logs for
// trying out the analyzer without a real export.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	courses    = []string{"course_101", "course_102", "course_201"}
	modules    = []string{"module_1", "module_2", "module_3", "module_4", "module_5"}
	eventTypes = []string{
		"login", "logout", "content_view", "content_download",
		"assignment_submit", "quiz_attempt", "exam_start",
		"forum_post", "forum_reply", "forum_view",
		"message_send", "resource_access",
	}
)

type record struct {
	studentID string
	eventType string
	eventTime time.Time
	module    string
	course    string
	grade     string
	duration  float64
}

func main() {
	students := flag.Int("students", 100, "Number of students to generate")
	days := flag.Int("days", 90, "Activity window in days")
	output := flag.String("o", filepath.Join("data", "sample_large_log.csv"), "Output CSV file path")
	seed := flag.Int64("seed", time.Now().UnixNano(), "Random seed")
	flag.Parse()

	if err := run(*students, *days, *output, *seed); err != nil {
		slog.Error("sample data generation failed", "error", err)
		os.Exit(1)
	}
}

func run(numStudents, days int, output string, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	var records []record
	for i := 0; i < numStudents; i++ {
		studentID := fmt.Sprintf("student_%04d", 1001+i)
		for j := 0; j < poisson(rng, 40); j++ {
			records = append(records, randomRecord(rng, studentID, start, days))
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].eventTime.Before(records[j].eventTime)
	})

	if err := writeCSV(records, output); err != nil {
		return err
	}

	slog.Info("sample data generated",
		"records", len(records), "students", numStudents, "days", days, "path", output)
	return nil
}

func randomRecord(rng *rand.Rand, studentID string, start time.Time, days int) record {
	eventType := eventTypes[rng.Intn(len(eventTypes))]
	offset := time.Duration(rng.Intn(days))*24*time.Hour +
		time.Duration(8+rng.Intn(12))*time.Hour +
		time.Duration(rng.Intn(60))*time.Minute

	rec := record{
		studentID: studentID,
		eventType: eventType,
		eventTime: start.Add(offset),
		module:    modules[rng.Intn(len(modules))],
		course:    courses[rng.Intn(len(courses))],
	}

	// Graded events get a grade around 75 and a longer work session;
	// browsing events get short ones.
	switch {
	case strings.Contains(eventType, "assignment") || strings.Contains(eventType, "quiz"):
		grade := math.Max(0, math.Min(100, 75+rng.NormFloat64()*15))
		rec.grade = strconv.FormatFloat(math.Round(grade*10)/10, 'f', -1, 64)
		rec.duration = rng.ExpFloat64() * 60
	case strings.Contains(eventType, "forum") || strings.Contains(eventType, "content"):
		rec.duration = rng.ExpFloat64() * 20
	default:
		rec.duration = rng.ExpFloat64() * 5
	}
	rec.duration = math.Min(rec.duration, 180)
	return rec
}

func writeCSV(records []record, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"student_id", "event_type", "event_time", "module", "course", "grade", "activity_duration"}); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.studentID,
			r.eventType,
			r.eventTime.Format("2006-01-02 15:04:05"),
			r.module,
			r.course,
			r.grade,
			strconv.FormatFloat(math.Round(r.duration*10)/10, 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// poisson draws from a Poisson distribution via Knuth's method. The mean
// values used here are small enough that the multiplicative form is fine.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

