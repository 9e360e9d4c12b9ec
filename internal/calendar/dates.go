package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"calplan/internal/model"
)

// DaysInMonth returns the number of days in the given 1-indexed month.
//
// Months outside 1..12 roll over the same way time.Date normalizes them:
// month 22 of 2024 is October 2025 (31 days), month 0 is the previous
// December.
func DaysInMonth(year, month int) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.Local).Day()
}

// StartOfDay returns 00:00 of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// WeekDates returns the Sunday..Saturday week containing anchor, each at
// midnight. The result crosses month and year boundaries as needed.
func WeekDates(anchor time.Time) [7]time.Time {
	day := StartOfDay(anchor)
	sunday := day.AddDate(0, 0, -int(day.Weekday()))

	var out [7]time.Time
	for i := range out {
		out[i] = sunday.AddDate(0, 0, i)
	}
	return out
}

// Week is one row of a month grid. Cells hold the 1-indexed day of month;
// 0 marks a cell that belongs to the previous or next month.
type Week [7]int

// MarshalJSON encodes empty cells as null.
func (w Week) MarshalJSON() ([]byte, error) {
	cells := make([]*int, len(w))
	for i := range w {
		if w[i] != 0 {
			d := w[i]
			cells[i] = &d
		}
	}
	return json.Marshal(cells)
}

// MonthGrid returns the Sunday-first week rows of the month containing
// anchor.
func MonthGrid(anchor time.Time) []Week {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	lead := int(first.Weekday())
	days := DaysInMonth(anchor.Year(), int(anchor.Month()))
	rows := (lead + days + 6) / 7

	weeks := make([]Week, rows)
	for day := 1; day <= days; day++ {
		pos := lead + day - 1
		weeks[pos/7][pos%7] = day
	}
	return weeks
}

// EventsOnDay returns the events whose date falls on the given day of
// month. Days outside 1..31 yield nil; events with malformed dates never
// match.
func EventsOnDay(events []model.Event, day int) []model.Event {
	if day < 1 || day > 31 {
		return nil
	}
	var out []model.Event
	for _, ev := range events {
		d, ok := ParseDate(ev.Date)
		if ok && d.Day() == day {
			out = append(out, ev)
		}
	}
	return out
}

// FormatWeekLabel returns "<year>년 <month>월 <N>주".
//
// A Sunday-first week is assigned to the month that contains its Thursday,
// so a week straddling two months belongs to whichever holds the majority
// of its days. N counts that month's Thursdays up to and including this one.
func FormatWeekLabel(t time.Time) string {
	day := StartOfDay(t)
	thursday := day.AddDate(0, 0, int(time.Thursday)-int(day.Weekday()))

	first := time.Date(thursday.Year(), thursday.Month(), 1, 0, 0, 0, 0, thursday.Location())
	firstThursday := 1 + (int(time.Thursday)-int(first.Weekday())+7)%7
	n := (thursday.Day()-firstThursday)/7 + 1

	return fmt.Sprintf("%d년 %d월 %d주", thursday.Year(), int(thursday.Month()), n)
}

// FormatMonthLabel returns "<year>년 <month>월".
func FormatMonthLabel(t time.Time) string {
	return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month()))
}

// IsWithinRange reports whether start <= d <= end. An inverted range
// contains nothing.
func IsWithinRange(d, start, end time.Time) bool {
	if start.After(end) {
		return false
	}
	return !d.Before(start) && !d.After(end)
}

// FillZero left-pads value with zeros to size digits (default 2). Values
// wider than size are returned unchanged.
func FillZero(value, size int) string {
	if size <= 0 {
		size = 2
	}
	return fmt.Sprintf("%0*d", size, value)
}

// FormatDate returns t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return FormatDateWithDay(t, t.Day())
}

// FormatDateWithDay returns t's year and month with the given day, as
// YYYY-MM-DD. The day is not normalized against the month length.
func FormatDateWithDay(t time.Time, day int) string {
	return fmt.Sprintf("%d-%s-%s", t.Year(), FillZero(int(t.Month()), 2), FillZero(day, 2))
}
