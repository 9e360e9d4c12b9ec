// Package search narrows an event collection to the visible window and a
// free-text query.
package search

import (
	"strings"
	"time"

	"calplan/internal/calendar"
	"calplan/internal/model"
)

// FilterBySearchTerm keeps events whose title, description or location
// contains term, ignoring case. An empty term keeps everything.
func FilterBySearchTerm(events []model.Event, term string) []model.Event {
	if term == "" {
		return events
	}
	needle := strings.ToLower(term)

	out := make([]model.Event, 0, len(events))
	for _, ev := range events {
		if matches(ev, needle) {
			out = append(out, ev)
		}
	}
	return out
}

func matches(ev model.Event, needle string) bool {
	for _, field := range []string{ev.Title, ev.Description, ev.Location} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// FilterByView keeps events inside the week or month containing ref.
// Events with malformed dates are dropped.
func FilterByView(events []model.Event, ref time.Time, view model.ViewMode) []model.Event {
	out := make([]model.Event, 0, len(events))

	switch view {
	case model.ViewWeek:
		week := calendar.WeekDates(ref)
		for _, ev := range events {
			d, ok := calendar.ParseDate(ev.Date)
			if ok && calendar.IsWithinRange(d, week[0], week[6]) {
				out = append(out, ev)
			}
		}
	case model.ViewMonth:
		for _, ev := range events {
			d, ok := calendar.ParseDate(ev.Date)
			if ok && d.Year() == ref.Year() && d.Month() == ref.Month() {
				out = append(out, ev)
			}
		}
	default:
		return events
	}
	return out
}

// FilteredEvents applies the view filter and then the search term, so a
// search only ever narrows the visible window. Input order is preserved.
func FilteredEvents(events []model.Event, term string, ref time.Time, view model.ViewMode) []model.Event {
	return FilterBySearchTerm(FilterByView(events, ref, view), term)
}

// Query bundles the view state that drives the visible event list.
type Query struct {
	Term string
	Date time.Time
	View model.ViewMode
}

// Apply runs FilteredEvents with q's parameters.
func (q Query) Apply(events []model.Event) []model.Event {
	return FilteredEvents(events, q.Term, q.Date, q.View)
}

// Label returns the heading for q's window: a week label in week view, a
// month label otherwise.
func (q Query) Label() string {
	if q.View == model.ViewWeek {
		return calendar.FormatWeekLabel(q.Date)
	}
	return calendar.FormatMonthLabel(q.Date)
}
