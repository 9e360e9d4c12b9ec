package calendar

import (
	"regexp"
	"time"

	"calplan/internal/model"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// ParseDate parses a canonical YYYY-MM-DD string into local midnight.
// The boolean is false for empty, non-canonical or impossible dates.
func ParseDate(s string) (time.Time, bool) {
	if !datePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDateTime combines a YYYY-MM-DD date and an HH:MM time of day into a
// local wall-clock instant. It never fails loudly: a false result is the
// invalid sentinel.
func ParseDateTime(date, clock string) (time.Time, bool) {
	if !datePattern.MatchString(date) || !timePattern.MatchString(clock) {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// TimeRange is the [Start, End) span of an event. When Valid is false both
// ends are zero.
type TimeRange struct {
	Start time.Time
	End   time.Time
	Valid bool
}

// EventTimeRange derives the time range of d from its date, start and end
// times. If any component is malformed the whole range is invalid.
func EventTimeRange(d model.Draft) TimeRange {
	start, ok := ParseDateTime(d.Date, d.StartTime)
	if !ok {
		return TimeRange{}
	}
	end, ok := ParseDateTime(d.Date, d.EndTime)
	if !ok {
		return TimeRange{}
	}
	return TimeRange{Start: start, End: end, Valid: true}
}
