// Package notify decides which events have reached their "N minutes
// before start" alert threshold.
//
// UpcomingEvents and Message are pure. Session holds the per-run state
// (already-notified ids and the displayed alert list) and Poller drives a
// Session on a fixed schedule.
package notify

import (
	"fmt"
	"sort"
	"time"

	"calplan/internal/calendar"
	"calplan/internal/model"
)

// IDSet is a set of event ids that have already fired.
type IDSet map[string]struct{}

// NewIDSet builds a set from ids.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has is safe to call on a nil set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id string) {
	s[id] = struct{}{}
}

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the members in sorted order.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// IsDue reports whether now lies in [start - NotificationTime, start].
// Events with malformed times are never due.
func IsDue(d model.Draft, now time.Time) bool {
	r := calendar.EventTimeRange(d)
	if !r.Valid {
		return false
	}
	threshold := r.Start.Add(-time.Duration(d.NotificationTime) * time.Minute)
	return !now.Before(threshold) && !now.After(r.Start)
}

// UpcomingEvents returns the events that are due at now and whose id is not
// in notified, in input order. It has no side effects.
func UpcomingEvents(events []model.Event, now time.Time, notified IDSet) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if notified.Has(ev.ID) {
			continue
		}
		if IsDue(ev.Draft, now) {
			out = append(out, ev)
		}
	}
	return out
}

// Message formats the alert text for ev.
func Message(ev model.Event) string {
	return fmt.Sprintf("%d분 후 %s 일정이 시작됩니다.", ev.NotificationTime, ev.Title)
}
