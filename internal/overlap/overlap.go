// Package overlap detects scheduling conflicts between events.
package overlap

import (
	"calplan/internal/calendar"
	"calplan/internal/model"
)

// RangesOverlap reports whether a and b share a non-empty interval. Ranges
// are half-open, so touching endpoints do not overlap; an invalid range
// overlaps nothing.
func RangesOverlap(a, b calendar.TimeRange) bool {
	if !a.Valid || !b.Valid {
		return false
	}
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// IsOverlapping reports whether the time ranges of a and b overlap.
func IsOverlapping(a, b model.Draft) bool {
	return RangesOverlap(calendar.EventTimeRange(a), calendar.EventTimeRange(b))
}

// FindForDraft returns the existing events that overlap a not-yet-saved
// draft, in their original order.
func FindForDraft(d model.Draft, existing []model.Event) []model.Event {
	return find(calendar.EventTimeRange(d), "", existing)
}

// FindForEvent returns the existing events that overlap e, excluding e
// itself so an edit never conflicts with its previous version.
func FindForEvent(e model.Event, existing []model.Event) []model.Event {
	return find(calendar.EventTimeRange(e.Draft), e.ID, existing)
}

func find(r calendar.TimeRange, skipID string, existing []model.Event) []model.Event {
	if !r.Valid {
		return nil
	}
	var out []model.Event
	for _, ev := range existing {
		if skipID != "" && ev.ID == skipID {
			continue
		}
		if RangesOverlap(r, calendar.EventTimeRange(ev.Draft)) {
			out = append(out, ev)
		}
	}
	return out
}
