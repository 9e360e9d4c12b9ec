package model

// RepeatType is the recurrence kind stored on an event. It is metadata
// only; nothing in calplan expands it into concrete occurrences.
type RepeatType string

const (
	RepeatNone    RepeatType = "none"
	RepeatDaily   RepeatType = "daily"
	RepeatWeekly  RepeatType = "weekly"
	RepeatMonthly RepeatType = "monthly"
	RepeatYearly  RepeatType = "yearly"
)

// Valid reports whether r is one of the known repeat kinds.
func (r RepeatType) Valid() bool {
	switch r {
	case RepeatNone, RepeatDaily, RepeatWeekly, RepeatMonthly, RepeatYearly:
		return true
	}
	return false
}

// Unit returns the Korean unit used in "반복: N<unit>마다" labels.
func (r RepeatType) Unit() string {
	switch r {
	case RepeatDaily:
		return "일"
	case RepeatWeekly:
		return "주"
	case RepeatMonthly:
		return "월"
	case RepeatYearly:
		return "년"
	}
	return ""
}

// Repeat describes how an event repeats.
type Repeat struct {
	Type     RepeatType `json:"type" yaml:"type"`
	Interval int        `json:"interval" yaml:"interval"`
	// EndDate is an optional YYYY-MM-DD string.
	EndDate string `json:"endDate,omitempty" yaml:"end_date,omitempty"`
}

// Normalize fills in defaults for partially specified descriptors.
func (r *Repeat) Normalize() {
	if r.Type == "" {
		r.Type = RepeatNone
	}
	if r.Interval <= 0 {
		r.Interval = 1
	}
}

// Draft is an event that has not been persisted yet and therefore has no ID.
type Draft struct {
	Title       string `json:"title"`
	Date        string `json:"date"`      // YYYY-MM-DD
	StartTime   string `json:"startTime"` // HH:MM
	EndTime     string `json:"endTime"`   // HH:MM
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Repeat      Repeat `json:"repeat"`

	// NotificationTime is the number of minutes before StartTime at which an
	// alert fires. Zero means "at start time".
	NotificationTime int `json:"notificationTime"`
}

// Save promotes the draft to a stored event with the given ID.
func (d Draft) Save(id string) Event {
	return Event{ID: id, Draft: d}
}

// Event is a stored event. It is replaced wholesale on edit.
//
// The embedded Draft is flattened by encoding/json, so the wire shape is
// {"id": ..., "title": ..., "date": ..., ...}.
type Event struct {
	ID string `json:"id"`
	Draft
}

// Notification is an alert raised for an event during a polling session.
type Notification struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}
