package search_test

import (
	"testing"
	"time"

	"calplan/internal/model"
	"calplan/internal/search"
)

func fixtures() []model.Event {
	mk := func(id, title, date string) model.Event {
		return model.Draft{
			Title:            title,
			Date:             date,
			StartTime:        "10:00",
			EndTime:          "11:00",
			Description:      "Description 1",
			Location:         "Location 1",
			Category:         "Work",
			Repeat:           model.Repeat{Type: model.RepeatWeekly, Interval: 1},
			NotificationTime: 30,
		}.Save(id)
	}
	return []model.Event{
		mk("1", "이벤트", "2024-07-02"),
		mk("2", "DANCETIME", "2024-07-05"),
		mk("3", "이벤트3", "2024-07-20"),
	}
}

func ids(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ID)
	}
	return out
}

func equalIDs(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFilteredEvents(t *testing.T) {
	events := fixtures()
	july5 := time.Date(2024, 7, 5, 0, 0, 0, 0, time.Local)
	july1 := time.Date(2024, 7, 1, 0, 0, 0, 0, time.Local)
	oct1 := time.Date(2024, 10, 1, 0, 0, 0, 0, time.Local)

	tests := []struct {
		name string
		term string
		ref  time.Time
		view model.ViewMode
		want []string
	}{
		{"no match in other month", "이벤트 2", oct1, model.ViewMonth, nil},
		{"week view", "", july5, model.ViewWeek, []string{"1", "2"}},
		{"month view", "", july5, model.ViewMonth, []string{"1", "2", "3"}},
		{"term within week", "이벤트", july5, model.ViewWeek, []string{"1"}},
		{"case insensitive", "dancetime", july5, model.ViewMonth, []string{"2"}},
		{"month boundary week", "", july1, model.ViewWeek, []string{"1", "2"}},
		{"matches location", "location 1", july5, model.ViewMonth, []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		got := ids(search.FilteredEvents(events, tt.term, tt.ref, tt.view))
		if !equalIDs(got, tt.want...) {
			t.Errorf("%s: FilteredEvents = %v, want %v", tt.name, got, tt.want)
		}
	}

	if got := search.FilteredEvents(nil, "", july5, model.ViewWeek); len(got) != 0 {
		t.Errorf("FilteredEvents(nil) = %v, want empty", got)
	}
}

func TestFilterByViewSkipsMalformedDates(t *testing.T) {
	events := append(fixtures(), model.Draft{Title: "broken", Date: "2024/07/03"}.Save("4"))
	ref := time.Date(2024, 7, 3, 0, 0, 0, 0, time.Local)

	for _, view := range []model.ViewMode{model.ViewWeek, model.ViewMonth} {
		for _, ev := range search.FilterByView(events, ref, view) {
			if ev.ID == "4" {
				t.Errorf("FilterByView(%s) kept malformed event", view)
			}
		}
	}
}

func TestFilterByViewYearBoundary(t *testing.T) {
	events := []model.Event{
		model.Draft{Title: "a", Date: "2024-12-29"}.Save("a"),
		model.Draft{Title: "b", Date: "2025-01-04"}.Save("b"),
		model.Draft{Title: "c", Date: "2025-01-05"}.Save("c"),
	}
	ref := time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local)

	got := ids(search.FilterByView(events, ref, model.ViewWeek))
	if !equalIDs(got, "a", "b") {
		t.Errorf("FilterByView(week of 2024-12-30) = %v, want [a b]", got)
	}
}

func TestQuery(t *testing.T) {
	q := search.Query{Term: "DANCE", Date: time.Date(2024, 7, 5, 0, 0, 0, 0, time.Local), View: model.ViewWeek}

	if got := ids(q.Apply(fixtures())); !equalIDs(got, "2") {
		t.Errorf("Query.Apply = %v, want [2]", got)
	}
	if got := q.Label(); got != "2024년 7월 1주" {
		t.Errorf("Query.Label(week) = %q", got)
	}
	q.View = model.ViewMonth
	if got := q.Label(); got != "2024년 7월" {
		t.Errorf("Query.Label(month) = %q", got)
	}
}
