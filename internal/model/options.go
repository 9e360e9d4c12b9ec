package model

import (
	"errors"
	"strings"
)

// ViewMode selects the visible date window.
type ViewMode string

const (
	ViewWeek  ViewMode = "week"
	ViewMonth ViewMode = "month"
)

var ErrUnknownView = errors.New("unknown view mode")

// ParseViewMode parses "week" or "month" (case-insensitive). Anything else
// yields ViewMonth together with ErrUnknownView so callers can decide
// whether to report it.
func ParseViewMode(s string) (ViewMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "week":
		return ViewWeek, nil
	case "month", "":
		return ViewMonth, nil
	}
	return ViewMonth, ErrUnknownView
}

// Categories lists the category choices offered by the event form.
var Categories = []string{"업무", "개인", "가족", "기타"}

// NotificationOption is a selectable "minutes before start" value.
type NotificationOption struct {
	Minutes int    `json:"value"`
	Label   string `json:"label"`
}

var NotificationOptions = []NotificationOption{
	{Minutes: 1, Label: "1분 전"},
	{Minutes: 10, Label: "10분 전"},
	{Minutes: 60, Label: "1시간 전"},
	{Minutes: 120, Label: "2시간 전"},
	{Minutes: 1440, Label: "1일 전"},
}

// NotificationLabel returns the option label for minutes, or "" when the
// value is not one of NotificationOptions.
func NotificationLabel(minutes int) string {
	for _, opt := range NotificationOptions {
		if opt.Minutes == minutes {
			return opt.Label
		}
	}
	return ""
}
