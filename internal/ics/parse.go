package ics

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"calplan/internal/calendar"
	appLog "calplan/internal/log"
	"calplan/internal/model"
)

// DefaultNotificationMinutes is used for VEVENTs without a VALARM.
const DefaultNotificationMinutes = 10

// Parse converts an ICS payload into stored-event records keyed by UID.
//
// Start and end are read as wall-clock values: a trailing Z or a TZID
// parameter is ignored rather than converted. All-day events span
// 00:00-23:59. Multi-day events are clipped to their first day. RRULE is
// mapped onto the repeat descriptor and never expanded.
func Parse(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]model.Event, 0)
	for _, ve := range cal.Events() {
		ev, perr := parseVEvent(ve)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(ve *ical.VEvent) (model.Event, error) {
	uid := propValue(ve.ComponentBase, ical.ComponentPropertyUniqueId)
	if uid == "" {
		return model.Event{}, errors.New("missing UID")
	}

	d := model.Draft{
		Title:            propValue(ve.ComponentBase, ical.ComponentPropertySummary),
		Description:      propValue(ve.ComponentBase, ical.ComponentPropertyDescription),
		Location:         propValue(ve.ComponentBase, ical.ComponentPropertyLocation),
		Category:         firstCategory(propValue(ve.ComponentBase, ical.ComponentPropertyCategories)),
		Repeat:           model.Repeat{Type: model.RepeatNone, Interval: 1},
		NotificationTime: DefaultNotificationMinutes,
	}

	start, allDay, err := parseICSTime(propValue(ve.ComponentBase, ical.ComponentPropertyDtStart))
	if err != nil {
		return model.Event{}, fmt.Errorf("uid %s: DTSTART: %w", uid, err)
	}
	d.Date = calendar.FormatDate(start)

	switch {
	case allDay:
		d.StartTime, d.EndTime = "00:00", "23:59"
	default:
		d.StartTime = start.Format(calendar.TimeLayout)
		end, _, err := parseICSTime(propValue(ve.ComponentBase, ical.ComponentPropertyDtEnd))
		if err != nil {
			// No usable DTEND: one hour, as most clients assume.
			end = start.Add(time.Hour)
		}
		if !calendar.StartOfDay(end).Equal(calendar.StartOfDay(start)) {
			d.EndTime = "23:59"
		} else {
			d.EndTime = end.Format(calendar.TimeLayout)
		}
	}

	if raw := propValue(ve.ComponentBase, ical.ComponentPropertyRrule); raw != "" {
		rep, err := RepeatFromRRule(raw)
		if err != nil {
			appLog.Warn("ics: unsupported RRULE, storing as non-repeating", "uid", uid, "rrule", raw, "reason", err)
		} else {
			d.Repeat = rep
		}
	}

	if minutes, ok := alarmMinutes(ve); ok {
		d.NotificationTime = minutes
	}

	return d.Save(uid), nil
}

func propValue(c ical.ComponentBase, p ical.ComponentProperty) string {
	if prop := c.GetProperty(p); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

func firstCategory(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}

// alarmMinutes returns the offset of the first VALARM whose TRIGGER is
// relative to the event start.
func alarmMinutes(ve *ical.VEvent) (int, bool) {
	for _, comp := range ve.Components {
		alarm, ok := comp.(*ical.VAlarm)
		if !ok {
			continue
		}
		if m, ok := parseTrigger(propValue(alarm.ComponentBase, ical.ComponentPropertyTrigger)); ok {
			return m, true
		}
	}
	return 0, false
}

// maxTriggerMinutes bounds alarm offsets to one year.
const maxTriggerMinutes = 366 * 24 * 60

// parseTrigger reads a "before start" duration such as -PT10M, -PT1H30M
// or -P1D and returns it in minutes. Positive (after start) triggers are
// not representable and are rejected, as are offsets over a year.
func parseTrigger(v string) (int, bool) {
	if !strings.HasPrefix(v, "-P") {
		if v == "PT0M" || v == "PT0S" || v == "P0D" {
			return 0, true
		}
		return 0, false
	}
	v = v[2:]

	minutes, n := 0, 0
	inTime, seen := false, false
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
			if n > maxTriggerMinutes*60 {
				return 0, false
			}
			seen = true
			continue
		case r == 'T':
			inTime = true
		case r == 'W' && !inTime:
			minutes += n * 7 * 24 * 60
		case r == 'D' && !inTime:
			minutes += n * 24 * 60
		case r == 'H' && inTime:
			minutes += n * 60
		case r == 'M' && inTime:
			minutes += n
		case r == 'S' && inTime:
			minutes += n / 60
		default:
			return 0, false
		}
		if minutes > maxTriggerMinutes {
			return 0, false
		}
		n = 0
	}
	return minutes, seen
}

// parseICSTime parses an ICS DATE or DATE-TIME value into local wall
// clock time. The boolean reports a DATE (all-day) value.
func parseICSTime(v string) (time.Time, bool, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false, errors.New("empty time value")
	}
	v = strings.TrimSuffix(v, "Z")

	if strings.Contains(v, "T") {
		t, err := time.ParseInLocation("20060102T150405", v, time.Local)
		return t, false, err
	}
	t, err := time.ParseInLocation("20060102", v, time.Local)
	return t, true, err
}
