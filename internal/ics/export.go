package ics

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"calplan/internal/calendar"
	"calplan/internal/model"
	"calplan/internal/notify"
)

const productID = "-//calplan//calplan 1.0//KO"

// Export renders events as a VCALENDAR document. Times are written as
// floating local values; events with malformed times are skipped.
func Export(events []model.Event, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	for _, ev := range events {
		r := calendar.EventTimeRange(ev.Draft)
		if !r.Valid {
			continue
		}

		ve := cal.AddEvent(ev.ID)
		ve.SetDtStampTime(stamp)
		ve.SetProperty(ical.ComponentPropertyDtStart, r.Start.Format("20060102T150405"))
		ve.SetProperty(ical.ComponentPropertyDtEnd, r.End.Format("20060102T150405"))
		ve.SetSummary(ev.Title)
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Category != "" {
			ve.SetProperty(ical.ComponentPropertyCategories, ev.Category)
		}
		if rule := RRuleFromRepeat(ev.Repeat); rule != "" {
			ve.AddRrule(rule)
		}

		alarm := ve.AddAlarm()
		alarm.SetAction(ical.ActionDisplay)
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", ev.NotificationTime))
		alarm.SetProperty(ical.ComponentPropertyDescription, notify.Message(ev))
	}

	return cal.Serialize()
}
