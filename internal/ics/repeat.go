package ics

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"calplan/internal/calendar"
	"calplan/internal/model"
)

// RepeatFromRRule maps an RRULE value (without the "RRULE:" prefix) onto a
// repeat descriptor. Only FREQ, INTERVAL and UNTIL are kept; BYxxx parts
// and COUNT are dropped because occurrences are never expanded.
func RepeatFromRRule(raw string) (model.Repeat, error) {
	opt, err := rrule.StrToROption(strings.TrimPrefix(raw, "RRULE:"))
	if err != nil {
		return model.Repeat{}, err
	}

	rep := model.Repeat{Interval: opt.Interval}
	switch opt.Freq {
	case rrule.DAILY:
		rep.Type = model.RepeatDaily
	case rrule.WEEKLY:
		rep.Type = model.RepeatWeekly
	case rrule.MONTHLY:
		rep.Type = model.RepeatMonthly
	case rrule.YEARLY:
		rep.Type = model.RepeatYearly
	default:
		return model.Repeat{}, fmt.Errorf("frequency %v is not supported", opt.Freq)
	}
	if !opt.Until.IsZero() {
		// UNTIL is a UTC value; keep its calendar date as written.
		rep.EndDate = opt.Until.UTC().Format(calendar.DateLayout)
	}
	rep.Normalize()
	return rep, nil
}

// RRuleFromRepeat renders the descriptor as RRULE text, or "" for
// non-repeating events.
func RRuleFromRepeat(rep model.Repeat) string {
	rep.Normalize()

	opt := rrule.ROption{Interval: rep.Interval}
	switch rep.Type {
	case model.RepeatDaily:
		opt.Freq = rrule.DAILY
	case model.RepeatWeekly:
		opt.Freq = rrule.WEEKLY
	case model.RepeatMonthly:
		opt.Freq = rrule.MONTHLY
	case model.RepeatYearly:
		opt.Freq = rrule.YEARLY
	default:
		return ""
	}
	if end, err := time.Parse(calendar.DateLayout, rep.EndDate); err == nil {
		opt.Until = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
	}
	return opt.RRuleString()
}
