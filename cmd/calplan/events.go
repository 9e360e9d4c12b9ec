package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"calplan/internal/calendar"
	"calplan/internal/holiday"
	"calplan/internal/model"
	"calplan/internal/planner"
	"calplan/internal/search"
)

func newListCmd(a *app) *cobra.Command {
	var view, date, term string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events in the week or month around a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if view == "" {
				view = a.cfg.DefaultView
			}
			mode, err := model.ParseViewMode(view)
			if err != nil {
				return fmt.Errorf("--view %q: %w", view, err)
			}
			ref, err := dateFlag(date)
			if err != nil {
				return err
			}

			q := search.Query{Term: term, Date: ref, View: mode}
			events, err := a.planner.Filter(cmd.Context(), q)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, q.Label())
			printEvents(out, events)
			return nil
		},
	}
	cmd.Flags().StringVar(&view, "view", "", "week or month (default from config)")
	cmd.Flags().StringVar(&date, "date", "", "Reference date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&term, "search", "", "Only events whose title, description or location contains this text")
	return cmd
}

func newMonthCmd(a *app) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Print a month grid with holidays and event counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := dateFlag(date)
			if err != nil {
				return err
			}
			events, err := a.planner.List(cmd.Context())
			if err != nil {
				return err
			}
			printMonth(cmd.OutOrStdout(), ref, search.FilterByView(events, ref, model.ViewMonth))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any date in the month YYYY-MM-DD (default today)")
	return cmd
}

// draftFlags binds one flag per editable event field.
type draftFlags struct {
	d       model.Draft
	confirm bool
}

func (f *draftFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.d.Title, "title", "", "Event title")
	fs.StringVar(&f.d.Date, "date", "", "Date YYYY-MM-DD")
	fs.StringVar(&f.d.StartTime, "start", "", "Start time HH:MM")
	fs.StringVar(&f.d.EndTime, "end", "", "End time HH:MM")
	fs.StringVar(&f.d.Description, "description", "", "Description")
	fs.StringVar(&f.d.Location, "location", "", "Location")
	fs.StringVar(&f.d.Category, "category", "", "Category (업무, 개인, 가족, 기타)")
	fs.StringVar((*string)(&f.d.Repeat.Type), "repeat", string(model.RepeatNone), "none, daily, weekly, monthly or yearly")
	fs.IntVar(&f.d.Repeat.Interval, "interval", 1, "Repeat every N units")
	fs.StringVar(&f.d.Repeat.EndDate, "repeat-end", "", "Last repeat date YYYY-MM-DD")
	fs.IntVar(&f.d.NotificationTime, "notify", 10, "Minutes before start to raise a notification")
	fs.BoolVar(&f.confirm, "confirm", false, "Save even if the event overlaps others")
}

// overlay copies the flags the user actually set onto base.
func (f *draftFlags) overlay(cmd *cobra.Command, base model.Draft) model.Draft {
	set := func(name string) bool { return cmd.Flags().Changed(name) }
	if set("title") {
		base.Title = f.d.Title
	}
	if set("date") {
		base.Date = f.d.Date
	}
	if set("start") {
		base.StartTime = f.d.StartTime
	}
	if set("end") {
		base.EndTime = f.d.EndTime
	}
	if set("description") {
		base.Description = f.d.Description
	}
	if set("location") {
		base.Location = f.d.Location
	}
	if set("category") {
		base.Category = f.d.Category
	}
	if set("repeat") {
		base.Repeat.Type = f.d.Repeat.Type
	}
	if set("interval") {
		base.Repeat.Interval = f.d.Repeat.Interval
	}
	if set("repeat-end") {
		base.Repeat.EndDate = f.d.Repeat.EndDate
	}
	if set("notify") {
		base.NotificationTime = f.d.NotificationTime
	}
	return base
}

func newAddCmd(a *app) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d := f.d
			d.Repeat.Normalize()
			ev, err := a.planner.Create(cmd.Context(), d, planner.Options{Confirm: f.confirm})
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", ev.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var f draftFlags

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of an existing event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cur, err := a.planner.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			d := f.overlay(cmd, cur.Draft)
			d.Repeat.Normalize()
			ev, err := a.planner.Update(cmd.Context(), cur.ID, d, planner.Options{Confirm: f.confirm})
			if err != nil {
				return explain(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %s\n", ev.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.planner.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}

// explain prints the overlapping events of a ConflictError before
// returning it.
func explain(w io.Writer, err error) error {
	var conflict *planner.ConflictError
	if errors.As(err, &conflict) {
		fmt.Fprintln(w, "일정 겹침 경고")
		printEvents(w, conflict.Events)
		fmt.Fprintln(w, "--confirm 으로 그대로 저장할 수 있습니다.")
	}
	return err
}

// dateFlag parses an optional YYYY-MM-DD flag, defaulting to today.
func dateFlag(v string) (time.Time, error) {
	if v == "" {
		return calendar.StartOfDay(time.Now()), nil
	}
	t, ok := calendar.ParseDate(v)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", v)
	}
	return t, nil
}

func printEvents(w io.Writer, events []model.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "  (일정 없음)")
		return
	}
	for _, ev := range events {
		line := fmt.Sprintf("  %s %s-%s  %s", ev.Date, ev.StartTime, ev.EndTime, ev.Title)
		if ev.Category != "" {
			line += " [" + ev.Category + "]"
		}
		if ev.Location != "" {
			line += " @" + ev.Location
		}
		if ev.Repeat.Type != model.RepeatNone && ev.Repeat.Type != "" {
			line += fmt.Sprintf(" (%d%s마다 반복)", ev.Repeat.Interval, ev.Repeat.Type.Unit())
		}
		if label := model.NotificationLabel(ev.NotificationTime); label != "" {
			line += " 알림: " + label
		} else {
			line += fmt.Sprintf(" 알림: %d분 전", ev.NotificationTime)
		}
		fmt.Fprintf(w, "%s  #%s\n", line, ev.ID)
	}
}

// printMonth renders the grid. A trailing * marks a holiday and a +N the
// number of events that day.
func printMonth(w io.Writer, ref time.Time, events []model.Event) {
	holidays := holiday.ForMonth(ref)

	fmt.Fprintln(w, calendar.FormatMonthLabel(ref))
	fmt.Fprintln(w, "  일     월     화     수     목     금     토")
	for _, week := range calendar.MonthGrid(ref) {
		var b strings.Builder
		for _, day := range week {
			if day == 0 {
				b.WriteString("       ")
				continue
			}
			mark := " "
			if holidays[calendar.FormatDateWithDay(ref, day)] != "" {
				mark = "*"
			}
			count := ""
			if n := len(calendar.EventsOnDay(events, day)); n > 0 {
				count = fmt.Sprintf("+%d", n)
			}
			fmt.Fprintf(&b, "%3d%s%-3s", day, mark, count)
		}
		fmt.Fprintln(w, strings.TrimRight(b.String(), " "))
	}

	for day := 1; day <= calendar.DaysInMonth(ref.Year(), int(ref.Month())); day++ {
		key := calendar.FormatDateWithDay(ref, day)
		if name := holidays[key]; name != "" {
			fmt.Fprintf(w, "* %s %s\n", key, name)
		}
	}
}
