package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"calplan/internal/ics"
	appLog "calplan/internal/log"
	"calplan/internal/planner"
)

func newImportCmd(a *app) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "import <file|url>",
		Short: "Import events from an iCalendar file or URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := args[0]
			src := ics.Source{ID: filepath.Base(target), URL: target}

			var body []byte
			var err error
			if isRemote(target) {
				// The URL may carry a token; keep it out of the summary.
				src.ID = "remote"
				var res ics.FetchResult
				res, err = ics.NewFetcher(a.cfg.CacheDir, nil).Fetch(cmd.Context(), src)
				body = res.Body
			} else {
				body, err = os.ReadFile(target)
			}
			if err != nil {
				return fmt.Errorf("read %s: %w", target, err)
			}

			return a.importBody(cmd.Context(), cmd.OutOrStdout(), src, body, confirm)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Save events even if they overlap existing ones")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all events as an iCalendar file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			events, err := a.planner.List(cmd.Context())
			if err != nil {
				return err
			}
			doc := ics.Export(events, time.Now())

			if out == "" || out == "-" {
				_, err := io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0o600); err != nil {
				return err
			}
			appLog.Info("exported events", "path", out, "count", len(events))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d events to %s\n", len(events), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Output file (default stdout)")
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import every subscription listed in the config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.Subscriptions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no subscriptions configured")
				return nil
			}

			sources := make([]ics.Source, 0, len(a.cfg.Subscriptions))
			for _, sub := range a.cfg.Subscriptions {
				if sub.URL == "" {
					continue
				}
				sources = append(sources, ics.Source{ID: sub.ID, URL: sub.URL})
			}

			results, fetchErrs := ics.NewFetcher(a.cfg.CacheDir, nil).FetchAll(cmd.Context(), sources)
			errs := fetchErrs
			for _, res := range results {
				if err := a.importBody(cmd.Context(), cmd.OutOrStdout(), res.Source, res.Body, confirm); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", res.Source.ID, err))
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "Save events even if they overlap existing ones")
	return cmd
}

// importBody parses an ICS payload, upserts its events and prints a
// per-event summary.
func (a *app) importBody(ctx context.Context, w io.Writer, src ics.Source, body []byte, confirm bool) error {
	events, err := ics.Parse(src, body)
	if err != nil {
		return fmt.Errorf("parse %s: %w", src.ID, err)
	}
	results, err := a.planner.Import(ctx, events, planner.Options{Confirm: confirm})
	if err != nil {
		return err
	}

	counts := map[planner.ImportStatus]int{}
	for _, r := range results {
		counts[r.Status]++
		if r.Status == planner.ImportSaved {
			continue
		}
		fmt.Fprintf(w, "  %-10s %s %s  %s: %v\n", r.Status, r.Event.Date, r.Event.Title, r.Event.ID, r.Err)
	}
	fmt.Fprintf(w, "%s: %d saved, %d conflicted, %d invalid, %d failed\n", src.ID,
		counts[planner.ImportSaved], counts[planner.ImportConflicted],
		counts[planner.ImportInvalid], counts[planner.ImportFailed])
	return nil
}

func isRemote(target string) bool {
	return strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://")
}
