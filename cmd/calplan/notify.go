package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"calplan/internal/model"
	"calplan/internal/notify"
)

func newNotifyCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Print reminders for events that are about to start",
		Long: `notify evaluates all events once and prints a reminder for every event
whose notification window contains the current time. With --watch it keeps
polling on the configured notify_schedule and prints each reminder once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			poller := notify.NewPoller(a.planner, notify.NewSession()).
				WithSchedule(a.cfg.NotifySchedule).
				WithSink(func(n model.Notification) {
					notify.LogSink(n)
					fmt.Fprintln(out, n.Message)
				})

			if !watch {
				raised, err := poller.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				if len(raised) == 0 {
					fmt.Fprintln(out, "예정된 알림이 없습니다.")
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return poller.Start(ctx)
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep polling until interrupted")
	return cmd
}
