package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	appLog "calplan/internal/log"
	"calplan/internal/notify"
	"calplan/internal/web"
)

func newServeCmd(a *app) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification poller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				a.cfg.Listen = listen
			}
			appLog.Info("calplan starting", "version", version, "listen", a.cfg.Listen)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}

// serve runs the poller and the HTTP server until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := notify.NewSession()
	poller := notify.NewPoller(a.planner, session).WithSchedule(a.cfg.NotifySchedule)

	pollErr := make(chan error, 1)
	go func() {
		err := poller.Start(ctx)
		if err != nil {
			appLog.Error("notify poller failed", err, "schedule", a.cfg.NotifySchedule)
			cancel()
		}
		pollErr <- err
	}()

	err := web.StartServer(ctx, a.cfg, a.planner, session)
	cancel()
	if perr := <-pollErr; perr != nil && err == nil {
		err = perr
	}
	appLog.Info("calplan exiting")
	return err
}
