package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"calplan/internal/config"
	appLog "calplan/internal/log"
	"calplan/internal/planner"
	"calplan/internal/store"
)

const version = "0.1.0"

// app holds what every subcommand needs once the config is loaded.
type app struct {
	configPath string
	cfg        *config.Config
	store      *store.Store
	planner    *planner.Service
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "calplan",
		Short: "Personal calendar manager",
		Long: `calplan keeps a personal schedule in a local JSON file, warns about
overlapping events, raises reminders before events start and exchanges
events with other calendars via iCalendar.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "./calplan.yaml", "Path to config file")

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newMonthCmd(a),
		newAddCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newNotifyCmd(a),
		newImportCmd(a),
		newExportCmd(a),
		newSyncCmd(a),
	)
	return root
}

// load reads the config, applies the log level and opens the store.
func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", a.configPath)
		return err
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	st, err := store.Open(cfg.DataFile)
	if err != nil {
		appLog.Error("failed to open event store", err, "data_file", cfg.DataFile)
		return err
	}

	a.cfg = cfg
	a.store = st
	a.planner = planner.New(st)

	appLog.Debug("effective config",
		"config_path", a.configPath,
		"listen", cfg.Listen,
		"data_file", cfg.DataFile,
		"notify_schedule", cfg.NotifySchedule,
		"subscriptions", len(cfg.Subscriptions),
	)
	return nil
}
