package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/scheduler"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll every feed on the configured interval",
	Long:  "Runs one pass immediately and then one per interval; blocks until SIGINT/SIGTERM.",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logConfig(logger, cfg)

	snapshots, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	httpClient := newHTTPClient(cfg)
	n := setupNotifier(cfg, httpClient, logger)
	pollers := buildPollers(cfg, snapshots, httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(pollers, n, cfg.Interval, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		return err
	}

	logger.Info("goodbye")
	return nil
}
