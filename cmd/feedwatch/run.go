package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/scheduler"
)

var errAllFeedsFailed = errors.New("every feed failed")

var strict bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll every feed once, report changes, exit",
	Long:  "One pass: fetch each feed, diff it against its snapshot, save the new snapshot and send one report covering all feeds.",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when every feed fails")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
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

	res := scheduler.NewScheduler(pollers, n, cfg.Interval, logger).RunOnce(ctx)
	logger.Info("run complete",
		"feeds", len(pollers),
		"changed", len(res.Changes),
		"failed", len(res.Failed),
		"notified", res.Notified,
	)

	if strict && res.AllFailed() {
		return errAllFeedsFailed
	}
	return nil
}
