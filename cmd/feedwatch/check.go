package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll once, print changes, exit",
	Long:  "Dry run: fetches every feed and prints what would be reported. Snapshots are read but never written and no notification is sent.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("check mode: snapshots will not be updated")

	snapshots, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	httpClient := newHTTPClient(cfg)
	pollers := buildPollers(cfg, store.NewNopStore(snapshots), httpClient, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	for _, p := range pollers {
		changes, err := p.Poll(ctx)
		if err != nil {
			logger.Error("poll failed", "feed", p.Feed.ID, "error", err)
			continue
		}
		printChanges(out, p.Feed.Title(), changes)
	}

	logger.Info("check complete")
	return nil
}
