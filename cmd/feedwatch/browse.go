package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/browse"
	"github.com/amishk599/feedwatch/internal/config"
	"github.com/amishk599/feedwatch/internal/model"
	"github.com/amishk599/feedwatch/internal/ratelimit"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a feed's pending changes interactively (TUI)",
	Long:  "Shows the feed picker, fetches the chosen feed live and displays its pending changes next to the stored snapshot. Nothing is saved.",
	RunE:  runBrowseCmd,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Any log output while the TUI owns the terminal corrupts the display.
	silent := discardLogger()
	snapshots, closeStore, err := openStore(cfg, silent)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	runBrowse(cfg, snapshots)
	return nil
}

func runBrowse(cfg *config.Config, snapshots model.SnapshotStore) {
	silent := discardLogger()
	httpClient := newHTTPClient(cfg)
	limiter := ratelimit.NewHostRateLimiter(cfg.HTTP.MinHostDelay)

	feeds := make([]model.Feed, 0, len(cfg.Feeds))
	for _, fc := range cfg.Feeds {
		if fc.Unavailable != "" {
			continue
		}
		feeds = append(feeds, fc.Feed())
	}

	// Enough for every retry attempt to hit the client timeout.
	attempts := time.Duration(cfg.Retry.Attempts)
	fetchBudget := cfg.HTTP.Timeout*attempts + cfg.Retry.Delay*(attempts-1)

	for {
		choice, err := browse.RunFeedPicker(feeds)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return
		}
		if choice < 0 {
			return
		}
		feed := feeds[choice]

		fetcher := createFetcher(feed, cfg, httpClient, limiter, silent)
		current, err := browse.RunLoader(feed.Title(), fetchBudget, fetcher.FetchRecords)
		if errors.Is(err, browse.ErrCancelled) {
			continue
		}
		if err != nil {
			fmt.Printf("Error fetching %s: %v\n", feed.ID, err)
			continue
		}

		previous, err := snapshots.Load(feed)
		if err != nil {
			fmt.Printf("Stored snapshot unreadable, showing every record as new: %v\n", err)
			previous = nil
		}

		wantQuit, err := browse.RunDiffTUI(feed, current, previous)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return
		}
		// else: loop → back to picker
	}
}
