package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var feedsCmd = &cobra.Command{
	Use:   "feeds",
	Short: "List all configured feeds",
	Long:  "Reads the config and prints a table of all configured feeds and the state of their snapshots.",
	RunE:  runFeeds,
}

func init() {
	rootCmd.AddCommand(feedsCmd)
}

func runFeeds(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	snapshots, closeStore, err := openStore(cfg, discardLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open store: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %-15s %-25s %s\n", "ID", "Label", "Snapshot", "Status")
	fmt.Fprintln(out, strings.Repeat("─", 70))

	missing := 0
	for _, fc := range cfg.Feeds {
		feed := fc.Feed()
		status := ""
		records, err := snapshots.Load(feed)
		switch {
		case fc.Unavailable != "":
			status = "unavailable: " + fc.Unavailable
		case err != nil:
			status = "unreadable"
		case records == nil:
			status = "no snapshot"
			missing++
		default:
			status = fmt.Sprintf("%d records", len(records))
		}

		where := feed.SnapshotPath
		if cfg.Store.Type == "sqlite" {
			where = cfg.Store.SQLitePath
		}
		fmt.Fprintf(out, "%-12s %-15s %-25s %s\n", feed.ID, feed.Title(), where, status)
	}

	fmt.Fprintf(out, "\nTotal: %d feeds (%d without snapshot)\n", len(cfg.Feeds), missing)
	return nil
}
