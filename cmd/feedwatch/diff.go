package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/diff"
	"github.com/amishk599/feedwatch/internal/model"
	"github.com/amishk599/feedwatch/internal/store"
)

var (
	diffPrevious    string
	diffCurrent     string
	diffShowRemoved bool
)

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two snapshot files offline",
	Long:  "Prints the records of --current that are new or updated relative to --previous. A missing --previous file counts as an empty snapshot.",
	RunE:  runDiff,
}

func init() {
	diffCmd.Flags().StringVar(&diffPrevious, "previous", "", "older snapshot file")
	diffCmd.Flags().StringVar(&diffCurrent, "current", "", "newer snapshot file")
	diffCmd.Flags().BoolVar(&diffShowRemoved, "removed", false, "also list subjects missing from --current")
	_ = diffCmd.MarkFlagRequired("previous")
	_ = diffCmd.MarkFlagRequired("current")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	files := store.NewFileStore("", logger)

	if _, err := os.Stat(diffCurrent); err != nil {
		return fmt.Errorf("current snapshot: %w", err)
	}

	previous, err := files.Load(model.Feed{ID: "previous", SnapshotPath: diffPrevious})
	if err != nil {
		return err
	}
	current, err := files.Load(model.Feed{ID: "current", SnapshotPath: diffCurrent})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printChanges(out, diffCurrent, diff.Diff(current, previous))
	if diffShowRemoved {
		printRemoved(out, diff.Removed(current, previous))
	}
	return nil
}
