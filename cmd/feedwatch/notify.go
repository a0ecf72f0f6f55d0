package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Check the report sinks",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a sample change report",
	Long:  "Builds a one-posting report and delivers it to the log, the step summary file and Slack, whichever are configured. Snapshots are not touched.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	sinks := setupNotifier(cfg, newHTTPClient(cfg), logger)
	if err := notifier.SendTestMessage(cmd.Context(), sinks); err != nil {
		return fmt.Errorf("sample report: %w", err)
	}
	logger.Info("sample report delivered",
		"summary_file", cfg.Notification.SummaryPath != "",
		"slack", cfg.Notification.SlackWebhookURL != "",
	)
	return nil
}
