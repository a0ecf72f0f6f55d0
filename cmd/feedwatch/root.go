package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/amishk599/feedwatch/internal/adapter"
	"github.com/amishk599/feedwatch/internal/config"
	"github.com/amishk599/feedwatch/internal/filter"
	"github.com/amishk599/feedwatch/internal/model"
	"github.com/amishk599/feedwatch/internal/notifier"
	"github.com/amishk599/feedwatch/internal/poller"
	"github.com/amishk599/feedwatch/internal/ratelimit"
	"github.com/amishk599/feedwatch/internal/retry"
	"github.com/amishk599/feedwatch/internal/store"
)

const defaultConfigPath = "feedwatch.yaml"

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "feedwatch",
	Short: "Report new and updated postings on job feeds",
	Long:  "feedwatch fetches job-posting feeds, compares them with the last snapshot and reports what is new or updated.",
	// Default to `run` so a bare `feedwatch` in a cron job or CI step does one pass.
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: FEEDWATCH_CONFIG env var or ./feedwatch.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when every feed fails")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > FEEDWATCH_CONFIG env var > "./feedwatch.yaml".
// When none of those exists the two standard feeds are built from the environment.
func loadConfig(path string) (*config.Config, error) {
	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv("FEEDWATCH_CONFIG")
	}
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.FromEnv()
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:       logLevel,
		ReplaceAttr: notifier.ReplaceLevelAttr,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.HTTP.Timeout}
}

// setupNotifier always logs the report; the summary file and Slack are added
// when configured.
func setupNotifier(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Notifier {
	sinks := []model.Notifier{notifier.NewLogNotifier(logger)}
	if path := cfg.Notification.SummaryPath; path != "" {
		logger.Debug("using summary notifier", "path", path)
		sinks = append(sinks, notifier.NewSummaryNotifier(path))
	}
	if url := cfg.Notification.SlackWebhookURL; url != "" {
		logger.Info("using slack notifier")
		sinks = append(sinks, notifier.NewSlackNotifier(url, httpClient, logger))
	}
	return notifier.NewMultiNotifier(logger, sinks...)
}

// openStore returns the configured snapshot store and a function releasing it.
func openStore(cfg *config.Config, logger *slog.Logger) (model.SnapshotStore, func(), error) {
	switch cfg.Store.Type {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if !filepath.IsAbs(path) {
			path = filepath.Join(cfg.DataDir, path)
		}
		sqlStore, err := store.NewSQLiteStore(path)
		if err != nil {
			return nil, nil, err
		}
		return sqlStore, func() { sqlStore.Close() }, nil
	default:
		return store.NewFileStore(cfg.DataDir, logger), func() {}, nil
	}
}

func setupFilter(cfg *config.Config) model.ChangeFilter {
	f := filter.NewSubjectFilter(cfg.Filters.SubjectKeywords, cfg.Filters.SubjectExcludeKeywords)
	if f.IsEmpty() {
		return nil
	}
	return f
}

// createFetcher wraps the feed adapter so every attempt waits for the host
// limiter and failed attempts are retried.
func createFetcher(feed model.Feed, cfg *config.Config, httpClient *http.Client, limiter *ratelimit.HostRateLimiter, logger *slog.Logger) model.RecordFetcher {
	var fetcher model.RecordFetcher = adapter.NewFeedAdapter(feed, httpClient)
	fetcher = ratelimit.NewRateLimitedFetcher(fetcher, limiter, feed.URL)
	return retry.NewRetryFetcher(fetcher, feed.ID, cfg.Retry.Attempts, cfg.Retry.Delay, logger)
}

func buildPollers(cfg *config.Config, snapshots model.SnapshotStore, httpClient *http.Client, logger *slog.Logger) []*poller.FeedPoller {
	limiter := ratelimit.NewHostRateLimiter(cfg.HTTP.MinHostDelay)
	changeFilter := setupFilter(cfg)

	var pollers []*poller.FeedPoller
	for _, fc := range cfg.Feeds {
		feed := fc.Feed()
		var fetcher model.RecordFetcher
		if fc.Unavailable != "" {
			logger.Warn("feed unavailable, it will fail this run", "feed", feed.ID, "reason", fc.Unavailable)
			fetcher = adapter.NewUnavailableFetcher(feed.ID, fc.Unavailable)
		} else {
			fetcher = createFetcher(feed, cfg, httpClient, limiter, logger)
		}
		pollers = append(pollers, poller.NewFeedPoller(feed, fetcher, snapshots, changeFilter, logger))
		logger.Debug("registered feed", "feed", feed.ID, "url", feed.URL)
	}
	return pollers
}

func logConfig(logger *slog.Logger, cfg *config.Config) {
	logger.Info("config loaded",
		"feeds", len(cfg.Feeds),
		"store", cfg.Store.Type,
		"data_dir", cfg.DataDir,
		"retry_attempts", cfg.Retry.Attempts,
		"retry_delay", cfg.Retry.Delay.String(),
		"subject_keywords", len(cfg.Filters.SubjectKeywords),
	)
}
