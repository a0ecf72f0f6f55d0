package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/amishk599/feedwatch/internal/model"
)

// Environment variables read by FromEnv.
const (
	EnvInternURL   = "INTERN_FEED_URL"
	EnvFulltimeURL = "FULLTIME_FEED_URL"
	EnvSummaryPath = "GITHUB_STEP_SUMMARY"
	EnvSlackURL    = "FEEDWATCH_SLACK_WEBHOOK_URL"
)

const slackWebhookPrefix = "https://hooks.slack.com/"

// Config is the root configuration for feedwatch.
type Config struct {
	DataDir      string        // base directory for relative snapshot paths
	Interval     time.Duration // watch mode only
	HTTP         HTTPConfig
	Retry        RetryConfig
	Store        StoreConfig
	Filters      FilterConfig
	Notification NotificationConfig
	Feeds        []FeedConfig
}

// HTTPConfig controls the shared HTTP client.
type HTTPConfig struct {
	Timeout      time.Duration // per-request timeout
	MinHostDelay time.Duration // minimum gap between requests to the same host
}

// RetryConfig controls fetch retries.
type RetryConfig struct {
	Attempts int           // total tries including the first
	Delay    time.Duration // fixed pause between tries
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	Type       string `yaml:"type"`        // "file" or "sqlite"
	SQLitePath string `yaml:"sqlite_path"` // used when type is "sqlite"
}

// FilterConfig narrows which detected changes are reported.
type FilterConfig struct {
	SubjectKeywords        []string `yaml:"subject_keywords"`
	SubjectExcludeKeywords []string `yaml:"subject_exclude_keywords"`
}

// NotificationConfig controls the report sinks. The log sink is always on.
type NotificationConfig struct {
	SummaryPath     string `yaml:"summary_path"`      // appended to when non-empty
	SlackWebhookURL string `yaml:"slack_webhook_url"` // optional
}

// FeedConfig describes a single feed to watch.
type FeedConfig struct {
	ID       string `yaml:"id"`
	Label    string `yaml:"label"`
	URL      string `yaml:"url"`
	Snapshot string `yaml:"snapshot"`

	// Unavailable is set by FromEnv when the feed's URL variable is empty.
	// Such a feed stays in the run and fails on fetch.
	Unavailable string `yaml:"-"`
}

// Feed converts the config entry into the model type.
func (f FeedConfig) Feed() model.Feed {
	return model.Feed{
		ID:           f.ID,
		Label:        f.Label,
		URL:          f.URL,
		SnapshotPath: f.Snapshot,
	}
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	DataDir      string             `yaml:"data_dir"`
	Interval     string             `yaml:"interval"`
	HTTP         rawHTTPConfig      `yaml:"http"`
	Retry        rawRetryConfig     `yaml:"retry"`
	Store        StoreConfig        `yaml:"store"`
	Filters      FilterConfig       `yaml:"filters"`
	Notification NotificationConfig `yaml:"notification"`
	Feeds        []FeedConfig       `yaml:"feeds"`
}

type rawHTTPConfig struct {
	Timeout      string `yaml:"timeout"`
	MinHostDelay string `yaml:"min_host_delay"`
}

type rawRetryConfig struct {
	Attempts *int   `yaml:"attempts"`
	Delay    string `yaml:"delay"`
}

// Default returns the built-in settings, without any feeds.
func Default() *Config {
	return &Config{
		DataDir:  ".",
		Interval: 30 * time.Minute,
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			MinHostDelay: time.Second,
		},
		Retry: RetryConfig{
			Attempts: 3,
			Delay:    5 * time.Second,
		},
		Store: StoreConfig{
			Type:       "file",
			SQLitePath: "feedwatch.db",
		},
	}
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	if raw.DataDir != "" {
		cfg.DataDir = raw.DataDir
	}
	if err := parseDuration("interval", raw.Interval, &cfg.Interval); err != nil {
		return nil, err
	}
	if err := parseDuration("http.timeout", raw.HTTP.Timeout, &cfg.HTTP.Timeout); err != nil {
		return nil, err
	}
	if err := parseDuration("http.min_host_delay", raw.HTTP.MinHostDelay, &cfg.HTTP.MinHostDelay); err != nil {
		return nil, err
	}
	if err := parseDuration("retry.delay", raw.Retry.Delay, &cfg.Retry.Delay); err != nil {
		return nil, err
	}
	if raw.Retry.Attempts != nil {
		cfg.Retry.Attempts = *raw.Retry.Attempts
	}
	if raw.Store.Type != "" {
		cfg.Store.Type = raw.Store.Type
	}
	if raw.Store.SQLitePath != "" {
		cfg.Store.SQLitePath = raw.Store.SQLitePath
	}
	cfg.Filters = raw.Filters
	cfg.Notification = raw.Notification
	cfg.Feeds = raw.Feeds
	applyFeedDefaults(cfg.Feeds)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the two standard feeds (intern and fulltime) from environment
// variables. It is used when no config file is present.
func FromEnv() (*Config, error) {
	cfg := Default()
	cfg.Feeds = []FeedConfig{
		envFeed("intern", "Intern", EnvInternURL),
		envFeed("fulltime", "Full-time", EnvFulltimeURL),
	}
	applyFeedDefaults(cfg.Feeds)
	cfg.Notification = NotificationConfig{
		SummaryPath:     os.Getenv(EnvSummaryPath),
		SlackWebhookURL: os.Getenv(EnvSlackURL),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config from environment (%s, %s): %w", EnvInternURL, EnvFulltimeURL, err)
	}
	return cfg, nil
}

func envFeed(id, label, env string) FeedConfig {
	f := FeedConfig{ID: id, Label: label, URL: os.Getenv(env)}
	if f.URL == "" {
		f.Unavailable = env + " is not set"
	}
	return f
}

// applyFeedDefaults fills the snapshot path as data/<id>.json when unset.
func applyFeedDefaults(feeds []FeedConfig) {
	for i := range feeds {
		if feeds[i].Snapshot == "" && feeds[i].ID != "" {
			feeds[i].Snapshot = "data/" + feeds[i].ID + ".json"
		}
	}
}

func parseDuration(field, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s %q: %w", field, raw, err)
	}
	*dst = d
	return nil
}

func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed must be configured")
	}

	seen := make(map[string]bool, len(cfg.Feeds))
	available := 0
	for i, f := range cfg.Feeds {
		if strings.TrimSpace(f.ID) == "" {
			return fmt.Errorf("feeds[%d].id is required", i)
		}
		if seen[f.ID] {
			return fmt.Errorf("feeds[%d].id %q is duplicated", i, f.ID)
		}
		seen[f.ID] = true

		if f.Unavailable != "" {
			continue
		}
		available++

		if f.URL == "" {
			return fmt.Errorf("feeds[%d] (%s): url is required", i, f.ID)
		}
		u, err := url.Parse(f.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("feeds[%d] (%s): url must be an absolute http(s) URL, got %q", i, f.ID, f.URL)
		}
		if cfg.Store.Type == "file" && f.Snapshot == "" {
			return fmt.Errorf("feeds[%d] (%s): snapshot path is required", i, f.ID)
		}
	}

	if available == 0 {
		return fmt.Errorf("no feed has a url")
	}

	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %v", cfg.HTTP.Timeout)
	}
	if cfg.HTTP.MinHostDelay < 0 {
		return fmt.Errorf("http.min_host_delay must not be negative, got %v", cfg.HTTP.MinHostDelay)
	}
	if cfg.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1, got %d", cfg.Retry.Attempts)
	}
	if cfg.Retry.Delay < 0 {
		return fmt.Errorf("retry.delay must not be negative, got %v", cfg.Retry.Delay)
	}

	switch cfg.Store.Type {
	case "file":
	case "sqlite":
		if cfg.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required when store.type is \"sqlite\"")
		}
	default:
		return fmt.Errorf("store.type must be \"file\" or \"sqlite\", got %q", cfg.Store.Type)
	}

	if w := cfg.Notification.SlackWebhookURL; w != "" && !strings.HasPrefix(w, slackWebhookPrefix) {
		return fmt.Errorf("notification.slack_webhook_url must start with %s", slackWebhookPrefix)
	}

	return nil
}
