package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/feedwatch/internal/config"
	"github.com/amishk599/feedwatch/internal/scheduler"
	"github.com/amishk599/feedwatch/internal/store"
)

func TestLoadConfig_FallsBackToEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FEEDWATCH_CONFIG", "")
	t.Setenv(config.EnvInternURL, "https://jobs.example.com/intern.json")
	t.Setenv(config.EnvFulltimeURL, "https://jobs.example.com/fulltime.json")

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Feeds) != 2 || cfg.Feeds[0].ID != "intern" {
		t.Errorf("Feeds = %+v", cfg.Feeds)
	}
}

func TestLoadConfig_DotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FEEDWATCH_CONFIG", "")
	t.Setenv(config.EnvInternURL, "https://env.example.com/intern.json")
	t.Setenv(config.EnvFulltimeURL, "https://env.example.com/fulltime.json")

	dotenv := "INTERN_FEED_URL=https://dotenv.example.com/intern.json\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if got := cfg.Feeds[0].URL; got != "https://env.example.com/intern.json" {
		t.Errorf("intern url = %q, want the environment value", got)
	}
}

func TestLoadConfig_DefaultFileWins(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FEEDWATCH_CONFIG", "")

	yaml := "feeds:\n  - id: only\n    url: https://jobs.example.com/only.json\n"
	if err := os.WriteFile(filepath.Join(dir, defaultConfigPath), []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].ID != "only" {
		t.Errorf("Feeds = %+v", cfg.Feeds)
	}
}

func TestBuildPollers_EndToEnd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"subject":"Backend Intern","updateDate":"2024-04-01"}]`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	summary := filepath.Join(dir, "summary.md")

	cfg := config.Default()
	cfg.DataDir = dir
	cfg.HTTP.MinHostDelay = 0
	cfg.Retry.Delay = 0
	cfg.Feeds = []config.FeedConfig{{ID: "intern", Label: "Intern", URL: srv.URL, Snapshot: "data/intern.json"}}
	cfg.Notification.SummaryPath = summary

	logger := discardLogger()
	snapshots, closeStore, err := openStore(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	pollers := buildPollers(cfg, snapshots, httpClient, logger)
	sched := scheduler.NewScheduler(pollers, setupNotifier(cfg, httpClient, logger), cfg.Interval, logger)

	res := sched.RunOnce(context.Background())
	if !res.Notified || len(res.Changes) != 1 {
		t.Fatalf("first run = %+v, want one notified feed", res)
	}

	data, err := os.ReadFile(summary)
	if err != nil {
		t.Fatal(err)
	}
	want := "## New job postings detected\n### Intern\n- Backend Intern (2024-04-01)\n"
	if string(data) != want {
		t.Errorf("summary = %q, want %q", data, want)
	}

	if _, err := os.Stat(filepath.Join(dir, "data", "intern.json")); err != nil {
		t.Errorf("snapshot not written: %v", err)
	}

	res = sched.RunOnce(context.Background())
	if res.Notified || len(res.Changes) != 0 {
		t.Errorf("second run = %+v, want no changes", res)
	}
}

func TestDiffCommand(t *testing.T) {
	dir := t.TempDir()
	prev := filepath.Join(dir, "prev.json")
	cur := filepath.Join(dir, "cur.json")
	os.WriteFile(prev, []byte(`[{"subject":"A","updateDate":"1"},{"subject":"B","updateDate":"1"}]`), 0644)
	os.WriteFile(cur, []byte(`[{"subject":"A","updateDate":"2"},{"subject":"C","updateDate":"1"}]`), 0644)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"diff", "--previous", prev, "--current", cur, "--removed"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("diff: %v", err)
	}

	got := out.String()
	for _, want := range []string{"A (2)", "C (1)", "removed (1)", "B (1)"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Store.Type = "sqlite"

	snapshots, closeStore, err := openStore(cfg, discardLogger())
	if err != nil {
		t.Fatalf("openStore: %v", err)
	}
	defer closeStore()

	if _, ok := snapshots.(*store.SQLiteStore); !ok {
		t.Errorf("store = %T, want *store.SQLiteStore", snapshots)
	}
}

func fulltimeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"subject":"Platform Engineer","updateDate":"2024-05-01"}]`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setEnvOnlyFulltime(t *testing.T, url string) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("FEEDWATCH_CONFIG", "")
	t.Setenv(config.EnvInternURL, "")
	t.Setenv(config.EnvFulltimeURL, url)
	t.Setenv(config.EnvSummaryPath, "")
	t.Setenv(config.EnvSlackURL, "")
	return dir
}

func TestRunOnce_MissingEnvURLFailsOnlyThatFeed(t *testing.T) {
	srv := fulltimeServer(t)
	dir := setEnvOnlyFulltime(t, srv.URL)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	logger := discardLogger()
	snapshots, closeStore, err := openStore(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer closeStore()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	pollers := buildPollers(cfg, snapshots, httpClient, logger)
	res := scheduler.NewScheduler(pollers, setupNotifier(cfg, httpClient, logger), cfg.Interval, logger).
		RunOnce(context.Background())

	if len(res.Failed) != 1 || res.Failed[0] != "intern" {
		t.Errorf("Failed = %v, want [intern]", res.Failed)
	}
	if res.Succeeded != 1 || res.AllFailed() {
		t.Errorf("result = %+v, want fulltime to succeed", res)
	}
	if len(res.Changes) != 1 || res.Changes[0].Feed.ID != "fulltime" {
		t.Errorf("Changes = %+v, want only fulltime", res.Changes)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "fulltime.json")); err != nil {
		t.Errorf("fulltime snapshot not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "intern.json")); !os.IsNotExist(err) {
		t.Errorf("intern snapshot should not exist, stat err = %v", err)
	}
}

func TestRunCommand_StrictSucceedsWhenOneEnvURLMissing(t *testing.T) {
	srv := fulltimeServer(t)
	dir := setEnvOnlyFulltime(t, srv.URL)
	t.Cleanup(func() { strict = false })

	rootCmd.SetArgs([]string{"run", "--strict"})
	defer rootCmd.SetArgs(nil)

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("run --strict = %v, want nil when one feed succeeds", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "data", "fulltime.json")); err != nil {
		t.Errorf("fulltime snapshot not written: %v", err)
	}
}
