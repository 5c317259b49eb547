package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"marquee/internal/feed"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputPath string
	cachePath  string
	requests   atomic.Int64
	server     *httptest.Server
}

func setupCLITestEnv(t *testing.T, handler http.Handler) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{baseDir: t.TempDir()}
	env.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.server.Close)

	peoplePath := filepath.Join(env.baseDir, "people.txt")
	if err := os.WriteFile(peoplePath, []byte("101\n"), 0o644); err != nil {
		t.Fatalf("write people file: %v", err)
	}

	env.outputPath = filepath.Join(env.baseDir, "feed.json")
	env.cachePath = filepath.Join(env.baseDir, "cache.db")
	env.configPath = filepath.Join(env.baseDir, "config.toml")

	configBody := fmt.Sprintf(`[paths]
people_file = %q
cache_file = %q
output_file = %q

[tmdb]
api_key = "test-key"
base_url = %q
timeout_seconds = 5

[logging]
level = "error"
`, peoplePath, env.cachePath, env.outputPath, env.server.URL)
	if err := os.WriteFile(env.configPath, []byte(configBody), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return env
}

func (env *cliTestEnv) run(t *testing.T, args ...string) error {
	t.Helper()

	root := newRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--config", env.configPath}, args...))
	return root.Execute()
}

func upcomingHandler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/person/101/combined_credits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"id": 101,
			"cast": []map[string]any{
				{
					"id":           7,
					"media_type":   "movie",
					"release_date": "2100-03-01",
					"character":    "Lead",
					"order":        0,
				},
			},
		})
	})
	mux.HandleFunc("/movie/7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"id":           7,
			"title":        "Eclipse Road",
			"status":       "In Production",
			"release_date": "2100-03-01",
			"external_ids": map[string]any{"imdb_id": "tt1234567"},
			"credits": map[string]any{
				"cast": []map[string]any{},
				"crew": []map[string]any{
					{"id": 9000, "name": "Jane Doe", "department": "Directing", "job": "Director"},
				},
			},
		})
	})
	return mux
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestBuildCommandWritesFeed(t *testing.T) {
	env := setupCLITestEnv(t, upcomingHandler(t))

	if err := env.run(t, "build"); err != nil {
		t.Fatalf("build: %v", err)
	}

	result, err := feed.Read(env.outputPath)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Title != "Eclipse Road" {
		t.Errorf("unexpected title: %q", item.Title)
	}
	if item.URL != "https://www.imdb.com/title/tt1234567/" {
		t.Errorf("unexpected url: %q", item.URL)
	}
	if item.Source.Kind != "person" || item.Source.ID != 101 {
		t.Errorf("unexpected source: %+v", item.Source)
	}
}

func TestBuildCommandSecondRunServedFromCache(t *testing.T) {
	env := setupCLITestEnv(t, upcomingHandler(t))

	if err := env.run(t, "build"); err != nil {
		t.Fatalf("first build: %v", err)
	}
	after := env.requests.Load()

	if err := env.run(t, "build"); err != nil {
		t.Fatalf("second build: %v", err)
	}
	if got := env.requests.Load(); got != after {
		t.Fatalf("second run hit the API %d more times", got-after)
	}

	result, err := feed.Read(env.outputPath)
	if err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
}

func TestBuildCommandUpstreamErrorLeavesOutputIntact(t *testing.T) {
	env := setupCLITestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))

	previous := []byte("[]\n")
	if err := os.WriteFile(env.outputPath, previous, 0o644); err != nil {
		t.Fatalf("seed output: %v", err)
	}

	if err := env.run(t, "build"); err == nil {
		t.Fatal("expected build to fail on upstream error")
	}

	data, err := os.ReadFile(env.outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(data, previous) {
		t.Fatalf("failed run must not touch the previous feed, got %q", data)
	}
}

func TestBuildCommandEmptyWatchlistsProduceEmptyFeed(t *testing.T) {
	env := setupCLITestEnv(t, upcomingHandler(t))

	emptyPath := filepath.Join(env.baseDir, "empty.txt")
	if err := os.WriteFile(emptyPath, nil, 0o644); err != nil {
		t.Fatalf("write empty watchlist: %v", err)
	}
	if err := env.run(t, "build", "--people-file", emptyPath, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}

	data, err := os.ReadFile(env.outputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var items []feed.Item
	if err := json.Unmarshal(data, &items); err != nil {
		t.Fatalf("parse output: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty feed, got %v", items)
	}
}
