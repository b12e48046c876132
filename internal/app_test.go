package internal

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/shiori/internal/listing"
	"github.com/starford/shiori/internal/loader"
	"github.com/starford/shiori/internal/postservice"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Site.DocsDir = filepath.Join(dir, "docs")
	cfg.SQLite.Path = filepath.Join(dir, ".shiori", "catalog.db")
	return cfg
}

func writeItem(t *testing.T, cfg *Config, name, body string) {
	t.Helper()
	dir := cfg.Site.ItemsPath()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRun_RequiresConfig(t *testing.T) {
	for name, fn := range map[string]func(context.Context, ...Option) error{
		"Run": Run, "Build": Build, "List": List, "ServeMCP": ServeMCP,
	} {
		if err := fn(context.Background(), WithLogOutput(io.Discard)); err == nil {
			t.Errorf("%s without config should fail", name)
		}
	}
}

func TestBuild_WritesIndexAndShortcuts(t *testing.T) {
	cfg := testConfig(t)
	writeItem(t, cfg, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"A","post_path":"posts/a","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)

	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(cfg.Site.IndexLocation()); err != nil {
		t.Errorf("index not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Site.DocsDir, "technology", "database", "a", "index.html")); err != nil {
		t.Errorf("shortcut not written: %v", err)
	}
}

func TestBuild_IndexOnly(t *testing.T) {
	cfg := testConfig(t)
	writeItem(t, cfg, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"A","post_path":"posts/a","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)

	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard), WithBuildSteps(true, false)); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Site.DocsDir, "technology")); !os.IsNotExist(err) {
		t.Error("shortcuts should not be generated")
	}
}

func TestList_FiltersBuiltIndex(t *testing.T) {
	cfg := testConfig(t)
	writeItem(t, cfg, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"Database intro","post_path":"posts/a","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)
	writeItem(t, cfg, "b.json", `{"id":"b","timestamp":"2024-02-01","title":"SWOT","post_path":"posts/b","category_lv1":"ストラテジ系","category_lv2":"経営戦略"}`)
	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := List(context.Background(),
		WithConfig(cfg),
		WithLogOutput(io.Discard),
		WithOutput(&out),
		WithFilter("DATABASE", "テクノロジ系", ""),
		WithListing(listing.Options{Tree: true}),
	)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	s := out.String()
	if !strings.Contains(s, "Database intro") || strings.Contains(s, "SWOT") {
		t.Errorf("unexpected listing:\n%s", s)
	}
	if !strings.Contains(s, "1 of 2 posts") {
		t.Errorf("count line missing:\n%s", s)
	}
}

func TestList_MissingIndexShowsError(t *testing.T) {
	cfg := testConfig(t)
	var out bytes.Buffer
	err := List(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard), WithOutput(&out))
	if err != nil {
		t.Fatalf("List should not fail on load errors: %v", err)
	}
	if !strings.Contains(out.String(), "Failed to load posts") {
		t.Errorf("error panel missing:\n%s", out.String())
	}
}

func TestHTTPHandler_HealthAPIAndDocs(t *testing.T) {
	cfg := testConfig(t)
	writeItem(t, cfg, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"A","post_path":"posts/a","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)
	if err := Build(context.Background(), WithConfig(cfg), WithLogOutput(io.Discard)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	svc := postservice.NewService(loader.New(), cfg.Site.IndexLocation(), nil)
	h := newHTTPHandler(cfg, svc, nil)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	// Nothing loaded yet: the snapshot is empty but not failed.
	if w := get("/health/ready"); w.Code != http.StatusOK {
		t.Errorf("ready before load = %d", w.Code)
	}
	if err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if w := get("/health/ready"); !strings.Contains(w.Body.String(), `"posts":1`) {
		t.Errorf("ready body = %q", w.Body.String())
	}
	if w := get("/api/posts?q=a"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":"a"`) {
		t.Errorf("/api/posts = %d %q", w.Code, w.Body.String())
	}
	if w := get("/technology/database/a/"); w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/posts/a/") {
		t.Errorf("redirect page = %d %q", w.Code, w.Body.String())
	}
	if w := get("/data/index.json"); w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("index Cache-Control = %q", w.Header().Get("Cache-Control"))
	}
}

func TestHTTPHandler_ReadyDegradedOnLoadError(t *testing.T) {
	cfg := testConfig(t)
	svc := postservice.NewService(loader.New(), filepath.Join(t.TempDir(), "missing.json"), nil)
	_ = svc.Reload(context.Background())

	w := httptest.NewRecorder()
	newHTTPHandler(cfg, svc, nil).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "degraded") {
		t.Errorf("ready = %d %q", w.Code, w.Body.String())
	}
}
