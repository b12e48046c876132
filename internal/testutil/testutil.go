// Package testutil provides shared test helpers for site directories and
// metadata catalogs.
package testutil

import (
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"testing"

	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/storage"
)

// TestCatalog creates a temporary SQLite catalog that is automatically closed.
func TestCatalog(t *testing.T) *catalog.DB {
	t.Helper()
	db, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSite creates a temporary site directory with a storage provider.
func TestSite(t *testing.T) *storage.FS {
	t.Helper()
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

// WriteItems writes metadata files (name → JSON body) under dir of site.
func WriteItems(t *testing.T, site storage.Provider, dir string, items map[string]string) {
	t.Helper()
	for name, body := range items {
		if err := site.Write(path.Join(dir, name), []byte(body)); err != nil {
			t.Fatal(err)
		}
	}
}

// QuietLogger returns a logger that only reports errors.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}
