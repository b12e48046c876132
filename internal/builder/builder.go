// Package builder produces the static site artifacts: the aggregated
// index.json and the per-category redirect pages.
package builder

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/storage"
)

const (
	DefaultItemsDir  = "data/new_items"
	DefaultIndexPath = "data/index.json"
)

// Builder runs build steps against a site directory. All paths are
// relative to the site root.
type Builder struct {
	site      storage.Provider
	catalog   catalog.Catalog
	itemsDir  string
	indexPath string
	basePath  string
	logger    *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithItemsDir sets the directory holding per-post metadata files.
func WithItemsDir(dir string) Option {
	return func(b *Builder) { b.itemsDir = dir }
}

// WithIndexPath sets where index.json is written.
func WithIndexPath(p string) Option {
	return func(b *Builder) { b.indexPath = p }
}

// WithBasePath sets the URL prefix used in redirect targets.
func WithBasePath(p string) Option {
	return func(b *Builder) { b.basePath = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// New returns a Builder for site. cat caches validated entries between runs.
func New(site storage.Provider, cat catalog.Catalog, opts ...Option) *Builder {
	b := &Builder{
		site:      site,
		catalog:   cat,
		itemsDir:  DefaultItemsDir,
		indexPath: DefaultIndexPath,
		logger:    slog.New(slog.NewJSONHandler(os.Stdout, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ItemsDir returns the absolute path of the metadata directory.
func (b *Builder) ItemsDir() string {
	return filepath.Join(b.site.Root(), filepath.FromSlash(b.itemsDir))
}
