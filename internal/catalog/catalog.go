package catalog

import "github.com/starford/shiori/internal/models"

// Catalog defines the metadata cache operations. Consumers depend on this
// interface rather than *DB.
type Catalog interface {
	UpsertEntry(file, checksum string, m models.Meta) error
	DeleteEntry(file string) error
	AllChecksums() (map[string]string, error)
	Entries() ([]models.Meta, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

var _ Catalog = (*DB)(nil)
