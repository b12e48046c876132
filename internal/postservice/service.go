// Package postservice serves the current post snapshot to the HTTP API and
// the MCP tools.
package postservice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/loader"
	"github.com/starford/shiori/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// ErrSearchUnavailable is returned by Search when no catalog is attached.
var ErrSearchUnavailable = errors.New("search unavailable")

// Service holds a normalized, newest-first post snapshot that is swapped
// wholesale on Reload.
type Service struct {
	loader   *loader.Loader
	location string
	db       catalog.Catalog

	mu      sync.RWMutex
	posts   []models.Post
	loadErr error
}

// NewService creates a service reading the index at location. db may be nil,
// in which case Search reports ErrSearchUnavailable.
func NewService(l *loader.Loader, location string, db catalog.Catalog) *Service {
	return &Service{loader: l, location: location, db: db}
}

// Reload fetches the index again. On failure the previous snapshot is kept
// and the error is recorded for Status.
func (s *Service) Reload(ctx context.Context) error {
	posts, err := s.loader.Load(ctx, s.location)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadErr = err
	if err != nil {
		return fmt.Errorf("postservice: reload: %w", err)
	}
	s.posts = posts
	return nil
}

// SetPosts replaces the snapshot directly.
func (s *Service) SetPosts(posts []models.Post) {
	s.mu.Lock()
	s.posts = posts
	s.loadErr = nil
	s.mu.Unlock()
}

func (s *Service) snapshot() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.posts
}

// Status returns the snapshot size and the last load error.
func (s *Service) Status() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), s.loadErr
}

// ListPosts returns the posts matching st, newest first.
func (s *Service) ListPosts(_ context.Context, st filter.State) []models.Post {
	out := filter.Apply(s.snapshot(), st)
	if out == nil {
		out = []models.Post{}
	}
	return out
}

// GetPost returns the post with the given id.
func (s *Service) GetPost(_ context.Context, id string) (models.Post, error) {
	for _, p := range s.snapshot() {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Post{}, fmt.Errorf("postservice: post %q: %w", id, apperr.ErrNotFound)
}

// Categories builds the category sections of the posts matching st.
func (s *Service) Categories(_ context.Context, st filter.State) []category.Section {
	return category.Build(filter.Apply(s.snapshot(), st)).Sections()
}

// Search runs a full-text query against the catalog. limit is clamped to
// [1, 100] with 20 as default.
func (s *Service) Search(_ context.Context, q string, limit int) ([]catalog.SearchResult, error) {
	if s.db == nil {
		return nil, ErrSearchUnavailable
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	limit = min(limit, maxSearchLimit)
	res, err := s.db.Search(q, limit)
	if err != nil {
		return nil, fmt.Errorf("postservice: search: %w", err)
	}
	if res == nil {
		res = []catalog.SearchResult{}
	}
	return res, nil
}
