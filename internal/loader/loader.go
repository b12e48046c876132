// Package loader fetches the post index resource and normalizes it.
package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/post"
)

// DefaultMaxSize bounds the size of an index document.
const DefaultMaxSize = 32 << 20

// Loader reads the index resource from an HTTP(S) URL or a local file.
type Loader struct {
	client  *http.Client
	maxSize int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for URL locations.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		l.client = c
	}
}

// WithMaxSize sets the largest index document accepted, in bytes.
func WithMaxSize(n int64) Option {
	return func(l *Loader) {
		if n > 0 {
			l.maxSize = n
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{client: &http.Client{Timeout: 15 * time.Second}, maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the index at location and returns canonical posts, newest first.
// Transport failures wrap apperr.ErrFetch.
func (l *Loader) Load(ctx context.Context, location string) ([]models.Post, error) {
	data, err := l.read(ctx, location)
	if err != nil {
		return nil, err
	}
	raws, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("loader: parse %s: %w", location, err)
	}
	return post.NormalizeAll(raws), nil
}

// Decode extracts the raw post list from an index document: either a bare
// array or an object with an "articles" array. Any other shape is empty.
func Decode(data []byte) ([]any, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if arts, ok := v["articles"].([]any); ok {
			return arts, nil
		}
	}
	return []any{}, nil
}

func (l *Loader) read(ctx context.Context, location string) ([]byte, error) {
	if !isURL(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("loader: read %s: %w: %w", location, apperr.ErrFetch, err)
		}
		defer f.Close()
		return l.readLimited(f, location)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("loader: build request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loader: fetch %s: %w: %w", location, apperr.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("loader: failed to fetch %s (HTTP %d): %w", location, resp.StatusCode, apperr.ErrFetch)
	}

	return l.readLimited(resp.Body, location)
}

// readLimited reads at most maxSize bytes and fails, rather than truncating,
// when r holds more.
func (l *Loader) readLimited(r io.Reader, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w: %w", location, apperr.ErrFetch, err)
	}
	if int64(len(data)) > l.maxSize {
		return nil, fmt.Errorf("loader: index too large: %s exceeds %d bytes: %w", location, l.maxSize, apperr.ErrFetch)
	}
	return data, nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}
