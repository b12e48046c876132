package builder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/post"
)

// IndexReport summarizes one BuildIndex run.
type IndexReport struct {
	Items   int `json:"items"`
	Skipped int `json:"skipped"`
}

// BuildIndex aggregates every valid metadata file into index.json, newest
// first. Invalid files are skipped with a warning. A missing items
// directory still produces an empty index.
func (b *Builder) BuildIndex(ctx context.Context) (IndexReport, error) {
	if err := ctx.Err(); err != nil {
		return IndexReport{}, err
	}

	sync, err := catalog.Sync(b.catalog, b.site, b.itemsDir, b.logger)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Info("build: items dir not found, writing empty index", slog.String("dir", b.itemsDir))
			if err := b.site.Write(b.indexPath, []byte("[]\n")); err != nil {
				return IndexReport{}, fmt.Errorf("builder: write index: %w", err)
			}
			return IndexReport{}, nil
		}
		return IndexReport{}, fmt.Errorf("builder: sync: %w", err)
	}

	entries, err := b.catalog.Entries()
	if err != nil {
		return IndexReport{}, fmt.Errorf("builder: entries: %w", err)
	}
	SortEntries(entries)

	data, err := encodeIndex(entries)
	if err != nil {
		return IndexReport{}, fmt.Errorf("builder: encode index: %w", err)
	}
	if err := b.site.Write(b.indexPath, data); err != nil {
		return IndexReport{}, fmt.Errorf("builder: write index: %w", err)
	}

	rep := IndexReport{Items: len(entries), Skipped: sync.Skipped}
	b.logger.Info("build: index written",
		slog.String("path", b.indexPath),
		slog.Int("items", rep.Items),
		slog.Int("skipped", rep.Skipped),
		slog.Int("indexed", sync.Indexed),
		slog.Int("removed", sync.Removed),
	)
	return rep, nil
}

// SortEntries orders entries newest first; unparseable timestamps go last
// and equal keys keep their relative order.
func SortEntries(entries []models.Meta) {
	slices.SortStableFunc(entries, func(a, b models.Meta) int {
		return post.CompareTimestampDesc(a.Timestamp, b.Timestamp)
	})
}

func encodeIndex(entries []models.Meta) ([]byte, error) {
	if entries == nil {
		entries = []models.Meta{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
