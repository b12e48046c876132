package catalog

import (
	"errors"
	"log/slog"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/parser"
	"github.com/starford/shiori/internal/storage"
)

// SyncReport summarizes one Sync pass.
type SyncReport struct {
	Indexed   int
	Unchanged int
	Skipped   int
	Removed   int
}

// Sync reads every .json metadata file directly under dir and brings the
// catalog up to date:
//   - unchanged files (same checksum) are kept as cached
//   - new/changed files are parsed, validated and upserted
//   - invalid files are skipped with a warning and dropped from the cache
//   - entries whose file is gone are removed
//
// A bad file never aborts the pass.
func Sync(db Catalog, store storage.Provider, dir string, logger *slog.Logger) (SyncReport, error) {
	var rep SyncReport

	files, err := store.List(dir, ".json")
	if err != nil {
		return rep, err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return rep, err
	}

	disk := make(map[string]struct{}, len(files))
	for _, f := range files {
		disk[f.Path] = struct{}{}

		if cs, ok := checksums[f.Path]; ok && cs == f.Checksum {
			rep.Unchanged++
			continue
		}

		data, err := store.Read(f.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("file", f.Path), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}

		m, err := parser.Parse(data)
		if err == nil {
			err = parser.ValidateForIndex(m)
		}
		if err != nil {
			switch {
			case errors.Is(err, apperr.ErrInvalidMeta):
				logger.Warn("sync: invalid json", slog.String("file", f.Path), slog.String("error", err.Error()))
			case errors.Is(err, apperr.ErrMissingFields):
				logger.Warn("sync: missing required fields (id/timestamp/title/post_path)",
					slog.String("file", f.Path), slog.String("error", err.Error()))
			default:
				logger.Warn("sync: rejected", slog.String("file", f.Path), slog.String("error", err.Error()))
			}
			rep.Skipped++
			if _, cached := checksums[f.Path]; cached {
				if delErr := db.DeleteEntry(f.Path); delErr != nil {
					logger.Warn("sync: delete failed", slog.String("file", f.Path), slog.String("error", delErr.Error()))
				}
			}
			continue
		}

		if err := db.UpsertEntry(f.Path, f.Checksum, *m); err != nil {
			logger.Warn("sync: upsert failed", slog.String("file", f.Path), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}
		logger.Debug("sync: indexed", slog.String("file", f.Path))
		rep.Indexed++
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteEntry(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("file", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("file", p))
		rep.Removed++
	}

	return rep, nil
}
