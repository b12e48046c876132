package internal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/shiori/internal/builder"
	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/postservice"
	"github.com/starford/shiori/internal/sse"
	"github.com/starford/shiori/internal/storage"
)

func (a *application) init() (*slog.Logger, error) {
	if a.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger, nil
}

// site bundles the build-side dependencies shared by serve, build and mcp.
type site struct {
	store   *storage.FS
	db      *catalog.DB
	builder *builder.Builder
}

func (s *site) Close() error {
	return s.db.Close()
}

func openSite(cfg *Config, logger *slog.Logger) (*site, error) {
	store, err := storage.EnsureFS(cfg.Site.DocsDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := catalog.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	b := builder.New(store, db,
		builder.WithItemsDir(cfg.Site.ItemsDir),
		builder.WithIndexPath(cfg.Site.IndexPath),
		builder.WithBasePath(cfg.Site.BasePath),
		builder.WithLogger(logger),
	)
	return &site{store: store, db: db, builder: b}, nil
}

// rebuild runs both build steps. Shortcut failures are logged only.
func (s *site) rebuild(ctx context.Context, logger *slog.Logger) (builder.IndexReport, error) {
	rep, err := s.builder.BuildIndex(ctx)
	if err != nil {
		return rep, err
	}
	if _, err := s.builder.GenerateShortcuts(ctx); err != nil {
		logger.Warn("shortcut generation failed", slog.String("error", err.Error()))
	}
	return rep, nil
}

// watch rebuilds the site whenever the items directory changes, reloads
// the post snapshot and announces the result to event subscribers.
func (s *site) watch(ctx context.Context, debounce time.Duration, logger *slog.Logger, svc *postservice.Service, broker *sse.Broker) error {
	return builder.Watch(ctx, s.builder.ItemsDir(), debounce, logger, func(ctx context.Context) {
		rep, err := s.rebuild(ctx, logger)
		if err != nil {
			logger.Error("rebuild failed", slog.String("error", err.Error()))
			return
		}
		if err := svc.Reload(ctx); err != nil {
			logger.Warn("reload failed", slog.String("error", err.Error()))
		}
		broker.PublishRebuild(rep.Items, rep.Skipped)
	})
}
