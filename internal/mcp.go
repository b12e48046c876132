package internal

import (
	"context"
	"log/slog"

	"github.com/starford/shiori/internal/loader"
	"github.com/starford/shiori/internal/mcpserver"
	"github.com/starford/shiori/internal/postservice"
)

// ServeMCP serves the MCP tools over stdio. Logs must not go to stdout,
// which carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	logger, err := app.init()
	if err != nil {
		return err
	}
	cfg := app.config

	s, err := openSite(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if _, err := s.rebuild(ctx, logger); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	svc := postservice.NewService(loader.New(), cfg.Site.IndexLocation(), s.db)
	if err := svc.Reload(ctx); err != nil {
		logger.Warn("initial load failed", slog.String("error", err.Error()))
	}

	srv := mcpserver.New(svc, mcpserver.WithDrafts(s.store, cfg.Site.ItemsDir, func(ctx context.Context) error {
		if _, err := s.rebuild(ctx, logger); err != nil {
			return err
		}
		return svc.Reload(ctx)
	}))

	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
