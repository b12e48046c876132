// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/shiori/internal/api"
	"github.com/starford/shiori/internal/loader"
	"github.com/starford/shiori/internal/postservice"
	"github.com/starford/shiori/internal/sse"
)

// Run builds the site once and serves the preview API, the static docs
// and rebuild events until ctx is cancelled or a signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	logger, err := app.init()
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_dir", cfg.Site.DocsDir),
		slog.String("index", cfg.Site.IndexLocation()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

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

	broker := sse.NewBroker(cfg.Events.CategoriesThrottle,
		sse.WithHeartbeat(cfg.Events.Heartbeat),
		sse.WithHistory(cfg.Events.History))
	defer broker.Close()

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			dir := s.builder.ItemsDir()
			if err := s.watch(gCtx, cfg.Watch.Debounce, logger, svc, broker); err != nil {
				logger.Warn("watcher disabled", slog.String("dir", dir), slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		waitForShutdown(gCtx, logger)
		// Stops the watcher too; it does not share the server's exit path.
		cancel()

		grace := cfg.App.HTTP.ShutdownTimeout
		if grace <= 0 {
			grace = 10 * time.Second
		}
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), grace)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// waitForShutdown blocks until SIGINT, SIGTERM or ctx cancellation.
func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}

// newHTTPHandler mounts health checks, the API under /api and the docs
// tree at the root.
func newHTTPHandler(cfg *Config, svc *postservice.Service, events http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health checks stay outside auth.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, health{Status: "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		n, loadErr := svc.Status()
		if loadErr != nil {
			writeHealth(w, http.StatusServiceUnavailable, health{Status: "degraded", Posts: n, Error: loadErr.Error()})
			return
		}
		writeHealth(w, http.StatusOK, health{Status: "ok", Posts: n})
	})

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, events))
	r.Handle("/*", api.NewSiteHandler(cfg.Site.DocsDir))
	return r
}

type health struct {
	Status string `json:"status"`
	Posts  int    `json:"posts"`
	Error  string `json:"error,omitempty"`
}

func writeHealth(w http.ResponseWriter, status int, h health) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(h)
}
