package internal

import (
	"context"
	"log/slog"
)

// Build runs the selected build steps once: the index aggregation and the
// redirect page generation. Invalid metadata files never fail the build.
func Build(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	logger, err := app.init()
	if err != nil {
		return err
	}

	s, err := openSite(app.config, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	if app.buildIndex {
		rep, err := s.builder.BuildIndex(ctx)
		if err != nil {
			return err
		}
		logger.Info("index built", slog.Int("items", rep.Items), slog.Int("skipped", rep.Skipped))
	}
	if app.buildShortcuts {
		rep, err := s.builder.GenerateShortcuts(ctx)
		if err != nil {
			return err
		}
		logger.Info("shortcuts generated", slog.Int("generated", rep.Generated), slog.Int("skipped", rep.Skipped))
	}
	return nil
}
