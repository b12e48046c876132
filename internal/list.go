package internal

import (
	"context"

	"github.com/starford/shiori/internal/browse"
	"github.com/starford/shiori/internal/listing"
	"github.com/starford/shiori/internal/loader"
)

// List loads the index once, applies the configured filter and prints the
// result. A load failure is rendered as an error panel, not returned.
func List(ctx context.Context, opts ...Option) error {
	app := newApplication(opts)
	logger, err := app.init()
	if err != nil {
		return err
	}

	session := browse.Load(ctx, loader.New(), app.config.Site.IndexLocation(), logger)
	view := session.View()
	for _, a := range app.actions {
		view = session.Dispatch(a)
	}
	return listing.Render(app.stdout, view, app.listing)
}
