package internal

import (
	"io"
	"os"

	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/listing"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	stdout    io.Writer
	logOutput io.Writer

	buildIndex     bool
	buildShortcuts bool

	actions []filter.Action
	listing listing.Options
}

func newApplication(opts []Option) *application {
	app := &application{
		stdout:         os.Stdout,
		logOutput:      os.Stdout,
		buildIndex:     true,
		buildShortcuts: true,
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where command output (the post listing) is written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithLogOutput sets where structured logs are written.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}

// WithBuildSteps selects which build steps Build runs.
func WithBuildSteps(index, shortcuts bool) Option {
	return func(a *application) {
		a.buildIndex = index
		a.buildShortcuts = shortcuts
	}
}

// WithFilter sets the text query and category applied by List, in the
// order a reader would enter them.
func WithFilter(query, lv1, lv2 string) Option {
	return func(a *application) {
		if query != "" {
			a.actions = append(a.actions, filter.TextInput{Text: query})
		}
		if lv1 != "" || lv2 != "" {
			a.actions = append(a.actions, filter.SetCategory{Primary: lv1, Secondary: lv2})
		}
	}
}

// WithListing sets the listing layout.
func WithListing(o listing.Options) Option {
	return func(a *application) {
		a.listing = o
	}
}
