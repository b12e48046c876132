// Package browse holds the post-list session: the loaded collection and the
// active filter, owned by whoever renders the list.
package browse

import (
	"context"
	"log/slog"

	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/loader"
	"github.com/starford/shiori/internal/models"
)

// View is everything a renderer needs for one frame.
type View struct {
	Posts    []models.Post      `json:"posts"`
	Sections []category.Section `json:"sections"`
	State    filter.State       `json:"state"`
	Total    int                `json:"total"`
	// Categorized counts the posts that carry both category levels.
	Categorized int    `json:"categorized"`
	Error       string `json:"error,omitempty"`
}

// Empty reports whether the filtered list has no posts ("no results").
func (v View) Empty() bool {
	return len(v.Posts) == 0
}

// Session owns a post collection and filter state. The collection is set
// once at construction and read-only afterwards.
type Session struct {
	posts   []models.Post
	state   filter.State
	loadErr error
}

// New creates a session over an already loaded collection.
func New(posts []models.Post) *Session {
	if posts == nil {
		posts = []models.Post{}
	}
	return &Session{posts: posts}
}

// Load fetches the index once. A failure leaves the session with an empty
// collection and a visible error; it is not returned and not retried.
func Load(ctx context.Context, l *loader.Loader, location string, logger *slog.Logger) *Session {
	posts, err := l.Load(ctx, location)
	if err != nil {
		if logger != nil {
			logger.Warn("index load failed",
				slog.String("location", location),
				slog.String("error", err.Error()))
		}
		s := New(nil)
		s.loadErr = err
		return s
	}
	return New(posts)
}

// Dispatch applies a transition and re-renders the whole view.
func (s *Session) Dispatch(a filter.Action) View {
	s.state = filter.Reduce(s.state, a)
	return s.View()
}

// View recomputes the filtered list and category tree from scratch.
func (s *Session) View() View {
	tree := category.Build(s.posts)
	v := View{
		Posts:       filter.Apply(s.posts, s.state),
		Sections:    tree.Sections(),
		State:       s.state,
		Total:       len(s.posts),
		Categorized: tree.Len(),
	}
	if s.loadErr != nil {
		v.Error = s.loadErr.Error()
	}
	return v
}
