package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/postservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// stateFromQuery builds a filter state the same way the list page does: the
// query goes through text input, the category pair through a category click.
func stateFromQuery(r *http.Request) filter.State {
	q := r.URL.Query()
	st := filter.Reduce(filter.State{}, filter.TextInput{Text: q.Get("q")})
	lv1, lv2 := q.Get("lv1"), q.Get("lv2")
	if lv1 != "" || lv2 != "" {
		st = filter.Reduce(st, filter.SetCategory{Primary: lv1, Secondary: lv2})
	}
	return st
}

// ListPosts handles GET /api/posts.
//
//	@Summary		List posts matching a text query and category
//	@Tags			posts
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive text query"
//	@Param			lv1	query		string	false	"Primary category"
//	@Param			lv2	query		string	false	"Secondary category"
//	@Success		200	{object}	PostListResponse
//	@Security		BearerAuth
//	@Router			/posts [get]
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	st := stateFromQuery(r)
	posts := h.svc.ListPosts(r.Context(), st)
	writeJSON(w, http.StatusOK, PostListResponse{
		Posts: posts,
		Total: len(posts),
		State: st,
	})
}

// GetPost handles GET /api/posts/{id}.
//
//	@Summary		Get a single post by id
//	@Tags			posts
//	@Produce		json
//	@Param			id	path		string	true	"Post id"
//	@Success		200	{object}	Post
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/posts/{id} [get]
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.svc.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
		} else {
			slog.Error("get post failed", slog.String("id", id), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Categories handles GET /api/categories.
//
//	@Summary		Category sections for the posts matching q
//	@Tags			categories
//	@Produce		json
//	@Param			q	query		string	false	"Case-insensitive text query"
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	st := filter.Reduce(filter.State{}, filter.TextInput{Text: r.URL.Query().Get("q")})
	secs := h.svc.Categories(r.Context(), st)
	if secs == nil {
		secs = []category.Section{}
	}
	total := 0
	for _, s := range secs {
		total += s.Total
	}
	writeJSON(w, http.StatusOK, CategoriesResponse{Sections: secs, Total: total})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search over indexed metadata
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		if errors.Is(err, postservice.ErrSearchUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "search unavailable")
			return
		}
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Status handles GET /api/status.
//
//	@Summary		Snapshot size and last load error
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	StatusResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	n, err := h.svc.Status()
	resp := StatusResponse{Posts: n}
	if err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
