package api

import (
	"github.com/starford/shiori/internal/catalog"
	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/models"
)

// Post is the canonical post record as served by the API.
type Post = models.Post

// PostListResponse wraps a filtered post listing.
type PostListResponse struct {
	Posts []Post       `json:"posts" validate:"required"`
	Total int          `json:"total" example:"42" validate:"required"`
	State filter.State `json:"state"`
}

// CategoriesResponse wraps the category sections in display order.
type CategoriesResponse struct {
	Sections []category.Section `json:"sections" validate:"required"`
	Total    int                `json:"total" example:"12" validate:"required"`
}

// SearchResponse wraps full-text search hits.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results" validate:"required"`
}

// StatusResponse reports the loaded snapshot.
type StatusResponse struct {
	Posts int    `json:"posts" example:"42"`
	Error string `json:"error,omitempty"`
}
