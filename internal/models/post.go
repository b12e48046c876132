// Package models defines the domain types for shiori.
package models

// Post is the canonical, default-filled record used by filtering and rendering.
type Post struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	Timestamp   string   `json:"timestamp"`
	CategoryLv1 string   `json:"category_lv1"`
	CategoryLv2 string   `json:"category_lv2"`
	PostPath    string   `json:"post_path"`
	URL         string   `json:"url"`
}

// HasCategory reports whether both category levels are set.
func (p Post) HasCategory() bool {
	return p.CategoryLv1 != "" && p.CategoryLv2 != ""
}

// Meta is one per-post metadata file as aggregated into the index resource.
// Field order matches the published index.json layout.
type Meta struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Title       string   `json:"title"`
	Summary     string   `json:"summary"`
	Tags        []string `json:"tags"`
	CategoryLv1 string   `json:"category_lv1"`
	CategoryLv2 string   `json:"category_lv2"`
	PostPath    string   `json:"post_path"`
}

// FileMetadata is a lightweight listing entry for a stored file.
type FileMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}
