package filter

import (
	"strings"

	"github.com/starford/shiori/internal/models"
)

// Apply returns the posts matching both the text query and the category
// selection, preserving their relative order. The input is not modified.
func Apply(posts []models.Post, s State) []models.Post {
	q := strings.ToLower(s.Query)
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if MatchText(p, q) && MatchCategory(p, s.Primary, s.Secondary) {
			out = append(out, p)
		}
	}
	return out
}

// MatchText reports whether q (lower-cased) is empty or a substring of the
// title, summary or space-joined tags, ignoring case.
func MatchText(p models.Post, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Summary), q) ||
		strings.Contains(strings.ToLower(strings.Join(p.Tags, " ")), q)
}

// MatchCategory reports whether p falls under the selection. An empty level
// matches everything.
func MatchCategory(p models.Post, primary, secondary string) bool {
	if primary != "" && p.CategoryLv1 != primary {
		return false
	}
	if secondary != "" && p.CategoryLv2 != secondary {
		return false
	}
	return true
}
