// Package post turns raw index records of any shape into canonical posts.
//
// Normalization is total: every input, including nil and non-object values,
// yields a models.Post with every field set to a safe default.
package post

import (
	"strconv"
	"strings"

	"github.com/starford/shiori/internal/models"
)

// Canonical field names.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldTimestamp   = "timestamp"
	FieldCategoryLv1 = "category_lv1"
	FieldCategoryLv2 = "category_lv2"
	FieldTags        = "tags"
)

// FieldFallbacks lists, per canonical field, the raw source fields tried in order.
var FieldFallbacks = map[string][]string{
	FieldID:          {"id", "dir", "dr"},
	FieldTitle:       {"title"},
	FieldSummary:     {"summary"},
	FieldTimestamp:   {"timestamp"},
	FieldCategoryLv1: {"category_lv1"},
	FieldCategoryLv2: {"category_lv2"},
}

// LinkFields is the priority order used to resolve a post's display link.
var LinkFields = []string{"post_path", "repo_path", "public_url"}

// Placeholder is the link used when no link field resolves.
const Placeholder = "#"

// Normalize coerces a raw decoded JSON value into a canonical post.
func Normalize(raw any) models.Post {
	m, _ := raw.(map[string]any)
	return models.Post{
		ID:          Field(m, FieldID),
		Title:       Field(m, FieldTitle),
		Summary:     Field(m, FieldSummary),
		Tags:        NormalizeTags(m[FieldTags]),
		Timestamp:   Field(m, FieldTimestamp),
		CategoryLv1: Field(m, FieldCategoryLv1),
		CategoryLv2: Field(m, FieldCategoryLv2),
		PostPath:    NormalizePostPath(m["post_path"]),
		URL:         ResolveURL(m),
	}
}

// NormalizeAll normalizes every raw value and sorts the result newest first.
func NormalizeAll(raws []any) []models.Post {
	out := make([]models.Post, 0, len(raws))
	for _, r := range raws {
		out = append(out, Normalize(r))
	}
	SortByTimestampDesc(out)
	return out
}

// Field returns the canonical field value using FieldFallbacks.
func Field(m map[string]any, canonical string) string {
	names, ok := FieldFallbacks[canonical]
	if !ok {
		names = []string{canonical}
	}
	return StringField(m, names...)
}

// StringField returns the first non-empty trimmed scalar among names.
func StringField(m map[string]any, names ...string) string {
	for _, name := range names {
		if s := scalarString(m[name]); s != "" {
			return s
		}
	}
	return ""
}

// scalarString stringifies JSON scalars. false, zero, nil and composite
// values count as absent.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == 0 {
			return ""
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		if t == 0 {
			return ""
		}
		return strconv.Itoa(t)
	case bool:
		if t {
			return "true"
		}
	}
	return ""
}

// NormalizeTags accepts a sequence or a comma-delimited string and returns
// trimmed, non-empty, de-duplicated tags in first-seen order. Any other shape
// yields an empty, non-nil slice.
func NormalizeTags(v any) []string {
	var items []string
	switch t := v.(type) {
	case []string:
		items = t
	case []any:
		for _, item := range t {
			switch s := item.(type) {
			case string:
				items = append(items, s)
			case float64, int, bool:
				items = append(items, scalarLiteral(s))
			}
		}
	case string:
		items = strings.Split(t, ",")
	}

	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// scalarLiteral stringifies a tag element, keeping zero and false.
func scalarLiteral(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// NormalizePostPath strips leading slashes and ensures a trailing slash.
func NormalizePostPath(v any) string {
	s := strings.TrimLeft(scalarString(v), "/")
	if s != "" && !strings.HasSuffix(s, "/") {
		s += "/"
	}
	return s
}

// ResolveURL walks LinkFields in order and returns the first usable link.
func ResolveURL(m map[string]any) string {
	for _, name := range LinkFields {
		if link := resolveLink(name, m[name]); link != "" {
			return link
		}
	}
	return Placeholder
}

func resolveLink(field string, v any) string {
	switch field {
	case "post_path":
		if p := NormalizePostPath(v); p != "" {
			return "./" + p
		}
		return ""
	case "repo_path":
		s := scalarString(v)
		if trimmed := strings.TrimLeft(s, "/"); trimmed != s {
			return "./" + trimmed
		}
		return s
	default:
		return scalarString(v)
	}
}
