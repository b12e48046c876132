package post

import (
	"slices"
	"strings"
	"time"

	"github.com/starford/shiori/internal/models"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTime parses a timestamp string. Values without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders a timestamp as YYYY.MM.DD, or "" when it does not parse.
func FormatDate(ts string) string {
	t, ok := ParseTime(ts)
	if !ok {
		return ""
	}
	return t.Format("2006.01.02")
}

// DatetimeAttr renders a timestamp as YYYY-MM-DD, or "" when it does not parse.
func DatetimeAttr(ts string) string {
	t, ok := ParseTime(ts)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

// CompareTimestampDesc orders newer timestamps first. Unparseable values
// sort after every valid one and compare equal to each other.
func CompareTimestampDesc(a, b string) int {
	ta, okA := ParseTime(a)
	tb, okB := ParseTime(b)
	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return 1
	case !okB:
		return -1
	}
	return tb.Compare(ta)
}

// SortByTimestampDesc sorts posts newest first, keeping the relative order of ties.
func SortByTimestampDesc(posts []models.Post) {
	slices.SortStableFunc(posts, func(a, b models.Post) int {
		return CompareTimestampDesc(a.Timestamp, b.Timestamp)
	})
}
