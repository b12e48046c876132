// Package category groups posts into the two-level category tree that drives
// the collapsible navigation.
package category

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/post"
)

// Tree maps primary → secondary → posts, newest first within each leaf.
type Tree map[string]map[string][]models.Post

// Section is the display view of one primary category.
type Section struct {
	Name        string      `json:"name"`
	Total       int         `json:"total"`
	Secondaries []Secondary `json:"secondaries"`
}

// Secondary is one secondary category within a section.
type Secondary struct {
	Name  string        `json:"name"`
	Count int           `json:"count"`
	Posts []models.Post `json:"posts"`
}

// Build groups posts in a single pass. Posts missing either level are skipped.
func Build(posts []models.Post) Tree {
	tree := make(Tree)
	for _, p := range posts {
		lv1 := strings.TrimSpace(p.CategoryLv1)
		lv2 := strings.TrimSpace(p.CategoryLv2)
		if lv1 == "" || lv2 == "" {
			continue
		}
		if tree[lv1] == nil {
			tree[lv1] = make(map[string][]models.Post)
		}
		tree[lv1][lv2] = append(tree[lv1][lv2], p)
	}
	for _, leaves := range tree {
		for _, leaf := range leaves {
			post.SortByTimestampDesc(leaf)
		}
	}
	return tree
}

// Len returns the number of posts held by the tree.
func (t Tree) Len() int {
	n := 0
	for _, leaves := range t {
		for _, leaf := range leaves {
			n += len(leaf)
		}
	}
	return n
}

// Sections returns the display view in PrimaryOrder. Primaries outside that
// list stay in the map but are not displayed. Secondaries are ordered by
// post count descending, then by Japanese collation of the name.
func (t Tree) Sections() []Section {
	col := collate.New(language.Japanese)

	var out []Section
	for _, lv1 := range PrimaryOrder {
		leaves, ok := t[lv1]
		if !ok {
			continue
		}
		sec := Section{Name: lv1}
		for name, posts := range leaves {
			sec.Secondaries = append(sec.Secondaries, Secondary{
				Name:  name,
				Count: len(posts),
				Posts: posts,
			})
			sec.Total += len(posts)
		}
		slices.SortFunc(sec.Secondaries, func(a, b Secondary) int {
			if a.Count != b.Count {
				return b.Count - a.Count
			}
			return col.CompareString(a.Name, b.Name)
		})
		out = append(out, sec)
	}
	return out
}
