// Package listing renders a browse view for the terminal.
package listing

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/starford/shiori/internal/browse"
	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/post"
)

// NoResults is printed when the filter matches nothing.
const NoResults = "No matching posts."

// Options selects optional parts of the listing.
type Options struct {
	// Tree prints the category tree above the post table.
	Tree bool
	// Summary adds the summary column.
	Summary bool
}

type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	errBox  lipgloss.Style
	header  lipgloss.Style
	cell    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		heading: r.NewStyle().Bold(true),
		muted:   r.NewStyle().Faint(true),
		errBox: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1),
		header: r.NewStyle().Bold(true).Padding(0, 1),
		cell:   r.NewStyle().Padding(0, 1),
	}
}

// Render writes v to w. A load error replaces the list with an error panel.
func Render(w io.Writer, v browse.View, opts Options) error {
	st := newStyles(lipgloss.NewRenderer(w))

	var blocks []string
	if v.Error != "" {
		blocks = append(blocks, st.errBox.Render("Failed to load posts\n"+v.Error))
		return writeBlocks(w, blocks)
	}

	if opts.Tree {
		if tree := renderTree(st, v.Sections); tree != "" {
			blocks = append(blocks, tree, st.muted.Render(fmt.Sprintf("%d of %d posts categorized", v.Categorized, v.Total)))
		}
	}
	if f := describeFilter(v); f != "" {
		blocks = append(blocks, st.muted.Render(f))
	}

	if v.Empty() {
		blocks = append(blocks, NoResults)
	} else {
		blocks = append(blocks, renderTable(st, v, opts))
	}
	blocks = append(blocks, st.muted.Render(fmt.Sprintf("%d of %d posts", len(v.Posts), v.Total)))
	return writeBlocks(w, blocks)
}

func writeBlocks(w io.Writer, blocks []string) error {
	_, err := io.WriteString(w, strings.Join(blocks, "\n\n")+"\n")
	return err
}

func renderTree(st styles, sections []category.Section) string {
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.heading.Render(fmt.Sprintf("%s (%d)", sec.Name, sec.Total)))
		for _, sub := range sec.Secondaries {
			fmt.Fprintf(&b, "\n  %s (%d)", sub.Name, sub.Count)
		}
	}
	return b.String()
}

func describeFilter(v browse.View) string {
	if v.State.IsZero() {
		return ""
	}
	var parts []string
	if v.State.Query != "" {
		parts = append(parts, fmt.Sprintf("query %q", v.State.Query))
	}
	if v.State.Primary != "" {
		c := v.State.Primary
		if v.State.Secondary != "" {
			c += " / " + v.State.Secondary
		}
		parts = append(parts, "category "+c)
	} else if v.State.Secondary != "" {
		parts = append(parts, "category "+v.State.Secondary)
	}
	return "filter: " + strings.Join(parts, ", ")
}

func renderTable(st styles, v browse.View, opts Options) string {
	headers := []string{"DATE", "CATEGORY", "TITLE"}
	if opts.Summary {
		headers = append(headers, "SUMMARY")
	}
	headers = append(headers, "URL")

	rows := make([][]string, 0, len(v.Posts))
	for _, p := range v.Posts {
		cat := ""
		if p.HasCategory() {
			cat = p.CategoryLv1 + " / " + p.CategoryLv2
		}
		row := []string{post.FormatDate(p.Timestamp), cat, p.Title}
		if opts.Summary {
			row = append(row, p.Summary)
		}
		row = append(row, p.URL)
		rows = append(rows, row)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return st.header
			}
			return st.cell
		})
	return t.String()
}
