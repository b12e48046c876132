package builder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/parser"
)

var redirectTmpl = template.Must(template.New("redirect").Parse(`<!doctype html>
<html lang="ja">
<head>
  <meta charset="utf-8" />
  <meta http-equiv="refresh" content="0; url={{.}}" />
  <link rel="canonical" href="{{.}}" />
  <meta name="robots" content="noindex" />
  <title>Redirecting...</title>
</head>
<body>
  <p>Redirecting to <a href="{{.}}">{{.}}</a></p>
</body>
</html>
`))

// ShortcutReport summarizes one GenerateShortcuts run.
type ShortcutReport struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

// RedirectTarget returns the post URL a shortcut page points at.
func RedirectTarget(basePath, id string) string {
	return strings.TrimSuffix(basePath, "/") + "/posts/" + id + "/"
}

// ShortcutPath returns the site-relative location of a post's redirect page.
func ShortcutPath(lv1Slug, lv2Slug, id string) string {
	return path.Join(lv1Slug, lv2Slug, id, "index.html")
}

// GenerateShortcuts writes one redirect page per metadata file under
// <lv1-slug>/<lv2-slug>/<id>/. Files with invalid JSON, missing fields or
// unknown categories are skipped with a warning.
func (b *Builder) GenerateShortcuts(ctx context.Context) (ShortcutReport, error) {
	var rep ShortcutReport

	files, err := b.site.List(b.itemsDir, ".json")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			b.logger.Info("shortcuts: items dir not found, skipping", slog.String("dir", b.itemsDir))
			return rep, nil
		}
		return rep, fmt.Errorf("builder: list items: %w", err)
	}
	if len(files) == 0 {
		b.logger.Info("shortcuts: no metadata files, skipping", slog.String("dir", b.itemsDir))
		return rep, nil
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := b.writeShortcut(f.Path); err != nil {
			b.logger.Warn("shortcuts: skipped", slog.String("file", f.Path), slog.String("error", err.Error()))
			rep.Skipped++
			continue
		}
		rep.Generated++
	}

	b.logger.Info("shortcuts: generated",
		slog.Int("generated", rep.Generated),
		slog.Int("skipped", rep.Skipped),
	)
	return rep, nil
}

func (b *Builder) writeShortcut(file string) error {
	data, err := b.site.Read(file)
	if err != nil {
		return err
	}
	m, err := parser.Parse(data)
	if err != nil {
		return err
	}
	if err := parser.ValidateForShortcut(m); err != nil {
		return err
	}
	lv1, lv2, ok := category.Slugs(m.CategoryLv1, m.CategoryLv2)
	if !ok {
		return fmt.Errorf("%w: %s / %s", apperr.ErrUnknownCategory, m.CategoryLv1, m.CategoryLv2)
	}

	var buf bytes.Buffer
	if err := redirectTmpl.Execute(&buf, RedirectTarget(b.basePath, m.ID)); err != nil {
		return fmt.Errorf("render redirect: %w", err)
	}
	return b.site.Write(ShortcutPath(lv1, lv2, m.ID), buf.Bytes())
}
