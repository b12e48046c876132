package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/parser"
	"github.com/starford/shiori/internal/post"
)

// newID returns a short random post id.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}

func (s *Server) createPostMetadata(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	id := strings.TrimSpace(optString(req, "id"))
	if id == "" {
		id = newID()
	}
	if err := parser.ValidateID(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	ts := optString(req, "timestamp")
	if ts == "" {
		ts = time.Now().Format(time.RFC3339)
	}
	postPath := optString(req, "post_path")
	if postPath == "" {
		postPath = "posts/" + id + "/"
	}

	raw, _ := json.Marshal(map[string]any{
		"id":           id,
		"timestamp":    ts,
		"title":        title,
		"summary":      optString(req, "summary"),
		"tags":         optString(req, "tags"),
		"category_lv1": optString(req, "category_lv1"),
		"category_lv2": optString(req, "category_lv2"),
		"post_path":    postPath,
	})
	m, err := parser.Parse(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := parser.ValidateForIndex(m); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, ok := post.ParseTime(m.Timestamp); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unparseable timestamp: %q", m.Timestamp)), nil
	}
	if (m.CategoryLv1 != "" || m.CategoryLv2 != "") && !knownCategory(m) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category: %s / %s", m.CategoryLv1, m.CategoryLv2)), nil
	}

	file := path.Join(s.itemsDir, id+".json")
	data, err := encodeMeta(m)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.site.Create(file, data); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return mcp.NewToolResultError(fmt.Sprintf("metadata already exists: %s", file)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	if s.onChange != nil {
		if err := s.onChange(ctx); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("created %s but rebuild failed: %v", file, err)), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", file)), nil
}

func knownCategory(m *models.Meta) bool {
	_, _, ok := category.Slugs(m.CategoryLv1, m.CategoryLv2)
	return ok
}

func encodeMeta(m *models.Meta) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
