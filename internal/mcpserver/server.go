// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the post list to LLM clients over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/shiori/internal/category"
	"github.com/starford/shiori/internal/filter"
	"github.com/starford/shiori/internal/post"
	"github.com/starford/shiori/internal/postservice"
	"github.com/starford/shiori/internal/storage"
)

// ContractURI is the resource URI of the metadata format contract.
const ContractURI = "shiori://metadata-format"

// ChangeFunc is called after a tool writes a metadata file.
type ChangeFunc func(ctx context.Context) error

// Server wraps the MCP server with shiori tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *postservice.Service
	site     storage.Provider
	itemsDir string
	onChange ChangeFunc
}

// Option configures a Server.
type Option func(*Server)

// WithDrafts enables the create_post_metadata tool, writing into itemsDir
// of site and calling onChange (if non-nil) after each write.
func WithDrafts(site storage.Provider, itemsDir string, onChange ChangeFunc) Option {
	return func(s *Server) {
		s.site = site
		s.itemsDir = itemsDir
		s.onChange = onChange
	}
}

// New creates a new MCP server with all tools registered.
func New(svc *postservice.Service, opts ...Option) *Server {
	s := &Server{svc: svc}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = server.NewMCPServer(
		"shiori",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Filter the post list by a case-insensitive text query (title, summary, tags) "+
			"and optionally by category. Results are newest first."),
		mcp.WithString("query", mcp.Description("Text query; empty matches every post")),
		mcp.WithString("lv1", mcp.Description("Primary category, e.g. テクノロジ系")),
		mcp.WithString("lv2", mcp.Description("Secondary category, e.g. データベース")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List primary categories in display order with their secondary categories and post counts."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Get one post by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Post id")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("full_text_search",
		mcp.WithDescription("Full-text search over the indexed metadata, returning snippets."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.fullTextSearch)

	s.mcp.AddTool(mcp.NewTool("get_metadata_contract",
		mcp.WithDescription("Returns the per-post metadata file contract. "+
			"Call this before drafting metadata to ensure correct structure."),
	), s.getMetadataContract)

	if s.site != nil {
		s.mcp.AddTool(mcp.NewTool("create_post_metadata",
			mcp.WithDescription("Write a new per-post metadata file. Fields MUST follow the contract "+
				"returned by get_metadata_contract or the "+ContractURI+" resource."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
			mcp.WithString("id", mcp.Description("Post id; generated when empty")),
			mcp.WithString("timestamp", mcp.Description("ISO-8601 date or datetime; now when empty")),
			mcp.WithString("summary", mcp.Description("One-paragraph summary")),
			mcp.WithString("tags", mcp.Description("Comma-separated tags")),
			mcp.WithString("category_lv1", mcp.Description("Primary category")),
			mcp.WithString("category_lv2", mcp.Description("Secondary category")),
			mcp.WithString("post_path", mcp.Description("Relative post path; posts/<id>/ when empty")),
		), s.createPostMetadata)
	}

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Metadata Format Contract",
			mcp.WithResourceDescription("Per-post metadata JSON format aggregated into index.json."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func optString(req mcp.CallToolRequest, key string) string {
	v, err := req.RequireString(key)
	if err != nil {
		return ""
	}
	return v
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type postSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Published   string   `json:"published,omitempty"`
	Tags        []string `json:"tags"`
	CategoryLv1 string   `json:"category_lv1,omitempty"`
	CategoryLv2 string   `json:"category_lv2,omitempty"`
	URL         string   `json:"url"`
}

// postDate renders a timestamp as YYYY.MM.DD, or as-is when unparseable.
func postDate(ts string) string {
	if d := post.FormatDate(ts); d != "" {
		return d
	}
	return ts
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st := filter.Reduce(filter.State{}, filter.TextInput{Text: optString(req, "query")})
	if lv1, lv2 := optString(req, "lv1"), optString(req, "lv2"); lv1 != "" || lv2 != "" {
		st = filter.Reduce(st, filter.SetCategory{Primary: lv1, Secondary: lv2})
	}

	posts := s.svc.ListPosts(ctx, st)
	if len(posts) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	out := make([]postSummary, len(posts))
	for i, p := range posts {
		out[i] = postSummary{
			ID:          p.ID,
			Title:       p.Title,
			Date:        postDate(p.Timestamp),
			Published:   post.DatetimeAttr(p.Timestamp),
			Tags:        p.Tags,
			CategoryLv1: p.CategoryLv1,
			CategoryLv2: p.CategoryLv2,
			URL:         p.URL,
		}
	}
	return jsonResult(out)
}

type categorySummary struct {
	Name        string           `json:"name"`
	Total       int              `json:"total"`
	Secondaries []secondaryCount `json:"secondaries"`
}

type secondaryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (s *Server) listCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	secs := s.svc.Categories(ctx, filter.State{})
	if len(secs) == 0 {
		return mcp.NewToolResultText("no categorized posts"), nil
	}
	out := make([]categorySummary, len(secs))
	for i, sec := range secs {
		out[i] = summarizeSection(sec)
	}
	return jsonResult(out)
}

func summarizeSection(sec category.Section) categorySummary {
	cs := categorySummary{Name: sec.Name, Total: sec.Total}
	for _, sub := range sec.Secondaries {
		cs.Secondaries = append(cs.Secondaries, secondaryCount{Name: sub.Name, Count: sub.Count})
	}
	return cs
}

func (s *Server) getPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.GetPost(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(p)
}

func (s *Server) fullTextSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getMetadataContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(MetadataFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     MetadataFormatContract,
		},
	}, nil
}
