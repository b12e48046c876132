package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/shiori/internal"
	"github.com/starford/shiori/internal/listing"
	pkgconfig "github.com/starford/shiori/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("docs"); dir != "" {
		cfg.Site.DocsDir = dir
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.App.HTTP.Port = int(port)
	}
	if cmd.Bool("no-watch") {
		cfg.Watch.Enabled = false
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func buildStep(index, shortcuts bool) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return internal.Build(ctx, internal.WithConfig(cfg), internal.WithBuildSteps(index, shortcuts))
	}
}

func list(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if src := cmd.String("data"); src != "" {
		cfg.Site.DataURL = src
	}
	return internal.List(ctx,
		internal.WithConfig(cfg),
		internal.WithLogOutput(os.Stderr),
		internal.WithFilter(cmd.String("query"), cmd.String("lv1"), cmd.String("lv2")),
		internal.WithListing(listing.Options{
			Tree:    cmd.Bool("tree"),
			Summary: cmd.Bool("summary"),
		}),
	)
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func main() {
	cmd := &cli.Command{
		Name:   "shiori",
		Usage:  "Build and preview a categorized study blog: metadata index, redirect pages and post list",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (defaults apply when missing)",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "docs",
				Usage: "Override site.docs_dir",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Build once, then serve the preview API and static site with live rebuilds",
				Action: serve,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Override app.http.port"},
					&cli.BoolFlag{Name: "no-watch", Usage: "Disable rebuilds on metadata changes"},
				},
			},
			{
				Name:   "build",
				Usage:  "Write index.json and the redirect pages",
				Action: buildStep(true, true),
			},
			{
				Name:   "index",
				Usage:  "Write index.json only",
				Action: buildStep(true, false),
			},
			{
				Name:   "shortcuts",
				Usage:  "Write the redirect pages only",
				Action: buildStep(false, true),
			},
			{
				Name:   "list",
				Usage:  "Print the post list, optionally filtered",
				Action: list,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive text query"},
					&cli.StringFlag{Name: "lv1", Usage: "Primary category"},
					&cli.StringFlag{Name: "lv2", Usage: "Secondary category"},
					&cli.StringFlag{Name: "data", Usage: "Index URL or file (overrides site.data_url)"},
					&cli.BoolFlag{Name: "tree", Usage: "Print the category tree"},
					&cli.BoolFlag{Name: "summary", Usage: "Include post summaries"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: mcp,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
