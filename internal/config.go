package internal

import (
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Site   SiteConfig        `yaml:"site"`
	SQLite SQLiteConfig      `yaml:"sqlite"`
	Auth   AuthConfig        `yaml:"auth"`
	Watch  WatchConfig       `yaml:"watch"`
	Events EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Watch.Validate(); err != nil {
		return err
	}
	if err := c.Events.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.ShutdownTimeout, validation.Min(time.Duration(0))),
	)
}

// SiteConfig locates the static site and its build inputs.
//
// ItemsDir and IndexPath are relative to DocsDir. DataURL, when set,
// overrides where the list data is read from (an http(s) URL or a file
// path); otherwise the built index under DocsDir is used.
type SiteConfig struct {
	DocsDir   string `yaml:"docs_dir"`
	ItemsDir  string `yaml:"items_dir"`
	IndexPath string `yaml:"index_path"`
	BasePath  string `yaml:"base_path"`
	DataURL   string `yaml:"data_url"`
}

// Validate validates the site configuration.
func (c *SiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DocsDir, validation.Required),
		validation.Field(&c.ItemsDir, validation.Required, validation.By(siteRelative)),
		validation.Field(&c.IndexPath, validation.Required, validation.By(siteRelative)),
		validation.Field(&c.BasePath, validation.By(basePath)),
		validation.Field(&c.DataURL, validation.By(dataLocation)),
	)
}

// IndexLocation returns where the list data is loaded from.
func (c *SiteConfig) IndexLocation() string {
	if c.DataURL != "" {
		return c.DataURL
	}
	return filepath.Join(c.DocsDir, filepath.FromSlash(c.IndexPath))
}

// ItemsPath returns the metadata directory on disk.
func (c *SiteConfig) ItemsPath() string {
	return filepath.Join(c.DocsDir, filepath.FromSlash(c.ItemsDir))
}

func siteRelative(v any) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	if path.IsAbs(s) || filepath.IsAbs(s) {
		return fmt.Errorf("must be relative to docs_dir")
	}
	if c := path.Clean(filepath.ToSlash(s)); c == ".." || strings.HasPrefix(c, "../") {
		return fmt.Errorf("must stay inside docs_dir")
	}
	return nil
}

func basePath(v any) error {
	s, _ := v.(string)
	if s != "" && !strings.HasPrefix(s, "/") {
		return fmt.Errorf("must start with /")
	}
	return nil
}

func dataLocation(v any) error {
	s, _ := v.(string)
	if !strings.Contains(s, "://") {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}

// SQLiteConfig holds the metadata catalog database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// WatchConfig controls rebuilds on metadata changes while serving.
type WatchConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Debounce time.Duration `yaml:"debounce"`
}

// Validate validates the watch configuration.
func (c *WatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0)), validation.Max(time.Minute)),
	)
}

// EventsConfig tunes the rebuild event stream served at /api/events.
type EventsConfig struct {
	CategoriesThrottle time.Duration `yaml:"categories_throttle"`
	Heartbeat          time.Duration `yaml:"heartbeat"`
	History            int           `yaml:"history"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CategoriesThrottle, validation.Min(time.Duration(0))),
		validation.Field(&c.Heartbeat, validation.Min(time.Duration(0))),
		validation.Field(&c.History, validation.Min(0), validation.Max(1024)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local preview.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port:            8080,
				ShutdownTimeout: 10 * time.Second,
			},
		},
		Site: SiteConfig{
			DocsDir:   "./docs",
			ItemsDir:  "data/new_items",
			IndexPath: "data/index.json",
		},
		SQLite: SQLiteConfig{
			Path: "./.shiori/catalog.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Watch: WatchConfig{
			Enabled:  true,
			Debounce: 300 * time.Millisecond,
		},
		Events: EventsConfig{
			CategoriesThrottle: 2 * time.Second,
			Heartbeat:          30 * time.Second,
			History:            16,
		},
	}
}
