package internal

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/starford/shiori/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if got := cfg.Site.IndexLocation(); got != filepath.Join("docs", "data", "index.json") {
		t.Errorf("IndexLocation = %q", got)
	}
	if got := cfg.Site.ItemsPath(); got != filepath.Join("docs", "data", "new_items") {
		t.Errorf("ItemsPath = %q", got)
	}
}

func TestSiteConfig_DataURLOverridesIndex(t *testing.T) {
	cfg := NewDefaultConfig().Site
	cfg.DataURL = "https://example.com/data/index.json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("https data_url should pass: %v", err)
	}
	if cfg.IndexLocation() != cfg.DataURL {
		t.Errorf("IndexLocation = %q, want data_url", cfg.IndexLocation())
	}
}

func TestSiteConfig_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SiteConfig)
		field  string
	}{
		{"empty docs", func(c *SiteConfig) { c.DocsDir = "" }, "DocsDir"},
		{"absolute items", func(c *SiteConfig) { c.ItemsDir = "/etc" }, "ItemsDir"},
		{"escaping index", func(c *SiteConfig) { c.IndexPath = "../index.json" }, "IndexPath"},
		{"relative base", func(c *SiteConfig) { c.BasePath = "blog" }, "BasePath"},
		{"ftp data", func(c *SiteConfig) { c.DataURL = "ftp://example.com/index.json" }, "DataURL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig().Site
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestWatchConfig_NegativeDebounce(t *testing.T) {
	cfg := WatchConfig{Debounce: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Error("negative debounce should fail")
	}
}

func TestEventsConfig_Bounds(t *testing.T) {
	if err := (&EventsConfig{History: -1}).Validate(); err == nil {
		t.Error("negative history should fail")
	}
	if err := (&EventsConfig{Heartbeat: -time.Second}).Validate(); err == nil {
		t.Error("negative heartbeat should fail")
	}
	if err := (&EventsConfig{}).Validate(); err != nil {
		t.Errorf("zero events config: %v", err)
	}
}

func TestConfigFile_Loads(t *testing.T) {
	t.Setenv("SHIORI_AUTH_TOKEN", "")
	cfg := NewDefaultConfig()
	loaded, err := config.LoadOptional("../config/config.yaml", cfg)
	if err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if !loaded {
		t.Fatal("config/config.yaml not found")
	}
	if cfg.Events.History != 16 || cfg.App.HTTP.ShutdownTimeout != 10*time.Second {
		t.Errorf("events = %+v, http = %+v", cfg.Events, cfg.App.HTTP)
	}
}
