package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type testConfig struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (c *testConfig) Validate() error {
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	return nil
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SHIORI_TEST_NAME", "preview")
	p := writeFile(t, "name: ${SHIORI_TEST_NAME}\nport: 9090\n")

	cfg := testConfig{}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "preview" || cfg.Port != 9090 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_Validates(t *testing.T) {
	p := writeFile(t, "name: x\nport: 0\n")
	err := Load(p, &testConfig{})
	if err == nil || !strings.Contains(err.Error(), "port must be positive") {
		t.Errorf("err = %v, want validation error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &testConfig{}); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := testConfig{Name: "default", Port: 8080}
	loaded, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &cfg)
	if err != nil || loaded {
		t.Fatalf("missing file: loaded=%v err=%v", loaded, err)
	}
	if cfg.Name != "default" {
		t.Errorf("defaults changed: %+v", cfg)
	}

	p := writeFile(t, "port: 7070\n")
	loaded, err = LoadOptional(p, &cfg)
	if err != nil || !loaded {
		t.Fatalf("existing file: loaded=%v err=%v", loaded, err)
	}
	if cfg.Port != 7070 || cfg.Name != "default" {
		t.Errorf("cfg = %+v, want port overridden and name kept", cfg)
	}

	bad := testConfig{}
	if _, err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &bad); err == nil {
		t.Error("invalid defaults should fail validation")
	}
}

func TestExpandEnv_Defaults(t *testing.T) {
	t.Setenv("SHIORI_TEST_SET", "on")
	t.Setenv("SHIORI_TEST_EMPTY", "")

	tests := []struct {
		in, want string
	}{
		{"${SHIORI_TEST_SET}", "on"},
		{"${SHIORI_TEST_SET:-off}", "on"},
		{"${SHIORI_TEST_EMPTY:-fallback}", "fallback"},
		{"${SHIORI_TEST_UNSET_XYZ:-8080}", "8080"},
		{"${SHIORI_TEST_UNSET_XYZ}", ""},
		{"$SHIORI_TEST_SET/x", "on/x"},
	}
	for _, tt := range tests {
		if got := ExpandEnv(tt.in); got != tt.want {
			t.Errorf("ExpandEnv(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoad_DefaultFromFile(t *testing.T) {
	p := writeFile(t, "name: ${SHIORI_TEST_UNSET_XYZ:-local}\nport: ${SHIORI_TEST_UNSET_XYZ:-8081}\n")
	cfg := testConfig{}
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "local" || cfg.Port != 8081 {
		t.Errorf("cfg = %+v", cfg)
	}
}
