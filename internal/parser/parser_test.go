package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/shiori/internal/apperr"
)

func TestParse_Full(t *testing.T) {
	input := []byte(`{
		"id": "abc",
		"timestamp": " 2024-03-01 ",
		"title": "Hello",
		"summary": "World",
		"tags": ["go", " web ", ""],
		"category_lv1": "ストラテジ系",
		"category_lv2": "財務",
		"post_path": "/posts/abc"
	}`)
	m, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "abc" || m.Timestamp != "2024-03-01" || m.Title != "Hello" {
		t.Errorf("meta = %+v", m)
	}
	if m.PostPath != "posts/abc/" {
		t.Errorf("post_path = %q, want %q", m.PostPath, "posts/abc/")
	}
	if len(m.Tags) != 2 || m.Tags[1] != "web" {
		t.Errorf("tags = %v, want [go web]", m.Tags)
	}
	if err := ValidateForIndex(m); err != nil {
		t.Errorf("ValidateForIndex: %v", err)
	}
	if err := ValidateForShortcut(m); err != nil {
		t.Errorf("ValidateForShortcut: %v", err)
	}
}

func TestParse_IDFallback(t *testing.T) {
	m, err := Parse([]byte(`{"dr":"legacy-dir"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "legacy-dir" {
		t.Errorf("id = %q, want legacy-dir", m.ID)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"id": `))
	if !errors.Is(err, apperr.ErrInvalidMeta) {
		t.Errorf("err = %v, want ErrInvalidMeta", err)
	}
}

func TestParse_NotAnObject(t *testing.T) {
	_, err := Parse([]byte(`["id"]`))
	if !errors.Is(err, apperr.ErrInvalidMeta) {
		t.Errorf("err = %v, want ErrInvalidMeta", err)
	}
}

func TestValidateForIndex_MissingFields(t *testing.T) {
	m, err := Parse([]byte(`{"id":"x","title":"T"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err = ValidateForIndex(m)
	if !errors.Is(err, apperr.ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}
	if !strings.Contains(err.Error(), "timestamp") || !strings.Contains(err.Error(), "post_path") {
		t.Errorf("error should name the missing fields: %v", err)
	}
}

func TestValidateForShortcut_MissingCategory(t *testing.T) {
	m, _ := Parse([]byte(`{"id":"x","category_lv1":"ストラテジ系"}`))
	if err := ValidateForShortcut(m); !errors.Is(err, apperr.ErrMissingFields) {
		t.Errorf("err = %v, want ErrMissingFields", err)
	}
}

func TestValidateID(t *testing.T) {
	for _, id := range []string{"abc", "sql-joins", "post_2024.01", "A1"} {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v, want nil", id, err)
		}
	}
	for _, id := range []string{"", "..", "../..", "a/b", `a\b`, ".hidden", "-x", "日本語", "a b"} {
		if err := ValidateID(id); !errors.Is(err, apperr.ErrInvalidMeta) {
			t.Errorf("ValidateID(%q) = %v, want ErrInvalidMeta", id, err)
		}
	}
}

func TestValidateForShortcut_PathLikeID(t *testing.T) {
	m, _ := Parse([]byte(`{"id":"../..","category_lv1":"ストラテジ系","category_lv2":"財務"}`))
	if err := ValidateForShortcut(m); !errors.Is(err, apperr.ErrInvalidMeta) {
		t.Errorf("err = %v, want ErrInvalidMeta", err)
	}
}
