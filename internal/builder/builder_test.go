package builder

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/storage"
	"github.com/starford/shiori/internal/testutil"
)

func testBuilder(t *testing.T, opts ...Option) (*Builder, *storage.FS) {
	t.Helper()
	site := testutil.TestSite(t)
	opts = append([]Option{WithLogger(testutil.QuietLogger())}, opts...)
	return New(site, testutil.TestCatalog(t), opts...), site
}

func writeItem(t *testing.T, site storage.Provider, name, body string) {
	t.Helper()
	testutil.WriteItems(t, site, DefaultItemsDir, map[string]string{name: body})
}

func readIndex(t *testing.T, site storage.Provider) []models.Meta {
	t.Helper()
	data, err := site.Read(DefaultIndexPath)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	var out []models.Meta
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("decode index: %v", err)
	}
	return out
}

func TestBuildIndex_MissingDirWritesEmptyArray(t *testing.T) {
	b, site := testBuilder(t)
	rep, err := b.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if rep.Items != 0 {
		t.Errorf("items = %d, want 0", rep.Items)
	}
	data, _ := site.Read(DefaultIndexPath)
	if string(data) != "[]\n" {
		t.Errorf("index = %q, want %q", data, "[]\n")
	}
}

func TestBuildIndex_SortsAndSkips(t *testing.T) {
	b, site := testBuilder(t)
	writeItem(t, site, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"Old","post_path":"/posts/a","tags":"x, y"}`)
	writeItem(t, site, "b.json", `{"dr":"b","timestamp":"2024-03-01","title":"New","post_path":"posts/b/","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)
	writeItem(t, site, "broken.json", `{not json`)
	writeItem(t, site, "partial.json", `{"id":"p","timestamp":"2024-02-01"}`)

	rep, err := b.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if rep.Items != 2 || rep.Skipped != 2 {
		t.Errorf("report = %+v, want 2 items, 2 skipped", rep)
	}

	got := readIndex(t, site)
	want := []models.Meta{
		{ID: "b", Timestamp: "2024-03-01", Title: "New", Tags: []string{}, CategoryLv1: "テクノロジ系", CategoryLv2: "データベース", PostPath: "posts/b/"},
		{ID: "a", Timestamp: "2024-01-01", Title: "Old", Tags: []string{"x", "y"}, PostPath: "posts/a/"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("index mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildIndex_OutputFormat(t *testing.T) {
	b, site := testBuilder(t)
	writeItem(t, site, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"Q&A <1>","post_path":"p/a"}`)
	if _, err := b.BuildIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	data, _ := site.Read(DefaultIndexPath)
	s := string(data)
	if !strings.HasPrefix(s, "[\n  {\n    \"id\": \"a\",\n    \"timestamp\"") {
		t.Errorf("unexpected layout:\n%s", s)
	}
	if !strings.HasSuffix(s, "]\n") {
		t.Error("index should end with a newline")
	}
	if !strings.Contains(s, `"Q&A <1>"`) {
		t.Error("html characters should not be escaped")
	}
}

func TestBuildIndex_Incremental(t *testing.T) {
	b, site := testBuilder(t)
	writeItem(t, site, "a.json", `{"id":"a","timestamp":"2024-01-01","title":"A","post_path":"p/a"}`)
	if _, err := b.BuildIndex(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(b.ItemsDir(), "a.json")); err != nil {
		t.Fatal(err)
	}
	writeItem(t, site, "c.json", `{"id":"c","timestamp":"2024-05-01","title":"C","post_path":"p/c"}`)

	rep, err := b.BuildIndex(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := readIndex(t, site)
	if rep.Items != 1 || len(got) != 1 || got[0].ID != "c" {
		t.Errorf("index = %+v, want only c", got)
	}
}

func TestSortEntries_InvalidLast(t *testing.T) {
	entries := []models.Meta{
		{ID: "bad", Timestamp: "someday"},
		{ID: "old", Timestamp: "2023-01-01"},
		{ID: "new", Timestamp: "2024-01-01T10:00:00Z"},
	}
	SortEntries(entries)
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"new", "old", "bad"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateShortcuts(t *testing.T) {
	b, site := testBuilder(t, WithBasePath("/blog"))
	writeItem(t, site, "ok.json", `{"id":"abc","category_lv1":"テクノロジ系","category_lv2":"データベース"}`)
	writeItem(t, site, "unknown.json", `{"id":"u","category_lv1":"その他","category_lv2":"雑記"}`)
	writeItem(t, site, "nocat.json", `{"id":"n"}`)
	writeItem(t, site, "broken.json", `[`)

	rep, err := b.GenerateShortcuts(context.Background())
	if err != nil {
		t.Fatalf("GenerateShortcuts: %v", err)
	}
	if rep.Generated != 1 || rep.Skipped != 3 {
		t.Errorf("report = %+v, want 1 generated, 3 skipped", rep)
	}

	data, err := site.Read("technology/database/abc/index.html")
	if err != nil {
		t.Fatalf("redirect page missing: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		`content="0; url=/blog/posts/abc/"`,
		`<link rel="canonical" href="/blog/posts/abc/" />`,
		`<meta name="robots" content="noindex" />`,
		`<a href="/blog/posts/abc/">/blog/posts/abc/</a>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("redirect page missing %q:\n%s", want, html)
		}
	}
}

func TestGenerateShortcuts_RejectsPathLikeIDs(t *testing.T) {
	b, site := testBuilder(t)
	if err := site.Write("index.html", []byte("HOME PAGE")); err != nil {
		t.Fatal(err)
	}
	if err := site.Write("posts/foo/index.html", []byte("POST")); err != nil {
		t.Fatal(err)
	}
	writeItem(t, site, "up.json", `{"id":"../..","category_lv1":"ストラテジ系","category_lv2":"財務"}`)
	writeItem(t, site, "post.json", `{"id":"../../posts/foo","category_lv1":"ストラテジ系","category_lv2":"財務"}`)
	writeItem(t, site, "slash.json", `{"id":"a/b","category_lv1":"ストラテジ系","category_lv2":"財務"}`)
	writeItem(t, site, "ok.json", `{"id":"ok.v2","category_lv1":"ストラテジ系","category_lv2":"財務"}`)

	rep, err := b.GenerateShortcuts(context.Background())
	if err != nil {
		t.Fatalf("GenerateShortcuts: %v", err)
	}
	if rep.Generated != 1 || rep.Skipped != 3 {
		t.Errorf("report = %+v, want 1 generated, 3 skipped", rep)
	}
	for file, want := range map[string]string{"index.html": "HOME PAGE", "posts/foo/index.html": "POST"} {
		data, err := site.Read(file)
		if err != nil {
			t.Fatalf("read %s: %v", file, err)
		}
		if string(data) != want {
			t.Errorf("%s = %q, want it untouched", file, data)
		}
	}
	if _, err := site.Read("strategy/finance/ok.v2/index.html"); err != nil {
		t.Errorf("valid shortcut missing: %v", err)
	}
}

func TestGenerateShortcuts_MissingDir(t *testing.T) {
	b, _ := testBuilder(t)
	rep, err := b.GenerateShortcuts(context.Background())
	if err != nil {
		t.Fatalf("GenerateShortcuts: %v", err)
	}
	if rep != (ShortcutReport{}) {
		t.Errorf("report = %+v, want zero", rep)
	}
}

func TestRedirectTarget(t *testing.T) {
	tests := []struct{ base, want string }{
		{"", "/posts/x/"},
		{"/site", "/site/posts/x/"},
		{"/site/", "/site/posts/x/"},
	}
	for _, tt := range tests {
		if got := RedirectTarget(tt.base, "x"); got != tt.want {
			t.Errorf("RedirectTarget(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestWatch_DebouncesJSONChanges(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, 50*time.Millisecond, testutil.QuietLogger(), func(context.Context) { calls.Add(1) })
	}()
	time.Sleep(100 * time.Millisecond)

	for i := range 3 {
		_ = os.WriteFile(filepath.Join(dir, "a.json"), []byte{byte('0' + i)}, 0o644)
	}
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)

	deadline := time.Now().Add(2 * time.Second)
	for calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)
	if n := calls.Load(); n != 1 {
		t.Errorf("callback fired %d times, want 1", n)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
