package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// SiteHandler serves the built static site, including the generated
// redirect pages, from a docs directory.
type SiteHandler struct {
	root string
}

// NewSiteHandler creates a handler rooted at the docs directory.
func NewSiteHandler(root string) *SiteHandler {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &SiteHandler{root: abs}
}

// resolve maps a URL path to a file under root. Directories resolve to their
// index.html. Paths escaping root are rejected.
func (h *SiteHandler) resolve(urlPath string) (string, bool) {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(urlPath, "/"))
	abs := filepath.Join(h.root, filepath.FromSlash(cleaned))
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) && abs != h.root {
		return "", false
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		abs = filepath.Join(abs, "index.html")
		if _, err := os.Stat(abs); err != nil {
			return "", false
		}
	}
	return abs, true
}

// ServeHTTP handles GET /*.
func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	abs, ok := h.resolve(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if strings.HasSuffix(abs, "index.json") {
		w.Header().Set("Cache-Control", "no-store")
	}
	http.ServeFile(w, r, abs)
}
