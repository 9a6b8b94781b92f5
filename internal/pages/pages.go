// Package pages serves the embedded checkout and payment result pages.
package pages

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
)

// Page names.
const (
	Index   = "index.html"
	Success = "payment-success.html"
	Failure = "payment-failure.html"
)

//go:embed static/*.html
var staticFS embed.FS

// Set holds the rendered pages in memory.
type Set struct {
	pages map[string][]byte
}

// Load reads every page from the embedded filesystem.
func Load() (*Set, error) {
	return load(staticFS, "static")
}

func load(fsys fs.FS, dir string) (*Set, error) {
	set := &Set{pages: make(map[string][]byte, 3)}
	for _, name := range []string{Index, Success, Failure} {
		data, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("load page %s: %w", name, err)
		}
		set.pages[name] = data
	}
	return set, nil
}

// Write renders page with status. Result pages are never cached.
func (s *Set) Write(w http.ResponseWriter, status int, page string) {
	data, ok := s.pages[page]
	if !ok {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Home serves the landing page.
func (s *Set) Home(w http.ResponseWriter, _ *http.Request) {
	s.Write(w, http.StatusOK, Index)
}
