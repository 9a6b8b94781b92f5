package pages

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedPages(t *testing.T) {
	set, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rr := httptest.NewRecorder()
	set.Home(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rr.Body.String(), "/create-order") {
		t.Fatal("landing page should drive order creation")
	}
}

func TestWriteUsesStatus(t *testing.T) {
	set, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rr := httptest.NewRecorder()
	set.Write(rr, http.StatusBadRequest, Failure)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatal("result pages must not be cached")
	}
}

func TestLoadMissingPage(t *testing.T) {
	fsys := fstest.MapFS{"static/index.html": {Data: []byte("x")}}
	if _, err := load(fsys, "static"); err == nil {
		t.Fatal("expected error for missing result pages")
	}
}
