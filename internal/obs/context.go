package obs

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route returns the chi pattern matched for r. Middlewares call it after the
// handler returns, once routing has filled in the pattern; it is empty for
// requests that matched nothing.
func Route(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
