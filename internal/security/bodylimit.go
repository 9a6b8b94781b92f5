package security

import (
	"bytes"
	"io"
	"net/http"

	"github.com/noah-isme/razorpay-checkout/internal/common"
)

// BodyLimit caps request payloads. Checkout bodies are tiny, so the whole
// body is buffered once here and handlers read it from memory.
type BodyLimit struct {
	Max int64
	// Reject, when set, answers oversized or unreadable bodies instead of
	// the JSON 413/400 envelopes.
	Reject http.HandlerFunc
}

// Middleware rejects requests exceeding the configured limit with HTTP 413.
func (b BodyLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.Max <= 0 || r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}
		if r.ContentLength > b.Max {
			b.tooLarge(w, r)
			return
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, b.Max+1))
		_ = r.Body.Close()
		if err != nil {
			if b.Reject != nil {
				b.Reject(w, r)
				return
			}
			common.JSONError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body", nil)
			return
		}
		if int64(len(buf)) > b.Max {
			b.tooLarge(w, r)
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(buf))
		r.ContentLength = int64(len(buf))
		next.ServeHTTP(w, r)
	})
}

func (b BodyLimit) tooLarge(w http.ResponseWriter, r *http.Request) {
	if b.Reject != nil {
		b.Reject(w, r)
		return
	}
	common.JSONError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request entity too large", nil)
}
