package security

import (
	"net/http"
	"strconv"
)

// CheckoutCSP allows the embedded checkout page to load and frame the
// Razorpay checkout widget and nothing else from third parties.
const CheckoutCSP = "default-src 'self'; " +
	"script-src 'self' 'unsafe-inline' https://checkout.razorpay.com; " +
	"frame-src https://api.razorpay.com https://checkout.razorpay.com; " +
	"connect-src 'self' https://api.razorpay.com https://lumberjack.razorpay.com; " +
	"style-src 'self' 'unsafe-inline'; img-src 'self' data: https:"

// Headers configures common security headers for HTTP responses.
type Headers struct {
	Enable                bool
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	ContentSecurityPolicy string
}

// Middleware attaches standard security headers to each response.
func (h Headers) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Enable {
			next.ServeHTTP(w, r)
			return
		}
		headers := w.Header()
		headers.Set("X-Content-Type-Options", "nosniff")
		headers.Set("X-Frame-Options", "DENY")
		// checkout.js needs the origin to attribute the payment
		headers.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		headers.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		if h.ContentSecurityPolicy != "" {
			headers.Set("Content-Security-Policy", h.ContentSecurityPolicy)
		}
		if h.EnableHSTS && r.TLS != nil {
			maxAge := h.HSTSMaxAge
			if maxAge <= 0 {
				maxAge = 31536000
			}
			value := "max-age=" + strconv.Itoa(maxAge)
			if h.HSTSIncludeSubdomains {
				value += "; includeSubDomains"
			}
			headers.Set("Strict-Transport-Security", value)
		}
		next.ServeHTTP(w, r)
	})
}
