package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/noah-isme/razorpay-checkout/internal/common"
	"github.com/noah-isme/razorpay-checkout/internal/obs"
	"github.com/noah-isme/razorpay-checkout/internal/ratelimit"
	"github.com/noah-isme/razorpay-checkout/internal/security"
)

// NewRouter assembles the HTTP surface.
func NewRouter(d Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(d.TrustedProxies.RealIP)
	r.Use(middleware.Recoverer)
	if d.Tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.Metrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.Metrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(d.CORSAllowedOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", common.IdempotencyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		MaxAge:         300,
	}))
	r.Use(security.Headers{
		Enable:                d.SecurityHeaders,
		EnableHSTS:            d.HSTS,
		ContentSecurityPolicy: security.CheckoutCSP,
	}.Middleware)

	r.NotFound(common.NotFound)
	r.MethodNotAllowed(common.MethodNotAllowed)

	r.Get("/health/live", d.Health.Live)
	r.Get("/health/ready", d.Health.Ready)
	if d.MetricsHandler != nil {
		r.Handle("/metrics", d.MetricsHandler)
	}
	if d.Pprof.Enabled && d.Pprof.User != "" {
		r.Route("/debug", func(dbg chi.Router) {
			dbg.Use(middleware.BasicAuth("restricted", map[string]string{d.Pprof.User: d.Pprof.Pass}))
			dbg.Mount("/", middleware.Profiler())
		})
	}

	r.Get("/", d.Pages.Home)
	r.Get("/get-razorpay-key", d.Payments.Key)

	limited := ratelimit.Handler{
		Limiter: d.Limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ClientIPKey,
			Window: d.RateLimitWindow,
			Max:    d.RateLimitMax,
		},
		OnError: func(err error) {
			d.Logger.Warn().Err(err).Msg("rate limiter unavailable")
		},
	}
	r.Group(func(w chi.Router) {
		w.Use(limited.Middleware)

		create := w.With(security.BodyLimit{Max: d.BodyLimitBytes}.Middleware)
		if d.Redis != nil {
			create = create.With(common.Idem{R: d.Redis, TTL: d.IdempotencyTTL}.Middleware)
		}
		create.Post("/create-order", d.Payments.CreateOrder)

		// every refused callback gets the failure page, never a JSON error
		w.With(security.BodyLimit{Max: d.BodyLimitBytes, Reject: d.Payments.RejectCallback}.Middleware).
			Post("/payment-verification", d.Payments.Verify)
	})

	return r
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
