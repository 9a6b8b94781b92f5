package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/razorpay-checkout/internal/common"
	"github.com/noah-isme/razorpay-checkout/internal/health"
	"github.com/noah-isme/razorpay-checkout/internal/obs"
	"github.com/noah-isme/razorpay-checkout/internal/pages"
	"github.com/noah-isme/razorpay-checkout/internal/payment"
	"github.com/noah-isme/razorpay-checkout/internal/ratelimit"
	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

// Dependencies enumerates everything the HTTP surface needs. Optional
// collaborators are left nil to disable the feature they back.
type Dependencies struct {
	Logger   zerolog.Logger
	Payments *payment.Handler
	Pages    *pages.Set
	Health   health.Handler

	// Redis enables idempotency locks on order creation.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration

	Limiter         ratelimit.Limiter
	RateLimitWindow time.Duration
	RateLimitMax    int

	// TrustedProxies may report the client address in forwarding headers.
	TrustedProxies     common.TrustedProxies
	CORSAllowedOrigins []string
	BodyLimitBytes     int64
	SecurityHeaders    bool
	HSTS               bool

	Metrics        *obs.HTTPMetrics
	MetricsHandler http.Handler
	Tracing        bool
	Pprof          PprofConfig
}

// PprofConfig controls the profiling endpoints. They are only mounted when
// enabled and protected by basic auth credentials.
type PprofConfig struct {
	Enabled bool
	User    string
	Pass    string
}

// Readiness probes the gateway breaker and the optional Redis.
type Readiness struct {
	Breaker *resilience.Breaker
	Redis   redis.Cmdable
}

var errCircuitOpen = errors.New("circuit open")

// PingGateway fails while the gateway breaker is open. Once the cool-off
// elapses the breaker reports half-open and the instance is ready again.
func (c Readiness) PingGateway(context.Context) error {
	if c.Breaker != nil && c.Breaker.State() == resilience.Open {
		return errCircuitOpen
	}
	return nil
}

// PingRedis checks Redis connectivity when it is configured.
func (c Readiness) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.Redis == nil {
		return health.ErrDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Redis.Ping(ctx).Err()
}
