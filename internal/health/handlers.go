package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/razorpay-checkout/internal/common"
)

// ErrDisabled is returned by probes for optional dependencies that are not
// configured. It does not fail readiness.
var ErrDisabled = errors.New("disabled")

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingGateway(ctx context.Context) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the process-wide readiness flag. It is cleared when
// graceful shutdown starts so load balancers stop routing new checkouts.
func SetReady(v bool) { ready.Store(v) }

// IsReady reports the readiness flag.
func IsReady() bool { return ready.Load() }

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker      Checker
	RedisTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on the shutdown flag and dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !IsReady() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
		return
	}
	ctx := r.Context()
	gateway := probeStatus(h.Checker.PingGateway(ctx))
	redis := probeStatus(h.Checker.PingRedis(ctx, h.redisTimeout()))

	status := map[string]string{
		"status":  "ok",
		"gateway": gateway,
		"redis":   redis,
	}
	code := http.StatusOK
	if !healthy(gateway) || !healthy(redis) {
		status["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func probeStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDisabled):
		return ErrDisabled.Error()
	default:
		return err.Error()
	}
}

func healthy(status string) bool {
	return status == "ok" || status == ErrDisabled.Error()
}

func (h Handler) redisTimeout() time.Duration {
	if h.RedisTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.RedisTimeout
}
