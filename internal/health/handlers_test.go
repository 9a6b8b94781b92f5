package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/razorpay-checkout/internal/health"
)

type stubChecker struct {
	gatewayErr error
	redisErr   error
}

func (s stubChecker) PingGateway(context.Context) error { return s.gatewayErr }

func (s stubChecker) PingRedis(context.Context, time.Duration) error { return s.redisErr }

func ready(t *testing.T, h health.Handler) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()
	rr := httptest.NewRecorder()
	h.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	var status map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return rr, status
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadySuccess(t *testing.T) {
	rr, status := ready(t, health.Handler{Checker: stubChecker{}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, "ok", status["gateway"])
	require.Equal(t, "ok", status["redis"])
}

func TestReadyWithoutRedis(t *testing.T) {
	rr, status := ready(t, health.Handler{Checker: stubChecker{redisErr: health.ErrDisabled}})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "disabled", status["redis"])
}

func TestReadyFailures(t *testing.T) {
	rr, status := ready(t, health.Handler{Checker: stubChecker{gatewayErr: errors.New("circuit open")}})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "circuit open", status["gateway"])
	require.Equal(t, "degraded", status["status"])

	rr, _ = ready(t, health.Handler{Checker: stubChecker{redisErr: errors.New("redis down")}})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	rr, _ = ready(t, health.Handler{})
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestReadinessAfterShutdown(t *testing.T) {
	h := health.Handler{Checker: stubChecker{}}
	t.Cleanup(func() { health.SetReady(true) })

	health.SetReady(true)
	rr, _ := ready(t, h)
	require.Equal(t, http.StatusOK, rr.Code)

	health.SetReady(false)
	rr, status := ready(t, h)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "shutting_down", status["status"])
}
