package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

func TestGuardedOpensOnTransportFailures(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{MinRequests: 2, OpenFor: time.Minute, Healthy: GatewayAnswered})
	gw := &fakeGateway{err: errors.New("connection reset")}
	guarded := Guarded{Next: gw, Breaker: breaker}

	for i := 0; i < 2; i++ {
		_, err := guarded.CreateOrder(context.Background(), OrderOptions{Amount: 100})
		require.Error(t, err)
	}
	require.Equal(t, resilience.Open, breaker.State())

	_, err := guarded.CreateOrder(context.Background(), OrderOptions{Amount: 100})
	require.ErrorIs(t, err, resilience.ErrOpenCircuit)
	require.Len(t, gw.recorded(), 2)
}

func TestGuardedTreatsGatewayErrorsAsHealthy(t *testing.T) {
	breaker := resilience.NewBreaker(resilience.BreakerConfig{MinRequests: 1, OpenFor: time.Minute, Healthy: GatewayAnswered})
	guarded := Guarded{Next: &fakeGateway{err: &GatewayError{Code: "BAD_REQUEST_ERROR"}}, Breaker: breaker}

	for i := 0; i < 3; i++ {
		_, err := guarded.CreateOrder(context.Background(), OrderOptions{Amount: 100})
		var gwErr *GatewayError
		require.ErrorAs(t, err, &gwErr)
	}
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestGatewayAnswered(t *testing.T) {
	require.True(t, GatewayAnswered(nil))
	require.True(t, GatewayAnswered(context.Canceled))
	require.True(t, GatewayAnswered(&GatewayError{StatusCode: 400, Code: "BAD_REQUEST_ERROR"}))
	require.True(t, GatewayAnswered(&GatewayError{Code: "BAD_REQUEST_ERROR"}))

	require.False(t, GatewayAnswered(&GatewayError{StatusCode: 502, Code: "GATEWAY_ERROR"}))
	require.False(t, GatewayAnswered(&GatewayError{Code: "SERVER_ERROR"}))
	require.False(t, GatewayAnswered(context.DeadlineExceeded))
	require.False(t, GatewayAnswered(errors.New("connection reset")))
}
