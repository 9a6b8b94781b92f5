package payment

import (
	"context"

	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

// Guarded puts a circuit breaker in front of a gateway that has none of its
// own. The breaker should classify outcomes with GatewayAnswered.
type Guarded struct {
	Next    OrderCreator
	Breaker *resilience.Breaker
}

// CreateOrder implements OrderCreator.
func (g Guarded) CreateOrder(ctx context.Context, opts OrderOptions) (Order, error) {
	if g.Breaker == nil {
		return g.Next.CreateOrder(ctx, opts)
	}
	if !g.Breaker.Allow(ctx) {
		return nil, resilience.ErrOpenCircuit
	}
	order, err := g.Next.CreateOrder(ctx, opts)
	g.Breaker.Record(ctx, err)
	return order, err
}
