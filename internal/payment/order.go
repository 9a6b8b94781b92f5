package payment

import (
	"context"
	"fmt"
)

// Currency is the only currency orders are created in.
const Currency = "INR"

// minorUnitsPerMajor converts rupees to paise.
const minorUnitsPerMajor = 100

// OrderOptions is the payload sent to the gateway when creating an order.
// Amount is expressed in minor units.
type OrderOptions struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order is the gateway's order object. It is passed back to clients verbatim.
type Order map[string]any

// ID returns the gateway order id when present.
func (o Order) ID() string {
	if o == nil {
		return ""
	}
	if id, ok := o["id"].(string); ok {
		return id
	}
	return ""
}

// OrderCreator is the capability required from the payment gateway.
type OrderCreator interface {
	CreateOrder(ctx context.Context, opts OrderOptions) (Order, error)
}

// NewOrderOptions derives gateway options for an amount in major units.
func NewOrderOptions(amount int64, receipt string) (OrderOptions, error) {
	if amount == 0 {
		return OrderOptions{}, ErrAmountRequired
	}
	if amount < 0 {
		return OrderOptions{}, fmt.Errorf("%w: %d", ErrAmountInvalid, amount)
	}
	if amount > maxAmount {
		return OrderOptions{}, fmt.Errorf("%w: amount too large", ErrAmountInvalid)
	}
	return OrderOptions{
		Amount:   amount * minorUnitsPerMajor,
		Currency: Currency,
		Receipt:  receipt,
	}, nil
}

const maxAmount = int64(1<<63-1) / minorUnitsPerMajor
