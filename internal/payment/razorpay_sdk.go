package payment

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	rzperrors "github.com/razorpay/razorpay-go/errors"
)

// orderResource is the slice of the razorpay-go client used here.
type orderResource interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpaySDK creates orders through the official razorpay-go client. The SDK
// has no context support, so cancellation abandons the in-flight call and the
// SDK's own HTTP timeout bounds the goroutine.
type RazorpaySDK struct {
	orders orderResource
}

// NewRazorpaySDK builds an SDK-backed gateway.
func NewRazorpaySDK(keyID, keySecret string) *RazorpaySDK {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpaySDK{orders: client.Order}
}

type sdkResult struct {
	order map[string]interface{}
	err   error
}

// CreateOrder implements OrderCreator.
func (g *RazorpaySDK) CreateOrder(ctx context.Context, opts OrderOptions) (Order, error) {
	data := map[string]interface{}{
		"amount":   opts.Amount,
		"currency": opts.Currency,
		"receipt":  opts.Receipt,
	}
	done := make(chan sdkResult, 1)
	go func() {
		order, err := g.orders.Create(data, nil)
		done <- sdkResult{order: order, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("razorpay sdk create order: %w", ctx.Err())
	case res := <-done:
		if res.err != nil {
			return nil, sdkError(res.err)
		}
		if res.order == nil {
			return nil, errors.New("razorpay sdk create order: empty order response")
		}
		return Order(res.order), nil
	}
}

// sdkError keeps the gateway's own answers as GatewayError and wraps anything
// else, such as dial failures, so it is neither shown to clients nor counted
// as a healthy gateway.
func sdkError(err error) error {
	var (
		badRequest *rzperrors.BadRequestError
		server     *rzperrors.ServerError
		gateway    *rzperrors.GatewayError
	)
	switch {
	case errors.As(err, &badRequest):
		return &GatewayError{Code: codeBadRequest, Description: badRequest.Message}
	case errors.As(err, &server):
		return &GatewayError{Code: codeServer, Description: server.Message}
	case errors.As(err, &gateway):
		return &GatewayError{Code: codeGateway, Description: gateway.Message}
	default:
		return fmt.Errorf("razorpay sdk create order: %w", err)
	}
}
