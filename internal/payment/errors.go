package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/noah-isme/razorpay-checkout/internal/common"
	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

// Error codes surfaced through common.AppError.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeUpstream           = "UPSTREAM_ERROR"
	CodeVerificationFailed = "VERIFICATION_FAILED"
)

var (
	// ErrAmountRequired is returned when the amount is absent or zero.
	ErrAmountRequired = errors.New("amount is required")
	// ErrAmountInvalid is returned for negative, fractional or oversized amounts.
	ErrAmountInvalid = errors.New("amount must be a positive integer")
)

// GatewayError is the client-safe summary of a failed gateway call.
type GatewayError struct {
	StatusCode  int    `json:"status,omitempty"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Field       string `json:"field,omitempty"`
}

func (e *GatewayError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("gateway error %s (status %d)", e.Code, e.StatusCode)
	}
	return fmt.Sprintf("gateway error %s (status %d): %s", e.Code, e.StatusCode, e.Description)
}

// Codes the gateway uses in its error body.
const (
	codeBadRequest = "BAD_REQUEST_ERROR"
	codeServer     = "SERVER_ERROR"
	codeGateway    = "GATEWAY_ERROR"
)

// GatewayAnswered reports whether a call outcome shows the gateway is
// reachable and working: success, a rejected request, or a caller that gave
// up. Transport failures, timeouts and gateway server errors do not count.
func GatewayAnswered(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) {
		return false
	}
	if gwErr.StatusCode > 0 {
		return gwErr.StatusCode < http.StatusInternalServerError
	}
	return gwErr.Code == codeBadRequest
}

func invalidRequest(err error) *common.AppError {
	msg := "Amount is required"
	if errors.Is(err, ErrAmountInvalid) {
		msg = "Amount must be a positive integer"
	}
	return common.NewAppError(CodeInvalidRequest, msg, http.StatusBadRequest, err)
}

const upstreamMessage = "Error creating order"

func upstreamError(err error) *common.AppError {
	return common.NewAppError(CodeUpstream, upstreamMessage, http.StatusInternalServerError, err).
		WithDetails(summarise(err))
}

// summarise reduces an upstream failure to what may be shown to a client.
// Transport errors are reported by class only.
func summarise(err error) GatewayError {
	var gwErr *GatewayError
	switch {
	case errors.As(err, &gwErr):
		return *gwErr
	case errors.Is(err, context.DeadlineExceeded):
		return GatewayError{Code: "UPSTREAM_TIMEOUT", Description: "payment gateway did not respond in time"}
	case errors.Is(err, resilience.ErrOpenCircuit):
		return GatewayError{Code: "UPSTREAM_UNAVAILABLE", Description: "payment gateway temporarily unavailable"}
	default:
		return GatewayError{Code: "UPSTREAM_UNAVAILABLE", Description: "payment gateway request failed"}
	}
}
