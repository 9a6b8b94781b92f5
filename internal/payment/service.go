package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/razorpay-checkout/internal/obs"
)

const defaultOrderTimeout = 10 * time.Second

// Service creates gateway orders, discloses the public key id and verifies
// checkout callbacks. It holds no per-request state.
type Service struct {
	Gateway    OrderCreator
	ClientName string
	KeyID      string
	Verifier   *Verifier
	Timeout    time.Duration
	Logger     zerolog.Logger
	Receipts   func() string
}

// Config groups Service dependencies.
type Config struct {
	Gateway    OrderCreator
	ClientName string
	KeyID      string
	KeySecret  string
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// NewService validates cfg and builds a Service.
func NewService(cfg Config) (*Service, error) {
	if cfg.Gateway == nil {
		return nil, errors.New("payment: gateway is required")
	}
	if cfg.KeyID == "" {
		return nil, errors.New("payment: key id is required")
	}
	verifier, err := NewVerifier(cfg.KeySecret)
	if err != nil {
		return nil, err
	}
	return &Service{
		Gateway:    cfg.Gateway,
		ClientName: cfg.ClientName,
		KeyID:      cfg.KeyID,
		Verifier:   verifier,
		Timeout:    cfg.Timeout,
		Logger:     cfg.Logger,
		Receipts:   NewReceipt,
	}, nil
}

// CreateOrder converts amount (major units) to a gateway order request and
// returns the created order. Errors are *common.AppError with code
// CodeInvalidRequest or CodeUpstream.
func (s *Service) CreateOrder(ctx context.Context, amount int64) (Order, error) {
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreateOrder")
	defer span.End()

	client := s.clientLabel()
	result := "error"
	start := time.Now()
	defer func() {
		span.SetAttributes(
			attribute.String("payment.client", client),
			attribute.String("payment.order.result", result),
		)
		if obs.OrderCreateTotal != nil {
			obs.OrderCreateTotal.WithLabelValues(client, result).Inc()
		}
	}()

	receipts := s.Receipts
	if receipts == nil {
		receipts = NewReceipt
	}
	opts, err := NewOrderOptions(amount, receipts())
	if err != nil {
		result = "invalid"
		return nil, invalidRequest(err)
	}
	span.SetAttributes(
		attribute.Int64("payment.amount_minor", opts.Amount),
		attribute.String("payment.receipt", opts.Receipt),
	)

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultOrderTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	order, err := s.Gateway.CreateOrder(callCtx, opts)
	if obs.OrderCreateLatency != nil {
		obs.OrderCreateLatency.WithLabelValues(client).Observe(obs.DurationMillis(time.Since(start)))
	}
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "create order failed")
		s.Logger.Error().Err(err).
			Str("client", client).
			Str("receipt", opts.Receipt).
			Int64("amount_minor", opts.Amount).
			Msg("gateway order creation failed")
		return nil, upstreamError(err)
	}
	result = "created"
	span.SetAttributes(attribute.String("payment.order_id", order.ID()))
	s.Logger.Info().
		Str("client", client).
		Str("order_id", order.ID()).
		Str("receipt", opts.Receipt).
		Int64("amount_minor", opts.Amount).
		Msg("order created")
	return order, nil
}

// PublicKey returns the key id checkout widgets need. It is not a secret.
func (s *Service) PublicKey() string {
	return s.KeyID
}

// VerifyPayment classifies a checkout callback. Only the outcome leaves this
// method; callers must not distinguish Invalid from Mismatch externally.
func (s *Service) VerifyPayment(ctx context.Context, cb Callback) Outcome {
	_, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.VerifyPayment")
	defer span.End()

	outcome := s.Verifier.Verify(cb)
	span.SetAttributes(attribute.String("payment.verification", outcome.String()))
	if obs.PaymentVerificationTotal != nil {
		obs.PaymentVerificationTotal.WithLabelValues(outcome.String()).Inc()
	}

	evt := s.Logger.Info()
	if outcome != Verified {
		evt = s.Logger.Warn()
	}
	evt.Str("order_id", cb.OrderID).
		Str("payment_id", cb.PaymentID).
		Bool("signature_present", cb.Signature != "").
		Str("outcome", outcome.String()).
		Msg("payment verification")
	return outcome
}

func (s *Service) clientLabel() string {
	if s.ClientName == "" {
		return "unknown"
	}
	return s.ClientName
}
