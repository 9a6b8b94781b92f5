package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"hash"

	validator "github.com/go-playground/validator/v10"
)

// Outcome classifies a callback verification.
type Outcome int

const (
	// Invalid means a required callback field was missing; no HMAC was computed.
	Invalid Outcome = iota
	// Mismatch means the supplied signature did not match the expected one.
	Mismatch
	// Verified means the signature matched.
	Verified
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Mismatch:
		return "mismatch"
	default:
		return "invalid"
	}
}

// Callback is the payload the gateway hands the client after checkout, which
// the client then posts back to us.
type Callback struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

var (
	validate = validator.New()

	newMAC = func(key []byte) hash.Hash { return hmac.New(sha256.New, key) }
)

// Verifier checks callback signatures against the gateway key secret.
type Verifier struct {
	secret []byte
}

// NewVerifier returns a verifier for the given key secret.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("payment: key secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify classifies the callback. The canonical message is
// order_id + "|" + payment_id, fixed by the gateway protocol.
func (v *Verifier) Verify(cb Callback) Outcome {
	if err := validate.Struct(cb); err != nil {
		return Invalid
	}
	expected := sign(v.secret, cb.OrderID, cb.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(cb.Signature)) {
		return Mismatch
	}
	return Verified
}

// Sign computes the hex signature the gateway produces for an order/payment pair.
func Sign(secret, orderID, paymentID string) string {
	return sign([]byte(secret), orderID, paymentID)
}

func sign(secret []byte, orderID, paymentID string) string {
	mac := newMAC(secret)
	_, _ = mac.Write([]byte(orderID))
	_, _ = mac.Write([]byte("|"))
	_, _ = mac.Write([]byte(paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
