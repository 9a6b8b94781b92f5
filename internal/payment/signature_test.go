package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "test_secret"
	testOrderID   = "order_IluGWxBm9U8zJ8"
	testPaymentID = "pay_IluGWxBm9U8zJ9"
	testSignature = "8b2798bfd2e5872065dd6fad1093d49bc25c2f20a72af1e260bd0ed6f9f3c5a3"
)

func TestSignKnownVector(t *testing.T) {
	require.Equal(t, testSignature, Sign(testSecret, testOrderID, testPaymentID))
}

func TestVerifyOutcomes(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	require.Equal(t, Verified, v.Verify(Callback{OrderID: testOrderID, PaymentID: testPaymentID, Signature: testSignature}))
	require.Equal(t, Mismatch, v.Verify(Callback{OrderID: testOrderID, PaymentID: testPaymentID, Signature: "deadbeef"}))
	require.Equal(t, Invalid, v.Verify(Callback{OrderID: testOrderID, PaymentID: testPaymentID}))
	require.Equal(t, Invalid, v.Verify(Callback{}))
}

func TestVerifyRejectsEverySingleCharacterMutation(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	for i := range testSignature {
		mutated := []byte(testSignature)
		if mutated[i] == 'a' {
			mutated[i] = 'b'
		} else {
			mutated[i] = 'a'
		}
		outcome := v.Verify(Callback{OrderID: testOrderID, PaymentID: testPaymentID, Signature: string(mutated)})
		require.Equal(t, Mismatch, outcome, "position %d", i)
	}
}

func TestVerifySwappedIDsMismatch(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)
	require.Equal(t, Mismatch, v.Verify(Callback{OrderID: testPaymentID, PaymentID: testOrderID, Signature: testSignature}))
}

func TestVerifyMissingFieldSkipsHMAC(t *testing.T) {
	calls := 0
	orig := newMAC
	newMAC = func(key []byte) hash.Hash {
		calls++
		return hmac.New(sha256.New, key)
	}
	t.Cleanup(func() { newMAC = orig })

	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	for _, cb := range []Callback{
		{PaymentID: testPaymentID, Signature: testSignature},
		{OrderID: testOrderID, Signature: testSignature},
		{OrderID: testOrderID, PaymentID: testPaymentID},
	} {
		require.Equal(t, Invalid, v.Verify(cb))
	}
	require.Zero(t, calls)

	require.Equal(t, Verified, v.Verify(Callback{OrderID: testOrderID, PaymentID: testPaymentID, Signature: testSignature}))
	require.Equal(t, 1, calls)
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier("")
	require.Error(t, err)
}
