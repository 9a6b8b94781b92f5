package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/razorpay-checkout/internal/pages"
)

func newTestHandler(t *testing.T, gw OrderCreator) *Handler {
	t.Helper()
	set, err := pages.Load()
	require.NoError(t, err)
	return NewHandler(newTestService(t, gw), set)
}

func postJSON(h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestCreateOrderHandler(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestHandler(t, gw)

	rr := postJSON(h.CreateOrder, `{"amount":500}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Order map[string]any `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, "order_test", resp.Order["id"])
	require.EqualValues(t, 50000, resp.Order["amount"])
	require.Equal(t, int64(50000), gw.recorded()[0].Amount)
}

func TestCreateOrderHandlerAcceptsForm(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestHandler(t, gw)

	rr := postForm(h.CreateOrder, url.Values{"amount": {"25"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Equal(t, int64(2500), gw.recorded()[0].Amount)
}

func TestCreateOrderHandlerMissingAmount(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestHandler(t, gw)

	for _, body := range []string{`{}`, `{"amount":null}`, `{"amount":0}`, `{"amount":""}`, ``} {
		rr := postJSON(h.CreateOrder, body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.JSONEq(t, `{"message":"Amount is required"}`, rr.Body.String(), body)
	}
	require.Empty(t, gw.recorded())
}

func TestCreateOrderHandlerInvalidAmount(t *testing.T) {
	gw := &fakeGateway{}
	h := newTestHandler(t, gw)

	for _, body := range []string{`{"amount":-3}`, `{"amount":1.5}`, `{"amount":"abc"}`, `{"amount":{}}`} {
		rr := postJSON(h.CreateOrder, body)
		require.Equal(t, http.StatusBadRequest, rr.Code, body)
		require.JSONEq(t, `{"message":"Amount must be a positive integer"}`, rr.Body.String(), body)
	}
	require.Empty(t, gw.recorded())

	rr := postJSON(h.CreateOrder, `{"amount":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateOrderHandlerUpstreamFailure(t *testing.T) {
	gw := &fakeGateway{err: &GatewayError{StatusCode: 401, Code: "BAD_REQUEST_ERROR", Description: "Authentication failed"}}
	h := newTestHandler(t, gw)

	rr := postJSON(h.CreateOrder, `{"amount":10}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.JSONEq(t, `{"message":"Error creating order","error":{"status":401,"code":"BAD_REQUEST_ERROR","description":"Authentication failed"}}`, rr.Body.String())
}

func TestKeyHandler(t *testing.T) {
	h := newTestHandler(t, &fakeGateway{})
	rr := httptest.NewRecorder()
	h.Key(rr, httptest.NewRequest(http.MethodGet, "/get-razorpay-key", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"key":"rzp_test_key"}`, rr.Body.String())
}

func TestVerifyHandler(t *testing.T) {
	h := newTestHandler(t, &fakeGateway{})

	ok := postJSON(h.Verify, `{"razorpay_order_id":"`+testOrderID+`","razorpay_payment_id":"`+testPaymentID+`","razorpay_signature":"`+testSignature+`"}`)
	require.Equal(t, http.StatusOK, ok.Code)
	require.Contains(t, ok.Body.String(), "Payment successful")

	form := postForm(h.Verify, url.Values{
		"razorpay_order_id":   {testOrderID},
		"razorpay_payment_id": {testPaymentID},
		"razorpay_signature":  {testSignature},
	})
	require.Equal(t, http.StatusOK, form.Code)
}

func TestVerifyHandlerFailuresAreIndistinguishable(t *testing.T) {
	h := newTestHandler(t, &fakeGateway{})

	mutated := []byte(testSignature)
	mutated[0] = 'f'
	mismatch := postJSON(h.Verify, `{"razorpay_order_id":"`+testOrderID+`","razorpay_payment_id":"`+testPaymentID+`","razorpay_signature":"`+string(mutated)+`"}`)
	missing := postJSON(h.Verify, `{"razorpay_order_id":"`+testOrderID+`","razorpay_payment_id":"`+testPaymentID+`"}`)
	garbage := postJSON(h.Verify, `not json`)
	refused := postJSON(h.RejectCallback, `{}`)

	for _, rr := range []*httptest.ResponseRecorder{mismatch, missing, garbage, refused} {
		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, missing.Header(), rr.Header())
		require.Equal(t, missing.Body.Bytes(), rr.Body.Bytes())
	}
	require.Contains(t, missing.Body.String(), "Payment failed")
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw  any
		want int64
		err  error
	}{
		{json.Number("42"), 42, nil},
		{json.Number("1e2"), 100, nil},
		{json.Number("100.0"), 100, nil},
		{"  7 ", 7, nil},
		{nil, 0, ErrAmountRequired},
		{json.Number("0"), 0, ErrAmountRequired},
		{false, 0, ErrAmountRequired},
		{true, 0, ErrAmountInvalid},
		{json.Number("-1"), 0, ErrAmountInvalid},
		{json.Number("2.5"), 0, ErrAmountInvalid},
		{"NaN", 0, ErrAmountInvalid},
		{[]any{1}, 0, ErrAmountInvalid},
	}
	for _, tc := range cases {
		got, err := parseAmount(tc.raw)
		if tc.err != nil {
			require.ErrorIs(t, err, tc.err, "%v", tc.raw)
			continue
		}
		require.NoError(t, err, "%v", tc.raw)
		require.Equal(t, tc.want, got)
	}
}
