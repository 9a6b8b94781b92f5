package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/noah-isme/razorpay-checkout/internal/common"
	"github.com/noah-isme/razorpay-checkout/internal/pages"
)

// Handler exposes the payment service over HTTP.
type Handler struct {
	Svc   *Service
	Pages *pages.Set
}

// NewHandler wires the HTTP layer.
func NewHandler(svc *Service, set *pages.Set) *Handler {
	return &Handler{Svc: svc, Pages: set}
}

// CreateOrder handles POST /create-order.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	raw, err := readAmount(r)
	if err != nil {
		common.JSONMessage(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	amount, err := parseAmount(raw)
	if err != nil {
		common.WriteAppError(w, invalidRequest(err), upstreamMessage)
		return
	}
	order, err := h.Svc.CreateOrder(r.Context(), amount)
	if err != nil {
		common.WriteAppError(w, err, upstreamMessage)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"order": order})
}

// Key handles GET /get-razorpay-key.
func (h *Handler) Key(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"key": h.Svc.PublicKey()})
}

// Verify handles POST /payment-verification. Every non-verified outcome,
// including an unreadable body, renders the same failure page.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	cb, _ := readCallback(r)
	if h.Svc.VerifyPayment(r.Context(), cb) != Verified {
		h.Pages.Write(w, http.StatusBadRequest, pages.Failure)
		return
	}
	h.Pages.Write(w, http.StatusOK, pages.Success)
}

// RejectCallback answers a callback whose body was refused before parsing.
// It counts as an invalid verification and renders the failure page.
func (h *Handler) RejectCallback(w http.ResponseWriter, r *http.Request) {
	h.Svc.VerifyPayment(r.Context(), Callback{})
	h.Pages.Write(w, http.StatusBadRequest, pages.Failure)
}

const maxMultipartMemory = 1 << 20

func isForm(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mt == "application/x-www-form-urlencoded" || mt == "multipart/form-data"
}

// parseForm fills r.PostForm for either form encoding.
func parseForm(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

// readAmount extracts the raw amount value. JSON numbers arrive as
// json.Number, form values as strings; nil means absent.
func readAmount(r *http.Request) (any, error) {
	if isForm(r) {
		if err := parseForm(r); err != nil {
			return nil, err
		}
		if v := r.PostForm.Get("amount"); v != "" {
			return v, nil
		}
		return nil, nil
	}
	var body struct {
		Amount any `json:"amount"`
	}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	return body.Amount, nil
}

// parseAmount accepts whole positive numbers given as JSON numbers or numeric
// strings. Zero, null and empty values count as missing.
func parseAmount(raw any) (int64, error) {
	var text string
	switch v := raw.(type) {
	case nil:
		return 0, ErrAmountRequired
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
		if text == "" {
			return 0, ErrAmountRequired
		}
	case bool:
		if !v {
			return 0, ErrAmountRequired
		}
		return 0, ErrAmountInvalid
	default:
		return 0, ErrAmountInvalid
	}

	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return checkAmount(n)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrAmountInvalid, text)
	}
	if f == 0 {
		return 0, ErrAmountRequired
	}
	if f != math.Trunc(f) || f < 0 || f > float64(maxAmount) {
		return 0, fmt.Errorf("%w: %q", ErrAmountInvalid, text)
	}
	return int64(f), nil
}

func checkAmount(n int64) (int64, error) {
	switch {
	case n == 0:
		return 0, ErrAmountRequired
	case n < 0:
		return 0, fmt.Errorf("%w: %d", ErrAmountInvalid, n)
	}
	return n, nil
}

func readCallback(r *http.Request) (Callback, error) {
	var cb Callback
	if isForm(r) {
		if err := parseForm(r); err != nil {
			return Callback{}, err
		}
		cb.OrderID = r.PostForm.Get("razorpay_order_id")
		cb.PaymentID = r.PostForm.Get("razorpay_payment_id")
		cb.Signature = r.PostForm.Get("razorpay_signature")
		return cb, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil && !errors.Is(err, io.EOF) {
		return Callback{}, err
	}
	return cb, nil
}
