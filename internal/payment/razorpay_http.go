package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/razorpay-checkout/internal/resilience"
)

const maxGatewayResponse = 1 << 20

// RazorpayHTTP creates orders through the Razorpay REST API using basic auth
// with the key id and secret.
type RazorpayHTTP struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	Client    resilience.HTTPClient
}

// CreateOrder posts opts to /v1/orders and decodes the created order.
func (g RazorpayHTTP) CreateOrder(ctx context.Context, opts OrderOptions) (Order, error) {
	payload, err := json.Marshal(opts)
	if err != nil {
		return nil, fmt.Errorf("encode order options: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint("/v1/orders"), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build order request: %w", err)
	}
	req.SetBasicAuth(g.KeyID, g.KeySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.Client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxGatewayResponse))
	if err != nil {
		return nil, fmt.Errorf("read order response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseGatewayError(resp.StatusCode, body)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var order Order
	if err := dec.Decode(&order); err != nil {
		return nil, fmt.Errorf("decode order response: %w", err)
	}
	if order == nil {
		return nil, errors.New("decode order response: empty body")
	}
	return order, nil
}

func (g RazorpayHTTP) endpoint(path string) string {
	base := strings.TrimRight(strings.TrimSpace(g.BaseURL), "/")
	if base == "" {
		base = "https://api.razorpay.com"
	}
	return base + path
}

func parseGatewayError(status int, body []byte) *GatewayError {
	var payload struct {
		Error struct {
			Code        string `json:"code"`
			Description string `json:"description"`
			Reason      string `json:"reason"`
			Field       string `json:"field"`
		} `json:"error"`
	}
	gwErr := &GatewayError{StatusCode: status}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error.Code != "" {
		gwErr.Code = payload.Error.Code
		gwErr.Description = payload.Error.Description
		gwErr.Reason = payload.Error.Reason
		if payload.Error.Field != "" && payload.Error.Field != "NA" {
			gwErr.Field = payload.Error.Field
		}
		return gwErr
	}
	gwErr.Code = codeGateway
	gwErr.Description = http.StatusText(status)
	return gwErr
}
