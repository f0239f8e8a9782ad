package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrGatewayNotConfigured is returned when provider credentials are missing.
// Surfaced as a distinct failure rather than a crash.
var ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

// PaymentIntent is the provider's transaction handle. Amounts are in minor
// currency units as reported by the provider.
type PaymentIntent struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ClientSecret   string `json:"client_secret"`
	Currency       string `json:"currency"`
	Amount         int64  `json:"amount"`
	AmountReceived int64  `json:"amount_received"`
}

// PaymentGateway is the capability the order lifecycle needs from the hosted
// card-payment provider. Both operations are non-retryable for the request;
// failures surface immediately.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// StripeClient talks to the Stripe PaymentIntents API. It is constructed
// explicitly and passed into the operations that need it; there is no
// process-wide API key.
type StripeClient struct {
	SecretKey  string
	BaseURL    string
	HTTPClient *http.Client
}

// NewStripeClient builds a client with default endpoint and timeout.
func NewStripeClient(secretKey string) *StripeClient {
	return &StripeClient{
		SecretKey:  secretKey,
		BaseURL:    "https://api.stripe.com/v1",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type stripeErrorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent opens a payment transaction for the given amount.
func (s *StripeClient) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*PaymentIntent, error) {
	if s.SecretKey == "" {
		return nil, ErrGatewayNotConfigured
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinor, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("automatic_payment_methods[enabled]", "true")
	for key, value := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	return s.do(ctx, http.MethodPost, "/payment_intents", form)
}

// RetrieveIntent fetches the transaction by id.
func (s *StripeClient) RetrieveIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	if s.SecretKey == "" {
		return nil, ErrGatewayNotConfigured
	}
	return s.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(id), nil)
}

func (s *StripeClient) do(ctx context.Context, method, path string, form url.Values) (*PaymentIntent, error) {
	var bodyReader io.Reader
	if form != nil {
		bodyReader = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(s.BaseURL, "/")+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("stripe request build: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.SecretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stripe request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody stripeErrorBody
		if err := json.Unmarshal(body, &errBody); err == nil && errBody.Error.Message != "" {
			return nil, fmt.Errorf("stripe: %s (status %d)", errBody.Error.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("stripe: status %d, body: %s", resp.StatusCode, string(body))
	}

	var intent PaymentIntent
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("stripe response unmarshal: %w", err)
	}

	return &intent, nil
}
