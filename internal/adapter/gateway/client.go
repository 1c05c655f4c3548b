package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/prowriters/internal/domain/errors"
	"github.com/polkiloo/prowriters/internal/domain/model"
)

// RemoteOrder is the processor side handle of a checkout.
type RemoteOrder struct {
	ID       string
	Amount   int64
	Currency model.Currency
	Receipt  string
	Status   string
}

// Refund is the processor side handle of a refund.
type Refund struct {
	ID        string
	PaymentID string
	Amount    int64
	Status    string
}

// Client exposes operations of the payment processor.
type Client interface {
	CreateOrder(ctx context.Context, amount decimal.Decimal, currency model.Currency, receipt string) (*RemoteOrder, error)
	Refund(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency) (*Refund, error)
	VerifySignature(paymentID, remoteOrderID, signature string) bool
}

// HTTPClient implements Client via the processor REST API.
type HTTPClient struct {
	baseURL    *url.URL
	keyID      string
	verifier   Verifier
	httpClient *http.Client
	logger     *slog.Logger
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type refundRequest struct {
	Amount int64 `json:"amount"`
}

type refundResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"payment_id"`
	Amount    int64  `json:"amount"`
	Status    string `json:"status"`
}

type errorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// NewHTTPClient creates a processor client authenticated with the key pair.
func NewHTTPClient(baseURL, keyID, keySecret string, timeout time.Duration, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("gateway url must be absolute")
	}
	if keySecret == "" {
		return nil, fmt.Errorf("gateway key secret is required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:  parsed,
		keyID:    keyID,
		verifier: NewVerifier(keySecret),
		logger:   logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// CreateOrder registers a checkout of amount with the processor.
func (c *HTTPClient) CreateOrder(ctx context.Context, amount decimal.Decimal, currency model.Currency, receipt string) (*RemoteOrder, error) {
	minor, err := ToMinorUnits(amount, currency)
	if err != nil {
		return nil, err
	}

	var data orderResponse
	body := orderRequest{Amount: minor, Currency: string(currency), Receipt: receipt}
	if err := c.do(ctx, "create order", "/v1/orders", body, &data); err != nil {
		return nil, err
	}
	if data.ID == "" {
		return nil, &domainErrors.GatewayError{Op: "create order", Err: errors.New("empty order id")}
	}

	return &RemoteOrder{
		ID:       data.ID,
		Amount:   data.Amount,
		Currency: model.Currency(data.Currency),
		Receipt:  data.Receipt,
		Status:   data.Status,
	}, nil
}

// Refund returns amount of a captured payment to the customer.
func (c *HTTPClient) Refund(ctx context.Context, paymentID string, amount decimal.Decimal, currency model.Currency) (*Refund, error) {
	if paymentID == "" {
		return nil, domainErrors.Validation("payment id is required")
	}
	minor, err := ToMinorUnits(amount, currency)
	if err != nil {
		return nil, err
	}

	var data refundResponse
	endpoint := path.Join("/v1/payments", url.PathEscape(paymentID), "refund")
	if err := c.do(ctx, "refund", endpoint, refundRequest{Amount: minor}, &data); err != nil {
		return nil, err
	}

	return &Refund{ID: data.ID, PaymentID: data.PaymentID, Amount: data.Amount, Status: data.Status}, nil
}

// VerifySignature checks the callback triple with the shared secret.
func (c *HTTPClient) VerifySignature(paymentID, remoteOrderID, signature string) bool {
	return c.verifier.Verify(paymentID, remoteOrderID, signature)
}

func (c *HTTPClient) do(ctx context.Context, op, endpointPath string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return &domainErrors.GatewayError{Op: op, Err: err}
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, endpointPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(encoded))
	if err != nil {
		return &domainErrors.GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.keyID, c.verifier.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domainErrors.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("gateway request failed",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return &domainErrors.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: decodeError(resp.Status, body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &domainErrors.GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(status string, body []byte) error {
	var data errorResponse
	if err := json.Unmarshal(body, &data); err == nil && data.Error.Description != "" {
		if data.Error.Code != "" {
			return fmt.Errorf("%s: %s", data.Error.Code, data.Error.Description)
		}
		return errors.New(data.Error.Description)
	}
	return errors.New(status)
}
