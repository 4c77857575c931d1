package payment

import (
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
)

// ErrChargeNotHeld indicates the processor does not hold funds for the charge.
var ErrChargeNotHeld = errors.New("charge not held")

// Charge mirrors the processor's view of a payment hold.
type Charge struct {
	Reference string `json:"reference"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
}

// Client verifies that an order's payment is held before the order is placed.
// Settlement mechanics live entirely inside the processor; this client only
// observes hold status.
type Client interface {
	VerifyHold(ctx context.Context, chargeRef string, amount int64) error
}

// HTTPClient implements Client via the processor's HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates HTTP payment client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse payment url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("payment url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// VerifyHold queries the processor for charge status.
func (c *HTTPClient) VerifyHold(ctx context.Context, chargeRef string, amount int64) error {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, "/api/charges/", chargeRef)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		var charge Charge
		if err := json.Unmarshal(body, &charge); err != nil {
			return err
		}
		if charge.Status != "held" || charge.Amount < amount {
			return ErrChargeNotHeld
		}
		return nil
	case http.StatusNotFound:
		return ErrChargeNotHeld
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("payment request failed", slog.Int("status", resp.StatusCode), slog.String("body", string(body)))
		return fmt.Errorf("payment error: %s", resp.Status)
	}
}

// StaticClient treats every charge as held. Used when no processor address is
// configured, e.g. in development.
type StaticClient struct{}

func (StaticClient) VerifyHold(context.Context, string, int64) error { return nil }
