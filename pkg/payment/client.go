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
	"time"

	"github.com/tmoreno/bulkbridge-backend/pkg/config"
	"github.com/tmoreno/bulkbridge-backend/pkg/enums"
	pkgerrors "github.com/tmoreno/bulkbridge-backend/pkg/errors"
)

const (
	defaultConfirmTimeout       = 10 * time.Second
	responseBodyReadLimit int64 = 1024
)

var errAPIKeyRequired = errors.New("payment gateway api key is required")

// Client wraps the payment gateway's confirmation-verification API. The
// confirmation token itself stays opaque; only the gateway can interpret it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds the gateway client from config.
func NewClient(cfg config.PaymentConfig, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, errAPIKeyRequired
	}
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		return nil, errors.New("payment gateway base url is required")
	}

	timeout := cfg.ConfirmTimeout
	if timeout <= 0 {
		timeout = defaultConfirmTimeout
	}

	client := &Client{
		apiKey:     key,
		baseURL:    strings.TrimRight(base, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: timeout}
	}

	return client, nil
}

// Verification is the gateway's decision about a confirmation token.
type Verification struct {
	Status enums.PaymentStatus
	Method enums.PaymentMethod
	Ref    string
}

// Confirmed reports whether funds were actually captured.
func (v Verification) Confirmed() bool {
	return v.Status == enums.PaymentStatusConfirmed
}

// Verify asks the gateway whether the confirmation token represents a
// captured payment. The call is bounded by the configured timeout; any
// transport or gateway failure surfaces as a dependency error so callers can
// abort without mutating state.
func (c *Client) Verify(ctx context.Context, confirmationToken string) (*Verification, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment client not configured")
	}
	token := strings.TrimSpace(confirmationToken)
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment confirmation is required")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{"confirmation": token})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal verification request")
	}

	url := c.baseURL + "/v1/confirmations/verify"
	httpReq, err := http.NewRequestWithContext(verifyCtx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build verification request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute verification request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "verification request failed")
	}

	var apiResp struct {
		Status string `json:"status"`
		Method string `json:"method"`
		Ref    string `json:"ref"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode verification response")
	}

	status, err := enums.ParsePaymentStatus(apiResp.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unexpected verification status")
	}

	verification := &Verification{Status: status, Ref: apiResp.Ref}
	if method, err := enums.ParsePaymentMethod(apiResp.Method); err == nil {
		verification.Method = method
	}
	return verification, nil
}
