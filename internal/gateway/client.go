package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/httpx"
	"shareit/internal/models"
)

// Client forwards validated requests to the business server.
type Client struct {
	baseURL string
	client  *http.Client
	retry   RetryPolicy
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL: cfg.ServerURL,
		client: &http.Client{
			Transport: &AuthTransport{
				KeyHeader:   apiKeyHeader,
				ExtraHeader: apiExtraHeader,
				APIKey:      cfg.APIKey,
				APIExtra:    cfg.APIExtra,
				Base:        http.DefaultTransport,
			},
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		retry: defaultRetryPolicy(cfg.MaxRetries),
	}
}

const (
	apiKeyHeader   = "x-api-key"
	apiExtraHeader = "x-api-extra"
)

// AuthTransport adds the server credentials and the request id to every outgoing call.
type AuthTransport struct {
	KeyHeader   string
	ExtraHeader string
	APIKey      string
	APIExtra    string
	Base        http.RoundTripper
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.APIKey != "" {
		req.Header.Set(t.KeyHeader, t.APIKey)
		req.Header.Set(t.ExtraHeader, t.APIExtra)
	}
	if id := httpx.RequestIDFrom(req.Context()); id != "" {
		req.Header.Set(models.RequestIDHeader, id)
	}
	req.Header.Set("Accept", "application/json")
	return t.Base.RoundTrip(req)
}

// Do sends the call upstream, retrying idempotent calls on transport errors.
// The caller owns the response body.
func (c *Client) Do(ctx context.Context, method, path, rawQuery string, userID string, body []byte) (*http.Response, error) {
	url := c.baseURL + path
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	for attempt := 1; ; attempt++ {
		resp, err := c.send(ctx, method, url, userID, body)
		if err == nil {
			return resp, nil
		}
		if !retryable(method) || attempt > c.retry.MaxRetries {
			return nil, fmt.Errorf("call %s %s: %w", method, path, err)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("call %s %s: %w", method, path, ctx.Err())
		case <-time.After(c.retry.NextDelay(attempt)):
		}
	}
}

func (c *Client) send(ctx context.Context, method, url, userID string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(models.UserIDHeader, userID)
	}
	return c.client.Do(req)
}
