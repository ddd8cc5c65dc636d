// Package api is the HTTP client for the storefront REST API. It wraps
// outbound requests, attaches the persisted bearer credential, and maps
// failures onto a small error taxonomy (NetworkError, AuthError, APIError)
// so the session and cart stores can react to the cases they own.
//
// There is no automatic refresh-token rotation anywhere in this client: an
// expired access token surfaces as an AuthError and forces a fresh login.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TokenFunc returns the current access token, or "" when no credential
// is persisted.
type TokenFunc func() string

// Client talks to the storefront REST API. It holds no application state
// beyond configuration; all session and cart state lives in the stores.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	token      TokenFunc
	logger     *slog.Logger
	metrics    *Metrics
}

// NewClient creates a new API client.
// It reads defaults from STOREFRONT_* environment variables; options
// override them.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: os.Getenv("STOREFRONT_API_URL"),
		timeout: parseDurationEnv("STOREFRONT_API_TIMEOUT", 15*time.Second),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		c.httpClient = &http.Client{
			Timeout: c.timeout,
		}
	}

	return c
}

// do performs one HTTP request against the API.
//
// The body, when non-nil, is JSON encoded. The result, when non-nil, is
// filled from the JSON response body. Error mapping:
//   - transport failure -> *NetworkError
//   - 401              -> *AuthError (body passed through)
//   - other non-2xx    -> *APIError (body passed through)
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result any) error {
	u := strings.TrimRight(c.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != nil {
		if tok := c.token(); tok != "" {
			httpReq.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.record(method, "network_error", time.Since(start).Seconds())
		c.logger.Debug("api request failed", "method", method, "path", path, "error", err)
		return &NetworkError{Cause: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.metrics.record(method, "network_error", time.Since(start).Seconds())
		return &NetworkError{Cause: fmt.Errorf("read response body: %w", err)}
	}

	c.metrics.record(method, statusClass(httpResp.StatusCode), time.Since(start).Seconds())
	c.logger.Debug("api request",
		"method", method,
		"path", path,
		"status", httpResp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if httpResp.StatusCode == http.StatusUnauthorized {
		return &AuthError{Body: respBody}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return &APIError{StatusCode: httpResp.StatusCode, Body: respBody}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}

	return nil
}

// statusClass buckets an HTTP status code for the metrics label.
func statusClass(code int) string {
	switch {
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func parseDurationEnv(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	// Try parsing as seconds (integer).
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	// Try parsing as duration string.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return defaultVal
}
