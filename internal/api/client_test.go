package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recorded captures the parts of an inbound request the tests assert on.
type recorded struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// recordingServer replies 200 with the given body and captures each request.
func recordingServer(t *testing.T, respBody string) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.header = r.Header.Clone()
		rec.body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(respBody))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

// ---------------------------------------------------------------------------
// Request shaping
// ---------------------------------------------------------------------------

func TestDo_AttachesBearerTokenAndRequestID(t *testing.T) {
	server, rec := recordingServer(t, `{"id":1,"username":"jane"}`)

	client := NewClient(
		WithBaseURL(server.URL),
		WithLogger(testLogger()),
		WithTokenFunc(func() string { return "tok-123" }),
	)

	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("CurrentUser() returned unexpected error: %v", err)
	}

	if got := rec.header.Get("Authorization"); got != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", got)
	}
	if rec.header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestDo_EmptyToken_OmitsAuthorizationHeader(t *testing.T) {
	server, rec := recordingServer(t, `{"count":0,"results":[]}`)

	client := NewClient(
		WithBaseURL(server.URL),
		WithLogger(testLogger()),
		WithTokenFunc(func() string { return "" }),
	)

	if _, err := client.Products(context.Background(), nil); err != nil {
		t.Fatalf("Products() returned unexpected error: %v", err)
	}
	if got := rec.header.Get("Authorization"); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestDo_JSONBody_SetsContentType(t *testing.T) {
	server, rec := recordingServer(t, `{"access":"a","refresh":"r"}`)
	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))

	if _, err := client.Login(context.Background(), LoginRequest{Username: "jane", Password: "pw"}); err != nil {
		t.Fatalf("Login() returned unexpected error: %v", err)
	}

	if ct := rec.header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %q", ct)
	}
	var sent LoginRequest
	if err := json.Unmarshal(rec.body, &sent); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if sent.Username != "jane" || sent.Password != "pw" {
		t.Errorf("unexpected body: %+v", sent)
	}
}

func TestDo_TrailingSlashBaseURL_JoinsCleanly(t *testing.T) {
	server, rec := recordingServer(t, `{"count":0,"results":[]}`)
	client := NewClient(WithBaseURL(server.URL+"/"), WithLogger(testLogger()))

	if _, err := client.Categories(context.Background()); err != nil {
		t.Fatalf("Categories() returned unexpected error: %v", err)
	}
	if rec.path != "/categories/" {
		t.Errorf("expected /categories/, got %q", rec.path)
	}
}

// ---------------------------------------------------------------------------
// Error taxonomy
// ---------------------------------------------------------------------------

func TestDo_Unauthorized_ReturnsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"Given token not valid for any token type"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))
	_, err := client.CurrentUser(context.Background())

	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected *AuthError, got %T", err)
	}
	if !strings.Contains(string(authErr.Body), "token not valid") {
		t.Errorf("expected body passthrough, got %q", authErr.Body)
	}
}

func TestDo_ServerRejection_ReturnsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Insufficient stock"}`))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))
	_, err := client.CreateOrder(context.Background(), OrderCreate{ShippingAddress: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T (%v)", err, err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", apiErr.StatusCode)
	}
	if got := apiErr.Message("fallback"); got != "Insufficient stock" {
		t.Errorf("expected extracted message, got %q", got)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("a 400 must not match ErrUnauthorized")
	}
}

func TestDo_NetworkFailure_ReturnsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // dead endpoint

	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))
	_, err := client.Products(context.Background(), nil)

	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected *NetworkError, got %T", err)
	}
	if netErr.Unwrap() == nil {
		t.Error("expected wrapped transport cause")
	}
}

// ---------------------------------------------------------------------------
// Endpoint routing
// ---------------------------------------------------------------------------

func TestFacade_MethodsAndPaths(t *testing.T) {
	tests := []struct {
		name       string
		call       func(c *Client) error
		wantMethod string
		wantPath   string
		respBody   string
	}{
		{
			name:       "register",
			call:       func(c *Client) error { _, err := c.Register(context.Background(), RegisterRequest{}); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/auth/register/",
		},
		{
			name:       "login",
			call:       func(c *Client) error { _, err := c.Login(context.Background(), LoginRequest{}); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/auth/login/",
		},
		{
			name:       "logout",
			call:       func(c *Client) error { return c.Logout(context.Background(), "r") },
			wantMethod: http.MethodPost,
			wantPath:   "/auth/logout/",
		},
		{
			name:       "current user",
			call:       func(c *Client) error { _, err := c.CurrentUser(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/auth/user/",
		},
		{
			name:       "profile",
			call:       func(c *Client) error { _, err := c.Profile(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/customers/profile/",
		},
		{
			name:       "update profile",
			call:       func(c *Client) error { _, err := c.UpdateProfile(context.Background(), ProfileUpdate{}); return err },
			wantMethod: http.MethodPatch,
			wantPath:   "/customers/profile/",
		},
		{
			name:       "product detail",
			call:       func(c *Client) error { _, err := c.Product(context.Background(), 42); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/products/42/",
		},
		{
			name:       "categories",
			call:       func(c *Client) error { _, err := c.Categories(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/categories/",
		},
		{
			name:       "category products",
			call:       func(c *Client) error { _, err := c.CategoryProducts(context.Background(), 7); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/categories/7/products/",
			respBody:   `[]`,
		},
		{
			name:       "orders",
			call:       func(c *Client) error { _, err := c.Orders(context.Background()); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/orders/",
		},
		{
			name:       "order detail",
			call:       func(c *Client) error { _, err := c.Order(context.Background(), 9); return err },
			wantMethod: http.MethodGet,
			wantPath:   "/orders/9/",
		},
		{
			name:       "create order",
			call:       func(c *Client) error { _, err := c.CreateOrder(context.Background(), OrderCreate{}); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/orders/",
		},
		{
			name:       "cancel order",
			call:       func(c *Client) error { _, err := c.CancelOrder(context.Background(), 9); return err },
			wantMethod: http.MethodPost,
			wantPath:   "/orders/9/cancel/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			respBody := tt.respBody
			if respBody == "" {
				respBody = `{}`
			}
			server, rec := recordingServer(t, respBody)
			client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))

			if err := tt.call(client); err != nil {
				t.Fatalf("call returned unexpected error: %v", err)
			}
			if rec.method != tt.wantMethod {
				t.Errorf("expected %s, got %s", tt.wantMethod, rec.method)
			}
			if rec.path != tt.wantPath {
				t.Errorf("expected path %s, got %s", tt.wantPath, rec.path)
			}
		})
	}
}

func TestProducts_QueryParameters(t *testing.T) {
	server, rec := recordingServer(t, `{"count":0,"results":[]}`)
	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))

	_, err := client.Products(context.Background(), &ProductQuery{PageSize: 50, Category: 3, Search: "apple"})
	if err != nil {
		t.Fatalf("Products() returned unexpected error: %v", err)
	}

	want := "category=3&page_size=50&search=apple"
	if rec.query != want {
		t.Errorf("expected query %q, got %q", want, rec.query)
	}
}

func TestLogout_SendsRefreshToken(t *testing.T) {
	server, rec := recordingServer(t, `{"message":"Logout successful"}`)
	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))

	if err := client.Logout(context.Background(), "ref-1"); err != nil {
		t.Fatalf("Logout() returned unexpected error: %v", err)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.body, &body); err != nil {
		t.Fatalf("logout body is not JSON: %v", err)
	}
	if body["refresh_token"] != "ref-1" {
		t.Errorf("expected refresh_token in body, got %v", body)
	}
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func TestPrice_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Price
		wantErr bool
	}{
		{name: "quoted decimal", input: `"12.50"`, want: 12.5},
		{name: "plain number", input: `12.5`, want: 12.5},
		{name: "quoted integer", input: `"7"`, want: 7},
		{name: "null", input: `null`, want: 0},
		{name: "empty string", input: `""`, want: 0},
		{name: "garbage", input: `"twelve"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Price
			err := json.Unmarshal([]byte(tt.input), &p)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != tt.want {
				t.Errorf("expected %v, got %v", tt.want, p)
			}
		})
	}
}

func TestProductPage_DecodesStringPrices(t *testing.T) {
	server, _ := recordingServer(t, `{
		"count": 1,
		"next": null,
		"previous": null,
		"results": [{"id": 1, "name": "Apples", "price": "3.99", "stock": 10, "is_in_stock": true}]
	}`)
	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()))

	page, err := client.Products(context.Background(), nil)
	if err != nil {
		t.Fatalf("Products() returned unexpected error: %v", err)
	}
	if len(page.Results) != 1 {
		t.Fatalf("expected 1 product, got %d", len(page.Results))
	}
	if page.Results[0].Price != 3.99 {
		t.Errorf("expected price 3.99, got %v", page.Results[0].Price)
	}
}

// ---------------------------------------------------------------------------
// Error helpers
// ---------------------------------------------------------------------------

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "detail key",
			err:  &APIError{StatusCode: 400, Body: []byte(`{"detail":"boom"}`)},
			want: "boom",
		},
		{
			name: "error key",
			err:  &APIError{StatusCode: 400, Body: []byte(`{"error":"bad"}`)},
			want: "bad",
		},
		{
			name: "auth error",
			err:  &AuthError{Body: []byte(`{"detail":"expired"}`)},
			want: "expired",
		},
		{
			name: "unparseable body",
			err:  &APIError{StatusCode: 500, Body: []byte("<html>")},
			want: "fallback",
		},
		{
			name: "unrelated error",
			err:  errors.New("dial tcp: refused"),
			want: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage(tt.err, "fallback"); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestErrorBody(t *testing.T) {
	if got := ErrorBody(&APIError{Body: []byte("x")}); string(got) != "x" {
		t.Errorf("expected APIError body, got %q", got)
	}
	if got := ErrorBody(&NetworkError{Cause: errors.New("down")}); got != nil {
		t.Errorf("expected nil for network errors, got %q", got)
	}
}

// ---------------------------------------------------------------------------
// Metrics and configuration
// ---------------------------------------------------------------------------

func TestWithMetrics_RecordsRequests(t *testing.T) {
	server, _ := recordingServer(t, `{"count":0,"results":[]}`)

	reg := prometheus.NewRegistry()
	client := NewClient(WithBaseURL(server.URL), WithLogger(testLogger()), WithMetrics(reg))

	if _, err := client.Products(context.Background(), nil); err != nil {
		t.Fatalf("Products() returned unexpected error: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "storefront_api_requests_total" {
			found = true
			if len(mf.GetMetric()) == 0 || mf.GetMetric()[0].GetCounter().GetValue() != 1 {
				t.Errorf("expected one recorded request, got %v", mf)
			}
		}
	}
	if !found {
		t.Error("expected storefront_api_requests_total to be registered")
	}
}

func TestParseDurationEnv(t *testing.T) {
	t.Setenv("TEST_TIMEOUT", "30")
	if got := parseDurationEnv("TEST_TIMEOUT", time.Second); got != 30*time.Second {
		t.Errorf("expected 30s for integer seconds, got %v", got)
	}

	t.Setenv("TEST_TIMEOUT", "500ms")
	if got := parseDurationEnv("TEST_TIMEOUT", time.Second); got != 500*time.Millisecond {
		t.Errorf("expected 500ms for duration string, got %v", got)
	}

	t.Setenv("TEST_TIMEOUT", "junk")
	if got := parseDurationEnv("TEST_TIMEOUT", time.Second); got != time.Second {
		t.Errorf("expected default for junk, got %v", got)
	}

	if got := parseDurationEnv("TEST_TIMEOUT_UNSET", 2*time.Second); got != 2*time.Second {
		t.Errorf("expected default for unset, got %v", got)
	}
}
