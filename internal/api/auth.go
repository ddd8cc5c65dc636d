package api

import (
	"context"
	"net/http"
)

// Register creates a new account. The API auto-logs-in on registration,
// so the response carries a credential pair for the session store to persist.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var resp RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	var resp TokenPair
	if err := c.do(ctx, http.MethodPost, "/auth/login/", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout blacklists the given refresh token server-side. Tearing down the
// local session regardless of the outcome is the session store's job.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	body := map[string]string{"refresh_token": refreshToken}
	return c.do(ctx, http.MethodPost, "/auth/logout/", nil, body, nil)
}

// CurrentUser fetches the identity record for the bearer credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp User
	if err := c.do(ctx, http.MethodGet, "/auth/user/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
