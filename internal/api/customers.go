package api

import (
	"context"
	"net/http"
)

// Profile fetches the extended contact profile for the current user.
func (c *Client) Profile(ctx context.Context) (*Customer, error) {
	var resp Customer
	if err := c.do(ctx, http.MethodGet, "/customers/profile/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile applies a partial update to the current user's profile and
// returns the updated record.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*Customer, error) {
	var resp Customer
	if err := c.do(ctx, http.MethodPatch, "/customers/profile/", nil, update, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
