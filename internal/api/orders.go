package api

import (
	"context"
	"fmt"
	"net/http"
)

// Orders lists the current user's orders.
func (c *Client) Orders(ctx context.Context) (*OrderPage, error) {
	var resp OrderPage
	if err := c.do(ctx, http.MethodGet, "/orders/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Order fetches a single order with its items.
func (c *Client) Order(ctx context.Context, id int64) (*Order, error) {
	var resp Order
	path := fmt.Sprintf("/orders/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateOrder places a new order. Stock is validated server-side at
// placement time; cart stock snapshots are not revalidated beforehand.
func (c *Client) CreateOrder(ctx context.Context, order OrderCreate) (*Order, error) {
	var resp Order
	if err := c.do(ctx, http.MethodPost, "/orders/", nil, order, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CancelOrder cancels a pending order.
func (c *Client) CancelOrder(ctx context.Context, id int64) (*Order, error) {
	var resp Order
	path := fmt.Sprintf("/orders/%d/cancel/", id)
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
