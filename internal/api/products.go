package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Products lists catalog products. A nil query lists everything the server
// returns on the first page.
func (c *Client) Products(ctx context.Context, query *ProductQuery) (*ProductPage, error) {
	q := url.Values{}
	if query != nil {
		if query.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(query.PageSize))
		}
		if query.Category > 0 {
			q.Set("category", strconv.FormatInt(query.Category, 10))
		}
		if query.Search != "" {
			q.Set("search", query.Search)
		}
	}

	var resp ProductPage
	if err := c.do(ctx, http.MethodGet, "/products/", q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id int64) (*Product, error) {
	var resp Product
	path := fmt.Sprintf("/products/%d/", id)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SearchProducts lists products matching a free-text search.
func (c *Client) SearchProducts(ctx context.Context, search string) (*ProductPage, error) {
	return c.Products(ctx, &ProductQuery{Search: search})
}

// ProductsByCategory lists products filtered to one category.
func (c *Client) ProductsByCategory(ctx context.Context, categoryID int64) (*ProductPage, error) {
	return c.Products(ctx, &ProductQuery{Category: categoryID})
}

// Categories lists product categories.
func (c *Client) Categories(ctx context.Context) (*CategoryPage, error) {
	var resp CategoryPage
	if err := c.do(ctx, http.MethodGet, "/categories/", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CategoryProducts lists the active products of one category.
// Unlike the paginated list endpoints, this returns a bare array.
func (c *Client) CategoryProducts(ctx context.Context, categoryID int64) ([]Product, error) {
	var resp []Product
	path := fmt.Sprintf("/categories/%d/products/", categoryID)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
