package api

import (
	"bytes"
	"fmt"
	"strconv"
)

// Price is a monetary amount. The API serializes decimal fields as JSON
// strings ("12.50"); Price accepts both the string and plain number forms.
type Price float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	if s == "" || s == "null" {
		*p = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("parse price %q: %w", s, err)
	}
	*p = Price(f)
	return nil
}

// User is the identity record returned by the auth endpoints.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Customer is the extended contact profile attached to a user.
type Customer struct {
	ID         int64  `json:"id"`
	User       *User  `json:"user,omitempty"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	FullName   string `json:"full_name"`
	CreatedAt  string `json:"created_at"`
}

// ProfileUpdate is a partial profile update; empty fields are omitted so
// the PATCH only touches what the caller set.
type ProfileUpdate struct {
	Phone      string `json:"phone,omitempty"`
	Address    string `json:"address,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// TokenPair is the credential pair issued by login and register.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginRequest is the login endpoint payload.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration endpoint payload. The API requires
// Password and Password2 to match; that rule is enforced server-side.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// RegisterResponse is the registration response. The API auto-logs-in on
// registration, so it carries a credential pair alongside the user record.
type RegisterResponse struct {
	User    User   `json:"user"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	Message string `json:"message"`
}

// Category is a product category.
type Category struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount int    `json:"product_count"`
	CreatedAt    string `json:"created_at"`
}

// Product is a catalog product. Stock is the available quantity the cart
// snapshots at mutation time.
type Product struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        Price  `json:"price"`
	Stock        int    `json:"stock"`
	Category     int64  `json:"category"`
	CategoryName string `json:"category_name"`
	Image        string `json:"image"`
	IsActive     bool   `json:"is_active"`
	IsInStock    bool   `json:"is_in_stock"`
	CreatedAt    string `json:"created_at,omitempty"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

// ProductQuery holds the optional list filters for the products endpoint.
type ProductQuery struct {
	PageSize int
	Category int64
	Search   string
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ID           int64  `json:"id"`
	Product      int64  `json:"product"`
	ProductName  string `json:"product_name"`
	ProductImage string `json:"product_image"`
	Quantity     int    `json:"quantity"`
	Price        Price  `json:"price"`
	Subtotal     Price  `json:"subtotal"`
}

// Order is a placed order. List responses omit the item details; detail
// responses include them. The nested customer record is not decoded, the
// API only returns the caller's own orders.
type Order struct {
	ID              int64       `json:"id"`
	CustomerName    string      `json:"customer_name"`
	Status          string      `json:"status"`
	TotalAmount     Price       `json:"total_amount"`
	ShippingAddress string      `json:"shipping_address,omitempty"`
	OrderNotes      string      `json:"order_notes,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	ItemsCount      int         `json:"items_count,omitempty"`
	CreatedAt       string      `json:"created_at"`
	UpdatedAt       string      `json:"updated_at,omitempty"`
}

// OrderItemCreate is one line of an order-creation request.
type OrderItemCreate struct {
	Product  int64 `json:"product"`
	Quantity int   `json:"quantity"`
}

// OrderCreate is the order-creation payload. Payment is cash on delivery
// only; there is no payment field to set.
type OrderCreate struct {
	ShippingAddress string            `json:"shipping_address"`
	OrderNotes      string            `json:"order_notes,omitempty"`
	Items           []OrderItemCreate `json:"items"`
}

// ProductPage is a paginated product list response.
type ProductPage struct {
	Count    int       `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Product `json:"results"`
}

// CategoryPage is a paginated category list response.
type CategoryPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Category `json:"results"`
}

// OrderPage is a paginated order list response.
type OrderPage struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []Order `json:"results"`
}
