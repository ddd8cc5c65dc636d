package cart

import (
	"errors"
	"fmt"
)

// ErrInsufficientStock is returned when a mutation would push a line's
// quantity past its stock snapshot. Use errors.Is to match.
var ErrInsufficientStock = errors.New("insufficient stock")

// InsufficientStockError reports a rejected mutation. The cart state is
// left untouched when this is returned.
type InsufficientStockError struct {
	// ProductID identifies the line the mutation targeted.
	ProductID int64
	// Available is the stock snapshot the request exceeded.
	Available int
}

// Error returns the user-facing rejection message.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d available in stock", e.Available)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Product is the slice of catalog data the cart needs to add a line:
// identity, display name, unit price, and the stock snapshot.
type Product struct {
	ID    int64
	Name  string
	Price float64
	Stock int
}

// Line is one product entry in the cart. Stock is the available-quantity
// snapshot captured at the line's last mutation; Quantity never exceeds it.
type Line struct {
	ProductID int64   `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"price"`
	Stock     int     `json:"stock"`
	Quantity  int     `json:"quantity"`
}

// Subtotal returns the line's price contribution.
func (l Line) Subtotal() float64 {
	return l.UnitPrice * float64(l.Quantity)
}

// Storage is the durable key/value storage the cart persists into.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
