// Package cart implements the client-side shopping cart: an ordered line
// sequence with stock-aware mutation rules, derived totals, and durable
// persistence across restarts.
package cart

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// storageKey is the fixed key the line sequence is persisted under.
const storageKey = "cart"

// Store owns the cart state. All mutations are serialized by an internal
// mutex; persistence after each mutation is fire-and-forget (write errors
// are logged, never propagated, so a full disk cannot block shopping).
type Store struct {
	mu      sync.Mutex
	lines   []Line
	visible bool
	storage Storage
	logger  *slog.Logger
	subs    map[int]func()
	nextSub int
}

// NewStore creates a cart store, restoring any persisted line sequence.
// A missing or corrupt persisted cart yields an empty cart.
func NewStore(storage Storage, logger *slog.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger,
		subs:    make(map[int]func()),
	}

	if raw, ok := storage.Get(storageKey); ok {
		var lines []Line
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			logger.Warn("persisted cart is corrupt, starting empty", "error", err)
		} else {
			s.lines = lines
		}
	}

	return s
}

// Add puts quantity units of a product into the cart. If the product is
// already a line, the quantities merge; the line's stock snapshot is
// refreshed from the given product either way. The mutation is rejected
// with an *InsufficientStockError, leaving the cart untouched, when the
// resulting quantity would exceed the product's stock.
func (s *Store) Add(p Product, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	for i, line := range s.lines {
		if line.ProductID != p.ID {
			continue
		}
		newQty := line.Quantity + quantity
		if newQty > p.Stock {
			s.mu.Unlock()
			return &InsufficientStockError{ProductID: p.ID, Available: p.Stock}
		}
		s.lines[i].Quantity = newQty
		s.lines[i].Stock = p.Stock
		s.lines[i].UnitPrice = p.Price
		s.lines[i].Name = p.Name
		s.persist()
		s.mu.Unlock()
		s.notify()
		return nil
	}

	if quantity > p.Stock {
		s.mu.Unlock()
		return &InsufficientStockError{ProductID: p.ID, Available: p.Stock}
	}
	s.lines = append(s.lines, Line{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Stock:     p.Stock,
		Quantity:  quantity,
	})
	s.persist()
	s.mu.Unlock()
	s.notify()
	return nil
}

// Remove drops the line for productID. Removing an absent product is a
// successful no-op.
func (s *Store) Remove(productID int64) {
	s.mu.Lock()
	kept := s.lines[:0]
	for _, line := range s.lines {
		if line.ProductID != productID {
			kept = append(kept, line)
		}
	}
	s.lines = kept
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// SetQuantity replaces a line's quantity. A quantity below 1 behaves
// exactly like Remove. A quantity above the line's stock snapshot is
// rejected with an *InsufficientStockError, leaving the line unchanged.
// Setting an absent product is a successful no-op.
func (s *Store) SetQuantity(productID int64, quantity int) error {
	if quantity < 1 {
		s.Remove(productID)
		return nil
	}

	s.mu.Lock()
	for i, line := range s.lines {
		if line.ProductID != productID {
			continue
		}
		if quantity > line.Stock {
			s.mu.Unlock()
			return &InsufficientStockError{ProductID: productID, Available: line.Stock}
		}
		s.lines[i].Quantity = quantity
		s.persist()
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.mu.Unlock()
	return nil
}

// Clear empties the cart unconditionally. Called after order placement
// and on logout.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.persist()
	s.mu.Unlock()
	s.notify()
}

// Lines returns a copy of the current line sequence, in insertion order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Total returns the cart total, recomputed from the current lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, line := range s.lines {
		total += line.Subtotal()
	}
	return total
}

// Count returns the total unit count, recomputed from the current lines.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var count int
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

// Show, Hide, Toggle, and Visible manage the view-layer visibility flag.
// The flag is not persisted and carries no data invariants.

func (s *Store) Show() {
	s.mu.Lock()
	s.visible = true
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Hide() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Toggle() {
	s.mu.Lock()
	s.visible = !s.visible
	s.mu.Unlock()
	s.notify()
}

func (s *Store) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// Subscribe registers a change notification callback and returns its
// cancel function. Callbacks fire after every state change, outside the
// store lock, so they may re-read derived values freely.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// persist serializes the full line sequence to storage. Caller must hold
// s.mu. Errors are logged and swallowed.
func (s *Store) persist() {
	lines := s.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		s.logger.Error("marshal cart", "error", err)
		return
	}
	if err := s.storage.Set(storageKey, string(data)); err != nil {
		s.logger.Warn("persist cart failed", "error", err)
	}
}

// notify invokes subscriber callbacks. Must be called without s.mu held.
func (s *Store) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}
