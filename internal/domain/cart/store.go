// Package cart owns a shopper's in-progress selections.
//
// A Store serializes every mutation, so each operation observes the result of
// every operation that completed before it. Subscribers receive snapshots in
// the same order the mutations happened.
package cart

import (
	"sync"

	"stylesync-backend/internal/domain/catalog"
)

// Line is one product in the cart. Product is a display copy that may be
// stale; quantity and identity never depend on it.
type Line struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *catalog.Product `json:"product,omitempty"`
}

func (l Line) subtotal() float64 {
	if l.Product == nil {
		return 0
	}
	return float64(l.Quantity) * l.Product.Price
}

// Snapshot is a consistent view of the cart at one version.
type Snapshot struct {
	Lines   []Line  `json:"items"`
	Total   float64 `json:"total"`
	Count   int     `json:"count"`
	Version uint64  `json:"version"`
}

// Listener receives a snapshot after every mutation that changed the cart.
// It must not call back into the Store's mutating methods or Subscribe.
type Listener func(Snapshot)

// Store is the single owner of one cart. The zero value is not usable; call New.
type Store struct {
	mu      sync.Mutex
	lines   []Line
	version uint64

	notifyMu  sync.Mutex
	listeners map[uint64]Listener
	nextID    uint64
}

// New returns an empty cart.
func New() *Store {
	return &Store{listeners: make(map[uint64]Listener)}
}

// AddItem increments the quantity of the product's line, or appends a new line
// with quantity 1. The line's product copy is replaced with the given one.
func (s *Store) AddItem(product catalog.Product) {
	s.mutate(func() bool {
		p := product
		for i := range s.lines {
			if s.lines[i].ProductID == product.ID {
				s.lines[i].Quantity++
				s.lines[i].Product = &p
				return true
			}
		}
		s.lines = append(s.lines, Line{ProductID: product.ID, Quantity: 1, Product: &p})
		return true
	})
}

// RemoveItem deletes the line for productID. Unknown IDs are ignored.
func (s *Store) RemoveItem(productID string) {
	s.mutate(func() bool {
		return s.removeLocked(productID)
	})
}

// UpdateQuantity sets the absolute quantity of a line. A quantity of zero or
// less removes the line. Unknown IDs are ignored.
func (s *Store) UpdateQuantity(productID string, quantity int) {
	s.mutate(func() bool {
		if quantity <= 0 {
			return s.removeLocked(productID)
		}
		for i := range s.lines {
			if s.lines[i].ProductID == productID {
				if s.lines[i].Quantity == quantity {
					return false
				}
				s.lines[i].Quantity = quantity
				return true
			}
		}
		return false
	})
}

// Refresh replaces the product copies of lines whose product appears in
// products. Lines are never added or removed.
func (s *Store) Refresh(products []catalog.Product) {
	if len(products) == 0 {
		return
	}
	index := catalog.Index(products)
	s.mutate(func() bool {
		changed := false
		for i := range s.lines {
			p, ok := index[s.lines[i].ProductID]
			if !ok {
				continue
			}
			p.Tags = append([]string(nil), p.Tags...)
			s.lines[i].Product = &p
			changed = true
		}
		return changed
	})
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mutate(func() bool {
		if len(s.lines) == 0 {
			return false
		}
		s.lines = nil
		return true
	})
}

// Total is the sum of quantity times price over all lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalLocked()
}

// Count is the sum of all quantities.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Len is the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Lines returns a copy of the lines in first-add order.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// ProductIDs returns the IDs of every line in order.
func (s *Store) ProductIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.lines))
	for i, l := range s.lines {
		ids[i] = l.ProductID
	}
	return ids
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers l and returns a function that removes it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

// mutate applies fn under the state lock and, if it changed anything, notifies
// listeners. notifyMu is taken before mu is released so notifications cannot
// overtake each other.
func (s *Store) mutate(fn func() bool) {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	s.version++
	snap := s.snapshotLocked()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, l := range s.listeners {
		l(snap)
	}
}

func (s *Store) removeLocked(productID string) bool {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Store) totalLocked() float64 {
	var total float64
	for _, l := range s.lines {
		total += l.subtotal()
	}
	return total
}

func (s *Store) countLocked() int {
	var count int
	for _, l := range s.lines {
		count += l.Quantity
	}
	return count
}

func (s *Store) copyLocked() []Line {
	out := make([]Line, len(s.lines))
	for i, l := range s.lines {
		if l.Product != nil {
			p := *l.Product
			l.Product = &p
		}
		out[i] = l
	}
	return out
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:   s.copyLocked(),
		Total:   s.totalLocked(),
		Count:   s.countLocked(),
		Version: s.version,
	}
}
