// Package cart implements the client-side shopping cart.  The cart lives
// entirely on the client: items are kept in memory in insertion order and
// can be persisted to a JSON file between sessions.  Totals are recomputed
// on every mutation so they never drift from the line items.
package cart

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
)

// Item is a single cart line.  Precio and Imagen are snapshots taken when
// the product was added; the server re-reads the catalog at checkout.
type Item struct {
	ProductID uint64  `json:"idProducto"`
	Nombre    string  `json:"nombre"`
	Precio    float64 `json:"precio"`
	Imagen    string  `json:"imagen"`
	Cantidad  int     `json:"cantidad"`
}

// Store holds the cart state.  All methods are safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	items []Item
	path  string
}

// NewStore returns an empty cart.  If path is non-empty the cart is
// persisted to that file after every mutation and can be restored with
// Load.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// AddItem adds a product to the cart.  If the product is already present
// the quantities are merged; the line keeps its original position.  A
// cantidad of zero or less counts as one.
func (s *Store) AddItem(it Item) {
	if it.Cantidad <= 0 {
		it.Cantidad = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ProductID == it.ProductID {
			s.items[i].Cantidad += it.Cantidad
			s.persistLocked()
			return
		}
	}
	s.items = append(s.items, it)
	s.persistLocked()
}

// UpdateQuantity sets the quantity of a line.  A quantity of zero or less
// removes the line.  Unknown product ids are ignored.
func (s *Store) UpdateQuantity(productID uint64, cantidad int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ProductID != productID {
			continue
		}
		if cantidad <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Cantidad = cantidad
		}
		s.persistLocked()
		return
	}
}

// RemoveItem deletes a line from the cart.
func (s *Store) RemoveItem(productID uint64) {
	s.UpdateQuantity(productID, 0)
}

// Clear empties the cart.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// TotalItems returns the summed quantity across all lines.
func (s *Store) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Cantidad
	}
	return n
}

// TotalPrice returns the summed precio*cantidad across all lines.
func (s *Store) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, it := range s.items {
		total += it.Precio * float64(it.Cantidad)
	}
	return total
}

// Load restores the cart from its backing file.  A missing file leaves the
// cart empty and is not an error; a corrupt file resets the cart.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		s.items = nil
		return nil
	}
	s.items = items
	return nil
}

// persistLocked writes the cart to disk.  Callers must hold s.mu.  Write
// errors are swallowed; the in-memory cart stays authoritative.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(s.items)
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, data, 0o644)
}
