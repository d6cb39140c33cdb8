package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/creatorstore/pkg/catalog"
	"github.com/example/creatorstore/pkg/models"
)

var (
	ErrOutOfStock   = errors.New("item is out of stock")
	ErrInvalidIndex = errors.New("cart index out of range")
)

// Storage is the persistent slot holding the serialized cart. Load returns
// the empty cart when the slot is missing or unreadable; Save overwrites the
// whole slot.
type Storage interface {
	Load(ctx context.Context) ([]models.CartItem, error)
	Save(ctx context.Context, items []models.CartItem) error
}

// Store owns the ordered list of cart line items. Every mutation writes the
// full cart through Storage before returning. At most one line exists per
// (id, type) reference; adding an existing reference merges quantities.
type Store struct {
	catalog *catalog.Store
	storage Storage
	items   []models.CartItem
}

// NewStore loads the persisted cart from storage. A corrupt or missing slot
// yields an empty cart rather than an error.
func NewStore(ctx context.Context, cat *catalog.Store, storage Storage) *Store {
	items, err := storage.Load(ctx)
	if err != nil {
		items = nil
	}
	return &Store{catalog: cat, storage: storage, items: items}
}

// Add merges quantityDelta into the line for ref, or appends a new line with
// the catalog's current name, price and image. The price is a snapshot; a
// later catalog change does not touch lines already in the cart.
func (s *Store) Add(ctx context.Context, ref models.ItemRef, quantityDelta int) error {
	item, err := s.catalog.Lookup(ref)
	if err != nil {
		return err
	}
	if item.OutOfStock {
		return ErrOutOfStock
	}
	if quantityDelta < 1 {
		quantityDelta = 1
	}

	merged := false
	for i := range s.items {
		if s.items[i].Ref() == ref {
			s.items[i].Quantity += quantityDelta
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, models.CartItem{
			ID:       ref.ID,
			Type:     ref.Type,
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image(),
			Quantity: quantityDelta,
		})
	}

	return s.persist(ctx)
}

// SetQuantity overwrites the quantity of the line at index. A quantity below
// one removes the line. Indices are positional and shift on removal.
func (s *Store) SetQuantity(ctx context.Context, index, quantity int) error {
	if index < 0 || index >= len(s.items) {
		return ErrInvalidIndex
	}
	if quantity < 1 {
		return s.Remove(ctx, index)
	}
	s.items[index].Quantity = quantity
	return s.persist(ctx)
}

// Remove deletes the line at index, shifting later lines down.
func (s *Store) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(s.items) {
		return ErrInvalidIndex
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return s.persist(ctx)
}

// Count is the sum of all line quantities, shown on the cart badge.
func (s *Store) Count() int {
	count := 0
	for _, it := range s.items {
		count += it.Quantity
	}
	return count
}

// Items returns a copy of the current lines in display order.
func (s *Store) Items() []models.CartItem {
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Len() int {
	return len(s.items)
}

// Clear empties the cart and persists the empty state.
func (s *Store) Clear(ctx context.Context) error {
	s.items = nil
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	if err := s.storage.Save(ctx, s.items); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
