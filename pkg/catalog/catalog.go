package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/example/creatorstore/pkg/models"
)

var ErrNotFound = errors.New("catalog entry not found")

// Item is the common view of a product or kit used by cart and detail lookups.
type Item struct {
	Ref         models.ItemRef `json:"ref"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Price       int            `json:"price"`
	Category    string         `json:"category"`
	CategoryID  int            `json:"categoryId"`
	Images      []string       `json:"images"`
	Stock       int            `json:"stock,omitempty"`
	OutOfStock  bool           `json:"outOfStock,omitempty"`
}

// Image returns the primary image, empty when the entry has none.
func (i Item) Image() string {
	if len(i.Images) == 0 {
		return ""
	}
	return i.Images[0]
}

// Store holds the loaded catalog document. Read-only after Load; a failed
// load leaves the store empty and every listing returns the empty slice.
type Store struct {
	data  models.Catalog
	byRef map[models.ItemRef]Item
}

func NewStore() *Store {
	return &Store{byRef: make(map[models.ItemRef]Item)}
}

// Load reads the catalog document from path. Called once at startup.
func (s *Store) Load(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	return s.LoadBytes(raw)
}

func (s *Store) LoadBytes(raw []byte) error {
	var data models.Catalog
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	byRef := make(map[models.ItemRef]Item, len(data.Products)+len(data.Kits))
	for _, p := range data.Products {
		it := productItem(p)
		byRef[it.Ref] = it
	}
	for _, k := range data.Kits {
		it := kitItem(k)
		byRef[it.Ref] = it
	}

	s.data = data
	s.byRef = byRef
	return nil
}

func (s *Store) Categories() []models.Category {
	return s.data.Categories
}

func (s *Store) Products() []models.Product {
	return s.data.Products
}

func (s *Store) Kits() []models.Kit {
	return s.data.Kits
}

// Lookup resolves a (id, type) reference to its catalog entry.
func (s *Store) Lookup(ref models.ItemRef) (Item, error) {
	it, ok := s.byRef[ref]
	if !ok {
		return Item{}, ErrNotFound
	}
	return it, nil
}

// FilterByCategory returns the products and kits belonging to a category.
func (s *Store) FilterByCategory(categoryID int) ([]models.Product, []models.Kit) {
	var products []models.Product
	for _, p := range s.data.Products {
		if p.CategoryID == categoryID {
			products = append(products, p)
		}
	}
	var kits []models.Kit
	for _, k := range s.data.Kits {
		if k.CategoryID == categoryID {
			kits = append(kits, k)
		}
	}
	return products, kits
}

// Search matches query case-insensitively against name, description and
// category of products and kits. An empty query returns everything.
func (s *Store) Search(query string) ([]models.Product, []models.Kit) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return s.data.Products, s.data.Kits
	}

	var products []models.Product
	for _, p := range s.data.Products {
		if matches(query, p.Name, p.Description, p.Category) {
			products = append(products, p)
		}
	}
	var kits []models.Kit
	for _, k := range s.data.Kits {
		if matches(query, k.Name, k.Description, k.Category) {
			kits = append(kits, k)
		}
	}
	return products, kits
}

// Suggested returns up to n in-stock products other than the one being viewed.
func (s *Store) Suggested(exclude models.ItemRef, n int) []models.Product {
	var out []models.Product
	for _, p := range s.data.Products {
		if p.OutOfStock {
			continue
		}
		if ref := ProductRef(p.ID); ref == exclude {
			continue
		}
		out = append(out, p)
		if len(out) == n {
			break
		}
	}
	return out
}

func matches(query string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// ProductRef builds the reference for a numeric product id.
func ProductRef(id int) models.ItemRef {
	return models.ItemRef{ID: strconv.Itoa(id), Type: models.TypeProduct}
}

// KitRef builds the reference for a kit id.
func KitRef(id string) models.ItemRef {
	return models.ItemRef{ID: id, Type: models.TypeKit}
}

func productItem(p models.Product) Item {
	return Item{
		Ref:         ProductRef(p.ID),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		CategoryID:  p.CategoryID,
		Images:      p.Images,
		Stock:       p.Stock,
		OutOfStock:  p.OutOfStock,
	}
}

func kitItem(k models.Kit) Item {
	return Item{
		Ref:         KitRef(k.ID),
		Name:        k.Name,
		Description: k.Description,
		Price:       k.Price,
		Category:    k.Category,
		CategoryID:  k.CategoryID,
		Images:      k.Images,
		Stock:       k.Stock,
		OutOfStock:  k.OutOfStock,
	}
}
