package models

// ItemType distinguishes the two catalog id spaces. Products carry numeric
// ids and kits carry string ids, so a bare id is ambiguous between them.
type ItemType string

const (
	TypeProduct ItemType = "product"
	TypeKit     ItemType = "kit"
)

// ItemRef is the (id, type) key used everywhere an item is referenced.
// Product ids are carried as their decimal string form.
type ItemRef struct {
	ID   string   `json:"id"`
	Type ItemType `json:"type"`
}

type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type Product struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Category    string   `json:"category"`
	CategoryID  int      `json:"categoryId"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock,omitempty"`
	OutOfStock  bool     `json:"outOfStock,omitempty"`
}

type Kit struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int      `json:"price"`
	Category    string   `json:"category"`
	CategoryID  int      `json:"categoryId"`
	Images      []string `json:"images"`
	Stock       int      `json:"stock,omitempty"`
	OutOfStock  bool     `json:"outOfStock,omitempty"`
}

// Catalog is the full product document as loaded from the catalog source.
type Catalog struct {
	Categories []Category `json:"categories"`
	Products   []Product  `json:"products"`
	Kits       []Kit      `json:"kits"`
}
