package models

// CartItem is one line of the cart. Name, price and image are snapshots
// taken at add-time; the catalog is not re-read for them later.
type CartItem struct {
	ID       string   `json:"id"`
	Type     ItemType `json:"type"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Image    string   `json:"image"`
	Quantity int      `json:"quantity"`
}

func (i CartItem) Ref() ItemRef {
	return ItemRef{ID: i.ID, Type: i.Type}
}

// LineTotal is price times quantity for this line.
func (i CartItem) LineTotal() int {
	return i.Price * i.Quantity
}
