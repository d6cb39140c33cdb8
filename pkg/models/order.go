package models

import (
	"time"
)

type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentOnline PaymentMethod = "online"
)

type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// OrderRecord is the immutable snapshot produced by a successful checkout
// submission. It exists only for the invoice/notification handoff and is
// never persisted.
type OrderRecord struct {
	OrderID           string        `json:"orderId"`
	Date              time.Time     `json:"date"`
	Customer          Customer      `json:"customer"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	Items             []CartItem    `json:"items"`
	Subtotal          int           `json:"subtotal"`
	Shipping          int           `json:"shipping"`
	Total             int           `json:"total"`
	PaymentScreenshot []byte        `json:"paymentScreenshot,omitempty"`
	UTRNumber         string        `json:"utrNumber,omitempty"`
}
