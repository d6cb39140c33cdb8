// Package pricing derives order totals from cart contents and the chosen
// payment method. Calculation is pure and recomputed on every call; carts
// are small enough that caching would buy nothing.
package pricing

import (
	"github.com/example/creatorstore/pkg/config"
	"github.com/example/creatorstore/pkg/models"
)

type Quote struct {
	Subtotal int `json:"subtotal"`
	Shipping int `json:"shipping"`
	Total    int `json:"total"`
}

// Calculate prices the given lines under the shipping rules. Cash on
// delivery ships free at or above the threshold; online payment pays the
// flat fee; an unset or unknown method ships at zero.
func Calculate(items []models.CartItem, method models.PaymentMethod, rules config.ShippingConfig) Quote {
	subtotal := 0
	for _, it := range items {
		subtotal += it.Price * it.Quantity
	}

	shipping := 0
	switch method {
	case models.PaymentCOD:
		if subtotal < rules.CODFreeThreshold {
			shipping = rules.CODFee
		}
	case models.PaymentOnline:
		shipping = rules.OnlineFee
	}

	return Quote{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}
