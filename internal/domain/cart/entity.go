// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product-quantity pair as persisted in the cart blob
type LineItem struct {
	ProductID int64     `json:"productId"`
	Quantity  int       `json:"quantity"`
	AddedAt   time.Time `json:"addedAt"`
}

// EnrichedLineItem is a line item joined with live catalog data
type EnrichedLineItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"addedAt"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"imageUrl"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	Stock     int             `json:"stock"`
	Available bool            `json:"available"`
}

// PricedCart is the enriched cart with its computed totals
type PricedCart struct {
	Items         []EnrichedLineItem `json:"items"`
	Subtotal      decimal.Decimal    `json:"subtotal"`
	Tax           decimal.Decimal    `json:"tax"`
	Shipping      decimal.Decimal    `json:"shipping"`
	Total         decimal.Decimal    `json:"total"`
	ItemCount     int                `json:"itemCount"`     // Number of distinct products
	TotalQuantity int                `json:"totalQuantity"` // Sum of all quantities
}

// IsEmpty reports whether the cart has no line items
func (c *PricedCart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Unavailable returns the line items whose product could not be resolved
func (c *PricedCart) Unavailable() []EnrichedLineItem {
	var out []EnrichedLineItem
	for _, item := range c.Items {
		if !item.Available {
			out = append(out, item)
		}
	}
	return out
}

// Summary is the display form of a priced cart's totals, rounded to cents
type Summary struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

// Summary formats the totals for display
func (c *PricedCart) Summary() Summary {
	return Summary{
		Subtotal: c.Subtotal.StringFixed(2),
		Tax:      c.Tax.StringFixed(2),
		Shipping: c.Shipping.StringFixed(2),
		Total:    c.Total.StringFixed(2),
	}
}
