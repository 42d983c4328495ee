// internal/domain/cart/pricing.go
package cart

import (
	"github.com/shopspring/decimal"
	"github.com/your-org/marketflow-backend/internal/config"
)

// Rates is the fixed rate table of the pricing engine
type Rates struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal // shipping is free strictly above this subtotal
	FlatShippingFee       decimal.Decimal
}

// DefaultRates returns the standard storefront rates
func DefaultRates() Rates {
	return Rates{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.RequireFromString("50.00"),
		FlatShippingFee:       decimal.RequireFromString("9.99"),
	}
}

// RatesFromConfig builds the rate table from configuration
func RatesFromConfig(cfg config.PricingConfig) Rates {
	return Rates{
		TaxRate:               cfg.TaxRate,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
	}
}

// Price computes the totals of items. Amounts are exact; rounding is left
// to display.
func Price(items []EnrichedLineItem, rates Rates) PricedCart {
	subtotal := decimal.Zero
	quantity := 0
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal)
		quantity += item.Quantity
	}

	tax := subtotal.Mul(rates.TaxRate)

	shipping := rates.FlatShippingFee
	if subtotal.GreaterThan(rates.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	if items == nil {
		items = []EnrichedLineItem{}
	}

	return PricedCart{
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Shipping:      shipping,
		Total:         subtotal.Add(tax).Add(shipping),
		ItemCount:     len(items),
		TotalQuantity: quantity,
	}
}
