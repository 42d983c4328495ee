package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func lineOf(total string, qty int) EnrichedLineItem {
	return EnrichedLineItem{Quantity: qty, LineTotal: dec(total), Available: true}
}

func TestPrice_Table(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		tax      string
		shipping string
		total    string
	}{
		{"below threshold", "40.00", "3.20", "9.99", "53.19"},
		{"above threshold", "60.00", "4.80", "0", "64.80"},
		{"exactly at threshold pays shipping", "50.00", "4.00", "9.99", "63.99"},
		{"one cent above threshold ships free", "50.01", "4.0008", "0", "54.0108"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			priced := Price([]EnrichedLineItem{lineOf(tt.subtotal, 1)}, DefaultRates())

			assert.True(t, priced.Subtotal.Equal(dec(tt.subtotal)), "subtotal %s", priced.Subtotal)
			assert.True(t, priced.Tax.Equal(dec(tt.tax)), "tax %s", priced.Tax)
			assert.True(t, priced.Shipping.Equal(dec(tt.shipping)), "shipping %s", priced.Shipping)
			assert.True(t, priced.Total.Equal(dec(tt.total)), "total %s", priced.Total)
		})
	}
}

func TestPrice_SumsLines(t *testing.T) {
	items := []EnrichedLineItem{
		lineOf("19.98", 2),
		lineOf("24.99", 1),
		{Quantity: 3, LineTotal: decimal.Zero, Name: PlaceholderName},
	}

	priced := Price(items, DefaultRates())

	assert.True(t, priced.Subtotal.Equal(dec("44.97")))
	assert.Equal(t, 3, priced.ItemCount)
	assert.Equal(t, 6, priced.TotalQuantity)
	assert.Len(t, priced.Unavailable(), 1)
}

func TestPrice_RoundsOnlyForDisplay(t *testing.T) {
	priced := Price([]EnrichedLineItem{lineOf("50.01", 1)}, DefaultRates())

	assert.Equal(t, "4.0008", priced.Tax.String())
	summary := priced.Summary()
	assert.Equal(t, "4.00", summary.Tax)
	assert.Equal(t, "54.01", summary.Total)
	assert.Equal(t, "0.00", summary.Shipping)
}

func TestPrice_Empty(t *testing.T) {
	priced := Price(nil, DefaultRates())

	assert.True(t, priced.IsEmpty())
	assert.NotNil(t, priced.Items)
	assert.True(t, priced.Subtotal.IsZero())
	assert.True(t, priced.Tax.IsZero())
}
