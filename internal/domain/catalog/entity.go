// internal/domain/catalog/entity.go
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable catalog entry
type Product struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compareAtPrice"`
	Images         []string        `json:"images"`
	Stock          int             `json:"stock"`
	Category       string          `json:"category"`
	Rating         float64         `json:"rating"`
	ReviewCount    int             `json:"reviewCount"`
	Featured       bool            `json:"featured"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Business methods for Product

// OnSale reports whether the product is discounted. A product is on sale
// exactly when its compare-at price is above its selling price.
func (p *Product) OnSale() bool {
	return p.CompareAtPrice.GreaterThan(p.Price)
}

// DiscountPercent returns the whole-number discount off the compare-at price
func (p *Product) DiscountPercent() int {
	if !p.OnSale() {
		return 0
	}
	off := p.CompareAtPrice.Sub(p.Price).Div(p.CompareAtPrice).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}

// PrimaryImage returns the first image or an empty string
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// IsInStock checks if at least one unit can be sold
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// CanFulfil checks whether quantity units are available
func (p *Product) CanFulfil(quantity int) bool {
	return quantity <= p.Stock
}

// clone returns a deep copy so callers cannot mutate repository state
func (p *Product) clone() *Product {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	return &cp
}

// ProductView is the representation served to clients
type ProductView struct {
	*Product
	OnSale          bool `json:"onSale"`
	DiscountPercent int  `json:"discountPercent"`
	InStock         bool `json:"inStock"`
}

// View wraps a product with its derived attributes
func View(p *Product) ProductView {
	return ProductView{
		Product:         p,
		OnSale:          p.OnSale(),
		DiscountPercent: p.DiscountPercent(),
		InStock:         p.IsInStock(),
	}
}

// Views maps View over a slice
func Views(products []*Product) []ProductView {
	views := make([]ProductView, len(products))
	for i, p := range products {
		views[i] = View(p)
	}
	return views
}
