// internal/domain/cart/enrich.go
package cart

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/domain/catalog"
	"golang.org/x/sync/errgroup"
)

// PlaceholderName labels line items whose product could not be resolved
const PlaceholderName = "Product not found"

// ProductLookup resolves a product by id
type ProductLookup interface {
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
}

// Enricher joins line items with catalog data
type Enricher struct {
	products ProductLookup
	workers  int
	logger   *logrus.Logger
}

// NewEnricher creates an enricher fetching at most workers products at a time
func NewEnricher(products ProductLookup, workers int, logger *logrus.Logger) *Enricher {
	if workers < 1 {
		workers = 1
	}
	return &Enricher{
		products: products,
		workers:  workers,
		logger:   logger,
	}
}

// Enrich fetches every item's product concurrently. The output has the
// same order as items; unresolvable products become zero-priced placeholders.
func (e *Enricher) Enrich(ctx context.Context, items []LineItem) []EnrichedLineItem {
	out := make([]EnrichedLineItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			product, err := e.products.GetByID(gctx, item.ProductID)
			if err != nil {
				e.logger.WithFields(logrus.Fields{
					"product_id": item.ProductID,
					"error":      err.Error(),
				}).Debug("cart item product lookup failed")
				out[i] = placeholder(item)
				return nil
			}
			out[i] = enriched(item, product)
			return nil
		})
	}

	// lookups never return errors, failures become placeholders
	_ = g.Wait()
	return out
}

func enriched(item LineItem, p *catalog.Product) EnrichedLineItem {
	return EnrichedLineItem{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
		Name:      p.Name,
		ImageURL:  p.PrimaryImage(),
		UnitPrice: p.Price,
		LineTotal: p.Price.Mul(decimal.NewFromInt(int64(item.Quantity))),
		Stock:     p.Stock,
		Available: true,
	}
}

func placeholder(item LineItem) EnrichedLineItem {
	return EnrichedLineItem{
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		AddedAt:   item.AddedAt,
		Name:      PlaceholderName,
		UnitPrice: decimal.Zero,
		LineTotal: decimal.Zero,
		Available: false,
	}
}
