// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

// Service handles cart business logic on top of the Store
type Service struct {
	store    *Store
	enricher *Enricher
	products ProductLookup
	rates    Rates
	logger   *logrus.Logger
}

// NewService creates a new cart service
func NewService(store *Store, enricher *Enricher, products ProductLookup, rates Rates, logger *logrus.Logger) *Service {
	return &Service{
		store:    store,
		enricher: enricher,
		products: products,
		rates:    rates,
		logger:   logger,
	}
}

// AddToCartRequest represents add to cart request
type AddToCartRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  *int  `json:"quantity"`
}

// UpdateCartItemRequest represents update cart item request
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// GetCart returns the session's cart, enriched and priced
func (s *Service) GetCart(ctx context.Context, sessionID string) *PricedCart {
	items := s.store.GetItems(ctx, sessionID)
	priced := Price(s.enricher.Enrich(ctx, items), s.rates)
	return &priced
}

// GetCartCount returns the badge count for the session
func (s *Service) GetCartCount(ctx context.Context, sessionID string) int {
	return s.store.GetCartCount(ctx, sessionID)
}

// AddToCart adds an item after checking the product exists and has stock
func (s *Service) AddToCart(ctx context.Context, sessionID string, req *AddToCartRequest) (*PricedCart, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if req.ProductID <= 0 {
		return nil, ErrInvalidProductID
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	// Validate product exists
	product, err := s.products.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}

	// Check inventory availability against what is already in the cart
	inCart := 0
	for _, item := range s.store.GetItems(ctx, sessionID) {
		if item.ProductID == req.ProductID {
			inCart = item.Quantity
			break
		}
	}
	if quantity > product.Stock-inCart {
		return nil, insufficientStock(product.Name, product.Stock)
	}

	if err := s.store.AddItem(ctx, sessionID, req.ProductID, quantity); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"product_id": req.ProductID,
		"quantity":   quantity,
	}).Debug("item added to cart")

	return s.GetCart(ctx, sessionID), nil
}

// UpdateCartItem sets the quantity of a line; zero removes it
func (s *Service) UpdateCartItem(ctx context.Context, sessionID string, productID int64, req *UpdateCartItemRequest) (*PricedCart, error) {
	if req.Quantity == nil {
		return nil, ErrInvalidQuantity
	}
	quantity := *req.Quantity

	if quantity > 0 {
		// Validate inventory if updating to non-zero quantity
		product, err := s.products.GetByID(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("update cart item: %w", err)
		}
		if !product.CanFulfil(quantity) {
			return nil, insufficientStock(product.Name, product.Stock)
		}
	}

	if err := s.store.UpdateQuantity(ctx, sessionID, productID, quantity); err != nil {
		return nil, err
	}

	return s.GetCart(ctx, sessionID), nil
}

// RemoveFromCart removes a line from the cart
func (s *Service) RemoveFromCart(ctx context.Context, sessionID string, productID int64) (*PricedCart, error) {
	if err := s.store.RemoveItem(ctx, sessionID, productID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, sessionID), nil
}

// ClearCart empties the cart
func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	return s.store.ClearCart(ctx, sessionID)
}

func insufficientStock(name string, stock int) error {
	return apperror.Validation("insufficient_stock", "insufficient stock for %s, available: %d", name, stock)
}
