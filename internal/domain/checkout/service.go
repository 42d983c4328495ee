// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/domain/cart"
	"github.com/your-org/marketflow-backend/internal/domain/order"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
	"github.com/your-org/marketflow-backend/internal/pkg/validation"
)

// CartReader is the part of the cart service checkout needs
type CartReader interface {
	GetCart(ctx context.Context, sessionID string) *cart.PricedCart
	ClearCart(ctx context.Context, sessionID string) error
}

// OrderBuilder freezes a priced cart into a stored order
type OrderBuilder interface {
	Build(ctx context.Context, priced *cart.PricedCart, shipping order.Address, paymentLabel string, customer order.Customer) (*order.Order, error)
}

// Notifier sends the customer a confirmation of a placed order
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, o *order.Order) error
}

// Service handles checkout business logic
type Service struct {
	carts    CartReader
	builder  OrderBuilder
	notifier Notifier
	logger   *logrus.Logger
}

// NewService creates a new checkout service. notifier may be nil.
func NewService(carts CartReader, builder OrderBuilder, notifier Notifier, logger *logrus.Logger) *Service {
	return &Service{
		carts:    carts,
		builder:  builder,
		notifier: notifier,
		logger:   logger,
	}
}

// PlaceOrderRequest represents the checkout form submission. Card details
// are never accepted; PaymentMethod is a display label only.
type PlaceOrderRequest struct {
	Email           string        `json:"email" validate:"required,email,max=255"`
	FirstName       string        `json:"firstName" validate:"required,max=100"`
	LastName        string        `json:"lastName" validate:"max=100"`
	ShippingAddress order.Address `json:"shippingAddress" validate:"required"`
	PaymentMethod   string        `json:"paymentMethod" validate:"max=50"`
}

// CustomerName joins the first and last name
func (r *PlaceOrderRequest) CustomerName() string {
	return strings.TrimSpace(strings.TrimSpace(r.FirstName) + " " + strings.TrimSpace(r.LastName))
}

// PlaceOrder turns the session's cart into an order and empties the cart
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, req *PlaceOrderRequest) (*order.Order, error) {
	if req == nil {
		return nil, apperror.Validation("invalid_request", "checkout details are required")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	priced := s.carts.GetCart(ctx, sessionID)
	if priced.IsEmpty() {
		return nil, order.ErrEmptyCart
	}

	// Stock may have moved since the items were added
	for _, item := range priced.Items {
		if item.Available && item.Quantity > item.Stock {
			return nil, apperror.Validation("insufficient_stock",
				"insufficient stock for %s, available: %d", item.Name, item.Stock)
		}
	}

	customer := order.Customer{Email: req.Email, Name: req.CustomerName()}
	o, err := s.builder.Build(ctx, priced, req.ShippingAddress, req.PaymentMethod, customer)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	// The order is stored at this point; a failed clear is only logged.
	if err := s.carts.ClearCart(ctx, sessionID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"order_id":   o.ID,
			"error":      err.Error(),
		}).Error("failed to clear cart after checkout")
	}

	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(ctx, o); err != nil {
			s.logger.WithFields(logrus.Fields{
				"order_id": o.ID,
				"error":    err.Error(),
			}).Warn("failed to send order confirmation")
		}
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": sessionID,
		"order_id":   o.ID,
		"total":      o.Total.StringFixed(2),
	}).Info("checkout completed")

	return o, nil
}
