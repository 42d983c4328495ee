// internal/domain/order/builder.go
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/your-org/marketflow-backend/internal/domain/cart"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
	"github.com/your-org/marketflow-backend/internal/pkg/validation"
)

// Creator persists a freshly built order
type Creator interface {
	Create(ctx context.Context, o *Order) (*Order, error)
}

// DefaultCountry fills a shipping address that omits the country
const DefaultCountry = "United States"

// Builder turns a priced cart into an order. It never touches the cart.
type Builder struct {
	store          Creator
	defaultPayment string
	now            func() time.Time
}

// NewBuilder creates a builder that hands orders to store
func NewBuilder(store Creator, defaultPayment string) *Builder {
	if defaultPayment == "" {
		defaultPayment = "Credit Card"
	}
	return &Builder{
		store:          store,
		defaultPayment: defaultPayment,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// Build freezes the cart's line items and totals into a pending order and
// persists it
func (b *Builder) Build(ctx context.Context, priced *cart.PricedCart, shipping Address, paymentLabel string, customer Customer) (*Order, error) {
	if priced == nil || priced.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if missing := priced.Unavailable(); len(missing) > 0 {
		ids := make([]string, len(missing))
		for i, item := range missing {
			ids[i] = fmt.Sprint(item.ProductID)
		}
		return nil, apperror.NotFound(ErrUnavailableItems.Code,
			"products no longer available: %s", strings.Join(ids, ", "))
	}

	shipping = trimAddress(shipping)
	customer.Email = strings.TrimSpace(customer.Email)
	customer.Name = strings.TrimSpace(customer.Name)
	if err := validation.Struct(shipping); err != nil {
		return nil, err
	}
	if err := validation.Struct(customer); err != nil {
		return nil, err
	}

	payment := strings.TrimSpace(paymentLabel)
	if payment == "" {
		payment = b.defaultPayment
	}

	items := make([]OrderItem, len(priced.Items))
	for i, line := range priced.Items {
		items[i] = OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			ImageURL:  line.ImageURL,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal,
		}
	}

	now := b.now()
	o := &Order{
		Items:             items,
		Subtotal:          priced.Subtotal,
		Tax:               priced.Tax,
		Shipping:          priced.Shipping,
		Total:             priced.Total,
		Status:            StatusPending,
		ShippingAddress:   shipping,
		PaymentMethod:     payment,
		CustomerEmail:     customer.Email,
		CustomerName:      customer.Name,
		OrderDate:         now,
		EstimatedDelivery: now.Add(initialDeliveryWindow),
		UpdatedAt:         now,
	}

	return b.store.Create(ctx, o)
}

func trimAddress(a Address) Address {
	country := strings.TrimSpace(a.Country)
	if country == "" {
		country = DefaultCountry
	}
	return Address{
		Street:  strings.TrimSpace(a.Street),
		City:    strings.TrimSpace(a.City),
		State:   strings.TrimSpace(a.State),
		ZipCode: strings.TrimSpace(a.ZipCode),
		Country: country,
	}
}
