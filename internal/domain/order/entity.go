// internal/domain/order/entity.go
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable record of a checkout. Only Status and
// EstimatedDelivery change after creation.
type Order struct {
	ID    int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items"`

	// Financial Information
	Subtotal decimal.Decimal `gorm:"type:numeric;not null" json:"subtotal"`
	Tax      decimal.Decimal `gorm:"type:numeric;not null" json:"tax"`
	Shipping decimal.Decimal `gorm:"type:numeric;not null" json:"shipping"`
	Total    decimal.Decimal `gorm:"type:numeric;not null" json:"total"`

	Status          Status  `gorm:"not null;default:'pending';size:20;index" json:"status"`
	ShippingAddress Address `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod   string  `gorm:"size:50" json:"paymentMethod"`

	// Customer Information
	CustomerEmail string `gorm:"not null;size:255;index" json:"customerEmail"`
	CustomerName  string `gorm:"not null;size:200" json:"customerName"`

	// Timestamps
	OrderDate         time.Time `gorm:"not null;index" json:"orderDate"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// OrderItem is a line item frozen at order time
type OrderItem struct {
	ID        int64           `gorm:"primaryKey" json:"-"`
	OrderID   int64           `gorm:"not null;index" json:"-"`
	ProductID int64           `gorm:"not null;index" json:"productId"`
	Name      string          `gorm:"not null;size:255" json:"productName"`
	ImageURL  string          `gorm:"size:500" json:"productImage"`
	UnitPrice decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	LineTotal decimal.Decimal `gorm:"type:numeric;not null" json:"total"`
}

// Address represents the shipping address (embedded in Order)
type Address struct {
	Street  string `gorm:"size:255" json:"street" validate:"required,max=255"`
	City    string `gorm:"size:100" json:"city" validate:"required,max=100"`
	State   string `gorm:"size:100" json:"state" validate:"required,max=100"`
	ZipCode string `gorm:"size:20" json:"zipCode" validate:"required,max=20"`
	Country string `gorm:"size:100" json:"country" validate:"required,max=100"`
}

// Customer identifies who placed an order
type Customer struct {
	Email string `json:"email" validate:"required,email,max=255"`
	Name  string `json:"name" validate:"required,max=200"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// Business methods for Order

// OrderNumber returns the display reference of the order
func (o *Order) OrderNumber() string {
	// Format: ORD-YYYYMMDD-XXXXX
	return fmt.Sprintf("ORD-%s-%05d", o.OrderDate.Format("20060102"), o.ID)
}

// CanBeCancelled checks if order can be cancelled
func (o *Order) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(StatusCancelled)
}

// IsCompleted checks if order reached a terminal state
func (o *Order) IsCompleted() bool {
	return o.Status.IsTerminal()
}

// ItemCount returns the total number of units ordered
func (o *Order) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// clone returns a deep copy so callers cannot mutate stored orders
func (o *Order) clone() *Order {
	cp := *o
	if o.Items != nil {
		cp.Items = append([]OrderItem(nil), o.Items...)
	}
	return &cp
}
