// internal/domain/order/service.go
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

const (
	initialDeliveryWindow = 7 * 24 * time.Hour
	shippedDeliveryWindow = 3 * 24 * time.Hour
	recentOrdersWindow    = 7 * 24 * time.Hour
)

// Service is the order store: creation, lookup, status transitions and
// aggregate statistics over the order collection
type Service struct {
	repo   Repository
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new order service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// OrderListRequest represents order listing query parameters
type OrderListRequest struct {
	Status   string `form:"status"`
	DateFrom string `form:"date_from"`
	DateTo   string `form:"date_to"`
	Customer string `form:"customer"`
}

// UpdateStatusRequest represents an order status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Stats is the aggregate view over all orders
type Stats struct {
	TotalOrders       int            `json:"totalOrders"`
	TotalRevenue      string         `json:"totalRevenue"`
	AverageOrderValue string         `json:"averageOrderValue"`
	StatusCounts      map[Status]int `json:"statusCounts"`
	RecentOrdersCount int            `json:"recentOrdersCount"`
}

// Create persists a new order and returns it with its assigned id
func (s *Service) Create(ctx context.Context, o *Order) (*Order, error) {
	if len(o.Items) == 0 {
		return nil, ErrEmptyCart
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, apperror.Persistence("failed to save order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": o.ID,
		"total":    o.Total.StringFixed(2),
		"items":    len(o.Items),
	}).Info("order created")

	return o, nil
}

// GetByID retrieves a single order
func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return o, nil
}

// GetAll returns the orders matching req, newest first
func (s *Service) GetAll(ctx context.Context, req *OrderListRequest) ([]*Order, error) {
	filter, err := req.toFilter()
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order along the state machine. Entering shipped
// resets the delivery estimate to three days out.
func (s *Service) UpdateStatus(ctx context.Context, id int64, label string) (*Order, error) {
	target, err := ParseStatus(label)
	if err != nil {
		return nil, err
	}

	var from Status
	updated, err := s.repo.Update(ctx, id, func(o *Order) error {
		if !o.Status.CanTransitionTo(target) {
			return apperror.Validation(ErrInvalidTransition.Code,
				"invalid status transition from %s to %s", o.Status, target)
		}

		now := s.now()
		from = o.Status
		o.Status = target
		o.UpdatedAt = now
		if target == StatusShipped {
			o.EstimatedDelivery = now.Add(shippedDeliveryWindow)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": id,
		"from":     from,
		"to":       target,
	}).Info("order status updated")

	return updated, nil
}

// Delete removes an order and returns the removed record
func (s *Service) Delete(ctx context.Context, id int64) (*Order, error) {
	o, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete order %d: %w", id, err)
	}

	s.logger.WithField("order_id", id).Warn("order deleted")
	return o, nil
}

// GetStats folds the order collection into aggregate figures
func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	orders, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	return ComputeStats(orders, s.now()), nil
}

// ComputeStats is the O(n) fold behind GetStats
func ComputeStats(orders []*Order, now time.Time) *Stats {
	stats := &Stats{
		StatusCounts: make(map[Status]int, len(AllStatuses)),
	}
	for _, st := range AllStatuses {
		stats.StatusCounts[st] = 0
	}

	revenue := decimal.Zero
	recentSince := now.Add(-recentOrdersWindow)
	for _, o := range orders {
		stats.TotalOrders++
		revenue = revenue.Add(o.Total)
		stats.StatusCounts[o.Status]++
		if !o.OrderDate.Before(recentSince) {
			stats.RecentOrdersCount++
		}
	}

	average := decimal.Zero
	if stats.TotalOrders > 0 {
		average = revenue.Div(decimal.NewFromInt(int64(stats.TotalOrders)))
	}

	stats.TotalRevenue = revenue.StringFixed(2)
	stats.AverageOrderValue = average.StringFixed(2)
	return stats
}

func (r *OrderListRequest) toFilter() (ListFilter, error) {
	var filter ListFilter
	if r == nil {
		return filter, nil
	}

	if r.Status != "" {
		st, err := ParseStatus(r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = st
	}

	if r.DateFrom != "" {
		from, err := parseDate(r.DateFrom, false)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}
	if r.DateTo != "" {
		to, err := parseDate(r.DateTo, true)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}

	filter.Customer = r.Customer
	return filter, nil
}

// parseDate accepts RFC 3339 timestamps or plain dates. A plain end date
// covers its whole day.
func parseDate(value string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}

	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperror.Validation("invalid_date", "invalid date %q, expected YYYY-MM-DD", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
