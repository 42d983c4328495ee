// internal/domain/order/repository.go
package order

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

var (
	ErrOrderNotFound     = apperror.New(apperror.KindNotFound, "order_not_found", "order not found")
	ErrEmptyCart         = apperror.New(apperror.KindEmptyCart, "empty_cart", "cannot place an order from an empty cart")
	ErrInvalidStatus     = apperror.New(apperror.KindValidation, "invalid_status", "invalid status")
	ErrInvalidTransition = apperror.New(apperror.KindValidation, "invalid_transition", "invalid status transition")
	ErrUnavailableItems  = apperror.New(apperror.KindNotFound, "product_unavailable", "cart contains products that are no longer available")
)

// ListFilter narrows GetAll. Zero values match everything.
type ListFilter struct {
	Status   Status
	DateFrom *time.Time
	DateTo   *time.Time
	Customer string // substring of customer name or email, case-insensitive
}

// Matches reports whether o passes the filter
func (f ListFilter) Matches(o *Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if f.DateFrom != nil && o.OrderDate.Before(*f.DateFrom) {
		return false
	}
	if f.DateTo != nil && o.OrderDate.After(*f.DateTo) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Customer)); q != "" {
		if !strings.Contains(strings.ToLower(o.CustomerName), q) &&
			!strings.Contains(strings.ToLower(o.CustomerEmail), q) {
			return false
		}
	}
	return true
}

// Repository persists orders. Implementations assign ids on Create that
// are strictly greater than every id ever assigned.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	// List returns matching orders, newest first
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
	// Update applies fn to the stored order atomically and persists the result
	Update(ctx context.Context, id int64, fn func(*Order) error) (*Order, error)
	Delete(ctx context.Context, id int64) (*Order, error)
}

// MemoryRepository keeps orders in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[int64]*Order
	lastID int64
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		orders: make(map[int64]*Order),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, o *Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	o.ID = r.lastID
	r.orders[o.ID] = o.clone()
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.clone(), nil
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Order, 0, len(r.orders))
	for _, o := range r.orders {
		if filter.Matches(o) {
			out = append(out, o.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OrderDate.Equal(out[j].OrderDate) {
			return out[i].OrderDate.After(out[j].OrderDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *MemoryRepository) Update(ctx context.Context, id int64, fn func(*Order) error) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}

	working := stored.clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	r.orders[id] = working
	return working.clone(), nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id int64) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	delete(r.orders, id)
	return o, nil
}
