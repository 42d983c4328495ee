// internal/domain/order/gorm_repository.go
package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRepository stores orders in PostgreSQL. Ids come from the table's
// serial sequence, which never hands out a value twice.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a repository on db
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Models lists the tables this repository needs migrated
func Models() []interface{} {
	return []interface{}{
		&Order{},
		&OrderItem{},
	}
}

func (r *GormRepository) Create(ctx context.Context, o *Order) error {
	o.ID = 0
	for i := range o.Items {
		o.Items[i].ID = 0
		o.Items[i].OrderID = 0
	}

	if err := r.db.WithContext(ctx).Create(o).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o Order
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Where("id = ?", id).
		First(&o)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", result.Error)
	}
	return &o, nil
}

func (r *GormRepository) List(ctx context.Context, filter ListFilter) ([]*Order, error) {
	query := r.db.WithContext(ctx).Model(&Order{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		})

	// Apply filters
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("order_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("order_date <= ?", *filter.DateTo)
	}
	if q := strings.TrimSpace(filter.Customer); q != "" {
		like := "%" + escapeLike(q) + "%"
		query = query.Where("customer_name ILIKE ? OR customer_email ILIKE ?", like, like)
	}

	var orders []*Order
	if err := query.Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

func (r *GormRepository) Update(ctx context.Context, id int64, fn func(*Order) error) (*Order, error) {
	var updated Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&updated)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to lock order: %w", result.Error)
		}

		if err := fn(&updated); err != nil {
			return err
		}

		// only the mutable columns are written back
		return tx.Model(&Order{ID: id}).Updates(map[string]interface{}{
			"status":             updated.Status,
			"estimated_delivery": updated.EstimatedDelivery,
			"updated_at":         updated.UpdatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *GormRepository) Delete(ctx context.Context, id int64) (*Order, error) {
	var removed *Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var o Order
		result := tx.Preload("Items").Where("id = ?", id).First(&o)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("failed to retrieve order: %w", result.Error)
		}

		if err := tx.Where("order_id = ?", id).Delete(&OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Delete(&Order{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}

		removed = &o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
