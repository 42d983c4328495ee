// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/domain/order"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

// Run migrates the schema and then creates the secondary indexes
func (m *Migration) Run() error {
	if err := m.RunAutoMigrations(); err != nil {
		return err
	}
	return m.CreateIndexes()
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("running database auto-migrations")

	for _, model := range order.Models() {
		m.logger.Debugf("migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for the order listing queries
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Order listing is newest first, optionally by status
		"CREATE INDEX IF NOT EXISTS idx_orders_order_date ON orders(order_date DESC, id DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_date ON orders(status, order_date DESC)",

		// Customer search
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_name_lower ON orders(LOWER(customer_name))",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer_email_lower ON orders(LOWER(customer_email))",

		// Order item lookups
		"CREATE INDEX IF NOT EXISTS idx_order_items_order_product ON order_items(order_id, product_id)",
	}

	failed := 0
	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			failed++
			m.logger.WithError(err).Warn("failed to create index")
		}
	}

	m.logger.WithFields(logrus.Fields{
		"created": len(indexes) - failed,
		"failed":  failed,
	}).Info("database indexes ensured")
	return nil
}

// GetTableInfo logs the row count of every managed table
func (m *Migration) GetTableInfo() (map[string]int64, error) {
	tables := []string{"orders", "order_items"}
	counts := make(map[string]int64, len(tables))

	for _, table := range tables {
		var count int64
		if err := m.db.Table(table).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", table, err)
		}
		counts[table] = count
	}

	m.logger.WithField("tables", counts).Info("database tables information")
	return counts, nil
}
