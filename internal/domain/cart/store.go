// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

var (
	ErrInvalidProductID = apperror.New(apperror.KindValidation, "invalid_product_id", "product id must be a positive integer")
	ErrInvalidQuantity  = apperror.New(apperror.KindValidation, "invalid_quantity", "quantity must be a positive integer")
	ErrMissingSession   = apperror.New(apperror.KindValidation, "missing_session", "cart session is required")
)

// Publisher is told about every committed cart change
type Publisher interface {
	Publish(topic string)
}

// Store owns the persisted line items of every cart session. Each
// mutation rewrites the whole collection under a version check.
type Store struct {
	storage   Storage
	publisher Publisher
	keyPrefix string
	logger    *logrus.Logger
	now       func() time.Time
}

// NewStore creates a cart store. Keys are keyPrefix followed by the session id.
func NewStore(storage Storage, publisher Publisher, keyPrefix string, logger *logrus.Logger) *Store {
	return &Store{
		storage:   storage,
		publisher: publisher,
		keyPrefix: keyPrefix,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GetItems returns the session's line items. Missing, unreadable or
// corrupt storage yields an empty collection.
func (s *Store) GetItems(ctx context.Context, sessionID string) []LineItem {
	if sessionID == "" {
		return []LineItem{}
	}

	items, _, err := s.load(ctx, sessionID)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": sessionID,
			"error":      err.Error(),
		}).Warn("cart read failed, serving empty cart")
		return []LineItem{}
	}
	return items
}

// GetCartCount returns the sum of all quantities
func (s *Store) GetCartCount(ctx context.Context, sessionID string) int {
	count := 0
	for _, item := range s.GetItems(ctx, sessionID) {
		count += item.Quantity
	}
	return count
}

// AddItem adds quantity units of productID, merging with an existing line
func (s *Store) AddItem(ctx context.Context, sessionID string, productID int64, quantity int) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}
	if productID <= 0 {
		return ErrInvalidProductID
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	overflow := false
	err := s.mutate(ctx, sessionID, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ProductID == productID {
				if items[i].Quantity > math.MaxInt-quantity {
					overflow = true
					return items, false
				}
				items[i].Quantity += quantity
				return items, true
			}
		}
		return append(items, LineItem{
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   s.now(),
		}), true
	})
	if err != nil {
		return err
	}
	if overflow {
		return ErrInvalidQuantity
	}
	return nil
}

// UpdateQuantity replaces the quantity of productID. A quantity of zero or
// less removes the line. Unknown products are left alone.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID string, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}
	if err := validateSession(sessionID); err != nil {
		return err
	}
	if productID <= 0 {
		return ErrInvalidProductID
	}

	return s.mutate(ctx, sessionID, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ProductID == productID {
				if items[i].Quantity == quantity {
					return items, false
				}
				items[i].Quantity = quantity
				return items, true
			}
		}
		return items, false
	})
}

// RemoveItem drops the line for productID if present
func (s *Store) RemoveItem(ctx context.Context, sessionID string, productID int64) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}
	if productID <= 0 {
		return ErrInvalidProductID
	}

	return s.mutate(ctx, sessionID, func(items []LineItem) ([]LineItem, bool) {
		for i := range items {
			if items[i].ProductID == productID {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}

// ClearCart empties the session's cart unconditionally
func (s *Store) ClearCart(ctx context.Context, sessionID string) error {
	if err := validateSession(sessionID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, s.key(sessionID)); err != nil {
		return apperror.Persistence("cart persistence failed", err)
	}

	s.publisher.Publish(sessionID)
	return nil
}

// mutate runs one read-modify-write cycle. fn reports whether it changed
// anything; unchanged collections are not written and not signalled.
func (s *Store) mutate(ctx context.Context, sessionID string, fn func([]LineItem) ([]LineItem, bool)) error {
	items, version, err := s.load(ctx, sessionID)
	if err != nil && !errors.Is(err, errCorruptCart) {
		return apperror.Persistence("cart persistence failed", err)
	}
	if err != nil {
		s.logger.WithField("session_id", sessionID).Warn("overwriting corrupt cart")
	}

	items, changed := fn(items)
	if !changed {
		return nil
	}

	blob, err := json.Marshal(items)
	if err != nil {
		return apperror.Persistence("cart persistence failed", err)
	}

	if _, err := s.storage.Save(ctx, s.key(sessionID), blob, version); err != nil {
		if errors.Is(err, ErrVersionConflict) {
			return apperror.Conflict("cart was modified concurrently, reload and retry", err)
		}
		return apperror.Persistence("cart persistence failed", err)
	}

	s.publisher.Publish(sessionID)
	return nil
}

var errCorruptCart = errors.New("corrupt cart blob")

// load decodes the stored collection. A corrupt blob comes back as an
// empty collection together with errCorruptCart and the stored version.
func (s *Store) load(ctx context.Context, sessionID string) ([]LineItem, int64, error) {
	blob, version, err := s.storage.Load(ctx, s.key(sessionID))
	if err != nil {
		return nil, 0, err
	}
	if len(blob) == 0 {
		return []LineItem{}, version, nil
	}

	var items []LineItem
	if err := json.Unmarshal(blob, &items); err != nil {
		return []LineItem{}, version, fmt.Errorf("%w: %v", errCorruptCart, err)
	}

	// drop entries no valid write could have produced
	valid := items[:0]
	for _, item := range items {
		if item.ProductID > 0 && item.Quantity > 0 {
			valid = append(valid, item)
		}
	}
	if valid == nil {
		valid = []LineItem{}
	}
	return valid, version, nil
}

func (s *Store) key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func validateSession(sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	return nil
}
