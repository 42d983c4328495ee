// internal/domain/catalog/repository.go
package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

// ErrProductNotFound is returned for unknown product ids
var ErrProductNotFound = apperror.New(apperror.KindNotFound, "product_not_found", "product not found")

// Repository stores catalog products
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id int64) (*Product, error)
}

// MemoryRepository keeps products in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	products map[int64]*Product
	lastID   int64
}

// NewMemoryRepository creates a repository holding the given products
func NewMemoryRepository(products []*Product) *MemoryRepository {
	r := &MemoryRepository{
		products: make(map[int64]*Product, len(products)),
	}
	for _, p := range products {
		r.products[p.ID] = p.clone()
		if p.ID > r.lastID {
			r.lastID = p.ID
		}
	}
	return r
}

func (r *MemoryRepository) GetByID(ctx context.Context, id int64) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p.clone(), nil
}

// List returns all products ordered by id
func (r *MemoryRepository) List(ctx context.Context) ([]*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Create assigns the next id and stores p
func (r *MemoryRepository) Create(ctx context.Context, p *Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	p.ID = r.lastID
	r.products[p.ID] = p.clone()
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, p *Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	r.products[p.ID] = p.clone()
	return nil
}

// Delete removes the product and returns what was removed
func (r *MemoryRepository) Delete(ctx context.Context, id int64) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	delete(r.products, id)
	return p, nil
}
