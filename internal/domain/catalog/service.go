// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/marketflow-backend/internal/pkg/apperror"
)

// Sort keys accepted by ProductListRequest.SortBy
const (
	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortNewest    = "newest"
	SortName      = "name"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Service handles catalog business logic
type Service struct {
	repo   Repository
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new catalog service
func NewService(repo Repository, logger *logrus.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProductListRequest represents catalog filter and sort parameters
type ProductListRequest struct {
	Page      int      `form:"page,default=1"`
	Limit     int      `form:"limit,default=20"`
	Category  string   `form:"category"`
	Search    string   `form:"search"`
	SortBy    string   `form:"sort_by"`
	MinPrice  *float64 `form:"min_price"`
	MaxPrice  *float64 `form:"max_price"`
	MinRating float64  `form:"min_rating"`
	Deals     bool     `form:"deals"`
	Featured  *bool    `form:"featured"`
}

// ProductResponse represents a page of products
type ProductResponse struct {
	Products   []ProductView `json:"products"`
	Pagination Pagination    `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// ProductCreateRequest represents product creation data
type ProductCreateRequest struct {
	Name           string          `json:"name" binding:"required"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	CompareAtPrice decimal.Decimal `json:"compareAtPrice"`
	Images         []string        `json:"images"`
	Stock          int             `json:"stock" binding:"min=0"`
	Category       string          `json:"category" binding:"required"`
	Rating         float64         `json:"rating" binding:"min=0,max=5"`
	Featured       bool            `json:"featured"`
}

// ProductUpdateRequest represents product update data
type ProductUpdateRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	CompareAtPrice *decimal.Decimal `json:"compareAtPrice"`
	Images         []string         `json:"images"`
	Stock          *int             `json:"stock"`
	Category       *string          `json:"category"`
	Rating         *float64         `json:"rating"`
	Featured       *bool            `json:"featured"`
}

// GetByID returns a single product
func (s *Service) GetByID(ctx context.Context, id int64) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// GetProducts filters, sorts and paginates the catalog
func (s *Service) GetProducts(ctx context.Context, req *ProductListRequest) (*ProductResponse, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	filtered := Filter(all, req)
	SortProducts(filtered, req.SortBy)

	page, limit := req.Page, req.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	total := len(filtered)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	totalPages := (total + limit - 1) / limit
	return &ProductResponse{
		Products: Views(filtered[start:end]),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      int64(total),
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// GetFeatured returns featured products, newest first
func (s *Service) GetFeatured(ctx context.Context) ([]*Product, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	featured := make([]*Product, 0)
	for _, p := range all {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	SortProducts(featured, SortNewest)
	return featured, nil
}

// GetCategories returns the distinct categories in sorted order
func (s *Service) GetCategories(ctx context.Context) ([]string, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	seen := make(map[string]bool)
	categories := make([]string, 0)
	for _, p := range all {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

// CreateProduct adds a product to the catalog
func (s *Service) CreateProduct(ctx context.Context, req *ProductCreateRequest) (*Product, error) {
	if err := validatePrices(req.Price, req.CompareAtPrice); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, apperror.Validation("invalid_stock", "stock cannot be negative")
	}

	now := s.now()
	product := &Product{
		Name:           strings.TrimSpace(req.Name),
		Description:    req.Description,
		Price:          req.Price,
		CompareAtPrice: req.CompareAtPrice,
		Images:         req.Images,
		Stock:          req.Stock,
		Category:       strings.TrimSpace(req.Category),
		Rating:         req.Rating,
		Featured:       req.Featured,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"name":       product.Name,
	}).Info("product created")

	return product, nil
}

// UpdateProduct applies the non-nil fields of req
func (s *Service) UpdateProduct(ctx context.Context, id int64, req *ProductUpdateRequest) (*Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.CompareAtPrice != nil {
		product.CompareAtPrice = *req.CompareAtPrice
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, apperror.Validation("invalid_stock", "stock cannot be negative")
		}
		product.Stock = *req.Stock
	}
	if req.Category != nil {
		product.Category = strings.TrimSpace(*req.Category)
	}
	if req.Rating != nil {
		product.Rating = *req.Rating
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}

	if product.Name == "" {
		return nil, apperror.Validation("invalid_name", "name cannot be empty")
	}
	if err := validatePrices(product.Price, product.CompareAtPrice); err != nil {
		return nil, err
	}

	product.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product and returns it. Carts that still hold
// the id will show it as unavailable.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (*Product, error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("delete product %d: %w", id, err)
	}

	s.logger.WithField("product_id", id).Info("product deleted")
	return product, nil
}

// UpdateStock sets the on-hand quantity of a product
func (s *Service) UpdateStock(ctx context.Context, id int64, stock int) (*Product, error) {
	if stock < 0 {
		return nil, apperror.Validation("invalid_stock", "stock cannot be negative")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update stock %d: %w", id, err)
	}

	product.Stock = stock
	product.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}

	return product, nil
}

// Filter returns the products matching every criterion in req
func Filter(products []*Product, req *ProductListRequest) []*Product {
	search := strings.ToLower(strings.TrimSpace(req.Search))

	var minPrice, maxPrice *decimal.Decimal
	if req.MinPrice != nil {
		d := decimal.NewFromFloat(*req.MinPrice)
		minPrice = &d
	}
	if req.MaxPrice != nil {
		d := decimal.NewFromFloat(*req.MaxPrice)
		maxPrice = &d
	}

	out := make([]*Product, 0, len(products))
	for _, p := range products {
		if req.Category != "" && p.Category != req.Category {
			continue
		}
		if minPrice != nil && p.Price.LessThan(*minPrice) {
			continue
		}
		if maxPrice != nil && p.Price.GreaterThan(*maxPrice) {
			continue
		}
		if req.MinRating > 0 && p.Rating < req.MinRating {
			continue
		}
		if req.Deals && !p.OnSale() {
			continue
		}
		if req.Featured != nil && p.Featured != *req.Featured {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// SortProducts orders products in place. Unknown keys fall back to
// featured first, then newest.
func SortProducts(products []*Product, sortBy string) {
	var less func(a, b *Product) bool

	switch sortBy {
	case SortPriceLow:
		less = func(a, b *Product) bool { return a.Price.LessThan(b.Price) }
	case SortPriceHigh:
		less = func(a, b *Product) bool { return a.Price.GreaterThan(b.Price) }
	case SortRating:
		less = func(a, b *Product) bool { return a.Rating > b.Rating }
	case SortNewest:
		less = func(a, b *Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	case SortName:
		less = func(a, b *Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	default:
		less = func(a, b *Product) bool {
			if a.Featured != b.Featured {
				return a.Featured
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
	}

	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func validatePrices(price, compareAt decimal.Decimal) error {
	if !price.IsPositive() {
		return apperror.Validation("invalid_price", "price must be greater than zero")
	}
	if compareAt.IsNegative() {
		return apperror.Validation("invalid_price", "compare-at price cannot be negative")
	}
	return nil
}
