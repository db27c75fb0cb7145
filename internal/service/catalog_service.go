package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/tour-marketplace/internal/cache"
	"github.com/spec-kit/tour-marketplace/internal/domain"
	"github.com/spec-kit/tour-marketplace/internal/repository"
	apperrors "github.com/spec-kit/tour-marketplace/pkg/util"
)

// CatalogService serves published, non-deleted products to agencies.
type CatalogService struct {
	products repository.ProductRepository
	cache    cache.CatalogCache
}

// CatalogFilters narrows the public catalog.
type CatalogFilters struct {
	Destination *string
	SearchTerm  *string
	Limit       int
	Offset      int
}

// NewCatalogService constructs the service.
func NewCatalogService(products repository.ProductRepository, catalogCache cache.CatalogCache) *CatalogService {
	if catalogCache == nil {
		catalogCache = cache.NoopCatalogCache{}
	}
	return &CatalogService{products: products, cache: catalogCache}
}

// List returns a page of published products.
func (s *CatalogService) List(ctx context.Context, filters CatalogFilters) ([]domain.Product, error) {
	key := filters.cacheKey()
	products, slot, ok := s.cache.GetList(ctx, key)
	if ok {
		return products, nil
	}

	products, err := s.products.List(ctx, repository.ProductFilter{
		Statuses:    []domain.WorkflowState{domain.StatePublished},
		Destination: filters.Destination,
		SearchTerm:  filters.SearchTerm,
		Limit:       filters.Limit,
		Offset:      filters.Offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	s.cache.SetList(ctx, slot, products)
	return products, nil
}

// Get returns one published product.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Product, error) {
	if err := checkID(id, "product"); err != nil {
		return nil, err
	}
	cached, slot, ok := s.cache.GetProduct(ctx, id)
	if ok {
		return cached, nil
	}

	product, err := s.products.Get(ctx, id, repository.AdminScope())
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	if product.Status != domain.StatePublished {
		return nil, apperrors.NewNotFound("product", nil)
	}
	s.cache.SetProduct(ctx, slot, product)
	return product, nil
}

func (f CatalogFilters) cacheKey() string {
	var destination, search string
	if f.Destination != nil {
		destination = strings.ToLower(strings.TrimSpace(*f.Destination))
	}
	if f.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*f.SearchTerm))
	}
	return fmt.Sprintf("d=%s|q=%s|l=%d|o=%d", destination, search, f.Limit, f.Offset)
}
