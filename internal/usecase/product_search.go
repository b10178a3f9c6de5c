package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lymcoach/backend/internal/domain"
)

// ProductSearchConfig holds configuration for the product search service
type ProductSearchConfig struct {
	CacheTTL time.Duration
}

// ProductSearchService answers product searches server-side. It fronts the
// generic food table and the branded product API with a shared cache.
type ProductSearchService struct {
	generic  domain.FoodSource
	branded  domain.FoodSource
	barcodes domain.BarcodeSource
	cache    domain.CacheRepository
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewProductSearchService creates a product search service with dependencies
func NewProductSearchService(
	generic domain.FoodSource,
	branded domain.FoodSource,
	barcodes domain.BarcodeSource,
	cache domain.CacheRepository,
	logger *zap.Logger,
	config ProductSearchConfig,
) *ProductSearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 1 * time.Hour
	}
	return &ProductSearchService{
		generic:  generic,
		branded:  branded,
		barcodes: barcodes,
		cache:    cache,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

// Search returns products for one source, or for both sources merged when
// source is "all". Flow: check cache -> query source(s) -> cache -> return.
func (s *ProductSearchService) Search(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}
	if !source.Valid() {
		return nil, domain.ErrInvalidSource
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	cacheKey := fmt.Sprintf("search:%s:%s:%d", source, strings.ToLower(query), limit)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if products, ok := cached.([]domain.Product); ok {
			return products, nil
		}
	}

	products, err := s.search(ctx, query, source, limit)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, products, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache search results", zap.String("key", cacheKey), zap.Error(err))
	}
	return products, nil
}

func (s *ProductSearchService) search(ctx context.Context, query string, source domain.SearchSource, limit int) ([]domain.Product, error) {
	switch source {
	case domain.SourceGeneric:
		return s.generic.Search(ctx, query, limit)
	case domain.SourceBranded:
		return s.branded.Search(ctx, query, limit)
	}

	// Both sources, queried concurrently. One source failing is tolerated as
	// long as the other answers.
	half := (limit + 1) / 2

	var (
		wg                   sync.WaitGroup
		genericProducts      []domain.Product
		brandedProducts      []domain.Product
		genericErr, brandErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		genericProducts, genericErr = s.generic.Search(ctx, query, half)
	}()
	go func() {
		defer wg.Done()
		brandedProducts, brandErr = s.branded.Search(ctx, query, half)
	}()
	wg.Wait()

	if genericErr != nil && brandErr != nil {
		return nil, fmt.Errorf("%w: all sources failed", domain.ErrSourceFailure)
	}
	if genericErr != nil {
		s.logger.Warn("generic source failed", zap.String("query", query), zap.Error(genericErr))
	}
	if brandErr != nil {
		s.logger.Warn("branded source failed", zap.String("query", query), zap.Error(brandErr))
	}

	return mergeByCompleteness(genericProducts, brandedProducts, limit), nil
}

// LookupBarcode resolves a scanned barcode. Known codes are cached; unknown
// codes return ErrProductNotFound uncached, since products get added to the
// branded database all the time.
func (s *ProductSearchService) LookupBarcode(ctx context.Context, code string) (*domain.Product, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidRequest
	}

	cacheKey := "barcode:" + code
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil {
		if product, ok := cached.(*domain.Product); ok {
			return product, nil
		}
	}

	product, err := s.barcodes.LookupBarcode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, product, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache barcode lookup", zap.String("code", code), zap.Error(err))
	}
	return product, nil
}
