package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
	appErrors "github.com/noah-isme/teacherhub-gateway/pkg/errors"
)

// CatalogGateway lists class categories from the backend.
type CatalogGateway interface {
	ClassCategories(ctx context.Context) ([]models.ClassCategory, error)
}

// CatalogService serves the class category catalogue through the cache.
type CatalogService struct {
	gateway CatalogGateway
	cache   *CacheService
	ttl     time.Duration
	logger  *zap.Logger
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(gateway CatalogGateway, cache *CacheService, ttl time.Duration, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{gateway: gateway, cache: cache, ttl: ttl, logger: logger}
}

// ClassCategories returns every class category with its subjects.
func (s *CatalogService) ClassCategories(ctx context.Context) ([]models.ClassCategory, error) {
	categories, _, err := s.Lookup(ctx)
	return categories, err
}

// Lookup is ClassCategories that also reports whether the cache answered.
func (s *CatalogService) Lookup(ctx context.Context) ([]models.ClassCategory, bool, error) {
	categories, hit, err := Remember(ctx, s.cache, CatalogCacheKey, s.ttl, s.gateway.ClassCategories)
	if err != nil {
		return nil, false, err
	}
	if hit {
		s.logger.Debug("catalog served from cache")
	}
	return categories, hit, nil
}

// Category returns one class category.
func (s *CatalogService) Category(ctx context.Context, id int) (*models.ClassCategory, error) {
	categories, err := s.ClassCategories(ctx)
	if err != nil {
		return nil, err
	}
	for i := range categories {
		if categories[i].ID == id {
			return &categories[i], nil
		}
	}
	msg := "unknown class category"
	return nil, appErrors.WithFields(appErrors.ErrValidation, msg, map[string]string{"class_category_id": msg})
}

// Subject finds a subject by id across every class category.
func (s *CatalogService) Subject(ctx context.Context, id int) (models.Subject, bool, error) {
	categories, err := s.ClassCategories(ctx)
	if err != nil {
		return models.Subject{}, false, err
	}
	for _, category := range categories {
		if subject, ok := category.SubjectByID(id); ok {
			return subject, true, nil
		}
	}
	return models.Subject{}, false, nil
}

// Invalidate drops the cached catalogue.
func (s *CatalogService) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx, CatalogCacheKey)
}
