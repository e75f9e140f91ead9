package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// CatalogService serves the category catalog. The ordered list is read from
// the store once and then served from memory; a failed load is retried on
// the next call.
type CatalogService struct {
	repo domain.CategoryRepository

	mu         sync.RWMutex
	loaded     bool
	categories []domain.Category
}

// NewCatalogService creates a catalog backed by the given repository.
func NewCatalogService(repo domain.CategoryRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// List returns all categories ordered by display order.
func (s *CatalogService) List(ctx context.Context) ([]domain.Category, error) {
	s.mu.RLock()
	if s.loaded {
		out := cloneCategories(s.categories)
		s.mu.RUnlock()
		return out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		categories, err := s.repo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading categories: %w", err)
		}
		s.categories = categories
		s.loaded = true
	}
	return cloneCategories(s.categories), nil
}

// Seed inserts the named categories with display orders 1..n when the
// catalog is empty. It returns the number of categories created.
func (s *CatalogService) Seed(ctx context.Context, names []string) (int, error) {
	existing, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("checking catalog: %w", err)
	}
	if len(existing) > 0 || len(names) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	created := 0
	for i, name := range names {
		category := domain.Category{
			ID:           generateID(),
			Name:         name,
			DisplayOrder: i + 1,
			CreatedAt:    now,
		}
		if err := s.repo.Create(ctx, category); err != nil {
			return created, fmt.Errorf("seeding category %q: %w", name, err)
		}
		created++
	}

	s.mu.Lock()
	s.loaded = false
	s.categories = nil
	s.mu.Unlock()

	return created, nil
}

func cloneCategories(in []domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	copy(out, in)
	return out
}
