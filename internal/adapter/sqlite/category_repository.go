package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// Compile-time check: CategoryRepository implements domain.CategoryRepository.
var _ domain.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements domain.CategoryRepository using SQLite.
type CategoryRepository struct {
	db *sql.DB
}

func (r *CategoryRepository) Create(ctx context.Context, c domain.Category) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, display_order, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.DisplayOrder, formatTime(c.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.CategoryConflictError{Name: c.Name}
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

// List returns categories by display order. Ties break on name so repeated
// calls always agree.
func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, display_order, created_at FROM categories
		 ORDER BY display_order ASC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("scanning category %q: %w", c.ID, err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}
