package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// Compile-time check: AdminRepository implements domain.AdminRepository.
var _ domain.AdminRepository = (*AdminRepository)(nil)

// AdminRepository implements domain.AdminRepository using SQLite.
type AdminRepository struct {
	db *sql.DB
}

func (r *AdminRepository) Create(ctx context.Context, a domain.Admin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (id, email, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.Name, formatTime(a.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.EmailConflictError{Email: a.Email}
		}
		return fmt.Errorf("inserting admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetByID(ctx context.Context, id string) (domain.Admin, error) {
	return r.scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM admins WHERE id = ?`, id,
	))
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (domain.Admin, error) {
	return r.scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, name, created_at FROM admins WHERE email = ?`, email,
	))
}

func (r *AdminRepository) scanAdmin(row *sql.Row) (domain.Admin, error) {
	var a domain.Admin
	var createdAt string

	if err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Admin{}, domain.ErrAdminNotFound
		}
		return domain.Admin{}, fmt.Errorf("scanning admin: %w", err)
	}
	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Admin{}, fmt.Errorf("scanning admin %q: %w", a.ID, err)
	}

	return a, nil
}
