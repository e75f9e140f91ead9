package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/bazaar/internal/domain"
)

// Compile-time check: VendorRepository implements domain.VendorRepository.
var _ domain.VendorRepository = (*VendorRepository)(nil)

// VendorRepository implements domain.VendorRepository using SQLite.
type VendorRepository struct {
	db *sql.DB
}

const vendorColumns = `id, name, email, status, approved_at, approved_by_id, created_at, updated_at`

func (r *VendorRepository) Create(ctx context.Context, v domain.Vendor) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO vendors (`+vendorColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			v.ID, v.Name, v.Email, string(v.Status),
			nullableTime(v.ApprovedAt), nullableString(v.ApprovedByID),
			formatTime(v.CreatedAt), formatTime(v.UpdatedAt),
		)
		if err != nil {
			return fmt.Errorf("inserting vendor: %w", err)
		}

		for _, c := range v.Categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO vendor_categories (vendor_id, category_id) VALUES (?, ?)`,
				v.ID, c.ID,
			); err != nil {
				return fmt.Errorf("linking category %q: %w", c.ID, err)
			}
		}
		return nil
	})
}

// AddProfile stores a profile. A new default profile demotes the previous one.
func (r *VendorRepository) AddProfile(ctx context.Context, p domain.Profile) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM vendors WHERE id = ?`, p.VendorID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrVendorNotFound
		}
		if err != nil {
			return fmt.Errorf("checking vendor: %w", err)
		}

		if p.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE vendor_profiles SET is_default = 0 WHERE vendor_id = ? AND is_default = 1`,
				p.VendorID,
			); err != nil {
				return fmt.Errorf("clearing default profile: %w", err)
			}
		}

		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vendor_profiles (id, vendor_id, headline, description, city, is_default, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.VendorID, p.Headline, p.Description, p.City, p.IsDefault, formatTime(createdAt),
		); err != nil {
			return fmt.Errorf("inserting profile: %w", err)
		}
		return nil
	})
}

func (r *VendorRepository) GetByID(ctx context.Context, id string) (domain.Vendor, error) {
	return getVendor(ctx, r.db, id)
}

func (r *VendorRepository) List(ctx context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	var args []any

	if filter.Status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*filter.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}

	var vendors []domain.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		vendors = append(vendors, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing vendors: %w", err)
	}

	if err := enrich(ctx, r.db, vendors); err != nil {
		return nil, err
	}
	return vendors, nil
}

// UpdateStatus writes status and, for approvals, the attribution columns in
// one UPDATE statement, then reads the vendor back in the same transaction.
func (r *VendorRepository) UpdateStatus(ctx context.Context, change domain.StatusChange) (domain.Vendor, error) {
	if err := change.Validate(); err != nil {
		return domain.Vendor{}, err
	}

	var updated domain.Vendor
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		now := formatTime(time.Now())

		var result sql.Result
		var err error
		if change.Approval != nil {
			result, err = tx.ExecContext(ctx,
				`UPDATE vendors SET status = ?, approved_at = ?, approved_by_id = ?, updated_at = ?
				 WHERE id = ?`,
				string(change.Status), formatTime(change.Approval.At), change.Approval.ByID, now,
				change.VendorID,
			)
		} else {
			result, err = tx.ExecContext(ctx,
				`UPDATE vendors SET status = ?, updated_at = ? WHERE id = ?`,
				string(change.Status), now, change.VendorID,
			)
		}
		if err != nil {
			return fmt.Errorf("updating vendor status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return domain.ErrVendorNotFound
		}

		updated, err = getVendor(ctx, tx, change.VendorID)
		return err
	})
	if err != nil {
		return domain.Vendor{}, err
	}
	return updated, nil
}

func getVendor(ctx context.Context, q querier, id string) (domain.Vendor, error) {
	row := q.QueryRowContext(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE id = ?`, id)
	v, err := scanVendor(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vendor{}, domain.ErrVendorNotFound
		}
		return domain.Vendor{}, err
	}

	vendors := []domain.Vendor{v}
	if err := enrich(ctx, q, vendors); err != nil {
		return domain.Vendor{}, err
	}
	return vendors[0], nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanVendor(s scanner) (domain.Vendor, error) {
	var v domain.Vendor
	var status, createdAt, updatedAt string
	var approvedAt, approvedByID sql.NullString

	err := s.Scan(&v.ID, &v.Name, &v.Email, &status, &approvedAt, &approvedByID, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Vendor{}, err
		}
		return domain.Vendor{}, fmt.Errorf("scanning vendor: %w", err)
	}

	v.Status = domain.Status(status)
	if v.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Vendor{}, fmt.Errorf("scanning vendor %q: %w", v.ID, err)
	}
	if v.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return domain.Vendor{}, fmt.Errorf("scanning vendor %q: %w", v.ID, err)
	}
	if approvedAt.Valid {
		at, err := parseTime(approvedAt.String)
		if err != nil {
			return domain.Vendor{}, fmt.Errorf("scanning vendor %q: %w", v.ID, err)
		}
		v.ApprovedAt = &at
	}
	if approvedByID.Valid {
		by := approvedByID.String
		v.ApprovedByID = &by
	}
	v.Profile = domain.None[domain.Profile]()

	return v, nil
}

// enrichBatchSize keeps each enrichment query under SQLite's host parameter limit.
const enrichBatchSize = 500

// enrich attaches categories and the default profile to each vendor in place.
func enrich(ctx context.Context, q querier, vendors []domain.Vendor) error {
	for start := 0; start < len(vendors); start += enrichBatchSize {
		end := min(start+enrichBatchSize, len(vendors))
		if err := enrichBatch(ctx, q, vendors[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func enrichBatch(ctx context.Context, q querier, vendors []domain.Vendor) error {
	ids := make([]any, len(vendors))
	index := make(map[string]int, len(vendors))
	for i, v := range vendors {
		ids[i] = v.ID
		index[v.ID] = i
	}
	in := placeholders(len(ids))

	rows, err := q.QueryContext(ctx,
		`SELECT vc.vendor_id, c.id, c.name, c.display_order, c.created_at
		 FROM vendor_categories vc
		 JOIN categories c ON c.id = vc.category_id
		 WHERE vc.vendor_id IN (`+in+`)
		 ORDER BY c.display_order ASC, c.name ASC`, ids...)
	if err != nil {
		return fmt.Errorf("loading vendor categories: %w", err)
	}
	for rows.Next() {
		var vendorID, createdAt string
		var c domain.Category
		if err := rows.Scan(&vendorID, &c.ID, &c.Name, &c.DisplayOrder, &createdAt); err != nil {
			rows.Close()
			return fmt.Errorf("scanning vendor category: %w", err)
		}
		if c.CreatedAt, err = parseTime(createdAt); err != nil {
			rows.Close()
			return fmt.Errorf("scanning category %q: %w", c.ID, err)
		}
		i := index[vendorID]
		vendors[i].Categories = append(vendors[i].Categories, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading vendor categories: %w", err)
	}

	rows, err = q.QueryContext(ctx,
		`SELECT id, vendor_id, headline, description, city, created_at
		 FROM vendor_profiles
		 WHERE is_default = 1 AND vendor_id IN (`+in+`)`, ids...)
	if err != nil {
		return fmt.Errorf("loading default profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		var createdAt string
		if err := rows.Scan(&p.ID, &p.VendorID, &p.Headline, &p.Description, &p.City, &createdAt); err != nil {
			return fmt.Errorf("scanning profile: %w", err)
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return fmt.Errorf("scanning profile %q: %w", p.ID, err)
		}
		p.IsDefault = true
		vendors[index[p.VendorID]].Profile = domain.Some(p)
	}
	return rows.Err()
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
