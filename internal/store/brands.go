package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/model"
)

const brandColumns = `id, name, created_at, updated_at`

// CreateBrand creates a new brand. Returns ErrDuplicate if an equivalent name exists.
func CreateBrand(ctx context.Context, database *sql.DB, name string) (*model.Brand, error) {
	id := uuid.New()
	_, err := database.ExecContext(ctx,
		`INSERT INTO brands (id, name, name_key) VALUES (?, ?, ?)`,
		id, name, NameKey(name),
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating brand: %w", err)
	}

	return GetBrand(ctx, database, id)
}

// GetBrand returns a brand by ID, or nil if it does not exist.
func GetBrand(ctx context.Context, database *sql.DB, id uuid.UUID) (*model.Brand, error) {
	b, err := scanBrand(database.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting brand: %w", err)
	}
	return b, nil
}

// FindBrandByName returns the brand whose name matches ignoring case and
// diacritics, or nil.
func FindBrandByName(ctx context.Context, database *sql.DB, name string) (*model.Brand, error) {
	b, err := scanBrand(database.QueryRowContext(ctx,
		`SELECT `+brandColumns+` FROM brands WHERE name_key = ?`, NameKey(name),
	))
	if err != nil {
		return nil, fmt.Errorf("finding brand by name: %w", err)
	}
	return b, nil
}

// ListBrands returns all brands in name order.
func ListBrands(ctx context.Context, database *sql.DB) ([]model.Brand, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+brandColumns+` FROM brands ORDER BY name_key, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing brands: %w", err)
	}
	defer rows.Close()

	var brands []model.Brand
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning brand: %w", err)
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// UpdateBrand renames a brand.
func UpdateBrand(ctx context.Context, database *sql.DB, id uuid.UUID, name string) error {
	result, err := database.ExecContext(ctx,
		`UPDATE brands SET name = ?, name_key = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, NameKey(name), id,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("updating brand: %w", err)
	}
	return expectOne(result, "updating brand")
}

// DeleteBrand removes a brand. Returns ErrReferenced while items point to it.
func DeleteBrand(ctx context.Context, database *sql.DB, id uuid.UUID) error {
	result, err := database.ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("deleting brand: %w", err)
	}
	return expectOne(result, "deleting brand")
}

// CountBrands returns the number of brands.
func CountBrands(ctx context.Context, database *sql.DB) (int, error) {
	return count(ctx, database, "brands")
}

func scanBrand(row *sql.Row) (*model.Brand, error) {
	b := &model.Brand{}
	err := row.Scan(&b.ID, &b.Name, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// expectOne maps a write that touched no rows to ErrNotFound.
func expectOne(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func count(ctx context.Context, database *sql.DB, table string) (int, error) {
	var n int
	if err := database.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}
