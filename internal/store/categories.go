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

const categoryColumns = `id, name, description, created_at, updated_at`

// CreateCategory creates a new category. Returns ErrDuplicate if an
// equivalent name exists.
func CreateCategory(ctx context.Context, database *sql.DB, name, description string) (*model.Category, error) {
	id := uuid.New()
	_, err := database.ExecContext(ctx,
		`INSERT INTO categories (id, name, name_key, description) VALUES (?, ?, ?, ?)`,
		id, name, NameKey(name), description,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return GetCategory(ctx, database, id)
}

// GetCategory returns a category by ID, or nil if it does not exist.
func GetCategory(ctx context.Context, database *sql.DB, id uuid.UUID) (*model.Category, error) {
	c, err := scanCategory(database.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return c, nil
}

// FindCategoryByName returns the category whose name matches ignoring case
// and diacritics, or nil.
func FindCategoryByName(ctx context.Context, database *sql.DB, name string) (*model.Category, error) {
	c, err := scanCategory(database.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE name_key = ?`, NameKey(name),
	))
	if err != nil {
		return nil, fmt.Errorf("finding category by name: %w", err)
	}
	return c, nil
}

// ListCategories returns all categories in name order.
func ListCategories(ctx context.Context, database *sql.DB) ([]model.Category, error) {
	rows, err := database.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name_key, name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// UpdateCategory replaces a category's name and description.
func UpdateCategory(ctx context.Context, database *sql.DB, id uuid.UUID, name, description string) error {
	result, err := database.ExecContext(ctx,
		`UPDATE categories SET name = ?, name_key = ?, description = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, NameKey(name), description, id,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("updating category: %w", err)
	}
	return expectOne(result, "updating category")
}

// DeleteCategory removes a category. Returns ErrReferenced while items point to it.
func DeleteCategory(ctx context.Context, database *sql.DB, id uuid.UUID) error {
	result, err := database.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrReferenced
		}
		return fmt.Errorf("deleting category: %w", err)
	}
	return expectOne(result, "deleting category")
}

// CountCategories returns the number of categories.
func CountCategories(ctx context.Context, database *sql.DB) (int, error) {
	return count(ctx, database, "categories")
}

func scanCategory(row *sql.Row) (*model.Category, error) {
	c := &model.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}
