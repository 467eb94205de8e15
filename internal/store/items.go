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

const itemSelect = `SELECT i.id, i.name, i.brand_id, i.category_id, i.description, i.price,
        i.num_in_stock, i.photo_path, i.created_at, i.updated_at,
        b.name AS brand_name, c.name AS category_name
 FROM items i
 JOIN brands b ON b.id = i.brand_id
 JOIN categories c ON c.id = i.category_id`

// CreateItem stores a new item under a fresh ID and returns it with joined names.
// Returns ErrMissingReference if the brand or category does not exist.
func CreateItem(ctx context.Context, database *sql.DB, item *model.Item) (*model.Item, error) {
	id := uuid.New()
	_, err := database.ExecContext(ctx,
		`INSERT INTO items (id, name, name_key, brand_id, category_id, description, price, num_in_stock, photo_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.Name, NameKey(item.Name), item.Brand.ID, item.Category.ID,
		item.Description, item.Price, item.NumInStock, photoOrPlaceholder(item.PhotoPath),
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, ErrMissingReference
		}
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, database, id)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, database *sql.DB, id uuid.UUID) (*model.Item, error) {
	item := &model.Item{}
	err := database.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id).Scan(itemFields(item)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items in name order.
func ListItems(ctx context.Context, database *sql.DB) ([]model.Item, error) {
	return queryItems(ctx, database, "listing items", itemSelect+` ORDER BY i.name_key, i.name`)
}

// ListItemsByBrand returns the items that reference a brand.
func ListItemsByBrand(ctx context.Context, database *sql.DB, brandID uuid.UUID) ([]model.Item, error) {
	return queryItems(ctx, database, "listing items by brand",
		itemSelect+` WHERE i.brand_id = ? ORDER BY i.name_key, i.name`, brandID)
}

// ListItemsByCategory returns the items that reference a category.
func ListItemsByCategory(ctx context.Context, database *sql.DB, categoryID uuid.UUID) ([]model.Item, error) {
	return queryItems(ctx, database, "listing items by category",
		itemSelect+` WHERE i.category_id = ? ORDER BY i.name_key, i.name`, categoryID)
}

// UpdateItem replaces every field of an item except its ID.
func UpdateItem(ctx context.Context, database *sql.DB, item *model.Item) error {
	result, err := database.ExecContext(ctx,
		`UPDATE items SET name = ?, name_key = ?, brand_id = ?, category_id = ?, description = ?,
		        price = ?, num_in_stock = ?, photo_path = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		item.Name, NameKey(item.Name), item.Brand.ID, item.Category.ID, item.Description,
		item.Price, item.NumInStock, photoOrPlaceholder(item.PhotoPath), item.ID,
	)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrMissingReference
		}
		return fmt.Errorf("updating item: %w", err)
	}
	return expectOne(result, "updating item")
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, database *sql.DB, id uuid.UUID) error {
	result, err := database.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return expectOne(result, "deleting item")
}

// CountItems returns the number of items.
func CountItems(ctx context.Context, database *sql.DB) (int, error) {
	return count(ctx, database, "items")
}

func queryItems(ctx context.Context, database *sql.DB, op, query string, args ...any) ([]model.Item, error) {
	rows, err := database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		if err := rows.Scan(itemFields(&item)...); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func itemFields(item *model.Item) []any {
	return []any{
		&item.ID, &item.Name, &item.Brand.ID, &item.Category.ID, &item.Description, &item.Price,
		&item.NumInStock, &item.PhotoPath, &item.CreatedAt, &item.UpdatedAt,
		&item.BrandName, &item.CategoryName,
	}
}

func photoOrPlaceholder(path string) string {
	if path == "" {
		return model.PlaceholderPhoto
	}
	return path
}
