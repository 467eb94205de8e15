package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// Category is the record type of the category pipeline.
type Category = model.Category

func categorySchema(database *sql.DB) Schema[Category] {
	return Schema[Category]{
		Kind:    "category",
		ListURL: "/inventory/categories",
		Rules:   CategoryRules,
		ID:      func(c *Category) uuid.UUID { return c.ID },
		URL:     (*Category).URL,
		Build: func(v Values, target *Category) *Category {
			c := &Category{Name: v.Get("name"), Description: v.Get("description")}
			if target != nil {
				c.ID = target.ID
			}
			return c
		},
		Get: func(ctx context.Context, id uuid.UUID) (*Category, error) {
			return store.GetCategory(ctx, database, id)
		},
		Insert: func(ctx context.Context, c *Category) (*Category, error) {
			return store.CreateCategory(ctx, database, c.Name, c.Description)
		},
		Replace: func(ctx context.Context, c *Category) error {
			return store.UpdateCategory(ctx, database, c.ID, c.Name, c.Description)
		},
		Remove: func(ctx context.Context, id uuid.UUID) error {
			return store.DeleteCategory(ctx, database, id)
		},
		Lookup: func(ctx context.Context, c *Category) (*Category, error) {
			return store.FindCategoryByName(ctx, database, c.Name)
		},
		Referrers: func(ctx context.Context, id uuid.UUID) ([]model.Item, error) {
			return store.ListItemsByCategory(ctx, database, id)
		},
	}
}
