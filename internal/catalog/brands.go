package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// Brand is the record type of the brand pipeline.
type Brand = model.Brand

func brandSchema(database *sql.DB) Schema[Brand] {
	return Schema[Brand]{
		Kind:    "brand",
		ListURL: "/inventory/brands",
		Rules:   BrandRules,
		ID:      func(b *Brand) uuid.UUID { return b.ID },
		URL:     (*Brand).URL,
		Build: func(v Values, target *Brand) *Brand {
			b := &Brand{Name: v.Get("name")}
			if target != nil {
				b.ID = target.ID
			}
			return b
		},
		Get: func(ctx context.Context, id uuid.UUID) (*Brand, error) {
			return store.GetBrand(ctx, database, id)
		},
		Insert: func(ctx context.Context, b *Brand) (*Brand, error) {
			return store.CreateBrand(ctx, database, b.Name)
		},
		Replace: func(ctx context.Context, b *Brand) error {
			return store.UpdateBrand(ctx, database, b.ID, b.Name)
		},
		Remove: func(ctx context.Context, id uuid.UUID) error {
			return store.DeleteBrand(ctx, database, id)
		},
		Lookup: func(ctx context.Context, b *Brand) (*Brand, error) {
			return store.FindBrandByName(ctx, database, b.Name)
		},
		Referrers: func(ctx context.Context, id uuid.UUID) ([]model.Item, error) {
			return store.ListItemsByBrand(ctx, database, id)
		},
	}
}
