package catalog

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// Item is the record type of the item pipeline.
type Item = model.Item

func itemSchema(database *sql.DB, gate Gate, assets Assets) Schema[Item] {
	return Schema[Item]{
		Kind:    "item",
		ListURL: "/inventory/items",
		Rules:   ItemRules,
		Gate:    gate,
		ID:      func(i *Item) uuid.UUID { return i.ID },
		URL:     (*Item).URL,
		Build:   buildItem,
		Get: func(ctx context.Context, id uuid.UUID) (*Item, error) {
			return store.GetItem(ctx, database, id)
		},
		Insert: func(ctx context.Context, i *Item) (*Item, error) {
			return store.CreateItem(ctx, database, i)
		},
		Replace: func(ctx context.Context, i *Item) error {
			return store.UpdateItem(ctx, database, i)
		},
		Remove: func(ctx context.Context, id uuid.UUID) error {
			return store.DeleteItem(ctx, database, id)
		},
		Refs: func(ctx context.Context, i *Item) ([]Violation, error) {
			return checkItemRefs(ctx, database, i)
		},
		Attach: func(ctx context.Context, i *Item, req Request, target *Item) (func(), error) {
			if req.Photo == nil {
				// Keep the current photo on update; placeholder on create.
				if target != nil {
					i.PhotoPath = target.PhotoPath
				} else {
					i.PhotoPath = model.PlaceholderPhoto
				}
				return nil, nil
			}
			path, err := assets.Store(ctx, req.Photo)
			if err != nil {
				return nil, err
			}
			i.PhotoPath = path
			return func() { assets.Remove(context.WithoutCancel(ctx), path) }, nil
		},
		Detach: func(ctx context.Context, previous, current *Item) {
			if current == nil || current.PhotoPath != previous.PhotoPath {
				assets.Remove(ctx, previous.PhotoPath)
			}
		},
	}
}

// buildItem assumes v passed ItemRules.
func buildItem(v Values, target *Item) *Item {
	stock, _ := strconv.Atoi(v.Get("numInStock"))
	brand, _ := model.ParseRef[model.Brand](v.Get("brand"))
	category, _ := model.ParseRef[model.Category](v.Get("category"))

	i := &Item{
		Name:        v.Get("name"),
		Brand:       brand,
		Category:    category,
		Description: v.Get("description"),
		Price:       v.Get("price"),
		NumInStock:  stock,
	}
	if target != nil {
		i.ID = target.ID
		i.PhotoPath = target.PhotoPath
		i.CreatedAt = target.CreatedAt
	}
	return i
}

// checkItemRefs resolves the brand and category of i concurrently.
func checkItemRefs(ctx context.Context, database *sql.DB, i *Item) ([]Violation, error) {
	var brand *model.Brand
	var category *model.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		brand, err = store.GetBrand(gctx, database, i.Brand.ID)
		return err
	})
	g.Go(func() error {
		var err error
		category, err = store.GetCategory(gctx, database, i.Category.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var violations []Violation
	if brand == nil {
		violations = append(violations, Violation{Field: "brand", Message: "The selected brand no longer exists."})
	} else {
		i.BrandName = brand.Name
	}
	if category == nil {
		violations = append(violations, Violation{Field: "category", Message: "The selected category no longer exists."})
	} else {
		i.CategoryName = category.Name
	}
	return violations, nil
}
