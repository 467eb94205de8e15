package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/model"
)

func createRefs(t *testing.T, database *sql.DB) (*model.Brand, *model.Category) {
	t.Helper()
	ctx := context.Background()
	b, err := CreateBrand(ctx, database, "Vater")
	if err != nil {
		t.Fatalf("CreateBrand: %v", err)
	}
	c, err := CreateCategory(ctx, database, "Sticks", "Drum sticks")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return b, c
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	brand, cat := createRefs(t, database)

	item, err := CreateItem(ctx, database, &model.Item{
		Name:        "5A Hickory drum sticks",
		Brand:       model.RefTo[model.Brand](brand.ID),
		Category:    model.RefTo[model.Category](cat.ID),
		Description: "American hickory",
		Price:       "$11.99",
		NumInStock:  24,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if item.PhotoPath != model.PlaceholderPhoto {
		t.Errorf("expected placeholder photo, got %q", item.PhotoPath)
	}
	if item.BrandName != "Vater" || item.CategoryName != "Sticks" {
		t.Errorf("expected joined names, got %q / %q", item.BrandName, item.CategoryName)
	}
	if item.Brand.ID != brand.ID || item.Category.ID != cat.ID {
		t.Error("references not preserved")
	}
	if item.Price != "$11.99" || item.NumInStock != 24 {
		t.Errorf("unexpected price/stock %q/%d", item.Price, item.NumInStock)
	}
}

func TestCreateItemMissingReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	_, cat := createRefs(t, database)

	_, err := CreateItem(ctx, database, &model.Item{
		Name:     "Ghost sticks",
		Brand:    model.RefTo[model.Brand](uuid.New()),
		Category: model.RefTo[model.Category](cat.ID),
		Price:    "$1", Description: "x",
	})
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
	n, _ := CountItems(ctx, database)
	if n != 0 {
		t.Errorf("expected 0 items, got %d", n)
	}
}

func TestUpdateAndDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	brand, cat := createRefs(t, database)

	item, _ := CreateItem(ctx, database, &model.Item{
		Name: "7A sticks", Brand: model.RefTo[model.Brand](brand.ID),
		Category: model.RefTo[model.Category](cat.ID), Description: "Light", Price: "$10.00", NumInStock: 5,
	})

	item.NumInStock = 4
	item.PhotoPath = "/uploads/1-a.jpg"
	if err := UpdateItem(ctx, database, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.NumInStock != 4 || got.PhotoPath != "/uploads/1-a.jpg" {
		t.Errorf("update not applied: %+v", got)
	}

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if got, _ := GetItem(ctx, database, item.ID); got != nil {
		t.Error("expected item to be gone")
	}
	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListItemsByReference(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	brand, cat := createRefs(t, database)
	other, _ := CreateBrand(ctx, database, "Pearl")

	for _, tc := range []struct {
		name  string
		brand uuid.UUID
	}{{"5A sticks", brand.ID}, {"7A sticks", brand.ID}, {"Pearl sticks", other.ID}} {
		_, err := CreateItem(ctx, database, &model.Item{
			Name: tc.name, Brand: model.RefTo[model.Brand](tc.brand),
			Category: model.RefTo[model.Category](cat.ID), Description: "d", Price: "$1",
		})
		if err != nil {
			t.Fatalf("CreateItem %s: %v", tc.name, err)
		}
	}

	byBrand, err := ListItemsByBrand(ctx, database, brand.ID)
	if err != nil {
		t.Fatalf("ListItemsByBrand: %v", err)
	}
	if len(byBrand) != 2 {
		t.Errorf("expected 2 items for brand, got %d", len(byBrand))
	}

	byCat, _ := ListItemsByCategory(ctx, database, cat.ID)
	if len(byCat) != 3 {
		t.Errorf("expected 3 items for category, got %d", len(byCat))
	}

	all, _ := ListItems(ctx, database)
	if len(all) != 3 || all[0].Name != "5A sticks" {
		t.Errorf("unexpected listing: %+v", all)
	}
}

func TestSeed(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	seeded, err := Seed(ctx, database)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if !seeded {
		t.Fatal("expected empty catalog to be seeded")
	}

	items, _ := CountItems(ctx, database)
	brands, _ := CountBrands(ctx, database)
	cats, _ := CountCategories(ctx, database)
	if items != 4 || brands != 4 || cats != 4 {
		t.Errorf("expected 4/4/4, got items=%d brands=%d categories=%d", items, brands, cats)
	}

	again, err := Seed(ctx, database)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if again {
		t.Error("expected second seed to be a no-op")
	}
}
