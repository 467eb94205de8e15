package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/db"
	"github.com/erazemk/katalog/internal/model"
)

func TestCreateAndGetBrand(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	b, err := CreateBrand(ctx, database, "Pearl")
	if err != nil {
		t.Fatalf("CreateBrand: %v", err)
	}
	if b.ID == uuid.Nil {
		t.Error("expected generated id")
	}
	if b.Name != "Pearl" {
		t.Errorf("expected name 'Pearl', got %q", b.Name)
	}

	got, err := GetBrand(ctx, database, b.ID)
	if err != nil {
		t.Fatalf("GetBrand: %v", err)
	}
	if got == nil || got.Name != "Pearl" {
		t.Fatalf("unexpected brand %+v", got)
	}

	missing, err := GetBrand(ctx, database, uuid.New())
	if err != nil {
		t.Fatalf("GetBrand missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing brand")
	}
}

func TestCreateBrandDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateBrand(ctx, database, "Pearl"); err != nil {
		t.Fatalf("CreateBrand: %v", err)
	}
	if _, err := CreateBrand(ctx, database, "pEARL"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	n, _ := CountBrands(ctx, database)
	if n != 1 {
		t.Errorf("expected 1 brand, got %d", n)
	}
}

func TestFindBrandByName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	created, _ := CreateBrand(ctx, database, "Évans")

	found, err := FindBrandByName(ctx, database, "evans")
	if err != nil {
		t.Fatalf("FindBrandByName: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected to find %v, got %+v", created.ID, found)
	}

	none, _ := FindBrandByName(ctx, database, "Zildjian")
	if none != nil {
		t.Error("expected nil for unknown name")
	}
}

func TestListBrandsOrder(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"Vater", "evans", "Pearl"} {
		if _, err := CreateBrand(ctx, database, name); err != nil {
			t.Fatalf("CreateBrand %s: %v", name, err)
		}
	}

	brands, err := ListBrands(ctx, database)
	if err != nil {
		t.Fatalf("ListBrands: %v", err)
	}
	want := []string{"evans", "Pearl", "Vater"}
	if len(brands) != len(want) {
		t.Fatalf("expected %d brands, got %d", len(want), len(brands))
	}
	for i, name := range want {
		if brands[i].Name != name {
			t.Errorf("position %d: expected %q, got %q", i, name, brands[i].Name)
		}
	}
}

func TestUpdateBrand(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pearl, _ := CreateBrand(ctx, database, "Pearl")
	vater, _ := CreateBrand(ctx, database, "Vater")

	if err := UpdateBrand(ctx, database, pearl.ID, "Pearl Drums"); err != nil {
		t.Fatalf("UpdateBrand: %v", err)
	}
	got, _ := GetBrand(ctx, database, pearl.ID)
	if got.Name != "Pearl Drums" {
		t.Errorf("expected renamed brand, got %q", got.Name)
	}

	// Renaming onto another brand's name collides.
	if err := UpdateBrand(ctx, database, vater.ID, "pearl drums"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Changing only the case of its own name is allowed.
	if err := UpdateBrand(ctx, database, vater.ID, "VATER"); err != nil {
		t.Errorf("expected case-only rename to succeed, got %v", err)
	}

	if err := UpdateBrand(ctx, database, uuid.New(), "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteBrandReferenced(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	brand, _ := CreateBrand(ctx, database, "Vater")
	cat, _ := CreateCategory(ctx, database, "Sticks", "Drum sticks")
	_, err := CreateItem(ctx, database, &model.Item{
		Name: "5A Hickory drum sticks", Brand: model.RefTo[model.Brand](brand.ID),
		Category: model.RefTo[model.Category](cat.ID), Description: "Hickory", Price: "$11.99", NumInStock: 24,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}

	if err := DeleteBrand(ctx, database, brand.ID); !errors.Is(err, ErrReferenced) {
		t.Errorf("expected ErrReferenced, got %v", err)
	}
	if got, _ := GetBrand(ctx, database, brand.ID); got == nil {
		t.Error("referenced brand should still exist")
	}

	unused, _ := CreateBrand(ctx, database, "Pearl")
	if err := DeleteBrand(ctx, database, unused.ID); err != nil {
		t.Fatalf("DeleteBrand: %v", err)
	}
	if err := DeleteBrand(ctx, database, unused.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
