package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/katalog/internal/model"
)

type seedItem struct {
	name, brand, category, description, price string
	stock                                     int
}

var (
	seedBrands = []string{"Vater", "Pearl", "Evans", "Istanbul"}

	seedCategories = []struct{ name, description string }{
		{"Sticks", "Drum sticks in a variety of woods, tips and weights."},
		{"Drum Sets", "Complete shell packs and kits, hardware sold separately."},
		{"Cymbals", "Crashes, rides, hi-hats and effects cymbals."},
		{"Drum Heads", "Batter and resonant heads for snare, tom and bass drums."},
	}

	seedItems = []seedItem{
		{"5A Hickory drum sticks", "Vater", "Sticks", "American hickory 5A sticks with a wood tip.", "$11.99", 24},
		{`18" Om crash cymbal`, "Istanbul", "Cymbals", "Hand hammered crash with a dark, trashy sound.", "$425.62", 3},
		{"Pearl Decade Maple 5-Piece Shell Pack", "Pearl", "Drum Sets", "All-maple shells in a five piece configuration.", "$1,099.99", 2},
		{`20" EMAD Bass Drum Head - Batter`, "Evans", "Drum Heads", "Single ply batter head with an adjustable damping ring.", "$54.99", 7},
	}
)

// Seed fills an empty catalog with sample brands, categories and items.
// It reports whether anything was written.
func Seed(ctx context.Context, database *sql.DB) (bool, error) {
	n, err := CountBrands(ctx, database)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	brands := make(map[string]*model.Brand, len(seedBrands))
	for _, name := range seedBrands {
		b, err := CreateBrand(ctx, database, name)
		if err != nil {
			return false, fmt.Errorf("seeding brand %q: %w", name, err)
		}
		brands[name] = b
	}

	categories := make(map[string]*model.Category, len(seedCategories))
	for _, c := range seedCategories {
		cat, err := CreateCategory(ctx, database, c.name, c.description)
		if err != nil {
			return false, fmt.Errorf("seeding category %q: %w", c.name, err)
		}
		categories[c.name] = cat
	}

	for _, si := range seedItems {
		_, err := CreateItem(ctx, database, &model.Item{
			Name:        si.name,
			Brand:       model.RefTo[model.Brand](brands[si.brand].ID),
			Category:    model.RefTo[model.Category](categories[si.category].ID),
			Description: si.description,
			Price:       si.price,
			NumInStock:  si.stock,
			PhotoPath:   model.PlaceholderPhoto,
		})
		if err != nil {
			return false, fmt.Errorf("seeding item %q: %w", si.name, err)
		}
	}

	return true, nil
}
