package model

import (
	"time"

	"github.com/google/uuid"
)

// PlaceholderPhoto is the photo path of an item without an uploaded image.
// It points into the embedded static assets and is never removed.
const PlaceholderPhoto = "/static/images/placeholder.svg"

// Item is a stocked product, referencing exactly one brand and one category.
type Item struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Brand       Ref[Brand]    `json:"brand"`
	Category    Ref[Category] `json:"category"`
	Description string        `json:"description"`
	Price       string        `json:"price"`
	NumInStock  int           `json:"num_in_stock"`
	PhotoPath   string        `json:"photo_path"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Joined fields (not always populated).
	BrandName    string `json:"brand_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
}

// URL returns the item's detail page path.
func (i *Item) URL() string {
	return "/inventory/item/" + i.ID.String()
}

// HasPhoto reports whether the item carries an uploaded photo.
func (i *Item) HasPhoto() bool {
	return i.PhotoPath != "" && i.PhotoPath != PlaceholderPhoto
}
