package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups items by kind.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// URL returns the category's detail page path.
func (c *Category) URL() string {
	return "/inventory/category/" + c.ID.String()
}
