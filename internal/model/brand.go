package model

import (
	"time"

	"github.com/google/uuid"
)

// Brand is a manufacturer that items are grouped under.
type Brand struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// URL returns the brand's detail page path.
func (b *Brand) URL() string {
	return "/inventory/brand/" + b.ID.String()
}
