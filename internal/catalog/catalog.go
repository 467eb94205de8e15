// Package catalog validates and applies changes to brands, categories and
// items through one generic mutation pipeline.
package catalog

import (
	"context"
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/katalog/internal/imaging"
)

// Assets stores and removes item photos.
type Assets interface {
	Store(ctx context.Context, photo *imaging.Photo) (string, error)
	Remove(ctx context.Context, path string)
}

// Catalog holds one pipeline per record type.
type Catalog struct {
	Brands     *Pipeline[Brand]
	Categories *Pipeline[Category]
	Items      *Pipeline[Item]
}

// Option configures a Catalog.
type Option func(*options)

type options struct {
	outcomes *prometheus.CounterVec
}

// WithOutcomes counts finished mutations by kind, op and stage.
func WithOutcomes(c *prometheus.CounterVec) Option {
	return func(o *options) { o.outcomes = c }
}

// New wires the pipelines to the database. Item writes require gate.
func New(database *sql.DB, gate Gate, assets Assets, opts ...Option) *Catalog {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return &Catalog{
		Brands:     NewPipeline(brandSchema(database), o.outcomes),
		Categories: NewPipeline(categorySchema(database), o.outcomes),
		Items:      NewPipeline(itemSchema(database, gate, assets), o.outcomes),
	}
}
