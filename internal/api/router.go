// Package api serves a read-only JSON view of the catalog.
package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// NewRouter creates the API router. Mount it under /api.
func NewRouter(db *sql.DB) http.Handler {
	h := &Handler{DB: db}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/stats", h.Stats)
	r.Get("/items", h.ListItems)
	r.Get("/items/{id}", h.GetItem)
	r.Get("/brands", h.ListBrands)
	r.Get("/brands/{id}", h.GetBrand)
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{id}", h.GetCategory)

	return r
}

// Handler serves the catalog endpoints.
type Handler struct {
	DB *sql.DB
}

// pathID parses {id}, writing a 400 when it is malformed.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
