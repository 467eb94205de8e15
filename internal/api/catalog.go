package api

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type statsResponse struct {
	Items      int    `json:"items"`
	Brands     int    `json:"brands"`
	Categories int    `json:"categories"`
	StockValue string `json:"stock_value"`
	Unpriced   int    `json:"unpriced"`
}

type brandResponse struct {
	*model.Brand
	Items []model.Item `json:"items"`
}

type categoryResponse struct {
	*model.Category
	Items []model.Item `json:"items"`
}

// Stats handles GET /api/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	var resp statsResponse
	var items []model.Item

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		items, err = store.ListItems(ctx, h.DB)
		return err
	})
	g.Go(func() (err error) {
		resp.Brands, err = store.CountBrands(ctx, h.DB)
		return err
	})
	g.Go(func() (err error) {
		resp.Categories, err = store.CountCategories(ctx, h.DB)
		return err
	})
	if err := g.Wait(); err != nil {
		internalError(w, r, "failed to load stats", err)
		return
	}

	value, unpriced := catalog.StockValue(items)
	resp.Items = len(items)
	resp.StockValue = value.StringFixed(2)
	resp.Unpriced = unpriced
	jsonResponse(w, http.StatusOK, resp)
}

// ListItems handles GET /api/items.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, "failed to list items", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(items))
}

// GetItem handles GET /api/items/{id}.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		internalError(w, r, "failed to get item", err)
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// ListBrands handles GET /api/brands.
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := store.ListBrands(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, "failed to list brands", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(brands))
}

// GetBrand handles GET /api/brands/{id}. The brand's items are included.
func (h *Handler) GetBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var resp brandResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.Brand, err = store.GetBrand(ctx, h.DB, id)
		return err
	})
	g.Go(func() (err error) {
		resp.Items, err = store.ListItemsByBrand(ctx, h.DB, id)
		return err
	})
	if err := g.Wait(); err != nil {
		internalError(w, r, "failed to get brand", err)
		return
	}
	if resp.Brand == nil {
		jsonError(w, http.StatusNotFound, "brand not found")
		return
	}
	resp.Items = orEmpty(resp.Items)
	jsonResponse(w, http.StatusOK, resp)
}

// ListCategories handles GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		internalError(w, r, "failed to list categories", err)
		return
	}
	jsonResponse(w, http.StatusOK, orEmpty(categories))
}

// GetCategory handles GET /api/categories/{id}. The category's items are included.
func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var resp categoryResponse
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		resp.Category, err = store.GetCategory(ctx, h.DB, id)
		return err
	})
	g.Go(func() (err error) {
		resp.Items, err = store.ListItemsByCategory(ctx, h.DB, id)
		return err
	})
	if err := g.Wait(); err != nil {
		internalError(w, r, "failed to get category", err)
		return
	}
	if resp.Category == nil {
		jsonError(w, http.StatusNotFound, "category not found")
		return
	}
	resp.Items = orEmpty(resp.Items)
	jsonResponse(w, http.StatusOK, resp)
}

// orEmpty keeps empty lists encoding as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
