package web

import (
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/store"
)

// ShopName is shown on the dashboard and in page titles.
const ShopName = "Micro Drum Shop"

// Dashboard handles GET /inventory.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	var (
		items, brands, categories int
		value                     decimal.Decimal
		unpriced                  int
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		brands, err = store.CountBrands(ctx, s.DB)
		return err
	})
	g.Go(func() (err error) {
		categories, err = store.CountCategories(ctx, s.DB)
		return err
	})
	g.Go(func() error {
		list, err := store.ListItems(ctx, s.DB)
		if err != nil {
			return err
		}
		items = len(list)
		value, unpriced = catalog.StockValue(list)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "failed to load dashboard", err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "dashboard.html", &struct {
		PageData
		Items      int
		Brands     int
		Categories int
		StockValue string
		Unpriced   int
	}{
		PageData:   s.page(r, ShopName),
		Items:      items,
		Brands:     brands,
		Categories: categories,
		StockValue: value.StringFixed(2),
		Unpriced:   unpriced,
	})
}
