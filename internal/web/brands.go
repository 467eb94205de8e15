package web

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type brandForm struct {
	PageData
	Action     string
	Brand      *model.Brand // nil on create
	Values     catalog.Values
	Violations []catalog.Violation
	Conflict   *model.Brand
}

type brandDelete struct {
	PageData
	Brand      *model.Brand
	Items      []model.Item
	Violations []catalog.Violation
}

// BrandList handles GET /inventory/brands.
func (s *Server) BrandList(w http.ResponseWriter, r *http.Request) {
	brands, err := store.ListBrands(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list brands", err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "brand_list.html", &struct {
		PageData
		Brands []model.Brand
	}{
		PageData: s.page(r, "Brand List"),
		Brands:   brands,
	})
}

// BrandDetail handles GET /inventory/brand/{id}.
func (s *Server) BrandDetail(w http.ResponseWriter, r *http.Request) {
	brand, items, ok := s.loadBrand(w, r)
	if !ok {
		return
	}
	if brand == nil {
		s.notFound(w, r)
		return
	}

	s.Templates.Render(w, http.StatusOK, "brand_detail.html", &struct {
		PageData
		Brand *model.Brand
		Items []model.Item
	}{
		PageData: s.page(r, "Brand: "+brand.Name),
		Brand:    brand,
		Items:    items,
	})
}

// BrandCreatePage handles GET /inventory/brand/create.
func (s *Server) BrandCreatePage(w http.ResponseWriter, r *http.Request) {
	s.renderBrandForm(w, r, http.StatusOK, &brandForm{Values: catalog.Values{}})
}

// BrandCreateSubmit handles POST /inventory/brand/create.
func (s *Server) BrandCreateSubmit(w http.ResponseWriter, r *http.Request) {
	out, err := s.Catalog.Brands.Create(r.Context(), catalog.Request{Form: r.PostForm})
	if err != nil {
		s.serverError(w, r, "failed to create brand", err)
		return
	}

	if out.Stage == catalog.StageRejected {
		s.renderBrandForm(w, r, http.StatusOK, &brandForm{Values: out.Values, Violations: out.Violations})
		return
	}
	seeOther(w, r, out.Redirect)
}

// BrandUpdatePage handles GET /inventory/brand/{id}/update.
func (s *Server) BrandUpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	brand, err := store.GetBrand(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get brand", err)
		return
	}
	if brand == nil {
		s.notFound(w, r)
		return
	}

	s.renderBrandForm(w, r, http.StatusOK, &brandForm{
		Brand:  brand,
		Values: formValues("name", brand.Name),
	})
}

// BrandUpdateSubmit handles POST /inventory/brand/{id}/update.
func (s *Server) BrandUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	out, err := s.Catalog.Brands.Update(r.Context(), catalog.Request{ID: id, Form: r.PostForm})
	if errors.Is(err, catalog.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "failed to update brand", err)
		return
	}

	form := &brandForm{Brand: out.Record, Values: out.Values, Violations: out.Violations, Conflict: out.Conflict}
	switch out.Stage {
	case catalog.StageConflict:
		s.renderBrandForm(w, r, http.StatusConflict, form)
	case catalog.StageRejected:
		s.renderBrandForm(w, r, http.StatusOK, form)
	default:
		seeOther(w, r, out.Redirect)
	}
}

// BrandDeletePage handles GET /inventory/brand/{id}/delete.
func (s *Server) BrandDeletePage(w http.ResponseWriter, r *http.Request) {
	brand, items, ok := s.loadBrand(w, r)
	if !ok {
		return
	}
	if brand == nil {
		seeOther(w, r, "/inventory/brands")
		return
	}
	s.renderBrandDelete(w, r, &brandDelete{Brand: brand, Items: items})
}

// BrandDeleteSubmit handles POST /inventory/brand/{id}/delete.
func (s *Server) BrandDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := deleteTarget(r, "brandid")
	if !ok {
		seeOther(w, r, "/inventory/brands")
		return
	}

	out, err := s.Catalog.Brands.Delete(r.Context(), catalog.Request{ID: id, Form: r.PostForm})
	if err != nil {
		s.serverError(w, r, "failed to delete brand", err)
		return
	}

	switch out.Stage {
	case catalog.StageBlocked, catalog.StageRejected:
		s.renderBrandDelete(w, r, &brandDelete{Brand: out.Record, Items: out.Referrers, Violations: out.Violations})
	default:
		seeOther(w, r, out.Redirect)
	}
}

// loadBrand fetches the brand named by the URL and its items concurrently.
// A malformed id yields a nil brand. ok is false if a response was written.
func (s *Server) loadBrand(w http.ResponseWriter, r *http.Request) (*model.Brand, []model.Item, bool) {
	id, valid := pathID(r)
	if !valid {
		return nil, nil, true
	}

	var brand *model.Brand
	var items []model.Item
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		brand, err = store.GetBrand(ctx, s.DB, id)
		return err
	})
	g.Go(func() (err error) {
		items, err = store.ListItemsByBrand(ctx, s.DB, id)
		return err
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "failed to get brand", err)
		return nil, nil, false
	}
	return brand, items, true
}

func (s *Server) renderBrandForm(w http.ResponseWriter, r *http.Request, status int, form *brandForm) {
	if form.Brand != nil {
		form.PageData = s.page(r, "Update Brand")
		form.Action = form.Brand.URL() + "/update"
	} else {
		form.PageData = s.page(r, "Create Brand")
		form.Action = "/inventory/brand/create"
	}
	s.Templates.Render(w, status, "brand_form.html", form)
}

func (s *Server) renderBrandDelete(w http.ResponseWriter, r *http.Request, data *brandDelete) {
	data.PageData = s.page(r, "Delete Brand: "+data.Brand.Name)
	s.Templates.Render(w, http.StatusOK, "brand_delete.html", data)
}
