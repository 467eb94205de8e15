package web

import (
	"errors"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type categoryForm struct {
	PageData
	Action     string
	Category   *model.Category // nil on create
	Values     catalog.Values
	Violations []catalog.Violation
	Conflict   *model.Category
}

type categoryDelete struct {
	PageData
	Category   *model.Category
	Items      []model.Item
	Violations []catalog.Violation
}

// CategoryList handles GET /inventory/categories.
func (s *Server) CategoryList(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list categories", err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "category_list.html", &struct {
		PageData
		Categories []model.Category
	}{
		PageData:   s.page(r, "Category List"),
		Categories: categories,
	})
}

// CategoryDetail handles GET /inventory/category/{id}.
func (s *Server) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	category, items, ok := s.loadCategory(w, r)
	if !ok {
		return
	}
	if category == nil {
		s.notFound(w, r)
		return
	}

	s.Templates.Render(w, http.StatusOK, "category_detail.html", &struct {
		PageData
		Category *model.Category
		Items    []model.Item
	}{
		PageData: s.page(r, "Category: "+category.Name),
		Category: category,
		Items:    items,
	})
}

// CategoryCreatePage handles GET /inventory/category/create.
func (s *Server) CategoryCreatePage(w http.ResponseWriter, r *http.Request) {
	s.renderCategoryForm(w, r, http.StatusOK, &categoryForm{Values: catalog.Values{}})
}

// CategoryCreateSubmit handles POST /inventory/category/create.
func (s *Server) CategoryCreateSubmit(w http.ResponseWriter, r *http.Request) {
	out, err := s.Catalog.Categories.Create(r.Context(), catalog.Request{Form: r.PostForm})
	if err != nil {
		s.serverError(w, r, "failed to create category", err)
		return
	}

	if out.Stage == catalog.StageRejected {
		s.renderCategoryForm(w, r, http.StatusOK, &categoryForm{Values: out.Values, Violations: out.Violations})
		return
	}
	seeOther(w, r, out.Redirect)
}

// CategoryUpdatePage handles GET /inventory/category/{id}/update.
func (s *Server) CategoryUpdatePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}
	category, err := store.GetCategory(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get category", err)
		return
	}
	if category == nil {
		s.notFound(w, r)
		return
	}

	s.renderCategoryForm(w, r, http.StatusOK, &categoryForm{
		Category: category,
		Values:   formValues("name", category.Name, "description", category.Description),
	})
}

// CategoryUpdateSubmit handles POST /inventory/category/{id}/update.
func (s *Server) CategoryUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	out, err := s.Catalog.Categories.Update(r.Context(), catalog.Request{ID: id, Form: r.PostForm})
	if errors.Is(err, catalog.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "failed to update category", err)
		return
	}

	form := &categoryForm{Category: out.Record, Values: out.Values, Violations: out.Violations, Conflict: out.Conflict}
	switch out.Stage {
	case catalog.StageConflict:
		s.renderCategoryForm(w, r, http.StatusConflict, form)
	case catalog.StageRejected:
		s.renderCategoryForm(w, r, http.StatusOK, form)
	default:
		seeOther(w, r, out.Redirect)
	}
}

// CategoryDeletePage handles GET /inventory/category/{id}/delete.
func (s *Server) CategoryDeletePage(w http.ResponseWriter, r *http.Request) {
	category, items, ok := s.loadCategory(w, r)
	if !ok {
		return
	}
	if category == nil {
		seeOther(w, r, "/inventory/categories")
		return
	}
	s.renderCategoryDelete(w, r, &categoryDelete{Category: category, Items: items})
}

// CategoryDeleteSubmit handles POST /inventory/category/{id}/delete.
func (s *Server) CategoryDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := deleteTarget(r, "categoryid")
	if !ok {
		seeOther(w, r, "/inventory/categories")
		return
	}

	out, err := s.Catalog.Categories.Delete(r.Context(), catalog.Request{ID: id, Form: r.PostForm})
	if err != nil {
		s.serverError(w, r, "failed to delete category", err)
		return
	}

	switch out.Stage {
	case catalog.StageBlocked, catalog.StageRejected:
		s.renderCategoryDelete(w, r, &categoryDelete{Category: out.Record, Items: out.Referrers, Violations: out.Violations})
	default:
		seeOther(w, r, out.Redirect)
	}
}

// loadCategory fetches the category named by the URL and its items
// concurrently.
// A malformed id yields a nil category. ok is false if a response was written.
func (s *Server) loadCategory(w http.ResponseWriter, r *http.Request) (*model.Category, []model.Item, bool) {
	id, valid := pathID(r)
	if !valid {
		return nil, nil, true
	}

	var category *model.Category
	var items []model.Item
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		category, err = store.GetCategory(ctx, s.DB, id)
		return err
	})
	g.Go(func() (err error) {
		items, err = store.ListItemsByCategory(ctx, s.DB, id)
		return err
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "failed to get category", err)
		return nil, nil, false
	}
	return category, items, true
}

func (s *Server) renderCategoryForm(w http.ResponseWriter, r *http.Request, status int, form *categoryForm) {
	if form.Category != nil {
		form.PageData = s.page(r, "Update Category")
		form.Action = form.Category.URL() + "/update"
	} else {
		form.PageData = s.page(r, "Create Category")
		form.Action = "/inventory/category/create"
	}
	s.Templates.Render(w, status, "category_form.html", form)
}

func (s *Server) renderCategoryDelete(w http.ResponseWriter, r *http.Request, data *categoryDelete) {
	data.PageData = s.page(r, "Delete Category: "+data.Category.Name)
	s.Templates.Render(w, http.StatusOK, "category_delete.html", data)
}
