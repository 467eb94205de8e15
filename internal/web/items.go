package web

import (
	"errors"
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

type itemForm struct {
	PageData
	Action     string
	Item       *model.Item // nil on create
	Values     catalog.Values
	Violations []catalog.Violation
	Brands     []model.Brand
	Categories []model.Category
}

type itemDelete struct {
	PageData
	Item       *model.Item
	Violations []catalog.Violation
}

// ItemList handles GET /inventory/items.
func (s *Server) ItemList(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), s.DB)
	if err != nil {
		s.serverError(w, r, "failed to list items", err)
		return
	}

	s.Templates.Render(w, http.StatusOK, "item_list.html", &struct {
		PageData
		Items []model.Item
	}{
		PageData: s.page(r, "Item List"),
		Items:    items,
	})
}

// ItemDetail handles GET /inventory/item/{id}.
func (s *Server) ItemDetail(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	if item == nil {
		s.notFound(w, r)
		return
	}

	s.Templates.Render(w, http.StatusOK, "item_detail.html", &struct {
		PageData
		Item *model.Item
	}{
		PageData: s.page(r, item.Name),
		Item:     item,
	})
}

// ItemCreatePage handles GET /inventory/item/create.
func (s *Server) ItemCreatePage(w http.ResponseWriter, r *http.Request) {
	s.renderItemForm(w, r, http.StatusOK, &itemForm{Values: catalog.Values{}})
}

// ItemCreateSubmit handles POST /inventory/item/create.
func (s *Server) ItemCreateSubmit(w http.ResponseWriter, r *http.Request) {
	req, err := itemRequest(r)
	if err != nil {
		s.serverError(w, r, "failed to read item photo", err)
		return
	}

	out, err := s.Catalog.Items.Create(r.Context(), req)
	if err != nil {
		s.serverError(w, r, "failed to create item", err)
		return
	}

	if out.Stage == catalog.StageRejected {
		s.renderItemForm(w, r, http.StatusOK, &itemForm{Values: out.Values, Violations: out.Violations})
		return
	}
	seeOther(w, r, out.Redirect)
}

// ItemUpdatePage handles GET /inventory/item/{id}/update.
func (s *Server) ItemUpdatePage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	if item == nil {
		s.notFound(w, r)
		return
	}

	s.renderItemForm(w, r, http.StatusOK, &itemForm{
		Item: item,
		Values: formValues(
			"name", item.Name,
			"brand", item.Brand.String(),
			"category", item.Category.String(),
			"description", item.Description,
			"price", item.Price,
			"numInStock", strconv.Itoa(item.NumInStock),
		),
	})
}

// ItemUpdateSubmit handles POST /inventory/item/{id}/update.
func (s *Server) ItemUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	req, err := itemRequest(r)
	if err != nil {
		s.serverError(w, r, "failed to read item photo", err)
		return
	}
	req.ID = id

	out, err := s.Catalog.Items.Update(r.Context(), req)
	if errors.Is(err, catalog.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, "failed to update item", err)
		return
	}

	form := &itemForm{Item: out.Record, Values: out.Values, Violations: out.Violations}
	switch out.Stage {
	case catalog.StageConflict:
		s.renderItemForm(w, r, http.StatusConflict, form)
	case catalog.StageRejected:
		s.renderItemForm(w, r, http.StatusOK, form)
	default:
		seeOther(w, r, out.Redirect)
	}
}

// ItemDeletePage handles GET /inventory/item/{id}/delete.
func (s *Server) ItemDeletePage(w http.ResponseWriter, r *http.Request) {
	item, ok := s.loadItem(w, r)
	if !ok {
		return
	}
	if item == nil {
		seeOther(w, r, "/inventory/items")
		return
	}
	s.renderItemDelete(w, r, &itemDelete{Item: item})
}

// ItemDeleteSubmit handles POST /inventory/item/{id}/delete.
func (s *Server) ItemDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, ok := deleteTarget(r, "itemid")
	if !ok {
		seeOther(w, r, "/inventory/items")
		return
	}

	out, err := s.Catalog.Items.Delete(r.Context(), catalog.Request{
		ID:     id,
		Form:   r.PostForm,
		Secret: r.PostFormValue("password"),
	})
	if err != nil {
		s.serverError(w, r, "failed to delete item", err)
		return
	}

	if out.Stage == catalog.StageRejected {
		s.renderItemDelete(w, r, &itemDelete{Item: out.Record, Violations: out.Violations})
		return
	}
	seeOther(w, r, out.Redirect)
}

// itemRequest collects the submitted item form and optional photo.
func itemRequest(r *http.Request) (catalog.Request, error) {
	photo, invalid, err := readPhoto(r)
	if err != nil {
		return catalog.Request{}, err
	}
	return catalog.Request{
		Form:    r.PostForm,
		Secret:  r.PostFormValue("password"),
		Photo:   photo,
		Invalid: invalid,
	}, nil
}

// loadItem fetches the item named by the URL. A malformed id yields nil.
// ok is false if a response was written.
func (s *Server) loadItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, valid := pathID(r)
	if !valid {
		return nil, true
	}
	item, err := store.GetItem(r.Context(), s.DB, id)
	if err != nil {
		s.serverError(w, r, "failed to get item", err)
		return nil, false
	}
	return item, true
}

// renderItemForm loads the brand and category choices and renders the form.
func (s *Server) renderItemForm(w http.ResponseWriter, r *http.Request, status int, form *itemForm) {
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		form.Brands, err = store.ListBrands(ctx, s.DB)
		return err
	})
	g.Go(func() (err error) {
		form.Categories, err = store.ListCategories(ctx, s.DB)
		return err
	})
	if err := g.Wait(); err != nil {
		s.serverError(w, r, "failed to load item form", err)
		return
	}

	if form.Item != nil {
		form.PageData = s.page(r, "Update Item")
		form.Action = form.Item.URL() + "/update"
	} else {
		form.PageData = s.page(r, "Create Item")
		form.Action = "/inventory/item/create"
	}
	s.Templates.Render(w, status, "item_form.html", form)
}

func (s *Server) renderItemDelete(w http.ResponseWriter, r *http.Request, data *itemDelete) {
	data.PageData = s.page(r, "Delete Item: "+data.Item.Name)
	s.Templates.Render(w, http.StatusOK, "item_delete.html", data)
}
