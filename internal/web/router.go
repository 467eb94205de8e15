// Package web serves the HTML inventory pages.
package web

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/csrf"
	"github.com/erazemk/katalog/internal/metrics"
	webembed "github.com/erazemk/katalog/web"
)

// DefaultMaxUploadBytes caps request bodies when Options leaves it unset.
const DefaultMaxUploadBytes = 5 << 20

// Options configures the web router.
type Options struct {
	DB      *sql.DB
	Catalog *catalog.Catalog

	// FormKey signs form tokens.
	FormKey string

	// Production hides internal error detail and marks cookies secure.
	Production bool

	MaxUploadBytes int64

	// Uploads serves stored photos under /uploads. Nil when photos live
	// elsewhere.
	Uploads http.Handler

	// Metrics, when set, instruments requests and serves /metrics.
	Metrics *metrics.Metrics

	// API is mounted under /api when set.
	API http.Handler
}

// Server holds all dependencies for page handlers.
type Server struct {
	DB             *sql.DB
	Catalog        *catalog.Catalog
	Templates      *Templates
	CSRF           *csrf.Protector
	Production     bool
	MaxUploadBytes int64
}

// NewRouter creates the web router with all page routes registered.
func NewRouter(opts Options) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		DB:             opts.DB,
		Catalog:        opts.Catalog,
		Templates:      templates,
		Production:     opts.Production,
		MaxUploadBytes: opts.MaxUploadBytes,
	}
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s.CSRF = csrf.New(opts.FormKey, opts.Production, http.HandlerFunc(s.formTokenFailed))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.recoverer)
	r.Use(requestLogger)
	r.Use(secureHeaders)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.NotFound(s.notFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	if opts.Uploads != nil {
		r.Handle("/uploads/*", opts.Uploads)
	}
	r.Get("/health", health)
	if opts.API != nil {
		r.Mount("/api", opts.API)
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/inventory", http.StatusFound)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Use(s.parseForms)
		r.Use(s.CSRF.Middleware)

		r.Get("/", s.Dashboard)

		r.Get("/items", s.ItemList)
		r.Get("/item/create", s.ItemCreatePage)
		r.Post("/item/create", s.ItemCreateSubmit)
		r.Get("/item/{id}", s.ItemDetail)
		r.Get("/item/{id}/update", s.ItemUpdatePage)
		r.Post("/item/{id}/update", s.ItemUpdateSubmit)
		r.Get("/item/{id}/delete", s.ItemDeletePage)
		r.Post("/item/{id}/delete", s.ItemDeleteSubmit)

		r.Get("/brands", s.BrandList)
		r.Get("/brand/create", s.BrandCreatePage)
		r.Post("/brand/create", s.BrandCreateSubmit)
		r.Get("/brand/{id}", s.BrandDetail)
		r.Get("/brand/{id}/update", s.BrandUpdatePage)
		r.Post("/brand/{id}/update", s.BrandUpdateSubmit)
		r.Get("/brand/{id}/delete", s.BrandDeletePage)
		r.Post("/brand/{id}/delete", s.BrandDeleteSubmit)

		r.Get("/categories", s.CategoryList)
		r.Get("/category/create", s.CategoryCreatePage)
		r.Post("/category/create", s.CategoryCreateSubmit)
		r.Get("/category/{id}", s.CategoryDetail)
		r.Get("/category/{id}/update", s.CategoryUpdatePage)
		r.Post("/category/{id}/update", s.CategoryUpdateSubmit)
		r.Get("/category/{id}/delete", s.CategoryDeletePage)
		r.Post("/category/{id}/delete", s.CategoryDeleteSubmit)
	})

	return r, nil
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}` + "\n"))
}

// page returns the base data for a rendered page.
func (s *Server) page(r *http.Request, title string) PageData {
	return PageData{Title: title, CSRFToken: s.CSRF.Token(r)}
}
