package web

import (
	"log/slog"
	"net/http"
)

type errorPage struct {
	PageData
	Status  int
	Message string
	Detail  string
}

// renderError shows the generic error page. err is only displayed outside
// production.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	data := &errorPage{
		PageData: s.page(r, message),
		Status:   status,
		Message:  message,
	}
	if err != nil && !s.Production {
		data.Detail = err.Error()
	}
	s.Templates.Render(w, status, "error.html", data)
}

// serverError logs err and shows a 500 page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.Error(msg, "method", r.Method, "path", r.URL.Path, "error", err)
	s.renderError(w, r, http.StatusInternalServerError, "Something went wrong", err)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Not found", nil)
}

func (s *Server) formTokenFailed(w http.ResponseWriter, r *http.Request) {
	slog.Warn("rejected form token", "path", r.URL.Path)
	s.renderError(w, r, http.StatusForbidden, "This form has expired. Reload the page and try again.", nil)
}
