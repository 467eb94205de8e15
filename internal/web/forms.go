package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/erazemk/katalog/internal/catalog"
	"github.com/erazemk/katalog/internal/imaging"
)

const photoField = "itemPhoto"

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// readPhoto decodes the optional uploaded photo. An unreadable image is
// reported as a violation rather than an error.
func readPhoto(r *http.Request) (*imaging.Photo, []catalog.Violation, error) {
	file, _, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("opening photo: %w", err)
	}
	defer file.Close()

	photo, err := imaging.Normalize(file)
	if errors.Is(err, imaging.ErrUnsupportedFormat) {
		return nil, []catalog.Violation{{Field: photoField, Message: "Photo must be a JPEG or PNG image."}}, nil
	}
	if errors.Is(err, imaging.ErrTooLarge) {
		return nil, []catalog.Violation{{Field: photoField, Message: "Photo dimensions are too large."}}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return photo, nil, nil
}

// formValues pre-fills a form from a stored record.
func formValues(pairs ...string) catalog.Values {
	v := make(catalog.Values, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		v[pairs[i]] = pairs[i+1]
	}
	return v
}

// deleteTarget reads the record id posted by a delete confirmation, falling
// back to the URL.
func deleteTarget(r *http.Request, field string) (uuid.UUID, bool) {
	if v := r.PostFormValue(field); v != "" {
		id, err := uuid.Parse(v)
		return id, err == nil
	}
	return pathID(r)
}

func seeOther(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, http.StatusSeeOther)
}
