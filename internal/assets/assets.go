// Package assets stores item photos and removes them when they are no longer used.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/katalog/internal/imaging"
	"github.com/erazemk/katalog/internal/model"
)

// Backend persists photo objects and maps them to public paths.
type Backend interface {
	// Put stores body under key and returns the path it is served from.
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	// Delete removes the object served from path.
	Delete(ctx context.Context, path string) error
}

// Manager stores uploaded photos through a Backend.
type Manager struct {
	backend  Backend
	failures prometheus.Counter
	now      func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithFailureCounter counts removals that failed.
func WithFailureCounter(c prometheus.Counter) Option {
	return func(m *Manager) { m.failures = c }
}

// WithClock overrides the time source used for file names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a Manager writing to backend.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Store persists photo under a unique name and returns its public path.
// A nil photo yields the placeholder path and writes nothing.
func (m *Manager) Store(ctx context.Context, photo *imaging.Photo) (string, error) {
	if photo == nil {
		return model.PlaceholderPhoto, nil
	}

	key := fmt.Sprintf("%d-%s.jpg", m.now().UnixMilli(), uuid.New())
	path, err := m.backend.Put(ctx, key, photo.ContentType(), bytes.NewReader(photo.Data), photo.Size())
	if err != nil {
		return "", fmt.Errorf("storing photo: %w", err)
	}

	slog.Debug("photo stored", "path", path, "bytes", photo.Size())
	return path, nil
}

// Remove deletes the stored photo at path. The placeholder is never
// deleted. Failures are logged and counted, not returned.
func (m *Manager) Remove(ctx context.Context, path string) {
	if path == "" || path == model.PlaceholderPhoto {
		return
	}

	if err := m.backend.Delete(ctx, path); err != nil {
		slog.Warn("failed to remove photo", "path", path, "error", err)
		if m.failures != nil {
			m.failures.Inc()
		}
		return
	}

	slog.Debug("photo removed", "path", path)
}
