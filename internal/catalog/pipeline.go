package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erazemk/katalog/internal/imaging"
	"github.com/erazemk/katalog/internal/model"
	"github.com/erazemk/katalog/internal/store"
)

// Stage is where a mutation ended.
type Stage string

const (
	// StageRejected: the input failed validation, the gate or a reference check.
	StageRejected Stage = "rejected"
	// StageDuplicate: a create matched an existing record, which is returned instead.
	StageDuplicate Stage = "duplicate"
	// StageConflict: an update would rename a record onto another one.
	StageConflict Stage = "conflict"
	// StageBlocked: a delete was refused because items still reference the record.
	StageBlocked Stage = "blocked"
	// StageMissing: the delete target no longer exists.
	StageMissing Stage = "missing"
	// StagePersisted: the write was applied.
	StagePersisted Stage = "persisted"
)

// ErrNotFound is returned by Update when the target record does not exist.
var ErrNotFound = errors.New("not found")

// Request is one submitted mutation.
type Request struct {
	ID      uuid.UUID // target of an update or delete
	Form    url.Values
	Secret  string
	Photo   *imaging.Photo // nil when nothing was uploaded
	Invalid []Violation    // problems found while decoding the request
}

// Outcome describes how a mutation ended and where the caller should go next.
type Outcome[T any] struct {
	Stage      Stage
	Record     *T // created, updated or targeted record; the existing record on a duplicate
	Conflict   *T // record an update collided with
	Referrers  []model.Item
	Values     Values
	Violations []Violation
	Redirect   string
}

// Schema binds the pipeline to one record type. Optional hooks may be nil.
type Schema[T any] struct {
	Kind    string
	ListURL string
	Rules   Rules
	Gate    Gate

	ID  func(*T) uuid.UUID
	URL func(*T) string

	// Build turns sanitized values into a record. target is nil on create.
	Build func(v Values, target *T) *T

	Get     func(ctx context.Context, id uuid.UUID) (*T, error)
	Insert  func(ctx context.Context, rec *T) (*T, error)
	Replace func(ctx context.Context, rec *T) error
	Remove  func(ctx context.Context, id uuid.UUID) error

	// Lookup returns the record that rec would duplicate, if any.
	Lookup func(ctx context.Context, rec *T) (*T, error)
	// Refs reports references from rec that do not resolve.
	Refs func(ctx context.Context, rec *T) ([]Violation, error)
	// Referrers lists items that block deletion.
	Referrers func(ctx context.Context, id uuid.UUID) ([]model.Item, error)

	// Attach runs side effects before the write. The returned func undoes them.
	Attach func(ctx context.Context, rec *T, req Request, target *T) (func(), error)
	// Detach cleans up after a successful write. current is nil after a delete.
	Detach func(ctx context.Context, previous, current *T)
}

// Pipeline runs validated create, update and delete flows for one record type.
type Pipeline[T any] struct {
	schema   Schema[T]
	outcomes *prometheus.CounterVec
}

// NewPipeline creates a pipeline. outcomes may be nil.
func NewPipeline[T any](schema Schema[T], outcomes *prometheus.CounterVec) *Pipeline[T] {
	return &Pipeline[T]{schema: schema, outcomes: outcomes}
}

// Create validates and stores a new record. A duplicate of an existing
// record is not stored; the outcome points at the existing one.
func (p *Pipeline[T]) Create(ctx context.Context, req Request) (*Outcome[T], error) {
	s := &p.schema

	values, out := p.admit(req)
	if out != nil {
		return p.done(ctx, "create", out), nil
	}

	rec := s.Build(values, nil)
	if out, err := p.checkRefs(ctx, rec, values); out != nil || err != nil {
		return p.finish(ctx, "create", out, err)
	}
	if out, err := p.checkDuplicate(ctx, rec, values); out != nil || err != nil {
		return p.finish(ctx, "create", out, err)
	}

	undo, err := p.attach(ctx, rec, req, nil)
	if err != nil {
		return nil, err
	}

	created, err := s.Insert(ctx, rec)
	if err != nil {
		undo()
		// Lost a race against a concurrent write, or a reference vanished.
		if errors.Is(err, store.ErrDuplicate) {
			out, err := p.checkDuplicate(ctx, rec, values)
			return p.finish(ctx, "create", out, err)
		}
		if errors.Is(err, store.ErrMissingReference) {
			out, err := p.checkRefs(ctx, rec, values)
			return p.finish(ctx, "create", out, err)
		}
		return nil, fmt.Errorf("creating %s: %w", s.Kind, err)
	}

	return p.done(ctx, "create", &Outcome[T]{
		Stage:    StagePersisted,
		Record:   created,
		Values:   values,
		Redirect: s.URL(created),
	}), nil
}

// Update validates and replaces an existing record. Returns ErrNotFound if
// req.ID does not exist.
func (p *Pipeline[T]) Update(ctx context.Context, req Request) (*Outcome[T], error) {
	s := &p.schema

	target, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.Kind, err)
	}
	if target == nil {
		return nil, ErrNotFound
	}

	values, out := p.admit(req)
	if out != nil {
		out.Record = target
		return p.done(ctx, "update", out), nil
	}

	rec := s.Build(values, target)
	if out, err := p.checkRefs(ctx, rec, values); out != nil || err != nil {
		return p.finish(ctx, "update", withRecord(out, target), err)
	}
	if out, err := p.checkConflict(ctx, rec, target, values); out != nil || err != nil {
		return p.finish(ctx, "update", out, err)
	}

	undo, err := p.attach(ctx, rec, req, target)
	if err != nil {
		return nil, err
	}

	if err := s.Replace(ctx, rec); err != nil {
		undo()
		switch {
		case errors.Is(err, store.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, store.ErrDuplicate):
			out, err := p.checkConflict(ctx, rec, target, values)
			return p.finish(ctx, "update", out, err)
		case errors.Is(err, store.ErrMissingReference):
			out, err := p.checkRefs(ctx, rec, values)
			return p.finish(ctx, "update", withRecord(out, target), err)
		}
		return nil, fmt.Errorf("updating %s: %w", s.Kind, err)
	}

	if s.Detach != nil {
		s.Detach(ctx, target, rec)
	}

	return p.done(ctx, "update", &Outcome[T]{
		Stage:    StagePersisted,
		Record:   rec,
		Values:   values,
		Redirect: s.URL(rec),
	}), nil
}

// Delete removes a record unless items still reference it. A missing
// target is not an error: the outcome sends the caller back to the list.
func (p *Pipeline[T]) Delete(ctx context.Context, req Request) (*Outcome[T], error) {
	s := &p.schema

	target, err := s.Get(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", s.Kind, err)
	}
	if target == nil {
		return p.done(ctx, "delete", &Outcome[T]{Stage: StageMissing, Redirect: s.ListURL}), nil
	}

	if s.Gate != nil && !s.Gate.Allow(req.Secret) {
		return p.done(ctx, "delete", &Outcome[T]{
			Stage:      StageRejected,
			Record:     target,
			Violations: []Violation{{Field: "password", Message: IncorrectPassword}},
		}), nil
	}

	if out, err := p.checkReferrers(ctx, target); out != nil || err != nil {
		return p.finish(ctx, "delete", out, err)
	}

	if err := s.Remove(ctx, req.ID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return p.done(ctx, "delete", &Outcome[T]{Stage: StageMissing, Redirect: s.ListURL}), nil
		case errors.Is(err, store.ErrReferenced):
			// An item was added after the referrer check.
			out, err := p.checkReferrers(ctx, target)
			return p.finish(ctx, "delete", out, err)
		}
		return nil, fmt.Errorf("deleting %s: %w", s.Kind, err)
	}

	if s.Detach != nil {
		s.Detach(ctx, target, nil)
	}

	return p.done(ctx, "delete", &Outcome[T]{
		Stage:    StagePersisted,
		Record:   target,
		Redirect: s.ListURL,
	}), nil
}

// admit validates the form and consults the gate.
func (p *Pipeline[T]) admit(req Request) (Values, *Outcome[T]) {
	values, violations := p.schema.Rules.Check(req.Form)
	violations = append(violations, req.Invalid...)
	if len(violations) > 0 {
		return values, &Outcome[T]{Stage: StageRejected, Values: values, Violations: violations}
	}

	if p.schema.Gate != nil && !p.schema.Gate.Allow(req.Secret) {
		return values, &Outcome[T]{
			Stage:      StageRejected,
			Values:     values,
			Violations: []Violation{{Field: "password", Message: IncorrectPassword}},
		}
	}

	return values, nil
}

func (p *Pipeline[T]) checkRefs(ctx context.Context, rec *T, values Values) (*Outcome[T], error) {
	if p.schema.Refs == nil {
		return nil, nil
	}
	violations, err := p.schema.Refs(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("checking %s references: %w", p.schema.Kind, err)
	}
	if len(violations) == 0 {
		return nil, nil
	}
	return &Outcome[T]{Stage: StageRejected, Values: values, Violations: violations}, nil
}

func (p *Pipeline[T]) checkDuplicate(ctx context.Context, rec *T, values Values) (*Outcome[T], error) {
	if p.schema.Lookup == nil {
		return nil, nil
	}
	existing, err := p.schema.Lookup(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", p.schema.Kind, err)
	}
	if existing == nil {
		return nil, nil
	}
	return &Outcome[T]{
		Stage:    StageDuplicate,
		Record:   existing,
		Values:   values,
		Redirect: p.schema.URL(existing),
	}, nil
}

func (p *Pipeline[T]) checkConflict(ctx context.Context, rec, target *T, values Values) (*Outcome[T], error) {
	if p.schema.Lookup == nil {
		return nil, nil
	}
	existing, err := p.schema.Lookup(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("looking up %s: %w", p.schema.Kind, err)
	}
	if existing == nil || p.schema.ID(existing) == p.schema.ID(target) {
		return nil, nil
	}
	return &Outcome[T]{
		Stage:    StageConflict,
		Record:   target,
		Conflict: existing,
		Values:   values,
		Violations: []Violation{{
			Field:   "name",
			Message: fmt.Sprintf("Another %s already uses this name. Your changes were not saved.", p.schema.Kind),
		}},
	}, nil
}

func (p *Pipeline[T]) checkReferrers(ctx context.Context, target *T) (*Outcome[T], error) {
	if p.schema.Referrers == nil {
		return nil, nil
	}
	items, err := p.schema.Referrers(ctx, p.schema.ID(target))
	if err != nil {
		return nil, fmt.Errorf("listing items of %s: %w", p.schema.Kind, err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &Outcome[T]{Stage: StageBlocked, Record: target, Referrers: items}, nil
}

func (p *Pipeline[T]) attach(ctx context.Context, rec *T, req Request, target *T) (func(), error) {
	if p.schema.Attach == nil {
		return func() {}, nil
	}
	undo, err := p.schema.Attach(ctx, rec, req, target)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", p.schema.Kind, err)
	}
	if undo == nil {
		undo = func() {}
	}
	return undo, nil
}

// finish records out when the step produced one. A nil outcome with a nil
// error means a retried check found nothing, which is an internal error.
func (p *Pipeline[T]) finish(ctx context.Context, op string, out *Outcome[T], err error) (*Outcome[T], error) {
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("%s %s: storage rejected the write but no cause was found", op, p.schema.Kind)
	}
	return p.done(ctx, op, out), nil
}

func (p *Pipeline[T]) done(ctx context.Context, op string, out *Outcome[T]) *Outcome[T] {
	attrs := []any{"kind", p.schema.Kind, "op", op, "stage", string(out.Stage)}
	if out.Record != nil {
		attrs = append(attrs, "id", p.schema.ID(out.Record).String())
	}
	level := slog.LevelInfo
	if out.Stage == StageRejected {
		level = slog.LevelDebug
	}
	slog.Log(ctx, level, "mutation finished", attrs...)

	if p.outcomes != nil {
		p.outcomes.WithLabelValues(p.schema.Kind, op, string(out.Stage)).Inc()
	}
	return out
}

func withRecord[T any](out *Outcome[T], rec *T) *Outcome[T] {
	if out != nil {
		out.Record = rec
	}
	return out
}
