package model

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Ref is a typed reference to a record of kind T. A Ref[Brand] cannot be
// assigned where a Ref[Category] is expected.
type Ref[T any] struct {
	ID uuid.UUID
}

// RefTo returns a reference to the record with the given id.
func RefTo[T any](id uuid.UUID) Ref[T] {
	return Ref[T]{ID: id}
}

// ParseRef parses a textual identifier into a reference.
func ParseRef[T any](s string) (Ref[T], error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return Ref[T]{}, fmt.Errorf("parsing reference %q: %w", s, err)
	}
	return Ref[T]{ID: id}, nil
}

// IsZero reports whether the reference points nowhere.
func (r Ref[T]) IsZero() bool {
	return r.ID == uuid.Nil
}

func (r Ref[T]) String() string {
	return r.ID.String()
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ID.String())
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}
