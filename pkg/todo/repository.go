package todo

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when an operation targets an id that is not stored.
var ErrNotFound = errors.New("not found")

// NotFoundError wraps ErrNotFound with the offending id.
func NotFoundError(id string) error {
	return fmt.Errorf("todo with ID %s %w", id, ErrNotFound)
}

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository is the storage contract shared by every backend.
//
// Implementations store values: callers may freely mutate what they pass in
// or get back without affecting stored state.
type Repository interface {
	// Create stores t keyed by t.ID. An existing record with the same ID is
	// overwritten.
	Create(ctx context.Context, t Todo) (Todo, error)

	// GetAll returns every stored todo.
	GetAll(ctx context.Context) ([]Todo, error)

	// GetByID returns the todo with id. found is false when nothing is stored
	// under id; that is not an error.
	GetByID(ctx context.Context, id string) (t Todo, found bool, err error)

	// Update replaces the record stored under t.ID. Returns ErrNotFound when
	// absent.
	Update(ctx context.Context, t Todo) (Todo, error)

	// Delete removes the record stored under id. Returns ErrNotFound when
	// absent.
	Delete(ctx context.Context, id string) error
}
