// Package memory provides a process-local todo repository.
package memory

import (
	"context"
	"sync"

	"github.com/fluxorio/todos/pkg/todo"
)

// Repository keeps todos in memory. Safe for concurrent use.
type Repository struct {
	mu    sync.RWMutex
	store *Store
}

var _ todo.Repository = (*Repository)(nil)

// New returns an empty repository.
func New() *Repository {
	return &Repository{store: NewStore()}
}

func (r *Repository) Create(_ context.Context, t todo.Todo) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Put(t)
	return t.Clone(), nil
}

func (r *Repository) GetAll(_ context.Context) ([]todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.store.All(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (todo.Todo, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.store.Get(id)
	return t, ok, nil
}

func (r *Repository) Update(_ context.Context, t todo.Todo) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Replace(t) {
		return todo.Todo{}, todo.NotFoundError(t.ID)
	}
	return t.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.store.Remove(id) {
		return todo.NotFoundError(id)
	}
	return nil
}

// Len returns the number of stored todos.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store.Len()
}
