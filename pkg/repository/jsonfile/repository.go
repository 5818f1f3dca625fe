// Package jsonfile provides a todo repository persisted as a single JSON
// document. The whole document is rewritten on every mutation.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/fluxorio/todos/pkg/repository/memory"
	"github.com/fluxorio/todos/pkg/todo"
)

// DefaultPath is used when Open is given an empty path.
const DefaultPath = "todos.json"

// Repository is a file-backed todo repository. Safe for concurrent use within
// one process; separate processes sharing a file are not coordinated.
type Repository struct {
	path   string
	perm   os.FileMode
	logger *slog.Logger

	mu    sync.RWMutex
	store *memory.Store
}

var _ todo.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFileMode sets the permission bits of the written file.
func WithFileMode(perm os.FileMode) Option {
	return func(r *Repository) {
		r.perm = perm
	}
}

// Open loads path into memory. A missing, empty or unparsable file yields an
// empty repository; the file is only created on the first mutation. Other
// read failures are returned.
func Open(path string, opts ...Option) (*Repository, error) {
	if path == "" {
		path = DefaultPath
	}
	r := &Repository{
		path:   path,
		perm:   0o644,
		logger: slog.Default(),
		store:  memory.NewStore(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) load() error {
	// #nosec G304 -- path is the configured storage file.
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read todos from %s: %w", r.path, err)
	}

	todos, err := decode(data, r.logger.With("path", r.path))
	if errors.Is(err, errUnparsable) {
		r.logger.Warn("todo file is not valid JSON, starting empty", "path", r.path, "error", err)
		return nil
	}
	if err != nil {
		return err
	}

	for _, t := range todos {
		r.store.Put(t)
	}
	return nil
}

// Path returns the backing file path.
func (r *Repository) Path() string {
	return r.path
}

func (r *Repository) Create(_ context.Context, t todo.Todo) (todo.Todo, error) {
	err := r.mutate(func(s *memory.Store) error {
		s.Put(t)
		return nil
	})
	if err != nil {
		return todo.Todo{}, err
	}
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
	err := r.mutate(func(s *memory.Store) error {
		if !s.Replace(t) {
			return todo.NotFoundError(t.ID)
		}
		return nil
	})
	if err != nil {
		return todo.Todo{}, err
	}
	return t.Clone(), nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	return r.mutate(func(s *memory.Store) error {
		if !s.Remove(id) {
			return todo.NotFoundError(id)
		}
		return nil
	})
}

// mutate applies fn to a copy of the store, persists the copy and swaps it
// in. When fn or the write fails the visible state is unchanged.
func (r *Repository) mutate(fn func(*memory.Store) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.store.Clone()
	if err := fn(next); err != nil {
		return err
	}

	data, err := encode(next.All())
	if err != nil {
		return fmt.Errorf("encode todos: %w", err)
	}
	if err := writeFileAtomic(r.path, data, r.perm); err != nil {
		return fmt.Errorf("save todos to %s: %w", r.path, err)
	}

	r.store = next
	return nil
}
