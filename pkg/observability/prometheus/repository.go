package prometheus

import (
	"context"
	"time"

	"github.com/fluxorio/todos/pkg/todo"
)

// Repository records metrics around every call of the wrapped repository.
type Repository struct {
	next    todo.Repository
	backend string
	metrics *Metrics
}

var _ todo.Repository = (*Repository)(nil)

// InstrumentRepository wraps next; backend labels the series.
func InstrumentRepository(next todo.Repository, backend string, m *Metrics) *Repository {
	return &Repository{next: next, backend: backend, metrics: m}
}

// Unwrap returns the wrapped repository.
func (r *Repository) Unwrap() todo.Repository {
	return r.next
}

func (r *Repository) observe(operation string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case todo.IsNotFound(err):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
	}
	r.metrics.RecordRepositoryOperation(r.backend, operation, outcome, time.Since(start))
}

func (r *Repository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	start := time.Now()
	created, err := r.next.Create(ctx, t)
	r.observe("create", start, err)
	return created, err
}

func (r *Repository) GetAll(ctx context.Context) ([]todo.Todo, error) {
	start := time.Now()
	todos, err := r.next.GetAll(ctx)
	r.observe("get_all", start, err)
	if err == nil {
		r.metrics.TodosStored.WithLabelValues(r.backend).Set(float64(len(todos)))
	}
	return todos, err
}

func (r *Repository) GetByID(ctx context.Context, id string) (todo.Todo, bool, error) {
	start := time.Now()
	t, found, err := r.next.GetByID(ctx, id)
	if err == nil && !found {
		r.metrics.RecordRepositoryOperation(r.backend, "get_by_id", "absent", time.Since(start))
		return t, found, err
	}
	r.observe("get_by_id", start, err)
	return t, found, err
}

func (r *Repository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	start := time.Now()
	updated, err := r.next.Update(ctx, t)
	r.observe("update", start, err)
	return updated, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.observe("delete", start, err)
	return err
}
