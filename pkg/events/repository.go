package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/todo"
)

// Repository publishes an event after every successful mutation of the
// wrapped repository. Publish failures are logged and never change the
// result of the mutation. Events are published after the wrapped call
// returns, so concurrent mutations may publish out of order; consumers
// should order by At.
type Repository struct {
	next      todo.Repository
	publisher Publisher
	logger    *slog.Logger
	observer  PublishObserver
	now       func() time.Time
}

var _ todo.Repository = (*Repository)(nil)

// Option configures a Repository.
type Option func(*Repository)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

func WithObserver(o PublishObserver) Option {
	return func(r *Repository) { r.observer = o }
}

// NewRepository wraps next.
func NewRepository(next todo.Repository, publisher Publisher, opts ...Option) *Repository {
	r := &Repository{
		next:      next,
		publisher: publisher,
		logger:    slog.Default(),
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) emit(ctx context.Context, typ Type, id string, t *todo.Todo) {
	ev := Event{
		Type:      typ,
		ID:        id,
		Todo:      t,
		At:        r.now(),
		RequestID: core.GetRequestID(ctx),
	}
	err := r.publisher.Publish(ctx, ev)
	if r.observer != nil {
		r.observer.ObservePublish(string(typ), err)
	}
	if err != nil {
		r.logger.Warn("publish todo event failed", "type", typ, "id", id, "err", err)
	}
}

func (r *Repository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	created, err := r.next.Create(ctx, t)
	if err != nil {
		return created, err
	}
	snapshot := created.Clone()
	r.emit(ctx, Created, created.ID, &snapshot)
	return created, nil
}

func (r *Repository) GetAll(ctx context.Context) ([]todo.Todo, error) {
	return r.next.GetAll(ctx)
}

func (r *Repository) GetByID(ctx context.Context, id string) (todo.Todo, bool, error) {
	return r.next.GetByID(ctx, id)
}

func (r *Repository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	updated, err := r.next.Update(ctx, t)
	if err != nil {
		return updated, err
	}
	snapshot := updated.Clone()
	r.emit(ctx, Updated, updated.ID, &snapshot)
	return updated, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	if err := r.next.Delete(ctx, id); err != nil {
		return err
	}
	r.emit(ctx, Deleted, id, nil)
	return nil
}
