package tracing

import (
	"context"

	"github.com/fluxorio/todos/pkg/todo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Repository opens a span around every call of the wrapped repository.
type Repository struct {
	next    todo.Repository
	tracer  trace.Tracer
	backend attribute.KeyValue
}

var _ todo.Repository = (*Repository)(nil)

// NewRepository wraps next. backend is recorded on every span.
func NewRepository(next todo.Repository, tracer trace.Tracer, backend string) *Repository {
	return &Repository{next: next, tracer: tracer, backend: attribute.String("todo.backend", backend)}
}

func (r *Repository) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "todo.repository."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, r.backend)...),
	)
}

func end(span trace.Span, err error) {
	switch {
	case todo.IsNotFound(err):
		span.SetAttributes(attribute.Bool("todo.found", false))
	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *Repository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	ctx, span := r.start(ctx, "Create", attribute.String("todo.id", t.ID))
	created, err := r.next.Create(ctx, t)
	end(span, err)
	return created, err
}

func (r *Repository) GetAll(ctx context.Context) ([]todo.Todo, error) {
	ctx, span := r.start(ctx, "GetAll")
	todos, err := r.next.GetAll(ctx)
	span.SetAttributes(attribute.Int("todo.count", len(todos)))
	end(span, err)
	return todos, err
}

func (r *Repository) GetByID(ctx context.Context, id string) (todo.Todo, bool, error) {
	ctx, span := r.start(ctx, "GetByID", attribute.String("todo.id", id))
	t, found, err := r.next.GetByID(ctx, id)
	span.SetAttributes(attribute.Bool("todo.found", found))
	end(span, err)
	return t, found, err
}

func (r *Repository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	ctx, span := r.start(ctx, "Update", attribute.String("todo.id", t.ID))
	updated, err := r.next.Update(ctx, t)
	end(span, err)
	return updated, err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := r.start(ctx, "Delete", attribute.String("todo.id", id))
	err := r.next.Delete(ctx, id)
	end(span, err)
	return err
}
