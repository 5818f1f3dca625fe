package todo

import (
	"context"
	"fmt"
	"sync"

	"github.com/fluxorio/todos/pkg/core/failfast"
)

// UpdateInput carries the fields of a partial update. Fields left unset keep
// their stored value. Description set to nil clears the description.
type UpdateInput struct {
	Title       Optional[string]  `json:"title"`
	Description Optional[*string] `json:"description"`
	Completed   Optional[bool]    `json:"completed"`
}

// Empty reports whether no field was provided.
func (in UpdateInput) Empty() bool {
	return !in.Title.IsSet() && !in.Description.IsSet() && !in.Completed.IsSet()
}

// Apply merges the provided fields into t. ID and CreatedAt are never touched.
func (in UpdateInput) Apply(t Todo) Todo {
	merged := t.Clone()
	if v, ok := in.Title.Get(); ok {
		merged.Title = v
	}
	if v, ok := in.Description.Get(); ok {
		merged.Description = cloneString(v)
	}
	if v, ok := in.Completed.Get(); ok {
		merged.Completed = v
	}
	return merged
}

// CreateTodo builds a new todo and stores it.
type CreateTodo struct {
	repo Repository
}

func NewCreateTodo(repo Repository) *CreateTodo {
	failfast.NotNil(repo, "repository")
	return &CreateTodo{repo: repo}
}

// Execute stores a todo with the given title and optional description.
// No validation is applied to title.
func (uc *CreateTodo) Execute(ctx context.Context, title string, description *string) (Todo, error) {
	created, err := uc.repo.Create(ctx, New(title, description))
	if err != nil {
		return Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

// GetAllTodos lists every todo.
type GetAllTodos struct {
	repo Repository
}

func NewGetAllTodos(repo Repository) *GetAllTodos {
	failfast.NotNil(repo, "repository")
	return &GetAllTodos{repo: repo}
}

func (uc *GetAllTodos) Execute(ctx context.Context) ([]Todo, error) {
	todos, err := uc.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// GetTodoByID looks up one todo. A missing id is reported through found,
// not as an error.
type GetTodoByID struct {
	repo Repository
}

func NewGetTodoByID(repo Repository) *GetTodoByID {
	failfast.NotNil(repo, "repository")
	return &GetTodoByID{repo: repo}
}

func (uc *GetTodoByID) Execute(ctx context.Context, id string) (Todo, bool, error) {
	t, found, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return Todo{}, false, fmt.Errorf("failed to get todo %s: %w", id, err)
	}
	return t, found, nil
}

// UpdateTodo applies a partial update to an existing todo.
type UpdateTodo struct {
	repo Repository

	// mu makes the read-merge-write atomic for callers sharing this value.
	// Writers in other processes on the same store are not covered.
	mu sync.Mutex
}

func NewUpdateTodo(repo Repository) *UpdateTodo {
	failfast.NotNil(repo, "repository")
	return &UpdateTodo{repo: repo}
}

// Execute merges in into the stored todo and persists the result. Returns an
// error wrapping ErrNotFound when id is not stored.
func (uc *UpdateTodo) Execute(ctx context.Context, id string, in UpdateInput) (Todo, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	existing, found, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return Todo{}, fmt.Errorf("failed to get todo %s: %w", id, err)
	}
	if !found {
		return Todo{}, NotFoundError(id)
	}

	updated, err := uc.repo.Update(ctx, in.Apply(existing))
	if err != nil {
		return Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

// DeleteTodo removes a todo.
type DeleteTodo struct {
	repo Repository
}

func NewDeleteTodo(repo Repository) *DeleteTodo {
	failfast.NotNil(repo, "repository")
	return &DeleteTodo{repo: repo}
}

// Execute deletes id. Returns an error wrapping ErrNotFound when absent.
func (uc *DeleteTodo) Execute(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// UseCases bundles the five operations for front ends.
type UseCases struct {
	Create *CreateTodo
	List   *GetAllTodos
	Get    *GetTodoByID
	Update *UpdateTodo
	Delete *DeleteTodo
}

// NewUseCases wires every use case to the same repository.
func NewUseCases(repo Repository) *UseCases {
	failfast.NotNil(repo, "repository")
	return &UseCases{
		Create: NewCreateTodo(repo),
		List:   NewGetAllTodos(repo),
		Get:    NewGetTodoByID(repo),
		Update: NewUpdateTodo(repo),
		Delete: NewDeleteTodo(repo),
	}
}
