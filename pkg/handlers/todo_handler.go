// Package handlers exposes the todo use cases over HTTP.
package handlers

import (
	"errors"

	"github.com/fluxorio/todos/pkg/core/failfast"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// CreateTodoRequest is the POST /todos/ body. Title must be present and not
// null; an empty string is accepted.
type CreateTodoRequest struct {
	Title       todo.Optional[string] `json:"title"`
	Description *string               `json:"description"`
}

// TodoHandler handles todo requests
type TodoHandler struct {
	todos *todo.UseCases
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(todos *todo.UseCases) *TodoHandler {
	failfast.NotNil(todos, "todos")
	return &TodoHandler{todos: todos}
}

// Register mounts the todo routes on r. Trailing slashes are optional.
func (h *TodoHandler) Register(r *web.Router) {
	r.POST("/todos/", h.CreateTodo)
	r.GET("/todos/", h.ListTodos)
	r.GET("/todos/:id", h.GetTodo)
	r.PUT("/todos/:id", h.UpdateTodo)
	r.DELETE("/todos/:id", h.DeleteTodo)
}

func notFound(c *web.Context) error {
	return c.Error(fasthttp.StatusNotFound, "not_found", todo.NotFoundError(c.Param("id")).Error())
}

func invalidJSON(c *web.Context) error {
	return c.Error(fasthttp.StatusBadRequest, "invalid_request", "Invalid JSON")
}

// CreateTodo handles POST /todos/
func (h *TodoHandler) CreateTodo(c *web.Context) error {
	var req CreateTodoRequest
	if err := c.BindJSON(&req); err != nil {
		return invalidJSON(c)
	}
	title, ok := req.Title.Get()
	if !ok {
		return c.Error(fasthttp.StatusBadRequest, "validation_error", "Title is required")
	}

	created, err := h.todos.Create.Execute(c.Context(), title, req.Description)
	if err != nil {
		return err
	}
	c.SetHeader(fasthttp.HeaderLocation, "/todos/"+created.ID)
	return c.JSON(fasthttp.StatusCreated, created)
}

// ListTodos handles GET /todos/
func (h *TodoHandler) ListTodos(c *web.Context) error {
	all, err := h.todos.List.Execute(c.Context())
	if err != nil {
		return err
	}
	if all == nil {
		all = []todo.Todo{}
	}
	return c.Ok(all)
}

// GetTodo handles GET /todos/:id
func (h *TodoHandler) GetTodo(c *web.Context) error {
	found, ok, err := h.todos.Get.Execute(c.Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if !ok {
		return c.Error(fasthttp.StatusNotFound, "not_found", "Todo not found")
	}
	return c.Ok(found)
}

// UpdateTodo handles PUT /todos/:id. Omitted fields are left unchanged, as are
// a null title or completed. "description": null clears the description.
func (h *TodoHandler) UpdateTodo(c *web.Context) error {
	var in todo.UpdateInput
	if err := c.BindJSON(&in); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.todos.Update.Execute(c.Context(), c.Param("id"), in)
	if errors.Is(err, todo.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.Ok(updated)
}

// DeleteTodo handles DELETE /todos/:id
func (h *TodoHandler) DeleteTodo(c *web.Context) error {
	err := h.todos.Delete.Execute(c.Context(), c.Param("id"))
	if errors.Is(err, todo.ErrNotFound) {
		return notFound(c)
	}
	if err != nil {
		return err
	}
	return c.NoContent(fasthttp.StatusNoContent)
}
