package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

// JSON is a shorthand for ad-hoc response bodies.
type JSON map[string]any

// Param is one captured path parameter.
type Param struct {
	Key   string
	Value string
}

// Context wraps a fasthttp request for handlers.
type Context struct {
	RC     *fasthttp.RequestCtx
	Params []Param

	// Route is the matched pattern, e.g. "/todos/:id". Empty when unmatched.
	Route string

	ctx    context.Context
	logger *slog.Logger
}

// NewContext wraps rc. logger may be nil.
func NewContext(rc *fasthttp.RequestCtx, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{RC: rc, ctx: context.Background(), logger: logger}
}

// Context returns the request-scoped context passed to use cases.
func (c *Context) Context() context.Context {
	return c.ctx
}

// SetContext replaces the request-scoped context.
func (c *Context) SetContext(ctx context.Context) {
	c.ctx = ctx
}

// RequestID returns the request id set by the RequestID middleware.
func (c *Context) RequestID() string {
	return core.GetRequestID(c.ctx)
}

func (c *Context) Method() string { return string(c.RC.Method()) }
func (c *Context) Path() string   { return string(c.RC.Path()) }

func (c *Context) JSON(code int, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode response: %w", err)
	}
	c.RC.SetStatusCode(code)
	c.RC.SetContentType("application/json")
	_, err = c.RC.Write(b)
	return err
}

func (c *Context) Ok(data any) error {
	return c.JSON(fasthttp.StatusOK, data)
}

// NoContent writes a bodyless status.
func (c *Context) NoContent(code int) error {
	c.RC.SetStatusCode(code)
	c.RC.ResetBody()
	return nil
}

// Error writes {"error": code, "message": msg}.
func (c *Context) Error(status int, code, msg string) error {
	return c.JSON(status, JSON{"error": code, "message": msg})
}

func (c *Context) Text(code int, text string) error {
	c.RC.SetStatusCode(code)
	c.RC.SetContentType("text/plain; charset=utf-8")
	_, err := c.RC.WriteString(text)
	return err
}

// ErrEmptyBody is returned by BindJSON when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// BindJSON decodes the request body into v.
func (c *Context) BindJSON(v any) error {
	body := c.RC.PostBody()
	if len(body) == 0 {
		return ErrEmptyBody
	}
	return json.Unmarshal(body, v)
}

func (c *Context) Query(key string) string {
	return string(c.RC.QueryArgs().Peek(key))
}

func (c *Context) Header(key string) string {
	return string(c.RC.Request.Header.Peek(key))
}

func (c *Context) SetHeader(key, value string) {
	c.RC.Response.Header.Set(key, value)
}

func (c *Context) Param(key string) string {
	for _, p := range c.Params {
		if p.Key == key {
			return p.Value
		}
	}
	return ""
}

// Log returns a logger annotated with the request method, path and id.
func (c *Context) Log() *slog.Logger {
	l := c.logger.With("method", c.Method(), "path", c.Path())
	if id := c.RequestID(); id != "" {
		l = l.With("request_id", id)
	}
	return l
}
