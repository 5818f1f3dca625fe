package web

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/fluxorio/todos/pkg/core"
	"github.com/valyala/fasthttp"
)

// RequestID reuses the caller's X-Request-ID or generates one, stores it on
// the request context and echoes it in the response.
func RequestID() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			id := core.RequestIDOrNew(c.Header(core.RequestIDHeader))
			c.SetContext(core.WithRequestID(c.Context(), id))
			c.SetHeader(core.RequestIDHeader, id)
			return next(c)
		}
	}
}

// RecoveryConfig configures panic recovery middleware
type RecoveryConfig struct {
	// StackTrace logs the goroutine stack with the panic
	StackTrace bool

	// ExposePanic puts the panic value in the response message. Keep off in
	// production.
	ExposePanic bool
}

// Recovery turns a panicking handler into a 500 JSON response.
func Recovery(config RecoveryConfig) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}

				attrs := []any{"panic", r}
				if config.StackTrace {
					attrs = append(attrs, "stack", string(debug.Stack()))
				}
				c.Log().Error("panic recovered", attrs...)

				msg := "Internal Server Error"
				if config.ExposePanic {
					msg = fmt.Sprintf("panic: %v", r)
				}
				c.RC.Response.ResetBody()
				err = c.JSON(fasthttp.StatusInternalServerError, JSON{
					"error":      "internal_server_error",
					"message":    msg,
					"request_id": c.RequestID(),
				})
			}()

			return next(c)
		}
	}
}

// AccessLog writes one log line per request after the handler returns.
func AccessLog() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			start := time.Now()
			err := next(c)

			status := c.RC.Response.StatusCode()
			attrs := []any{
				"status", status,
				"duration", time.Since(start),
				"bytes", len(c.RC.Response.Body()),
			}
			if c.Route != "" {
				attrs = append(attrs, "route", c.Route)
			}
			if err != nil {
				attrs = append(attrs, "err", err)
			}

			switch {
			case err != nil || status >= 500:
				c.Log().Error("request", attrs...)
			case status >= 400:
				c.Log().Warn("request", attrs...)
			default:
				c.Log().Info("request", attrs...)
			}
			return err
		}
	}
}

// Timeout bounds the request context passed to handlers. Handlers observe the
// deadline through c.Context(); nothing is interrupted forcibly.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		if d <= 0 {
			return next
		}
		return func(c *Context) error {
			ctx, cancel := context.WithTimeout(c.Context(), d)
			defer cancel()
			c.SetContext(ctx)
			return next(c)
		}
	}
}

// SecureHeaders sets response headers suited to a JSON API.
func SecureHeaders() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			h := &c.RC.Response.Header
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cross-Origin-Resource-Policy", "same-origin")
			return next(c)
		}
	}
}
