package handlers

import (
	"context"
	"time"

	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// Pinger is implemented by backends that can check their own connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports {"status":"UP"}. When p is non-nil and its ping fails the
// response is 503 with status DOWN.
func Health(p Pinger) web.HandlerFunc {
	return func(c *web.Context) error {
		if p != nil {
			ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				c.Log().Warn("health check failed", "err", err)
				return c.JSON(fasthttp.StatusServiceUnavailable, web.JSON{"status": "DOWN"})
			}
		}
		return c.Ok(web.JSON{"status": "UP"})
	}
}
