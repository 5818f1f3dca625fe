package prometheus

import (
	"time"

	"github.com/fluxorio/todos/pkg/web"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

// Middleware records request metrics labelled by route pattern.
func (m *Metrics) Middleware() web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c *web.Context) error {
			start := time.Now()
			requestSize := int64(len(c.RC.PostBody()))

			err := next(c)

			route := c.Route
			if route == "" {
				route = "unmatched"
			}
			status := statusCodeString(c.RC.Response.StatusCode())
			responseSize := int64(len(c.RC.Response.Body()))

			m.RecordHTTPRequest(c.Method(), route, status, time.Since(start), requestSize, responseSize)
			return err
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	return fasthttpadaptor.NewFastHTTPHandler(
		promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}),
	)
}
