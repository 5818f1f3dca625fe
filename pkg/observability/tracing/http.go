package tracing

import (
	"github.com/fluxorio/todos/pkg/web"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// headerCarrier adapts fasthttp request headers for propagation.
type headerCarrier struct {
	c *web.Context
}

func (h headerCarrier) Get(key string) string { return h.c.Header(key) }
func (h headerCarrier) Set(key, value string) { h.c.RC.Request.Header.Set(key, value) }
func (h headerCarrier) Keys() []string {
	var keys []string
	h.c.RC.Request.Header.VisitAll(func(k, _ []byte) {
		keys = append(keys, string(k))
	})
	return keys
}

var _ propagation.TextMapCarrier = headerCarrier{}

// Middleware starts a server span per request and continues any incoming
// trace context.
func Middleware(tracer trace.Tracer) web.Middleware {
	return func(next web.HandlerFunc) web.HandlerFunc {
		return func(c *web.Context) error {
			ctx := otel.GetTextMapPropagator().Extract(c.Context(), headerCarrier{c})

			name := c.Route
			if name == "" {
				name = "unmatched"
			}
			ctx, span := tracer.Start(ctx, c.Method()+" "+name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", c.Method()),
					attribute.String("url.path", c.Path()),
					attribute.String("http.route", name),
				),
			)
			defer span.End()

			c.SetContext(ctx)
			err := next(c)

			status := c.RC.Response.StatusCode()
			span.SetAttributes(attribute.Int("http.response.status_code", status))
			if err != nil {
				span.RecordError(err)
			}
			if err != nil || status >= 500 {
				span.SetStatus(codes.Error, "server error")
			}
			return err
		}
	}
}
