package web

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/valyala/fasthttp"
)

type HandlerFunc func(c *Context) error
type Middleware func(next HandlerFunc) HandlerFunc

type route struct {
	pattern    string
	segments   []segment
	handler    HandlerFunc
	middleware []Middleware
}

type segment struct {
	static string
	param  string // if non-empty, this segment captures into param
}

// Router dispatches by method and path pattern. Patterns use ":name" for
// parameters; empty segments are ignored so "/todos" and "/todos/" match the
// same route.
type Router struct {
	routes     map[string][]*route
	middleware []Middleware
	notFound   HandlerFunc
	onError    func(c *Context, err error)
}

func NewRouter() *Router {
	r := &Router{
		routes: make(map[string][]*route),
	}
	r.notFound = func(c *Context) error {
		return c.Error(fasthttp.StatusNotFound, "not_found", "Not Found")
	}
	r.onError = func(c *Context, err error) {
		c.Log().Error("handler error", "err", err)
		_ = c.Error(fasthttp.StatusInternalServerError, "internal_server_error", "Internal Server Error")
	}
	return r
}

// Use appends router-wide middleware. Router-wide middleware also wraps the
// not-found and method-not-allowed responses.
func (r *Router) Use(mw ...Middleware) { r.middleware = append(r.middleware, mw...) }

func (r *Router) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(fasthttp.MethodGet, path, h, mw...)
}
func (r *Router) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(fasthttp.MethodPost, path, h, mw...)
}
func (r *Router) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(fasthttp.MethodPut, path, h, mw...)
}
func (r *Router) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.Handle(fasthttp.MethodDelete, path, h, mw...)
}

// Handle registers h for method and pattern.
func (r *Router) Handle(method, pattern string, h HandlerFunc, mw ...Middleware) {
	r.routes[method] = append(r.routes[method], &route{
		pattern:    pattern,
		segments:   compilePattern(pattern),
		handler:    h,
		middleware: append([]Middleware(nil), mw...),
	})
}

// Handler returns the fasthttp entry point using slog.Default.
func (r *Router) Handler() fasthttp.RequestHandler {
	return r.HandlerWithLogger(nil)
}

// HandlerWithLogger returns the fasthttp entry point; logger is attached to
// every request Context.
func (r *Router) HandlerWithLogger(logger *slog.Logger) fasthttp.RequestHandler {
	return func(rc *fasthttp.RequestCtx) {
		c := NewContext(rc, logger)
		parts := splitPath(string(rc.Path()))

		h := r.notFound
		var rt *route
		for _, candidate := range r.routes[string(rc.Method())] {
			if params, ok := match(candidate.segments, parts); ok {
				rt = candidate
				c.Params = params
				c.Route = candidate.pattern
				break
			}
		}

		if rt != nil {
			h = rt.handler
			for i := len(rt.middleware) - 1; i >= 0; i-- {
				h = rt.middleware[i](h)
			}
		} else if allowed := r.allowedMethods(parts); len(allowed) > 0 {
			h = methodNotAllowed(allowed)
		}

		// Router-wide middleware observes the rendered error response.
		inner := h
		h = func(c *Context) error {
			err := inner(c)
			if err != nil {
				r.onError(c, err)
			}
			return err
		}
		for i := len(r.middleware) - 1; i >= 0; i-- {
			h = r.middleware[i](h)
		}

		_ = h(c)
	}
}

func (r *Router) allowedMethods(parts []string) []string {
	var allowed []string
	for method, routes := range r.routes {
		for _, rt := range routes {
			if _, ok := match(rt.segments, parts); ok {
				allowed = append(allowed, method)
				break
			}
		}
	}
	sort.Strings(allowed)
	return allowed
}

func methodNotAllowed(allowed []string) HandlerFunc {
	return func(c *Context) error {
		c.SetHeader(fasthttp.HeaderAllow, strings.Join(allowed, ", "))
		return c.Error(fasthttp.StatusMethodNotAllowed, "method_not_allowed", "Method Not Allowed")
	}
}

func compilePattern(pattern string) []segment {
	parts := splitPath(pattern)
	out := make([]segment, 0, len(parts))
	for _, part := range parts {
		if len(part) > 1 && part[0] == ':' {
			out = append(out, segment{param: part[1:]})
		} else {
			out = append(out, segment{static: part})
		}
	}
	return out
}

func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func match(segments []segment, parts []string) ([]Param, bool) {
	if len(segments) != len(parts) {
		return nil, false
	}
	var params []Param
	for i, seg := range segments {
		if seg.param != "" {
			params = append(params, Param{Key: seg.param, Value: parts[i]})
			continue
		}
		if seg.static != parts[i] {
			return nil, false
		}
	}
	return params, true
}
