package web

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/valyala/fasthttp"
)

func newRequest(method, path string, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	if body != "" {
		ctx.Request.SetBodyString(body)
		ctx.Request.Header.SetContentType("application/json")
	}
	return ctx
}

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	r.GET("/todos/", func(c *Context) error { return c.Text(200, "list") })
	r.POST("/todos/", func(c *Context) error { return c.Text(201, "create") })
	r.GET("/todos/:id", func(c *Context) error { return c.Text(200, "get "+c.Param("id")) })
	r.PUT("/todos/:id", func(c *Context) error { return c.Text(200, "put "+c.Param("id")) })
	r.DELETE("/todos/:id", func(c *Context) error { return c.NoContent(204) })
	h := r.Handler()

	tests := []struct {
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"GET", "/todos/", 200, "list"},
		{"GET", "/todos", 200, "list"},
		{"POST", "/todos", 201, "create"},
		{"POST", "/todos/", 201, "create"},
		{"GET", "/todos/abc", 200, "get abc"},
		{"GET", "/todos/abc/", 200, "get abc"},
		{"PUT", "/todos/abc", 200, "put abc"},
		{"DELETE", "/todos/abc", 204, ""},
		{"GET", "/todos/abc/extra", 404, ""},
		{"GET", "/nothing", 404, ""},
		{"PATCH", "/todos/abc", 405, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			ctx := newRequest(tt.method, tt.path, "")
			h(ctx)

			if got := ctx.Response.StatusCode(); got != tt.wantStatus {
				t.Errorf("status = %d, want %d", got, tt.wantStatus)
			}
			if tt.wantBody != "" && string(ctx.Response.Body()) != tt.wantBody {
				t.Errorf("body = %q, want %q", ctx.Response.Body(), tt.wantBody)
			}
		})
	}
}

func TestRouter_MethodNotAllowedListsMethods(t *testing.T) {
	r := NewRouter()
	r.GET("/todos/:id", func(c *Context) error { return nil })
	r.DELETE("/todos/:id", func(c *Context) error { return nil })

	ctx := newRequest("POST", "/todos/1", "")
	r.Handler()(ctx)

	if got := string(ctx.Response.Header.Peek("Allow")); got != "DELETE, GET" {
		t.Errorf("Allow = %q, want %q", got, "DELETE, GET")
	}
}

func TestRouter_HandlerErrorIs500(t *testing.T) {
	r := NewRouter()
	r.GET("/boom", func(c *Context) error { return errors.New("boom") })

	ctx := newRequest("GET", "/boom", "")
	r.Handler()(ctx)

	if ctx.Response.StatusCode() != 500 {
		t.Errorf("status = %d, want 500", ctx.Response.StatusCode())
	}
	var body map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "internal_server_error" {
		t.Errorf("error = %q, want internal_server_error", body["error"])
	}
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next HandlerFunc) HandlerFunc {
			return func(c *Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	r := NewRouter()
	r.Use(mark("global1"), mark("global2"))
	r.GET("/x", func(c *Context) error {
		order = append(order, "handler")
		return nil
	}, mark("route"))

	r.Handler()(newRequest("GET", "/x", ""))

	want := []string{"global1", "global2", "route", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, order[i], want[i])
		}
	}
}

func TestRouter_RoutePattern(t *testing.T) {
	var route string
	r := NewRouter()
	r.GET("/todos/:id", func(c *Context) error {
		route = c.Route
		return nil
	})

	r.Handler()(newRequest("GET", "/todos/42", ""))

	if route != "/todos/:id" {
		t.Errorf("Route = %q, want /todos/:id", route)
	}
}

func TestContext_BindJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"title":"x"}`, false},
		{"empty", ``, true},
		{"invalid", `{"title":`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContext(newRequest("POST", "/", tt.body), nil)
			var v struct {
				Title string `json:"title"`
			}
			err := c.BindJSON(&v)
			if (err != nil) != tt.wantErr {
				t.Errorf("BindJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRouter_MiddlewareSeesRenderedError(t *testing.T) {
	r := NewRouter()
	var seenStatus int
	var seenErr error
	r.Use(func(next HandlerFunc) HandlerFunc {
		return func(c *Context) error {
			err := next(c)
			seenStatus = c.RC.Response.StatusCode()
			seenErr = err
			return err
		}
	})
	boom := errors.New("boom")
	r.GET("/fail", func(c *Context) error { return boom })

	ctx := newRequest("GET", "/fail", "")
	r.Handler()(ctx)

	if seenStatus != 500 {
		t.Errorf("middleware saw status %d, want 500", seenStatus)
	}
	if !errors.Is(seenErr, boom) {
		t.Errorf("middleware saw err %v, want %v", seenErr, boom)
	}
	if got := ctx.Response.StatusCode(); got != 500 {
		t.Errorf("status = %d, want 500", got)
	}
}
