package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/observability/prometheus"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/valyala/fasthttp"
)

func newTestService(t *testing.T, storage config.StorageConfig) (*service, fasthttp.RequestHandler) {
	t.Helper()
	cfg := config.Default()
	cfg.Storage = storage

	svc, err := newService(context.Background(), cfg, core.DiscardLogger(), prometheus.NewMetrics(nil))
	if err != nil {
		t.Fatalf("newService() error = %v", err)
	}
	t.Cleanup(func() {
		if err := svc.Close(context.Background()); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return svc, svc.Handler()
}

func do(h fasthttp.RequestHandler, method, path, body string, headers ...string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(path)
	for i := 0; i+1 < len(headers); i += 2 {
		ctx.Request.Header.Set(headers[i], headers[i+1])
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
		ctx.Request.Header.SetContentType("application/json")
	}
	h(ctx)
	return ctx
}

func TestService_Backends(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		storage config.StorageConfig
	}{
		{"memory", config.StorageConfig{Backend: config.BackendMemory}},
		{"file", config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "todos.json")}},
		{"sqlite", config.StorageConfig{Backend: config.BackendSQL, Driver: "sqlite3", DSN: filepath.Join(dir, "todos.db")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, h := newTestService(t, tt.storage)

			ctx := do(h, "POST", "/todos/", `{"title":"Buy milk"}`)
			if ctx.Response.StatusCode() != 201 {
				t.Fatalf("create status = %d: %s", ctx.Response.StatusCode(), ctx.Response.Body())
			}
			var created todo.Todo
			if err := json.Unmarshal(ctx.Response.Body(), &created); err != nil {
				t.Fatalf("decode: %v", err)
			}

			ctx = do(h, "PUT", "/todos/"+created.ID, `{"completed":true}`)
			if ctx.Response.StatusCode() != 200 {
				t.Fatalf("update status = %d", ctx.Response.StatusCode())
			}

			ctx = do(h, "GET", "/todos/", "")
			var all []todo.Todo
			if err := json.Unmarshal(ctx.Response.Body(), &all); err != nil {
				t.Fatalf("decode list: %v", err)
			}
			if len(all) != 1 || !all[0].Completed {
				t.Errorf("list = %+v, want one completed todo", all)
			}

			if ctx := do(h, "GET", "/health", ""); ctx.Response.StatusCode() != 200 {
				t.Errorf("health status = %d", ctx.Response.StatusCode())
			}
		})
	}
}

func TestService_RequestID(t *testing.T) {
	_, h := newTestService(t, config.StorageConfig{Backend: config.BackendMemory})

	ctx := do(h, "GET", "/todos/", "", core.RequestIDHeader, "abc-123")
	if got := string(ctx.Response.Header.Peek(core.RequestIDHeader)); got != "abc-123" {
		t.Errorf("echoed request id = %q, want abc-123", got)
	}

	ctx = do(h, "GET", "/todos/", "")
	if got := string(ctx.Response.Header.Peek(core.RequestIDHeader)); got == "" {
		t.Error("no request id generated")
	}
}

func TestService_Metrics(t *testing.T) {
	_, h := newTestService(t, config.StorageConfig{Backend: config.BackendMemory})

	do(h, "POST", "/todos/", `{"title":"x"}`)
	do(h, "GET", "/todos/missing", "")

	ctx := do(h, "GET", "/metrics", "")
	if ctx.Response.StatusCode() != 200 {
		t.Fatalf("metrics status = %d", ctx.Response.StatusCode())
	}
	body := string(ctx.Response.Body())
	for _, want := range []string{
		`todos_http_requests_total{method="POST",route="/todos/",status="2xx"} 1`,
		`todos_http_requests_total{method="GET",route="/todos/:id",status="4xx"} 1`,
		`todos_repository_operations_total{backend="memory",operation="create",outcome="ok"} 1`,
		`todos_repository_operations_total{backend="memory",operation="get_by_id",outcome="absent"} 1`,
		`todos_events_published_total{outcome="ok",type="todo.created"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %q", want)
		}
	}
}

func TestNewService_InvalidTracingExporter(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = config.StorageConfig{Backend: config.BackendMemory}
	cfg.Tracing.Exporter = "carrier-pigeon"

	if _, err := newService(context.Background(), cfg, core.DiscardLogger(), prometheus.NewMetrics(nil)); err == nil {
		t.Fatal("newService() error = nil, want exporter error")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("TODO_STORAGE_BACKEND", "redis")
	if err := run(context.Background(), []string{"--addr", "127.0.0.1:0"}); err == nil {
		t.Fatal("run() error = nil, want validation error")
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	t.Setenv("TODO_CONFIG", "")
	t.Setenv("TODO_STORAGE_BACKEND", "memory")
	t.Setenv("TODO_LOG_LEVEL", "error")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, []string{"--addr", "127.0.0.1:0"}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
}
