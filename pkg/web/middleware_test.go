package web

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fluxorio/todos/pkg/core"
)

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var seen string
	r := NewRouter()
	r.Use(RequestID())
	r.GET("/x", func(c *Context) error {
		seen = c.RequestID()
		return c.NoContent(204)
	})

	ctx := newRequest("GET", "/x", "")
	r.Handler()(ctx)

	header := string(ctx.Response.Header.Peek(core.RequestIDHeader))
	if seen == "" || header != seen {
		t.Errorf("request id = %q, header = %q, want equal and non-empty", seen, header)
	}
}

func TestRequestID_KeepsIncoming(t *testing.T) {
	r := NewRouter()
	r.Use(RequestID())
	r.GET("/x", func(c *Context) error { return c.NoContent(204) })

	ctx := newRequest("GET", "/x", "")
	ctx.Request.Header.Set(core.RequestIDHeader, "caller-id")
	r.Handler()(ctx)

	if got := string(ctx.Response.Header.Peek(core.RequestIDHeader)); got != "caller-id" {
		t.Errorf("X-Request-ID = %q, want caller-id", got)
	}
}

func TestRecovery(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := NewRouter()
	r.Use(RequestID(), Recovery(RecoveryConfig{}))
	r.GET("/panic", func(c *Context) error {
		_, _ = c.RC.WriteString("partial")
		panic("kaboom")
	})

	ctx := newRequest("GET", "/panic", "")
	ctx.Request.Header.Set(core.RequestIDHeader, "rid-1")
	r.HandlerWithLogger(logger)(ctx)

	if ctx.Response.StatusCode() != 500 {
		t.Fatalf("status = %d, want 500", ctx.Response.StatusCode())
	}
	var body map[string]string
	if err := json.Unmarshal(ctx.Response.Body(), &body); err != nil {
		t.Fatalf("body %q is not JSON: %v", ctx.Response.Body(), err)
	}
	if body["error"] != "internal_server_error" || body["request_id"] != "rid-1" {
		t.Errorf("body = %v", body)
	}
	if strings.Contains(body["message"], "kaboom") {
		t.Error("panic value leaked into response")
	}
	if !strings.Contains(logs.String(), "kaboom") {
		t.Errorf("panic not logged: %q", logs.String())
	}
}

func TestAccessLog(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r := NewRouter()
	r.Use(RequestID(), AccessLog())
	r.GET("/todos/:id", func(c *Context) error {
		return c.Error(404, "not_found", "Todo not found")
	})

	r.HandlerWithLogger(logger)(newRequest("GET", "/todos/7", ""))

	out := logs.String()
	for _, want := range []string{"level=WARN", "status=404", "route=/todos/:id", "path=/todos/7", "request_id="} {
		if !strings.Contains(out, want) {
			t.Errorf("access log %q missing %q", out, want)
		}
	}
}

func TestTimeout(t *testing.T) {
	tests := []struct {
		name         string
		d            time.Duration
		wantDeadline bool
	}{
		{"positive", time.Second, true},
		{"disabled", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hasDeadline bool
			r := NewRouter()
			r.Use(Timeout(tt.d))
			r.GET("/x", func(c *Context) error {
				_, hasDeadline = c.Context().Deadline()
				return c.NoContent(204)
			})
			r.Handler()(newRequest("GET", "/x", ""))

			if hasDeadline != tt.wantDeadline {
				t.Errorf("deadline set = %v, want %v", hasDeadline, tt.wantDeadline)
			}
		})
	}
}

func TestSecureHeaders(t *testing.T) {
	r := NewRouter()
	r.Use(SecureHeaders())
	r.GET("/x", func(c *Context) error { return c.Ok(JSON{"ok": true}) })

	ctx := newRequest("GET", "/x", "")
	r.Handler()(ctx)

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	} {
		if got := string(ctx.Response.Header.Peek(header)); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}
