package core_test

import (
	"context"
	"os"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/core"
)

func ExampleNewLoggerTo() {
	logger := core.NewLoggerTo(os.Stderr, config.LogConfig{Level: "debug", Format: "json"})

	logger.Info("todo created", "id", "3f2a", "title", "Buy milk")
}

func ExampleLoggerFrom() {
	ctx := core.WithRequestID(context.Background(), "req-42")
	ctx = core.WithLogger(ctx, core.NewLoggerTo(os.Stderr, config.LogConfig{Format: "text"}))

	// Every line carries request_id=req-42.
	core.LoggerFrom(ctx).Warn("todo not found", "id", "missing")
}
