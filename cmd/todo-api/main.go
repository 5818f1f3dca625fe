// Command todo-api serves the todo use cases over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/core"
	"github.com/fluxorio/todos/pkg/observability/prometheus"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("todo-api", pflag.ContinueOnError)
	configPath := fs.String("config", os.Getenv("TODO_CONFIG"), "config file (YAML or JSON)")
	addr := fs.String("addr", "", "listen address, overrides http.addr")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.HTTP.Addr = *addr
	}
	logger := core.NewLogger(cfg.Log)

	svc, err := newService(ctx, cfg, logger, prometheus.Default())
	if err != nil {
		return err
	}

	server := web.NewServer(web.ServerConfig{
		Addr:               cfg.HTTP.Addr,
		Name:               "todo-api",
		ReadTimeout:        cfg.HTTP.ReadTimeout.Std(),
		WriteTimeout:       cfg.HTTP.WriteTimeout.Std(),
		IdleTimeout:        cfg.HTTP.IdleTimeout.Std(),
		MaxRequestBodySize: cfg.HTTP.MaxBodySize,
	}, svc.Handler(), logger)

	if err := server.Start(); err != nil {
		_ = svc.Close(context.Background())
		return err
	}
	logger.Info("todo api started", "addr", server.Addr(), "storage", cfg.Storage.Backend)

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-server.Errors():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout.Std())
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "err", err)
	}
	if err := svc.Close(shutdownCtx); err != nil {
		logger.Error("service shutdown failed", "err", err)
	}
	logger.Info("todo api stopped")
	return serveErr
}
