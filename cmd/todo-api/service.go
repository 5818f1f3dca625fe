package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/events"
	"github.com/fluxorio/todos/pkg/handlers"
	"github.com/fluxorio/todos/pkg/observability/prometheus"
	"github.com/fluxorio/todos/pkg/observability/tracing"
	"github.com/fluxorio/todos/pkg/repository"
	"github.com/fluxorio/todos/pkg/todo"
	"github.com/fluxorio/todos/pkg/web"
	"github.com/valyala/fasthttp"
)

// service owns everything the API needs for one run.
type service struct {
	backend   *repository.Backend
	tracing   *tracing.Provider
	publisher events.Publisher
	metrics   *prometheus.Metrics
	router    *web.Router
	logger    *slog.Logger
}

func newService(ctx context.Context, cfg config.Config, logger *slog.Logger, metrics *prometheus.Metrics) (_ *service, err error) {
	s := &service{logger: logger, metrics: metrics, publisher: events.Noop{}}
	defer func() {
		if err != nil {
			_ = s.Close(context.Background())
		}
	}()

	s.backend, err = repository.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}
	if s.backend.DB != nil {
		if err := metrics.RegisterDBStats(s.backend.DB, "todos"); err != nil {
			logger.Warn("db stats collector not registered", "err", err)
		}
	}

	s.tracing, err = tracing.NewProvider(cfg.Tracing, nil)
	if err != nil {
		return nil, err
	}

	if cfg.Events.Enabled() {
		pub, err := events.NewNATSPublisher(events.NATSConfig{
			URL:           cfg.Events.NATSURL,
			SubjectPrefix: cfg.Events.SubjectPrefix,
			Name:          "todo-api",
		})
		if err != nil {
			return nil, fmt.Errorf("start event publisher: %w", err)
		}
		s.publisher = pub
		logger.Info("publishing change events", "nats_url", cfg.Events.NATSURL, "subject_prefix", cfg.Events.SubjectPrefix)
	}

	tracer := s.tracing.Tracer()
	var repo todo.Repository = s.backend
	repo = prometheus.InstrumentRepository(repo, s.backend.Name, metrics)
	repo = tracing.NewRepository(repo, tracer, s.backend.Name)
	repo = events.NewRepository(repo, s.publisher, events.WithLogger(logger), events.WithObserver(metrics))

	s.router = web.NewRouter()
	s.router.Use(
		web.RequestID(),
		web.Recovery(web.RecoveryConfig{StackTrace: true}),
		web.AccessLog(),
		web.SecureHeaders(),
		metrics.Middleware(),
		tracing.Middleware(tracer),
		web.Backpressure(web.NewLimiter(cfg.HTTP.MaxInFlight), 1),
		web.Timeout(cfg.HTTP.RequestTimeout.Std()),
	)
	handlers.NewTodoHandler(todo.NewUseCases(repo)).Register(s.router)

	var pinger handlers.Pinger
	if p, ok := s.backend.Repository.(handlers.Pinger); ok {
		pinger = p
	}
	s.router.GET("/health", handlers.Health(pinger))

	metricsHandler := metrics.Handler()
	s.router.GET("/metrics", func(c *web.Context) error {
		metricsHandler(c.RC)
		return nil
	})

	return s, nil
}

func (s *service) Handler() fasthttp.RequestHandler {
	return s.router.HandlerWithLogger(s.logger)
}

// Close flushes events and spans, then releases storage.
func (s *service) Close(ctx context.Context) error {
	var errs []error
	if s.publisher != nil {
		errs = append(errs, s.publisher.Close())
	}
	if s.tracing != nil {
		errs = append(errs, s.tracing.Shutdown(ctx))
	}
	if s.backend != nil {
		errs = append(errs, s.backend.Close())
	}
	return errors.Join(errs...)
}
