// Package repository selects and opens the configured todo storage backend.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/db"
	"github.com/fluxorio/todos/pkg/repository/jsonfile"
	"github.com/fluxorio/todos/pkg/repository/memory"
	"github.com/fluxorio/todos/pkg/repository/sqlstore"
	"github.com/fluxorio/todos/pkg/todo"
)

// Backend is an opened repository together with what is needed to release it.
type Backend struct {
	todo.Repository

	// Name is the configured backend: memory, file or sql.
	Name string

	// DB is the sql handle, nil for other backends.
	DB *sql.DB

	close func() error
}

// Close releases backend resources. Safe to call on every backend.
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open builds the repository named by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case config.BackendMemory:
		return &Backend{Repository: memory.New(), Name: cfg.Backend}, nil

	case config.BackendFile, "":
		path := cfg.Path
		if path == "" {
			path = jsonfile.DefaultPath
		}
		repo, err := jsonfile.Open(path, jsonfile.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		logger.Debug("opened file repository", "path", repo.Path())
		return &Backend{Repository: repo, Name: config.BackendFile}, nil

	case config.BackendSQL:
		poolCfg := db.DefaultPoolConfig(cfg.DSN, cfg.Driver)
		if cfg.MaxOpenConns > 0 {
			poolCfg.MaxOpenConns = cfg.MaxOpenConns
		}
		if cfg.MaxIdleConns > 0 {
			poolCfg.MaxIdleConns = cfg.MaxIdleConns
		}
		repo, err := sqlstore.Open(ctx, poolCfg)
		if err != nil {
			return nil, fmt.Errorf("open %s repository: %w", cfg.Driver, err)
		}
		logger.Debug("opened sql repository", "driver", cfg.Driver)
		return &Backend{Repository: repo, Name: cfg.Backend, DB: repo.DB(), close: repo.Close}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
