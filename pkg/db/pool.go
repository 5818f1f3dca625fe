// Package db wraps database/sql with a validated, pinged connection pool.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Error codes reported by Error.
const (
	CodeInvalidConfig = "INVALID_CONFIG"
	CodeInvalidState  = "INVALID_STATE"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnavailable   = "UNAVAILABLE"
)

// PoolConfig configures the database connection pool
type PoolConfig struct {
	// DSN is the database connection string
	DSN string

	// DriverName is the registered database/sql driver (sqlite3, postgres, pgx)
	DriverName string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum amount of time a connection may be reused
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum amount of time a connection may be idle
	ConnMaxIdleTime time.Duration

	// PingTimeout bounds the connectivity check in NewPool
	PingTimeout time.Duration
}

// DefaultPoolConfig returns the default pool sizing for dsn
func DefaultPoolConfig(dsn string, driverName string) PoolConfig {
	return PoolConfig{
		DSN:             dsn,
		DriverName:      driverName,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
		PingTimeout:     5 * time.Second,
	}
}

// Validate reports the first configuration problem, if any
func (c PoolConfig) Validate() error {
	switch {
	case c.DSN == "":
		return &Error{Code: CodeInvalidConfig, Message: "DSN cannot be empty"}
	case c.DriverName == "":
		return &Error{Code: CodeInvalidConfig, Message: "DriverName cannot be empty"}
	case c.MaxOpenConns <= 0:
		return &Error{Code: CodeInvalidConfig, Message: "MaxOpenConns must be positive"}
	case c.MaxIdleConns < 0:
		return &Error{Code: CodeInvalidConfig, Message: "MaxIdleConns cannot be negative"}
	case c.MaxIdleConns > c.MaxOpenConns:
		return &Error{Code: CodeInvalidConfig, Message: "MaxIdleConns cannot exceed MaxOpenConns"}
	case c.ConnMaxLifetime < 0:
		return &Error{Code: CodeInvalidConfig, Message: "ConnMaxLifetime cannot be negative"}
	case c.ConnMaxIdleTime < 0:
		return &Error{Code: CodeInvalidConfig, Message: "ConnMaxIdleTime cannot be negative"}
	}
	return nil
}

// Pool represents a database connection pool
type Pool struct {
	db     *sql.DB
	config PoolConfig
}

// NewPool validates config, opens the pool and verifies it with a ping.
func NewPool(ctx context.Context, config PoolConfig) (*Pool, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open(config.DriverName, config.DSN)
	if err != nil {
		return nil, &Error{Code: CodeInvalidConfig, Message: fmt.Sprintf("open %s: %v", config.DriverName, err), Err: err}
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	timeout := config.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, &Error{Code: CodeUnavailable, Message: fmt.Sprintf("ping %s: %v", config.DriverName, err), Err: err}
	}

	return &Pool{
		db:     db,
		config: config,
	}, nil
}

// Error represents a database error
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Driver returns the driver name the pool was opened with
func (p *Pool) Driver() string {
	if p == nil {
		return ""
	}
	return p.config.DriverName
}

// DB returns the underlying *sql.DB
func (p *Pool) DB() *sql.DB {
	if p == nil || p.db == nil {
		panic("pool not initialized")
	}
	return p.db
}

func (p *Pool) check(ctx context.Context) error {
	if p == nil || p.db == nil {
		return &Error{Code: CodeInvalidState, Message: "pool not initialized"}
	}
	if ctx == nil {
		return &Error{Code: CodeInvalidInput, Message: "context cannot be nil"}
	}
	return nil
}

// Close closes the connection pool
func (p *Pool) Close() error {
	if p == nil || p.db == nil {
		return &Error{Code: CodeInvalidState, Message: "pool not initialized"}
	}
	return p.db.Close()
}

// Ping tests the connection
func (p *Pool) Ping(ctx context.Context) error {
	if err := p.check(ctx); err != nil {
		return err
	}
	return p.db.PingContext(ctx)
}

// Stats returns pool statistics
func (p *Pool) Stats() sql.DBStats {
	if p == nil || p.db == nil {
		return sql.DBStats{}
	}
	return p.db.Stats()
}

// Query executes a query that returns rows
func (p *Pool) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, &Error{Code: CodeInvalidInput, Message: "query cannot be empty"}
	}
	return p.db.QueryContext(ctx, query, args...)
}

// QueryRow executes a query that returns a single row
func (p *Pool) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	if err := p.check(ctx); err != nil {
		panic(err)
	}
	if query == "" {
		panic("query cannot be empty")
	}
	return p.db.QueryRowContext(ctx, query, args...)
}

// Exec executes a command
func (p *Pool) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	if query == "" {
		return nil, &Error{Code: CodeInvalidInput, Message: "query cannot be empty"}
	}
	return p.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction with options
func (p *Pool) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	if err := p.check(ctx); err != nil {
		return nil, err
	}
	return p.db.BeginTx(ctx, opts)
}
