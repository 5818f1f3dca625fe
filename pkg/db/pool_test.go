package db

import (
	"context"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func TestDefaultPoolConfig(t *testing.T) {
	config := DefaultPoolConfig("test-dsn", "postgres")

	if config.DSN != "test-dsn" {
		t.Errorf("DSN = %v, want test-dsn", config.DSN)
	}
	if config.DriverName != "postgres" {
		t.Errorf("DriverName = %v, want postgres", config.DriverName)
	}
	if config.MaxOpenConns != 25 {
		t.Errorf("MaxOpenConns = %v, want 25", config.MaxOpenConns)
	}
	if config.MaxIdleConns != 5 {
		t.Errorf("MaxIdleConns = %v, want 5", config.MaxIdleConns)
	}
	if config.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("ConnMaxLifetime = %v, want 5m", config.ConnMaxLifetime)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestNewPool_FailFast(t *testing.T) {
	valid := DefaultPoolConfig("file::memory:", "sqlite3")

	tests := []struct {
		name    string
		modify  func(*PoolConfig)
		wantMsg string
	}{
		{"empty DSN", func(c *PoolConfig) { c.DSN = "" }, "DSN cannot be empty"},
		{"empty driver", func(c *PoolConfig) { c.DriverName = "" }, "DriverName cannot be empty"},
		{"zero max open", func(c *PoolConfig) { c.MaxOpenConns = 0 }, "MaxOpenConns must be positive"},
		{"negative idle", func(c *PoolConfig) { c.MaxIdleConns = -1 }, "MaxIdleConns cannot be negative"},
		{"idle exceeds open", func(c *PoolConfig) { c.MaxIdleConns = 100 }, "MaxIdleConns cannot exceed MaxOpenConns"},
		{"negative lifetime", func(c *PoolConfig) { c.ConnMaxLifetime = -time.Second }, "ConnMaxLifetime cannot be negative"},
		{"negative idle time", func(c *PoolConfig) { c.ConnMaxIdleTime = -time.Second }, "ConnMaxIdleTime cannot be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.modify(&config)

			_, err := NewPool(context.Background(), config)
			if err == nil {
				t.Fatal("NewPool() error = nil, want fail-fast")
			}
			var dbErr *Error
			if !errors.As(err, &dbErr) || dbErr.Code != CodeInvalidConfig {
				t.Errorf("NewPool() error = %#v, want INVALID_CONFIG", err)
			}
			if err.Error() != tt.wantMsg {
				t.Errorf("Error message = %v, want %v", err, tt.wantMsg)
			}
		})
	}
}

func TestNewPool_UnknownDriver(t *testing.T) {
	_, err := NewPool(context.Background(), DefaultPoolConfig("x", "no-such-driver"))
	var dbErr *Error
	if !errors.As(err, &dbErr) || dbErr.Code != CodeInvalidConfig {
		t.Errorf("NewPool() error = %v, want INVALID_CONFIG", err)
	}
}

func TestPool_SQLite(t *testing.T) {
	ctx := context.Background()
	config := DefaultPoolConfig("file::memory:?cache=shared", "sqlite3")
	config.MaxOpenConns = 1
	config.MaxIdleConns = 1

	pool, err := NewPool(ctx, config)
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Close()

	if pool.Driver() != "sqlite3" {
		t.Errorf("Driver() = %q, want sqlite3", pool.Driver())
	}
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if _, err := pool.Exec(ctx, "CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatalf("Exec() error = %v", err)
	}
	if _, err := pool.Exec(ctx, "INSERT INTO kv (k, v) VALUES ($1, $2)", "a", "1"); err != nil {
		t.Fatalf("Exec() insert error = %v", err)
	}

	var v string
	if err := pool.QueryRow(ctx, "SELECT v FROM kv WHERE k = $1", "a").Scan(&v); err != nil {
		t.Fatalf("QueryRow() error = %v", err)
	}
	if v != "1" {
		t.Errorf("v = %q, want 1", v)
	}

	if stats := pool.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("Stats().MaxOpenConnections = %d, want 1", stats.MaxOpenConnections)
	}
}

func TestPool_NilState(t *testing.T) {
	var pool *Pool
	ctx := context.Background()

	if err := pool.Ping(ctx); err == nil {
		t.Error("Ping() on nil pool should fail")
	}
	if _, err := pool.Exec(ctx, "SELECT 1"); err == nil {
		t.Error("Exec() on nil pool should fail")
	}
	if _, err := pool.Query(ctx, "SELECT 1"); err == nil {
		t.Error("Query() on nil pool should fail")
	}
	if err := pool.Close(); err == nil {
		t.Error("Close() on nil pool should fail")
	}
	if pool.Stats().OpenConnections != 0 {
		t.Error("Stats() on nil pool should be zero")
	}
}

func TestPool_EmptyQuery(t *testing.T) {
	pool, err := NewPool(context.Background(), DefaultPoolConfig("file::memory:", "sqlite3"))
	if err != nil {
		t.Fatalf("NewPool() error = %v", err)
	}
	defer pool.Close()

	if _, err := pool.Exec(context.Background(), ""); err == nil {
		t.Error("Exec(\"\") should fail")
	}
}
