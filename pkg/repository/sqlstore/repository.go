// Package sqlstore provides a todo repository on database/sql. SQLite
// (mattn/go-sqlite3) and PostgreSQL (lib/pq or pgx) are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/fluxorio/todos/pkg/db"
	"github.com/fluxorio/todos/pkg/todo"
)

// Repository stores todos in a "todos" table.
type Repository struct {
	pool    *db.Pool
	dialect dialect
}

var _ todo.Repository = (*Repository)(nil)

// New wraps pool and creates the schema when missing.
func New(ctx context.Context, pool *db.Pool) (*Repository, error) {
	d, err := dialectFor(pool.Driver())
	if err != nil {
		return nil, err
	}
	r := &Repository{pool: pool, dialect: d}
	if err := r.migrate(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// Open creates a pool from config and wraps it. Close releases the pool.
func Open(ctx context.Context, config db.PoolConfig) (*Repository, error) {
	pool, err := db.NewPool(ctx, config)
	if err != nil {
		return nil, err
	}
	r, err := New(ctx, pool)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repository) migrate(ctx context.Context) error {
	tx, err := r.pool.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range r.dialect.schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s schema: %w", r.dialect.name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// Close closes the underlying pool.
func (r *Repository) Close() error {
	return r.pool.Close()
}

// DB exposes the pool handle, e.g. for connection stats.
func (r *Repository) DB() *sql.DB {
	return r.pool.DB()
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *Repository) exec(ctx context.Context, q squirrel.Sqlizer) (sql.Result, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return r.pool.Exec(ctx, query, args...)
}

func (r *Repository) Create(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	_, err := r.exec(ctx, upsertQuery(t))
	if err != nil {
		return todo.Todo{}, fmt.Errorf("insert todo %s: %w", t.ID, err)
	}
	return t.Clone(), nil
}

func (r *Repository) GetAll(ctx context.Context) ([]todo.Todo, error) {
	query, args, err := selectAllQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := make([]todo.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (todo.Todo, bool, error) {
	query, args, err := selectByIDQuery(id).ToSql()
	if err != nil {
		return todo.Todo{}, false, fmt.Errorf("build query: %w", err)
	}
	t, err := scanTodo(r.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return todo.Todo{}, false, nil
	}
	if err != nil {
		return todo.Todo{}, false, err
	}
	return t, true, nil
}

func (r *Repository) Update(ctx context.Context, t todo.Todo) (todo.Todo, error) {
	res, err := r.exec(ctx, updateQuery(t))
	if err != nil {
		return todo.Todo{}, fmt.Errorf("update todo %s: %w", t.ID, err)
	}
	if err := expectOneRow(res, t.ID); err != nil {
		return todo.Todo{}, err
	}
	return t.Clone(), nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, deleteQuery(id))
	if err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return todo.NotFoundError(id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (todo.Todo, error) {
	var (
		t    todo.Todo
		desc sql.NullString
	)
	if err := s.Scan(&t.ID, &t.Title, &desc, &t.Completed, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return todo.Todo{}, err
		}
		return todo.Todo{}, fmt.Errorf("scan todo: %w", err)
	}
	if desc.Valid {
		t.Description = &desc.String
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
