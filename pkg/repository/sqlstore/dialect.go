package sqlstore

import (
	"fmt"

	// Registered database/sql drivers.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// dialect holds the statements that differ between engines.
type dialect struct {
	name   string
	schema []string
}

var (
	sqliteDialect = dialect{
		name: "sqlite",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT,
				completed   BOOLEAN NOT NULL DEFAULT FALSE,
				created_at  TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at)`,
		},
	}

	postgresDialect = dialect{
		name: "postgres",
		schema: []string{
			`CREATE TABLE IF NOT EXISTS todos (
				id          TEXT PRIMARY KEY,
				title       TEXT NOT NULL,
				description TEXT,
				completed   BOOLEAN NOT NULL DEFAULT FALSE,
				created_at  TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS todos_created_at_idx ON todos (created_at)`,
		},
	}
)

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case "sqlite3":
		return sqliteDialect, nil
	case "postgres", "pgx":
		return postgresDialect, nil
	default:
		return dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}
