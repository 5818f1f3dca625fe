package sqlstore

import (
	"github.com/Masterminds/squirrel"
	"github.com/fluxorio/todos/pkg/todo"
)

const table = "todos"

// Both dialects accept $n placeholders and ON CONFLICT upserts.
var (
	builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	columns = []string{"id", "title", "description", "completed", "created_at"}
)

func upsertQuery(t todo.Todo) squirrel.InsertBuilder {
	return builder.Insert(table).
		Columns(columns...).
		Values(t.ID, t.Title, nullString(t.Description), t.Completed, t.CreatedAt).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			completed = excluded.completed,
			created_at = excluded.created_at`)
}

func selectAllQuery() squirrel.SelectBuilder {
	return builder.Select(columns...).From(table).OrderBy("created_at", "id")
}

func selectByIDQuery(id string) squirrel.SelectBuilder {
	return builder.Select(columns...).From(table).Where(squirrel.Eq{"id": id})
}

// updateQuery never touches id or created_at.
func updateQuery(t todo.Todo) squirrel.UpdateBuilder {
	return builder.Update(table).
		Set("title", t.Title).
		Set("description", nullString(t.Description)).
		Set("completed", t.Completed).
		Where(squirrel.Eq{"id": t.ID})
}

func deleteQuery(id string) squirrel.DeleteBuilder {
	return builder.Delete(table).Where(squirrel.Eq{"id": id})
}
