package jsonfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fluxorio/todos/pkg/todo"
)

// TimeLayout is how created_at is written: fixed-width microseconds with an
// explicit offset, so lexical order matches chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// naiveLayout matches timestamps written without an offset.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// record is the on-disk shape of one todo.
type record struct {
	ID          *string `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
}

func toRecord(t todo.Todo) record {
	id := t.ID
	return record{
		ID:          &id,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt.Format(TimeLayout),
	}
}

func (r record) toTodo() (todo.Todo, error) {
	if r.ID == nil || *r.ID == "" {
		return todo.Todo{}, errors.New("missing id")
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return todo.Todo{}, err
	}
	return todo.Todo{
		ID:          *r.ID,
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		CreatedAt:   created,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(naiveLayout, s, time.Local); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid created_at %q", s)
}

// encode renders todos as an indented JSON array.
func encode(todos []todo.Todo) ([]byte, error) {
	records := make([]record, 0, len(todos))
	for _, t := range todos {
		records = append(records, toRecord(t))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decode parses a todo array. A document that is not a JSON array yields
// errUnparsable; individual malformed entries are skipped and logged.
func decode(data []byte, logger *slog.Logger) ([]todo.Todo, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", errUnparsable, err)
	}

	todos := make([]todo.Todo, 0, len(raw))
	for i, item := range raw {
		var r record
		if err := json.Unmarshal(item, &r); err != nil {
			logger.Warn("skipping malformed todo entry", "index", i, "error", err)
			continue
		}
		t, err := r.toTodo()
		if err != nil {
			logger.Warn("skipping malformed todo entry", "index", i, "error", err)
			continue
		}
		todos = append(todos, t)
	}
	return todos, nil
}

var errUnparsable = errors.New("unparsable todo file")
