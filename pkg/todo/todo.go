package todo

import (
	"time"

	"github.com/google/uuid"
)

// Todo represents a todo item
type Todo struct {
	ID          string    `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// New builds a todo with a fresh random ID, Completed=false and CreatedAt=now.
// CreatedAt is truncated to microseconds so it survives a text round trip.
func New(title string, description *string) Todo {
	return Todo{
		ID:          uuid.New().String(),
		Title:       title,
		Description: cloneString(description),
		Completed:   false,
		CreatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}
}

// Clone returns a copy that shares no memory with t.
func (t Todo) Clone() Todo {
	t.Description = cloneString(t.Description)
	return t
}

// Equal reports whether two todos carry the same field values.
func (t Todo) Equal(other Todo) bool {
	if t.ID != other.ID || t.Title != other.Title || t.Completed != other.Completed {
		return false
	}
	if !t.CreatedAt.Equal(other.CreatedAt) {
		return false
	}
	switch {
	case t.Description == nil && other.Description == nil:
		return true
	case t.Description == nil || other.Description == nil:
		return false
	default:
		return *t.Description == *other.Description
	}
}

// DescriptionOr returns the description, or def when absent.
func (t Todo) DescriptionOr(def string) string {
	if t.Description == nil {
		return def
	}
	return *t.Description
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
