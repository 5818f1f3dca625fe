// Package events publishes todo change events after successful mutations.
package events

import (
	"context"
	"strings"
	"time"

	"github.com/fluxorio/todos/pkg/todo"
)

// Type names a change.
type Type string

const (
	Created Type = "todo.created"
	Updated Type = "todo.updated"
	Deleted Type = "todo.deleted"
)

// Suffix returns the last dot-separated part, e.g. "created".
func (t Type) Suffix() string {
	s := string(t)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Event describes one committed change. Todo is nil for deletions.
type Event struct {
	Type      Type       `json:"type"`
	ID        string     `json:"id"`
	Todo      *todo.Todo `json:"todo,omitempty"`
	At        time.Time  `json:"at"`
	RequestID string     `json:"request_id,omitempty"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// PublishObserver is notified of every publish attempt.
type PublishObserver interface {
	ObservePublish(eventType string, err error)
}

// Noop discards events.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                          { return nil }
