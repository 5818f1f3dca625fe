package memory

import (
	"slices"

	"github.com/fluxorio/todos/pkg/todo"
)

// Store is an insertion-ordered set of todos keyed by ID. It is not safe for
// concurrent use; callers provide locking.
type Store struct {
	items map[string]todo.Todo
	order []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{items: make(map[string]todo.Todo)}
}

// Put inserts t, overwriting any record with the same ID. An overwritten
// record keeps its position.
func (s *Store) Put(t todo.Todo) {
	if _, ok := s.items[t.ID]; !ok {
		s.order = append(s.order, t.ID)
	}
	s.items[t.ID] = t.Clone()
}

// Replace overwrites an existing record and reports whether one existed.
func (s *Store) Replace(t todo.Todo) bool {
	if _, ok := s.items[t.ID]; !ok {
		return false
	}
	s.items[t.ID] = t.Clone()
	return true
}

// Get returns a copy of the record stored under id.
func (s *Store) Get(id string) (todo.Todo, bool) {
	t, ok := s.items[id]
	if !ok {
		return todo.Todo{}, false
	}
	return t.Clone(), true
}

// Remove deletes id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	if _, ok := s.items[id]; !ok {
		return false
	}
	delete(s.items, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return true
}

// All returns copies of every record in insertion order.
func (s *Store) All() []todo.Todo {
	out := make([]todo.Todo, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	return len(s.order)
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{
		items: make(map[string]todo.Todo, len(s.items)),
		order: slices.Clone(s.order),
	}
	for id, t := range s.items {
		c.items[id] = t.Clone()
	}
	return c
}
