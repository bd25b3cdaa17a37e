// Package store keeps to-do lists and their tasks in process memory.
//
// Every exported Store method runs as one critical section, so a Store may
// be shared by concurrent request handlers. Request data is normalized and
// validated before the lock is taken and before any identifier is drawn,
// which makes creation all-or-nothing: a list with one bad task registers
// neither the list nor any of its tasks.
//
// Reads return snapshots (List, Task values). Later changes to the store are
// not visible through a snapshot.
package store

import (
	"sync"

	"nztodo/internal/ident"
	"nztodo/internal/jsonvalue"
)

// Store holds all lists in creation order.
type Store struct {
	mu    sync.Mutex
	ids   *ident.Generator
	lists map[string]*list
	order []*list
}

// Option configures a Store.
type Option func(*Store)

// WithGenerator sets the identifier source. Tests use it to force collisions.
func WithGenerator(g *ident.Generator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		ids:   ident.Default,
		lists: make(map[string]*list),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reset drops every list.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = make(map[string]*list)
	s.order = nil
}

// Len returns the number of lists.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// withDefaults returns a copy of data with defaults filled in for absent keys.
// Default keys come first, followed by the remaining keys of data in order.
func withDefaults(data *jsonvalue.Object, pairs ...any) *jsonvalue.Object {
	out := jsonvalue.ObjectOf(pairs...)
	for _, k := range data.Keys() {
		v, _ := data.Get(k)
		out.Set(k, v)
	}
	return out
}
