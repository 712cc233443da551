// Package store is the insertion ordered side table shared by the stages.
package store

import (
	"fmt"
	"strings"
)

// Entry is one replaced substring.
type Entry[K comparable] struct {
	Key   K
	Value string
}

// Store maps placeholders to the text they replaced, keeping insertion
// order. It is not safe for concurrent use.
type Store[K comparable] struct {
	entries []Entry[K]
	index   map[K]int
}

// New returns an empty store.
func New[K comparable]() *Store[K] {
	return &Store[K]{index: make(map[K]int)}
}

// Put records value under key. Re-putting a key overwrites its value in
// place.
func (s *Store[K]) Put(key K, value string) {
	if i, ok := s.index[key]; ok {
		s.entries[i].Value = value
		return
	}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, Entry[K]{Key: key, Value: value})
}

// Get returns the value stored for key.
func (s *Store[K]) Get(key K) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.entries[i].Value, true
}

// Len returns the number of entries.
func (s *Store[K]) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in insertion order.
func (s *Store[K]) Entries() []Entry[K] {
	out := make([]Entry[K], len(s.entries))
	copy(out, s.entries)
	return out
}

// Reset drops every entry.
func (s *Store[K]) Reset() {
	s.entries = nil
	s.index = make(map[K]int)
}

// Dump renders one "(key, value)" line per entry, in insertion order.
func (s *Store[K]) Dump() string {
	var b strings.Builder
	for _, e := range s.entries {
		fmt.Fprintf(&b, "(%s, %q)\n", formatKey(e.Key), e.Value)
	}
	return b.String()
}

func formatKey(k any) string {
	if s, ok := k.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprint(k)
}
