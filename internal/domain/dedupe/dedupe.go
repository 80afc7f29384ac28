// Package dedupe holds the working set of entries keyed by name.
//
// A Set keeps at most one entry per name. Putting a name that is already
// present removes the old entry and appends the new one, so both the values
// and the insertion order follow the last write. Sets are not safe for
// concurrent use; each parse builds its own.
package dedupe

import "github.com/okian/rallyboard/internal/domain/model"

// node represents a single entry in the insertion-ordered list.
type node struct {
	entry model.Entry
	prev  *node
	next  *node
}

// Set is an insertion-ordered mapping from entry name to entry.
type Set struct {
	byName map[string]*node
	head   *node // oldest insertion
	tail   *node // most recent insertion
}

// New creates an empty Set.
func New(opts ...Option) *Set {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Set{byName: make(map[string]*node, cfg.capacity)}
}

// Put inserts e, replacing any entry with the same name. The entry moves to
// the end of the insertion order. It reports whether an entry was replaced.
func (s *Set) Put(e model.Entry) bool {
	replaced := s.Delete(e.Name)

	n := &node{entry: e, prev: s.tail}
	if s.tail != nil {
		s.tail.next = n
	} else {
		s.head = n
	}
	s.tail = n
	s.byName[e.Name] = n
	return replaced
}

// Delete removes the entry with name. It reports whether one was present.
func (s *Set) Delete(name string) bool {
	n, ok := s.byName[name]
	if !ok {
		return false
	}
	delete(s.byName, name)

	if n.prev != nil {
		n.prev.next = n.next
	} else {
		s.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		s.tail = n.prev
	}
	return true
}

// Get returns the entry stored under name.
func (s *Set) Get(name string) (model.Entry, bool) {
	n, ok := s.byName[name]
	if !ok {
		return model.Entry{}, false
	}
	return n.entry, true
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return len(s.byName)
}

// Entries returns a copy of the entries in insertion order.
func (s *Set) Entries() []model.Entry {
	out := make([]model.Entry, 0, len(s.byName))
	for n := s.head; n != nil; n = n.next {
		out = append(out, n.entry)
	}
	return out
}
