// Package state provides the immutable state tree held by a store.
//
// A State maps section names to section values. All operations are
// immutable: With returns a new State and never touches the receiver, so a
// *State pointer can be shared freely and compared by identity.
//
//	s := state.Empty()
//	s = s.With("counter", 0)
//	s = s.With("todos", []string{})
//
//	value, exists := s.Get("counter") // 0, true
//
// Sections keep the order in which they were first added. That order is the
// declaration order of the reducers that produced them and is preserved by
// Keys and MarshalJSON.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// State is an immutable, ordered mapping from section name to section value.
//
// The zero value and a nil *State are both valid empty states.
type State struct {
	sections map[string]any
	order    []string
}

// Empty returns a State with no sections.
func Empty() *State {
	return &State{sections: make(map[string]any)}
}

// FromMap builds a State from m. Sections are ordered by name because Go maps
// carry no order of their own.
func FromMap(m map[string]any) *State {
	s := &State{
		sections: maps.Clone(m),
		order:    make([]string, 0, len(m)),
	}
	if s.sections == nil {
		s.sections = make(map[string]any)
	}
	for name := range m {
		s.order = append(s.order, name)
	}
	sort.Strings(s.order)
	return s
}

// Get retrieves a section value by name.
//
// Returns the value and true if the section exists, nil and false otherwise.
func (s *State) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	val, exists := s.sections[name]
	return val, exists
}

// Value returns the section value or nil when the section does not exist.
func (s *State) Value(name string) any {
	val, _ := s.Get(name)
	return val
}

// With returns a new State with the section set to value.
//
// The receiver is not modified. A section that already exists keeps its
// position; a new section is appended.
func (s *State) With(name string, value any) *State {
	next := s.Clone()
	if _, exists := next.sections[name]; !exists {
		next.order = append(next.order, name)
	}
	next.sections[name] = value
	return next
}

// Clone creates an independent copy of the State. Section values are shared,
// not copied.
func (s *State) Clone() *State {
	if s == nil {
		return Empty()
	}
	return &State{
		sections: maps.Clone(s.sectionsOrEmpty()),
		order:    slices.Clone(s.order),
	}
}

// Keys returns section names in order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Len returns the number of sections.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Map returns a copy of the sections as a plain map.
func (s *State) Map() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return maps.Clone(s.sectionsOrEmpty())
}

// String renders the section names, mostly for debugging.
func (s *State) String() string {
	return fmt.Sprintf("State%v", s.Keys())
}

// MarshalJSON encodes the state as a JSON object with sections in order.
func (s *State) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.sections[name])
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (s *State) sectionsOrEmpty() map[string]any {
	if s.sections == nil {
		return map[string]any{}
	}
	return s.sections
}
