// Package reducer composes independently written section reducers into the
// single root reducer a store runs.
//
//	root, err := reducer.Combine(
//	    reducer.NewSection("counter", counter),
//	    reducer.NewSection("todos", todos),
//	)
//
// Every section reducer receives every action, in declaration order. Sections
// whose value did not change keep their previous value, and when no section
// changed the previous *state.State is returned as is, so callers can detect a
// no-op reduction by pointer comparison.
package reducer

import (
	"fmt"

	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/state"
)

// Reducer computes the next value of one state section.
//
// current is nil on the first call, when the reducer must return the section's
// initial value. Reducers must be pure: the same input yields the same output
// and nothing outside the return value is mutated.
type Reducer func(current any, act action.Action) any

// Root reduces the whole state tree. current is nil during bootstrap.
type Root func(current *state.State, act action.Action) *state.State

// Section binds a reducer to a section name.
type Section struct {
	Name    string
	Reducer Reducer
}

// NewSection creates a Section. When several reducers are given they are
// combined with Chain.
func NewSection(name string, reducers ...Reducer) Section {
	if len(reducers) == 1 {
		return Section{Name: name, Reducer: reducers[0]}
	}
	return Section{Name: name, Reducer: Chain(reducers...)}
}

// Identity returns a Root that leaves the state untouched. A nil state is
// replaced by an empty one so the store always holds a tree.
func Identity() Root {
	return func(current *state.State, act action.Action) *state.State {
		if current == nil {
			return state.Empty()
		}
		return current
	}
}

// Chain runs reducers in order against the same section value and returns
// the output of the first one that changes it. When none changes the value,
// the input is returned. A chain with no reducers (or only nil ones) is an
// identity reducer.
func Chain(reducers ...Reducer) Reducer {
	return func(current any, act action.Action) any {
		for _, r := range reducers {
			if r == nil {
				continue
			}
			next := r(current, act)
			if !state.Same(current, next) {
				return next
			}
		}
		return current
	}
}

// Combine builds a Root from ordered section reducers.
//
// Composition algorithm, per call:
//  1. Visit sections in declaration order
//  2. Call the section reducer with the section's current value (nil if absent)
//  3. Keep the previous value when state.Same reports no change
//  4. Otherwise record the new value in a fresh tree
//
// There is no short-circuit: sections declared after a changed one still see
// the action. Sections present in the state but not declared here are carried
// over unchanged.
//
// Returns an error if a section name is empty or repeated, or a reducer is nil.
func Combine(sections ...Section) (Root, error) {
	seen := make(map[string]bool, len(sections))
	ordered := make([]Section, 0, len(sections))

	for _, sec := range sections {
		if sec.Name == "" {
			return nil, ErrEmptySectionName
		}
		if sec.Reducer == nil {
			return nil, fmt.Errorf("%w: %s", ErrNilReducer, sec.Name)
		}
		if seen[sec.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateSection, sec.Name)
		}
		seen[sec.Name] = true
		ordered = append(ordered, sec)
	}

	return func(current *state.State, act action.Action) *state.State {
		next := current
		if next == nil {
			next = state.Empty()
		}

		for _, sec := range ordered {
			prev, existed := current.Get(sec.Name)
			value := sec.Reducer(prev, act)
			if existed && state.Same(prev, value) {
				continue
			}
			next = next.With(sec.Name, value)
		}

		return next
	}, nil
}

// MustCombine is like Combine but panics on an invalid declaration. Intended
// for package-level reducer definitions.
func MustCombine(sections ...Section) Root {
	root, err := Combine(sections...)
	if err != nil {
		panic(fmt.Sprintf("reducer: %v", err))
	}
	return root
}

// Nest composes sections into a Reducer whose value is a nested *state.State,
// so a composed tree can itself be a section of a larger tree.
func Nest(sections ...Section) (Reducer, error) {
	root, err := Combine(sections...)
	if err != nil {
		return nil, err
	}

	return func(current any, act action.Action) any {
		tree, _ := current.(*state.State)
		return root(tree, act)
	}, nil
}

// Typed adapts a reducer over a concrete section type. A nil or mistyped
// current value is replaced by initial before fn runs.
//
//	counter := reducer.Typed(0, func(n int, act action.Action) int {
//	    if action.Is(act, "INC") {
//	        return n + 1
//	    }
//	    return n
//	})
func Typed[T any](initial T, fn func(current T, act action.Action) T) Reducer {
	return func(current any, act action.Action) any {
		typed, ok := current.(T)
		if !ok {
			typed = initial
		}
		return fn(typed, act)
	}
}
