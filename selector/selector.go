// Package selector derives values from a state tree and memoizes them per
// state snapshot.
//
// A *state.State is never mutated after it is committed, so its pointer is a
// stable cache key: the same snapshot always selects the same value.
package selector

import (
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/tailored-agentic-units/statecore/listener"
	"github.com/tailored-agentic-units/statecore/state"
)

// DefaultSize is the cache size used when New is given a size below one.
const DefaultSize = 64

var ErrNilFunc = errors.New("selector func is nil")

// Func derives a value from a state snapshot. It must be pure.
type Func[T any] func(s *state.State) T

// Selector memoizes a Func by state snapshot.
type Selector[T any] struct {
	fn    Func[T]
	cache *lru.Cache[*state.State, T]
}

// New creates a Selector over fn holding up to size snapshots.
func New[T any](fn Func[T], size int) (*Selector[T], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	if size < 1 {
		size = DefaultSize
	}

	cache, err := lru.New[*state.State, T](size)
	if err != nil {
		return nil, err
	}
	return &Selector[T]{fn: fn, cache: cache}, nil
}

// Select returns fn(s), computing it at most once per cached snapshot.
func (sel *Selector[T]) Select(s *state.State) T {
	if v, ok := sel.cache.Get(s); ok {
		return v
	}
	v := sel.fn(s)
	sel.cache.Add(s, v)
	return v
}

// Purge drops every memoized value.
func (sel *Selector[T]) Purge() {
	sel.cache.Purge()
}

// Section returns a Func reading one section as T. A missing or mistyped
// section yields the zero value.
func Section[T any](name string) Func[T] {
	return func(s *state.State) T {
		v, _ := s.Value(name).(T)
		return v
	}
}

// Subscriber is the part of a store Watch needs.
type Subscriber interface {
	Subscribe(l listener.Listener) (unsubscribe func())
}

// Watch calls fn with the selected value once immediately and then whenever
// a state change alters it, as judged by state.Same. The returned func stops
// watching.
func Watch[T any](sub Subscriber, sel *Selector[T], fn func(T)) (unsubscribe func()) {
	var (
		mu      sync.Mutex
		last    T
		started bool
	)

	return sub.Subscribe(func(s *state.State) {
		v := sel.Select(s)

		mu.Lock()
		if started && state.Same(last, v) {
			mu.Unlock()
			return
		}
		started = true
		last = v
		mu.Unlock()

		fn(v)
	})
}
