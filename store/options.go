package store

import "github.com/tailored-agentic-units/statecore/observability"

// Option configures a Store after pipeline and config initialization.
// Options override config-derived values.
type Option func(*Store)

// WithObserver overrides the store's observer. A nil observer discards events.
func WithObserver(o observability.Observer) Option {
	return func(s *Store) {
		if o == nil {
			o = observability.NoOpObserver{}
		}
		s.observer = o
	}
}

// WithName sets the name reported in observability events.
func WithName(name string) Option {
	return func(s *Store) { s.name = name }
}

// WithMaxDepth bounds nested dispatch depth. 0 disables the bound.
func WithMaxDepth(depth int) Option {
	return func(s *Store) { s.maxDepth = depth }
}
