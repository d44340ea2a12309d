package effect

import (
	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/state"
)

// Predicate decides whether a side effect applies to a transition.
type Predicate func(c Context) bool

// When wraps e so it only runs for transitions matching pred.
//
//	effect.When(effect.Changed("todos"), saveTodos)
func When(pred Predicate, e SideEffect) SideEffect {
	return Func(func(c Context) error {
		if !pred(c) {
			return nil
		}
		return e.Run(c)
	})
}

// Always matches every transition.
func Always() Predicate {
	return func(c Context) bool { return true }
}

// OnType matches transitions caused by a Plain action of one of the types.
func OnType(types ...string) Predicate {
	return func(c Context) bool {
		return action.Is(c.Action, types...)
	}
}

// Changed matches transitions in which the named section's value changed.
func Changed(section string) Predicate {
	return func(c Context) bool {
		prev, prevOK := c.Prev.Get(section)
		next, nextOK := c.Next.Get(section)
		if prevOK != nextOK {
			return true
		}
		return !state.Same(prev, next)
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(c Context) bool {
		return !pred(c)
	}
}

// And matches when every predicate matches.
func And(preds ...Predicate) Predicate {
	return func(c Context) bool {
		for _, p := range preds {
			if !p(c) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches.
func Or(preds ...Predicate) Predicate {
	return func(c Context) bool {
		for _, p := range preds {
			if p(c) {
				return true
			}
		}
		return false
	}
}
