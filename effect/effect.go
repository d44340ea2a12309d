// Package effect runs side effects after a state transition is committed.
//
// Side effects observe a transition; they never change it. Each receives the
// same Context and may dispatch further actions, which run their complete
// pipeline before the next side effect starts.
package effect

import (
	"fmt"

	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/state"
)

// Context describes one committed transition.
type Context struct {
	Prev     *state.State
	Next     *state.State
	Action   action.Action
	Dispatch action.Dispatch
	GetState action.GetState
}

// SideEffect observes a committed transition. A returned error stops the
// remaining side effects and fails the dispatch.
type SideEffect interface {
	Run(c Context) error
}

// Func adapts an ordinary function to SideEffect.
type Func func(c Context) error

// Run implements SideEffect.
func (f Func) Run(c Context) error {
	return f(c)
}

// Runner executes side effects in registration order.
type Runner struct {
	effects []SideEffect
}

// NewRunner creates a Runner over effects. Nil entries are skipped.
func NewRunner(effects ...SideEffect) Runner {
	filtered := make([]SideEffect, 0, len(effects))
	for _, e := range effects {
		if e != nil {
			filtered = append(filtered, e)
		}
	}
	return Runner{effects: filtered}
}

// Len returns the number of registered side effects.
func (r Runner) Len() int {
	return len(r.effects)
}

// Run invokes every side effect with c, in order, stopping at the first error.
func (r Runner) Run(c Context) error {
	for i, e := range r.effects {
		if err := e.Run(c); err != nil {
			return fmt.Errorf("side effect %d: %w", i, err)
		}
	}
	return nil
}
