// Package middleware transforms actions before they reach the reducer.
//
// A chain is an ordered list of Middleware folded left to right: each member
// receives the previous member's output. Two built-ins always run first:
// Deferreds executes callable actions and Batches fans sequences out into
// individual dispatches. User middleware runs after them.
package middleware

import (
	"fmt"

	"github.com/tailored-agentic-units/statecore/action"
)

// Middleware transforms an action. dispatch and getState belong to the store
// running the chain; dispatch may be called to start nested dispatches, which
// complete before Transform continues.
//
// Returning a zero action (see action.IsZero) keeps the incoming action.
// Returning an error aborts the dispatch.
type Middleware interface {
	Transform(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error)
}

// Func adapts an ordinary function to Middleware.
type Func func(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error)

// Transform implements Middleware.
func (f Func) Transform(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error) {
	return f(act, dispatch, getState)
}

// Chain is a built middleware chain bound to a store's dispatch and getState.
type Chain func(act action.Action) (action.Action, error)

// Built-in middleware, prepended to every chain by Build.
var (
	Deferreds Middleware = Func(runDeferred)
	Batches   Middleware = Func(fanOutBatch)
)

var builtins = []Middleware{Deferreds, Batches}

// Build folds the built-ins followed by list into a Chain.
//
// A member that returns a zero action leaves the running action unchanged, so
// the chain never loses an action it was given. Errors from user middleware are
// annotated with the member's position in list.
func Build(list []Middleware, dispatch action.Dispatch, getState action.GetState) Chain {
	members := make([]Middleware, 0, len(builtins)+len(list))
	members = append(members, builtins...)
	members = append(members, list...)

	return func(act action.Action) (action.Action, error) {
		current := act
		for i, m := range members {
			next, err := m.Transform(current, dispatch, getState)
			if err != nil {
				if i < len(builtins) {
					return current, err
				}
				return current, fmt.Errorf("middleware %d: %w", i-len(builtins), err)
			}
			if !action.IsZero(next) {
				current = next
			}
		}
		return current, nil
	}
}

// Compose folds several middleware into one that applies them left to right
// with the same zero-action rule as Build.
func Compose(members ...Middleware) Middleware {
	return Func(func(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error) {
		current := act
		for _, m := range members {
			next, err := m.Transform(current, dispatch, getState)
			if err != nil {
				return current, err
			}
			if !action.IsZero(next) {
				current = next
			}
		}
		return current, nil
	})
}

// runDeferred invokes a callable action with dispatch and getState. Its return
// value becomes the running action.
func runDeferred(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error) {
	deferred, ok := act.(action.Deferred)
	if !ok || deferred == nil {
		return act, nil
	}

	next, err := deferred(dispatch, getState)
	if err != nil {
		return act, fmt.Errorf("deferred action: %w", err)
	}
	return next, nil
}

// fanOutBatch dispatches every element of a batch through the full pipeline,
// in order, then hands the batch itself on unchanged.
func fanOutBatch(act action.Action, dispatch action.Dispatch, getState action.GetState) (action.Action, error) {
	batch, ok := act.(action.Batch)
	if !ok {
		return act, nil
	}

	for i, elem := range batch {
		if _, err := dispatch(elem); err != nil {
			return act, fmt.Errorf("batch element %d: %w", i, err)
		}
	}
	return act, nil
}
