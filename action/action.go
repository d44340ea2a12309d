// Package action defines the values that drive state transitions.
//
// An Action is a closed set of three shapes:
//
//	action.Plain{Type: "INC"}                         // a record reduced by reducers
//	action.Deferred(func(d, g) (action.Action, error)) // orchestrates further dispatches
//	action.Batch{a1, a2}                               // dispatched element by element
//
// Consumers pattern match with a type switch rather than inspecting values at
// runtime.
package action

import "github.com/tailored-agentic-units/statecore/state"

// InitType is the reserved discriminator of the initialising action. Stores
// reject it from Dispatch.
const InitType = "@@statecore/INIT"

// Init is delivered once to the root reducer when a store is constructed.
var Init = Plain{Type: InitType}

// Kind identifies which variant an Action is.
type Kind uint8

const (
	KindPlain Kind = iota
	KindDeferred
	KindBatch
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindDeferred:
		return "deferred"
	case KindBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Action is the sealed action variant. Only Plain, Deferred and Batch
// implement it.
type Action interface {
	Kind() Kind
	sealed()
}

// Dispatch runs an action through a store's pipeline and returns the action
// that was actually applied.
type Dispatch func(act Action) (Action, error)

// GetState returns the current state tree.
type GetState func() *state.State

// Plain is a tagged record carrying a discriminator and an optional payload.
type Plain struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// New creates a Plain action.
func New(actionType string, payload any) Plain {
	return Plain{Type: actionType, Payload: payload}
}

func (Plain) Kind() Kind { return KindPlain }
func (Plain) sealed()    {}

// Deferred is a callable action. It is invoked with the store's dispatch and
// getState; its return value becomes the applied action of the triggering
// dispatch.
type Deferred func(dispatch Dispatch, getState GetState) (Action, error)

func (Deferred) Kind() Kind { return KindDeferred }
func (Deferred) sealed()    {}

// Batch is a sequence of actions dispatched individually, in order.
type Batch []Action

func (Batch) Kind() Kind { return KindBatch }
func (Batch) sealed()    {}

// IsZero reports whether act carries no action: a nil interface, a nil
// Deferred or a nil Batch. An empty, non-nil Batch is not zero.
func IsZero(act Action) bool {
	switch a := act.(type) {
	case nil:
		return true
	case Deferred:
		return a == nil
	case Batch:
		return a == nil
	default:
		return false
	}
}

// TypeOf returns the discriminator of a Plain action and "" for the other
// variants.
func TypeOf(act Action) string {
	if p, ok := act.(Plain); ok {
		return p.Type
	}
	return ""
}

// Is reports whether act is a Plain action with one of the given types.
func Is(act Action, types ...string) bool {
	t := TypeOf(act)
	if t == "" {
		return false
	}
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// Describe returns a short label for act suitable for logs and events.
func Describe(act Action) string {
	switch a := act.(type) {
	case nil:
		return "<nil>"
	case Plain:
		return a.Type
	default:
		return act.Kind().String()
	}
}
