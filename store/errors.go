package store

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/statecore/action"
)

// Sentinel errors for store construction and dispatch.
var (
	ErrNilAction      = errors.New("action is nil")
	ErrReservedAction = errors.New("action type is reserved for store initialization")
	ErrNilState       = errors.New("reducer returned nil state")
	ErrMaxDepth       = errors.New("max dispatch depth exceeded")
	ErrNilMiddleware  = errors.New("middleware is nil")
	ErrNilSideEffect  = errors.New("side effect is nil")
)

// Stage names the pipeline step in which a dispatch failed.
type Stage string

const (
	StageMiddleware Stage = "middleware"
	StageReduce     Stage = "reduce"
	StageEffects    Stage = "effects"
)

// DispatchError captures context when a dispatch fails.
//
//   - Stage: Which pipeline step failed
//   - Action: The action being processed at that step
//   - Depth: Nesting depth of the failing dispatch (1 = top level)
//   - Err: Underlying error
//
// A failure inside a nested dispatch is reported once, by the innermost
// dispatch; enclosing dispatches return the same error unchanged.
type DispatchError struct {
	Stage  Stage
	Action action.Action
	Depth  int
	Err    error
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s failed at %s: %v", action.Describe(e.Action), e.Stage, e.Err)
}

// Unwrap enables error unwrapping for errors.Is and errors.As.
func (e *DispatchError) Unwrap() error {
	return e.Err
}
