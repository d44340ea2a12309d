package reducer

import "errors"

// Sentinel errors for reducer composition.
var (
	ErrEmptySectionName = errors.New("section name is empty")
	ErrDuplicateSection = errors.New("section already declared")
	ErrNilReducer       = errors.New("section reducer is nil")
)
