package store

import (
	"fmt"

	"github.com/tailored-agentic-units/statecore/effect"
	"github.com/tailored-agentic-units/statecore/middleware"
	"github.com/tailored-agentic-units/statecore/reducer"
)

// Pipeline is the dispatch configuration a Store is built from.
//
// Zero fields take defaults: an identity reducer, no user middleware and no
// side effects. The built-in Deferreds and Batches middleware always run and
// need not be listed.
//
//	s, err := store.New(store.Pipeline{
//	    Reducer:     root,
//	    Middleware:  []middleware.Middleware{audit},
//	    SideEffects: []effect.SideEffect{persist},
//	})
type Pipeline struct {
	Reducer     reducer.Root
	Middleware  []middleware.Middleware
	SideEffects []effect.SideEffect
}

// WithDefaults returns a copy of p with zero fields replaced by defaults.
func (p Pipeline) WithDefaults() Pipeline {
	if p.Reducer == nil {
		p.Reducer = reducer.Identity()
	}
	return p
}

func (p Pipeline) validate() error {
	for i, m := range p.Middleware {
		if m == nil {
			return fmt.Errorf("%w: index %d", ErrNilMiddleware, i)
		}
	}
	for i, e := range p.SideEffects {
		if e == nil {
			return fmt.Errorf("%w: index %d", ErrNilSideEffect, i)
		}
	}
	return nil
}
