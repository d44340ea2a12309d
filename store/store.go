// Package store owns a state tree and the dispatch pipeline that replaces it.
//
// A Store is created from a Pipeline, seeds its state by running the reserved
// initialising action through the root reducer, and then changes state only
// through Dispatch:
//
//	dispatch(action)
//	  -> middleware chain (built-ins, then user middleware)
//	  -> root reducer (prev state + applied action)
//	  -> commit (single atomic swap)
//	  -> side effects (prev, next, action)
//	  -> change detection (structural equality)
//	  -> listener notification
//	  -> applied action returned to the caller
//
// Middleware, deferred actions and side effects may dispatch again through
// the dispatch func they are handed (the dispatch argument of middleware and
// deferred actions, effect.Context.Dispatch). A nested dispatch runs the whole
// pipeline to completion before the enclosing step resumes, and its result is
// visible to the enclosing dispatch through GetState.
//
// Top-level Dispatch calls from different goroutines are serialized by one
// lock that is held while middleware, reducers and side effects run. Only the
// dispatch func handed to those steps is reentrant: a step that calls
// Store.Dispatch directly waits on the lock its own dispatch holds and never
// returns. Once the enclosing top-level dispatch has returned, the handed func
// falls back to Dispatch, so it is safe to keep for later use.
//
// Listeners run after the lock is released. Notifications are queued in commit
// order and delivered by one goroutine at a time, so a listener is never
// invoked concurrently with itself and may call Dispatch or Subscribe. A
// dispatch started from a listener is a new top-level dispatch whose
// notifications are delivered after the current listener pass. When another
// goroutine is already delivering, Dispatch can return before its own
// notifications have been delivered by that goroutine.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/config"
	"github.com/tailored-agentic-units/statecore/effect"
	"github.com/tailored-agentic-units/statecore/listener"
	"github.com/tailored-agentic-units/statecore/middleware"
	"github.com/tailored-agentic-units/statecore/observability"
	"github.com/tailored-agentic-units/statecore/reducer"
	"github.com/tailored-agentic-units/statecore/state"
)

// Store holds the current state and runs the dispatch pipeline.
type Store struct {
	id       string
	name     string
	maxDepth int

	current atomic.Pointer[state.State]
	mu      sync.Mutex
	active  atomic.Bool

	noticeMu sync.Mutex
	notices  []notice
	draining atomic.Bool

	reduce     reducer.Root
	middleware []middleware.Middleware
	effects    effect.Runner
	listeners  *listener.Registry

	observer observability.Observer
	metrics  *Metrics
}

// cycle is one top-level dispatch and every dispatch nested inside it.
type cycle struct {
	store *Store
	chain middleware.Chain
	depth int
	done  atomic.Bool
}

// dispatch is the reentrant dispatch handed to pipeline steps.
func (c *cycle) dispatch(act action.Action) (action.Action, error) {
	if c.done.Load() {
		return c.store.Dispatch(act)
	}
	return c.store.dispatch(c, act)
}

// New creates a Store from a pipeline and seeds its initial state.
//
// Construction:
//  1. Fill pipeline defaults and reject nil middleware or side effects
//  2. Apply options
//  3. Run action.Init through the root reducer with a nil state, bypassing
//     middleware and side effects
//  4. Emit EventCreate
func New(p Pipeline, opts ...Option) (*Store, error) {
	p = p.WithDefaults()
	if err := p.validate(); err != nil {
		return nil, err
	}

	defaults := config.Default()

	s := &Store{
		id:         uuid.Must(uuid.NewV7()).String(),
		name:       defaults.Name,
		maxDepth:   defaults.Depth(),
		reduce:     p.Reducer,
		middleware: slices.Clone(p.Middleware),
		effects:    effect.NewRunner(p.SideEffects...),
		listeners:  listener.NewRegistry(),
		observer:   observability.NoOpObserver{},
		metrics:    NewMetrics(),
	}

	for _, opt := range opts {
		opt(s)
	}

	initial := s.reduce(nil, action.Init)
	if initial == nil {
		return nil, fmt.Errorf("bootstrap: %w", ErrNilState)
	}
	s.current.Store(initial)

	s.emit(context.Background(), EventCreate, observability.LevelInfo, "store.New", map[string]any{
		"store_id": s.id,
		"sections": initial.Len(),
	})

	return s, nil
}

// NewFromConfig creates a Store whose name, observer and depth bound come from
// cfg. The observer is resolved by name through the observability registry.
// Options are applied after config and override it.
func NewFromConfig(cfg *config.StoreConfig, p Pipeline, opts ...Option) (*Store, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	base := []Option{
		WithName(cfg.Name),
		WithMaxDepth(cfg.Depth()),
		WithObserver(observer),
	}
	return New(p, append(base, opts...)...)
}

// ID returns the store's unique UUIDv7 identifier.
func (s *Store) ID() string {
	return s.id
}

// Name returns the store's name.
func (s *Store) Name() string {
	return s.name
}

// GetState returns the current state. It never blocks and never observes a
// partially updated tree.
func (s *Store) GetState() *state.State {
	return s.current.Load()
}

// Metrics returns a snapshot of the store's counters.
func (s *Store) Metrics() MetricsSnapshot {
	snap := s.metrics.Snapshot()
	snap.Listeners = int64(s.listeners.Len())
	return snap
}

// Dispatch runs act through the full pipeline and returns the applied action,
// which is the middleware chain's output.
//
// Any error from middleware, a deferred action or a side effect aborts the
// remaining steps of this dispatch and is returned as a *DispatchError. State
// committed before the failure stays committed; nested dispatches that
// completed before it still notify their listeners. Panics are not recovered.
func (s *Store) Dispatch(act action.Action) (action.Action, error) {
	applied, err := s.run(act)
	s.drain()
	return applied, err
}

func (s *Store) run(act action.Action) (action.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active.Store(true)
	defer s.active.Store(false)

	c := &cycle{store: s}
	defer c.done.Store(true)
	c.chain = middleware.Build(s.middleware, c.dispatch, s.GetState)

	return s.dispatch(c, act)
}

func (s *Store) dispatch(c *cycle, act action.Action) (action.Action, error) {
	if action.IsZero(act) {
		return nil, ErrNilAction
	}
	if action.Is(act, action.InitType) {
		return nil, ErrReservedAction
	}
	if s.maxDepth > 0 && c.depth >= s.maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMaxDepth, s.maxDepth)
	}

	c.depth++
	defer func() { c.depth-- }()
	depth := c.depth

	ctx := context.Background()
	start := time.Now()
	s.metrics.RecordDispatch(depth)

	s.emit(ctx, EventDispatchStart, observability.LevelVerbose, "store.Dispatch", map[string]any{
		"action_type": action.Describe(act),
		"action_kind": act.Kind().String(),
		"depth":       depth,
	})

	applied, err := c.chain(act)
	if err != nil {
		return nil, s.fail(ctx, StageMiddleware, act, depth, err)
	}
	if action.Is(applied, action.InitType) {
		return nil, s.fail(ctx, StageMiddleware, act, depth, ErrReservedAction)
	}

	prev := s.GetState()
	next := s.reduce(prev, applied)
	if next == nil {
		return nil, s.fail(ctx, StageReduce, applied, depth, ErrNilState)
	}
	s.current.Store(next)

	err = s.effects.Run(effect.Context{
		Prev:     prev,
		Next:     next,
		Action:   applied,
		Dispatch: c.dispatch,
		GetState: s.GetState,
	})
	if err != nil {
		return nil, s.fail(ctx, StageEffects, applied, depth, err)
	}

	changed := !state.Equal(prev, next)
	if changed {
		s.metrics.RecordChange()
		s.enqueue(notice{state: s.GetState(), seq: s.listeners.Seq()})
	}

	s.emit(ctx, EventDispatchComplete, observability.LevelVerbose, "store.Dispatch", map[string]any{
		"action_type":             action.Describe(applied),
		"changed":                 changed,
		"depth":                   depth,
		observability.DurationKey: time.Since(start),
	})

	return applied, nil
}

// fail wraps err in a DispatchError unless a nested dispatch already did.
func (s *Store) fail(ctx context.Context, stage Stage, act action.Action, depth int, err error) error {
	var existing *DispatchError
	if errors.As(err, &existing) {
		return existing
	}

	s.metrics.RecordError()
	s.emit(ctx, EventError, observability.LevelError, "store.Dispatch", map[string]any{
		"stage":       string(stage),
		"action_type": action.Describe(act),
		"depth":       depth,
		"error":       err.Error(),
	})

	return &DispatchError{Stage: stage, Action: act, Depth: depth, Err: err}
}

// Subscribe registers l and invokes it once with the current state. The
// returned func unsubscribes l; calling it again is a no-op.
//
// Listeners run after every dispatch that changes the state, with the state
// committed at the end of that dispatch. The immediate call is queued behind
// notifications already pending, so l never runs concurrently with itself.
// It is delivered before Subscribe returns unless a dispatch is in progress or
// another goroutine is delivering, in which case it follows in order.
func (s *Store) Subscribe(l listener.Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	s.noticeMu.Lock()
	sub := s.listeners.Add(l)
	s.notices = append(s.notices, notice{state: s.GetState(), only: sub})
	s.noticeMu.Unlock()

	ctx := context.Background()
	s.emit(ctx, EventSubscribe, observability.LevelVerbose, "store.Subscribe", map[string]any{
		"subscription_id": sub.ID(),
		"listeners":       s.listeners.Len(),
	})

	if !s.active.Load() {
		s.drain()
	}

	return func() {
		if !s.listeners.Remove(sub) {
			return
		}
		s.emit(ctx, EventUnsubscribe, observability.LevelVerbose, "store.Subscribe", map[string]any{
			"subscription_id": sub.ID(),
			"listeners":       s.listeners.Len(),
		})
	}
}

// Consume dispatches every action received from actions until the channel is
// closed, ctx is done, or a dispatch fails.
//
// Returns nil when the channel closes, ctx.Err() on cancellation, and the
// dispatch error otherwise.
func (s *Store) Consume(ctx context.Context, actions <-chan action.Action) error {
	s.emit(ctx, EventConsumeStart, observability.LevelInfo, "store.Consume", map[string]any{})

	dispatched := 0
	for {
		select {
		case <-ctx.Done():
			s.emit(ctx, EventConsumeComplete, observability.LevelWarning, "store.Consume", map[string]any{
				"dispatched": dispatched,
				"error":      ctx.Err().Error(),
			})
			return ctx.Err()
		case act, ok := <-actions:
			if !ok {
				s.emit(ctx, EventConsumeComplete, observability.LevelInfo, "store.Consume", map[string]any{
					"dispatched": dispatched,
				})
				return nil
			}
			if _, err := s.Dispatch(act); err != nil {
				return fmt.Errorf("consume: %w", err)
			}
			dispatched++
		}
	}
}

func (s *Store) emit(ctx context.Context, t observability.EventType, level observability.Level, source string, data map[string]any) {
	event := observability.NewEvent(t, level, source, data)
	event.Data["store"] = s.name
	s.observer.OnEvent(ctx, event)
}
