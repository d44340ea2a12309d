// Package listener keeps the ordered set of state subscribers.
package listener

import (
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/statecore/state"
)

// Listener receives the state after a change.
type Listener func(s *state.State)

// Subscription identifies one registered listener. Removal is by subscription
// identity, never by comparing listener funcs.
type Subscription struct {
	id       string
	seq      uint64
	listener Listener
}

// ID returns the subscription's unique UUIDv7 identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Registry is an ordered collection of listeners. All methods are safe for
// concurrent use.
type Registry struct {
	entries []*Subscription
	seq     uint64
	mu      sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends l and returns its subscription. A nil listener is not
// registered and yields a nil subscription.
func (r *Registry) Add(l Listener) *Subscription {
	if l == nil {
		return nil
	}

	sub := &Subscription{
		id:       uuid.Must(uuid.NewV7()).String(),
		listener: l,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	sub.seq = r.seq
	r.entries = append(r.entries, sub)
	return sub
}

// Seq returns the sequence number of the most recent Add. Subscriptions are
// numbered from 1 in registration order.
func (r *Registry) Seq() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seq
}

// Remove unregisters sub. Returns false when sub is nil or not registered, so
// repeated removal is a no-op.
func (r *Registry) Remove(sub *Subscription) bool {
	if sub == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	i := slices.Index(r.entries, sub)
	if i < 0 {
		return false
	}
	r.entries = slices.Delete(r.entries, i, i+1)
	return true
}

// NotifyAll invokes every listener with s, in subscription order, and returns
// how many were invoked.
//
// The listener set is snapshotted first: listeners added or removed while a
// notification is in progress take effect from the next one.
func (r *Registry) NotifyAll(s *state.State) int {
	return r.NotifyUpTo(s, math.MaxUint64)
}

// NotifyUpTo is NotifyAll restricted to subscriptions whose sequence number is
// at most seq, so a notification captured before a listener registered never
// reaches it.
func (r *Registry) NotifyUpTo(s *state.State, seq uint64) int {
	r.mu.RLock()
	snapshot := make([]*Subscription, 0, len(r.entries))
	for _, sub := range r.entries {
		if sub.seq <= seq {
			snapshot = append(snapshot, sub)
		}
	}
	r.mu.RUnlock()

	for _, sub := range snapshot {
		sub.listener(s)
	}
	return len(snapshot)
}

// Notify invokes sub's listener with s if sub is still registered.
func (r *Registry) Notify(sub *Subscription, s *state.State) bool {
	if sub == nil {
		return false
	}

	r.mu.RLock()
	registered := slices.Contains(r.entries, sub)
	r.mu.RUnlock()

	if !registered {
		return false
	}
	sub.listener(s)
	return true
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
