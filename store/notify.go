package store

import (
	"context"

	"github.com/tailored-agentic-units/statecore/listener"
	"github.com/tailored-agentic-units/statecore/observability"
	"github.com/tailored-agentic-units/statecore/state"
)

// notice is one pending listener notification. A nil only targets every
// subscription registered at or before seq.
type notice struct {
	state *state.State
	seq   uint64
	only  *listener.Subscription
}

func (s *Store) enqueue(n notice) {
	s.noticeMu.Lock()
	s.notices = append(s.notices, n)
	s.noticeMu.Unlock()
}

func (s *Store) pop() (notice, bool) {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	if len(s.notices) == 0 {
		return notice{}, false
	}
	n := s.notices[0]
	s.notices[0] = notice{}
	s.notices = s.notices[1:]
	return n, true
}

func (s *Store) pending() bool {
	s.noticeMu.Lock()
	defer s.noticeMu.Unlock()
	return len(s.notices) > 0
}

// drain delivers queued notices in order. Only one goroutine drains at a time;
// a caller that finds a drain in progress returns and leaves its notices to
// that goroutine.
func (s *Store) drain() {
	for s.draining.CompareAndSwap(false, true) {
		s.deliverPending()
		if !s.pending() {
			return
		}
	}
}

func (s *Store) deliverPending() {
	defer s.draining.Store(false)

	for {
		n, ok := s.pop()
		if !ok {
			return
		}
		s.deliver(n)
	}
}

func (s *Store) deliver(n notice) {
	if n.only != nil {
		s.listeners.Notify(n.only, n.state)
		return
	}

	notified := s.listeners.NotifyUpTo(n.state, n.seq)
	s.metrics.RecordNotifications(notified)

	s.emit(context.Background(), EventNotify, observability.LevelVerbose, "store.Dispatch", map[string]any{
		"listeners": notified,
	})
}
