package listener_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/statecore/listener"
	"github.com/tailored-agentic-units/statecore/state"
)

func TestRegistry_NotifyAll_Order(t *testing.T) {
	r := listener.NewRegistry()
	var order []int

	for i := range 3 {
		r.Add(func(s *state.State) { order = append(order, i) })
	}

	n := r.NotifyAll(state.Empty())

	assert.Equal(t, 3, n)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestRegistry_NotifyAll_PassesState(t *testing.T) {
	r := listener.NewRegistry()
	s := state.Empty().With("counter", 5)

	var got *state.State
	r.Add(func(st *state.State) { got = st })
	r.NotifyAll(s)

	assert.Same(t, s, got)
}

func TestRegistry_Remove(t *testing.T) {
	r := listener.NewRegistry()
	var calls []string

	a := r.Add(func(s *state.State) { calls = append(calls, "a") })
	r.Add(func(s *state.State) { calls = append(calls, "b") })

	assert.True(t, r.Remove(a))
	assert.False(t, r.Remove(a), "second removal is a no-op")
	assert.False(t, r.Remove(nil))

	r.NotifyAll(state.Empty())
	assert.Equal(t, []string{"b"}, calls)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_RemoveByIdentity(t *testing.T) {
	r := listener.NewRegistry()
	var calls int
	fn := func(s *state.State) { calls++ }

	first := r.Add(fn)
	r.Add(fn)

	require.True(t, r.Remove(first))
	r.NotifyAll(state.Empty())

	assert.Equal(t, 1, calls, "the same func registered twice is two subscriptions")
}

func TestRegistry_AddNil(t *testing.T) {
	r := listener.NewRegistry()

	assert.Nil(t, r.Add(nil))
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_SubscriptionIDs(t *testing.T) {
	r := listener.NewRegistry()

	a := r.Add(func(s *state.State) {})
	b := r.Add(func(s *state.State) {})

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestRegistry_SnapshotDuringNotify(t *testing.T) {
	r := listener.NewRegistry()
	var calls []string

	var second *listener.Subscription
	r.Add(func(s *state.State) {
		calls = append(calls, "first")
		r.Remove(second)
		r.Add(func(s *state.State) { calls = append(calls, "added") })
	})
	second = r.Add(func(s *state.State) { calls = append(calls, "second") })

	r.NotifyAll(state.Empty())
	assert.Equal(t, []string{"first", "second"}, calls, "in-progress cycle uses the snapshot")

	calls = nil
	r.NotifyAll(state.Empty())
	assert.Equal(t, []string{"first", "added"}, calls[:2])
}

func TestRegistry_ConcurrentUse(t *testing.T) {
	r := listener.NewRegistry()
	var wg sync.WaitGroup

	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := r.Add(func(s *state.State) {})
			r.NotifyAll(state.Empty())
			r.Remove(sub)
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, r.Len())
}

func TestRegistry_NotifyUpTo(t *testing.T) {
	r := listener.NewRegistry()
	var calls []string

	r.Add(func(s *state.State) { calls = append(calls, "early") })
	seq := r.Seq()
	r.Add(func(s *state.State) { calls = append(calls, "late") })

	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, uint64(2), r.Seq())

	n := r.NotifyUpTo(state.Empty(), seq)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"early"}, calls)
}

func TestRegistry_Notify(t *testing.T) {
	r := listener.NewRegistry()
	calls := 0

	sub := r.Add(func(s *state.State) { calls++ })
	other := r.Add(func(s *state.State) { t.Fatal("only the target subscription is notified") })

	assert.True(t, r.Notify(sub, state.Empty()))
	assert.Equal(t, 1, calls)

	r.Remove(sub)
	assert.False(t, r.Notify(sub, state.Empty()), "removed subscriptions are skipped")
	assert.False(t, r.Notify(nil, state.Empty()))
	assert.Equal(t, 1, calls)
	assert.NotNil(t, other)
}
