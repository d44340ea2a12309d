package observability

import "context"

// NoOpObserver discards all events.
type NoOpObserver struct{}

func (NoOpObserver) OnEvent(ctx context.Context, event Event) {}

// MultiObserver fans out events to several observers in the order given.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver combines observers. Nil and NoOpObserver members are
// dropped and nested MultiObservers are flattened into their members.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	m := &MultiObserver{}
	for _, o := range observers {
		switch o := o.(type) {
		case nil, NoOpObserver:
		case *MultiObserver:
			if o != nil {
				m.observers = append(m.observers, o.observers...)
			}
		default:
			m.observers = append(m.observers, o)
		}
	}
	return m
}

// Len returns the number of observers events fan out to.
func (m *MultiObserver) Len() int {
	return len(m.observers)
}

func (m *MultiObserver) OnEvent(ctx context.Context, event Event) {
	for _, o := range m.observers {
		o.OnEvent(ctx, event)
	}
}
