package store

import "github.com/tailored-agentic-units/statecore/observability"

// Store event types emitted during construction and dispatch.
const (
	EventCreate           observability.EventType = "store.create"
	EventDispatchStart    observability.EventType = "store.dispatch.start"
	EventDispatchComplete observability.EventType = "store.dispatch.complete"
	EventNotify           observability.EventType = "store.notify"
	EventSubscribe        observability.EventType = "store.subscribe"
	EventUnsubscribe      observability.EventType = "store.unsubscribe"
	EventError            observability.EventType = "store.error"
	EventConsumeStart     observability.EventType = "store.consume.start"
	EventConsumeComplete  observability.EventType = "store.consume.complete"
)
