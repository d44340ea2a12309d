package observability

import (
	"fmt"
	"log/slog"

	"github.com/puzpuzpuz/xsync/v3"
)

var observers = newRegistry()

func newRegistry() *xsync.MapOf[string, Observer] {
	m := xsync.NewMapOf[string, Observer]()
	m.Store("noop", NoOpObserver{})
	m.Store("slog", NewSlogObserver(slog.Default()))
	return m
}

// GetObserver returns a registered observer by name.
// Pre-registered observers: "noop" (NoOpObserver) and "slog" (default logger).
func GetObserver(name string) (Observer, error) {
	obs, exists := observers.Load(name)
	if !exists {
		return nil, fmt.Errorf("unknown observer: %s", name)
	}
	return obs, nil
}

// RegisterObserver adds or replaces a named observer in the global registry.
func RegisterObserver(name string, observer Observer) {
	observers.Store(name, observer)
}
