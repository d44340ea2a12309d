// Package config holds the JSON-serializable configuration for stores.
//
// Configuration is used only during initialization and then transformed into
// domain objects: observer names resolve through the observability registry.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

const (
	defaultName     = "store"
	defaultObserver = "slog"
	defaultMaxDepth = 256
)

// StoreConfig defines configuration for a store.
//
// Example JSON:
//
//	{
//	  "name": "app",
//	  "observer": "slog",
//	  "max_depth": 64
//	}
type StoreConfig struct {
	// Name identifies the store in observability events
	Name string `json:"name"`

	// Observer specifies which observer implementation to use ("noop", "slog", etc.)
	Observer string `json:"observer"`

	// MaxDepth bounds nested dispatch depth (0 = unlimited). Nil leaves the
	// default in place, so an explicit 0 survives Merge.
	MaxDepth *int `json:"max_depth,omitempty"`
}

// Default returns sensible defaults for a store.
//
// Default values:
//   - Name: "store"
//   - Observer: "slog" for structured logging
//   - MaxDepth: 256 to turn runaway reentrant dispatch into an error
func Default() StoreConfig {
	return StoreConfig{
		Name:     defaultName,
		Observer: defaultObserver,
		MaxDepth: ptr(defaultMaxDepth),
	}
}

// Merge applies non-zero values from source into c. A non-nil MaxDepth is
// copied even when it points at 0.
func (c *StoreConfig) Merge(source *StoreConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxDepth != nil {
		c.MaxDepth = ptr(*source.MaxDepth)
	}
}

// Load reads a JSON config file, merges it with defaults, and returns the
// resulting StoreConfig.
func Load(filename string) (*StoreConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded StoreConfig
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}

// Depth returns the configured depth bound, or the default when unset.
func (c *StoreConfig) Depth() int {
	if c.MaxDepth == nil {
		return defaultMaxDepth
	}
	return *c.MaxDepth
}

func ptr[T any](v T) *T {
	return &v
}
