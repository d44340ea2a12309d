package observability

import (
	"context"
	"log/slog"
	"maps"
	"slices"
)

// SlogObserver emits events to a slog.Logger. Event levels are mapped via
// SlogLevel and also recorded as the OTel severity text, the event type
// becomes the log message, and Data keys are flattened as top-level slog
// attributes in sorted order.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a SlogObserver that emits to the given logger, or
// to slog.Default when logger is nil.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (o *SlogObserver) OnEvent(ctx context.Context, event Event) {
	level := event.Level.SlogLevel()
	if !o.logger.Enabled(ctx, level) {
		return
	}

	attrs := make([]slog.Attr, 0, len(event.Data)+2)
	attrs = append(attrs,
		slog.String("source", event.Source),
		slog.String("severity", event.Level.String()),
	)
	for _, k := range slices.Sorted(maps.Keys(event.Data)) {
		attrs = append(attrs, slog.Any(k, event.Data[k]))
	}

	o.logger.LogAttrs(ctx, level, string(event.Type), attrs...)
}
