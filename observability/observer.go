// Package observability reports what a store does as a stream of events:
// creation, each dispatch and its outcome, listener notification and
// subscription changes. Observers turn the stream into logs or metrics.
//
// Event levels use OpenTelemetry SeverityNumbers so events can be exported to
// an OTel collector without translation.
package observability

import (
	"context"
	"log/slog"
	"time"
)

// Level is an OTel SeverityNumber.
type Level int

// Levels the store emits. Each sits at the bottom of its OTel range.
const (
	LevelVerbose Level = 5
	LevelInfo    Level = 9
	LevelWarning Level = 13
	LevelError   Level = 17
)

// severity describes one OTel severity range, closed at its upper bound.
type severity struct {
	upTo Level
	text string
	slog slog.Level
}

var severities = []severity{
	{upTo: 4, text: "TRACE", slog: slog.LevelDebug},
	{upTo: 8, text: "DEBUG", slog: slog.LevelDebug},
	{upTo: 12, text: "INFO", slog: slog.LevelInfo},
	{upTo: 16, text: "WARN", slog: slog.LevelWarn},
	{upTo: 20, text: "ERROR", slog: slog.LevelError},
}

var fatal = severity{text: "FATAL", slog: slog.LevelError}

func (l Level) severity() severity {
	for _, s := range severities {
		if l <= s.upTo {
			return s
		}
	}
	return fatal
}

// String returns the OTel severity text of the range l falls in.
func (l Level) String() string {
	return l.severity().text
}

// SlogLevel returns the slog level a log line for l is written at.
func (l Level) SlogLevel() slog.Level {
	return l.severity().slog
}

// EventType names an event, namespaced by the emitting package
// ("store.dispatch.start").
type EventType string

// Event is one observation. It lines up with an OTel LogRecord: Type is the
// event name, Level the severity number, Source the instrumentation scope and
// Data the attributes.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// NewEvent stamps an event with the current time. A nil data map is replaced
// with an empty one so observers can read it without checking.
func NewEvent(t EventType, level Level, source string, data map[string]any) Event {
	if data == nil {
		data = map[string]any{}
	}
	return Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	}
}

// Observer receives store events.
//
// OnEvent is called synchronously from inside a dispatch, so it must not
// dispatch itself and should return quickly.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}
