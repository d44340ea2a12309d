package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tailored-agentic-units/statecore/observability"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  string
	}{
		{name: "trace range", level: 1, want: "TRACE"},
		{name: "verbose maps to DEBUG", level: observability.LevelVerbose, want: "DEBUG"},
		{name: "info maps to INFO", level: observability.LevelInfo, want: "INFO"},
		{name: "warning maps to WARN", level: observability.LevelWarning, want: "WARN"},
		{name: "error maps to ERROR", level: observability.LevelError, want: "ERROR"},
		{name: "fatal range", level: 21, want: "FATAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.String())
		})
	}
}

func TestLevel_SlogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level observability.Level
		want  slog.Level
	}{
		{name: "verbose maps to Debug", level: observability.LevelVerbose, want: slog.LevelDebug},
		{name: "info maps to Info", level: observability.LevelInfo, want: slog.LevelInfo},
		{name: "warning maps to Warn", level: observability.LevelWarning, want: slog.LevelWarn},
		{name: "error maps to Error", level: observability.LevelError, want: slog.LevelError},
		{name: "trace range logs at Debug", level: 2, want: slog.LevelDebug},
		{name: "fatal range logs at Error", level: 24, want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.level.SlogLevel())
		})
	}
}

func TestNewEvent(t *testing.T) {
	before := time.Now()
	event := observability.NewEvent("store.notify", observability.LevelVerbose, "store.Dispatch", nil)

	assert.Equal(t, observability.EventType("store.notify"), event.Type)
	assert.Equal(t, observability.LevelVerbose, event.Level)
	assert.Equal(t, "store.Dispatch", event.Source)
	assert.False(t, event.Timestamp.Before(before))
	require.NotNil(t, event.Data, "nil data is replaced")

	data := map[string]any{"listeners": 2}
	assert.Equal(t, data, observability.NewEvent("store.notify", observability.LevelVerbose, "store.Dispatch", data).Data)
}

func TestNoOpObserver(t *testing.T) {
	obs := observability.NoOpObserver{}
	obs.OnEvent(context.Background(), observability.Event{
		Type:      "test.event",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "test",
		Data:      map[string]any{"key": "value"},
	})
}

func TestMultiObserver(t *testing.T) {
	obs1 := &captureObserver{}
	obs2 := &captureObserver{}

	multi := observability.NewMultiObserver(obs1, nil, obs2)
	multi.OnEvent(context.Background(), observability.Event{
		Type:  "test.event",
		Level: observability.LevelInfo,
	})

	require.Len(t, obs1.events, 1)
	require.Len(t, obs2.events, 1)
	assert.Equal(t, observability.EventType("test.event"), obs1.events[0].Type)
}

func TestMultiObserver_Flatten(t *testing.T) {
	obs1 := &captureObserver{}
	obs2 := &captureObserver{}
	inner := observability.NewMultiObserver(obs1, observability.NoOpObserver{})

	multi := observability.NewMultiObserver(inner, obs2, (*observability.MultiObserver)(nil))
	assert.Equal(t, 1, inner.Len())
	assert.Equal(t, 2, multi.Len())

	multi.OnEvent(context.Background(), observability.Event{Type: "test.event"})
	assert.Len(t, obs1.events, 1)
	assert.Len(t, obs2.events, 1)
}

func TestSlogObserver_LevelMapping(t *testing.T) {
	tests := []struct {
		name      string
		level     observability.Level
		minLevel  slog.Level
		expectLog bool
	}{
		{name: "verbose at debug handler", level: observability.LevelVerbose, minLevel: slog.LevelDebug, expectLog: true},
		{name: "verbose at info handler", level: observability.LevelVerbose, minLevel: slog.LevelInfo, expectLog: false},
		{name: "info at info handler", level: observability.LevelInfo, minLevel: slog.LevelInfo, expectLog: true},
		{name: "info at warn handler", level: observability.LevelInfo, minLevel: slog.LevelWarn, expectLog: false},
		{name: "warning at warn handler", level: observability.LevelWarning, minLevel: slog.LevelWarn, expectLog: true},
		{name: "error at error handler", level: observability.LevelError, minLevel: slog.LevelError, expectLog: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: tt.minLevel}))

			observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
				Type:      "test.event",
				Level:     tt.level,
				Timestamp: time.Now(),
				Source:    "test",
			})

			assert.Equal(t, tt.expectLog, buf.Len() > 0, "buf: %q", buf.String())
		})
	}
}

func TestSlogObserver_EventTypeAsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:      "store.dispatch.complete",
		Level:     observability.LevelInfo,
		Timestamp: time.Now(),
		Source:    "store.Dispatch",
		Data: map[string]any{
			"changed":     true,
			"action_type": "INC",
		},
	})

	output := buf.String()
	assert.Contains(t, output, "store.dispatch.complete")
	assert.Contains(t, output, "source=store.Dispatch")
	assert.Contains(t, output, "severity=INFO")
	assert.Contains(t, output, "changed=true")
	assert.Less(t, strings.Index(output, "action_type"), strings.Index(output, "changed"), "data keys are sorted")
}

func TestSlogObserver_NilLogger(t *testing.T) {
	obs := observability.NewSlogObserver(nil)
	obs.OnEvent(context.Background(), observability.Event{Type: "test.event", Level: observability.LevelVerbose})
}

func TestRegistry_GetObserver(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "noop exists", key: "noop", wantErr: false},
		{name: "slog exists", key: "slog", wantErr: false},
		{name: "unknown fails", key: "nonexistent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := observability.GetObserver(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, obs)
		})
	}
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	custom := &captureObserver{}
	observability.RegisterObserver("test-custom", custom)

	obs, err := observability.GetObserver("test-custom")
	require.NoError(t, err)

	obs.OnEvent(context.Background(), observability.Event{Type: "test.event", Level: observability.LevelInfo})
	assert.Len(t, custom.events, 1)
}

func TestPrometheusObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := observability.NewPrometheusObserver(reg, "statecore")
	require.NoError(t, err)

	ctx := context.Background()
	obs.OnEvent(ctx, observability.Event{Type: "store.dispatch.complete", Source: "store", Data: map[string]any{
		observability.DurationKey: 3 * time.Millisecond,
	}})
	obs.OnEvent(ctx, observability.Event{Type: "store.dispatch.complete", Source: "store", Data: map[string]any{
		observability.DurationKey: 0.5,
	}})
	obs.OnEvent(ctx, observability.Event{Type: "store.notify", Source: "store"})

	expected := `
# HELP statecore_observer_events_total Number of observability events by type and source
# TYPE statecore_observer_events_total counter
statecore_observer_events_total{source="store",type="store.dispatch.complete"} 2
statecore_observer_events_total{source="store",type="store.notify"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "statecore_observer_events_total"))
	count, err := testutil.GatherAndCount(reg, "statecore_observer_event_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPrometheusObserver_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := observability.NewPrometheusObserver(reg, "dup")
	require.NoError(t, err)

	_, err = observability.NewPrometheusObserver(reg, "dup")
	assert.Error(t, err)
}

type captureObserver struct {
	events []observability.Event
}

func (c *captureObserver) OnEvent(ctx context.Context, event observability.Event) {
	c.events = append(c.events, event)
}

func TestSlogObserver_SeverityText(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	observability.NewSlogObserver(logger).OnEvent(context.Background(), observability.Event{
		Type:   "store.consume.complete",
		Level:  observability.LevelWarning,
		Source: "store.Consume",
	})

	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "severity=WARN")
}
