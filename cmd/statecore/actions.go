package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/effect"
	"github.com/tailored-agentic-units/statecore/state"
)

var (
	errInvalidJSON = errors.New("invalid JSON")
	errNoType      = errors.New(`action object needs a "type" string`)
	errNotAction   = errors.New("action must be an object or an array")

	errDispatchUsage = errors.New("usage: dispatch <json>")
)

// parseAction reads a JSON action. An object becomes a plain action and an
// array becomes a batch of its elements.
//
//	{"type":"ADD","payload":5}
//	[{"type":"INC"},{"type":"ADD_TODO","payload":"write docs"}]
func parseAction(input string) (action.Action, error) {
	if !gjson.Valid(input) {
		return nil, errInvalidJSON
	}
	return actionFrom(gjson.Parse(input))
}

func actionFrom(r gjson.Result) (action.Action, error) {
	switch {
	case r.IsObject():
		t := r.Get("type")
		if t.Type != gjson.String || t.String() == "" {
			return nil, errNoType
		}
		return action.New(t.String(), payloadFrom(r.Get("payload"))), nil
	case r.IsArray():
		elems := r.Array()
		batch := make(action.Batch, 0, len(elems))
		for i, elem := range elems {
			act, err := actionFrom(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			batch = append(batch, act)
		}
		return batch, nil
	default:
		return nil, errNotAction
	}
}

// payloadFrom converts a JSON payload to a Go value. Integral numbers become
// int so reducers can switch on them directly.
func payloadFrom(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.Number:
		f := r.Float()
		if f == math.Trunc(f) && math.Abs(f) <= math.MaxInt32 {
			return int(r.Int())
		}
		return f
	case gjson.String:
		return r.String()
	default:
		return r.Value()
	}
}

// transitionRecord renders a committed transition as a JSON object.
func transitionRecord(c effect.Context) (string, error) {
	record := "{}"
	fields := []struct {
		path  string
		value any
	}{
		{"action", action.Describe(c.Action)},
		{"kind", c.Action.Kind().String()},
		{"changed", !state.Equal(c.Prev, c.Next)},
		{"counter", c.Next.Value("counter")},
	}

	var err error
	for _, f := range fields {
		if record, err = sjson.Set(record, f.path, f.value); err != nil {
			return "", fmt.Errorf("failed to build record: %w", err)
		}
	}

	if p, ok := c.Action.(action.Plain); ok && p.Payload != nil {
		if record, err = sjson.Set(record, "payload", p.Payload); err != nil {
			return "", fmt.Errorf("failed to build record: %w", err)
		}
	}
	return record, nil
}
