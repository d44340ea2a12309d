package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/tailored-agentic-units/statecore/action"
	"github.com/tailored-agentic-units/statecore/effect"
	"github.com/tailored-agentic-units/statecore/reducer"
	"github.com/tailored-agentic-units/statecore/store"
)

// Todo is one entry of the todos section.
type Todo struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

var counterReducer = reducer.Typed(0, func(n int, act action.Action) int {
	switch action.TypeOf(act) {
	case "INC":
		return n + 1
	case "DEC":
		return n - 1
	case "ADD":
		if delta, ok := payload(act).(int); ok {
			return n + delta
		}
	case "RESET":
		return 0
	}
	return n
})

var todosReducer = reducer.Typed([]Todo{}, func(todos []Todo, act action.Action) []Todo {
	switch action.TypeOf(act) {
	case "ADD_TODO":
		text, ok := payload(act).(string)
		if !ok || text == "" {
			return todos
		}
		return append(slices.Clip(todos), Todo{Text: text})
	case "TOGGLE_TODO":
		i, ok := payload(act).(int)
		if !ok || i < 0 || i >= len(todos) {
			return todos
		}
		next := slices.Clone(todos)
		next[i].Done = !next[i].Done
		return next
	case "CLEAR_DONE":
		if !slices.ContainsFunc(todos, func(t Todo) bool { return t.Done }) {
			return todos
		}
		return slices.DeleteFunc(slices.Clone(todos), func(t Todo) bool { return t.Done })
	}
	return todos
})

func payload(act action.Action) any {
	if p, ok := act.(action.Plain); ok {
		return p.Payload
	}
	return nil
}

// demoPipeline builds the counter and todos store. Every transition is
// written to w as a JSON record.
func demoPipeline(w io.Writer) store.Pipeline {
	root := reducer.MustCombine(
		reducer.NewSection("counter", counterReducer),
		reducer.NewSection("todos", todosReducer),
	)

	logTransition := effect.Func(func(c effect.Context) error {
		record, err := transitionRecord(c)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, record)
		return err
	})

	summarizeTodos := effect.Func(func(c effect.Context) error {
		todos, _ := c.Next.Value("todos").([]Todo)
		done := 0
		for _, t := range todos {
			if t.Done {
				done++
			}
		}
		_, err := fmt.Fprintf(w, "todos: %d open, %d done\n", len(todos)-done, done)
		return err
	})

	return store.Pipeline{
		Reducer: root,
		SideEffects: []effect.SideEffect{
			logTransition,
			effect.When(effect.Changed("todos"), summarizeTodos),
		},
	}
}
