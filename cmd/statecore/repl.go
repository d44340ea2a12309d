package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ergochat/readline"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tidwall/pretty"

	"github.com/tailored-agentic-units/statecore/store"
)

var completer = readline.NewPrefixCompleter(
	readline.PcItem("state"),
	readline.PcItem("dispatch"),
	readline.PcItem("metrics"),
	readline.PcItem("help"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

const usage = `commands:
  state              print the current state
  dispatch <json>    dispatch an action; an object is one action, an array a batch
  metrics            print store counters and observer metrics
  help               show this text
  exit, quit         leave
`

// REPL reads commands and runs them against a store.
type REPL struct {
	store    *store.Store
	gatherer prometheus.Gatherer
	out      io.Writer
	rl       *readline.Instance
}

func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

// Open starts line editing. history may be empty to disable history.
func (repl *REPL) Open(history string) (err error) {
	repl.rl, err = readline.NewEx(&readline.Config{
		Prompt:          "› ",
		HistoryFile:     history,
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return
	}
	repl.rl.CaptureExitSignal()
	return
}

func (repl *REPL) Close() error {
	if repl.rl != nil {
		_ = repl.rl.Close()
		repl.rl = nil
	}
	return nil
}

// Step reads and executes one line. It returns io.EOF when the session ends.
func (repl *REPL) Step() error {
	line, err := repl.rl.Readline()
	if err == readline.ErrInterrupt && len(line) != 0 {
		return nil
	}
	if err != nil {
		return err
	}
	return repl.Execute(line)
}

// Execute runs one command line.
func (repl *REPL) Execute(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "state":
		return repl.commandState()
	case "dispatch":
		return repl.commandDispatch(arg)
	case "metrics":
		return repl.commandMetrics()
	case "help":
		_, err := fmt.Fprint(repl.out, usage)
		return err
	case "exit", "quit":
		return io.EOF
	default:
		return fmt.Errorf("command unknown: %s", cmd)
	}
}

func (repl *REPL) commandState() error {
	data, err := repl.store.GetState().MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	_, err = repl.out.Write(pretty.Pretty(data))
	return err
}

func (repl *REPL) commandDispatch(arg string) error {
	if arg == "" {
		return errDispatchUsage
	}
	act, err := parseAction(arg)
	if err != nil {
		return err
	}
	_, err = repl.store.Dispatch(act)
	return err
}

func (repl *REPL) commandMetrics() error {
	snap := repl.store.Metrics()
	fmt.Fprintf(repl.out, "dispatches=%d nested=%d changes=%d notifications=%d errors=%d listeners=%d\n",
		snap.Dispatches, snap.Nested, snap.Changes, snap.Notifications, snap.Errors, snap.Listeners)

	if repl.gatherer == nil {
		return nil
	}
	families, err := repl.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s{%s} %g", mf.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s{%s} count=%d sum=%g", mf.GetName(), strings.Join(labels, ","),
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	_, err = fmt.Fprintln(repl.out, strings.Join(lines, "\n"))
	return err
}
