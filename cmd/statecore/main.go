package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tailored-agentic-units/statecore/config"
	"github.com/tailored-agentic-units/statecore/observability"
	"github.com/tailored-agentic-units/statecore/selector"
	"github.com/tailored-agentic-units/statecore/store"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to store config JSON file (optional)")
		history    = flag.String("history", "", "Path to the command history file (optional)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging to stderr")
	)
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = *loaded
	}

	var logger *slog.Logger
	if *verbose {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	} else {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}
	observability.RegisterObserver("slog", observability.NewSlogObserver(logger))

	registry := prometheus.NewRegistry()
	s, err := newStore(&cfg, registry, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to create store: %v", err)
	}

	repl := REPL{store: s, gatherer: registry, out: os.Stdout}
	if err := repl.Open(*history); err != nil {
		log.Fatalf("Failed to open terminal: %v", err)
	}
	defer repl.Close()

	fmt.Fprint(os.Stdout, usage)
	for {
		err := repl.Step()
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stdout, "%s\n", err.Error())
		}
	}
}

// newStore builds the demo store. Observer events go to the configured
// observer and to a Prometheus observer registered with reg. Counter changes
// are announced on w.
func newStore(cfg *config.StoreConfig, reg prometheus.Registerer, w io.Writer) (*store.Store, error) {
	base, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}

	prom, err := observability.NewPrometheusObserver(reg, "statecore")
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	s, err := store.NewFromConfig(cfg, demoPipeline(w),
		store.WithObserver(observability.NewMultiObserver(base, prom)),
	)
	if err != nil {
		return nil, err
	}

	counter, err := selector.New(selector.Section[int]("counter"), selector.DefaultSize)
	if err != nil {
		return nil, err
	}
	selector.Watch(s, counter, func(n int) {
		fmt.Fprintf(w, "counter = %d\n", n)
	})

	return s, nil
}
