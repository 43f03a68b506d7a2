package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/scene"
	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/diagnostics"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

func init() {
	RegisterCommand(&Command{
		Name:  "simulate",
		Short: "Run a scene script and print the events",
		Long: `Build the scene described in scrollwatch.yaml, run its script and print
one line per event: elapsed scene time, watcher, event, top and bottom.

Waits advance a simulated clock, so scripts finish immediately.

Flags:
  -c, --config FILE    Scene file (default: nearest scrollwatch.yaml)
  --json               Print the event records as a JSON array instead
  --log-file FILE      Write non-error logs to FILE instead of stderr

Examples:
  scrollwatch simulate
  scrollwatch simulate -c demo.yaml --json`,
		Usage: "scrollwatch simulate [-c file] [--json] [--log-file file]",
		Run:   runSimulate,
	})
}

func runSimulate(args []string) error {
	opts, err := parseArgs(args, []string{"-c", "--config", "--log-file"}, []string{"--json"})
	if err != nil {
		return err
	}
	if len(opts.args) > 0 {
		return fmt.Errorf("unexpected argument %q\n\nUsage: scrollwatch simulate [-c file] [--json]", opts.args[0])
	}

	cfg, path, err := resolveConfig(opts.configPath)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg.Log, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Debug("config resolved", zap.String("path", path), zap.String("version", cfg.Version))

	clk := clock.NewManual()
	var out io.Writer = stdout
	var observers []scroll.Observer
	var monitor *diagnostics.Monitor
	if opts.json {
		out = io.Discard
		monitor = diagnostics.NewMonitor(
			diagnostics.WithLogger(log),
			diagnostics.WithClock(clk),
			diagnostics.WithHistory(1<<16),
		)
		observers = append(observers, monitor)
	}

	s, err := scene.Build(cfg.Scene, scene.Options{
		Logger:         log,
		Out:            out,
		ResizeDebounce: cfg.Container.ResizeDebounce,
		Clock:          clk,
		Observers:      observers,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := s.Run(ctx)

	if monitor != nil {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(monitor.Events(0)); err != nil {
			return fmt.Errorf("failed to write events: %w", err)
		}
	}
	return runErr
}
