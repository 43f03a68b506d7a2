package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/config"
	"github.com/go-drift/scrollwatch/cmd/scrollwatch/internal/scene"
	"github.com/go-drift/scrollwatch/pkg/clock"
	"github.com/go-drift/scrollwatch/pkg/diagnostics"
	"github.com/go-drift/scrollwatch/pkg/scroll"
)

func init() {
	RegisterCommand(&Command{
		Name:  "serve",
		Short: "Run a scene and inspect it over HTTP",
		Long: `Build the scene, run its script and keep serving the element snapshots
and event history until interrupted.

Endpoints:
  GET /health          Element and event counts
  GET /elements        Every element snapshot
  GET /elements/{id}   One element snapshot
  GET /events?since=N  Events after sequence N
  GET /ws              Live event stream (WebSocket)

Flags:
  -c, --config FILE    Scene file (default: nearest scrollwatch.yaml)
  --addr ADDR          Listen address (default: diagnostics.addr)
  --log-file FILE      Write non-error logs to FILE instead of stderr`,
		Usage: "scrollwatch serve [-c file] [--addr addr]",
		Run:   runServe,
	})
}

func runServe(args []string) error {
	opts, err := parseArgs(args, []string{"-c", "--config", "--addr", "--log-file"}, nil)
	if err != nil {
		return err
	}
	cfg, path, err := resolveConfig(opts.configPath)
	if err != nil {
		return err
	}
	addr := cfg.Diagnostics.Addr
	if opts.addr != "" {
		addr = opts.addr
	}

	log, closeLog, err := newLogger(cfg.Log, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log.Debug("config resolved", zap.String("path", path))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx, cfg.Scene, cfg.Container.ResizeDebounce, addr, log)
}

// serve runs the scene with a monitor attached and serves it until ctx is
// done.
func serve(ctx context.Context, cfg config.Scene, debounce time.Duration, addr string, log *zap.Logger) error {
	clk := clock.NewManual()
	monitor := diagnostics.NewMonitor(
		diagnostics.WithLogger(log),
		diagnostics.WithClock(clk),
	)
	s, err := scene.Build(cfg, scene.Options{
		Logger:         log,
		ResizeDebounce: debounce,
		Clock:          clk,
		Observers:      []scroll.Observer{monitor},
	})
	if err != nil {
		return err
	}
	defer s.Close()
	monitor.Capture(s.Root)

	port, err := monitor.Start(addr)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Serving diagnostics on port %d\n", port)

	if err := s.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("script failed", zap.Error(err))
	}
	monitor.Capture(s.Root)
	log.Info("script finished", zap.Int("events", len(monitor.Events(0))))

	<-ctx.Done()
	return monitor.Stop(context.Background())
}
