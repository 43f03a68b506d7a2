package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/go-drift/scrollwatch/pkg/scroll"
	"github.com/go-drift/scrollwatch/pkg/terminal"
)

func init() {
	RegisterCommand(&Command{
		Name:  "tui",
		Short: "Page through a text file and watch its #labels",
		Long: `Open a text file in the terminal. Every line starting with "#word" is
watched, and the status bar shows the most recent events.

Keys:
  j, Down          Scroll one line down
  k, Up            Scroll one line up
  space, PgDn      Scroll one page down
  PgUp             Scroll one page up
  g, Home          Jump to the top
  G, End           Jump to the bottom
  q, Esc, Ctrl-C   Quit

Flags:
  -c, --config FILE    Config file for logging and debounce settings
  --log-file FILE      Write non-error logs to FILE (stderr is hidden by the screen)`,
		Usage: "scrollwatch tui <file> [-c file] [--log-file file]",
		Run:   runTUI,
	})
}

func runTUI(args []string) error {
	opts, err := parseArgs(args, []string{"-c", "--config", "--log-file"}, nil)
	if err != nil {
		return err
	}
	if len(opts.args) != 1 {
		return fmt.Errorf("a file is required\n\nUsage: scrollwatch tui <file>")
	}
	text, err := os.ReadFile(opts.args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", opts.args[0], err)
	}
	cfg, _, err := resolveConfig(opts.configPath)
	if err != nil {
		return err
	}
	log, closeLog, err := newLogger(cfg.Log, opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()

	doc, root, err := watchText(screen, string(text), log, scroll.WithResizeDebounce(cfg.Container.ResizeDebounce))
	if err != nil {
		return err
	}
	defer root.Destroy()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := doc.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// watchText lays text out on screen and watches every labeled line.
func watchText(screen tcell.Screen, text string, log *zap.Logger, opts ...scroll.Option) (*terminal.Document, *scroll.Container, error) {
	doc := terminal.New(screen, text, terminal.WithLogger(log))
	root := scroll.NewRoot(doc, append([]scroll.Option{
		scroll.WithLogger(log),
		scroll.WithObserver(doc),
	}, opts...)...)

	seen := make(map[string]bool)
	for _, line := range doc.Lines() {
		if line.Label == "" || seen[line.Label] {
			continue
		}
		seen[line.Label] = true
		if _, err := root.Create(scroll.Select("#" + line.Label)); err != nil {
			root.Destroy()
			return nil, nil, err
		}
	}
	log.Debug("watching labels", zap.Int("count", len(seen)))
	return doc, root, nil
}
