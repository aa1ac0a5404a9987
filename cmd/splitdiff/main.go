// Package main is the entry point for the splitdiff viewer.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/dshills/splitdiff/internal/config"
	"github.com/dshills/splitdiff/internal/diff/compute"
	"github.com/dshills/splitdiff/internal/engine/buffer"
	"github.com/dshills/splitdiff/internal/layout"
	"github.com/dshills/splitdiff/internal/log"
	"github.com/dshills/splitdiff/internal/sched"
	"github.com/dshills/splitdiff/internal/session"
	"github.com/dshills/splitdiff/internal/tui"
	"github.com/dshills/splitdiff/internal/view"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, pathA, pathB, ok := parseFlags()
	if !ok {
		return 1
	}

	logger, err := log.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	bufA, err := readFile(pathA)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	bufB, err := readFile(pathB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	viewA := layout.NewView(bufA, layout.WithTabWidth(cfg.TabWidth))
	viewB := layout.NewView(bufB, layout.WithTabWidth(cfg.TabWidth))

	sess := session.New(
		session.Pane{Buffer: bufA, View: viewA},
		session.Pane{Buffer: bufB, View: viewB},
		sched.RealClock{}, logger,
		sched.WithDebounce(time.Duration(cfg.DebounceMS)*time.Millisecond),
	)
	defer sess.Dispose()

	opts := compute.Options{IgnoreWhitespace: cfg.IgnoreWhitespace}
	if cfg.DiffCommand != "" {
		opts.Command = strings.Fields(cfg.DiffCommand)
	}
	if err := sess.ComputeDiff(context.Background(), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: diff failed: %v\n", err)
		return 1
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create terminal: %v\n", err)
		return 1
	}

	app := tui.New(screen, sess, cfg, pathA, pathB, logger)
	app.Reload = func() error {
		return reload(sess, pathA, pathB)
	}

	watcher := startWatcher(cfg, sess, app, pathA, pathB, opts, logger)
	if watcher != nil {
		defer func() { _ = watcher.Close() }()
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		screen.Fini()
		os.Exit(0)
	}()

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// startWatcher wires live refresh: when either diffed file changes on
// disk, reload it and rerun the diff. Watch failures degrade to manual
// refresh only.
func startWatcher(cfg config.Config, sess *session.Session, app *tui.App, pathA, pathB string, opts compute.Options, logger *zap.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(time.Duration(cfg.DebounceMS)*time.Millisecond, logger)
	if err != nil {
		logger.Warn("file watching disabled", zap.Error(err))
		return nil
	}

	for _, p := range []string{pathA, pathB} {
		if err := watcher.Watch(p); err != nil {
			logger.Warn("file watching disabled", zap.String("path", p), zap.Error(err))
			_ = watcher.Close()
			return nil
		}
	}

	watcher.OnChange(func(path string) {
		if err := reload(sess, pathA, pathB); err != nil {
			logger.Warn("reload failed", zap.Error(err))
			return
		}
		if err := sess.ComputeDiff(context.Background(), opts); err != nil {
			if !errors.Is(err, compute.ErrSuperseded) {
				logger.Warn("diff refresh failed", zap.Error(err))
			}
			return
		}
		app.Refresh()
	})
	return watcher
}

func reload(sess *session.Session, pathA, pathB string) error {
	for side, path := range map[view.Side]string{view.SideA: pathA, view.SideB: pathB} {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		fresh := buffer.FromString(string(data))
		buf := sess.Pane(side).Buffer
		lines, err := fresh.Lines(view.LineRange{Start: 0, End: fresh.LineCount()})
		if err != nil {
			return err
		}
		if err := buf.ReplaceLineRange(view.LineRange{Start: 0, End: buf.LineCount()}, lines); err != nil {
			return fmt.Errorf("refreshing %s: %w", path, err)
		}
	}
	return nil
}

func readFile(path string) (*buffer.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return buffer.FromString(string(data)), nil
}

func parseFlags() (config.Config, string, string, bool) {
	var configPath, logLevel string
	var ignoreWS, noWrap, noWordDiff, showVersion bool

	flag.StringVar(&configPath, "config", "", "Path to configuration file (YAML or TOML)")
	flag.StringVar(&configPath, "c", "", "Path to configuration file (shorthand)")
	flag.BoolVar(&ignoreWS, "w", false, "Ignore whitespace changes")
	flag.BoolVar(&noWrap, "no-wrap", false, "Disable soft line wrap")
	flag.BoolVar(&noWordDiff, "no-word-diff", false, "Disable intra-line word highlighting")
	flag.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "splitdiff - side-by-side diff viewer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: splitdiff [options] <old-file> <new-file>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("splitdiff %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, "", "", false
	}
	if ignoreWS {
		cfg.IgnoreWhitespace = true
	}
	if noWrap {
		cfg.Wrap = false
	}
	if noWordDiff {
		cfg.WordDiff = false
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	if flag.NArg() != 2 {
		flag.Usage()
		return cfg, "", "", false
	}
	return cfg, flag.Arg(0), flag.Arg(1), true
}
