// Command svgview serves live previews of SVG documents.
//
// Usage:
//
//	svgview [flags]
//
// Flags:
//
//	-addr string       Listen address (default: localhost:7337)
//	-root string       Directory whose SVG files are watched and listed (default: .)
//	-settings string   Path to the YAML render settings (default: .svgview.yaml)
//	-state string      Path to a file the open previews are saved to and restored from
//	-delay duration    Debounce window for change notifications (default: 300ms)
//	-tui               Show the terminal dashboard
//	-log-level string  Log level: debug, info, warn, error (default: info)
//	-log-file string   Write logs to this file instead of stderr
//	-open uri          Source to open on start; may be repeated
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/esteban-rocha/svgview"
	bt "github.com/esteban-rocha/svgview/bubbletea"
	"github.com/esteban-rocha/svgview/fs"
	"github.com/esteban-rocha/svgview/html"
	svgjson "github.com/esteban-rocha/svgview/json"
	"github.com/esteban-rocha/svgview/web"
	"github.com/esteban-rocha/svgview/workspace"
	"github.com/esteban-rocha/svgview/yaml"
)

const (
	defaultAddr         = "localhost:7337"
	defaultSettingsPath = ".svgview.yaml"
	shutdownTimeout     = 5 * time.Second
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "svgview: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		addr         = flag.String("addr", defaultAddr, "Listen address")
		root         = flag.String("root", ".", "Directory whose SVG files are watched and listed")
		settingsPath = flag.String("settings", defaultSettingsPath, "Path to the YAML render settings")
		statePath    = flag.String("state", "", "Path to save and restore open previews")
		delay        = flag.Duration("delay", svgview.DefaultDelay, "Debounce window for change notifications")
		tui          = flag.Bool("tui", false, "Show the terminal dashboard")
		logLevel     = flag.String("log-level", "info", "Log level: debug, info, warn, error")
		logFile      = flag.String("log-file", "", "Write logs to this file instead of stderr")
		open         uriList
	)
	flag.Var(&open, "open", "Source to open on start (repeatable)")
	flag.Parse()

	// Handle OS signals for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, closeLog, err := newLogger(*logLevel, *logFile, *tui)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	// Documents: editor buffers over the file system.
	source := fs.NewSource(*root)
	buffers := workspace.New(source, workspace.WithWriter(source))
	settings := yaml.NewStore(*settingsPath, yaml.WithLogger(logger))

	events := make(chan svgview.Event, 64)
	onEvent := func(e svgview.Event) {
		if !*tui {
			return
		}
		// The dashboard only shows the latest state; drop when it lags.
		select {
		case events <- e:
		default:
		}
	}

	manager := svgview.NewManager(buffers, settings, html.Renderer{},
		svgview.WithDelay(*delay),
		svgview.WithLogger(logger),
		svgview.WithEventHandler(onEvent),
	)
	defer manager.Dispose()
	manager.Watch(buffers)

	files, err := fs.NewWatcher(fs.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("watch files: %w", err)
	}
	defer files.Close()
	if err := files.Add(*root); err != nil {
		return fmt.Errorf("watch %s: %w", *root, err)
	}
	manager.Watch(files)

	stopSettings, err := watchSettings(*settingsPath, manager, logger)
	if err != nil {
		return err
	}
	defer stopSettings()

	server := web.NewServer(manager,
		web.WithBuffers(buffers),
		web.WithDocuments(func() ([]svgview.URI, error) { return fs.Find(*root, fs.DefaultPattern) }),
		web.WithResolver(source.Resolve),
		web.WithLogger(logger),
	)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	httpServer := &http.Server{Handler: server, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(ln)
	}()
	logger.Info("serving previews", "url", "http://"+ln.Addr().String())

	if *statePath != "" {
		st, err := loadState(*statePath)
		if err != nil {
			logger.Warn("state not restored", "path", *statePath, "err", err)
		}
		restore(ctx, server, manager, st, logger)
	}
	openAll(ctx, server, open, logger)

	if *tui {
		model := bt.New(manager, svgview.DefaultTheme(), bt.WithEvents(events), bt.WithClose(server.Close))
		go func() {
			// A failing listener ends the dashboard too.
			if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("serve", "err", err)
				stop()
			}
		}()
		if err := bt.Run(ctx, model); err != nil {
			return fmt.Errorf("TUI: %w", err)
		}
	} else {
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
		}
	}

	if *statePath != "" {
		st := svgjson.StateFromSurfaces(manager.Surfaces(), time.Now())
		if err := svgjson.Save(*statePath, st); err != nil {
			return fmt.Errorf("save state: %w", err)
		}
	}

	server.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newLogger builds the process logger. With the dashboard on and no log file,
// logs are discarded so they do not corrupt the screen.
func newLogger(level, path string, tui bool) (*slog.Logger, func(), error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}

	var out io.Writer = os.Stderr
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	case tui:
		out = io.Discard
	}
	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lvl})), closeFn, nil
}

// watchSettings refreshes every preview when the settings file changes. A
// settings file that does not exist yet is not watched.
func watchSettings(path string, manager *svgview.Manager, logger *slog.Logger) (func(), error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Info("settings file not found, using defaults", "path", path)
		return func() {}, nil
	}
	w, err := fs.NewWatcher(fs.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("watch settings: %w", err)
	}
	if err := w.Add(path); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch settings: %w", err)
	}
	unsubscribe := w.Subscribe(func(svgview.URI) {
		logger.Debug("settings changed", "path", path)
		manager.RefreshAll()
	})
	return func() {
		unsubscribe()
		_ = w.Close()
	}, nil
}
