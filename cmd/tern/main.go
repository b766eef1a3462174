// Package main is the entry point for the tern editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/tern-editor/tern/internal/app"
	"github.com/tern-editor/tern/internal/config"
	"github.com/tern-editor/tern/internal/renderer/backend"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	configPath string
	logFile    string
	logLevel   string
	overlay    bool
	file       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("tern %s (%s)\n", version, commit)
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	log, err := app.OpenLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Close()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: stdin is not a terminal")
		return 1
	}

	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: raw mode: %v\n", err)
		return 1
	}
	defer func() { _ = term.Restore(int(os.Stdin.Fd()), oldState) }()

	sink := backend.NewTerminalSink(os.Stdout)
	if err := sink.EnterScreen(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = sink.LeaveScreen() }()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}

	session, err := app.NewSession(cfg, sink,
		app.WithLogger(log),
		app.WithSize(width, height),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer session.Close()

	if opts.overlay {
		session.State().Overlay.Enabled = true
	}
	if opts.file != "" {
		if err := session.OpenFile(opts.file); err != nil {
			log.Error("open: %v", err)
			session.State().Message = err.Error()
		}
	}

	if err := eventLoop(session, log); err != nil && !errors.Is(err, app.ErrQuit) {
		log.Error("event loop: %v", err)
		return 1
	}
	return 0
}

// eventLoop pumps input bytes and resize signals through the session,
// rendering after every burst of events.
func eventLoop(session *app.Session, log *app.Logger) error {
	keys := make(chan byte, 64)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 64)
		for {
			n, err := os.Stdin.Read(buf)
			for i := 0; i < n; i++ {
				keys <- buf[i]
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)
	defer signal.Stop(winch)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	for {
		if _, err := session.RenderFrame(); err != nil {
			log.Error("render: %v", err)
		}

		select {
		case b := <-keys:
			if err := session.HandleKey(b); err != nil {
				return err
			}
			// Drain whatever arrived with this byte so pasted or
			// escape-sequence input coalesces into one frame.
			for done := false; !done; {
				select {
				case b := <-keys:
					if err := session.HandleKey(b); err != nil {
						return err
					}
				default:
					done = true
				}
			}

		case <-winch:
			w, h, err := term.GetSize(int(os.Stdout.Fd()))
			if err != nil {
				log.Warn("winch size: %v", err)
				continue
			}
			session.Resize(w, h)

		case err := <-readErr:
			return fmt.Errorf("stdin: %w", err)

		case <-quit:
			return app.ErrQuit
		}
	}
}

// loadConfig resolves the configuration file. A missing file falls back
// to defaults inside LoadTOML; a malformed one is always an error.
func loadConfig(opts options) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + "/.config/tern/tern.toml"
		}
	}
	cfg, err := config.LoadTOML(path)
	if err != nil {
		return config.Config{}, err
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, cfg.Validate()
}

func parseFlags() (options, bool) {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.logFile, "log-file", "", "Write logs to this file")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.overlay, "overlay", false, "Start with the render diagnostics overlay enabled")
	flag.BoolVar(&showVersion, "version", false, "Show version information")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tern - incremental-rendering terminal editor\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tern [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	opts.file = flag.Arg(0)
	return opts, showVersion
}
