package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/strata/internal/api"
	"github.com/1broseidon/strata/internal/config"
	"github.com/1broseidon/strata/internal/daemon"
	"github.com/1broseidon/strata/internal/engine"
	"github.com/1broseidon/strata/internal/headless"
	"github.com/1broseidon/strata/internal/hotkeys"
	"github.com/1broseidon/strata/internal/ipc"
	"github.com/1broseidon/strata/internal/logging"
	"github.com/1broseidon/strata/internal/x11"
)

const fallbackOutputName = "HEADLESS-1"

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", pathFlagUsage)
	useX11 := fs.Bool("x11", false, "Probe outputs through X11 RandR and follow layout changes")
	apiAddr := fs.String("api", "", "Serve the HTTP API on this address (enables the API)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: strata daemon [--path PATH] [--x11] [--api ADDR]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run the layout engine in the foreground, controlled over the strata socket.")
		fmt.Fprintln(os.Stderr, "SIGHUP reloads the config; SIGINT/SIGTERM stop the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}
	cfg := res.Config

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid log level: %v\n", err)
		return 1
	}
	logger := logging.New(os.Stderr, level)
	logger.Info("configuration loaded", "workspaces", cfg.Workspaces, "files", len(res.Files))

	eng, err := engine.New(cfg, logger.With("component", "engine"))
	if err != nil {
		logger.Error("failed to create engine", "err", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var display *x11Outputs
	if *useX11 {
		display, err = startX11(ctx, eng, logger.With("component", "x11"))
		if err != nil {
			logger.Error("failed to connect to display", "err", err)
			return 1
		}
		defer display.close()
	}
	if len(eng.Outputs()) == 0 {
		fb := cfg.General.FallbackOutput
		eng.AddOutput(headless.NewOutput(fallbackOutputName, fb.Width, fb.Height))
		logger.Info("using headless output", "output", fallbackOutputName, "width", fb.Width, "height", fb.Height)
	}

	reloadChan := make(chan struct{}, 1)

	ipcServer, err := ipc.NewServer(eng, *path, reloadChan, logger.With("component", "ipc"))
	if err != nil {
		logger.Error("failed to create IPC server", "err", err)
		return 1
	}
	if err := ipcServer.Start(); err != nil {
		logger.Error("failed to start IPC server", "err", err)
		return 1
	}
	defer ipcServer.Stop()
	logger.Info("listening", "socket", ipcServer.SocketPath(), "session", ipcServer.SessionID())

	if cfg.API.Enabled || *apiAddr != "" {
		addr := cfg.API.Listen
		if *apiAddr != "" {
			addr = *apiAddr
		}
		apiServer := api.NewServer(eng, addr, logger.With("component", "api"))
		go func() {
			if err := apiServer.Run(ctx); err != nil {
				logger.Error("API server stopped", "err", err)
			}
		}()
		logger.Info("API listening", "addr", addr)
	}

	checker := daemon.NewChecker(daemon.CheckerConfig{
		Interval: cfg.CheckInterval(),
		Logger:   logger.With("component", "checker"),
	}, eng)
	checker.CheckNow()
	go checker.Run(ctx)

	// Components that follow config changes beyond the engine itself.
	applyConfig := func(cfg *config.Config) {
		checker.SetInterval(cfg.CheckInterval())
		if display != nil {
			display.probe()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	logger.Info("strata daemon started")
	for {
		select {
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				logger.Info("received SIGHUP, reloading config")
				res, err := loadConfig(*path)
				if err != nil {
					logger.Error("config reload failed", "err", err)
					continue
				}
				if err := eng.UpdateConfig(res.Config); err != nil {
					logger.Error("config reload failed", "err", err)
					continue
				}
				applyConfig(res.Config)

			case os.Interrupt, syscall.SIGTERM:
				logger.Info("shutting down strata daemon")
				return 0
			}

		case <-reloadChan:
			// The IPC server already applied the new config to the engine.
			applyConfig(eng.Config())
		}
	}
}

// x11Outputs keeps the engine's outputs in line with the RandR layout and
// mirrors workspace state into EWMH desktop hints.
type x11Outputs struct {
	conn    *x11.Connection
	eng     *engine.Engine
	sync    *daemon.OutputSynchronizer
	hotkeys *hotkeys.Handler
	logger  *slog.Logger

	unsubscribe func()
}

func startX11(ctx context.Context, eng *engine.Engine, logger *slog.Logger) (*x11Outputs, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, err
	}
	d := &x11Outputs{
		conn:   conn,
		eng:    eng,
		sync:   daemon.NewOutputSynchronizer(eng, logger),
		logger: logger,
	}
	d.probe()

	// Resume on the desktop a previous session left current.
	if cur, err := conn.GetCurrentDesktop(); err == nil && cur > 0 && cur < eng.Config().Workspaces {
		if err := eng.Activate(cur); err != nil {
			logger.Warn("failed to adopt current desktop", "desktop", cur, "err", err)
		}
	}

	snap := eng.Snapshot()
	if err := conn.PublishDesktops(len(snap.Workspaces), snap.Current); err != nil {
		logger.Warn("failed to publish desktops", "err", err)
	}

	events, unsubscribe := eng.Subscribe(0)
	d.unsubscribe = unsubscribe
	go d.followWorkspaces(ctx, events)
	go x11.NewWatcher(conn, time.Second, logger, d.probe).Run(ctx)

	if cfg := eng.Config(); cfg.Hotkeys.Enabled {
		d.hotkeys = hotkeys.NewHandler(conn.XUtil, conn.Root, eng, logger.With("component", "hotkeys"))
		if err := d.hotkeys.RegisterAll(hotkeys.DefaultBindings(cfg.Hotkeys.Modifier, cfg.Workspaces)); err != nil {
			logger.Warn("some hotkeys are unavailable", "err", err)
		}
		go d.hotkeys.Run()
	}
	return d, nil
}

func (d *x11Outputs) close() {
	if d.unsubscribe != nil {
		d.unsubscribe()
	}
	if d.hotkeys != nil {
		d.hotkeys.Stop()
	}
	if d.conn != nil {
		d.conn.Close()
	}
}

func (d *x11Outputs) probe() {
	outs, err := d.conn.Outputs(d.eng.Config(), d.logger)
	if err != nil {
		d.logger.Warn("output probe failed", "err", err)
		return
	}
	if len(outs) == 0 {
		d.logger.Warn("no active outputs reported by RandR")
		return
	}
	if res := d.sync.Sync(outs); !res.Empty() {
		d.logger.Info("outputs synced", "added", res.Added, "changed", res.Changed, "removed", res.Removed)
	}
}

func (d *x11Outputs) followWorkspaces(ctx context.Context, events <-chan engine.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Type != engine.EventActivated {
				continue
			}
			if err := d.conn.SetCurrentDesktop(ev.Workspace); err != nil {
				d.logger.Warn("failed to set current desktop", "err", err)
			}
		}
	}
}
