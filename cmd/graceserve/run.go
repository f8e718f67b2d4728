package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yndnr/graceserve/internal/infra/buildinfo"
	"github.com/yndnr/graceserve/internal/infra/confloader"
	"github.com/yndnr/graceserve/internal/infra/shutdown"
	"github.com/yndnr/graceserve/internal/server/config"
	"github.com/yndnr/graceserve/internal/server/httpserver"
	"github.com/yndnr/graceserve/internal/telemetry/logger"
	"github.com/yndnr/graceserve/internal/telemetry/metric"
)

// options carries the command-line inputs of run.
type options struct {
	configFile string
	overrides  map[string]any

	// shutdownOpts are appended to the coordinator options.
	shutdownOpts []shutdown.Option

	// onReady is called with the bound address once the server accepts
	// connections.
	onReady func(addr string)
}

// run starts the server and blocks until the shutdown sequence ends.
// It returns the process exit status; a non-nil error means startup failed.
func run(ctx context.Context, opts options) (int, error) {
	cfg, err := config.Load(opts.configFile, opts.overrides)
	if err != nil {
		return 1, fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return 1, fmt.Errorf("init logger: %w", err)
	}

	info := buildinfo.Get()
	log.Info("starting graceserve",
		"version", info.Version,
		"commit", info.Commit,
		"go_version", info.GoVersion,
		"config", opts.configFile,
		"env", cfg.App.Env)

	var reg *metric.Registry
	if cfg.Metrics.Enabled {
		reg = metric.NewRegistry(metric.DefaultNamespace)
		reg.SetBuildInfo(info.Version, info.Commit, info.GoVersion)
	}

	var coord *shutdown.Coordinator
	draining := func() bool { return coord.Draining() }

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		Logger:      log,
		Metrics:     reg,
		MetricsPath: cfg.Metrics.Path,
		Draining:    draining,
		Env:         cfg.App.Env,
		Message:     cfg.App.Message,
		RateLimit:   cfg.Server.RateLimit,
		AccessLog:   true,
	})

	srv := httpserver.New(cfg.Server.Addr(), router,
		httpserver.WithReadHeaderTimeout(cfg.Server.Timeouts.Header),
		httpserver.WithIdleTimeout(cfg.Server.Timeouts.Idle),
		httpserver.WithErrorLog(log.Slog()),
	)

	coordOpts := []shutdown.Option{shutdown.WithLogger(log)}
	if reg != nil {
		coordOpts = append(coordOpts, shutdown.WithObserver(reg))
	}
	coord = shutdown.New(srv, append(coordOpts, opts.shutdownOpts...)...)

	if reg != nil {
		if err := reg.Register(metric.NewDrainCollector(metric.DefaultNamespace, draining)); err != nil {
			return 1, fmt.Errorf("register drain collector: %w", err)
		}
	}

	if err := srv.Listen(); err != nil {
		return 1, err
	}

	if opts.configFile != "" {
		watcher, err := startWatcher(opts, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			coord.OnShutdown("config-watcher", func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		err := srv.Serve()
		if err != nil {
			log.Error("HTTP server error", "error", err)
			coord.Trigger()
		}
		serveErr <- err
	}()

	log.Info("HTTP server listening", "addr", srv.Addr())
	if opts.onReady != nil {
		opts.onReady(srv.Addr())
	}

	res := coord.Run(ctx)

	code := res.ExitCode()
	if err := <-serveErr; err != nil {
		code = 1
	}
	log.Info("server stopped",
		"outcome", res.Outcome.String(),
		"exit_code", code)
	return code, nil
}

// initLogger creates the process logger and installs it as the default.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return nil, err
	}

	logger.SetDefault(log)
	return log, nil
}

// startWatcher reloads the log level whenever the config file changes.
func startWatcher(opts options, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(confloader.WithWatcherLogger(log.Slog()))
	if err != nil {
		return nil, err
	}

	if err := watcher.Watch(opts.configFile); err != nil {
		watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := config.Load(opts.configFile, opts.overrides)
		if err != nil {
			log.Warn("config reload failed, keeping current settings", "file", path, "error", err)
			return
		}
		if cfg.Log.Level == logger.GetLevel() {
			return
		}
		logger.SetLevel(cfg.Log.Level)
		log.Info("log level reloaded", "file", path, "level", cfg.Log.Level)
	})

	watcher.StartAsync()
	return watcher, nil
}
