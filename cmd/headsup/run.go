package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"headsup-hq/headsup/pkg/cli"
	"headsup-hq/headsup/pkg/config"
	"headsup-hq/headsup/pkg/engine"
	"headsup-hq/headsup/pkg/heuristic"
	"headsup-hq/headsup/pkg/journal"
	"headsup-hq/headsup/pkg/journal/recorder"
	"headsup-hq/headsup/pkg/journal/retention"
	"headsup-hq/headsup/pkg/router"
	"headsup-hq/headsup/pkg/telemetry/health"
	"headsup-hq/headsup/pkg/telemetry/logging"
	"headsup-hq/headsup/pkg/telemetry/metrics"
	"headsup-hq/headsup/pkg/telemetry/tracing"
)

// startEngine spawns one backend. Tests replace it with in-memory engines.
var startEngine = func(cfg config.EngineConfig, opts engine.Options) (*engine.Supervisor, error) {
	return engine.Start(engine.ProcessConfig{
		Path: cfg.Path,
		Args: cfg.Args,
		Dir:  cfg.Dir,
	}, opts)
}

func runAdapter(cmd *cobra.Command, args []string) error {
	if err := config.LoadDotEnv(filepath.Join(filepath.Dir(cfgFile), ".env")); err != nil {
		return cli.NewConfigError(cfgFile, "failed to load .env", err)
	}
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError(cfgFile, "failed to load configuration", err)
	}
	cfg := config.GetConfig()

	ctx, stop := cli.SignalContext(cmd.Context())
	defer stop()

	return serve(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout())
}

// serve runs the adapter until the GUI sends quit, closes its input or ctx
// is cancelled.
func serve(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	logger, err := logging.New(logging.Config{
		Enabled:   cfg.Log,
		File:      cfg.Logging.File,
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})
	if err != nil {
		return cli.NewConfigError(cfgFile, "invalid logging settings", err)
	}
	defer logger.Shutdown()

	log := logger.Slog()
	slog.SetDefault(log)
	log.Info("headsup starting",
		"version", Version,
		"config", cfgFile,
		"piece_value_switch", cfg.Switch.PieceValue,
		"move_number_switch", cfg.Switch.MoveNumber,
	)

	// Metrics
	collector := metrics.NewCollector(&metrics.Config{
		Enabled: cfg.Metrics.ListenAddress != "",
	}, nil)
	checker := health.New(time.Second)
	if cfg.Metrics.ListenAddress != "" {
		srv, err := collector.Listen(cfg.Metrics.ListenAddress, cfg.Metrics.Path, log)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		checker.Mount(srv, Version, GitCommit, BuildDate)
		metricsCtx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			if err := srv.Serve(metricsCtx); err != nil {
				log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	// Tracing
	tracer, err := tracing.New(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		Timeout:        cfg.Tracing.Timeout,
		Sampler:        cfg.Tracing.Sampler,
		SampleRatio:    cfg.Tracing.SampleRatio,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: Version,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Warn("failed to flush traces", "error", err)
		}
	}()

	observers := engine.MultiObserver{collector, tracer}

	// Journal
	j, err := openJournal(ctx, cfg, log)
	if err != nil {
		return err
	}
	if j != nil {
		defer j.Close()
		observers = append(observers, j.recorder)
	}

	output := router.NewOutput(out, log)

	a, b, err := startEngines(ctx, cfg, output.WriteLine, observers, log)
	if err != nil {
		return err
	}
	for _, sup := range []*engine.Supervisor{a, b} {
		collector.MarkUp(sup.Label())
		checker.RegisterCheck(sup.Label(), func(ctx context.Context) error {
			return sup.Err()
		})
	}

	reload := make(chan heuristic.Thresholds, 1)
	if cfg.Watch {
		stopWatch, err := watchConfig(ctx, cfgFile, reload, log)
		if err != nil {
			log.Warn("configuration watch disabled", "error", err)
		} else {
			defer stopWatch()
		}
	}

	r := router.New(a, b, output, router.Options{
		Version:     Version,
		Thresholds:  thresholdsFrom(cfg),
		Reload:      reload,
		QuitTimeout: cfg.Supervisor.QuitTimeout + 2*time.Second,
		OnSelect: func(sel router.Selection) {
			collector.RecordSelection(sel.Backend.String(), sel.Changed)
		},
		Logger: log,
	})

	err = r.Run(ctx, in)
	if errors.Is(err, context.Canceled) {
		log.Info("shutdown signal received")
		return nil
	}
	return err
}

// startEngines spawns and initializes both backends. If either fails, the
// ones already running are shut down.
func startEngines(ctx context.Context, cfg *config.Config, relay func(string), observer engine.Observer, log *slog.Logger) (*engine.Supervisor, *engine.Supervisor, error) {
	engines := []struct {
		label string
		cfg   config.EngineConfig
	}{
		{heuristic.BackendA.String(), cfg.Engines.Engine1},
		{heuristic.BackendB.String(), cfg.Engines.Engine2},
	}

	started := make([]*engine.Supervisor, 0, len(engines))
	fail := func(err error) (*engine.Supervisor, *engine.Supervisor, error) {
		quitCtx, cancel := context.WithTimeout(context.Background(), cfg.Supervisor.QuitTimeout+time.Second)
		defer cancel()
		for _, s := range started {
			if qerr := s.Quit(quitCtx); qerr != nil {
				log.Warn("engine quit failed", "engine", s.Label(), "error", qerr)
			}
		}
		return nil, nil, cli.NewCommandError("run", err)
	}

	for _, e := range engines {
		sup, err := startEngine(e.cfg, supervisorOptions(cfg, e.label, relay, observer, log))
		if err != nil {
			return fail(fmt.Errorf("failed to start %s: %w", e.label, err))
		}
		started = append(started, sup)

		id, err := sup.Handshake(ctx)
		if err != nil {
			return fail(fmt.Errorf("%s handshake failed: %w", e.label, err))
		}
		log.Info("engine ready",
			"engine", e.label,
			"name", id.Name,
			"author", id.Author,
			"options", len(id.Options),
		)

		skipped, err := sup.ApplyOptions(ctx, e.cfg.Options)
		if err != nil {
			return fail(fmt.Errorf("failed to configure %s: %w", e.label, err))
		}
		if len(skipped) > 0 {
			log.Warn("engine does not declare options, skipped",
				"engine", e.label,
				"options", skipped,
			)
		}
	}

	return started[0], started[1], nil
}

func supervisorOptions(cfg *config.Config, label string, relay func(string), observer engine.Observer, log *slog.Logger) engine.Options {
	opts := engine.DefaultOptions(label)
	opts.QueueSize = cfg.Supervisor.QueueSize
	opts.HandshakeTimeout = cfg.Supervisor.HandshakeTimeout
	opts.ReadyTimeout = cfg.Supervisor.ReadyTimeout
	opts.StopTimeout = cfg.Supervisor.StopTimeout
	opts.QuitTimeout = cfg.Supervisor.QuitTimeout
	opts.Relay = relay
	opts.Observer = observer
	opts.Logger = log
	return opts
}

func thresholdsFrom(cfg *config.Config) heuristic.Thresholds {
	return heuristic.Thresholds{
		PieceValue: cfg.Switch.PieceValue,
		MoveNumber: cfg.Switch.MoveNumber,
	}
}

// watchConfig reloads the configuration on every change and forwards the new
// switch values. Only the latest values are kept if the router lags behind.
func watchConfig(ctx context.Context, path string, reload chan heuristic.Thresholds, log *slog.Logger) (func(), error) {
	fw, err := config.NewFileWatcher(path, config.DefaultDebounceInterval, log)
	if err != nil {
		return nil, err
	}

	go func() {
		err := fw.Watch(ctx, func() {
			cfg, err := config.ReloadConfig()
			if err != nil {
				log.Warn("configuration reload rejected", "error", err)
				return
			}
			select {
			case <-reload:
			default:
			}
			select {
			case reload <- thresholdsFrom(cfg):
			default:
			}
		})
		if err != nil {
			log.Warn("configuration watch stopped", "error", err)
		}
	}()

	return func() {
		if err := fw.Stop(); err != nil {
			log.Debug("failed to stop configuration watcher", "error", err)
		}
	}, nil
}

// journalHandle owns the storage, recorder and pruner of the search journal.
type journalHandle struct {
	store    journal.Storage
	recorder *recorder.Recorder
	pruner   *retention.Pruner
	log      *slog.Logger
}

func openJournal(ctx context.Context, cfg *config.Config, log *slog.Logger) (*journalHandle, error) {
	if !cfg.Journal.Enabled {
		return nil, nil
	}

	store, err := openStorage(cfg, cfg.Journal.Backend, log)
	if err != nil {
		return nil, cli.NewCommandError("run", err)
	}

	rec := recorder.NewRecorder(store, &recorder.Config{
		Enabled:      true,
		AsyncBuffer:  cfg.Journal.AsyncBuffer,
		WriteTimeout: cfg.Journal.WriteTimeout,
	}, log)

	pruner := retention.NewPruner(store, &retention.Config{
		RetentionDays: cfg.Journal.Retention.Days,
		MaxRecords:    cfg.Journal.Retention.MaxRecords,
		PruneSchedule: cfg.Journal.Retention.PruneSchedule,
	}, log)
	if err := pruner.Start(ctx); err != nil {
		j := &journalHandle{store: store, recorder: rec, log: log}
		j.Close()
		return nil, cli.NewCommandError("run", err)
	}

	log.Info("search journal enabled", "backend", cfg.Journal.Backend)
	return &journalHandle{store: store, recorder: rec, pruner: pruner, log: log}, nil
}

// Close stops pruning, flushes pending records and closes the storage.
func (j *journalHandle) Close() {
	if j.pruner != nil {
		j.pruner.Stop()
	}
	if err := j.recorder.Close(); err != nil {
		j.log.Warn("failed to flush search journal", "error", err)
	}
	if err := j.store.Close(); err != nil {
		j.log.Warn("failed to close search journal", "error", err)
	}
}
