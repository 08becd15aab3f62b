package main

import (
	"context"
	"fmt"
	"time"

	"keelson-hq/sprintgate/pkg/audit"
	"keelson-hq/sprintgate/pkg/audit/recorder"
	"keelson-hq/sprintgate/pkg/audit/storage"
	"keelson-hq/sprintgate/pkg/boundary"
	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/policy/manager"
	"keelson-hq/sprintgate/pkg/telemetry/logging"
	"keelson-hq/sprintgate/pkg/telemetry/metrics"
	"keelson-hq/sprintgate/pkg/telemetry/tracing"
)

// shutdownTimeout bounds flushing spans and metrics on exit.
const shutdownTimeout = 2 * time.Second

// app holds the per-invocation runtime shared by the subcommands.
type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	collector *metrics.Collector
	tracer    *tracing.Tracer
}

// newApp loads the configuration and builds logging, metrics and tracing.
func newApp() (*app, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return newAppWithConfig(cfg)
}

func newAppWithConfig(cfg *config.Config) (*app, error) {
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		Output:        cfg.Telemetry.Logging.Output,
		AddSource:     cfg.Telemetry.Logging.AddSource,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing)
	if err != nil {
		logger.Warn("tracing disabled", "error", err)
		tracer = tracing.NewNoop()
	}

	return &app{
		cfg:       cfg,
		logger:    logger,
		collector: metrics.NewCollector(&cfg.Telemetry.Metrics, nil),
		tracer:    tracer,
	}, nil
}

// Close flushes metrics and spans and releases the log output.
func (a *app) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.collector.Flush(); err != nil {
		a.logger.Warn("failed to flush metrics", "error", err)
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to shut down tracer", "error", err)
	}
	a.logger.Close()
}

// policyManager loads the policy document. A document that fails to load
// leaves the built-in rules in force.
func (a *app) policyManager() *manager.Manager {
	m := manager.New(a.cfg.Policy.Path, a.logger.Slog())
	if err := m.Load(); err != nil {
		a.logger.Error("policy document rejected, using built-in rules",
			"path", a.cfg.Policy.Path,
			"error", err,
		)
	}
	return m
}

// resolver builds the workspace root resolver for dir. A misconfigured
// resolver yields nil, which denies every file write.
func (a *app) resolver(dir string) boundary.Resolver {
	r, err := boundary.NewResolver(a.cfg.Boundary.Resolver, dir, a.cfg.Boundary.Root, a.cfg.Boundary.Timeout)
	if err != nil {
		a.logger.Error("boundary resolver unavailable", "error", err)
		return nil
	}
	return r
}

// openStorage opens the configured audit backend.
func (a *app) openStorage() (audit.Storage, error) {
	store, err := storage.Open(a.cfg.Audit, a.logger)
	if err != nil {
		return nil, cli.NewCommandError("audit", fmt.Errorf("failed to open audit storage: %w", err))
	}
	return store, nil
}

// openRecorder returns the audit recorder and its closer. When auditing is
// disabled or the store cannot be opened the recorder is nil; a broken
// audit trail never changes a verdict.
func (a *app) openRecorder() (*recorder.Recorder, func()) {
	if !a.cfg.Audit.Enabled {
		return nil, func() {}
	}

	store, err := a.openStorage()
	if err != nil {
		a.logger.Error("audit trail unavailable", "error", err)
		return nil, func() {}
	}

	rec := recorder.NewRecorder(store, recorder.Options{
		Config:   recorder.ConfigFrom(a.cfg.Audit.Recorder),
		Logger:   a.logger,
		Metrics:  a.collector.Audit(),
		Redactor: logging.NewRedactor(nil),
	})
	return rec, func() {
		rec.Close()
		if err := store.Close(); err != nil {
			a.logger.Warn("failed to close audit storage", "error", err)
		}
	}
}
