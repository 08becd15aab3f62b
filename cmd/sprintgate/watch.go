package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"keelson-hq/sprintgate/pkg/audit/retention"
	"keelson-hq/sprintgate/pkg/cli"
	"keelson-hq/sprintgate/pkg/policy"
	"keelson-hq/sprintgate/pkg/policy/manager"
	"keelson-hq/sprintgate/pkg/state"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the long-lived companion process",
	Long: `Watch runs until interrupted. It reloads the policy document when it
changes (policy.watch), follows the project state document and publishes the
active sprint's iteration as a metric, and prunes the audit trail on the
retention schedule.

The hooks themselves never depend on this process; it only keeps the
operator's view current.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := cli.SetupSignalHandler(cmd.Context())
		defer cancel()

		return runWatch(ctx, a)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// runWatch blocks until ctx is done or one of the watchers fails.
func runWatch(ctx context.Context, a *app) error {
	var sched *retention.Scheduler
	if a.cfg.Audit.Enabled {
		store, err := a.openStorage()
		if err != nil {
			return err
		}
		defer store.Close()

		pruner := retention.NewPruner(store, retention.ConfigFrom(a.cfg.Audit.Retention), a.logger, a.collector.Audit())
		sched = retention.NewScheduler(pruner)
	}

	g, ctx := errgroup.WithContext(ctx)

	if a.cfg.Policy.Watch {
		if err := os.MkdirAll(filepath.Dir(a.cfg.Policy.Path), 0o755); err != nil {
			return fmt.Errorf("failed to prepare policy directory: %w", err)
		}
		m := a.policyManager()
		m.Subscribe(func(r *policy.Rules) {
			a.logger.Info("policy reloaded", "source", r.Source, "digest", r.Digest)
		})
		g.Go(func() error {
			return m.Watch(ctx, a.cfg.Policy.Debounce)
		})
	}

	g.Go(func() error {
		return watchState(ctx, a)
	})

	if sched != nil {
		g.Go(func() error {
			return sched.Run(ctx)
		})
	}

	a.logger.Info("watching", "state", a.cfg.State.Path, "policy", a.cfg.Policy.Path)
	return g.Wait()
}

// watchState publishes the active sprint's iteration every time the state
// document settles after a write.
func watchState(ctx context.Context, a *app) error {
	path := a.cfg.State.Path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to prepare state directory: %w", err)
	}

	fw, err := manager.NewFileWatcher(&manager.FileWatcherConfig{
		Paths:            []string{path},
		DebounceInterval: a.cfg.Policy.Debounce,
	}, a.logger.Slog())
	if err != nil {
		return err
	}
	defer fw.Stop()

	store := state.NewFileStore(path)
	publish := func() {
		snap := state.Read(ctx, store)
		if snap.Degraded() {
			a.logger.Warn("state document unusable", "path", path, "status", string(snap.Status), "error", snap.Err)
			return
		}
		if sp := snap.State.ActiveSprint(); sp != nil {
			a.collector.Gate().SetIteration(sp.ID, sp.Iteration)
		}
		if err := a.collector.Flush(); err != nil {
			a.logger.Warn("failed to flush metrics", "error", err)
		}
	}
	publish()

	return fw.Watch(ctx, func(ev manager.ReloadEvent) error {
		a.logger.Debug("state document changed", "path", ev.FilePath, "event", ev.Type.String())
		publish()
		return nil
	})
}
