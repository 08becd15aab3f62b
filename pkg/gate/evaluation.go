package gate

import (
	"context"
	"slices"
	"time"

	"keelson-hq/sprintgate/pkg/boundary"
	"keelson-hq/sprintgate/pkg/classify"
	"keelson-hq/sprintgate/pkg/config"
	"keelson-hq/sprintgate/pkg/policy"
	"keelson-hq/sprintgate/pkg/state"
)

// Config holds the gate tunables.
type Config struct {
	PermissiveDefault    classify.PermissiveMode
	Checkpoints          []int
	RepairDir            string
	RepairDocuments      []string
	DefaultMaxIterations int
}

// DefaultConfig returns the built-in tunables.
func DefaultConfig() Config {
	return Config{
		PermissiveDefault:    classify.PermissiveNone,
		Checkpoints:          config.DefaultCheckpoints(),
		RepairDir:            config.DefaultRepairDir,
		RepairDocuments:      config.DefaultRepairDocuments(),
		DefaultMaxIterations: config.DefaultGateMaxIterations,
	}
}

// ConfigFrom converts the loaded configuration section.
func ConfigFrom(cfg config.GateConfig) Config {
	c := Config{
		PermissiveDefault:    classify.ParsePermissiveMode(cfg.PermissiveDefault),
		Checkpoints:          append([]int(nil), cfg.Checkpoints...),
		RepairDir:            cfg.RepairDir,
		DefaultMaxIterations: cfg.DefaultMaxIterations,
	}
	if len(c.Checkpoints) == 0 {
		c.Checkpoints = config.DefaultCheckpoints()
	}
	if c.RepairDir == "" {
		c.RepairDir = config.DefaultRepairDir
	}
	if cfg.RepairDocuments == nil {
		c.RepairDocuments = config.DefaultRepairDocuments()
	} else {
		c.RepairDocuments = slices.Clone(cfg.RepairDocuments)
	}
	if c.DefaultMaxIterations <= 0 {
		c.DefaultMaxIterations = config.DefaultGateMaxIterations
	}
	return c
}

// IsCheckpoint reports whether iteration is a self-assessment checkpoint.
func (c Config) IsCheckpoint(iteration int) bool {
	return iteration > 0 && slices.Contains(c.Checkpoints, iteration)
}

// Evaluation carries one pass through the pipeline. Checks read the
// action, the state snapshot and the rules from it, and mutate the state
// only through Sprint() followed by MarkDirty.
type Evaluation struct {
	Action   *Action
	Snapshot state.Snapshot
	Rules    *policy.Rules
	Config   Config
	Now      time.Time

	resolver boundary.Resolver
	root     string
	rootSet  bool
	dirty    bool
}

// State returns the project state. Never nil.
func (ev *Evaluation) State() *state.ProjectState {
	return ev.Snapshot.State
}

// Sprint returns the active sprint, or nil.
func (ev *Evaluation) Sprint() *state.Sprint {
	return ev.Snapshot.State.ActiveSprint()
}

// MarkDirty schedules the state for saving at the end of the evaluation.
func (ev *Evaluation) MarkDirty() {
	ev.dirty = true
}

// Root returns the workspace root, looking it up at most once. An empty
// result means the root is unknown.
func (ev *Evaluation) Root(ctx context.Context) string {
	if !ev.rootSet {
		ev.rootSet = true
		if ev.resolver != nil {
			ev.root = ev.resolver.CurrentRoot(ctx)
		}
	}
	return ev.root
}

// Base is the directory project-relative paths are resolved against: the
// workspace root when known, otherwise the request's working directory.
func (ev *Evaluation) Base(ctx context.Context) string {
	if root := ev.Root(ctx); root != "" {
		return root
	}
	return ev.Action.CWD
}

// Target returns the absolute, resolved path of the action's file.
func (ev *Evaluation) Target() string {
	return boundary.Resolve(ev.Action.FilePath, ev.Action.CWD)
}
