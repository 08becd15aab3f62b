package manager

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"keelson-hq/sprintgate/pkg/policy"
)

// Manager holds the current policy rules and reloads them on change.
type Manager struct {
	path   string
	logger *slog.Logger

	mu          sync.RWMutex
	rules       *policy.Rules
	version     int
	lastLoad    time.Time
	lastErr     error
	subscribers []func(*policy.Rules)
}

// Status describes the manager's current state.
type Status struct {
	Path      string    `json:"path" yaml:"path"`
	Source    string    `json:"source" yaml:"source"`
	Digest    string    `json:"digest,omitempty" yaml:"digest,omitempty"`
	Version   int       `json:"version" yaml:"version"`
	LastLoad  time.Time `json:"last_load" yaml:"last_load"`
	LastError string    `json:"last_error,omitempty" yaml:"last_error,omitempty"`
}

// New creates a manager for the policy file at path. Until Load succeeds
// the manager serves the built-in rules.
func New(path string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		path:   path,
		logger: logger.With("component", "policy.manager"),
		rules:  policy.MustDefaultRules(),
	}
}

// Load reads the policy file. On failure the previous rules stay active
// and the error is returned and remembered.
func (m *Manager) Load() error {
	start := time.Now()
	rules, err := policy.Load(m.path)

	m.mu.Lock()
	if err != nil {
		m.lastErr = err
		m.mu.Unlock()
		m.logger.Error("Failed to load policy",
			"path", m.path,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return err
	}

	m.rules = rules
	m.version++
	m.lastLoad = time.Now()
	m.lastErr = nil
	version := m.version
	subs := append([]func(*policy.Rules){}, m.subscribers...)
	m.mu.Unlock()

	source := rules.Source
	if source == "" {
		source = "built-in"
	}
	m.logger.Info("Policy loaded",
		"source", source,
		"digest", rules.Digest,
		"version", version,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	for _, fn := range subs {
		fn(rules)
	}
	return nil
}

// Rules returns the active rules. Never nil.
func (m *Manager) Rules() *policy.Rules {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rules
}

// LastError returns the error of the most recent failed load, or nil when
// the most recent load succeeded.
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

// Subscribe registers fn to receive the rules after every successful load.
func (m *Manager) Subscribe(fn func(*policy.Rules)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Status returns a snapshot of the manager's state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	st := Status{
		Path:     m.path,
		Source:   m.rules.Source,
		Digest:   m.rules.Digest,
		Version:  m.version,
		LastLoad: m.lastLoad,
	}
	if st.Source == "" {
		st.Source = "built-in"
	}
	if m.lastErr != nil {
		st.LastError = m.lastErr.Error()
	}
	return st
}

// Watch reloads the policy whenever its file changes until ctx is done.
func (m *Manager) Watch(ctx context.Context, debounce time.Duration) error {
	fw, err := NewFileWatcher(&FileWatcherConfig{
		Paths:            []string{m.path},
		DebounceInterval: debounce,
	}, m.logger)
	if err != nil {
		return err
	}
	defer fw.Stop()

	return fw.Watch(ctx, func(ev ReloadEvent) error {
		m.logger.Info("Policy file changed", "path", ev.FilePath, "event", ev.Type.String())
		return m.Load()
	})
}
