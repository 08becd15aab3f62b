package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrWatcherRunning is returned when Watch is called twice.
var ErrWatcherRunning = errors.New("watcher already running")

// FileWatcher watches individual files for changes and triggers a callback.
// It implements debouncing to prevent reload storms.
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *FileWatcherConfig
	debounce *Debouncer
	targets  map[string]bool

	// State
	mu        sync.Mutex
	started   bool
	stopOnce  sync.Once
	closeOnce sync.Once
	closeErr  error
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// FileWatcherConfig contains configuration for the file watcher.
type FileWatcherConfig struct {
	// Paths are the files to watch. Their parent directories must exist.
	Paths []string

	// DebounceInterval is the time to wait before triggering a reload
	// after detecting file changes (default: 100ms)
	DebounceInterval time.Duration
}

// DefaultFileWatcherConfig returns the default watcher configuration.
func DefaultFileWatcherConfig() *FileWatcherConfig {
	return &FileWatcherConfig{DebounceInterval: 100 * time.Millisecond}
}

// NewFileWatcher creates a new file watcher.
func NewFileWatcher(config *FileWatcherConfig, logger *slog.Logger) (*FileWatcher, error) {
	if config == nil {
		config = DefaultFileWatcherConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = 100 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}

	targets := make(map[string]bool, len(config.Paths))
	for _, p := range config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		targets[abs] = true
	}
	if len(targets) == 0 {
		return nil, errors.New("no paths to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &FileWatcher{
		watcher:  watcher,
		logger:   logger,
		config:   config,
		debounce: NewDebouncer(config.DebounceInterval),
		targets:  targets,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch starts watching and calls onChange after each quiet period that
// followed a change to a target file. It blocks until the context is
// cancelled or Stop is called. The watcher cannot be restarted.
func (fw *FileWatcher) Watch(ctx context.Context, onChange func(ReloadEvent) error) error {
	fw.mu.Lock()
	if fw.started {
		fw.mu.Unlock()
		return ErrWatcherRunning
	}
	fw.started = true
	fw.mu.Unlock()

	defer func() {
		fw.close()
		close(fw.doneCh)
	}()

	if err := fw.addTargets(); err != nil {
		return err
	}

	fw.logger.Info("File watcher started",
		"paths", len(fw.targets),
		"debounce_ms", fw.config.DebounceInterval.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			fw.logger.Info("File watcher stopped (context cancelled)")
			return nil

		case <-fw.stopCh:
			fw.logger.Info("File watcher stopped")
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.logger.Debug("File event detected", "path", event.Name, "op", event.Op.String())

			re := ReloadEvent{Type: eventType(event.Op), FilePath: event.Name, Timestamp: time.Now()}
			fw.debounce.Trigger(func() {
				if err := onChange(re); err != nil {
					fw.logger.Error("Reload failed", "path", re.FilePath, "error", err)
				}
			})

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			fw.logger.Error("File watcher error", "error", err)
		}
	}
}

// Stop stops the file watcher and releases its resources. It is safe to
// call more than once and before Watch.
func (fw *FileWatcher) Stop() error {
	fw.stopOnce.Do(func() { close(fw.stopCh) })

	fw.mu.Lock()
	started := fw.started
	fw.mu.Unlock()

	if started {
		<-fw.doneCh
	} else {
		fw.close()
	}
	return fw.closeErr
}

func (fw *FileWatcher) close() {
	fw.closeOnce.Do(func() {
		fw.debounce.Stop()
		if err := fw.watcher.Close(); err != nil {
			fw.closeErr = fmt.Errorf("failed to close watcher: %w", err)
		}
	})
}

// addTargets watches the parent directory of every target file.
func (fw *FileWatcher) addTargets() error {
	dirs := map[string]bool{}
	for target := range fw.targets {
		dirs[filepath.Dir(target)] = true
	}
	for dir := range dirs {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("failed to watch %q: not a directory", dir)
		}
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", dir, err)
		}
		fw.logger.Debug("Watching directory", "path", dir)
	}
	return nil
}

// shouldProcessEvent determines if an event should trigger a reload.
func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return fw.targets[abs]
}

// Debouncer implements event debouncing to prevent reload storms.
// It collects rapid events and triggers the callback only after a quiet period.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger triggers the debouncer with a new event.
// The callback will be called after the debounce interval if no new events occur.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.callback = nil
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop stops the debouncer and cancels any pending callbacks.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
