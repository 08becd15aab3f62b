package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewFileWatcher_NoPaths(t *testing.T) {
	if _, err := NewFileWatcher(&FileWatcherConfig{}, nil); err == nil {
		t.Error("expected error without paths")
	}
}

func TestFileWatcher_StopBeforeWatch(t *testing.T) {
	fw, err := NewFileWatcher(&FileWatcherConfig{Paths: []string{filepath.Join(t.TempDir(), "x.yaml")}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := fw.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestFileWatcher_MissingDirectory(t *testing.T) {
	fw, err := NewFileWatcher(&FileWatcherConfig{
		Paths: []string{filepath.Join(t.TempDir(), "missing", "policy.yaml")},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := fw.Watch(context.Background(), func(ReloadEvent) error { return nil }); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestFileWatcher_DebouncesAndFilters(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "state.json")
	other := filepath.Join(dir, "notes.txt")

	fw, err := NewFileWatcher(&FileWatcherConfig{
		Paths:            []string{target},
		DebounceInterval: 50 * time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int32
	var last atomic.Value
	done := make(chan error, 1)
	go func() {
		done <- fw.Watch(context.Background(), func(ev ReloadEvent) error {
			calls.Add(1)
			last.Store(ev)
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(other, []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(target, []byte(`{"n":1}`), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(400 * time.Millisecond)
	if err := fw.Stop(); err != nil {
		t.Fatal(err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
	if ev, ok := last.Load().(ReloadEvent); !ok || filepath.Base(ev.FilePath) != "state.json" {
		t.Errorf("last event = %+v", last.Load())
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var fired atomic.Bool
	d.Trigger(func() { fired.Store(true) })
	d.Stop()
	d.Trigger(func() { fired.Store(true) })

	time.Sleep(100 * time.Millisecond)
	if fired.Load() {
		t.Error("callback fired after Stop")
	}
}

func TestReloadEventType_String(t *testing.T) {
	tests := map[ReloadEventType]string{
		ReloadEventCreate: "create",
		ReloadEventModify: "modify",
		ReloadEventDelete: "delete",
		ReloadEventType(9): "unknown",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", typ, got, want)
		}
	}
}
