package manager

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"keelson-hq/sprintgate/pkg/policy"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestManager_LoadMissingUsesDefaults(t *testing.T) {
	mgr := New(filepath.Join(t.TempDir(), "policy.yaml"), nil)

	if err := mgr.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !mgr.Rules().ToolAllowed("Bash") {
		t.Error("built-in rules should allow Bash")
	}
	if got := mgr.Status().Source; got != "built-in" {
		t.Errorf("Status().Source = %q, want built-in", got)
	}
}

func TestManager_InvalidReloadKeepsLastGood(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	writeFile(t, path, "allowed_tools: [Read]\n")

	mgr := New(path, nil)
	if err := mgr.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if mgr.Rules().ToolAllowed("Bash") {
		t.Fatal("policy restricts tools to Read")
	}

	writeFile(t, path, "allowed_tools: [Read\n")
	if err := mgr.Load(); err == nil {
		t.Fatal("expected parse error")
	}
	if !mgr.Rules().ToolAllowed("read") || mgr.Rules().ToolAllowed("Bash") {
		t.Error("failed reload must keep the previous rules")
	}
	if mgr.LastError() == nil || mgr.Status().LastError == "" {
		t.Error("failed reload must be recorded")
	}
	if got := mgr.Status().Version; got != 1 {
		t.Errorf("Version = %d, want 1", got)
	}
}

func TestManager_Subscribe(t *testing.T) {
	mgr := New(filepath.Join(t.TempDir(), "policy.yaml"), nil)

	var got *policy.Rules
	mgr.Subscribe(func(r *policy.Rules) { got = r })
	if err := mgr.Load(); err != nil {
		t.Fatal(err)
	}
	if got == nil || got != mgr.Rules() {
		t.Error("subscriber did not receive the loaded rules")
	}
}

func TestManager_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	writeFile(t, path, "allowed_tools: [Read]\n")

	mgr := New(path, nil)
	if err := mgr.Load(); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	mgr.Subscribe(func(*policy.Rules) { reloads.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Watch(ctx, 20*time.Millisecond) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	// Replace the file the way editors and the state store do.
	tmp := filepath.Join(dir, "policy.yaml.tmp")
	writeFile(t, tmp, "allowed_tools: [Read, Bash]\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for reloads.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if reloads.Load() == 0 {
		t.Fatal("policy was not reloaded")
	}
	if !mgr.Rules().ToolAllowed("Bash") {
		t.Error("reloaded rules should allow Bash")
	}
}
