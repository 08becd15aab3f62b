package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "valid JSON config",
			config: Config{Level: "info", Format: "json", RedactSecrets: true},
		},
		{
			name:   "valid text config",
			config: Config{Level: "debug", Format: "text"},
		},
		{
			name:   "empty values use defaults",
			config: Config{},
		},
		{
			name:    "invalid log level",
			config:  Config{Level: "loud", Format: "json"},
			wantErr: true,
		},
		{
			name:    "invalid format",
			config:  Config{Level: "info", Format: "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			logger, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && logger == nil {
				t.Fatal("expected logger")
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "warn", Format: "text", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn entry missing")
	}
}

func TestLogger_ContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "debug", Format: "json", Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx := WithDecisionID(context.Background(), "dec-1")
	ctx = WithSession(ctx, "sess-9")
	ctx = WithTool(ctx, "Bash")
	ctx = WithPhase(ctx, "pre")
	logger.InfoContext(ctx, "evaluated", "allowed", true)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected one JSON entry, got %q: %v", buf.String(), err)
	}
	for key, want := range map[string]any{
		"decision_id": "dec-1",
		"session_id":  "sess-9",
		"tool":        "Bash",
		"phase":       "pre",
		"allowed":     true,
	} {
		if entry[key] != want {
			t.Errorf("field %s = %v, want %v", key, entry[key], want)
		}
	}
}

func TestLogger_RedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New(Config{Level: "info", Format: "json", RedactSecrets: true, Writer: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.With("component", "gate").Info("command",
		"command", "curl -H 'Authorization: Bearer abc.def' https://x",
		"api_key", "whatever",
	)

	out := buf.String()
	if strings.Contains(out, "abc.def") {
		t.Errorf("bearer token leaked: %s", out)
	}
	if strings.Contains(out, "whatever") {
		t.Errorf("sensitive key value leaked: %s", out)
	}
	if !strings.Contains(out, `"component":"gate"`) {
		t.Errorf("With fields missing: %s", out)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gate.log")
	logger, err := New(Config{Level: "info", Output: path})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("to file")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file missing entry: %q", data)
	}
}

func TestNewNop(t *testing.T) {
	// Must not panic and must be usable anywhere a logger is expected.
	l := NewNop()
	l.Error("dropped")
	l.WithComponent("x").Warn("dropped")
}
