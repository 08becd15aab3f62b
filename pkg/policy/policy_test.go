package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_ListsReplaceDefaults(t *testing.T) {
	doc, err := Parse([]byte(`
protected_files: [config/prod.yaml]
safe_commands: []
max_file_size: 1024
`), "policy.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if diff := cmp.Diff([]string{"config/prod.yaml"}, doc.ProtectedFiles); diff != "" {
		t.Errorf("ProtectedFiles mismatch (-want +got):\n%s", diff)
	}
	if len(doc.SafeCommands) != 0 {
		t.Errorf("SafeCommands = %v, want empty", doc.SafeCommands)
	}
	if diff := cmp.Diff(DefaultDangerousCommands, doc.DangerousCommands); diff != "" {
		t.Errorf("absent key must keep defaults (-want +got):\n%s", diff)
	}
	if doc.MaxFileSize != 1024 {
		t.Errorf("MaxFileSize = %d, want 1024", doc.MaxFileSize)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", "protected_file: [.env]\n"},
		{"malformed", "allowed_tools: [Read\n"},
		{"wrong type", "max_file_size: lots\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "policy.yaml")
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %v, want *ParseError", err)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	doc, err := Parse([]byte("  \n"), "policy.yaml")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if diff := cmp.Diff(Default(), doc); diff != "" {
		t.Errorf("empty document should equal defaults (-want +got):\n%s", diff)
	}
}

func TestValidate(t *testing.T) {
	doc := Default()
	doc.ProtectedGlobs = []string{"[oops"}
	doc.AllowedTools = nil
	doc.SafeCommands = []string{"ls", " "}
	doc.MaxFileSize = -1

	err := doc.Validate()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Validate() error = %v, want *ValidationError", err)
	}

	fields := map[string]bool{}
	for _, fe := range ve.Errors {
		fields[fe.Field] = true
	}
	for _, want := range []string{"protected_globs[0]", "allowed_tools", "safe_commands[1]", "max_file_size"} {
		if !fields[want] {
			t.Errorf("missing error for %s in %v", want, ve.Errors)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file uses defaults", func(t *testing.T) {
		rules, err := Load(filepath.Join(dir, "absent.yaml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rules.Source != "" {
			t.Errorf("Source = %q, want empty", rules.Source)
		}
		if rules.MaxFileSize != DefaultMaxFileSize {
			t.Errorf("MaxFileSize = %d", rules.MaxFileSize)
		}
	})

	t.Run("file compiles", func(t *testing.T) {
		path := filepath.Join(dir, "policy.yaml")
		data := "allowed_tools: [Read, Bash]\nprotected_globs: ['**/*.key']\ndangerous_commands: [terraform destroy]\n"
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatal(err)
		}

		rules, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if rules.Source != path || rules.Digest == "" {
			t.Errorf("Source/Digest = %q/%q", rules.Source, rules.Digest)
		}
		if !rules.ToolAllowed("bash") || rules.ToolAllowed("Write") {
			t.Errorf("AllowedTools = %v", rules.AllowedTools())
		}
		if _, ok := rules.Files.Match("/repo/tls/server.key"); !ok {
			t.Error("protected glob not compiled")
		}
		if diff := cmp.Diff([]string{"terraform destroy"}, rules.DangerousCommands); diff != "" {
			t.Errorf("DangerousCommands mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid document", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("allowed_tools: []\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		var ve *ValidationError
		if _, err := Load(path); !errors.As(err, &ve) {
			t.Errorf("Load() error = %v, want *ValidationError", err)
		}
	})
}

func TestRules_DocumentIsCopy(t *testing.T) {
	rules := MustDefaultRules()
	doc := rules.Document()
	doc.AllowedTools[0] = "Changed"

	if rules.Document().AllowedTools[0] == "Changed" {
		t.Error("Document() must return a copy")
	}
}
