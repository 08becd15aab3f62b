package hook

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_PreToolShapes(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		tool     string
		command  string
		filePath string
		text     string
	}{
		{
			name:     "runtime shape",
			data:     `{"tool_name":"Write","tool_input":{"file_path":"/repo/a.go","content":"x"},"prompt":"/implement","cwd":"/repo","session_id":"s1"}`,
			tool:     "Write",
			filePath: "/repo/a.go",
			text:     "/implement",
		},
		{
			name:     "legacy shape",
			data:     `{"tool":"write","parameters":{"target_file":"/repo/.env"},"input":{"message":"/startnewsprint"}}`,
			tool:     "write",
			filePath: "/repo/.env",
			text:     "/startnewsprint",
		},
		{
			name:    "bash",
			data:    `{"tool_name":"Bash","tool_input":{"command":"ls -la"}}`,
			tool:    "Bash",
			command: "ls -la",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if env.ToolID() != tt.tool {
				t.Errorf("ToolID() = %q, want %q", env.ToolID(), tt.tool)
			}
			if env.Command() != tt.command {
				t.Errorf("Command() = %q, want %q", env.Command(), tt.command)
			}
			if env.FilePath() != tt.filePath {
				t.Errorf("FilePath() = %q, want %q", env.FilePath(), tt.filePath)
			}
			if env.Text() != tt.text {
				t.Errorf("Text() = %q, want %q", env.Text(), tt.text)
			}
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, data := range []string{"", "   ", "{", `{"tool_name": 5}`, "[]"} {
		if _, err := Parse([]byte(data)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformed", data, err)
		}
	}
}

func TestDecode_TooLarge(t *testing.T) {
	big := strings.NewReader(`{"prompt":"` + strings.Repeat("a", MaxEnvelopeSize) + `"}`)
	if _, err := Decode(big); !errors.Is(err, ErrMalformed) {
		t.Errorf("Decode() error = %v, want ErrMalformed", err)
	}
}

func TestEnvelope_OutputText(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"output field", `{"output":"done"}`, "done"},
		{"string response", `{"tool_response":"all good"}`, "all good"},
		{"structured response", `{"tool_response":{"stdout":"ok","stderr":"warn","exit_code":0}}`, "ok\nwarn"},
		{"no response", `{"tool_name":"Read"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Parse([]byte(tt.data))
			if err != nil {
				t.Fatal(err)
			}
			if got := env.OutputText(); got != tt.want {
				t.Errorf("OutputText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnvelope_Succeeded(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{`{"success":false,"tool_response":{"success":true}}`, false},
		{`{"tool_response":{"success":false}}`, false},
		{`{"tool_response":{"is_error":true}}`, false},
		{`{"tool_response":{"interrupted":true}}`, false},
		{`{"tool_response":"text"}`, true},
		{`{}`, true},
	}

	for _, tt := range tests {
		env, err := Parse([]byte(tt.data))
		if err != nil {
			t.Fatal(err)
		}
		if got := env.Succeeded(); got != tt.want {
			t.Errorf("Succeeded(%s) = %v, want %v", tt.data, got, tt.want)
		}
	}
}

func TestEnvelope_Files(t *testing.T) {
	env, err := Parse([]byte(`{"tool_input":{"file_path":"b.go"},"changed_files":["a.go","b.go",""]}`))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a.go", "b.go"}, env.Files()); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}
}
