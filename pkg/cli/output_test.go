package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type sample struct {
	Name  string   `json:"name" yaml:"name"`
	Count int      `json:"count" yaml:"count"`
	Tags  []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

func TestTextFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TextFormatter{}).FormatTo(&buf, "test message"); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}
	if buf.String() != "test message\n" {
		t.Errorf("FormatTo() = %q", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	tests := []struct {
		name   string
		indent bool
	}{
		{"compact", false},
		{"indented", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &JSONFormatter{Indent: tt.indent}
			out, err := f.Format(sample{Name: "gate", Count: 3})
			if err != nil {
				t.Fatalf("Format() error = %v", err)
			}

			var got sample
			if err := json.Unmarshal(out, &got); err != nil {
				t.Fatalf("output is not JSON: %v", err)
			}
			if got.Name != "gate" || got.Count != 3 {
				t.Errorf("decoded = %+v", got)
			}
			if strings.Contains(string(out), "\n") != tt.indent {
				t.Errorf("indentation mismatch: %q", out)
			}
		})
	}
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLFormatter{}).FormatTo(&buf, sample{Name: "gate", Tags: []string{"a"}}); err != nil {
		t.Fatalf("FormatTo() error = %v", err)
	}

	var got sample
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not YAML: %v", err)
	}
	if got.Name != "gate" || len(got.Tags) != 1 {
		t.Errorf("decoded = %+v", got)
	}
}

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{"json", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseOutputFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseOutputFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) is not a JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("NewFormatter(yaml) is not a YAMLFormatter")
	}
	if _, ok := NewFormatter("other").(*TextFormatter); !ok {
		t.Error("NewFormatter(other) is not a TextFormatter")
	}
}
