package classify

import "testing"

func TestFileProtection_Match(t *testing.T) {
	fp, err := NewFileProtection(DefaultProtectedFiles, DefaultProtectedPatterns, []string{"**/*.key"})
	if err != nil {
		t.Fatalf("NewFileProtection() error = %v", err)
	}

	tests := []struct {
		path string
		want bool
		kind string
	}{
		{"/repo/.env", true, "file"},
		{".env", true, "file"},
		{"/repo/.ENV", true, "file"},
		{"/repo/.sprintgate/state.json", true, "file"},
		{"/home/dev/.ssh/authorized_keys", true, "pattern"},
		{"/repo/certs/server.pem", true, "pattern"},
		{"/repo/certs/server.key", true, "glob"},
		{"/repo/.env.example", false, ""},
		{"/repo/src/environment.go", false, ""},
		{"", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, got := fp.Match(tt.path)
			if got != tt.want {
				t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
			if got && m.Kind != tt.kind {
				t.Errorf("Match(%q).Kind = %q, want %q", tt.path, m.Kind, tt.kind)
			}
		})
	}
}

func TestNewFileProtection_InvalidGlob(t *testing.T) {
	if _, err := NewFileProtection(nil, nil, []string{"[unclosed"}); err == nil {
		t.Error("expected error for invalid glob")
	}
}

func TestFileProtection_Nil(t *testing.T) {
	var fp *FileProtection
	if _, ok := fp.Match("/repo/.env"); ok {
		t.Error("nil protection must match nothing")
	}
}

func TestGlobSet_Match(t *testing.T) {
	gs := MustGlobSet([]string{"**/api/**", "**.tsx", "**/PLAN.md"})

	tests := []struct {
		path string
		want bool
	}{
		{"api/users.go", true},
		{"/repo/internal/api/v1/users.go", true},
		{"web/src/App.tsx", true},
		{"PLAN.md", true},
		{"docs/PLAN.md", true},
		{"src/app.go", false},
		{"docs/PLAN.md.bak", false},
	}

	for _, tt := range tests {
		if got := gs.Match(tt.path); got != tt.want {
			t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
