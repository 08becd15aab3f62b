package boundary

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsWithin(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	sibling := root + "-evil"

	tests := []struct {
		name      string
		candidate string
		root      string
		want      bool
	}{
		{"root itself", root, root, true},
		{"existing child", filepath.Join(root, "src"), root, true},
		{"new file", filepath.Join(root, "src", "new.go"), root, true},
		{"new nested dirs", filepath.Join(root, "a", "b", "c.txt"), root, true},
		{"relative to root", "src/x.go", root, true},
		{"traversal", filepath.Join(root, "src", "..", "..", "etc", "passwd"), root, false},
		{"sibling with shared prefix", filepath.Join(sibling, "x"), root, false},
		{"absolute outside", "/etc/passwd", root, false},
		{"empty root", filepath.Join(root, "src"), "", false},
		{"empty candidate", "", root, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithin(tt.candidate, tt.root); got != tt.want {
				t.Errorf("IsWithin(%q, %q) = %v, want %v", tt.candidate, tt.root, got, tt.want)
			}
		})
	}
}

func TestIsWithin_SymlinkEscape(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	link := filepath.Join(root, "link")
	if err := os.Symlink(outside, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	if IsWithin(filepath.Join(link, "payload.sh"), root) {
		t.Error("write through a symlink pointing outside the root must not be contained")
	}
}

func TestIsWithinAny(t *testing.T) {
	base := t.TempDir()
	for _, dir := range []string{"src/feature", "docs"} {
		if err := os.MkdirAll(filepath.Join(base, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name  string
		path  string
		allow []string
		want  bool
	}{
		{"prefix by trailing slash", "src/feature/x.txt", []string{"src/feature/"}, true},
		{"deep prefix", "src/feature/a/b/c.go", []string{"src/feature/"}, true},
		{"outside prefix", "src/other.txt", []string{"src/feature/"}, false},
		{"prefix is not string prefix", "src/feature-two/x", []string{"src/feature/"}, false},
		{"existing dir without slash", "docs/guide.md", []string{"docs"}, true},
		{"exact file", "README.md", []string{"README.md"}, true},
		{"exact file does not prefix", "README.md.bak", []string{"README.md"}, false},
		{"absolute path against relative entry", filepath.Join(base, "src/feature/y"), []string{"src/feature/"}, true},
		{"blank entries ignored", "x", []string{"", "  "}, false},
		{"empty list", "src/feature/x", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWithinAny(tt.path, tt.allow, base); got != tt.want {
				t.Errorf("IsWithinAny(%q, %v) = %v, want %v", tt.path, tt.allow, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	base := t.TempDir()
	resolvedBase := Resolve(base, "")

	if got := Resolve("a/../b/./c", base); got != filepath.Join(resolvedBase, "b", "c") {
		t.Errorf("Resolve cleaned path = %q", got)
	}
	if got := Resolve("", base); got != "" {
		t.Errorf("Resolve(\"\") = %q", got)
	}
}
