package boundary

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns the absolute, cleaned form of path with symbolic links
// resolved. Relative paths are taken relative to base (or the working
// directory when base is empty). Components that do not exist yet are kept
// as written on top of the longest existing ancestor, so a file about to be
// created resolves the same way as its directory.
func Resolve(path, base string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") || path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if !filepath.IsAbs(path) {
		if base == "" {
			base, _ = os.Getwd()
		}
		path = filepath.Join(base, path)
	}
	path = filepath.Clean(path)

	existing := path
	var rest []string
	for {
		if resolved, err := filepath.EvalSymlinks(existing); err == nil {
			parts := append([]string{resolved}, rest...)
			return filepath.Join(parts...)
		}
		parent := filepath.Dir(existing)
		if parent == existing {
			return path
		}
		rest = append([]string{filepath.Base(existing)}, rest...)
		existing = parent
	}
}

// IsWithin reports whether candidate equals root or lies beneath it. Both
// are resolved first. An empty root contains nothing.
func IsWithin(candidate, root string) bool {
	if root == "" || candidate == "" {
		return false
	}
	c := Resolve(candidate, root)
	r := Resolve(root, "")
	return within(c, r)
}

func within(candidate, root string) bool {
	if candidate == root {
		return true
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	return strings.HasPrefix(candidate, root)
}

// IsWithinAny reports whether path matches an entry of allowList. Entries
// are relative to base unless absolute. An entry ending in a separator or
// naming an existing directory matches everything beneath it; any other
// entry matches only itself.
func IsWithinAny(path string, allowList []string, base string) bool {
	if path == "" {
		return false
	}
	target := Resolve(path, base)

	for _, entry := range allowList {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		resolved := Resolve(entry, base)
		if IsDirEntry(entry, base) {
			if within(target, resolved) {
				return true
			}
			continue
		}
		if target == resolved {
			return true
		}
	}
	return false
}

// IsDirEntry reports whether an allow-list entry denotes a directory.
func IsDirEntry(entry, base string) bool {
	if strings.HasSuffix(entry, "/") || strings.HasSuffix(entry, string(filepath.Separator)) {
		return true
	}
	info, err := os.Stat(Resolve(entry, base))
	return err == nil && info.IsDir()
}
