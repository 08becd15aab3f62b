package feedback

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"keelson-hq/sprintgate/pkg/classify"
)

// DriftChecker warns when a plan-tracking file grows past the size at
// which it starts to crowd the agent's context.
type DriftChecker struct {
	plans    *classify.GlobSet
	maxBytes int64
	maxLines int
}

// NewDriftChecker compiles the plan globs. A zero threshold disables that
// limit.
func NewDriftChecker(planGlobs []string, maxBytes int64, maxLines int) (*DriftChecker, error) {
	plans, err := classify.NewGlobSet(planGlobs)
	if err != nil {
		return nil, fmt.Errorf("feedback: plan globs: %w", err)
	}
	return &DriftChecker{plans: plans, maxBytes: maxBytes, maxLines: maxLines}, nil
}

// Check returns one warning per plan file over a threshold. Only write
// actions are checked. Files that cannot be read produce a warning of
// their own.
func (d *DriftChecker) Check(r Result) []string {
	if r.kind() != classify.ToolWrite {
		return nil
	}
	var warnings []string
	for _, f := range r.Files() {
		if !d.plans.Match(f) {
			continue
		}
		path := f
		if !filepath.IsAbs(path) && r.CWD != "" {
			path = filepath.Join(r.CWD, path)
		}
		if w := d.checkFile(path); w != "" {
			warnings = append(warnings, w)
		}
	}
	return warnings
}

func (d *DriftChecker) checkFile(path string) string {
	fh, err := os.Open(path)
	if os.IsNotExist(err) {
		return ""
	}
	if err != nil {
		return fmt.Sprintf("could not check plan file size of %s: %v", path, err)
	}
	defer fh.Close()

	info, err := fh.Stat()
	if err != nil {
		return fmt.Sprintf("could not check plan file size of %s: %v", path, err)
	}
	lines, err := countLines(fh)
	if err != nil {
		return fmt.Sprintf("could not check plan file size of %s: %v", path, err)
	}

	overBytes := d.maxBytes > 0 && info.Size() > d.maxBytes
	overLines := d.maxLines > 0 && lines > d.maxLines
	if !overBytes && !overLines {
		return ""
	}
	return fmt.Sprintf("plan size indicates potential context drift in %s (%.1fKB, %d lines); consider splitting the feature or summarizing sections",
		filepath.Base(path), float64(info.Size())/1024, lines)
}

func countLines(r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	n := 0
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}
