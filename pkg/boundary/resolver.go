package boundary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
)

// DefaultTimeout bounds a root lookup when none is configured.
const DefaultTimeout = 3 * time.Second

// Resolver computes the workspace root.
type Resolver interface {
	// CurrentRoot returns the absolute workspace root, or "" when it cannot
	// be determined for any reason.
	CurrentRoot(ctx context.Context) string
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) string

// CurrentRoot calls f.
func (f ResolverFunc) CurrentRoot(ctx context.Context) string {
	return f(ctx)
}

// StaticResolver always returns the same root.
type StaticResolver struct {
	Root string
}

// CurrentRoot returns the configured root, resolved.
func (s StaticResolver) CurrentRoot(context.Context) string {
	if s.Root == "" {
		return ""
	}
	return Resolve(s.Root, "")
}

// GitResolver asks the git binary for the repository top level.
type GitResolver struct {
	// Dir is where the lookup runs; "" means the working directory.
	Dir string

	// Timeout bounds the git process.
	Timeout time.Duration

	// Binary overrides the git executable, mainly for tests.
	Binary string
}

// CurrentRoot runs `git rev-parse --show-toplevel`. A missing binary, a
// timeout, a non-zero exit or empty output all yield "".
func (g GitResolver) CurrentRoot(ctx context.Context) string {
	root, err := g.lookup(ctx)
	if err != nil {
		return ""
	}
	return root
}

func (g GitResolver) lookup(ctx context.Context) (string, error) {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "rev-parse", "--show-toplevel")
	cmd.Dir = g.Dir
	cmd.Stdout = &stdout
	cmd.WaitDelay = timeout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}

	root := strings.TrimSpace(stdout.String())
	if root == "" {
		return "", errors.New("git rev-parse: empty output")
	}
	return Resolve(filepath.FromSlash(root), ""), nil
}

// GoGitResolver discovers the repository in-process with go-git, walking
// up from Dir until a .git entry is found.
type GoGitResolver struct {
	// Dir is where discovery starts; "" means the working directory.
	Dir string

	// Timeout bounds discovery.
	Timeout time.Duration
}

// CurrentRoot returns the worktree root of the enclosing repository, or ""
// when there is none or discovery does not finish in time.
func (g GoGitResolver) CurrentRoot(ctx context.Context) string {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir := g.Dir
	if dir == "" {
		dir = "."
	}

	result := make(chan string, 1)
	go func() {
		result <- discover(dir)
	}()

	select {
	case root := <-result:
		return root
	case <-ctx.Done():
		return ""
	}
}

func discover(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	wt, err := repo.Worktree()
	if err != nil {
		// Bare repositories have no workspace to write into.
		return ""
	}
	return Resolve(wt.Filesystem.Root(), "")
}

// NewResolver builds the resolver named by kind ("git", "go-git" or
// "static").
func NewResolver(kind, dir, staticRoot string, timeout time.Duration) (Resolver, error) {
	switch kind {
	case "", "git":
		return GitResolver{Dir: dir, Timeout: timeout}, nil
	case "go-git":
		return GoGitResolver{Dir: dir, Timeout: timeout}, nil
	case "static":
		return StaticResolver{Root: staticRoot}, nil
	default:
		return nil, fmt.Errorf("unknown boundary resolver %q", kind)
	}
}
