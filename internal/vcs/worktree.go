package vcs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Worktree represents a git worktree.
type Worktree struct {
	Path     string // Absolute path to worktree
	Branch   string // Branch checked out in worktree; empty when detached
	Commit   string // HEAD commit
	Bare     bool   // Is this the bare repository
	Detached bool   // HEAD is detached
	Main     bool   // Is this the main worktree
}

// ListWorktrees returns all worktrees in the repository.
func (g *Git) ListWorktrees(ctx context.Context) ([]Worktree, error) {
	out, err := g.run(ctx, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("list worktrees: %w", err)
	}
	return ParseWorktreeList(out), nil
}

// ParseWorktreeList parses `git worktree list --porcelain` output. Records are
// separated by blank lines; the first record is the main worktree.
func ParseWorktreeList(out string) []Worktree {
	var worktrees []Worktree
	var current Worktree

	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if current.Path != "" {
				worktrees = append(worktrees, current)
				current = Worktree{}
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "worktree "):
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Commit = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			// Branch is refs/heads/name
			current.Branch = strings.TrimPrefix(strings.TrimPrefix(line, "branch "), "refs/heads/")
		case line == "bare":
			current.Bare = true
		case line == "detached":
			current.Detached = true
		}
	}

	// Add last worktree if present
	if current.Path != "" {
		worktrees = append(worktrees, current)
	}

	if len(worktrees) > 0 {
		worktrees[0].Main = true
	}

	return worktrees
}

// AddWorktreeOptions configures `git worktree add`.
type AddWorktreeOptions struct {
	Path       string
	Branch     string
	NewBranch  bool   // create Branch (-b) starting at StartPoint
	Track      bool   // set upstream when StartPoint is a remote branch
	Force      bool   // pass --force
	StartPoint string // base ref for a new branch
}

// AddWorktree creates a worktree. With NewBranch unset the existing Branch
// is checked out; otherwise Branch is created from StartPoint.
func (g *Git) AddWorktree(ctx context.Context, opts AddWorktreeOptions) error {
	absPath, err := filepath.Abs(opts.Path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	// Ensure parent directory exists
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return fmt.Errorf("create parent directory: %w", err)
	}

	args := []string{"worktree", "add"}
	if opts.Force {
		args = append(args, "--force")
	}
	if opts.NewBranch {
		if opts.Track {
			args = append(args, "--track")
		}
		args = append(args, "-b", opts.Branch, absPath)
		if opts.StartPoint != "" {
			args = append(args, opts.StartPoint)
		}
	} else {
		args = append(args, absPath, opts.Branch)
	}

	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("create worktree: %w", err)
	}

	return nil
}

// RemoveWorktree removes a worktree.
func (g *Git) RemoveWorktree(ctx context.Context, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = []string{"worktree", "remove", "--force", path}
	}

	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("remove worktree: %w", err)
	}

	return nil
}

// PruneWorktrees removes stale worktree information.
func (g *Git) PruneWorktrees(ctx context.Context) error {
	if _, err := g.run(ctx, "worktree", "prune"); err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}
	return nil
}
