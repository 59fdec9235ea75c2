// Package vcs provides the git operations taskenv needs to manage worktrees.
//
// The Git type wraps the git CLI for one repository:
//   - Worktree add/remove/prune/list
//   - Branch existence and current-branch queries
//   - Latest commit inspection for any checkout
//   - Main repository discovery from inside a linked worktree
//
// Thread safety:
//   - Git methods are safe for concurrent use as they don't maintain mutable state.
//
// Usage:
//
//	g := vcs.Open("/path/to/repo")
//	branch, err := g.CurrentBranch(ctx)
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Git provides git operations for a repository
type Git struct {
	repoRoot string
}

// Open creates a Git instance rooted at root without running git.
// Failures surface on the first command instead.
func Open(root string) *Git {
	return &Git{repoRoot: root}
}

// CurrentBranch returns the current branch name, or "HEAD" when detached.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Commit describes a single commit.
type Commit struct {
	Hash string
	Time time.Time
}

// LatestCommit returns HEAD of the checkout at dir, which may be any worktree
// of this repository. An empty dir means the repository root.
func (g *Git) LatestCommit(ctx context.Context, dir string) (Commit, error) {
	if dir == "" {
		dir = g.repoRoot
	}

	out, err := runGitCommandContext(ctx, dir, "log", "-1", "--format=%H %ct")
	if err != nil {
		return Commit{}, fmt.Errorf("get latest commit: %w", err)
	}

	fields := strings.Fields(out)
	if len(fields) != 2 {
		return Commit{}, fmt.Errorf("unexpected log output: %q", strings.TrimSpace(out))
	}
	unix, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("parse commit time: %w", err)
	}

	return Commit{Hash: fields[0], Time: time.Unix(unix, 0)}, nil
}

// isLinkedWorktree reports whether dir is a linked worktree. Those have a
// .git file pointing at the main repository instead of a .git directory.
func isLinkedWorktree(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// MainRoot returns the main repository root for dir and whether dir is a
// linked worktree. Directories that are not linked worktrees (including
// non-git directories) map to themselves.
func (g *Git) MainRoot(ctx context.Context, dir string) (string, bool, error) {
	if !isLinkedWorktree(dir) {
		return dir, false, nil
	}
	main, err := mainRepoFromCommonDir(ctx, dir)
	if err != nil {
		return "", false, err
	}
	return main, true, nil
}

func mainRepoFromCommonDir(ctx context.Context, dir string) (string, error) {
	// git rev-parse --git-common-dir returns the shared .git directory
	// e.g., /path/to/main-repo/.git
	out, err := runGitCommandContext(ctx, dir, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("get git common dir: %w", err)
	}

	gitCommonDir := strings.TrimSpace(out)

	// Handle relative paths (git may return relative path)
	if !filepath.IsAbs(gitCommonDir) {
		gitCommonDir = filepath.Join(dir, gitCommonDir)
	}

	gitCommonDir, err = filepath.Abs(gitCommonDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	// The main repo root is the parent of the .git directory
	return filepath.Dir(gitCommonDir), nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	return runGitCommandContext(ctx, g.repoRoot, args...)
}

// runGitCommandContext executes a git command with context
func runGitCommandContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(errMsg))
	}

	return stdout.String(), nil
}
