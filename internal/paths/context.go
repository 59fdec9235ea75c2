package paths

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Context describes where code runs versus where the canonical repository
// and the user's home live.
//
// WorktreeRoot is set iff execution happens inside a derived worktree. In that
// case it equals ExecutionRoot and MainRepoRoot still points at the original
// repository.
type Context struct {
	ExecutionRoot string
	MainRepoRoot  string
	WorktreeRoot  string
	UserHome      string
}

// InWorktree reports whether the context executes inside a derived worktree.
func (c Context) InWorktree() bool {
	return c.WorktreeRoot != ""
}

// Validate checks that the paths needed for resolution are absolute.
func (c Context) Validate() error {
	if !filepath.IsAbs(c.ExecutionRoot) {
		return fmt.Errorf("execution root must be absolute: %q", c.ExecutionRoot)
	}
	if !filepath.IsAbs(c.MainRepoRoot) {
		return fmt.Errorf("main repo root must be absolute: %q", c.MainRepoRoot)
	}
	if !filepath.IsAbs(c.UserHome) {
		return fmt.Errorf("user home must be absolute: %q", c.UserHome)
	}
	if c.WorktreeRoot != "" && c.WorktreeRoot != c.ExecutionRoot {
		return fmt.Errorf("worktree root %q differs from execution root %q", c.WorktreeRoot, c.ExecutionRoot)
	}
	return nil
}

// MainRootFinder reports the main repository of a directory that may be a
// linked worktree.
type MainRootFinder interface {
	// MainRoot returns the main repository root and whether dir is a linked
	// worktree of it. For a plain checkout it returns dir, false.
	MainRoot(ctx context.Context, dir string) (string, bool, error)
}

// NewContext builds a Context for code executing in the main repository.
func NewContext(root, home string) Context {
	return Context{
		ExecutionRoot: root,
		MainRepoRoot:  root,
		UserHome:      home,
	}
}

// DetectContext builds a Context for executionRoot, asking finder whether it
// is a linked worktree. A nil finder treats executionRoot as the main root.
// An empty home falls back to os.UserHomeDir.
func DetectContext(ctx context.Context, executionRoot, home string, finder MainRootFinder) (Context, error) {
	absRoot, err := filepath.Abs(executionRoot)
	if err != nil {
		return Context{}, fmt.Errorf("resolve execution root: %w", err)
	}

	if home == "" {
		home, err = os.UserHomeDir()
		if err != nil {
			return Context{}, fmt.Errorf("resolve user home: %w", err)
		}
	}

	pc := NewContext(absRoot, home)
	if finder == nil {
		return pc, nil
	}

	mainRoot, linked, err := finder.MainRoot(ctx, absRoot)
	if err != nil {
		return Context{}, fmt.Errorf("detect main repository: %w", err)
	}
	if linked {
		pc.MainRepoRoot = mainRoot
		pc.WorktreeRoot = absRoot
	}

	return pc, nil
}
