package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/valksor/go-taskenv/internal/vcs"
)

// FakeBackend is an in-memory git backend for workspace tests. Added
// worktrees get a real directory on disk so existence checks behave like git.
type FakeBackend struct {
	mu sync.Mutex

	// Repository state
	Root           string
	Current        string // branch checked out in the main worktree
	LocalBranches  map[string]bool
	RemoteBranches map[string]bool // branch names present on origin
	Worktrees      []vcs.Worktree  // linked worktrees, main is synthesized
	Commits        map[string]vcs.Commit
	DefaultCommit  vcs.Commit

	// Call tracking
	Adds        []vcs.AddWorktreeOptions
	Removes     []string
	Prunes      int
	ListCalls   int
	CommitCalls int

	// Error simulation
	ListErr    error
	AddErr     error
	RemoveErr  error
	PruneErr   error
	CommitErr  error
	CurrentErr error
}

// NewFakeBackend creates a backend for a repository at root on branch main.
func NewFakeBackend(root string) *FakeBackend {
	return &FakeBackend{
		Root:           root,
		Current:        "main",
		LocalBranches:  map[string]bool{"main": true},
		RemoteBranches: map[string]bool{},
		Commits:        map[string]vcs.Commit{},
		DefaultCommit: vcs.Commit{
			Hash: "0123456789abcdef0123456789abcdef01234567",
			Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

// ListWorktrees returns the main worktree followed by linked worktrees.
func (b *FakeBackend) ListWorktrees(_ context.Context) ([]vcs.Worktree, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.ListCalls++
	if b.ListErr != nil {
		return nil, b.ListErr
	}

	out := []vcs.Worktree{{Path: b.Root, Branch: b.Current, Commit: b.DefaultCommit.Hash, Main: true}}
	return append(out, b.Worktrees...), nil
}

// AddWorktree records opts and mimics git's branch checks.
func (b *FakeBackend) AddWorktree(_ context.Context, opts vcs.AddWorktreeOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Adds = append(b.Adds, opts)
	if b.AddErr != nil {
		return b.AddErr
	}

	for _, wt := range b.Worktrees {
		if filepath.Clean(wt.Path) == filepath.Clean(opts.Path) {
			return fmt.Errorf("git worktree: '%s' already exists", opts.Path)
		}
		if !opts.Force && wt.Branch == opts.Branch {
			return fmt.Errorf("git worktree: '%s' is already checked out", opts.Branch)
		}
	}

	if opts.NewBranch {
		if b.LocalBranches[opts.Branch] {
			return fmt.Errorf("git worktree: a branch named '%s' already exists", opts.Branch)
		}
		b.LocalBranches[opts.Branch] = true
	} else if !b.LocalBranches[opts.Branch] {
		return fmt.Errorf("git worktree: invalid reference: %s", opts.Branch)
	}

	if err := os.MkdirAll(opts.Path, 0o755); err != nil {
		return err
	}

	b.Worktrees = append(b.Worktrees, vcs.Worktree{
		Path:   opts.Path,
		Branch: opts.Branch,
		Commit: b.DefaultCommit.Hash,
	})
	return nil
}

// RemoveWorktree deletes the worktree entry and its directory.
func (b *FakeBackend) RemoveWorktree(_ context.Context, path string, _ bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Removes = append(b.Removes, path)
	if b.RemoveErr != nil {
		return b.RemoveErr
	}

	for i, wt := range b.Worktrees {
		if filepath.Clean(wt.Path) == filepath.Clean(path) {
			b.Worktrees = append(b.Worktrees[:i], b.Worktrees[i+1:]...)
			return os.RemoveAll(path)
		}
	}
	return fmt.Errorf("git worktree: '%s' is not a working tree", path)
}

// PruneWorktrees counts calls.
func (b *FakeBackend) PruneWorktrees(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Prunes++
	return b.PruneErr
}

// BranchExists reports local branches.
func (b *FakeBackend) BranchExists(_ context.Context, name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.LocalBranches[name]
}

// RemoteBranchExists reports branches on origin only.
func (b *FakeBackend) RemoteBranchExists(_ context.Context, remote, name string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return remote == vcs.DefaultRemote && b.RemoteBranches[name]
}

// CurrentBranch returns Current.
func (b *FakeBackend) CurrentBranch(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.CurrentErr != nil {
		return "", b.CurrentErr
	}
	return b.Current, nil
}

// LatestCommit returns the commit recorded for dir, or DefaultCommit.
func (b *FakeBackend) LatestCommit(_ context.Context, dir string) (vcs.Commit, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.CommitCalls++
	if b.CommitErr != nil {
		return vcs.Commit{}, b.CommitErr
	}
	if c, ok := b.Commits[dir]; ok {
		return c, nil
	}
	return b.DefaultCommit, nil
}
