// Package workspace manages one git worktree per task next to the active
// project root.
//
// The layout is fixed by PathResolver: a project rooted at /src/app keeps its
// task workspaces under /src/app.worktrees/<task-id>. Manager creates, reuses,
// lists and removes those worktrees through a Backend, which is *vcs.Git in
// production and an in-memory fake in tests.
package workspace

import (
	"context"

	"github.com/valksor/go-taskenv/internal/vcs"
)

// Backend is the subset of git operations the workspace lifecycle needs.
type Backend interface {
	ListWorktrees(ctx context.Context) ([]vcs.Worktree, error)
	AddWorktree(ctx context.Context, opts vcs.AddWorktreeOptions) error
	RemoveWorktree(ctx context.Context, path string, force bool) error
	PruneWorktrees(ctx context.Context) error
	BranchExists(ctx context.Context, name string) bool
	RemoteBranchExists(ctx context.Context, remote, name string) bool
	CurrentBranch(ctx context.Context) (string, error)
	LatestCommit(ctx context.Context, dir string) (vcs.Commit, error)
}

// BackendFactory opens a Backend for the repository at root.
type BackendFactory func(root string) (Backend, error)

// GitBackend opens the git CLI backend for root.
func GitBackend(root string) (Backend, error) {
	return vcs.Open(root), nil
}

var _ Backend = (*vcs.Git)(nil)
