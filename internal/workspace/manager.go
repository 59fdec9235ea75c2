package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valksor/go-taskenv/internal/cache"
	enverrors "github.com/valksor/go-taskenv/internal/errors"
	"github.com/valksor/go-taskenv/internal/log"
	"github.com/valksor/go-taskenv/internal/vcs"
)

// Workspace status values.
const (
	StatusActive  = "active"
	StatusUnknown = "unknown"
)

// Info describes one live workspace.
type Info struct {
	Path         string
	Branch       string
	TaskID       string
	Commit       string
	LastActivity time.Time
	Status       string
}

// CreateOptions configures Create.
type CreateOptions struct {
	// Force skips the reuse check and passes --force to git.
	Force bool
	// Base is the start point for a new branch. Defaults to the main
	// repository's current branch.
	Base string
}

type annotation struct {
	commit       string
	lastActivity time.Time
	status       string
}

// Manager creates, lists and removes task workspaces.
type Manager struct {
	paths      *PathResolver
	naming     *BranchNaming
	newBackend BackendFactory

	status    *cache.Cache[string, annotation]
	statusTTL time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackendFactory replaces GitBackend.
func WithBackendFactory(f BackendFactory) Option {
	return func(m *Manager) {
		m.newBackend = f
	}
}

// WithBranchNaming replaces the default naming service.
func WithBranchNaming(n *BranchNaming) Option {
	return func(m *Manager) {
		m.naming = n
	}
}

// WithStatusTTL sets how long per-workspace annotations are cached.
// Zero or less disables the status cache.
func WithStatusTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.statusTTL = ttl
	}
}

// NewManager creates a Manager resolving locations through paths.
func NewManager(paths *PathResolver, opts ...Option) *Manager {
	m := &Manager{
		paths:      paths,
		naming:     NewBranchNaming(),
		newBackend: GitBackend,
		status:     cache.New[string, annotation](),
		statusTTL:  cache.DefaultStatusTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.statusTTL <= 0 {
		m.status.Disable()
	}
	return m
}

// Naming returns the branch naming service.
func (m *Manager) Naming() *BranchNaming {
	return m.naming
}

// BranchName returns the branch a workspace for taskID uses.
func (m *Manager) BranchName(taskID string) string {
	return m.naming.BranchName(taskID)
}

// WorkspacePath returns where the workspace for taskID lives.
func (m *Manager) WorkspacePath(_ context.Context, taskID string) (string, error) {
	return m.paths.WorkspacePath(taskID)
}

func (m *Manager) backend(taskID string) (Backend, error) {
	root, err := m.paths.Root()
	if err != nil {
		return nil, err
	}
	b, err := m.newBackend(root)
	if err != nil {
		return nil, enverrors.GitFailed(taskID, "open repository", err)
	}
	return b, nil
}

// Create returns the workspace for taskID, creating it if needed.
//
// An existing directory at the target path is reused when git knows it as a
// worktree and is a WORKTREE_CONFLICT otherwise. The branch is attached if it
// exists locally or on the remote, and created from the base branch if not.
func (m *Manager) Create(ctx context.Context, taskID string, opts CreateOptions) (*Info, error) {
	path, err := m.paths.WorkspacePath(taskID)
	if err != nil {
		return nil, err
	}
	b, err := m.backend(taskID)
	if err != nil {
		return nil, err
	}

	if !opts.Force {
		info, err := m.reuse(ctx, b, taskID, path)
		if err != nil || info != nil {
			return info, err
		}
	}

	branch := m.naming.BranchName(taskID)
	add := vcs.AddWorktreeOptions{Path: path, Branch: branch, Force: opts.Force}

	switch {
	case b.BranchExists(ctx, branch):
		log.Debug("attaching workspace to local branch", log.TaskID(taskID), "branch", branch)
	case b.RemoteBranchExists(ctx, vcs.DefaultRemote, branch):
		log.Debug("attaching workspace to remote branch", log.TaskID(taskID), "branch", branch)
		add.NewBranch = true
		add.Track = true
		add.StartPoint = vcs.DefaultRemote + "/" + branch
	default:
		base := opts.Base
		if base == "" {
			base = m.naming.DefaultBaseBranch(ctx, b)
		}
		add.NewBranch = true
		add.StartPoint = base
	}

	if err := b.AddWorktree(ctx, add); err != nil {
		return nil, enverrors.GitFailed(taskID, "create worktree", err)
	}
	m.status.Delete(path)

	commit, err := b.LatestCommit(ctx, path)
	if err != nil {
		return nil, enverrors.GitFailed(taskID, "read workspace commit", err)
	}

	log.Info("workspace created", log.TaskID(taskID), log.Path(path), "branch", branch)

	return &Info{
		Path:         path,
		Branch:       branch,
		TaskID:       taskID,
		Commit:       commit.Hash,
		LastActivity: commit.Time,
		Status:       StatusActive,
	}, nil
}

// reuse returns the live workspace at path, nil if path doesn't exist, or a
// conflict when something else occupies it.
func (m *Manager) reuse(ctx context.Context, b Backend, taskID, path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, enverrors.Wrap(enverrors.CodePathResolutionFailed, taskID, "inspect workspace path", err)
	}

	worktrees, err := b.ListWorktrees(ctx)
	if err != nil {
		return nil, enverrors.GitFailed(taskID, "list worktrees", err)
	}
	for _, wt := range worktrees {
		if wt.Main || wt.Bare || !samePath(wt.Path, path) {
			continue
		}
		info := m.annotate(ctx, b, wt)
		log.Debug("reusing workspace", log.TaskID(taskID), log.Path(path))
		return &info, nil
	}

	return nil, enverrors.New(enverrors.CodeWorktreeConflict, taskID,
		fmt.Sprintf("%s exists but is not a workspace", path))
}

// Remove force-removes the workspace for taskID and prunes stale metadata.
func (m *Manager) Remove(ctx context.Context, taskID string) error {
	path, err := m.paths.WorkspacePath(taskID)
	if err != nil {
		return err
	}
	b, err := m.backend(taskID)
	if err != nil {
		return err
	}

	worktrees, err := b.ListWorktrees(ctx)
	if err != nil {
		return enverrors.GitFailed(taskID, "list worktrees", err)
	}

	var target string
	for _, wt := range worktrees {
		if !wt.Main && samePath(wt.Path, path) {
			target = wt.Path
			break
		}
	}
	if target == "" {
		return enverrors.New(enverrors.CodeWorktreeNotFound, taskID, "no workspace at "+path)
	}

	if err := b.RemoveWorktree(ctx, target, true); err != nil {
		return enverrors.GitFailed(taskID, "remove worktree", err)
	}
	m.status.Delete(target)
	m.status.Delete(path)

	if err := b.PruneWorktrees(ctx); err != nil {
		return enverrors.GitFailed(taskID, "prune worktrees", err)
	}

	log.Info("workspace removed", log.TaskID(taskID), log.Path(target))
	return nil
}

// List returns every linked worktree of the project. Entries that cannot be
// inspected are kept with StatusUnknown.
func (m *Manager) List(ctx context.Context) ([]Info, error) {
	b, err := m.backend("")
	if err != nil {
		return nil, err
	}

	worktrees, err := b.ListWorktrees(ctx)
	if err != nil {
		return nil, enverrors.GitFailed("", "list worktrees", err)
	}

	infos := make([]Info, 0, len(worktrees))
	for _, wt := range worktrees {
		if wt.Main || wt.Bare {
			continue
		}
		infos = append(infos, m.annotate(ctx, b, wt))
	}

	return infos, nil
}

// Exists reports whether a live workspace belongs to taskID.
func (m *Manager) Exists(ctx context.Context, taskID string) (bool, error) {
	_, err := m.Find(ctx, taskID)
	if err == nil {
		return true, nil
	}
	if enverrors.Has(err, enverrors.CodeWorktreeNotFound) {
		return false, nil
	}
	return false, err
}

// Find returns the live workspace for taskID, matched by task id or by its
// expected path, or WORKTREE_NOT_FOUND.
func (m *Manager) Find(ctx context.Context, taskID string) (*Info, error) {
	path, err := m.paths.WorkspacePath(taskID)
	if err != nil {
		return nil, err
	}

	infos, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		if infos[i].TaskID == taskID || samePath(infos[i].Path, path) {
			return &infos[i], nil
		}
	}

	return nil, enverrors.New(enverrors.CodeWorktreeNotFound, taskID, "no workspace for task")
}

// InvalidateStatus drops cached annotations.
func (m *Manager) InvalidateStatus() {
	m.status.Clear()
}

func (m *Manager) annotate(ctx context.Context, b Backend, wt vcs.Worktree) Info {
	info := Info{
		Path:   wt.Path,
		Branch: wt.Branch,
		TaskID: m.taskIDFor(wt),
		Commit: wt.Commit,
	}

	a, ok := m.status.Get(wt.Path)
	if !ok {
		a = m.inspect(ctx, b, wt)
		m.status.Set(wt.Path, a, m.statusTTL)
	}

	if a.commit != "" {
		info.Commit = a.commit
	}
	info.LastActivity = a.lastActivity
	info.Status = a.status

	return info
}

func (m *Manager) inspect(ctx context.Context, b Backend, wt vcs.Worktree) annotation {
	if _, err := os.Stat(wt.Path); err != nil {
		log.Debug("workspace not inspectable", log.Path(wt.Path), log.Err(err))
		return annotation{status: StatusUnknown}
	}

	commit, err := b.LatestCommit(ctx, wt.Path)
	if err != nil {
		log.Debug("workspace commit unavailable", log.Path(wt.Path), log.Err(err))
		return annotation{status: StatusUnknown}
	}

	return annotation{commit: commit.Hash, lastActivity: commit.Time, status: StatusActive}
}

// taskIDFor falls back to the raw branch name for branches this package did
// not create, and to the directory name for detached checkouts.
func (m *Manager) taskIDFor(wt vcs.Worktree) string {
	if id, ok := m.naming.TaskIDFromBranch(wt.Branch); ok {
		return id
	}
	if wt.Branch != "" {
		return wt.Branch
	}
	return filepath.Base(wt.Path)
}

// samePath compares paths lexically, then after resolving symlinks, since
// git reports real paths.
func samePath(a, b string) bool {
	a, b = filepath.Clean(a), filepath.Clean(b)
	if a == b {
		return true
	}
	ra, errA := filepath.EvalSymlinks(a)
	rb, errB := filepath.EvalSymlinks(b)
	return errA == nil && errB == nil && ra == rb
}
