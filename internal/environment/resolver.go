// Package environment maps tasks onto the workspaces they run in.
//
// An environment is identified by a task id. Sub-tasks never get their own
// environment: they resolve to their parent's id, so every sub-task of a
// parent works in the same workspace.
package environment

import (
	"context"
	"errors"

	enverrors "github.com/valksor/go-taskenv/internal/errors"
	"github.com/valksor/go-taskenv/internal/log"
	"github.com/valksor/go-taskenv/internal/storage"
	"github.com/valksor/go-taskenv/internal/workspace"
)

// TaskStore provides task identities.
type TaskStore interface {
	Get(ctx context.Context, id string) (*storage.TaskIdentity, error)
}

// Workspaces is the workspace lifecycle the resolver drives.
type Workspaces interface {
	Exists(ctx context.Context, taskID string) (bool, error)
	Find(ctx context.Context, taskID string) (*workspace.Info, error)
	Create(ctx context.Context, taskID string, opts workspace.CreateOptions) (*workspace.Info, error)
	WorkspacePath(ctx context.Context, taskID string) (string, error)
	BranchName(taskID string) string
}

// Info describes an environment. ID is always an environment id, never a
// sub-task id.
type Info struct {
	ID       string
	Path     string
	Branch   string
	Exists   bool
	IsActive bool
}

// Resolver resolves and provisions environments.
type Resolver struct {
	tasks      TaskStore
	workspaces Workspaces
}

// NewResolver creates a Resolver.
func NewResolver(tasks TaskStore, workspaces Workspaces) *Resolver {
	return &Resolver{tasks: tasks, workspaces: workspaces}
}

// ResolveEnvironmentID returns the environment id for taskID: its parent's id
// for sub-tasks, its own id otherwise.
func (r *Resolver) ResolveEnvironmentID(ctx context.Context, taskID string) (string, error) {
	if taskID == "" {
		return "", enverrors.InvalidTaskID(taskID)
	}

	task, err := r.tasks.Get(ctx, taskID)
	if err != nil {
		if errors.Is(err, storage.ErrTaskNotFound) || enverrors.Has(err, enverrors.CodeTaskNotFound) {
			return "", enverrors.Wrap(enverrors.CodeTaskNotFound, taskID, "task not found", err)
		}
		return "", err
	}
	if task == nil {
		return "", enverrors.New(enverrors.CodeTaskNotFound, taskID, "task not found")
	}

	if task.ParentTask != "" {
		log.Debug("sub-task shares parent environment", log.TaskID(taskID), log.EnvID(task.ParentTask))
		return task.ParentTask, nil
	}
	return task.ID, nil
}

// EnsureEnvironment returns the live environment for id, creating its
// workspace when none exists.
func (r *Resolver) EnsureEnvironment(ctx context.Context, id string) (*Info, error) {
	if id == "" {
		return nil, enverrors.InvalidTaskID(id)
	}

	exists, err := r.workspaces.Exists(ctx, id)
	if err != nil {
		return nil, err
	}

	var ws *workspace.Info
	if exists {
		ws, err = r.workspaces.Find(ctx, id)
	} else {
		ws, err = r.workspaces.Create(ctx, id, workspace.CreateOptions{})
	}
	if err != nil {
		return nil, err
	}

	return &Info{ID: id, Path: ws.Path, Branch: ws.Branch, Exists: true, IsActive: true}, nil
}

// EnvironmentInfo reports the environment for id without creating anything.
// It returns false for an empty id or when any lookup fails; a resolvable id
// without a live workspace yields Exists=false.
func (r *Resolver) EnvironmentInfo(ctx context.Context, id string) (Info, bool) {
	if id == "" {
		return Info{}, false
	}

	ws, err := r.workspaces.Find(ctx, id)
	if err == nil {
		return Info{
			ID:       id,
			Path:     ws.Path,
			Branch:   ws.Branch,
			Exists:   true,
			IsActive: ws.Status == workspace.StatusActive,
		}, true
	}
	if !enverrors.Has(err, enverrors.CodeWorktreeNotFound) {
		log.Debug("environment lookup failed", log.EnvID(id), log.Err(err))
		return Info{}, false
	}

	path, err := r.workspaces.WorkspacePath(ctx, id)
	if err != nil {
		log.Debug("environment path unavailable", log.EnvID(id), log.Err(err))
		return Info{}, false
	}

	return Info{ID: id, Path: path, Branch: r.workspaces.BranchName(id)}, true
}

// TaskEnvironmentInfo is EnvironmentInfo for the environment taskID resolves to.
func (r *Resolver) TaskEnvironmentInfo(ctx context.Context, taskID string) (Info, bool) {
	id, err := r.ResolveEnvironmentID(ctx, taskID)
	if err != nil {
		log.Debug("task environment unresolved", log.TaskID(taskID), log.Err(err))
		return Info{}, false
	}
	return r.EnvironmentInfo(ctx, id)
}

// EnsureTaskEnvironment ensures the environment taskID resolves to.
func (r *Resolver) EnsureTaskEnvironment(ctx context.Context, taskID string) (*Info, error) {
	id, err := r.ResolveEnvironmentID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return r.EnsureEnvironment(ctx, id)
}
