package commands

import (
	"context"

	"github.com/valksor/go-taskenv/internal/environment"
	enverrors "github.com/valksor/go-taskenv/internal/errors"
	"github.com/valksor/go-taskenv/internal/paths"
	"github.com/valksor/go-taskenv/internal/storage"
	"github.com/valksor/go-taskenv/internal/vcs"
	"github.com/valksor/go-taskenv/internal/workspace"
)

// activeRoot returns the validated project root.
func activeRoot() (string, error) {
	rc := cfg.RootConfig()
	if !rc.Validated {
		return "", enverrors.Configuration("no valid project root configured", nil)
	}
	return rc.Path, nil
}

// pathContext describes the active root, detecting whether it is a linked
// worktree of another checkout.
func pathContext(ctx context.Context) (paths.Context, error) {
	root, err := activeRoot()
	if err != nil {
		return paths.Context{}, err
	}
	pc, err := paths.DetectContext(ctx, root, cfg.Home(), vcs.Open(root))
	if err != nil {
		return paths.Context{}, enverrors.Wrap(enverrors.CodePathResolutionFailed, "", "detect path context", err)
	}
	return pc, nil
}

func openTaskStore(ctx context.Context) (*storage.TaskStore, error) {
	pc, err := pathContext(ctx)
	if err != nil {
		return nil, err
	}
	store, err := storage.OpenTaskStore(paths.NewResolver(), pc)
	if err != nil {
		return nil, enverrors.Wrap(enverrors.CodePathResolutionFailed, "", "open task store", err)
	}
	return store, nil
}

func newWorkspaces() *workspace.Manager {
	return workspace.NewManager(workspace.NewPathResolver(cfg))
}

func newEnvironmentResolver(ctx context.Context) (*environment.Resolver, error) {
	store, err := openTaskStore(ctx)
	if err != nil {
		return nil, err
	}
	return environment.NewResolver(store, newWorkspaces()), nil
}
