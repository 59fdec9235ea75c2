package vcs

import (
	"context"
	"fmt"
)

// DefaultRemote is the remote consulted for remote-only branches.
const DefaultRemote = "origin"

// BranchExists checks if a local branch exists.
func (g *Git) BranchExists(ctx context.Context, name string) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", "--quiet", "refs/heads/"+name)
	return err == nil
}

// RemoteBranchExists checks if a remote-tracking branch exists.
func (g *Git) RemoteBranchExists(ctx context.Context, remote, name string) bool {
	_, err := g.run(ctx, "rev-parse", "--verify", "--quiet", fmt.Sprintf("refs/remotes/%s/%s", remote, name))
	return err == nil
}
