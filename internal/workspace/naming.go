package workspace

import (
	"context"
	"strings"

	"github.com/valksor/go-taskenv/internal/log"
)

const (
	// BranchPrefix precedes the task id in workspace branch names.
	BranchPrefix = "task/"
	// DefaultBaseBranch is used when the main repository's branch is unknown.
	DefaultBaseBranch = "main"
)

// BranchReader reports the branch checked out in the main repository.
type BranchReader interface {
	CurrentBranch(ctx context.Context) (string, error)
}

// BranchNaming maps task ids to branch names and back.
type BranchNaming struct {
	prefix      string
	defaultBase string
}

// NamingOption configures BranchNaming.
type NamingOption func(*BranchNaming)

// WithBranchPrefix overrides BranchPrefix.
func WithBranchPrefix(prefix string) NamingOption {
	return func(n *BranchNaming) {
		n.prefix = prefix
	}
}

// WithDefaultBase overrides DefaultBaseBranch.
func WithDefaultBase(branch string) NamingOption {
	return func(n *BranchNaming) {
		n.defaultBase = branch
	}
}

// NewBranchNaming creates the naming service.
func NewBranchNaming(opts ...NamingOption) *BranchNaming {
	n := &BranchNaming{prefix: BranchPrefix, defaultBase: DefaultBaseBranch}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// BranchName returns the branch for taskID.
func (n *BranchNaming) BranchName(taskID string) string {
	return n.prefix + taskID
}

// TaskIDFromBranch extracts the task id from a branch created by BranchName.
// It returns false for branches that don't follow the convention.
func (n *BranchNaming) TaskIDFromBranch(branch string) (string, bool) {
	branch = strings.TrimPrefix(branch, "refs/heads/")
	id, ok := strings.CutPrefix(branch, n.prefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// DefaultBaseBranch returns the branch checked out in the main repository,
// or the configured default when it is detached or cannot be read.
func (n *BranchNaming) DefaultBaseBranch(ctx context.Context, r BranchReader) string {
	if r == nil {
		return n.defaultBase
	}

	branch, err := r.CurrentBranch(ctx)
	if err != nil {
		log.Debug("current branch unavailable, using default base", log.Err(err), "default", n.defaultBase)
		return n.defaultBase
	}
	if branch == "" || branch == "HEAD" {
		return n.defaultBase
	}

	return branch
}
