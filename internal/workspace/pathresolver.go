package workspace

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/valksor/go-taskenv/internal/config"
	enverrors "github.com/valksor/go-taskenv/internal/errors"
)

// WorktreesSuffix is appended to the root directory name to form the
// sibling directory holding task workspaces.
const WorktreesSuffix = ".worktrees"

// RootSource yields the active project root.
type RootSource interface {
	RootConfig(ov ...config.Overrides) config.RootConfig
}

// PathResolver derives workspace locations from the active root. It holds no
// state of its own, so changes to the RootSource apply immediately.
type PathResolver struct {
	roots RootSource
}

// NewPathResolver creates a PathResolver reading roots from src.
func NewPathResolver(src RootSource) *PathResolver {
	return &PathResolver{roots: src}
}

// Root returns the validated project root or a CONFIGURATION_ERROR.
func (r *PathResolver) Root() (string, error) {
	if r.roots == nil {
		return "", enverrors.Configuration("no configuration source", nil)
	}

	rc := r.roots.RootConfig()
	if !rc.Validated || rc.Path == "" {
		return "", enverrors.Configuration("no valid project root configured", nil)
	}
	if !filepath.IsAbs(rc.Path) {
		return "", enverrors.Wrap(enverrors.CodePathResolutionFailed, "", "resolve root",
			fmt.Errorf("root is not absolute: %q", rc.Path))
	}

	return filepath.Clean(rc.Path), nil
}

// BasePath returns <parent>/<root-name>.worktrees. The whole path is
// lower-cased, matching how existing workspace directories were named.
func (r *PathResolver) BasePath() (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}

	name := filepath.Base(root)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", enverrors.Wrap(enverrors.CodePathResolutionFailed, "", "resolve workspace base",
			fmt.Errorf("root %q has no directory name", root))
	}

	// A Caser is stateful, so build one per call.
	lower := cases.Lower(language.Und)
	return lower.String(filepath.Join(filepath.Dir(root), name+WorktreesSuffix)), nil
}

// WorkspacePath returns the workspace directory for taskID.
func (r *PathResolver) WorkspacePath(taskID string) (string, error) {
	if err := ValidateTaskID(taskID); err != nil {
		return "", err
	}

	base, err := r.BasePath()
	if err != nil {
		return "", err
	}

	return filepath.Join(base, taskID), nil
}

// ProjectName returns the directory name of the active root.
func (r *PathResolver) ProjectName() (string, error) {
	root, err := r.Root()
	if err != nil {
		return "", err
	}
	return filepath.Base(root), nil
}

// ValidateTaskID rejects ids that are blank or would not form a single path
// segment.
func ValidateTaskID(taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return enverrors.InvalidTaskID(taskID)
	}
	if taskID == "." || taskID == ".." || strings.ContainsAny(taskID, `/\`) {
		return enverrors.New(enverrors.CodeInvalidTaskID, taskID, "task id must be a single path segment")
	}
	return nil
}
