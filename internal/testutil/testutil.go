// Package testutil provides shared testing utilities for taskenv tests.
package testutil

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// CreateTempGitRepo creates an initialized git repository in a lower-case
// temporary directory with one commit on branch main.
// Workspace base paths are lower-cased as a whole, so repositories used in
// workspace tests must live under lower-case paths.
func CreateTempGitRepo(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(LowerTempDir(t), "repo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", dir, err)
	}
	InitGitRepo(t, dir)
	return dir
}

// InitGitRepo initializes a git repository in an existing directory. The
// test is skipped if git is unavailable.
func InitGitRepo(t *testing.T, dir string) {
	t.Helper()

	if err := runGit(t, dir, "init", "-b", "main"); err != nil {
		t.Skipf("git not available: %v", err)
	}

	// Configure git user (required for commits)
	mustRunGit(t, dir, "config", "user.email", "test@example.com")
	mustRunGit(t, dir, "config", "user.name", "Test User")

	WriteFile(t, filepath.Join(dir, "README.md"), "# Test Repository\n")
	mustRunGit(t, dir, "add", ".")
	mustRunGit(t, dir, "commit", "-m", "initial commit")
}

// LowerTempDir returns a temporary directory whose resolved path is entirely
// lower-case, skipping the test when the platform's temp root is not.
func LowerTempDir(t *testing.T) string {
	t.Helper()

	dir, err := os.MkdirTemp("", "taskenv")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}
	if strings.ToLower(dir) != dir {
		t.Skipf("temp dir %q is not lower-case", dir)
	}

	return dir
}

// WriteFile creates a file with the given content, creating parent directories as needed.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

// WriteFileAndCommit writes a file and commits it.
func WriteFileAndCommit(t *testing.T, dir, relativePath, content, message string) {
	t.Helper()
	WriteFile(t, filepath.Join(dir, relativePath), content)
	mustRunGit(t, dir, "add", relativePath)
	mustRunGit(t, dir, "commit", "-m", message)
}

// runGit runs a git command and returns any error.
func runGit(t *testing.T, dir string, args ...string) error {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE=2020-01-01T00:00:00Z",
		"GIT_COMMITTER_DATE=2020-01-01T00:00:00Z",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("git %v failed: %s", args, output)
	}

	return err
}

// mustRunGit runs a git command and fails the test if it errors.
func mustRunGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := runGit(t, dir, args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

// RunGit runs a git command and returns its output.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(context.Background(), "git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\nOutput: %s", args, err, output)
	}

	return string(output)
}

// GitCreateBranch creates a new branch at the current HEAD.
func GitCreateBranch(t *testing.T, repoDir, branch string) {
	t.Helper()
	mustRunGit(t, repoDir, "branch", branch)
}

// GetCurrentBranch returns the current branch name.
func GetCurrentBranch(t *testing.T, repoDir string) string {
	t.Helper()
	return strings.TrimSpace(RunGit(t, repoDir, "branch", "--show-current"))
}

// AssertBranchExists fails the test if the branch doesn't exist.
func AssertBranchExists(t *testing.T, repoDir, branch string) {
	t.Helper()
	if strings.TrimSpace(RunGit(t, repoDir, "branch", "--list", branch)) == "" {
		t.Errorf("branch %q does not exist", branch)
	}
}

// AssertWorktreeExists fails the test if the worktree doesn't exist.
func AssertWorktreeExists(t *testing.T, repoDir, worktreePath string) {
	t.Helper()
	if !strings.Contains(RunGit(t, repoDir, "worktree", "list", "--porcelain"), worktreePath) {
		t.Errorf("worktree %q does not exist", worktreePath)
	}
}

// AssertWorktreeNotExists fails the test if the worktree exists.
func AssertWorktreeNotExists(t *testing.T, repoDir, worktreePath string) {
	t.Helper()
	if strings.Contains(RunGit(t, repoDir, "worktree", "list", "--porcelain"), worktreePath) {
		t.Errorf("worktree %q exists but should not", worktreePath)
	}
}

// AssertFileExists fails the test if the file does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("expected file to exist: %s", path)
	}
}

// AssertFileNotExists fails the test if the file exists.
func AssertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file to not exist: %s", path)
	}
}
