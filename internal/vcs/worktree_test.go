package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const porcelainSample = `worktree /src/proj
HEAD 1111111111111111111111111111111111111111
branch refs/heads/main

worktree /src/proj.worktrees/t1
HEAD 2222222222222222222222222222222222222222
branch refs/heads/task/t1

worktree /src/proj.worktrees/scratch
HEAD 3333333333333333333333333333333333333333
detached
`

func TestParseWorktreeList(t *testing.T) {
	worktrees := ParseWorktreeList(porcelainSample)

	if len(worktrees) != 3 {
		t.Fatalf("got %d worktrees, want 3", len(worktrees))
	}

	tests := []struct {
		path     string
		branch   string
		commit   string
		main     bool
		detached bool
	}{
		{"/src/proj", "main", "1111111111111111111111111111111111111111", true, false},
		{"/src/proj.worktrees/t1", "task/t1", "2222222222222222222222222222222222222222", false, false},
		{"/src/proj.worktrees/scratch", "", "3333333333333333333333333333333333333333", false, true},
	}

	for i, tt := range tests {
		wt := worktrees[i]
		if wt.Path != tt.path {
			t.Errorf("[%d] Path = %q, want %q", i, wt.Path, tt.path)
		}
		if wt.Branch != tt.branch {
			t.Errorf("[%d] Branch = %q, want %q", i, wt.Branch, tt.branch)
		}
		if wt.Commit != tt.commit {
			t.Errorf("[%d] Commit = %q, want %q", i, wt.Commit, tt.commit)
		}
		if wt.Main != tt.main {
			t.Errorf("[%d] Main = %v, want %v", i, wt.Main, tt.main)
		}
		if wt.Detached != tt.detached {
			t.Errorf("[%d] Detached = %v, want %v", i, wt.Detached, tt.detached)
		}
	}
}

func TestParseWorktreeListBareAndEmpty(t *testing.T) {
	if got := ParseWorktreeList(""); len(got) != 0 {
		t.Errorf("ParseWorktreeList(\"\") = %+v, want empty", got)
	}

	got := ParseWorktreeList("worktree /src/proj.git\nbare\n")
	if len(got) != 1 || !got[0].Bare || !got[0].Main {
		t.Errorf("ParseWorktreeList(bare) = %+v", got)
	}
}

func samePath(t *testing.T, a, b string) bool {
	t.Helper()
	ra, err := filepath.EvalSymlinks(a)
	if err != nil {
		ra = a
	}
	rb, err := filepath.EvalSymlinks(b)
	if err != nil {
		rb = b
	}
	return ra == rb
}

func TestAddWorktreeNewBranchAndRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dir := initTestRepo(t)
	g := Open(dir)

	base, err := g.CurrentBranch(ctx)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}

	wtPath := filepath.Join(t.TempDir(), "nested", "t1")
	err = g.AddWorktree(ctx, AddWorktreeOptions{
		Path:       wtPath,
		Branch:     "task/t1",
		NewBranch:  true,
		StartPoint: base,
	})
	if err != nil {
		t.Fatalf("AddWorktree: %v", err)
	}

	if !g.BranchExists(ctx, "task/t1") {
		t.Error("task/t1 should exist after AddWorktree")
	}

	worktrees, err := g.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}
	if len(worktrees) != 2 {
		t.Fatalf("got %d worktrees, want 2", len(worktrees))
	}
	if !samePath(t, worktrees[1].Path, wtPath) || worktrees[1].Branch != "task/t1" {
		t.Errorf("worktree = %+v, want path %q branch task/t1", worktrees[1], wtPath)
	}

	// Dirty the worktree; forced removal must still succeed.
	if err := os.WriteFile(filepath.Join(wtPath, "scratch.txt"), []byte("wip"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := g.RemoveWorktree(ctx, wtPath, true); err != nil {
		t.Fatalf("RemoveWorktree: %v", err)
	}
	if err := g.PruneWorktrees(ctx); err != nil {
		t.Fatalf("PruneWorktrees: %v", err)
	}

	worktrees, _ = g.ListWorktrees(ctx)
	if len(worktrees) != 1 {
		t.Errorf("got %d worktrees after remove, want 1", len(worktrees))
	}
}

func TestAddWorktreeExistingBranch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dir := initTestRepo(t)
	g := Open(dir)

	if err := runGit(ctx, dir, "branch", "task/t2"); err != nil {
		t.Fatalf("git branch: %v", err)
	}

	wtPath := filepath.Join(t.TempDir(), "t2")
	if err := g.AddWorktree(ctx, AddWorktreeOptions{Path: wtPath, Branch: "task/t2"}); err != nil {
		t.Fatalf("AddWorktree: %v", err)
	}

	worktrees, err := g.ListWorktrees(ctx)
	if err != nil {
		t.Fatalf("ListWorktrees: %v", err)
	}
	if len(worktrees) != 2 || worktrees[1].Branch != "task/t2" || !samePath(t, worktrees[1].Path, wtPath) {
		t.Errorf("ListWorktrees() = %+v, want task/t2 at %q", worktrees, wtPath)
	}

	// A second worktree on the same branch is refused by git.
	err = g.AddWorktree(ctx, AddWorktreeOptions{Path: filepath.Join(t.TempDir(), "again"), Branch: "task/t2"})
	if err == nil {
		t.Error("expected error adding a second worktree for the same branch")
	}
}

func TestMainRootFromWorktree(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	dir := initTestRepo(t)
	g := Open(dir)

	wtPath := filepath.Join(t.TempDir(), "t3")
	if err := g.AddWorktree(ctx, AddWorktreeOptions{Path: wtPath, Branch: "task/t3", NewBranch: true}); err != nil {
		t.Fatalf("AddWorktree: %v", err)
	}

	mainRoot, linked, err := g.MainRoot(ctx, wtPath)
	if err != nil {
		t.Fatalf("MainRoot: %v", err)
	}
	if !linked {
		t.Error("MainRoot should report a linked worktree")
	}
	if !samePath(t, mainRoot, dir) {
		t.Errorf("MainRoot = %q, want %q", mainRoot, dir)
	}

	mainRoot, linked, err = g.MainRoot(ctx, dir)
	if err != nil || linked || mainRoot != dir {
		t.Errorf("MainRoot(main) = %q, %v, %v; want %q, false, nil", mainRoot, linked, err, dir)
	}

	// Non-git directories map to themselves.
	plain := t.TempDir()
	mainRoot, linked, err = g.MainRoot(ctx, plain)
	if err != nil || linked || mainRoot != plain {
		t.Errorf("MainRoot(plain) = %q, %v, %v", mainRoot, linked, err)
	}
}
