package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valksor/go-taskenv/internal/paths"
)

func newTestStore(t *testing.T) *TaskStore {
	t.Helper()
	s := NewTaskStore(filepath.Join(t.TempDir(), "tasks"))
	s.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &TaskIdentity{ID: "t1", Title: "First"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := s.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != "t1" || got.Title != "First" || got.ParentTask != "" || got.IsParentTask {
		t.Errorf("Get() = %+v", got)
	}
	if want := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC); !got.CreatedAt.Equal(want) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, want)
	}

	data, err := os.ReadFile(filepath.Join(s.Dir(), "t1.yaml"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "id: t1") {
		t.Errorf("file content = %q", data)
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get() error = %v, want ErrTaskNotFound", err)
	}
}

func TestGetCorrupt(t *testing.T) {
	s := newTestStore(t)
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "bad.yaml"), []byte("id: [oops"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Get(context.Background(), "bad")
	if err == nil || errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Get() error = %v, want parse error", err)
	}
}

func TestSaveMarksParent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, &TaskIdentity{ID: "parent"}); err != nil {
		t.Fatalf("Save parent: %v", err)
	}
	if err := s.Save(ctx, &TaskIdentity{ID: "child", ParentTask: "parent"}); err != nil {
		t.Fatalf("Save child: %v", err)
	}

	parent, err := s.Get(ctx, "parent")
	if err != nil {
		t.Fatalf("Get parent: %v", err)
	}
	if !parent.IsParentTask {
		t.Error("parent not marked is_parent_task")
	}

	children, err := s.Children(ctx, "parent")
	if err != nil {
		t.Fatalf("Children: %v", err)
	}
	if len(children) != 1 || children[0] != "child" {
		t.Errorf("Children() = %v, want [child]", children)
	}
}

func TestSaveRejectsBadHierarchy(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		task *TaskIdentity
	}{
		{"nil", nil},
		{"empty id", &TaskIdentity{}},
		{"path id", &TaskIdentity{ID: "a/b"}},
		{"self parent", &TaskIdentity{ID: "x", ParentTask: "x"}},
		{"missing parent", &TaskIdentity{ID: "x", ParentTask: "ghost"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Save(ctx, tt.task); err == nil {
				t.Error("expected error")
			}
		})
	}

	if err := s.Save(ctx, &TaskIdentity{ID: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, &TaskIdentity{ID: "c", ParentTask: "p"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, &TaskIdentity{ID: "gc", ParentTask: "c"}); err == nil {
		t.Error("expected error for nesting under a sub-task")
	}
}

func TestList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ids, err := s.List(ctx)
	if err != nil || len(ids) != 0 {
		t.Fatalf("List() on empty store = %v, %v", ids, err)
	}

	for _, id := range []string{"zeta", "alpha", "mid"} {
		if err := s.Save(ctx, &TaskIdentity{ID: id}); err != nil {
			t.Fatal(err)
		}
	}

	ids, err = s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"alpha", "mid", "zeta"}
	if strings.Join(ids, ",") != strings.Join(want, ",") {
		t.Errorf("List() = %v, want %v", ids, want)
	}
}

func TestOpenTaskStoreUsesCentralizedDir(t *testing.T) {
	home := t.TempDir()
	root := t.TempDir()
	pc := paths.NewContext(root, home)

	s, err := OpenTaskStore(paths.NewResolver(), pc)
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}

	want := filepath.Join(paths.ProjectStoreDir(home, root), "tasks")
	if s.Dir() != want {
		t.Errorf("Dir() = %q, want %q", s.Dir(), want)
	}
}
