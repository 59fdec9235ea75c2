// Package storage keeps task identity records in the centralized per-project
// store.
//
// Each task is one YAML file, <tasks-dir>/<id>.yaml. Only the fields needed to
// map a task onto its environment are stored; task documents live elsewhere.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valksor/go-taskenv/internal/paths"
)

const taskFileExt = ".yaml"

// ErrTaskNotFound is returned by Get for unknown ids.
var ErrTaskNotFound = errors.New("task not found")

// TaskIdentity is the identity record of a task.
type TaskIdentity struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title,omitempty"`
	ParentTask   string    `yaml:"parent_task,omitempty"`
	IsParentTask bool      `yaml:"is_parent_task,omitempty"`
	CreatedAt    time.Time `yaml:"created_at"`
}

// TaskStore reads and writes task identities under one directory.
type TaskStore struct {
	dir string
	now func() time.Time
}

// NewTaskStore creates a store rooted at dir. The directory is created on the
// first Save.
func NewTaskStore(dir string) *TaskStore {
	return &TaskStore{dir: dir, now: time.Now}
}

// OpenTaskStore creates a store at the TASKS location for pc.
func OpenTaskStore(r *paths.Resolver, pc paths.Context) (*TaskStore, error) {
	dir, err := r.TasksDir(pc)
	if err != nil {
		return nil, fmt.Errorf("resolve tasks directory: %w", err)
	}
	return NewTaskStore(dir), nil
}

// Dir returns the store directory.
func (s *TaskStore) Dir() string {
	return s.dir
}

func validID(id string) error {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("invalid task id %q", id)
	}
	return nil
}

func (s *TaskStore) path(id string) string {
	return filepath.Join(s.dir, id+taskFileExt)
}

// Get loads the identity of id. Missing records wrap ErrTaskNotFound.
func (s *TaskStore) Get(_ context.Context, id string) (*TaskIdentity, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", id, ErrTaskNotFound)
		}
		return nil, fmt.Errorf("read task %s: %w", id, err)
	}

	var task TaskIdentity
	if err := yaml.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("parse task %s: %w", id, err)
	}
	if task.ID == "" {
		task.ID = id
	}

	return &task, nil
}

// Save writes task and, for sub-tasks, marks the parent as a parent task.
// The parent must already exist.
func (s *TaskStore) Save(ctx context.Context, task *TaskIdentity) error {
	if task == nil {
		return errors.New("nil task")
	}
	if err := validID(task.ID); err != nil {
		return err
	}
	if task.ParentTask == task.ID {
		return fmt.Errorf("task %s cannot be its own parent", task.ID)
	}
	if task.ParentTask != "" {
		if err := validID(task.ParentTask); err != nil {
			return fmt.Errorf("parent: %w", err)
		}
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = s.now().UTC()
	}

	return WithLock(ctx, filepath.Join(s.dir, LockFileName), func() error {
		if task.ParentTask != "" {
			parent, err := s.Get(ctx, task.ParentTask)
			if err != nil {
				return fmt.Errorf("load parent: %w", err)
			}
			if parent.ParentTask != "" {
				return fmt.Errorf("parent %s is itself a sub-task of %s", parent.ID, parent.ParentTask)
			}
			if !parent.IsParentTask {
				parent.IsParentTask = true
				if err := s.write(parent); err != nil {
					return err
				}
			}
		}
		return s.write(task)
	})
}

// write stores task using the atomic temp-file-and-rename pattern.
func (s *TaskStore) write(task *TaskIdentity) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create tasks directory: %w", err)
	}

	data, err := yaml.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	path := s.path(task.ID)
	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("write task %s: %w", task.ID, err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			slog.Warn("failed to clean up temp file after rename error", "path", tmpFile, "error", removeErr)
		}
		return fmt.Errorf("save task %s: %w", task.ID, err)
	}

	return nil
}

// List returns all stored task ids in sorted order.
func (s *TaskStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tasks directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), taskFileExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), taskFileExt))
	}
	sort.Strings(ids)

	return ids, nil
}

// Children returns the ids of tasks whose parent is id, sorted.
func (s *TaskStore) Children(ctx context.Context, id string) ([]string, error) {
	ids, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var children []string
	for _, childID := range ids {
		task, err := s.Get(ctx, childID)
		if err != nil {
			return nil, err
		}
		if task.ParentTask == id {
			children = append(children, childID)
		}
	}

	return children, nil
}
