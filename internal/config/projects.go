package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// ProjectsFileName is the user-level project registry inside the store dir.
const ProjectsFileName = "projects.yaml"

// ErrProjectNotFound is wrapped by SetRootFromConfig and UseProject when the
// name is not registered.
var ErrProjectNotFound = errors.New("project not found")

// Project is a named project root registered in the projects file.
type Project struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ProjectsFile is the on-disk layout of ~/.taskenv/projects.yaml.
type ProjectsFile struct {
	Current  string    `yaml:"current,omitempty"`
	Projects []Project `yaml:"projects,omitempty"`
}

// Find returns the project with the given name.
func (f *ProjectsFile) Find(name string) (Project, bool) {
	for _, p := range f.Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// Upsert adds or replaces a project, keeping the list sorted by name.
func (f *ProjectsFile) Upsert(p Project) {
	for i := range f.Projects {
		if f.Projects[i].Name == p.Name {
			f.Projects[i] = p
			return
		}
	}
	f.Projects = append(f.Projects, p)
	sort.Slice(f.Projects, func(i, j int) bool {
		return f.Projects[i].Name < f.Projects[j].Name
	})
}

// LoadProjectsFile reads the projects file. A missing file is an empty registry.
func LoadProjectsFile(path string) (*ProjectsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectsFile{}, nil
		}
		return nil, fmt.Errorf("read projects file: %w", err)
	}

	var f ProjectsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse projects file: %w", err)
	}

	return &f, nil
}

// Save writes the projects file using atomic write pattern.
func (f *ProjectsFile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal projects: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("write projects file: %w", err)
	}
	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			slog.Warn("failed to clean up temp file after rename error", "path", tmpFile, "error", removeErr)
		}
		return fmt.Errorf("save projects file: %w", err)
	}

	return nil
}
