package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/valksor/go-taskenv/internal/cache"
	enverrors "github.com/valksor/go-taskenv/internal/errors"
	"github.com/valksor/go-taskenv/internal/log"
)

// StoreDirName is the per-user store directory under the home directory.
const StoreDirName = ".taskenv"

// rootKey captures every input of a resolution. Environment and working
// directory are read on each call, so changing them yields a new key.
type rootKey struct {
	runtime string
	cli     string
	env     string
	session string
	project string
	cwd     string
}

// Manager resolves the active project root. It is safe for concurrent use.
type Manager struct {
	mu          sync.RWMutex
	runtimeRoot string // baked in by WithOverrides
	cliPath     string
	sessionPath string
	projectName string

	home   string
	getenv func(string) string
	getwd  func() (string, error)

	cache *cache.Cache[rootKey, RootConfig]
}

// Option configures a Manager.
type Option func(*Manager)

// WithHome sets the user home directory instead of os.UserHomeDir.
func WithHome(home string) Option {
	return func(m *Manager) {
		m.home = home
	}
}

// WithGetenv replaces os.Getenv for environment lookups.
func WithGetenv(fn func(string) string) Option {
	return func(m *Manager) {
		m.getenv = fn
	}
}

// WithWorkDir fixes the directory auto-detection starts from.
func WithWorkDir(dir string) Option {
	return func(m *Manager) {
		m.getwd = func() (string, error) { return dir, nil }
	}
}

// NewManager creates a Manager with no CLI, session or project selection.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		getenv: os.Getenv,
		getwd:  os.Getwd,
		cache:  cache.New[rootKey, RootConfig](),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			m.home = home
		}
	}
	return m
}

// Home returns the user home directory used for the centralized store.
func (m *Manager) Home() string {
	return m.home
}

// StoreDir returns <home>/.taskenv.
func (m *Manager) StoreDir() string {
	return filepath.Join(m.home, StoreDirName)
}

// ProjectsPath returns the path of the user-level projects file.
func (m *Manager) ProjectsPath() string {
	return filepath.Join(m.StoreDir(), ProjectsFileName)
}

// RootConfig resolves the active root. The first source that yields a
// validated path wins; the result is cached per input set.
func (m *Manager) RootConfig(ov ...Overrides) RootConfig {
	m.mu.RLock()
	key := rootKey{
		runtime: m.runtimeRoot,
		cli:     m.cliPath,
		session: m.sessionPath,
		project: m.projectName,
	}
	m.mu.RUnlock()

	for _, o := range ov {
		if o.Root != "" {
			key.runtime = o.Root
		}
	}
	key.env = m.getenv(EnvRoot)
	if cwd, err := m.getwd(); err == nil {
		key.cwd = cwd
	}

	if rc, ok := m.cache.Get(key); ok {
		return rc
	}

	rc := m.resolve(key)
	m.cache.Set(key, rc, cache.NoExpiry)

	log.Debug("resolved project root", "path", rc.Path, "source", rc.Source.String(), "validated", rc.Validated)
	return rc
}

func (m *Manager) resolve(key rootKey) RootConfig {
	candidates := []struct {
		path   string
		source Source
	}{
		{key.runtime, SourceRuntime},
		{key.cli, SourceCLI},
		{key.env, SourceEnvironment},
		{key.session, SourceSession},
	}
	for _, c := range candidates {
		if c.path == "" {
			continue
		}
		if abs, ok := m.validated(c.path); ok {
			return RootConfig{Path: abs, Source: c.source, Validated: true}
		}
		log.Debug("skipping invalid root", "path", c.path, "source", c.source.String())
	}

	if rc, ok := m.resolveFromProjects(key.project); ok {
		return rc
	}

	if key.cwd != "" {
		if root, ok := m.detect(key.cwd); ok {
			return RootConfig{Path: root, Source: SourceAutoDetect, Validated: true}
		}
	}

	return RootConfig{Source: SourceAutoDetect}
}

func (m *Manager) resolveFromProjects(name string) (RootConfig, bool) {
	f, err := LoadProjectsFile(m.ProjectsPath())
	if err != nil {
		log.Warn("ignoring unreadable projects file", log.Err(err))
		return RootConfig{}, false
	}

	if name == "" {
		name = f.Current
	}
	if name == "" {
		return RootConfig{}, false
	}

	p, ok := f.Find(name)
	if !ok {
		return RootConfig{}, false
	}
	abs, ok := m.validated(p.Path)
	if !ok {
		return RootConfig{}, false
	}

	return RootConfig{Path: abs, Source: SourceConfigFile, Validated: true, ProjectName: p.Name}, true
}

// detect walks up from dir looking for a directory containing a marker.
func (m *Manager) detect(dir string) (string, bool) {
	current, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		if m.ValidateRoot(current) {
			return current, true
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", false
		}
		current = parent
	}
}

// ValidateRoot reports whether path is an existing directory containing one
// of MarkerDirs.
func (m *Manager) ValidateRoot(path string) bool {
	_, ok := m.validated(path)
	return ok
}

func (m *Manager) validated(path string) (string, bool) {
	if path == "" {
		return "", false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}

	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", false
	}

	for _, marker := range MarkerDirs {
		if mi, err := os.Stat(filepath.Join(abs, marker)); err == nil && mi.IsDir() {
			return abs, true
		}
	}
	return "", false
}

// SetRootFromCLI sets the CLI-level root. An invalid path fails fast and
// leaves the previous setting in place.
func (m *Manager) SetRootFromCLI(path string) error {
	abs, ok := m.validated(path)
	if !ok {
		return enverrors.Configuration(fmt.Sprintf("invalid project root from CLI: %q", path), nil)
	}

	m.mu.Lock()
	m.cliPath = abs
	m.mu.Unlock()

	m.Invalidate()
	return nil
}

// ClearCLIRoot removes the CLI-level root.
func (m *Manager) ClearCLIRoot() {
	m.mu.Lock()
	m.cliPath = ""
	m.mu.Unlock()

	m.Invalidate()
}

// SetRootFromSession sets the session-level root. An invalid path fails fast.
func (m *Manager) SetRootFromSession(path string) error {
	abs, ok := m.validated(path)
	if !ok {
		return enverrors.Configuration(fmt.Sprintf("invalid project root for session: %q", path), nil)
	}

	m.mu.Lock()
	m.sessionPath = abs
	m.mu.Unlock()

	m.Invalidate()
	return nil
}

// ClearSessionConfig removes the session-level root.
func (m *Manager) ClearSessionConfig() {
	m.mu.Lock()
	m.sessionPath = ""
	m.mu.Unlock()

	m.Invalidate()
}

// SetRootFromConfig selects a named project from the projects file.
// Unknown names return a CONFIGURATION_ERROR wrapping ErrProjectNotFound.
func (m *Manager) SetRootFromConfig(name string) error {
	f, err := LoadProjectsFile(m.ProjectsPath())
	if err != nil {
		return enverrors.Configuration("load projects", err)
	}

	p, ok := f.Find(name)
	if !ok {
		return enverrors.Configuration(fmt.Sprintf("project %q", name), ErrProjectNotFound)
	}
	if !m.ValidateRoot(p.Path) {
		return enverrors.Configuration(fmt.Sprintf("project %q has invalid root %q", name, p.Path), nil)
	}

	m.mu.Lock()
	m.projectName = name
	m.mu.Unlock()

	m.Invalidate()
	return nil
}

// Projects returns the registered projects.
func (m *Manager) Projects() ([]Project, error) {
	f, err := LoadProjectsFile(m.ProjectsPath())
	if err != nil {
		return nil, enverrors.Configuration("load projects", err)
	}
	return f.Projects, nil
}

// AddProject registers or updates a named project. The path must validate.
func (m *Manager) AddProject(name, path string) error {
	if name == "" {
		return enverrors.Configuration("project name must not be empty", nil)
	}
	abs, ok := m.validated(path)
	if !ok {
		return enverrors.Configuration(fmt.Sprintf("invalid project root: %q", path), nil)
	}

	f, err := LoadProjectsFile(m.ProjectsPath())
	if err != nil {
		return enverrors.Configuration("load projects", err)
	}
	f.Upsert(Project{Name: name, Path: abs})
	if err := f.Save(m.ProjectsPath()); err != nil {
		return enverrors.Configuration("save projects", err)
	}

	m.Invalidate()
	return nil
}

// UseProject persists name as the projects file's current project.
func (m *Manager) UseProject(name string) error {
	f, err := LoadProjectsFile(m.ProjectsPath())
	if err != nil {
		return enverrors.Configuration("load projects", err)
	}
	if _, ok := f.Find(name); !ok {
		return enverrors.Configuration(fmt.Sprintf("project %q", name), ErrProjectNotFound)
	}

	f.Current = name
	if err := f.Save(m.ProjectsPath()); err != nil {
		return enverrors.Configuration("save projects", err)
	}

	m.Invalidate()
	return nil
}

// WithOverrides returns an independent Manager sharing this one's settings
// with ov applied as a permanent runtime override.
func (m *Manager) WithOverrides(ov Overrides) *Manager {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return &Manager{
		runtimeRoot: ov.Root,
		cliPath:     m.cliPath,
		sessionPath: m.sessionPath,
		projectName: m.projectName,
		home:        m.home,
		getenv:      m.getenv,
		getwd:       m.getwd,
		cache:       cache.New[rootKey, RootConfig](),
	}
}

// Reset clears every explicit setting and the cache.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.runtimeRoot = ""
	m.cliPath = ""
	m.sessionPath = ""
	m.projectName = ""
	m.mu.Unlock()

	m.Invalidate()
}

// Invalidate drops cached resolutions.
func (m *Manager) Invalidate() {
	m.cache.Clear()
}
