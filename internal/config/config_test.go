package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	enverrors "github.com/valksor/go-taskenv/internal/errors"
)

// makeRoot creates a temp directory containing the given marker directory.
func makeRoot(t *testing.T, marker string) string {
	t.Helper()
	dir := t.TempDir()
	if marker != "" {
		if err := os.MkdirAll(filepath.Join(dir, marker), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

type fakeEnv map[string]string

func (e fakeEnv) get(key string) string { return e[key] }

func newTestManager(t *testing.T, env fakeEnv) *Manager {
	t.Helper()
	return NewManager(
		WithHome(t.TempDir()),
		WithGetenv(env.get),
		WithWorkDir(t.TempDir()), // no markers above a fresh temp dir
	)
}

func TestSourceString(t *testing.T) {
	tests := map[Source]string{
		SourceRuntime:     "RUNTIME",
		SourceCLI:         "CLI",
		SourceEnvironment: "ENVIRONMENT",
		SourceSession:     "SESSION",
		SourceConfigFile:  "CONFIG_FILE",
		SourceAutoDetect:  "AUTO_DETECT",
		Source(42):        "Source(42)",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("Source(%d).String() = %q, want %q", int(s), got, want)
		}
	}
}

func TestValidateRoot(t *testing.T) {
	m := newTestManager(t, fakeEnv{})

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"tasks marker", makeRoot(t, ".tasks"), true},
		{"git marker", makeRoot(t, ".git"), true},
		{"no marker", makeRoot(t, ""), false},
		{"missing dir", filepath.Join(t.TempDir(), "nope"), false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.ValidateRoot(tt.path); got != tt.want {
				t.Errorf("ValidateRoot(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}

	// A marker that is a file does not count.
	fileMarker := makeRoot(t, "")
	if err := os.WriteFile(filepath.Join(fileMarker, ".git"), []byte("gitdir: elsewhere"), 0o644); err != nil {
		t.Fatal(err)
	}
	if m.ValidateRoot(fileMarker) {
		t.Error("ValidateRoot should ignore a .git file")
	}
}

func TestPrecedenceCLIOverEnvironment(t *testing.T) {
	rootA := makeRoot(t, ".tasks")
	rootB := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{EnvRoot: rootB})

	if err := m.SetRootFromCLI(rootA); err != nil {
		t.Fatalf("SetRootFromCLI: %v", err)
	}

	rc := m.RootConfig()
	if rc.Path != rootA || rc.Source != SourceCLI || !rc.Validated {
		t.Errorf("RootConfig = %+v, want %q from CLI", rc, rootA)
	}

	m.ClearCLIRoot()

	rc = m.RootConfig()
	if rc.Path != rootB || rc.Source != SourceEnvironment {
		t.Errorf("RootConfig = %+v, want %q from ENVIRONMENT", rc, rootB)
	}
}

func TestPrecedenceFullChain(t *testing.T) {
	runtimeRoot := makeRoot(t, ".tasks")
	cliRoot := makeRoot(t, ".tasks")
	envRoot := makeRoot(t, ".tasks")
	sessionRoot := makeRoot(t, ".tasks")
	projectRoot := makeRoot(t, ".tasks")
	detectRoot := makeRoot(t, ".git")
	workDir := filepath.Join(detectRoot, "sub", "dir")
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		t.Fatal(err)
	}

	env := fakeEnv{EnvRoot: envRoot}
	m := NewManager(WithHome(t.TempDir()), WithGetenv(env.get), WithWorkDir(workDir))

	if err := m.AddProject("proj", projectRoot); err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if err := m.SetRootFromConfig("proj"); err != nil {
		t.Fatalf("SetRootFromConfig: %v", err)
	}
	if err := m.SetRootFromSession(sessionRoot); err != nil {
		t.Fatalf("SetRootFromSession: %v", err)
	}
	if err := m.SetRootFromCLI(cliRoot); err != nil {
		t.Fatalf("SetRootFromCLI: %v", err)
	}

	check := func(rc RootConfig, path string, src Source) {
		t.Helper()
		if rc.Path != path || rc.Source != src || !rc.Validated {
			t.Errorf("RootConfig = %+v, want %q from %s", rc, path, src)
		}
	}

	check(m.RootConfig(Overrides{Root: runtimeRoot}), runtimeRoot, SourceRuntime)
	check(m.RootConfig(), cliRoot, SourceCLI)

	m.ClearCLIRoot()
	check(m.RootConfig(), envRoot, SourceEnvironment)

	delete(env, EnvRoot)
	check(m.RootConfig(), sessionRoot, SourceSession)

	m.ClearSessionConfig()
	rc := m.RootConfig()
	check(rc, projectRoot, SourceConfigFile)
	if rc.ProjectName != "proj" {
		t.Errorf("ProjectName = %q, want %q", rc.ProjectName, "proj")
	}

	m.Reset()
	check(m.RootConfig(), detectRoot, SourceAutoDetect)
}

func TestInvalidEnvironmentFallsThrough(t *testing.T) {
	sessionRoot := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{EnvRoot: makeRoot(t, "")})

	if err := m.SetRootFromSession(sessionRoot); err != nil {
		t.Fatalf("SetRootFromSession: %v", err)
	}

	rc := m.RootConfig()
	if rc.Source != SourceSession {
		t.Errorf("Source = %s, want SESSION (invalid env root must be skipped)", rc.Source)
	}
}

func TestInvalidRuntimeOverrideFallsThrough(t *testing.T) {
	envRoot := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{EnvRoot: envRoot})

	rc := m.RootConfig(Overrides{Root: filepath.Join(t.TempDir(), "missing")})
	if rc.Path != envRoot || rc.Source != SourceEnvironment {
		t.Errorf("RootConfig = %+v, want %q from ENVIRONMENT", rc, envRoot)
	}
}

func TestSettersFailFast(t *testing.T) {
	good := makeRoot(t, ".tasks")
	bad := makeRoot(t, "")
	m := newTestManager(t, fakeEnv{})

	if err := m.SetRootFromCLI(good); err != nil {
		t.Fatalf("SetRootFromCLI(good): %v", err)
	}

	err := m.SetRootFromCLI(bad)
	if !enverrors.Has(err, enverrors.CodeConfigurationError) {
		t.Errorf("SetRootFromCLI(bad) = %v, want CONFIGURATION_ERROR", err)
	}
	if rc := m.RootConfig(); rc.Path != good {
		t.Errorf("RootConfig.Path = %q, want previous %q kept", rc.Path, good)
	}

	err = m.SetRootFromSession(bad)
	if !enverrors.Has(err, enverrors.CodeConfigurationError) {
		t.Errorf("SetRootFromSession(bad) = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestSetRootFromConfigUnknownProject(t *testing.T) {
	m := newTestManager(t, fakeEnv{})

	err := m.SetRootFromConfig("nope")
	if !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("SetRootFromConfig = %v, want ErrProjectNotFound", err)
	}
	if !enverrors.Has(err, enverrors.CodeConfigurationError) {
		t.Errorf("SetRootFromConfig = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestNothingResolves(t *testing.T) {
	m := newTestManager(t, fakeEnv{})

	rc := m.RootConfig()
	if rc.Validated || rc.Path != "" || rc.Source != SourceAutoDetect {
		t.Errorf("RootConfig = %+v, want unvalidated empty AUTO_DETECT", rc)
	}
}

func TestProjectsFileCurrent(t *testing.T) {
	root := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{})

	if err := m.AddProject("alpha", root); err != nil {
		t.Fatalf("AddProject: %v", err)
	}
	if rc := m.RootConfig(); rc.Validated {
		t.Errorf("RootConfig = %+v, want nothing before a current project is chosen", rc)
	}

	if err := m.UseProject("alpha"); err != nil {
		t.Fatalf("UseProject: %v", err)
	}
	rc := m.RootConfig()
	if rc.Path != root || rc.Source != SourceConfigFile || rc.ProjectName != "alpha" {
		t.Errorf("RootConfig = %+v, want alpha from CONFIG_FILE", rc)
	}

	if err := m.UseProject("beta"); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("UseProject(beta) = %v, want ErrProjectNotFound", err)
	}

	projects, err := m.Projects()
	if err != nil {
		t.Fatalf("Projects: %v", err)
	}
	if len(projects) != 1 || projects[0].Name != "alpha" || projects[0].Path != root {
		t.Errorf("Projects = %+v", projects)
	}
}

func TestAddProjectValidation(t *testing.T) {
	m := newTestManager(t, fakeEnv{})

	if err := m.AddProject("", makeRoot(t, ".tasks")); err == nil {
		t.Error("expected error for empty name")
	}
	if err := m.AddProject("x", makeRoot(t, "")); !enverrors.Has(err, enverrors.CodeConfigurationError) {
		t.Errorf("AddProject(invalid) = %v, want CONFIGURATION_ERROR", err)
	}
}

func TestProjectsFileUpsertSorted(t *testing.T) {
	f := &ProjectsFile{}
	f.Upsert(Project{Name: "zeta", Path: "/z"})
	f.Upsert(Project{Name: "alpha", Path: "/a"})
	f.Upsert(Project{Name: "zeta", Path: "/z2"})

	if len(f.Projects) != 2 {
		t.Fatalf("len = %d, want 2", len(f.Projects))
	}
	if f.Projects[0].Name != "alpha" || f.Projects[1].Path != "/z2" {
		t.Errorf("Projects = %+v", f.Projects)
	}

	path := filepath.Join(t.TempDir(), "store", ProjectsFileName)
	if err := f.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := LoadProjectsFile(path)
	if err != nil {
		t.Fatalf("LoadProjectsFile: %v", err)
	}
	if p, ok := loaded.Find("zeta"); !ok || p.Path != "/z2" {
		t.Errorf("Find(zeta) = %+v, %v", p, ok)
	}
}

func TestLoadProjectsFileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), ProjectsFileName)
	if err := os.WriteFile(path, []byte("projects: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProjectsFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestCacheInvalidatedBySetter(t *testing.T) {
	rootA := makeRoot(t, ".tasks")
	rootB := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{})

	if err := m.SetRootFromSession(rootA); err != nil {
		t.Fatal(err)
	}
	if rc := m.RootConfig(); rc.Path != rootA {
		t.Fatalf("RootConfig.Path = %q, want %q", rc.Path, rootA)
	}
	if err := m.SetRootFromSession(rootB); err != nil {
		t.Fatal(err)
	}
	if rc := m.RootConfig(); rc.Path != rootB {
		t.Errorf("RootConfig.Path = %q after setter, want %q", rc.Path, rootB)
	}
}

func TestWithOverridesIsolated(t *testing.T) {
	base := makeRoot(t, ".tasks")
	override := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{})
	if err := m.SetRootFromSession(base); err != nil {
		t.Fatal(err)
	}

	o := m.WithOverrides(Overrides{Root: override})
	if rc := o.RootConfig(); rc.Path != override || rc.Source != SourceRuntime {
		t.Errorf("override RootConfig = %+v", rc)
	}
	if rc := m.RootConfig(); rc.Path != base {
		t.Errorf("original RootConfig.Path = %q, want %q", rc.Path, base)
	}

	o.Reset()
	if rc := m.RootConfig(); rc.Path != base {
		t.Errorf("Reset on copy leaked into original: %+v", rc)
	}
}

func TestWatchInvalidatesOnProjectsChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping filesystem watch test")
	}

	rootA := makeRoot(t, ".tasks")
	rootB := makeRoot(t, ".tasks")
	m := newTestManager(t, fakeEnv{})

	if err := m.AddProject("p", rootA); err != nil {
		t.Fatal(err)
	}
	if err := m.UseProject("p"); err != nil {
		t.Fatal(err)
	}
	if rc := m.RootConfig(); rc.Path != rootA {
		t.Fatalf("RootConfig.Path = %q, want %q", rc.Path, rootA)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx, ready) }()
	<-ready

	// Edit the file behind the manager's back.
	f := &ProjectsFile{Current: "p", Projects: []Project{{Name: "p", Path: rootB}}}
	if err := f.Save(m.ProjectsPath()); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for m.RootConfig().Path != rootB {
		if time.Now().After(deadline) {
			t.Fatal("cache was not invalidated after projects file change")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}
