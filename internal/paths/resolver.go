package paths

import (
	"fmt"
	"path/filepath"

	"github.com/valksor/go-taskenv/internal/cache"
)

// Kind enumerates path purposes.
type Kind string

const (
	KindTemplates Kind = "templates"
	KindModes     Kind = "modes"
	KindTasks     Kind = "tasks"
	KindSessions  Kind = "sessions"
	KindConfig    Kind = "config"
)

// Kinds lists every Kind in display order.
var Kinds = []Kind{KindTemplates, KindModes, KindTasks, KindSessions, KindConfig}

const (
	// RepoDataDir is the repo-local data directory; its presence also marks a
	// project root.
	RepoDataDir = ".tasks"
	// StoreDirName is the centralized store directory under the user's home.
	StoreDirName = ".taskenv"
	// ProjectsDirName holds one encoded directory per project inside the store.
	ProjectsDirName = "projects"
)

type routing int

const (
	routeExecution routing = iota // under the execution (or worktree) root
	routeCentral                  // under <home>/.taskenv/projects/<encoded main root>
)

type policy struct {
	route    routing
	subpath  string
	fallback string // relative to <home>/.taskenv; empty for none
}

var policies = map[Kind]policy{
	KindTemplates: {route: routeExecution, subpath: filepath.Join(RepoDataDir, ".templates"), fallback: "templates"},
	KindModes:     {route: routeExecution, subpath: filepath.Join(RepoDataDir, ".modes")},
	KindTasks:     {route: routeCentral, subpath: "tasks"},
	KindSessions:  {route: routeCentral, subpath: "sessions"},
	KindConfig:    {route: routeCentral, subpath: "config"},
}

// resolveKey identifies one resolution; Context is comparable so the whole
// input set forms the key.
type resolveKey struct {
	kind Kind
	ctx  Context
}

// Resolver resolves path kinds against a Context.
type Resolver struct {
	cache *cache.Cache[resolveKey, []string]
}

// NewResolver creates a Resolver with an empty cache.
func NewResolver() *Resolver {
	return &Resolver{cache: cache.New[resolveKey, []string]()}
}

// Resolve returns the primary directory for kind.
func (r *Resolver) Resolve(kind Kind, pc Context) (string, error) {
	candidates, err := r.ResolveWithPrecedence(kind, pc)
	if err != nil {
		return "", err
	}
	return candidates[0], nil
}

// ResolveWithPrecedence returns the ordered candidate directories for kind,
// primary first. Only templates carry a user-level fallback.
func (r *Resolver) ResolveWithPrecedence(kind Kind, pc Context) ([]string, error) {
	key := resolveKey{kind: kind, ctx: pc}
	if cached, ok := r.cache.Get(key); ok {
		return append([]string(nil), cached...), nil
	}

	p, ok := policies[kind]
	if !ok {
		return nil, fmt.Errorf("unknown path kind: %q", kind)
	}
	if err := pc.Validate(); err != nil {
		return nil, fmt.Errorf("resolve %s: %w", kind, err)
	}

	var candidates []string
	switch p.route {
	case routeExecution:
		root := pc.ExecutionRoot
		if pc.WorktreeRoot != "" {
			root = pc.WorktreeRoot
		}
		candidates = append(candidates, filepath.Join(root, p.subpath))
		if p.fallback != "" {
			candidates = append(candidates, filepath.Join(pc.UserHome, StoreDirName, p.fallback))
		}
	case routeCentral:
		candidates = append(candidates, filepath.Join(ProjectStoreDir(pc.UserHome, pc.MainRepoRoot), p.subpath))
	}

	r.cache.Set(key, candidates, cache.NoExpiry)
	return append([]string(nil), candidates...), nil
}

// Invalidate drops all cached resolutions.
func (r *Resolver) Invalidate() {
	r.cache.Clear()
}

// TemplatesDir resolves KindTemplates.
func (r *Resolver) TemplatesDir(pc Context) (string, error) {
	return r.Resolve(KindTemplates, pc)
}

// ModesDir resolves KindModes.
func (r *Resolver) ModesDir(pc Context) (string, error) {
	return r.Resolve(KindModes, pc)
}

// TasksDir resolves KindTasks.
func (r *Resolver) TasksDir(pc Context) (string, error) {
	return r.Resolve(KindTasks, pc)
}

// SessionsDir resolves KindSessions.
func (r *Resolver) SessionsDir(pc Context) (string, error) {
	return r.Resolve(KindSessions, pc)
}

// ConfigDir resolves KindConfig.
func (r *Resolver) ConfigDir(pc Context) (string, error) {
	return r.Resolve(KindConfig, pc)
}

// ProjectStoreDir returns <home>/.taskenv/projects/<Encode(mainRoot)>.
func ProjectStoreDir(home, mainRoot string) string {
	return filepath.Join(home, StoreDirName, ProjectsDirName, Encode(mainRoot))
}
