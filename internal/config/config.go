// Package config decides which project root a session operates on.
//
// Sources are consulted in precedence order, highest first, and the first
// one yielding a validated directory wins:
//
//  1. runtime override passed to RootConfig
//  2. path set from the command line
//  3. TASKENV_ROOT environment variable
//  4. path set for the current session
//  5. named project from ~/.taskenv/projects.yaml
//  6. auto-detection walking up from the working directory
//
// A directory is valid when it exists and contains one of MarkerDirs.
package config

import "fmt"

// EnvRoot names the environment variable consulted at precedence level 3.
const EnvRoot = "TASKENV_ROOT"

// MarkerDirs are the subdirectories that identify a project root.
var MarkerDirs = []string{".tasks", ".git"}

// Source identifies where a RootConfig came from.
type Source int

const (
	SourceRuntime Source = iota
	SourceCLI
	SourceEnvironment
	SourceSession
	SourceConfigFile
	SourceAutoDetect
)

var sourceNames = map[Source]string{
	SourceRuntime:     "RUNTIME",
	SourceCLI:         "CLI",
	SourceEnvironment: "ENVIRONMENT",
	SourceSession:     "SESSION",
	SourceConfigFile:  "CONFIG_FILE",
	SourceAutoDetect:  "AUTO_DETECT",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Source(%d)", int(s))
}

// RootConfig is the resolved project root. An empty Path means no source
// produced a valid root; Validated is then false.
type RootConfig struct {
	Path        string
	Source      Source
	Validated   bool
	ProjectName string // set when Source is SourceConfigFile
}

// Overrides carries per-call runtime overrides for RootConfig.
type Overrides struct {
	Root string
}
