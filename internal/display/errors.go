package display

import (
	"fmt"
	"strings"

	enverrors "github.com/valksor/go-taskenv/internal/errors"
)

// Suggestion represents a suggested action for error recovery.
type Suggestion struct {
	Command     string
	Description string
}

// ErrorWithSuggestions formats an error message with actionable suggestions.
func ErrorWithSuggestions(message string, suggestions []Suggestion) string {
	var sb strings.Builder

	sb.WriteString(ErrorMsg("%s", message))
	sb.WriteString("\n")

	if len(suggestions) > 0 {
		sb.WriteString("\n")
		sb.WriteString(Muted("Suggested actions:"))
		sb.WriteString("\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "  %s %s - %s\n", Muted("•"), Cyan(s.Command), s.Description)
		}
	}

	return sb.String()
}

type errorText struct {
	title       string
	exitCode    int
	suggestions []Suggestion
}

var errorTexts = map[enverrors.Code]errorText{
	enverrors.CodeInvalidTaskID: {
		title:    "Invalid task id",
		exitCode: 2,
		suggestions: []Suggestion{
			{Command: "taskenv task list", Description: "Show known task ids"},
		},
	},
	enverrors.CodeTaskNotFound: {
		title:    "Task not found",
		exitCode: 3,
		suggestions: []Suggestion{
			{Command: "taskenv task add <id>", Description: "Register the task"},
			{Command: "taskenv task list", Description: "Show known task ids"},
		},
	},
	enverrors.CodeWorktreeNotFound: {
		title:    "No workspace for this task",
		exitCode: 4,
		suggestions: []Suggestion{
			{Command: "taskenv worktree list", Description: "Show live workspaces"},
			{Command: "taskenv env ensure <task>", Description: "Create the workspace"},
		},
	},
	enverrors.CodeWorktreeConflict: {
		title:    "Workspace path is occupied by something else",
		exitCode: 5,
		suggestions: []Suggestion{
			{Command: "taskenv worktree path <task>", Description: "Show the conflicting path, then move it aside"},
			{Command: "taskenv worktree create --force <task>", Description: "Create the workspace anyway"},
		},
	},
	enverrors.CodeGitOperationFailed: {
		title:    "Git operation failed",
		exitCode: 6,
		suggestions: []Suggestion{
			{Command: "git worktree prune", Description: "Clear stale worktree metadata"},
			{Command: "taskenv --verbose <command>", Description: "Show git commands and output"},
		},
	},
	enverrors.CodeConfigurationError: {
		title:    "No usable project root",
		exitCode: 7,
		suggestions: []Suggestion{
			{Command: "taskenv --root <dir> <command>", Description: "Pass the root explicitly"},
			{Command: "taskenv project add <name> <dir>", Description: "Register a named project"},
			{Command: "export TASKENV_ROOT=<dir>", Description: "Pin the root for this shell"},
		},
	},
	enverrors.CodePathResolutionFailed: {
		title:    "Could not resolve workspace paths",
		exitCode: 8,
		suggestions: []Suggestion{
			{Command: "taskenv root", Description: "Show which root is active and where it came from"},
		},
	},
}

// FormatError renders err with a title and suggestions chosen by its code.
// Uncoded errors are printed as-is.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	text, ok := errorTexts[enverrors.CodeOf(err)]
	if !ok {
		return ErrorMsg("%s", err.Error()) + "\n"
	}

	return ErrorWithSuggestions(fmt.Sprintf("%s: %v", text.title, err), text.suggestions)
}

// ExitCode returns the process exit code for err: 0 for nil, a distinct code
// per error code, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if text, ok := errorTexts[enverrors.CodeOf(err)]; ok {
		return text.exitCode
	}
	return 1
}
