package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorIsMatchesByCode(t *testing.T) {
	err := GitFailed("t1", "add worktree", fmt.Errorf("fatal: already exists"))

	if !errors.Is(err, ErrGitOperationFailed) {
		t.Error("expected GitFailed to match ErrGitOperationFailed")
	}
	if errors.Is(err, ErrWorktreeConflict) {
		t.Error("GitFailed should not match ErrWorktreeConflict")
	}

	wrapped := fmt.Errorf("ensure environment: %w", err)
	if got := CodeOf(wrapped); got != CodeGitOperationFailed {
		t.Errorf("CodeOf = %q, want %q", got, CodeGitOperationFailed)
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "with task and cause",
			err:  GitFailed("t1", "remove worktree", fmt.Errorf("locked")),
			want: []string{"remove worktree", "task t1", "locked"},
		},
		{
			name: "code only",
			err:  &Error{Code: CodeWorktreeConflict},
			want: []string{"WORKTREE_CONFLICT"},
		},
		{
			name: "invalid task id",
			err:  InvalidTaskID(""),
			want: []string{"task id must not be empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, w := range tt.want {
				if !strings.Contains(msg, w) {
					t.Errorf("Error() = %q, want substring %q", msg, w)
				}
			}
		})
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(CodeConfigurationError, "", "x", nil); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestHas(t *testing.T) {
	cause := errors.New("boom")
	err := Configuration("no root", cause)

	if !Has(err, CodeConfigurationError) {
		t.Error("Has(CONFIGURATION_ERROR) = false, want true")
	}
	if Has(nil, CodeConfigurationError) {
		t.Error("Has(nil) = true, want false")
	}
	if Has(cause, CodeConfigurationError) {
		t.Error("plain error should have no code")
	}
	if !errors.Is(err, cause) {
		t.Error("Configuration error should unwrap to its cause")
	}
}
