// Package errors provides the typed error codes shared by the environment,
// workspace and configuration layers.
//
// Every failure that callers are expected to branch on carries a stable Code.
// Use errors.Is against the sentinel values or CodeOf to inspect it:
//
//	if enverrors.Has(err, enverrors.CodeWorktreeNotFound) {
//	    // nothing to remove
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code categorizes an error so CLI-style callers can map it to an exit message.
type Code string

const (
	CodeUnknown              Code = ""
	CodeInvalidTaskID        Code = "INVALID_TASK_ID"
	CodeTaskNotFound         Code = "TASK_NOT_FOUND"
	CodeWorktreeNotFound     Code = "WORKTREE_NOT_FOUND"
	CodeWorktreeConflict     Code = "WORKTREE_CONFLICT"
	CodeGitOperationFailed   Code = "GIT_OPERATION_FAILED"
	CodeConfigurationError   Code = "CONFIGURATION_ERROR"
	CodePathResolutionFailed Code = "PATH_RESOLUTION_FAILED"
)

// Sentinels for errors.Is. An *Error matches a sentinel when the codes are equal.
var (
	ErrInvalidTaskID        = &Error{Code: CodeInvalidTaskID, Msg: "invalid task id"}
	ErrTaskNotFound         = &Error{Code: CodeTaskNotFound, Msg: "task not found"}
	ErrWorktreeNotFound     = &Error{Code: CodeWorktreeNotFound, Msg: "worktree not found"}
	ErrWorktreeConflict     = &Error{Code: CodeWorktreeConflict, Msg: "worktree path conflict"}
	ErrGitOperationFailed   = &Error{Code: CodeGitOperationFailed, Msg: "git operation failed"}
	ErrConfigurationError   = &Error{Code: CodeConfigurationError, Msg: "configuration error"}
	ErrPathResolutionFailed = &Error{Code: CodePathResolutionFailed, Msg: "path resolution failed"}
)

// Error is a coded error carrying the task it concerns and the underlying cause.
type Error struct {
	Code   Code
	TaskID string
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" {
		msg = string(e.Code)
	}
	if e.TaskID != "" {
		msg = fmt.Sprintf("%s (task %s)", msg, e.TaskID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a coded error.
func New(code Code, taskID, msg string) error {
	return &Error{Code: code, TaskID: taskID, Msg: msg}
}

// Wrap attaches a code and task id to an underlying error.
// Returns nil if err is nil.
func Wrap(code Code, taskID, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, TaskID: taskID, Msg: msg, Err: err}
}

// InvalidTaskID creates an INVALID_TASK_ID error.
func InvalidTaskID(taskID string) error {
	return &Error{Code: CodeInvalidTaskID, TaskID: taskID, Msg: "task id must not be empty"}
}

// GitFailed wraps a subprocess failure as GIT_OPERATION_FAILED.
func GitFailed(taskID, op string, err error) error {
	return Wrap(CodeGitOperationFailed, taskID, op, err)
}

// Configuration creates a CONFIGURATION_ERROR with an optional cause.
func Configuration(msg string, err error) error {
	return &Error{Code: CodeConfigurationError, Msg: msg, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// Has returns true if err is or wraps an *Error with the given code.
func Has(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
