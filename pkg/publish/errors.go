package publish

import (
	"errors"
	"fmt"
)

// Kind classifies a publish failure by the stage that produced it.
type Kind string

const (
	// KindStaging covers working directory creation and file writes,
	// including rejected file paths.
	KindStaging Kind = "staging_io"

	// KindInit covers local repository initialization failures.
	KindInit Kind = "repository_init"

	// KindClone covers failures cloning the existing remote.
	KindClone Kind = "clone"

	// KindRemote covers remote registration and remote url failures.
	KindRemote Kind = "remote_config"

	// KindCommit covers staging and commit failures.
	KindCommit Kind = "commit"

	// KindPush covers push failures, including authentication and
	// network errors reported by the transport.
	KindPush Kind = "push"
)

// Error wraps the failure of one stage of a publish operation. The
// original cause is preserved for unwrapping.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the failure kind of err, or "" when err was not
// produced by this package.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return ""
}

func wrapErr(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

func errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}
