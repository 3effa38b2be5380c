package cli

import (
	"errors"

	"github.com/mesh-intelligence/sprintplan/internal/export"
	"github.com/mesh-intelligence/sprintplan/internal/ingest"
	"github.com/mesh-intelligence/sprintplan/pkg/types"
)

// exitError attaches an exit code to a command error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userErr(err error) error { return &exitError{code: exitUserError, err: err} }
func sysErr(err error) error  { return &exitError{code: exitSysError, err: err} }

// userErrors are the sentinels caused by bad input rather than the
// environment.
var userErrors = []error{
	types.ErrValidation,
	types.ErrInvalidCapacity,
	types.ErrInvalidSprintLimit,
	types.ErrNoItems,
	types.ErrSprintNotFound,
	export.ErrUnknownFormat,
	ingest.ErrUnknownFormat,
}

// classify wraps err with the exit code its cause calls for.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userErr(err)
		}
	}
	return sysErr(err)
}

// exitCode returns the code for an error returned by Execute. Errors raised
// by cobra itself, such as unknown flags or missing arguments, are user
// errors.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
