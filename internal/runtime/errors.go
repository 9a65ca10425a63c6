package runtime

import "github.com/pkg/errors"

var (
	ErrRuntime        = errors.New("runtime error")
	ErrTargetNotFound = errors.New("target executable not found")
	ErrLaunch         = errors.New("failed to launch process")
)

// A process that could not be started.
//
// NotFound is set when the executable itself could not be located. Other
// launch failures (missing working directory, permission denied, invalid
// environment) leave it unset. Matches [ErrLaunch] under errors.Is, and also
// [ErrTargetNotFound] when NotFound is set.
type LaunchError struct {
	Target   string // Name of the program that failed to start.
	NotFound bool   // Whether the executable could not be located.
	Err      error  // Underlying cause.
}

func (e *LaunchError) Error() string {
	return e.Err.Error()
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	return target == ErrLaunch || (e.NotFound && target == ErrTargetNotFound)
}
