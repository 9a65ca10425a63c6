package runtime

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// Runs one target executable with a fixed base environment.
//
// The zero value is not usable; create instances with [New]. A Runtime is
// read-only after construction and safe for concurrent use.
type Runtime struct {
	target string   // Program name as configured, used as argv[0].
	path   string   // Location the target resolved to at startup.
	env    []string // Server environment captured at startup.
	dir    string   // Server working directory captured at startup.
}

// Creates a runtime for the given target.
//
// The target is resolved with [exec.LookPath]; if it cannot be found or is
// not executable, the returned error matches [ErrTargetNotFound]. The current
// environment and working directory are captured as the defaults for every
// subsequent execution.
func New(target string) (*Runtime, error) {
	if target == "" {
		return nil, errors.Wrap(ErrRuntime, "target executable is required")
	}

	path, err := exec.LookPath(target)
	if err != nil {
		return nil, errors.Wrapf(ErrTargetNotFound, "%s: %v", target, err)
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(ErrRuntime, err.Error())
	}

	return &Runtime{
		target: target,
		path:   path,
		env:    os.Environ(),
		dir:    dir,
	}, nil
}

// Returns the configured target name.
func (rt *Runtime) Target() string {
	return rt.target
}

// Returns the location the target resolved to at startup.
func (rt *Runtime) Path() string {
	return rt.path
}

// Returns the default working directory for executions.
func (rt *Runtime) Dir() string {
	return rt.dir
}

// Asks the target for its version by running it with --version.
//
// Returns the trimmed standard output. Used for startup diagnostics only; the
// caller is expected to bound ctx.
func (rt *Runtime) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, rt.path, "--version").Output()
	if err != nil {
		return "", errors.Wrapf(ErrRuntime, "%s --version: %v", rt.target, err)
	}
	return strings.TrimSpace(string(out)), nil
}
