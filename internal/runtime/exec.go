package runtime

import (
	"context"
	"io/fs"
	"maps"
	"os/exec"
	"slices"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// Parameters of a single execution.
type Spec struct {
	Args  []string          // Arguments following the program name.
	Env   map[string]string // Overrides applied on top of the server environment.
	Dir   string            // Working directory. Empty uses the server's.
	Stdin string            // Data written to standard input. Empty leaves stdin at the null device.
}

// Output of a completed execution.
type ExecResult struct {
	ExitCode int    // Exit code of the process, or -N if it was killed by signal N.
	Stdout   string // Captured standard output.
	Stderr   string // Captured standard error.
}

// Runs the target and waits for it to exit.
//
// The argument vector is the target name followed by spec.Args. Standard
// output and error are buffered in full and returned once the process has
// exited. A non-zero exit code is not treated as an error; the caller
// decides. If the process cannot be started the error is a [*LaunchError].
// Cancelling ctx kills the process.
//
// The target is looked up on the server's PATH; a PATH in spec.Env only
// reaches the child's environment and cannot redirect which program runs.
func (rt *Runtime) Exec(ctx context.Context, spec Spec) (*ExecResult, error) {
	for k := range spec.Env {
		if k == "" || strings.ContainsAny(k, "=\x00") {
			return nil, &LaunchError{
				Target: rt.target,
				Err:    errors.Errorf("invalid environment variable name %q", k),
			}
		}
	}

	cmd := exec.CommandContext(ctx, rt.target, spec.Args...)
	cmd.Env = mergeEnv(rt.env, spec.Env)
	cmd.Dir = rt.dir
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Stdin != "" {
		cmd.Stdin = strings.NewReader(spec.Stdin)
	}

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := &ExecResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &LaunchError{
				Target:   rt.target,
				NotFound: isNotFound(err),
				Err:      err,
			}
		}
		result.ExitCode = exitCode(exitErr)
	}

	return result, nil
}

// Whether a launch error means the executable itself is missing.
//
// A missing working directory also surfaces as fs.ErrNotExist, but with the
// "chdir" operation, and is not a missing executable.
func isNotFound(err error) bool {
	if errors.Is(err, exec.ErrNotFound) {
		return true
	}
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && pathErr.Op == "chdir" {
		return false
	}
	return errors.Is(err, fs.ErrNotExist)
}

// Returns the exit code, or the negated signal number for a signalled process.
func exitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return -int(status.Signal())
	}
	return exitErr.ExitCode()
}

// Merges override env vars on top of a base env slice.
//
// Base entries keep their position with overridden values substituted in
// place; keys only present in overrides are appended in sorted order.
// Malformed base entries without "=" are dropped.
func mergeEnv(base []string, overrides map[string]string) []string {
	result := make([]string, 0, len(base)+len(overrides))
	applied := make(map[string]bool, len(overrides))

	for _, entry := range base {
		k, _, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		if v, found := overrides[k]; found {
			if applied[k] {
				continue
			}
			applied[k] = true
			entry = k + "=" + v
		}
		result = append(result, entry)
	}

	for _, k := range slices.Sorted(maps.Keys(overrides)) {
		if !applied[k] {
			result = append(result, k+"="+overrides[k])
		}
	}
	return result
}
