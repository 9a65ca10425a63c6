package cli

import "fmt"

// Requests that the process exit with Code without logging an error.
//
// Returned by commands that mirror the exit status of a remote process.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Maps a remote exit code onto a local process exit status. Processes killed
// by signal N (reported as -N) map to 128+N, as shells do.
func exitStatus(code int) int {
	if code < 0 {
		return 128 - code
	}
	return code
}
