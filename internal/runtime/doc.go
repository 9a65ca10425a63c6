// Package runtime runs the bridge's target executable on behalf of clients.
//
// A [Runtime] is bound to one target program. [New] resolves the target on
// the search path once at startup so a misconfigured host fails fast, and
// snapshots the server's environment and working directory, which act as the
// read-only base for every execution.
//
// [Runtime.Exec] runs the target synchronously with the caller's arguments,
// environment overlay, working directory and optional stdin, and returns the
// complete stdout, stderr and exit code. A non-zero exit is a result, not an
// error. Errors are reserved for processes that never started and are
// reported as [*LaunchError].
//
// Example usage:
//
//	rt, err := runtime.New("claude")
//	if err != nil {
//	    return err
//	}
//
//	result, err := rt.Exec(ctx, runtime.Spec{
//	    Args: []string{"--version"},
//	    Env:  map[string]string{"NO_COLOR": "1"},
//	})
//	if err != nil {
//	    return err
//	}
//
//	fmt.Print(result.Stdout)
package runtime
