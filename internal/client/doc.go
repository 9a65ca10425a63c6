// Package client talks to a running bridge over its Unix socket.
//
// It is the counterpart used inside sandboxes: a [Client] sends a request,
// copies the stdout and stderr payloads to local writers and returns the
// remote exit code. A request the bridge refuses, or a process it could not
// launch, comes back as a [*RemoteError] instead of an exit code.
//
// Example usage:
//
//	c, err := client.Dial(ctx, "/host/claude-bridge.sock")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	code, err := c.Exec(ctx, &protocol.Request{
//	    Command: "claude",
//	    Args:    []string{"--version"},
//	}, os.Stdout, os.Stderr)
package client
