// Package server implements the bridge daemon.
//
// The daemon listens on a Unix domain socket and lets local clients run one
// configured target executable. Each connection carries any number of
// request-response exchanges: the client writes newline-delimited JSON
// requests, and for each one the server runs the target to completion and
// writes back stdout, stderr and exit messages, or a single error message.
// Malformed or disallowed requests are answered with an error and the
// connection stays open.
//
// Every connection is served by its own goroutine. A handler blocks while its
// subprocess runs, which never delays the accept loop or other connections.
// [Server.Stop] closes the listener and removes the socket and PID files; it
// does not wait for in-flight handlers.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    SocketPath: "/tmp/claude-bridge-persistent/claude-bridge.sock",
//	    Target:     "claude",
//	})
//	if err != nil {
//	    return err
//	}
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	srv.Wait()
package server
