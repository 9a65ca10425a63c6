package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cruciblehq/bridged/internal/protocol"
	"github.com/cruciblehq/bridged/internal/runtime"
	"github.com/pkg/errors"
)

// Decodes and answers one request line.
//
// Every outcome is reported to the client; the returned error is only set
// when writing to the connection fails.
func (s *Server) serve(ctx context.Context, log *slog.Logger, w *protocol.Writer, line []byte) error {
	req, err := protocol.DecodeRequest(line)
	if err != nil {
		log.Warn("invalid request", "error", err)
		return w.Write(protocol.Error("Invalid JSON: " + err.Error()))
	}

	target := s.runtime.Target()
	if req.Command != target {
		log.Warn("rejected command", "command", req.Command)
		return w.Write(protocol.Error(fmt.Sprintf("Only %s commands supported", target)))
	}

	return s.handleExec(ctx, log, w, req)
}

// Runs the target for an accepted request and streams the outcome.
//
// On success the client receives stdout (if non-empty), stderr (if
// non-empty) and exit, in that order. If the process could not be started
// the client receives a single error and no exit.
func (s *Server) handleExec(ctx context.Context, log *slog.Logger, w *protocol.Writer, req *protocol.Request) error {
	s.requests.Add(1)

	dir := req.Cwd
	if dir == "" {
		dir = s.runtime.Dir()
	}
	log.Info("executing command", "target", req.Command, "args", len(req.Args), "env", len(req.Env), "cwd", dir)
	log.Debug("command arguments", "args", req.Args)

	start := time.Now()
	result, err := s.runtime.Exec(ctx, runtime.Spec{
		Args:  req.Args,
		Env:   req.Env,
		Dir:   req.Cwd,
		Stdin: req.Stdin,
	})
	if err != nil {
		log.Warn("command failed to launch", "error", err)
		return w.Write(protocol.Error(launchMessage(req.Command, err)))
	}

	log.Info("command finished",
		"exit", result.ExitCode,
		"stdout", len(result.Stdout),
		"stderr", len(result.Stderr),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return writeResult(w, result)
}

// Writes the responses for a completed execution.
func writeResult(w *protocol.Writer, result *runtime.ExecResult) error {
	if result.Stdout != "" {
		if err := w.Write(protocol.Stdout(result.Stdout)); err != nil {
			return err
		}
	}
	if result.Stderr != "" {
		if err := w.Write(protocol.Stderr(result.Stderr)); err != nil {
			return err
		}
	}
	return w.Write(protocol.Exit(result.ExitCode))
}

// Returns the client-facing message for a launch failure.
func launchMessage(target string, err error) string {
	if errors.Is(err, runtime.ErrTargetNotFound) {
		return fmt.Sprintf("%s executable not found", target)
	}
	return err.Error()
}
