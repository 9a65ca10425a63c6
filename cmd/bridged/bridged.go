package main

import (
	"log/slog"
	"os"

	"github.com/cruciblehq/bridged/internal"
	"github.com/cruciblehq/bridged/internal/cli"
	"github.com/pkg/errors"
)

// The entry point for the bridged daemon.
//
// Initializes logging, displays startup information, and executes the root
// command. If any error occurs during execution, it exits with a non-zero code.
// Commands that mirror a remote exit status exit with that status instead.
func main() {
	slog.SetDefault(cli.NewLogger(internal.LogLevel(), internal.IsVerbose()))

	slog.Debug("build", "version", internal.VersionString())

	slog.Debug("bridged is running",
		"pid", os.Getpid(),
		"cwd", cwd(),
		"args", os.Args,
	)

	if err := cli.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		slog.Error(err.Error())
		os.Exit(1)
	}
}

// Returns the current working directory or "(unknown)".
func cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "(unknown)"
	}
	return cwd
}
