package internal

import (
	"log/slog"
	"strconv"
	"sync/atomic"
)

var (
	quietMode   atomic.Bool // Warnings and errors only.
	debugMode   atomic.Bool // Debug records, including request arguments.
	verboseMode atomic.Bool // Source locations on every record.
)

// Parses the linker flags into usable runtime variables.
//
// The rawQuiet, rawDebug, and rawVerbose variables should be set via ldflags
// during the build process. If not set, they default to "false".
func init() {
	if v, err := strconv.ParseBool(rawQuiet); err == nil {
		quietMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawDebug); err == nil {
		debugMode.Store(v)
	}
	if v, err := strconv.ParseBool(rawVerbose); err == nil {
		verboseMode.Store(v)
	}
}

// Applies command-line flags on top of the build-time defaults.
//
// Flags only ever enable a mode; a binary built with debug enabled stays in
// debug mode whatever the flags say.
func ApplyFlags(quiet, debug, verbose bool) {
	if quiet {
		quietMode.Store(true)
	}
	if debug {
		debugMode.Store(true)
	}
	if verbose {
		verboseMode.Store(true)
	}
}

// Returns true if quiet mode is enabled.
func IsQuiet() bool {
	return quietMode.Load()
}

// Returns true if debug mode is enabled.
func IsDebug() bool {
	return debugMode.Load()
}

// Returns true if verbose logging is enabled.
func IsVerbose() bool {
	return verboseMode.Load()
}

// Returns the minimum log level for the current mode. Debug takes precedence
// over quiet.
func LogLevel() slog.Level {
	switch {
	case IsDebug():
		return slog.LevelDebug
	case IsQuiet():
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
