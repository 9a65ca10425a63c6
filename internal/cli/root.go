package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/cruciblehq/bridged/internal"
	"github.com/cruciblehq/bridged/internal/paths"
	"github.com/mattn/go-isatty"
)

// Represents the root command for the bridged daemon.
var RootCmd struct {
	Quiet   bool       `short:"q" help:"Suppress informational output."`
	Verbose bool       `short:"v" help:"Enable verbose output."`
	Debug   bool       `short:"d" help:"Enable debug output."`
	Socket  string     `short:"s" env:"SOCKET_PATH" help:"Override the default Unix socket path." placeholder:"PATH"`
	Config  string     `short:"c" env:"BRIDGED_CONFIG" help:"Configuration file. Defaults to the XDG config location." placeholder:"FILE" type:"path"`
	Start   StartCmd   `cmd:"" help:"Start the bridge server."`
	Run     RunCmd     `cmd:"" help:"Run the target through a running bridge."`
	Check   CheckCmd   `cmd:"" help:"Check that a bridge is reachable."`
	Version VersionCmd `cmd:"" help:"Show version information."`
}

// Parses arguments, configures logging, and runs the selected subcommand.
func Execute() error {

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	kongCtx := kong.Parse(&RootCmd,
		kong.Name(internal.Name),
		kong.Description("Local bridge for running one trusted executable.\n\nListens on a Unix domain socket and runs the target executable on behalf of sandboxed clients."),
		kong.UsageOnError(),
		kong.Vars{
			"version": internal.VersionString(),
		},
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	configureLogger()

	return kongCtx.Run()
}

// Configures the global logger based on CLI flags.
func configureLogger() {
	internal.ApplyFlags(RootCmd.Quiet, RootCmd.Debug, RootCmd.Verbose)
	slog.SetDefault(NewLogger(internal.LogLevel(), internal.IsVerbose()))
}

// Creates the daemon logger writing to stderr.
//
// Interactive terminals get human-readable text; anything else (supervisors,
// container log collectors) gets one JSON object per line. Verbose mode adds
// source locations.
func NewLogger(level slog.Level, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: verbose,
	}

	var handler slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler.WithGroup(internal.Name))
}

// Socket path used by client commands.
//
// An explicit --socket or $SOCKET_PATH wins; otherwise $CLAUDE_BRIDGE_SOCKET,
// the variable handed to agent containers, is honoured before the default.
func clientSocket() string {
	if RootCmd.Socket != "" {
		return RootCmd.Socket
	}
	if s := os.Getenv("CLAUDE_BRIDGE_SOCKET"); s != "" {
		return s
	}
	return paths.Socket()
}
