// Parses flags and configures logging for the bridged daemon.
//
// The following global flags are accepted:
//
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	-d, --debug     Enable debug output.
//	-s, --socket    Unix socket path ($SOCKET_PATH).
//	-c, --config    Configuration file ($BRIDGED_CONFIG).
//
// Subcommands:
//
//	start     Run the bridge server until SIGINT or SIGTERM.
//	run       Send one command to a running bridge and mirror its output.
//	check     Verify that a bridge is reachable.
//	version   Show version information.
//
// Flags override build-time defaults set via linker flags. After parsing, the
// global logger is reconfigured to reflect the final level and verbosity before
// the selected command runs.
package cli
