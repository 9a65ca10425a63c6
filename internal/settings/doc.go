// Package settings loads the optional YAML configuration file.
//
// The file lives at [paths.ConfigFile] unless another path is given. Every
// key is optional:
//
//	socket: /tmp/claude-bridge-persistent/claude-bridge.sock
//	target: claude
//	max_connections: 0   # 0 = unlimited
//	heartbeat: 1m        # 0s disables the liveness log line
//
// Values from the file sit between built-in defaults and command-line flags
// or environment variables, which always win.
package settings
