package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (

	// Directory under the temporary directory that holds the socket.
	runtimeDirName = "claude-bridge-persistent"

	// File name of the Unix domain socket.
	socketName = "claude-bridge.sock"

	// File name of the PID file, placed beside the socket.
	pidName = "bridge.pid"

	// Name used for the configuration subdirectory.
	daemonName = "bridged"

	// Default permission mode for directories.
	DefaultDirMode os.FileMode = 0755

	// Default permission mode for files.
	DefaultFileMode os.FileMode = 0644

	// Permission mode applied to the socket. Any local user may connect.
	SocketMode os.FileMode = 0666
)

// Directory holding the default socket and PID file.
//
//	Linux:   $TMPDIR/claude-bridge-persistent or /tmp/claude-bridge-persistent
func Runtime() string {
	return filepath.Join(os.TempDir(), runtimeDirName)
}

// Default path to the Unix domain socket.
func Socket() string {
	return filepath.Join(Runtime(), socketName)
}

// Path to the PID file that accompanies the given socket.
func PIDFile(socketPath string) string {
	return filepath.Join(filepath.Dir(socketPath), pidName)
}

// Default path to the YAML configuration file.
//
//	Linux:   $XDG_CONFIG_HOME/bridged/config.yaml or ~/.config/bridged/config.yaml
//	macOS:   ~/Library/Application Support/bridged/config.yaml
func ConfigFile() string {
	return filepath.Join(xdg.ConfigHome, daemonName, "config.yaml")
}
