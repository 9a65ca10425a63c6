// Provides default filesystem locations for the bridge.
//
// The socket lives under the system temporary directory so it can be
// bind-mounted into containers at a stable path. The PID file always sits
// next to the socket, whatever socket path is in effect. The configuration
// file follows XDG conventions on Linux and platform-native conventions on
// macOS.
package paths
