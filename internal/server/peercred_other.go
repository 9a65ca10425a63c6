//go:build !linux

package server

import "net"

// Peer credentials are only read on Linux.
func peerAttrs(conn net.Conn) []any {
	return nil
}
