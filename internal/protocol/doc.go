// Package protocol defines the messages exchanged over the bridge socket.
//
// Both directions carry UTF-8 JSON objects, one per line. A client writes
// [Request] lines; the server answers each request with zero or more
// [Response] lines of type stdout and stderr followed by exactly one exit,
// or with a single error in place of all of them.
//
//	-> {"command":"claude","args":["--version"]}
//	<- {"type":"stdout","data":"v1.0\n"}
//	<- {"type":"exit","code":0}
//
// Newline is the only framing delimiter. Payload strings never contain raw
// newlines because JSON string escaping encodes them as \n.
package protocol
