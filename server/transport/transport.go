// Package transport defines the connection abstraction a Server accepts
// clients through, independent of any one wire transport.
package transport

// Conn is a single client connection abstracted away from its underlying
// transport. A Session reads and writes protocol-level byte frames through
// it without knowing whether the other end is a websocket, a pipe, or
// something else entirely.
type Conn struct {
	ReadPacket  func() ([]byte, error)
	WritePacket func([]byte) error
	Close       func() error
	RemoteAddr  string
}

// Listener accepts incoming client connections and hands them out as Conns.
type Listener interface {
	// Accept blocks until a new connection arrives or the listener is
	// closed, in which case it returns a non-nil error.
	Accept() (Conn, error)
	// Disconnect forcibly drops conn, sending reason to the client first if
	// the transport supports it.
	Disconnect(conn Conn, reason string) error
	Close() error
}
