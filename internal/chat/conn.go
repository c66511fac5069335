// Package chat provides the core duplex session logic shared by all transports.
package chat

import "context"

// Conn abstracts a bidirectional connection for both TCP and WebSocket.
// This interface isolates transport details from session logic.
type Conn interface {
	// Read reads a single message payload.
	// Returns io.EOF when the peer closed the connection.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single message payload.
	Write(ctx context.Context, payload []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the remote address for logging.
	RemoteAddr() string
}

// Endpoint establishes the single peer connection for one role. The listener
// and dialer variants of each transport both yield a Conn that the session
// consumes identically.
type Endpoint interface {
	// Establish blocks until a connection exists: the listener variant
	// accepts one inbound peer, the dialer variant connects out.
	Establish(ctx context.Context) (Conn, error)

	// Close releases the endpoint, including any listening socket.
	// Closing unblocks a pending Establish.
	Close() error
}
