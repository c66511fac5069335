// Package tcp provides the raw TCP transport: socket establishment for both
// roles and length-prefixed framing over the established connection.
package tcp

import (
	"context"
	"net"

	"github.com/omochice/peerchat/pkg/protocol"
)

// Conn adapts a net.Conn to chat.Conn, applying the frame codec per message.
type Conn struct {
	conn net.Conn
}

// NewConn wraps an established net.Conn.
func NewConn(conn net.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read implements chat.Conn.
// Reads one length-prefixed frame and returns its payload.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	return protocol.ReadFrame(c.conn)
}

// Write implements chat.Conn.
// Sends the payload as one length-prefixed frame.
func (c *Conn) Write(ctx context.Context, payload []byte) error {
	return protocol.WriteFrame(c.conn, payload)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
