// Package ws provides the WebSocket transport variant. Each chat line travels
// as one binary WebSocket message; WebSocket supplies the framing, so the raw
// length-prefixed codec is not applied.
package ws

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	gws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/peerchat/pkg/protocol"
)

// Conn adapts a WebSocket connection to chat.Conn using gobwas/ws. The state
// selects the server or client side of the protocol (frame masking).
type Conn struct {
	conn  net.Conn
	state gws.State
}

// NewConn wraps an upgraded WebSocket connection.
func NewConn(conn net.Conn, state gws.State) *Conn {
	return &Conn{conn: conn, state: state}
}

// Read implements chat.Conn.
// Reads the next binary message. A close frame or a closed underlying
// connection is reported as io.EOF. Messages above the payload cap are
// rejected for parity with the raw TCP framing.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	payload, _, err := wsutil.ReadData(c.conn, c.state)
	if err != nil {
		var closed wsutil.ClosedError
		if errors.As(err, &closed) {
			return nil, io.EOF
		}
		return nil, err
	}
	if len(payload) > protocol.MaxPayloadLen {
		return nil, fmt.Errorf("%w: %d bytes", protocol.ErrFrameTooLarge, len(payload))
	}
	return payload, nil
}

// Write implements chat.Conn.
// Sends the payload as one binary message.
func (c *Conn) Write(ctx context.Context, payload []byte) error {
	if len(payload) > protocol.MaxPayloadLen {
		return fmt.Errorf("%w: %d bytes", protocol.ErrFrameTooLarge, len(payload))
	}
	return wsutil.WriteMessage(c.conn, c.state, gws.OpBinary, payload)
}

// Close implements chat.Conn.
func (c *Conn) Close() error {
	// Send a close frame; best effort.
	_ = wsutil.WriteMessage(c.conn, c.state, gws.OpClose, nil)
	return c.conn.Close()
}

// RemoteAddr implements chat.Conn.
func (c *Conn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
