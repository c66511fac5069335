package ws

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net"

	gws "github.com/gobwas/ws"

	"github.com/omochice/peerchat/internal/chat"
	"github.com/omochice/peerchat/internal/netaddr"
)

// ListenEndpoint accepts a single inbound WebSocket connection.
type ListenEndpoint struct {
	listener net.Listener
}

// Listen binds addr:port and prepares to upgrade the first accepted
// connection.
func Listen(addr netaddr.Addr, port uint16) (*ListenEndpoint, error) {
	listener, err := net.Listen("tcp", addr.AddrPort(port).String())
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addr.AddrPort(port), err)
	}

	log.Printf("listening for WebSocket connections on %s", listener.Addr())
	return &ListenEndpoint{listener: listener}, nil
}

// Establish implements chat.Endpoint.
// Accepts one peer and performs the WebSocket upgrade on it.
func (e *ListenEndpoint) Establish(ctx context.Context) (chat.Conn, error) {
	conn, err := e.listener.Accept()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to accept connection: %w", err)
	}

	if _, err := gws.Upgrade(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	log.Printf("accepted a new connection from %s", conn.RemoteAddr())
	return NewConn(conn, gws.StateServerSide), nil
}

// Addr returns the bound address, including the kernel-assigned port when
// the endpoint was bound to port 0.
func (e *ListenEndpoint) Addr() string {
	return e.listener.Addr().String()
}

// Close implements chat.Endpoint.
// Closes the listening socket, unblocking a pending Establish.
func (e *ListenEndpoint) Close() error {
	return e.listener.Close()
}

// DialEndpoint performs the outbound WebSocket handshake for the dialer role.
type DialEndpoint struct {
	addr netaddr.Addr
	port uint16
}

// Dial prepares a dialer endpoint for addr:port.
func Dial(addr netaddr.Addr, port uint16) *DialEndpoint {
	return &DialEndpoint{addr: addr, port: port}
}

// Establish implements chat.Endpoint.
func (e *DialEndpoint) Establish(ctx context.Context) (chat.Conn, error) {
	url := fmt.Sprintf("ws://%s/", e.addr.AddrPort(e.port))
	log.Printf("connecting to %s", url)

	conn, br, _, err := gws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", url, err)
	}
	if br != nil {
		// The handshake read ahead; keep the buffered bytes in front.
		conn = &bufferedConn{Conn: conn, reader: br}
	}

	log.Printf("connected to %s", url)
	return NewConn(conn, gws.StateClientSide), nil
}

// Close implements chat.Endpoint. The dialer holds no listening socket; the
// established connection is owned and closed by the session.
func (e *DialEndpoint) Close() error {
	return nil
}

// bufferedConn wraps a net.Conn with a bufio.Reader to preserve bytes already
// read during the handshake.
type bufferedConn struct {
	net.Conn
	reader *bufio.Reader
}

func (bc *bufferedConn) Read(p []byte) (int, error) {
	return bc.reader.Read(p)
}
