package tcp

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/netip"
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/omochice/peerchat/internal/chat"
	"github.com/omochice/peerchat/internal/netaddr"
)

// acceptPollInterval bounds how long a pending accept can outlive a shutdown
// request.
const acceptPollInterval = 250 // milliseconds

// ListenEndpoint owns the listening socket for the listener role.
type ListenEndpoint struct {
	fd        int
	closeOnce sync.Once
	closeErr  error
}

// Listen creates a socket for the resolved address family, sets SO_REUSEADDR,
// binds it to addr:port and starts listening with the platform's maximum
// backlog. Port 0 binds an ephemeral port; see Addr.
func Listen(addr netaddr.Addr, port uint16) (*ListenEndpoint, error) {
	fd, sa, err := newSocket(addr, port)
	if err != nil {
		return nil, err
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set SO_REUSEADDR: %w", err)
	}

	log.Printf("binding to %s", addr.AddrPort(port))
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to bind to %s: %w", addr.AddrPort(port), err)
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to listen on %s: %w", addr.AddrPort(port), err)
	}

	// Nonblocking so Establish can poll for readiness and observe shutdown
	// between waits instead of parking in accept forever.
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to set the listening socket nonblocking: %w", err)
	}

	e := &ListenEndpoint{fd: fd}
	log.Printf("listening for incoming connections on %s", e.Addr())
	return e, nil
}

// Establish implements chat.Endpoint.
// Blocks until one peer connects. Signal delivery during the wait is
// transient and retried; any other accept failure is returned to the caller.
// The accepted peer's reverse-resolved host is logged when available.
func (e *ListenEndpoint) Establish(ctx context.Context) (chat.Conn, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fds := []unix.PollFd{{Fd: int32(e.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, acceptPollInterval)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, fmt.Errorf("failed to poll the listening socket: %w", err)
		}
		if n == 0 {
			continue
		}

		nfd, sa, err := unix.Accept(e.fd)
		if err != nil {
			// EAGAIN: the pending peer vanished between poll and accept.
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			if ctx.Err() != nil {
				// The listening socket was closed during shutdown.
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to accept connection: %w", err)
		}

		logPeer(sa)
		return wrapFD(nfd)
	}
}

// Addr returns the bound address, including the kernel-assigned port when
// the endpoint was bound to port 0.
func (e *ListenEndpoint) Addr() string {
	sa, err := unix.Getsockname(e.fd)
	if err != nil {
		return ""
	}
	ap, ok := sockaddrToAddrPort(sa)
	if !ok {
		return ""
	}
	return ap.String()
}

// Port returns the bound port number.
func (e *ListenEndpoint) Port() uint16 {
	sa, err := unix.Getsockname(e.fd)
	if err != nil {
		return 0
	}
	ap, ok := sockaddrToAddrPort(sa)
	if !ok {
		return 0
	}
	return ap.Port()
}

// Close implements chat.Endpoint.
// Closes the listening socket, unblocking a pending Establish.
func (e *ListenEndpoint) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = unix.Close(e.fd)
	})
	return e.closeErr
}

// DialEndpoint performs the outbound connect for the dialer role.
type DialEndpoint struct {
	addr netaddr.Addr
	port uint16
}

// Dial prepares a dialer endpoint for addr:port. The socket is created when
// Establish runs.
func Dial(addr netaddr.Addr, port uint16) *DialEndpoint {
	return &DialEndpoint{addr: addr, port: port}
}

// Establish implements chat.Endpoint.
// Builds the family-appropriate socket address and performs a blocking
// connect. Any failure is returned to the caller; there is no retry.
func (e *DialEndpoint) Establish(ctx context.Context) (chat.Conn, error) {
	fd, sa, err := newSocket(e.addr, e.port)
	if err != nil {
		return nil, err
	}

	target := e.addr.AddrPort(e.port)
	log.Printf("connecting to %s", target)
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("failed to connect to %s: %w", target, err)
	}

	log.Printf("connected to %s", target)
	return wrapFD(fd)
}

// Close implements chat.Endpoint. The dialer holds no listening socket; the
// established connection is owned and closed by the session.
func (e *DialEndpoint) Close() error {
	return nil
}

// newSocket creates a stream socket matching the address family and builds
// the sockaddr for it, with the port converted to network byte order.
func newSocket(addr netaddr.Addr, port uint16) (int, unix.Sockaddr, error) {
	var (
		domain int
		sa     unix.Sockaddr
	)
	switch addr.Family() {
	case netaddr.IPv4:
		domain = unix.AF_INET
		sa = &unix.SockaddrInet4{Port: int(port), Addr: addr.As4()}
	case netaddr.IPv6:
		domain = unix.AF_INET6
		sa = &unix.SockaddrInet6{Port: int(port), Addr: addr.As16()}
	default:
		return -1, nil, fmt.Errorf("address family must be IPv4 or IPv6, was %v", addr.Family())
	}

	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, nil, fmt.Errorf("failed to create socket: %w", err)
	}
	return fd, sa, nil
}

// wrapFD hands the established descriptor to the runtime poller and wraps it
// with the frame codec. The poller-backed conn unblocks reads on Close, which
// the session relies on for prompt shutdown.
func wrapFD(fd int) (chat.Conn, error) {
	f := os.NewFile(uintptr(fd), "peer")
	conn, err := net.FileConn(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to register socket with the runtime poller: %w", err)
	}
	return NewConn(conn), nil
}

// logPeer logs the accepted peer, preferring its reverse-resolved host name.
// Resolution failure is diagnostic only.
func logPeer(sa unix.Sockaddr) {
	ap, ok := sockaddrToAddrPort(sa)
	if !ok {
		log.Printf("accepted a connection, but could not decode the peer address")
		return
	}

	if names, err := net.LookupAddr(ap.Addr().String()); err == nil && len(names) > 0 {
		log.Printf("accepted a new connection from %s:%d", names[0], ap.Port())
		return
	}
	log.Printf("accepted a new connection from %s", ap)
}

func sockaddrToAddrPort(sa unix.Sockaddr) (netip.AddrPort, bool) {
	switch sa := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), true
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port)), true
	default:
		return netip.AddrPort{}, false
	}
}
