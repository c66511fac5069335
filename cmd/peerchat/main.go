// Command peerchat is a point-to-point text chat over TCP or WebSocket.
// One side listens for a single peer, the other dials out; once connected
// both sides exchange lines until the peer disconnects or a suspend signal
// (Ctrl+Z) requests shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/omochice/peerchat/internal/chat"
	"github.com/omochice/peerchat/internal/netaddr"
	"github.com/omochice/peerchat/internal/transport/tcp"
	"github.com/omochice/peerchat/internal/transport/ws"
)

func main() {
	listenFlag := flag.Bool("listen", false, "Accept a single inbound connection")
	connectFlag := flag.Bool("connect", false, "Dial out to a listening peer")
	transport := flag.String("transport", "tcp", "Transport to use: tcp or ws")
	flag.Usage = usage
	flag.Parse()

	if *listenFlag == *connectFlag {
		usageError("Exactly one of -listen or -connect is required")
	}
	if flag.NArg() != 2 {
		usageError("The ip address and port are required")
	}

	addr, err := netaddr.Resolve(flag.Arg(0))
	if err != nil {
		log.Fatalf("Invalid address: %v", err)
	}
	port, err := parsePort(flag.Arg(1))
	if err != nil {
		log.Fatalf("Invalid port: %v", err)
	}

	endpoint, err := newEndpoint(*transport, *listenFlag, addr, port)
	if err != nil {
		log.Fatalf("Failed to prepare endpoint: %v", err)
	}
	defer endpoint.Close()

	latch := chat.NewLatch()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The suspend signal is the shutdown trigger; no other signals are
	// handled. Closing the endpoint unblocks a pending accept.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTSTP)
	go func() {
		sig := <-sigChan
		log.Printf("Received signal %v, shutting down...", sig)
		latch.Trigger()
		cancel()
		endpoint.Close()
	}()

	conn, err := endpoint.Establish(ctx)
	if err != nil {
		if latch.Triggered() {
			return
		}
		log.Fatalf("Failed to establish connection: %v", err)
	}

	session := chat.NewSession(conn, os.Stdin, os.Stdout, latch)
	if err := session.Run(ctx); err != nil {
		log.Fatalf("Session failed: %v", err)
	}
}

func newEndpoint(transport string, listen bool, addr netaddr.Addr, port uint16) (chat.Endpoint, error) {
	switch transport {
	case "tcp":
		if listen {
			return tcp.Listen(addr, port)
		}
		return tcp.Dial(addr, port), nil
	case "ws":
		if listen {
			return ws.Listen(addr, port)
		}
		return ws.Dial(addr, port), nil
	default:
		return nil, fmt.Errorf("unknown transport %q (expected tcp or ws)", transport)
	}
}

func parsePort(s string) (uint16, error) {
	port, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%q is not a port number", s)
	}
	return uint16(port), nil
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-listen | -connect] [-transport tcp|ws] <ip address> <port>\n", os.Args[0])
	flag.PrintDefaults()
}

func usageError(message string) {
	fmt.Fprintln(os.Stderr, message)
	flag.Usage()
	os.Exit(2)
}
