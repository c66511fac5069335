package ws_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/omochice/peerchat/internal/chat"
	"github.com/omochice/peerchat/internal/netaddr"
	"github.com/omochice/peerchat/internal/transport/ws"
)

func TestEndpoints_ImplementInterface(t *testing.T) {
	var _ chat.Endpoint = (*ws.ListenEndpoint)(nil)
	var _ chat.Endpoint = (*ws.DialEndpoint)(nil)
}

func TestListenAndDial(t *testing.T) {
	addr, err := netaddr.Resolve("127.0.0.1")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	listener, err := ws.Listen(addr, 0)
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer listener.Close()

	_, portStr, err := net.SplitHostPort(listener.Addr())
	if err != nil {
		t.Fatalf("SplitHostPort(%q) error = %v", listener.Addr(), err)
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		t.Fatalf("invalid port %q: %v", portStr, err)
	}

	accepted := make(chan chat.Conn, 1)
	go func() {
		conn, err := listener.Establish(context.Background())
		if err != nil {
			t.Errorf("Establish() on listener error = %v", err)
			return
		}
		accepted <- conn
	}()

	client, err := ws.Dial(addr, uint16(port)).Establish(context.Background())
	if err != nil {
		t.Fatalf("Establish() on dialer error = %v", err)
	}
	defer client.Close()

	var server chat.Conn
	select {
	case server = <-accepted:
		defer server.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not accept the connection")
	}

	ctx := context.Background()
	if err := client.Write(ctx, []byte("hello\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	payload, err := server.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(payload) != "hello\n" {
		t.Errorf("server received %q, want %q", payload, "hello\n")
	}

	if err := server.Write(ctx, []byte("hi\n")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	payload, err = client.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(payload) != "hi\n" {
		t.Errorf("client received %q, want %q", payload, "hi\n")
	}
}
