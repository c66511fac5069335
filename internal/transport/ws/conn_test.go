package ws_test

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"

	gws "github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/omochice/peerchat/internal/chat"
	"github.com/omochice/peerchat/internal/transport/ws"
	"github.com/omochice/peerchat/pkg/protocol"
)

func TestConn_ImplementsInterface(t *testing.T) {
	var _ chat.Conn = (*ws.Conn)(nil)
}

func TestConn_Read(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(server, gws.StateServerSide)

	go func() {
		if err := wsutil.WriteMessage(client, gws.StateClientSide, gws.OpBinary, []byte("test message")); err != nil {
			t.Errorf("peer write error = %v", err)
		}
	}()

	payload, err := conn.Read(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != "test message" {
		t.Errorf("Read() = %q, want %q", string(payload), "test message")
	}
}

func TestConn_Write(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(client, gws.StateClientSide)

	go func() {
		if err := conn.Write(context.Background(), []byte("hello")); err != nil {
			t.Errorf("Write() error = %v", err)
		}
	}()

	payload, _, err := wsutil.ReadData(server, gws.StateServerSide)
	if err != nil {
		t.Fatalf("server read error: %v", err)
	}
	if string(payload) != "hello" {
		t.Errorf("server received %q, want %q", string(payload), "hello")
	}
}

func TestConn_ReadCloseFrame(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(server, gws.StateServerSide)

	go func() {
		_ = wsutil.WriteMessage(client, gws.StateClientSide, gws.OpClose, nil)
	}()
	go func() {
		// Drain the close frame echoed back by the reader. This must run
		// concurrently with the write above: net.Pipe is fully synchronous,
		// so the echoed close frame must be consumed before WriteMessage's
		// final zero-byte payload write can return.
		_, _ = io.ReadAll(client)
	}()

	_, err := conn.Read(context.Background())
	if !errors.Is(err, io.EOF) {
		t.Errorf("Read() error = %v, want io.EOF", err)
	}
}

func TestConn_WriteRejectsOversizePayload(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := ws.NewConn(client, gws.StateClientSide)

	payload := make([]byte, protocol.MaxPayloadLen+1)
	err := conn.Write(context.Background(), payload)
	if !errors.Is(err, protocol.ErrFrameTooLarge) {
		t.Errorf("Write() error = %v, want ErrFrameTooLarge", err)
	}
}
