package chat

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"

	"github.com/omochice/peerchat/pkg/protocol"
)

// Session runs bidirectional message flow over one established connection:
// an inbound loop reading peer messages into the local output, and an
// outbound loop reading local input lines and sending them to the peer.
// Each loop owns one direction of the connection, so no locking is needed
// on the connection itself.
type Session struct {
	conn      Conn
	in        io.Reader
	out       io.Writer
	latch     *Latch
	closeOnce sync.Once
}

// NewSession creates a session over an established connection. Local input
// and output are typically stdin and stdout.
func NewSession(conn Conn, in io.Reader, out io.Writer, latch *Latch) *Session {
	return &Session{
		conn:  conn,
		in:    in,
		out:   out,
		latch: latch,
	}
}

// Run exchanges messages until the peer closes, local input is exhausted, or
// the latch fires. All three are a normal end of conversation and return nil;
// any other I/O failure is returned. The connection is closed exactly once,
// before Run returns. When the latch fires, closing the connection unblocks a
// pending peer read, so both loops stop within one blocking call.
func (s *Session) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- s.inbound(ctx) }()
	go func() { errc <- s.outbound(ctx) }()

	var err error
	select {
	case <-s.latch.Done():
		log.Printf("shutdown requested, closing session with %s", s.conn.RemoteAddr())
	case err = <-errc:
	}
	s.close()

	if err == nil || s.latch.Triggered() || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// inbound reads peer messages and writes them to the local output.
func (s *Session) inbound(ctx context.Context) error {
	for !s.latch.Triggered() {
		payload, err := s.conn.Read(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Printf("peer %s closed the connection", s.conn.RemoteAddr())
			}
			return err
		}
		if _, err := s.out.Write(payload); err != nil {
			return fmt.Errorf("failed to write to local output: %w", err)
		}
	}
	return nil
}

// outbound reads local input lines and sends each as one message, trailing
// newline included.
func (s *Session) outbound(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Cap lines one byte short of the frame limit to leave room for the
	// trailing newline.
	scanner.Buffer(make([]byte, 0, protocol.MaxPayloadLen-1), protocol.MaxPayloadLen-1)

	for !s.latch.Triggered() {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read local input: %w", err)
			}
			// Local input exhausted: normal end of conversation.
			return nil
		}

		line := append([]byte(nil), scanner.Bytes()...)
		line = append(line, '\n')
		if err := s.conn.Write(ctx, line); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		if err := s.conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("failed to close connection: %v", err)
		}
	})
}
