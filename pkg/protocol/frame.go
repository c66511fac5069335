// Package protocol defines the wire format for chat messages: a 2-byte
// big-endian length prefix followed by the raw payload bytes.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayloadLen is the largest payload a single frame may carry. It matches
// the line buffer of the session, so one frame always holds one full line.
const MaxPayloadLen = 1024

const headerLen = 2

// ErrFrameTooLarge indicates a payload, or a declared payload length, above
// MaxPayloadLen. Oversize frames are rejected rather than truncated.
var ErrFrameTooLarge = errors.New("frame exceeds maximum payload length")

// WriteFrame writes one frame: the length header followed by the payload.
// The two writes are separate; receivers must reconstruct messages from the
// declared length, not from write boundaries.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxPayloadLen {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	var header [headerLen]byte
	binary.BigEndian.PutUint16(header[:], uint16(len(payload)))

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if len(payload) == 0 {
		return nil
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}
	return nil
}

// ReadFrame reads one frame and returns its payload. A connection closed
// cleanly at a frame boundary, or mid-frame, is reported as io.EOF. A declared
// length above MaxPayloadLen is rejected with ErrFrameTooLarge before any
// payload bytes are read.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[:])
	if length > MaxPayloadLen {
		return nil, fmt.Errorf("%w: declared length %d", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, err
	}
	return payload, nil
}
