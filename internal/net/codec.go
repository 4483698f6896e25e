package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frames on the wire are a two-byte little-endian total length, header
// included, followed by the payload. The length field caps a frame at
// 65535 bytes.
const (
	frameHeaderLen  = 2
	maxFramePayload = 0xFFFF - frameHeaderLen
)

// ReadFrame consumes exactly one frame and returns its payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [frameHeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}

	total := int(binary.LittleEndian.Uint16(header[:]))
	if total <= frameHeaderLen {
		return nil, fmt.Errorf("invalid frame length: %d", total)
	}

	payload := make([]byte, total-frameHeaderLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read frame payload (%d bytes): %w", len(payload), err)
	}
	return payload, nil
}

// WriteFrame emits one frame. The header and payload go out in a single
// write so a frame is never interleaved on a shared writer.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) == 0 || len(data) > maxFramePayload {
		return fmt.Errorf("invalid frame payload size: %d", len(data))
	}

	frame := make([]byte, frameHeaderLen+len(data))
	binary.LittleEndian.PutUint16(frame, uint16(len(frame)))
	copy(frame[frameHeaderLen:], data)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
