package net

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer

	payload := []byte{0x0A, 0x01, 0x02, 0x03}
	require.NoError(t, WriteFrame(&buf, payload))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Zero(t, buf.Len(), "frame consumed exactly")
}

func TestFrameBackToBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, []byte{0x01}))
	require.NoError(t, WriteFrame(&buf, []byte{0x02, 0x03}))

	first, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, first)

	second, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x02, 0x03}, second)
}

func TestReadFrameInvalidLength(t *testing.T) {
	// Total length 2 means an empty payload, which no message has.
	_, err := ReadFrame(bytes.NewReader([]byte{0x02, 0x00}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid frame length")

	_, err = ReadFrame(bytes.NewReader([]byte{0x00, 0x00}))
	require.Error(t, err)
}

func TestReadFrameTruncated(t *testing.T) {
	// Header promises 8 bytes of payload, stream carries 2.
	_, err := ReadFrame(bytes.NewReader([]byte{0x0A, 0x00, 0x01, 0x02}))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, err = ReadFrame(bytes.NewReader([]byte{0x0A}))
	require.Error(t, err)
}
