package packet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLayout(t *testing.T) {
	w := NewWriterWithOpcode(OpWalk)
	w.WriteByte(0x02)
	w.WriteU16(0x1234)
	w.WriteU32(0xDEADBEEF)
	w.WriteString("Ada")

	assert.Equal(t, []byte{
		OpWalk,
		0x02,
		0x34, 0x12,
		0xEF, 0xBE, 0xAD, 0xDE,
		0x03, 0x00, 'A', 'd', 'a',
	}, w.Bytes())
	assert.Equal(t, 13, w.Len())
}

func TestReaderRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteByte(0x7F)
	w.WriteU16(513)
	w.WriteU32(70000)
	w.WriteString("hello")
	w.WriteBytes([]byte{0xAA, 0xBB})

	r := NewReader(w.Bytes())

	b, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x7F), b)

	u16, err := r.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(513), u16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(70000), u32)

	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	assert.Equal(t, 2, r.Remaining())
}

func TestReaderShortPacket(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.ReadByte()
	require.NoError(t, err)

	_, err = r.ReadByte()
	assert.ErrorIs(t, err, ErrShortPacket)
	_, err = r.ReadU16()
	assert.ErrorIs(t, err, ErrShortPacket)
	_, err = r.ReadU32()
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestReaderStringOverruns(t *testing.T) {
	// Prefix claims 10 bytes, only 2 follow.
	r := NewReader([]byte{0x0A, 0x00, 'h', 'i'})
	_, err := r.ReadString()
	assert.ErrorIs(t, err, ErrShortPacket)
}

func TestReaderEmptyString(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00})
	s, err := r.ReadString()
	require.NoError(t, err)
	assert.Empty(t, s)
	assert.Zero(t, r.Remaining())
}
