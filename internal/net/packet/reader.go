package packet

import (
	"encoding/binary"
	"errors"
)

// Client opcodes.
const (
	OpLogin    byte = 0x0A
	OpLogout   byte = 0x14
	OpWalk     byte = 0x64 // followed by a direction byte
	OpTurn     byte = 0x6F // followed by a direction byte
	OpMoveItem byte = 0x78
)

var ErrShortPacket = errors.New("short packet")

// Reader decodes one incoming message. All multi-byte reads are
// little-endian; strings carry a two-byte length prefix.
type Reader struct {
	buf []byte
	off int
}

func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) ReadByte() (byte, error) {
	if r.off+1 > len(r.buf) {
		return 0, ErrShortPacket
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if r.off+2 > len(r.buf) {
		return 0, ErrShortPacket
	}
	v := binary.LittleEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, ErrShortPacket
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.buf) {
		return "", ErrShortPacket
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// Remaining returns how many bytes are left unread.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}
