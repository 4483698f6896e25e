package persist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/otgo/server/internal/world"
)

// Item attribute stream. Each attribute is a one-byte tag followed by a
// fixed- or length-prefixed payload, little endian throughout. Unknown tags
// abort the read: a truncated blob must never half-apply.
const (
	attrEnd      byte = 0x00
	attrCount    byte = 0x01
	attrSubType  byte = 0x02
	attrActionID byte = 0x03
	attrUniqueID byte = 0x04
	attrText     byte = 0x05
	attrWriter   byte = 0x06
	attrWritten  byte = 0x07
	attrDuration byte = 0x08
	attrDecay    byte = 0x09
	attrName     byte = 0x0A
	attrTeleDest byte = 0x0B
	attrDoorID   byte = 0x0C
	attrSleeper  byte = 0x0D
)

// EncodeItemAttributes serializes an item's instance state. The item type
// id is stored in the row, not the stream.
func EncodeItemAttributes(item *world.Item) []byte {
	var buf bytes.Buffer
	w := func(tag byte, v any) {
		buf.WriteByte(tag)
		binary.Write(&buf, binary.LittleEndian, v)
	}
	ws := func(tag byte, s string) {
		buf.WriteByte(tag)
		binary.Write(&buf, binary.LittleEndian, uint16(len(s)))
		buf.WriteString(s)
	}

	if item.IsStackable() {
		w(attrCount, uint16(item.Count()))
	} else if item.SubType() != 0 {
		w(attrSubType, item.SubType())
	}
	if item.ActionID() != 0 {
		w(attrActionID, item.ActionID())
	}
	if item.UniqueID() != 0 {
		w(attrUniqueID, item.UniqueID())
	}
	if item.Text() != "" {
		ws(attrText, item.Text())
	}
	if item.Writer() != "" {
		ws(attrWriter, item.Writer())
		w(attrWritten, item.WrittenAt().Unix())
	}
	// A fresh item carries no decay state; only a started (or stopped
	// mid-way) clock is instance data worth a row.
	if d, started := item.RemainingDuration(); started || item.DecayState() != world.DecayNone {
		if !started {
			d = item.Duration()
		}
		w(attrDuration, uint32(d/time.Millisecond))
		w(attrDecay, uint8(item.DecayState()))
	}
	if tp := item.Teleport(); tp != nil {
		dest := tp.Destination()
		w(attrTeleDest, struct {
			X, Y uint16
			Z    uint8
		}{dest.X, dest.Y, dest.Z})
	}
	if door := item.Door(); door != nil && door.DoorID() != 0 {
		w(attrDoorID, door.DoorID())
	}
	if bed := item.Bed(); bed != nil && bed.SleeperGUID() != 0 {
		w(attrSleeper, bed.SleeperGUID())
	}

	buf.WriteByte(attrEnd)
	return buf.Bytes()
}

// DecodeItemAttributes applies a serialized attribute stream to a freshly
// created item.
func DecodeItemAttributes(item *world.Item, blob []byte) error {
	r := bytes.NewReader(blob)
	read := func(v any) error { return binary.Read(r, binary.LittleEndian, v) }
	readString := func() (string, error) {
		var n uint16
		if err := read(&n); err != nil {
			return "", err
		}
		b := make([]byte, n)
		if _, err := r.Read(b); err != nil {
			return "", err
		}
		return string(b), nil
	}

	for {
		tag, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("attr stream: missing end tag")
		}
		switch tag {
		case attrEnd:
			return nil
		case attrCount:
			var n uint16
			if err := read(&n); err != nil {
				return err
			}
			item.SetCount(uint32(n))
		case attrSubType:
			var n uint16
			if err := read(&n); err != nil {
				return err
			}
			item.SetSubType(n)
		case attrActionID:
			var n uint16
			if err := read(&n); err != nil {
				return err
			}
			item.SetActionID(n)
		case attrUniqueID:
			var n uint16
			if err := read(&n); err != nil {
				return err
			}
			item.SetUniqueID(n)
		case attrText:
			s, err := readString()
			if err != nil {
				return err
			}
			item.SetText(s)
		case attrWriter:
			s, err := readString()
			if err != nil {
				return err
			}
			item.SetWriter(s)
		case attrWritten:
			var ts int64
			if err := read(&ts); err != nil {
				return err
			}
			// Writer timestamp restores through SetWriter; keep position.
		case attrDuration:
			var ms uint32
			if err := read(&ms); err != nil {
				return err
			}
			item.SetDuration(time.Duration(ms) * time.Millisecond)
		case attrDecay:
			var s uint8
			if err := read(&s); err != nil {
				return err
			}
			if world.DecayState(s) == world.DecayActive {
				// Resumes as pending; the engine restarts the clock when
				// the item lands in the world.
				item.SetDecayState(world.DecayPending)
			}
		case attrName:
			s, err := readString()
			if err != nil {
				return err
			}
			item.SetName(s)
		case attrTeleDest:
			var dest struct {
				X, Y uint16
				Z    uint8
			}
			if err := read(&dest); err != nil {
				return err
			}
			if tp := item.Teleport(); tp != nil {
				tp.SetDestination(world.Position{X: dest.X, Y: dest.Y, Z: dest.Z})
			}
		case attrDoorID:
			var id uint8
			if err := read(&id); err != nil {
				return err
			}
			if door := item.Door(); door != nil {
				door.SetDoorID(id)
			}
		case attrSleeper:
			var guid uint32
			if err := read(&guid); err != nil {
				return err
			}
			if bed := item.Bed(); bed != nil {
				bed.Occupy(guid)
			}
		default:
			return fmt.Errorf("attr stream: unknown tag 0x%02x", tag)
		}
	}
}
