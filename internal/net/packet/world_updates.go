package packet

import "github.com/otgo/server/internal/world"

// Opcodes for world state updates.
const (
	OpTileAddThing    byte = 0x6A
	OpTileTransform   byte = 0x6B
	OpTileRemoveThing byte = 0x6C
	OpCreatureMove    byte = 0x6D
	OpTileDescription byte = 0x69
	OpTextMessage     byte = 0xB4
)

// maxTileThings caps how many stack entries a tile description carries.
// Anything deeper is invisible to clients anyway.
const maxTileThings = 10

func writePosition(w *Writer, pos world.Position) {
	w.WriteU16(pos.X)
	w.WriteU16(pos.Y)
	w.WriteByte(pos.Z)
}

func writeItem(w *Writer, item *world.Item) {
	w.WriteU16(item.ID())
	if item.IsStackable() {
		w.WriteByte(byte(item.Count()))
	}
}

func writeCreature(w *Writer, c world.Creature) {
	w.WriteU32(c.ID())
	w.WriteString(c.Name())
	w.WriteByte(byte(c.Direction()))
}

// TileAddThing announces an item or creature appearing on a tile.
func TileAddThing(pos world.Position, index int, thing world.Thing) []byte {
	w := NewWriterWithOpcode(OpTileAddThing)
	writePosition(w, pos)
	w.WriteByte(byte(index))
	if item := thing.AsItem(); item != nil {
		writeItem(w, item)
	} else if c := thing.AsCreature(); c != nil {
		writeCreature(w, c)
	}
	return w.Bytes()
}

// TileRemoveThing announces a stack entry vanishing.
func TileRemoveThing(pos world.Position, index int) []byte {
	w := NewWriterWithOpcode(OpTileRemoveThing)
	writePosition(w, pos)
	w.WriteByte(byte(index))
	return w.Bytes()
}

// TileTransform announces an item changing type or count in place.
func TileTransform(pos world.Position, index int, item *world.Item) []byte {
	w := NewWriterWithOpcode(OpTileTransform)
	writePosition(w, pos)
	w.WriteByte(byte(index))
	writeItem(w, item)
	return w.Bytes()
}

// CreatureMove announces a creature stepping between tiles.
func CreatureMove(c world.Creature, from, to world.Position) []byte {
	w := NewWriterWithOpcode(OpCreatureMove)
	w.WriteU32(c.ID())
	writePosition(w, from)
	writePosition(w, to)
	w.WriteByte(byte(c.Direction()))
	return w.Bytes()
}

// TileDescription serializes a full tile stack, ground first, capped at
// maxTileThings entries.
func TileDescription(t *world.Tile) []byte {
	w := NewWriterWithOpcode(OpTileDescription)
	writePosition(w, t.Pos())

	n := 0
	add := func(fn func()) bool {
		if n >= maxTileThings {
			return false
		}
		fn()
		n++
		return true
	}

	if ground := t.Ground(); ground != nil {
		add(func() { writeItem(w, ground) })
	}
	for _, item := range t.TopItems() {
		if !add(func() { writeItem(w, item) }) {
			break
		}
	}
	for _, c := range t.Creatures() {
		if !add(func() { writeCreature(w, c) }) {
			break
		}
	}
	for _, item := range t.DownItems() {
		if !add(func() { writeItem(w, item) }) {
			break
		}
	}
	w.WriteByte(byte(n))
	return w.Bytes()
}
