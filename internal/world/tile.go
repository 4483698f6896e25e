package world

import "github.com/otgo/server/internal/data"

// TileFlags is the bitmask of tile properties. Zone bits are static (set at
// load); the item-derived bits are recomputed on every structural change.
type TileFlags uint32

const (
	TileBlockSolid TileFlags = 1 << iota
	TileBlockProjectile
	TileBlockPathFind
	TileProtectionZone
	TileNoPvpZone
	TilePvpZone
	TileNoLogout
	TileHouse
	TileSupportsHangable
	TileFloorChange
	TileFloorChangeDown
	TileTeleport
	TileRefresh
)

// staticTileFlags are the load-time zone bits never derived from items.
const staticTileFlags = TileProtectionZone | TileNoPvpZone | TilePvpZone |
	TileNoLogout | TileRefresh

// tileObserver receives committed tile mutations. The map installs itself
// here so spectators can be told about stack changes.
type tileObserver interface {
	TileChanged(t *Tile)
}

// Tile is one map cell: optional ground, always-on-top items, regular
// items, creatures. The stack order (ground, top, creatures, down) is part
// of the client protocol and never changes.
type Tile struct {
	pos       Position
	ground    *Item
	topItems  []*Item
	downItems []*Item
	creatures []Creature

	house    *House
	flags    TileFlags // static zone bits
	itemBits TileFlags // recomputed from ground+items

	observer tileObserver

	// Owning map, set when the tile is attached. Destination redirects
	// (stairs, holes, teleporters) need it to reach neighbouring tiles.
	m *Map

	// Per-tile item count limits, set by the map from config.
	maxItems int
}

// NewTile creates an empty tile at a position.
func NewTile(pos Position) *Tile {
	return &Tile{pos: pos, maxItems: defaultTileItemLimit}
}

const (
	defaultTileItemLimit      = 1000
	defaultHouseTileItemLimit = 10
)

// Pos returns the tile coordinate.
func (t *Tile) Pos() Position { return t.pos }

// House returns the owning house, or nil.
func (t *Tile) House() *House { return t.house }

// IsHouseTile reports whether the tile belongs to a house.
func (t *Tile) IsHouseTile() bool { return t.house != nil }

// SetStaticFlags sets load-time zone bits.
func (t *Tile) SetStaticFlags(f TileFlags) {
	t.flags = f & staticTileFlags
}

// HasFlag reports whether the combined mask has all bits of f.
func (t *Tile) HasFlag(f TileFlags) bool {
	return (t.flags|t.itemBits|t.houseBit())&f == f
}

func (t *Tile) houseBit() TileFlags {
	if t.house != nil {
		return TileHouse
	}
	return 0
}

// recomputeFlags rebuilds the item-derived bits. Must run whenever ground
// or items change, not just at load.
func (t *Tile) recomputeFlags() {
	var bits TileFlags
	apply := func(it *data.ItemType) {
		if it.BlockSolid {
			bits |= TileBlockSolid
		}
		if it.BlockProjectile {
			bits |= TileBlockProjectile
		}
		if it.BlockPathFind {
			bits |= TileBlockPathFind
		}
		if it.HookSouth || it.HookEast {
			bits |= TileSupportsHangable
		}
		switch it.FloorChangeKind {
		case data.FloorChangeNone:
		case data.FloorChangeDown:
			bits |= TileFloorChange | TileFloorChangeDown
		default:
			bits |= TileFloorChange
		}
		if it.Kind == data.KindTeleport {
			bits |= TileTeleport
		}
	}
	if t.ground != nil {
		apply(t.ground.Type())
	}
	for _, it := range t.topItems {
		apply(it.Type())
	}
	for _, it := range t.downItems {
		apply(it.Type())
	}
	t.itemBits = bits
}

// Ground returns the ground item, or nil.
func (t *Tile) Ground() *Item { return t.ground }

// SetGround replaces the ground item (map load, decay transforms).
func (t *Tile) SetGround(item *Item) {
	if t.ground != nil {
		t.ground.SetParent(nil)
	}
	t.ground = item
	if item != nil {
		item.SetParent(t)
	}
	t.recomputeFlags()
}

// Creatures returns the creatures standing here. Callers must not mutate.
func (t *Tile) Creatures() []Creature { return t.creatures }

// CreatureCount returns the number of creatures on the tile.
func (t *Tile) CreatureCount() int { return len(t.creatures) }

// TopItems returns the always-on-top partition.
func (t *Tile) TopItems() []*Item { return t.topItems }

// DownItems returns the regular item partition in insertion order.
func (t *Tile) DownItems() []*Item { return t.downItems }

// ItemCount returns the number of items including ground.
func (t *Tile) ItemCount() int {
	n := len(t.topItems) + len(t.downItems)
	if t.ground != nil {
		n++
	}
	return n
}

// TopDownItem returns the most recently added regular item, or nil. Merge
// resolution targets it.
func (t *Tile) TopDownItem() *Item {
	if len(t.downItems) == 0 {
		return nil
	}
	return t.downItems[len(t.downItems)-1]
}

// TeleportItem returns the teleporter on this tile, or nil.
func (t *Tile) TeleportItem() *TeleportItem {
	for _, it := range t.topItems {
		if tp := it.Teleport(); tp != nil {
			return tp
		}
	}
	for _, it := range t.downItems {
		if tp := it.Teleport(); tp != nil {
			return tp
		}
	}
	return nil
}

// BlockingCreature returns the first blocking creature, or nil.
func (t *Tile) BlockingCreature(exclude Creature) Creature {
	for _, c := range t.creatures {
		if c != exclude && c.IsBlocking() {
			return c
		}
	}
	return nil
}

// itemLimit returns the per-tile cap honouring house thresholds.
func (t *Tile) itemLimit() int {
	if t.house != nil {
		return defaultHouseTileItemLimit
	}
	return t.maxItems
}

// SetItemLimit overrides the non-house per-tile item cap.
func (t *Tile) SetItemLimit(n int) {
	if n > 0 {
		t.maxItems = n
	}
}

// ── Thing implementation ────────────────────────────────────────────

// Parent is nil: a tile's conceptual parent is the map itself.
func (t *Tile) Parent() Cylinder      { return nil }
func (t *Tile) SetParent(Cylinder)    {}
func (t *Tile) MapPosition() Position { return t.pos }
func (t *Tile) AsItem() *Item         { return nil }
func (t *Tile) AsCreature() Creature  { return nil }

// ── Cylinder implementation ─────────────────────────────────────────

// QueryAdd checks creature blocking rules and per-tile item limits,
// including house placement permission.
func (t *Tile) QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	if c := thing.AsCreature(); c != nil {
		return t.queryAddCreature(c, flags)
	}
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}

	if t.ground == nil && !item.IsGroundTile() {
		return RetNotPossible
	}

	if t.house != nil && actor != nil {
		if p := actor.AsPlayer(); p != nil && !t.house.IsInvited(p) {
			return RetPlayerIsNotInvited
		}
	}

	if item.IsBlocking() && !flags.Has(FlagIgnoreBlockItem) {
		if t.BlockingCreature(nil) != nil {
			return RetNotEnoughRoom
		}
	}

	if !flags.Has(FlagNoLimit) && t.ItemCount() >= t.itemLimit() {
		if !item.IsStackable() {
			return RetNotEnoughRoom
		}
		dest := t.TopDownItem()
		if dest == nil || !dest.CanMergeWith(item) || dest.Count() >= StackMax {
			return RetNotEnoughRoom
		}
	}
	return RetNoError
}

func (t *Tile) queryAddCreature(c Creature, flags CylinderFlags) ReturnValue {
	if t.ground == nil {
		return RetNotPossible
	}
	if c.IsBlocking() && !flags.Has(FlagIgnoreBlockCreature) {
		if t.BlockingCreature(c) != nil {
			return RetNotEnoughRoom
		}
	}
	if t.HasFlag(TileBlockSolid) && !flags.Has(FlagIgnoreBlockItem) {
		return RetNotEnoughRoom
	}
	if flags.Has(FlagPathfinding) && t.HasFlag(TileFloorChange) {
		// The walk search never routes through stairs and holes.
		return RetNotPossible
	}
	if t.house != nil {
		if p := c.AsPlayer(); p != nil && !t.house.IsInvited(p) {
			return RetPlayerIsNotInvited
		}
	}
	return RetNoError
}

// QueryMaxCount reports how many units fit, counting a merge with the top
// regular item.
func (t *Tile) QueryMaxCount(index int, thing Thing, count uint32, flags CylinderFlags) (ReturnValue, uint32) {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible, 0
	}
	if flags.Has(FlagNoLimit) || !item.IsStackable() {
		return RetNoError, count
	}
	room := uint32(StackMax)
	if dest := t.TopDownItem(); dest != nil && dest.CanMergeWith(item) {
		room = StackMax - dest.Count()
		if t.ItemCount() < t.itemLimit() {
			// A fresh stack can absorb the overflow.
			room += StackMax
		}
		if room == 0 {
			return RetNotEnoughRoom, 0
		}
	}
	if room < count {
		return RetNoError, room
	}
	return RetNoError, count
}

// QueryRemove rejects absent things and pinned items.
func (t *Tile) QueryRemove(thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	if thing.AsCreature() != nil {
		if t.ThingIndex(thing) < 0 {
			return RetNotPossible
		}
		return RetNoError
	}
	item := thing.AsItem()
	if item == nil || t.ThingIndex(item) < 0 {
		return RetNotPossible
	}
	if count == 0 || (item.IsStackable() && count > item.Count()) {
		return RetNotPossible
	}
	if !item.IsMoveable() && !flags.Has(FlagIgnoreBlockItem) {
		return RetNotMoveable
	}
	return RetNoError
}

// QueryDestination redirects through floor changes and teleporters when the
// tile is attached to a map; otherwise the tile lands things on itself with
// the top regular item as the merge candidate.
func (t *Tile) QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item) {
	*index = IndexWherever
	if t.m != nil {
		if dest := t.m.tileDestination(t, thing); dest != nil && dest != t {
			return dest, dest.TopDownItem()
		}
	}
	return t, t.TopDownItem()
}

// floorChangeKind returns the stair/hole direction carried by the tile's
// items, or FloorChangeNone.
func (t *Tile) floorChangeKind() data.FloorChange {
	if t.ground != nil {
		if k := t.ground.Type().FloorChangeKind; k != data.FloorChangeNone {
			return k
		}
	}
	for _, it := range t.topItems {
		if k := it.Type().FloorChangeKind; k != data.FloorChangeNone {
			return k
		}
	}
	for _, it := range t.downItems {
		if k := it.Type().FloorChangeKind; k != data.FloorChangeNone {
			return k
		}
	}
	return data.FloorChangeNone
}

// AddThing places a thing in its partition: ground, top order slot, down
// list, or the creature list.
func (t *Tile) AddThing(index int, thing Thing) {
	if c := thing.AsCreature(); c != nil {
		c.setTile(t)
		t.creatures = append(t.creatures, c)
		return
	}
	item := thing.AsItem()
	if item == nil {
		return
	}
	item.SetParent(t)
	switch {
	case item.IsGroundTile():
		if t.ground != nil {
			t.ground.SetParent(nil)
		}
		t.ground = item
	case item.IsAlwaysOnTop():
		// Keep the top partition sorted by top order.
		at := len(t.topItems)
		for i, existing := range t.topItems {
			if existing.TopOrder() > item.TopOrder() {
				at = i
				break
			}
		}
		t.topItems = append(t.topItems, nil)
		copy(t.topItems[at+1:], t.topItems[at:])
		t.topItems[at] = item
	default:
		t.downItems = append(t.downItems, item)
	}
	t.recomputeFlags()
	t.notifyChanged()
}

// UpdateThing rewrites an item's count in place.
func (t *Tile) UpdateThing(thing Thing, itemID uint16, count uint32) {
	item := thing.AsItem()
	if item == nil || t.ThingIndex(item) < 0 {
		return
	}
	if item.IsStackable() {
		item.SetCount(count)
	} else {
		item.SetSubType(uint16(count))
	}
	t.notifyChanged()
}

// ReplaceThing swaps the item at a stack index (decay transforms).
func (t *Tile) ReplaceThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil {
		return
	}
	old := t.ThingByIndex(index)
	oldItem, _ := old.(*Item)
	if oldItem == nil {
		return
	}
	item.SetParent(t)
	oldItem.SetParent(nil)
	if t.ground == oldItem {
		t.ground = item
	} else {
		for i, it := range t.topItems {
			if it == oldItem {
				t.topItems[i] = item
			}
		}
		for i, it := range t.downItems {
			if it == oldItem {
				t.downItems[i] = item
			}
		}
	}
	t.recomputeFlags()
	t.notifyChanged()
}

// RemoveThing unlinks a creature, or removes count units of an item,
// fully unlinking at zero.
func (t *Tile) RemoveThing(thing Thing, count uint32) {
	if c := thing.AsCreature(); c != nil {
		for i, existing := range t.creatures {
			if existing == c {
				t.creatures = append(t.creatures[:i], t.creatures[i+1:]...)
				c.setTile(nil)
				return
			}
		}
		return
	}
	item := thing.AsItem()
	if item == nil {
		return
	}
	if item.IsStackable() && count < item.Count() {
		item.SetCount(item.Count() - count)
		t.notifyChanged()
		return
	}
	switch {
	case t.ground == item:
		t.ground = nil
		item.SetParent(nil)
	default:
		for i, it := range t.topItems {
			if it == item {
				t.topItems = append(t.topItems[:i], t.topItems[i+1:]...)
				item.SetParent(nil)
				break
			}
		}
		for i, it := range t.downItems {
			if it == item {
				t.downItems = append(t.downItems[:i], t.downItems[i+1:]...)
				item.SetParent(nil)
				break
			}
		}
	}
	t.recomputeFlags()
	t.notifyChanged()
}

// ThingIndex returns the protocol stack index of a thing, or -1. Order:
// ground, top items, creatures, down items.
func (t *Tile) ThingIndex(thing Thing) int {
	item := thing.AsItem()
	c := thing.AsCreature()
	n := 0
	if t.ground != nil {
		if t.ground == item {
			return 0
		}
		n++
	}
	for _, it := range t.topItems {
		if item != nil && it == item {
			return n
		}
		n++
	}
	for _, existing := range t.creatures {
		if c != nil && existing == c {
			return n
		}
		n++
	}
	for _, it := range t.downItems {
		if item != nil && it == item {
			return n
		}
		n++
	}
	return -1
}

func (t *Tile) topItemStart() int {
	if t.ground != nil {
		return 1
	}
	return 0
}

// ThingByIndex returns the thing at a protocol stack index, or nil.
func (t *Tile) ThingByIndex(index int) Thing {
	if index < 0 {
		return nil
	}
	if t.ground != nil {
		if index == 0 {
			return t.ground
		}
		index--
	}
	if index < len(t.topItems) {
		return t.topItems[index]
	}
	index -= len(t.topItems)
	if index < len(t.creatures) {
		return t.creatures[index]
	}
	index -= len(t.creatures)
	if index < len(t.downItems) {
		return t.downItems[index]
	}
	return nil
}

// ThingCount returns the total protocol stack size.
func (t *Tile) ThingCount() int {
	return t.topItemStart() + len(t.topItems) + len(t.creatures) + len(t.downItems)
}

// ItemTypeCount recursively counts units of an item type on the tile.
func (t *Tile) ItemTypeCount(itemID uint16, subType int) uint32 {
	var total uint32
	countItem := func(it *Item) {
		if it.ID() == itemID && (subType < 0 || int(it.SubType()) == subType) {
			total += it.Count()
		}
		if sub := it.Container(); sub != nil {
			total += sub.ItemTypeCount(itemID, subType)
		}
	}
	if t.ground != nil {
		countItem(t.ground)
	}
	for _, it := range t.topItems {
		countItem(it)
	}
	for _, it := range t.downItems {
		countItem(it)
	}
	return total
}

// PostAddNotify ends the chain: tiles answer to the map observer only.
func (t *Tile) PostAddNotify(thing Thing, oldParent Cylinder, index int) {
	t.notifyChanged()
}

// PostRemoveNotify ends the chain.
func (t *Tile) PostRemoveNotify(thing Thing, newParent Cylinder, index int, completeRemoval bool) {
	t.notifyChanged()
}

// InternalAddThing places a thing without checks or notifications.
func (t *Tile) InternalAddThing(index int, thing Thing) {
	if c := thing.AsCreature(); c != nil {
		c.setTile(t)
		t.creatures = append(t.creatures, c)
		return
	}
	item := thing.AsItem()
	if item == nil {
		return
	}
	item.SetParent(t)
	switch {
	case item.IsGroundTile():
		t.ground = item
	case item.IsAlwaysOnTop():
		t.topItems = append(t.topItems, item)
	default:
		t.downItems = append(t.downItems, item)
	}
	t.recomputeFlags()
}

func (t *Tile) notifyChanged() {
	if t.observer != nil {
		t.observer.TileChanged(t)
	}
}
