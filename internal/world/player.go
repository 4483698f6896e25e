package world

import "github.com/otgo/server/internal/data"

// Inventory slot indexes. Slot 0 is unused so indexes match the client.
const (
	SlotFirst    = 1
	SlotHead     = 1
	SlotNecklace = 2
	SlotBackpack = 3
	SlotArmor    = 4
	SlotRight    = 5
	SlotLeft     = 6
	SlotLegs     = 7
	SlotFeet     = 8
	SlotRing     = 9
	SlotAmmo     = 10
	SlotLast     = 10
)

// slotBit maps a slot index to the template bitmask bit it requires.
var slotBit = [SlotLast + 1]uint32{
	SlotHead:     data.SlotPosHead,
	SlotNecklace: data.SlotPosNecklace,
	SlotBackpack: data.SlotPosBackpack,
	SlotArmor:    data.SlotPosArmor,
	SlotRight:    data.SlotPosRight,
	SlotLeft:     data.SlotPosLeft,
	SlotLegs:     data.SlotPosLegs,
	SlotFeet:     data.SlotPosFeet,
	SlotRing:     data.SlotPosRing,
	SlotAmmo:     data.SlotPosAmmo,
}

// equipHook is the scripted equip pre-check boundary. A nil hook permits.
type equipHook interface {
	OnEquip(p *Player, item *Item, slot int) ReturnValue
	OnDeEquip(p *Player, item *Item, slot int) ReturnValue
}

// Player is a creature whose personal inventory is a cylinder of fixed
// equipment slots. All rule checks run through the same five-operation
// contract the move engine uses everywhere else.
type Player struct {
	creatureBase
	guid     uint32
	level    int
	capacity uint32 // carry capacity, hundredths of an ounce
	townID   uint32 // home town, the default mail destination

	inventory [SlotLast + 1]*Item
	depots    map[uint32]*DepotLocker

	hooks    equipHook
	listener inventoryListener
	dirty    bool
}

// inventoryListener observes committed inventory mutations (weight/UI
// refresh, trade cancellation). The game facade installs itself here.
type inventoryListener interface {
	InventoryChanged(p *Player, item *Item, slot int, added bool)
}

// NewPlayer creates a player with the given guid, id and name.
func NewPlayer(id, guid uint32, name string) *Player {
	return &Player{
		creatureBase: creatureBase{id: id, name: name, dir: South, health: 150, maxHealth: 150},
		guid:         guid,
		level:        1,
		capacity:     40000,
		depots:       make(map[uint32]*DepotLocker),
	}
}

// GUID returns the persistent player id.
func (p *Player) GUID() uint32 { return p.guid }

// Level returns the experience level.
func (p *Player) Level() int { return p.level }

// SetLevel sets the experience level.
func (p *Player) SetLevel(l int) { p.level = l }

// Capacity returns the total carry capacity.
func (p *Player) Capacity() uint32 { return p.capacity }

// SetCapacity sets the total carry capacity.
func (p *Player) SetCapacity(c uint32) { p.capacity = c }

// TownID returns the home town.
func (p *Player) TownID() uint32 { return p.townID }

// SetTownID sets the home town.
func (p *Player) SetTownID(id uint32) { p.townID = id }

// Dirty reports whether persisted state changed since the last save.
func (p *Player) Dirty() bool { return p.dirty }

// MarkDirty flags the player for the next batch save.
func (p *Player) MarkDirty() { p.dirty = true }

// ClearDirty resets the flag after a successful save.
func (p *Player) ClearDirty() { p.dirty = false }

// SetEquipHook installs the scripted equip pre-check.
func (p *Player) SetEquipHook(h equipHook) { p.hooks = h }

// SetInventoryListener installs the post-mutation observer.
func (p *Player) SetInventoryListener(l inventoryListener) { p.listener = l }

func (p *Player) AsCreature() Creature { return p }
func (p *Player) AsPlayer() *Player    { return p }
func (p *Player) AsMonster() *Monster  { return nil }
func (p *Player) AsNpc() *Npc          { return nil }

func (p *Player) IsBlocking() bool { return true }
func (p *Player) IsPushable() bool { return false }

// InventoryItem returns the item in a slot, or nil.
func (p *Player) InventoryItem(slot int) *Item {
	if slot < SlotFirst || slot > SlotLast {
		return nil
	}
	return p.inventory[slot]
}

// Backpack returns the container in the backpack slot, or nil.
func (p *Player) Backpack() *Container {
	if it := p.inventory[SlotBackpack]; it != nil {
		return it.Container()
	}
	return nil
}

// Depot returns the player's locker for a town, creating it on first use.
func (p *Player) Depot(townID uint32, factory *ItemFactory, lockerTypeID uint16, maxItems int) *DepotLocker {
	if d, ok := p.depots[townID]; ok {
		return d
	}
	item := factory.New(lockerTypeID, 0)
	if item == nil {
		return nil
	}
	d := item.Depot()
	if d == nil {
		return nil
	}
	d.SetTownID(townID)
	d.SetOwnerGUID(p.guid)
	d.SetMaxDepotItems(maxItems)
	p.depots[townID] = d
	return d
}

// Depots returns the loaded lockers keyed by town.
func (p *Player) Depots() map[uint32]*DepotLocker { return p.depots }

// AttachDepot installs a locker loaded from persistence.
func (p *Player) AttachDepot(d *DepotLocker) {
	d.SetOwnerGUID(p.guid)
	p.depots[d.TownID()] = d
}

// InventoryWeight returns the recursive weight of everything carried.
func (p *Player) InventoryWeight() uint32 {
	var w uint32
	for slot := SlotFirst; slot <= SlotLast; slot++ {
		if it := p.inventory[slot]; it != nil {
			if c := it.Container(); c != nil {
				w += c.HoldingWeight()
			} else {
				w += it.Weight()
			}
		}
	}
	return w
}

// FreeCapacity returns the remaining carry capacity.
func (p *Player) FreeCapacity() uint32 {
	used := p.InventoryWeight()
	if used >= p.capacity {
		return 0
	}
	return p.capacity - used
}

// hasCapacityFor reports whether count units of item fit the weight cap.
// Things already carried by this player weigh nothing extra.
func (p *Player) hasCapacityFor(item *Item, count uint32) bool {
	if top := topParent(item); top == Cylinder(p) {
		return true
	}
	unit := item.Type().Weight
	var w uint32
	if c := item.Container(); c != nil {
		w = c.HoldingWeight()
	} else {
		w = unit * count
	}
	return w <= p.FreeCapacity()
}

func topParent(t Thing) Cylinder {
	c := t.Parent()
	if c == nil {
		return nil
	}
	for c.Parent() != nil {
		c = c.Parent()
	}
	return c
}

// ── Cylinder implementation ─────────────────────────────────────────

// QueryAdd enforces slot bitmask matching, the two-handed mutual exclusion
// rules, the weight cap and the scripted equip pre-check.
func (p *Player) QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}
	if index == IndexWherever {
		// Deep adds resolve a real slot through QueryDestination first.
		if flags.Has(FlagNoLimit) {
			return RetNoError
		}
		return RetNotPossible
	}
	if index < SlotFirst || index > SlotLast {
		return RetNotPossible
	}
	if !item.Type().Pickupable {
		return RetCannotBeDressed
	}

	if ret := p.querySlotLegality(index, item); !ret.OK() {
		return ret
	}

	if !flags.Has(FlagNoLimit) && !flags.Has(FlagChildIsOwner) && actor == Creature(p) {
		if !p.hasCapacityFor(item, count) {
			return RetNotEnoughCapacity
		}
	}

	if p.hooks != nil {
		if ret := p.hooks.OnEquip(p, item, index); !ret.OK() {
			return ret
		}
	}

	// Occupied by something that cannot merge: the engine must arrange an
	// exchange before this add can land.
	if dest := p.inventory[index]; dest != nil && dest != item {
		if !dest.IsStackable() || dest.ID() != item.ID() {
			return RetNeedExchange
		}
	}
	return RetNoError
}

// querySlotLegality checks the slot bitmask and hand exclusion rules.
func (p *Player) querySlotLegality(slot int, item *Item) ReturnValue {
	pos := item.Type().SlotPosition
	if slotBit[slot]&pos == 0 {
		return RetCannotBeDressed
	}

	switch slot {
	case SlotRight, SlotLeft:
		other := SlotLeft
		if slot == SlotLeft {
			other = SlotRight
		}
		otherItem := p.inventory[other]

		if pos&(data.SlotPosTwoHand) != 0 {
			if otherItem != nil && otherItem != item {
				return RetBothHandsNeedToBeFree
			}
			return RetNoError
		}
		if otherItem == nil || otherItem == item {
			return RetNoError
		}
		if otherItem.Type().SlotPosition&data.SlotPosTwoHand != 0 {
			return RetDropTwoHandedItem
		}
		// One weapon per pair of hands, unless the other hand holds a
		// shield or ammunition.
		it := item.Type()
		ot := otherItem.Type()
		if it.WeaponType == data.WeaponShield && ot.WeaponType == data.WeaponShield {
			return RetCanOnlyUseOneShield
		}
		if isWeapon(it.WeaponType) && isWeapon(ot.WeaponType) {
			return RetCanOnlyUseOneWeapon
		}
	case SlotBackpack:
		if item.Container() == nil && item.Type().SlotPosition&data.SlotPosBackpack == 0 {
			return RetCannotBeDressed
		}
	}
	return RetNoError
}

func isWeapon(w data.WeaponType) bool {
	switch w {
	case data.WeaponNone, data.WeaponShield, data.WeaponAmmo:
		return false
	}
	return true
}

// QueryMaxCount reports how many units fit the target slot.
func (p *Player) QueryMaxCount(index int, thing Thing, count uint32, flags CylinderFlags) (ReturnValue, uint32) {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible, 0
	}
	if flags.Has(FlagNoLimit) || index == IndexWherever {
		return RetNoError, count
	}
	if index < SlotFirst || index > SlotLast {
		return RetNotPossible, 0
	}
	dest := p.inventory[index]
	if dest == nil {
		return RetNoError, count
	}
	if item.IsStackable() && dest.CanMergeWith(item) {
		room := uint32(StackMax) - dest.Count()
		if room == 0 {
			return RetNotEnoughRoom, 0
		}
		if room < count {
			return RetNoError, room
		}
		return RetNoError, count
	}
	return RetNotEnoughRoom, 0
}

// QueryRemove rejects non-moveable and absent items.
func (p *Player) QueryRemove(thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}
	slot := p.ThingIndex(item)
	if slot < 0 {
		return RetNotPossible
	}
	if count == 0 || (item.IsStackable() && count > item.Count()) {
		return RetNotPossible
	}
	if !item.IsMoveable() && !flags.Has(FlagIgnoreBlockItem) {
		return RetNotMoveable
	}
	if p.hooks != nil {
		if ret := p.hooks.OnDeEquip(p, item, slot); !ret.OK() {
			return ret
		}
	}
	return RetNoError
}

// QueryDestination implements the auto-equip redirect: an unspecified index
// tries empty matching slots, then descends into the backpack.
func (p *Player) QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item) {
	item := thing.AsItem()
	if item == nil {
		return p, nil
	}
	if *index >= SlotFirst && *index <= SlotLast {
		dest := p.inventory[*index]
		if dest != nil {
			if sub := dest.Container(); sub != nil && &sub.Item != item {
				*index = IndexWherever
				return sub.QueryDestination(index, thing, flags)
			}
		}
		return p, dest
	}

	pos := item.Type().SlotPosition
	for slot := SlotFirst; slot <= SlotLast; slot++ {
		if slot == SlotBackpack || slotBit[slot]&pos == 0 {
			continue
		}
		if p.inventory[slot] == nil && p.querySlotLegality(slot, item).OK() {
			*index = slot
			return p, nil
		}
	}
	if bp := p.Backpack(); bp != nil && &bp.Item != item {
		*index = IndexWherever
		return bp.QueryDestination(index, thing, flags)
	}
	*index = IndexWherever
	return p, nil
}

// AddThing equips the item into a slot.
func (p *Player) AddThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil || index < SlotFirst || index > SlotLast {
		return
	}
	item.SetParent(p)
	p.inventory[index] = item
}

// UpdateThing rewrites a slot item's count.
func (p *Player) UpdateThing(thing Thing, itemID uint16, count uint32) {
	item := thing.AsItem()
	if item == nil || p.ThingIndex(item) < 0 {
		return
	}
	if item.IsStackable() {
		item.SetCount(count)
	} else {
		item.SetSubType(uint16(count))
	}
}

// ReplaceThing swaps a slot's item for a new one.
func (p *Player) ReplaceThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil || index < SlotFirst || index > SlotLast {
		return
	}
	if old := p.inventory[index]; old != nil {
		old.SetParent(nil)
	}
	item.SetParent(p)
	p.inventory[index] = item
}

// RemoveThing takes count units out of a slot, clearing it at zero.
func (p *Player) RemoveThing(thing Thing, count uint32) {
	item := thing.AsItem()
	if item == nil {
		return
	}
	slot := p.ThingIndex(item)
	if slot < 0 {
		return
	}
	if item.IsStackable() && count < item.Count() {
		item.SetCount(item.Count() - count)
		return
	}
	item.SetParent(nil)
	p.inventory[slot] = nil
}

// ThingIndex returns the slot holding thing, or -1.
func (p *Player) ThingIndex(thing Thing) int {
	item := thing.AsItem()
	if item == nil {
		return -1
	}
	for slot := SlotFirst; slot <= SlotLast; slot++ {
		if p.inventory[slot] == item {
			return slot
		}
	}
	return -1
}

// ThingByIndex returns the item in a slot, or nil.
func (p *Player) ThingByIndex(index int) Thing {
	it := p.InventoryItem(index)
	if it == nil {
		return nil
	}
	return it
}

// ThingCount returns the number of occupied slots.
func (p *Player) ThingCount() int {
	n := 0
	for slot := SlotFirst; slot <= SlotLast; slot++ {
		if p.inventory[slot] != nil {
			n++
		}
	}
	return n
}

// ItemTypeCount recursively counts units of an item type across all slots.
func (p *Player) ItemTypeCount(itemID uint16, subType int) uint32 {
	var total uint32
	for slot := SlotFirst; slot <= SlotLast; slot++ {
		it := p.inventory[slot]
		if it == nil {
			continue
		}
		if it.ID() == itemID && (subType < 0 || int(it.SubType()) == subType) {
			total += it.Count()
		}
		if sub := it.Container(); sub != nil {
			total += sub.ItemTypeCount(itemID, subType)
		}
	}
	return total
}

// PostAddNotify informs the listener of a committed add.
func (p *Player) PostAddNotify(thing Thing, oldParent Cylinder, index int) {
	if p.listener != nil {
		if item := thing.AsItem(); item != nil {
			p.listener.InventoryChanged(p, item, index, true)
		}
	}
}

// PostRemoveNotify informs the listener of a committed removal.
func (p *Player) PostRemoveNotify(thing Thing, newParent Cylinder, index int, completeRemoval bool) {
	if p.listener != nil {
		if item := thing.AsItem(); item != nil {
			p.listener.InventoryChanged(p, item, index, false)
		}
	}
}

// InternalAddThing places an item without checks (load paths).
func (p *Player) InternalAddThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil || index < SlotFirst || index > SlotLast {
		return
	}
	item.SetParent(p)
	p.inventory[index] = item
}
