package world

// Container is an item that owns an ordered list of child items. Contents
// iterate in insertion order; that order is part of the client protocol.
type Container struct {
	Item
	capacity int
	items    []*Item
}

// Capacity returns the slot capacity.
func (c *Container) Capacity() int { return c.capacity }

// Size returns the number of occupied slots.
func (c *Container) Size() int { return len(c.items) }

// IsFull reports whether every slot is occupied.
func (c *Container) IsFull() bool { return len(c.items) >= c.capacity }

// Items returns the child list. Callers must not mutate it.
func (c *Container) Items() []*Item { return c.items }

// ItemByIndex returns the child at index, or nil.
func (c *Container) ItemByIndex(index int) *Item {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	return c.items[index]
}

// TotalItemCount returns the recursive item count including nested
// containers, used for depot soft caps.
func (c *Container) TotalItemCount() int {
	n := len(c.items)
	for _, child := range c.items {
		if sub := child.Container(); sub != nil {
			n += sub.TotalItemCount()
		}
	}
	return n
}

// HoldingWeight returns the recursive weight of the container plus its
// contents.
func (c *Container) HoldingWeight() uint32 {
	w := c.Item.Weight()
	for _, child := range c.items {
		if sub := child.Container(); sub != nil {
			w += sub.HoldingWeight()
		} else {
			w += child.Weight()
		}
	}
	return w
}

// topOwner walks to the outermost cylinder holding this container.
func (c *Container) topOwner() Cylinder {
	var top Cylinder = c
	for top.Parent() != nil {
		top = top.Parent()
	}
	return top
}

// ── Cylinder implementation ─────────────────────────────────────────

// QueryAdd checks slot room, pickupability and containment cycles. The
// weight check belongs to the owning player and is consulted through the
// parent chain with FlagChildIsOwner.
func (c *Container) QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}
	if item == &c.Item {
		return RetThisIsImpossible
	}
	if !item.Type().Pickupable {
		return RetNotPossible
	}
	// A container can never be placed inside itself or its own contents.
	if sub := item.Container(); sub != nil && parentChainContains(c, &sub.Item) {
		return RetThisIsImpossible
	}

	if !flags.Has(FlagNoLimit) && !c.hasRoomFor(index, item) {
		return RetContainerNotEnoughRoom
	}

	// Let the owning player veto on weight.
	if p, ok := c.topOwner().(*Player); ok && !flags.Has(FlagNoLimit) && !flags.Has(FlagChildIsOwner) {
		if !p.hasCapacityFor(item, count) {
			return RetNotEnoughCapacity
		}
	}
	return RetNoError
}

// hasRoomFor reports whether item fits at index, counting stack merges.
func (c *Container) hasRoomFor(index int, item *Item) bool {
	if len(c.items) < c.capacity {
		return true
	}
	if !item.IsStackable() {
		return false
	}
	if index >= 0 && index < len(c.items) {
		dest := c.items[index]
		return dest.CanMergeWith(item) && dest.Count() < StackMax
	}
	for _, dest := range c.items {
		if dest.CanMergeWith(item) && dest.Count() < StackMax {
			return true
		}
	}
	return false
}

// QueryMaxCount computes how many units could land, summing free space in
// equal stacks plus empty slots.
func (c *Container) QueryMaxCount(index int, thing Thing, count uint32, flags CylinderFlags) (ReturnValue, uint32) {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible, 0
	}
	if flags.Has(FlagNoLimit) {
		return RetNoError, count
	}

	freeSlots := c.capacity - len(c.items)
	if freeSlots < 0 {
		freeSlots = 0
	}

	if !item.IsStackable() {
		if freeSlots == 0 {
			return RetContainerNotEnoughRoom, 0
		}
		return RetNoError, count
	}

	var room uint32
	if index >= 0 && index < len(c.items) {
		if dest := c.items[index]; dest.CanMergeWith(item) && dest.Count() < StackMax {
			room = StackMax - dest.Count()
		}
		room += uint32(freeSlots) * StackMax
	} else {
		room = uint32(freeSlots) * StackMax
		for _, dest := range c.items {
			if dest.CanMergeWith(item) && dest.Count() < StackMax {
				room += StackMax - dest.Count()
			}
		}
	}
	if room == 0 {
		return RetContainerNotEnoughRoom, 0
	}
	if room < count {
		return RetNoError, room
	}
	return RetNoError, count
}

// QueryRemove rejects non-moveable items unless overridden by flags.
func (c *Container) QueryRemove(thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	if c.ThingIndex(thing) < 0 {
		return RetNotPossible
	}
	item := thing.AsItem()
	if item == nil {
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

// QueryDestination redirects deep adds into child containers and resolves
// merge targets for stackables.
func (c *Container) QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item) {
	item := thing.AsItem()
	if item == nil {
		*index = IndexWherever
		return c, nil
	}

	if *index >= 0 && *index < len(c.items) {
		dest := c.items[*index]
		// Dropping onto a container inside this container descends.
		if sub := dest.Container(); sub != nil && &sub.Item != item {
			*index = IndexWherever
			return sub.QueryDestination(index, thing, flags)
		}
		return c, dest
	}

	*index = IndexWherever
	if item.IsStackable() {
		for i, dest := range c.items {
			if dest != item && dest.CanMergeWith(item) && dest.Count() < StackMax {
				*index = i
				return c, dest
			}
		}
	}
	return c, nil
}

// AddThing appends the item in insertion order.
func (c *Container) AddThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil {
		return
	}
	item.SetParent(c)
	if index >= 0 && index < len(c.items) {
		c.items = append(c.items, nil)
		copy(c.items[index+1:], c.items[index:])
		c.items[index] = item
		return
	}
	c.items = append(c.items, item)
}

// UpdateThing rewrites an in-place item's count (stack merges and splits).
func (c *Container) UpdateThing(thing Thing, itemID uint16, count uint32) {
	item := thing.AsItem()
	if item == nil || c.ThingIndex(item) < 0 {
		return
	}
	if item.IsStackable() {
		item.SetCount(count)
	} else {
		item.SetSubType(uint16(count))
	}
}

// ReplaceThing swaps the item at index for a new one.
func (c *Container) ReplaceThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil || index < 0 || index >= len(c.items) {
		return
	}
	old := c.items[index]
	old.SetParent(nil)
	item.SetParent(c)
	c.items[index] = item
}

// RemoveThing removes count units, freeing the slot at zero.
func (c *Container) RemoveThing(thing Thing, count uint32) {
	item := thing.AsItem()
	if item == nil {
		return
	}
	idx := c.ThingIndex(item)
	if idx < 0 {
		return
	}
	if item.IsStackable() && count < item.Count() {
		item.SetCount(item.Count() - count)
		return
	}
	item.SetParent(nil)
	c.items = append(c.items[:idx], c.items[idx+1:]...)
}

// ThingIndex returns the slot index of thing, or -1.
func (c *Container) ThingIndex(thing Thing) int {
	item := thing.AsItem()
	if item == nil {
		return -1
	}
	for i, child := range c.items {
		if child == item {
			return i
		}
	}
	return -1
}

// ThingByIndex returns the thing at a slot index, or nil.
func (c *Container) ThingByIndex(index int) Thing {
	it := c.ItemByIndex(index)
	if it == nil {
		return nil
	}
	return it
}

// ThingCount returns the first-level slot count.
func (c *Container) ThingCount() int { return len(c.items) }

// ItemTypeCount recursively counts units of an item type.
func (c *Container) ItemTypeCount(itemID uint16, subType int) uint32 {
	var total uint32
	for _, child := range c.items {
		if child.ID() == itemID && (subType < 0 || int(child.SubType()) == subType) {
			total += child.Count()
		}
		if sub := child.Container(); sub != nil {
			total += sub.ItemTypeCount(itemID, subType)
		}
	}
	return total
}

// PostAddNotify propagates up the parent chain so the owning player sees
// weight/UI changes.
func (c *Container) PostAddNotify(thing Thing, oldParent Cylinder, index int) {
	if c.parent != nil {
		c.parent.PostAddNotify(thing, oldParent, index)
	}
}

// PostRemoveNotify propagates up the parent chain.
func (c *Container) PostRemoveNotify(thing Thing, newParent Cylinder, index int, completeRemoval bool) {
	if c.parent != nil {
		c.parent.PostRemoveNotify(thing, newParent, index, completeRemoval)
	}
}

// InternalAddThing places an item without checks (load paths).
func (c *Container) InternalAddThing(index int, thing Thing) {
	item := thing.AsItem()
	if item == nil {
		return
	}
	item.SetParent(c)
	c.items = append(c.items, item)
}
