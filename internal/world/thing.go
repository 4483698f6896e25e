package world

// Index value passed to cylinder queries meaning "any free slot".
const IndexWherever = -1

// Thing is anything that can sit inside a cylinder: items and creatures.
// The parent pointer is a non-owning back-reference; ownership always runs
// the other way (cylinder owns its contents).
type Thing interface {
	// Parent returns the cylinder currently holding the thing, or nil.
	Parent() Cylinder
	SetParent(Cylinder)

	// MapPosition resolves the thing's map coordinate through its parent
	// chain. Things held in inventories/containers report the holder's
	// position; detached things report the NoPos sentinel.
	MapPosition() Position

	// AsItem returns the thing as an item, or nil.
	AsItem() *Item
	// AsCreature returns the thing as a creature, or nil.
	AsCreature() Creature
}

// Cylinder is the polymorphic container capability implemented by Tile,
// Container, DepotLocker, Mailbox and Player inventory. The move engine is
// written entirely in terms of this contract.
type Cylinder interface {
	Thing

	// QueryAdd answers whether thing may be placed at index.
	QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue

	// QueryMaxCount answers how many units of thing could actually land at
	// index, to support partial-fill moves of stackables.
	QueryMaxCount(index int, thing Thing, count uint32, flags CylinderFlags) (ReturnValue, uint32)

	// QueryRemove answers whether count units of thing may be taken out.
	QueryRemove(thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue

	// QueryDestination resolves where a deep add actually lands. It may
	// redirect to a different cylinder entirely; destItem is the item
	// already occupying the resolved slot, if any. The index is passed by
	// pointer because redirection rewrites it.
	QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item)

	// Mutation primitives. These perform no legality checks; callers must
	// have passed the query phase first.
	AddThing(index int, thing Thing)
	UpdateThing(thing Thing, itemID uint16, count uint32)
	ReplaceThing(index int, thing Thing)
	RemoveThing(thing Thing, count uint32)

	// ThingIndex returns the slot index of thing, or -1.
	ThingIndex(thing Thing) int
	// ThingByIndex returns the thing at a slot index, or nil.
	ThingByIndex(index int) Thing
	// ThingCount returns the number of first-level slots in use.
	ThingCount() int
	// ItemTypeCount recursively counts units of an item type. A negative
	// subType matches any subtype.
	ItemTypeCount(itemID uint16, subType int) uint32

	// Post-mutation notification hooks, propagated up the parent chain so
	// listeners (weight recalculation, UI refresh, trade checks) observe
	// the change without the mutator knowing them.
	PostAddNotify(thing Thing, oldParent Cylinder, index int)
	PostRemoveNotify(thing Thing, newParent Cylinder, index int, completeRemoval bool)

	// InternalAddThing places a thing without checks or notifications.
	// Used during map/depot load and by the engine's internal bookkeeping.
	InternalAddThing(index int, thing Thing)
}

// parentChainContains walks from cylinder up through its parents and reports
// whether needle appears anywhere in the chain. Used for trade-safety and
// cycle checks (a container can never be moved into itself). Chain elements
// are cylinder variants while the needle is usually a bare *Item, so the
// comparison goes through the item identity, not the interface value.
func parentChainContains(cylinder Cylinder, needle Thing) bool {
	needleItem := needle.AsItem()
	for c := cylinder; c != nil; c = c.Parent() {
		if Thing(c) == needle {
			return true
		}
		if needleItem != nil && c.AsItem() == needleItem {
			return true
		}
	}
	return false
}
