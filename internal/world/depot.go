package world

// DepotLocker is a container bound to a town and a player, with a soft cap
// measured by recursive item count rather than slot count.
type DepotLocker struct {
	Container
	townID        uint32
	depotOwner    uint32 // player guid, 0 while unbound
	maxDepotItems int
}

// TownID returns the town this locker belongs to.
func (d *DepotLocker) TownID() uint32 { return d.townID }

// SetTownID binds the locker to a town.
func (d *DepotLocker) SetTownID(id uint32) { d.townID = id }

// OwnerGUID returns the owning player's guid.
func (d *DepotLocker) OwnerGUID() uint32 { return d.depotOwner }

// SetOwnerGUID binds the locker to a player.
func (d *DepotLocker) SetOwnerGUID(guid uint32) { d.depotOwner = guid }

// MaxDepotItems returns the recursive item cap (0 = unlimited).
func (d *DepotLocker) MaxDepotItems() int { return d.maxDepotItems }

// SetMaxDepotItems sets the recursive item cap.
func (d *DepotLocker) SetMaxDepotItems(n int) { d.maxDepotItems = n }

// QueryAdd enforces the recursive count cap before delegating to the
// container rules. FlagNoLimit bypasses the cap for system-initiated moves
// (mail delivery) that must succeed.
func (d *DepotLocker) QueryAdd(index int, thing Thing, count uint32, flags CylinderFlags, actor Creature) ReturnValue {
	item := thing.AsItem()
	if item == nil {
		return RetNotPossible
	}
	if !flags.Has(FlagNoLimit) && d.maxDepotItems > 0 {
		adding := 1
		if sub := item.Container(); sub != nil {
			adding += sub.TotalItemCount()
		}
		if d.TotalItemCount()+adding > d.maxDepotItems {
			return RetDepotIsFull
		}
	}
	return d.Container.QueryAdd(index, thing, count, flags, actor)
}

// QueryDestination keeps deep adds inside the locker: a depot placed inside
// a depot still resolves into the innermost container chain.
func (d *DepotLocker) QueryDestination(index *int, thing Thing, flags CylinderFlags) (Cylinder, *Item) {
	cyl, destItem := d.Container.QueryDestination(index, thing, flags)
	if cyl == &d.Container {
		return d, destItem
	}
	return cyl, destItem
}
