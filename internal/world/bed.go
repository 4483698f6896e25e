package world

// BedItem is one half of a two-tile bed. Both halves transform together
// between the free and occupied templates; the sleeper is tracked on the
// half carrying the pillow (the one with a transform pair).
type BedItem struct {
	Item
	house     *House
	sleeperID uint32
	partner   *BedItem
}

// House returns the house the bed stands in, or nil.
func (b *BedItem) House() *House { return b.house }

// SetHouse links the bed to its house.
func (b *BedItem) SetHouse(h *House) { b.house = h }

// Partner returns the other half of the bed, or nil while unlinked.
func (b *BedItem) Partner() *BedItem { return b.partner }

// LinkPartner wires both halves to each other.
func (b *BedItem) LinkPartner(other *BedItem) {
	b.partner = other
	if other != nil {
		other.partner = b
	}
}

// SleeperGUID returns the guid of the sleeping player, 0 when free.
func (b *BedItem) SleeperGUID() uint32 { return b.sleeperID }

// IsOccupied reports whether someone sleeps here.
func (b *BedItem) IsOccupied() bool { return b.sleeperID != 0 }

// CanUse reports whether the player may sleep in this bed: the bed must be
// free, inside a house, and the player a guest of it.
func (b *BedItem) CanUse(p *Player) bool {
	if b.house == nil || p == nil {
		return false
	}
	if b.sleeperID != 0 && b.sleeperID != p.GUID() {
		return false
	}
	return b.house.IsInvited(p)
}

// Occupy records a sleeper on both halves.
func (b *BedItem) Occupy(guid uint32) {
	b.sleeperID = guid
	if b.partner != nil {
		b.partner.sleeperID = guid
	}
}

// Vacate clears the sleeper on both halves.
func (b *BedItem) Vacate() {
	b.sleeperID = 0
	if b.partner != nil {
		b.partner.sleeperID = 0
	}
}
