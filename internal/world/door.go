package world

// Door is a house door: never moveable, opened and closed by swapping the
// template through its transform pair, access controlled by the house list.
type Door struct {
	Item
	house  *House
	doorID uint8
}

// House returns the owning house, or nil for plain doors.
func (d *Door) House() *House { return d.house }

// SetHouse links the door to its house.
func (d *Door) SetHouse(h *House) { d.house = h }

// DoorID returns the per-house door identifier used by access lists.
func (d *Door) DoorID() uint8 { return d.doorID }

// SetDoorID sets the per-house door identifier.
func (d *Door) SetDoorID(id uint8) { d.doorID = id }

// IsOpen reports whether the current template is the open variant.
// A door template's TransformTo names its counterpart; the open variant is
// the one that does not block solid.
func (d *Door) IsOpen() bool { return !d.Type().BlockSolid }

// CanUse reports whether the player may pass or operate the door.
func (d *Door) CanUse(p *Player) bool {
	if d.house == nil {
		return true
	}
	return d.house.CanAccessDoor(p, d.doorID)
}
