package world

import "strings"

// House groups tiles, doors and beds under an owner with guest and
// sub-owner access lists. Tiles reference their house without owning it.
type House struct {
	id      uint32
	name    string
	townID  uint32
	ownerID uint32
	entry   Position

	guests    []string
	subOwners []string
	doorLists map[uint8][]string

	tiles []*Tile
	beds  []*BedItem
}

// NewHouse creates an empty house.
func NewHouse(id uint32, name string, townID uint32, entry Position) *House {
	return &House{
		id:        id,
		name:      name,
		townID:    townID,
		entry:     entry,
		doorLists: make(map[uint8][]string),
	}
}

// ID returns the house id.
func (h *House) ID() uint32 { return h.id }

// Name returns the house name.
func (h *House) Name() string { return h.name }

// TownID returns the town the house belongs to.
func (h *House) TownID() uint32 { return h.townID }

// Entry returns the door-step entry position.
func (h *House) Entry() Position { return h.entry }

// OwnerGUID returns the owner's guid, 0 when unowned.
func (h *House) OwnerGUID() uint32 { return h.ownerID }

// SetOwner transfers the house, clearing all access lists.
func (h *House) SetOwner(guid uint32) {
	h.ownerID = guid
	h.guests = nil
	h.subOwners = nil
	h.doorLists = make(map[uint8][]string)
}

// AddTile links a tile to the house.
func (h *House) AddTile(t *Tile) {
	h.tiles = append(h.tiles, t)
	t.house = h
}

// Tiles returns the linked tiles.
func (h *House) Tiles() []*Tile { return h.tiles }

// AddBed links a bed half to the house.
func (h *House) AddBed(b *BedItem) {
	h.beds = append(h.beds, b)
	b.SetHouse(h)
}

// SetGuestList replaces the guest access list (one name per line).
func (h *House) SetGuestList(list string) {
	h.guests = splitAccessList(list)
}

// SetSubOwnerList replaces the sub-owner list.
func (h *House) SetSubOwnerList(list string) {
	h.subOwners = splitAccessList(list)
}

// SetDoorList replaces the access list of one door.
func (h *House) SetDoorList(doorID uint8, list string) {
	h.doorLists[doorID] = splitAccessList(list)
}

// GuestList returns the guest list, one name per line.
func (h *House) GuestList() string { return strings.Join(h.guests, "\n") }

// SubOwnerList returns the sub-owner list, one name per line.
func (h *House) SubOwnerList() string { return strings.Join(h.subOwners, "\n") }

// DoorLists returns the per-door access lists.
func (h *House) DoorLists() map[uint8]string {
	out := make(map[uint8]string, len(h.doorLists))
	for id, list := range h.doorLists {
		out[id] = strings.Join(list, "\n")
	}
	return out
}

func splitAccessList(list string) []string {
	var out []string
	for _, line := range strings.Split(list, "\n") {
		line = strings.ToLower(strings.TrimSpace(line))
		if line != "" && !strings.HasPrefix(line, "#") {
			out = append(out, line)
		}
	}
	return out
}

func nameListed(list []string, name string) bool {
	name = strings.ToLower(name)
	for _, entry := range list {
		if entry == name || entry == "*" {
			return true
		}
	}
	return false
}

// IsOwner reports whether the player owns the house.
func (h *House) IsOwner(p *Player) bool {
	return p != nil && h.ownerID != 0 && p.GUID() == h.ownerID
}

// IsSubOwner reports whether the player is owner or sub-owner.
func (h *House) IsSubOwner(p *Player) bool {
	if h.IsOwner(p) {
		return true
	}
	return p != nil && nameListed(h.subOwners, p.Name())
}

// IsInvited reports whether the player may enter and place items.
func (h *House) IsInvited(p *Player) bool {
	if h.IsSubOwner(p) {
		return true
	}
	return p != nil && nameListed(h.guests, p.Name())
}

// CanAccessDoor reports whether the player may operate a specific door.
func (h *House) CanAccessDoor(p *Player, doorID uint8) bool {
	if h.IsSubOwner(p) {
		return true
	}
	return p != nil && nameListed(h.doorLists[doorID], p.Name())
}
