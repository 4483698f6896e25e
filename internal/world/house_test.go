package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseAccessLists(t *testing.T) {
	h := NewHouse(1, "Rookhaven Cottage", 1, Position{X: 1002, Y: 997, Z: 7})
	owner := NewPlayer(1, 10, "Ada")
	guest := NewPlayer(2, 11, "Bob")
	stranger := NewPlayer(3, 12, "Eve")

	assert.False(t, h.IsInvited(owner), "unowned house invites nobody")

	h.SetOwner(10)
	assert.True(t, h.IsOwner(owner))
	assert.True(t, h.IsInvited(owner))
	assert.False(t, h.IsInvited(guest))

	h.SetGuestList("Bob\n# comment line\n\n")
	assert.True(t, h.IsInvited(guest), "case-insensitive, comments skipped")
	assert.False(t, h.IsInvited(stranger))
	assert.Equal(t, "bob", h.GuestList())

	h.SetGuestList("*")
	assert.True(t, h.IsInvited(stranger), "wildcard invites everyone")

	h.SetSubOwnerList("eve")
	assert.True(t, h.IsSubOwner(stranger))
	assert.False(t, h.IsSubOwner(guest))

	h.SetDoorList(1, "bob")
	assert.True(t, h.CanAccessDoor(guest, 1))
	assert.False(t, h.CanAccessDoor(guest, 2))
	assert.Equal(t, "bob", h.DoorLists()[1])

	h.SetOwner(99)
	assert.False(t, h.IsInvited(guest), "ownership transfer clears the lists")
}

func TestHouseTileRefusesUninvited(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	tile := addGround(g, 1002, 997, 7)
	outside := addGround(g, 1001, 997, 7)

	h := NewHouse(1, "Cottage", 1, tile.Pos())
	h.SetOwner(10)
	h.AddTile(tile)
	g.AddHouse(h)
	require.True(t, tile.IsHouseTile())
	assert.True(t, tile.HasFlag(TileHouse))

	stranger := placePlayer(t, g, "Eve", outside.Pos())
	assert.Equal(t, RetPlayerIsNotInvited, g.MoveCreature(stranger, East, 0))

	gold := newItem(t, g, idGold, 10)
	outside.AddThing(0, gold)
	assert.Equal(t, RetPlayerIsNotInvited, g.MoveItem(stranger, gold, 10, tile, IndexWherever))

	h.SetGuestList("eve")
	assert.True(t, g.MoveCreature(stranger, East, 0).OK())
}

// House tiles cap loose items far below the open-world limit.
func TestHouseTileItemLimit(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	tile := addGround(g, 1002, 997, 7)
	h := NewHouse(1, "Cottage", 1, tile.Pos())
	h.AddTile(tile)

	for i := 0; i < 9; i++ {
		tile.AddThing(0, newItem(t, g, idApple, 1))
	}
	sword := newItem(t, g, idSword, 0)
	assert.Equal(t, RetNotEnoughRoom, tile.QueryAdd(0, sword, 1, 0, nil), "ten things on a house tile is the cap")

	apple := newItem(t, g, idApple, 1)
	assert.True(t, tile.QueryAdd(0, apple, 1, 0, nil).OK(), "stack merges still fit")
}
