package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapSetAndGetTile(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	tile := addGround(g, 1000, 1000, 7)

	assert.Equal(t, tile, g.Map().GetTile(1000, 1000, 7))
	assert.Equal(t, tile, g.Map().TileAt(Position{X: 1000, Y: 1000, Z: 7}))
	assert.Nil(t, g.Map().GetTile(1000, 1001, 7))
	assert.Nil(t, g.Map().GetTile(1000, 1000, 8))
	assert.Nil(t, g.Map().TileAt(Position{X: NoPos}))
}

func TestSpectatorFloorRange(t *testing.T) {
	tests := []struct {
		z          uint8
		multifloor bool
		minZ, maxZ int
	}{
		{7, false, 7, 7},
		{7, true, 0, 9},
		{6, true, 0, 8},
		{5, true, 0, 7},
		{0, true, 0, 7},
		{8, true, 6, 10},
		{10, true, 8, 12},
		{14, true, 12, 15},
		{15, true, 13, 15},
	}
	for _, tt := range tests {
		minZ, maxZ := spectatorFloorRange(tt.z, tt.multifloor)
		assert.Equal(t, tt.minZ, minZ, "z=%d multifloor=%v", tt.z, tt.multifloor)
		assert.Equal(t, tt.maxZ, maxZ, "z=%d multifloor=%v", tt.z, tt.multifloor)
	}
}

func TestGetSpectators(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 990, 990, 1030, 1010, 7)

	center := Position{X: 1000, Y: 1000, Z: 7}
	near := placePlayer(t, g, "Near", center)
	edge := placePlayer(t, g, "Edge", Position{X: 1005, Y: 1000, Z: 7})
	far := placePlayer(t, g, "Far", Position{X: 1010, Y: 1000, Z: 7})

	specs := g.Map().GetSpectators(center, false, true, 5, 5)
	assert.Contains(t, specs, Creature(near))
	assert.Contains(t, specs, Creature(edge))
	assert.NotContains(t, specs, Creature(far))

	wide := g.Map().GetSpectators(center, false, true, 0, 0)
	assert.Contains(t, wide, Creature(far), "default viewport covers 11 tiles")
}

func TestGetSpectatorsOnlyPlayers(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 998, 998, 1002, 1002, 7)

	center := Position{X: 1000, Y: 1000, Z: 7}
	p := placePlayer(t, g, "Ada", center)
	m := NewMonster(g.NextCreatureID(), "rat")
	require.True(t, g.PlaceCreature(m, Position{X: 1001, Y: 1001, Z: 7}, false, false).OK())

	players := g.Map().GetSpectators(center, false, true, 3, 3)
	assert.Contains(t, players, Creature(p))
	assert.NotContains(t, players, Creature(m))

	all := g.Map().GetSpectators(center, false, false, 3, 3)
	assert.Contains(t, all, Creature(m))
}

// TestGetSpectatorsCacheInvalidation moves a creature and expects the next
// query to reflect the new placement.
func TestGetSpectatorsCacheInvalidation(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 998, 998, 1020, 1002, 7)

	center := Position{X: 1000, Y: 1000, Z: 7}
	p := placePlayer(t, g, "Ada", center)

	assert.Contains(t, g.Map().GetSpectators(center, false, true, 2, 2), Creature(p))

	require.True(t, g.TeleportCreature(p, Position{X: 1015, Y: 1000, Z: 7}).OK())
	assert.NotContains(t, g.Map().GetSpectators(center, false, true, 2, 2), Creature(p))
}

func TestGetSpectatorsMultifloor(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 998, 998, 1002, 1002, 7)
	addField(g, 998, 998, 1002, 1002, 8)
	addField(g, 998, 998, 1002, 1002, 10)

	below := placePlayer(t, g, "Below", Position{X: 1000, Y: 1000, Z: 8})
	deep := placePlayer(t, g, "Deep", Position{X: 1000, Y: 1000, Z: 10})

	surface := Position{X: 1000, Y: 1000, Z: 7}
	specs := g.Map().GetSpectators(surface, true, true, 3, 3)
	assert.Contains(t, specs, Creature(below), "surface sees one floor down")
	assert.NotContains(t, specs, Creature(deep), "z 10 is out of the surface band")

	cave := Position{X: 1000, Y: 1000, Z: 9}
	specs = g.Map().GetSpectators(cave, true, true, 3, 3)
	assert.Contains(t, specs, Creature(below))
	assert.Contains(t, specs, Creature(deep), "underground sees two floors either way")
}

func TestSightLine(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 1000, 1000, 1010, 1000, 7)

	from := Position{X: 1000, Y: 1000, Z: 7}
	to := Position{X: 1010, Y: 1000, Z: 7}
	assert.True(t, g.Map().IsSightClear(from, to, true))

	g.Map().GetTile(1005, 1000, 7).AddThing(0, newItem(t, g, idWall, 0))
	assert.False(t, g.Map().IsSightClear(from, to, true))
	assert.False(t, g.Map().IsSightClear(to, from, true), "blocked both ways")

	assert.True(t, g.Map().IsSightClear(from, from.Next(East), true), "endpoints are not checked")
	assert.False(t, g.Map().IsSightClear(from, Position{X: 1000, Y: 1000, Z: 8}, false), "cross-floor never clear")
}

func TestCanThrowObjectTo(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 1000, 1000, 1010, 1000, 7)

	from := Position{X: 1000, Y: 1000, Z: 7}

	assert.True(t, g.Map().CanThrowObjectTo(from, Position{X: 1005, Y: 1000, Z: 7}, true, 0, 0))
	assert.False(t, g.Map().CanThrowObjectTo(from, Position{X: 1000, Y: 1000, Z: 6}, false, 0, 0), "never upward")
	assert.True(t, g.Map().CanThrowObjectTo(from, Position{X: 1000, Y: 1000, Z: 9}, false, 0, 0))
	assert.False(t, g.Map().CanThrowObjectTo(from, Position{X: 1000, Y: 1000, Z: 10}, false, 0, 0), "three floors down")
	assert.False(t, g.Map().CanThrowObjectTo(from, Position{X: 1009, Y: 1000, Z: 7}, false, 0, 0), "past the client viewport")

	g.Map().GetTile(1003, 1000, 7).AddThing(0, newItem(t, g, idWall, 0))
	assert.False(t, g.Map().CanThrowObjectTo(from, Position{X: 1006, Y: 1000, Z: 7}, true, 0, 0))
	assert.True(t, g.Map().CanThrowObjectTo(from, Position{X: 1006, Y: 1000, Z: 7}, false, 0, 0), "sight check skipped")
}

func TestTileDestinationHole(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	top := addGround(g, 1005, 1005, 7)
	top.AddThing(0, newItem(t, g, idHole, 0))
	below := addGround(g, 1005, 1005, 8)

	dest, _ := queryTileDestination(top)
	assert.Equal(t, below, dest)
}

// Stairs on the landing tile shift the faller off the stair square.
func TestTileDestinationHoleOverStairs(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	top := addGround(g, 1005, 1005, 7)
	top.AddThing(0, newItem(t, g, idHole, 0))

	landing := addGround(g, 1005, 1005, 8)
	landing.AddThing(0, newItem(t, g, idStairsN, 0))
	south := addGround(g, 1005, 1006, 8)

	dest, _ := queryTileDestination(top)
	assert.Equal(t, south, dest, "north stairs below push the landing one tile south")
}

func TestTileDestinationUp(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	cellar := addGround(g, 1004, 1004, 8)
	cellar.AddThing(0, newItem(t, g, idLadder, 0))
	above := addGround(g, 1004, 1004, 7)

	dest, _ := queryTileDestination(cellar)
	assert.Equal(t, above, dest)
}

func TestTileDestinationTeleport(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	pad := addGround(g, 995, 995, 7)
	exit := addGround(g, 1000, 1000, 7)

	tp := newItem(t, g, idTeleport, 0)
	tp.Teleport().SetDestination(exit.Pos())
	pad.AddThing(0, tp)

	dest, _ := queryTileDestination(pad)
	assert.Equal(t, exit, dest)

	// A teleporter never redirects itself.
	index := IndexWherever
	cyl, _ := pad.QueryDestination(&index, tp, 0)
	assert.Equal(t, Cylinder(pad), cyl)
}

// queryTileDestination resolves a tile's redirect for a plain dropped item.
func queryTileDestination(t *Tile) (Cylinder, *Item) {
	index := IndexWherever
	return t.QueryDestination(&index, nil, 0)
}
