package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// walk replays a direction sequence from a start position.
func walk(start Position, dirs []Direction) Position {
	pos := start
	for _, d := range dirs {
		pos = pos.Next(d)
	}
	return pos
}

func TestFindPathStraight(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 110, 102, 7)
	p := placePlayer(t, g, "Ada", Position{X: 100, Y: 101, Z: 7})

	target := Position{X: 105, Y: 101, Z: 7}
	dirs, ok := g.FindPath(p, target, PathOptions{})
	require.True(t, ok)
	assert.Equal(t, target, walk(p.MapPosition(), dirs))
	assert.Len(t, dirs, 5, "straight line east")
}

func TestFindPathAroundWall(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 110, 104, 7)

	// A vertical wall at x=105 with a gap at the top row.
	for y := uint16(101); y <= 104; y++ {
		g.Map().GetTile(105, y, 7).AddThing(0, newItem(t, g, idWall, 0))
	}

	p := placePlayer(t, g, "Ada", Position{X: 103, Y: 102, Z: 7})
	target := Position{X: 107, Y: 102, Z: 7}

	dirs, ok := g.FindPath(p, target, PathOptions{})
	require.True(t, ok)
	assert.Equal(t, target, walk(p.MapPosition(), dirs))
	assert.Greater(t, len(dirs), 4, "detour through the gap")

	for pos := p.MapPosition(); len(dirs) > 0; dirs = dirs[1:] {
		pos = pos.Next(dirs[0])
		tile := g.Map().TileAt(pos)
		require.NotNil(t, tile)
		assert.False(t, tile.HasFlag(TileBlockSolid), "path never crosses the wall")
	}
}

func TestFindPathNoRoute(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 110, 104, 7)

	// Seal the target in completely.
	target := Position{X: 107, Y: 102, Z: 7}
	for _, off := range [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}} {
		tile := g.Map().GetTile(uint16(int(target.X)+off[0]), uint16(int(target.Y)+off[1]), 7)
		tile.AddThing(0, newItem(t, g, idWall, 0))
	}

	p := placePlayer(t, g, "Ada", Position{X: 101, Y: 102, Z: 7})
	_, ok := g.FindPath(p, target, PathOptions{})
	assert.False(t, ok)
}

func TestFindPathAlreadyThere(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 102, 102, 7)
	p := placePlayer(t, g, "Ada", Position{X: 101, Y: 101, Z: 7})

	dirs, ok := g.FindPath(p, p.MapPosition(), PathOptions{})
	assert.True(t, ok)
	assert.Empty(t, dirs)

	dirs, ok = g.FindPath(p, Position{X: 102, Y: 101, Z: 7}, PathOptions{MaxTargetDist: 1})
	assert.True(t, ok)
	assert.Empty(t, dirs, "target already within the distance band")
}

func TestFindPathKeepsDistance(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 110, 104, 7)
	p := placePlayer(t, g, "Ada", Position{X: 101, Y: 102, Z: 7})

	target := Position{X: 108, Y: 102, Z: 7}
	dirs, ok := g.FindPath(p, target, PathOptions{MinTargetDist: 3, MaxTargetDist: 3})
	require.True(t, ok)

	end := walk(p.MapPosition(), dirs)
	assert.Equal(t, 3, chebyshev(end, target))
}

func TestFindPathCrossFloorFails(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 102, 102, 7)
	p := placePlayer(t, g, "Ada", Position{X: 101, Y: 101, Z: 7})

	_, ok := g.FindPath(p, Position{X: 101, Y: 101, Z: 8}, PathOptions{})
	assert.False(t, ok)
}

func TestFindPathMaxSearchDist(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 120, 102, 7)
	p := placePlayer(t, g, "Ada", Position{X: 100, Y: 101, Z: 7})

	_, ok := g.FindPath(p, Position{X: 115, Y: 101, Z: 7}, PathOptions{MaxSearchDist: 5})
	assert.False(t, ok, "target outside the search radius")

	dirs, ok := g.FindPath(p, Position{X: 104, Y: 101, Z: 7}, PathOptions{MaxSearchDist: 5})
	assert.True(t, ok)
	assert.Len(t, dirs, 4)
}

// TestFindPathAvoidsCostlyGround routes around a swamp strip when a clean
// detour costs less than wading through.
func TestFindPathAvoidsCostlyGround(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 110, 104, 7)

	// A wide swamp belt across the direct line, open along the top row.
	for x := uint16(104); x <= 106; x++ {
		for y := uint16(101); y <= 104; y++ {
			g.Map().GetTile(x, y, 7).SetGround(g.Factory().New(idSwamp, 0))
		}
	}

	p := placePlayer(t, g, "Ada", Position{X: 103, Y: 102, Z: 7})
	target := Position{X: 107, Y: 102, Z: 7}

	dirs, ok := g.FindPath(p, target, PathOptions{})
	require.True(t, ok)
	for pos := p.MapPosition(); len(dirs) > 0; dirs = dirs[1:] {
		pos = pos.Next(dirs[0])
		ground := g.Map().TileAt(pos).Ground()
		require.NotNil(t, ground)
		assert.NotEqual(t, idSwamp, ground.ID(), "route avoids the swamp")
	}
}

// A chase may route onto its target's tile when the target is the one
// blocking it.
func TestFindPathIgnoresChaseTarget(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 104, 100, 7)

	quarry := NewMonster(900, "rat")
	require.True(t, g.PlaceCreature(quarry, Position{X: 102, Y: 100, Z: 7}, false, false).OK())

	p := placePlayer(t, g, "Ada", Position{X: 100, Y: 100, Z: 7})
	target := Position{X: 104, Y: 100, Z: 7}

	_, ok := g.FindPath(p, target, PathOptions{})
	require.False(t, ok, "the corridor is blocked")

	dirs, ok := g.FindPath(p, target, PathOptions{IgnoreCreature: quarry})
	require.True(t, ok)
	assert.Equal(t, target, walk(p.MapPosition(), dirs))
}

// The walk search refuses tiles that would trigger a floor change.
func TestFindPathAvoidsFloorChanges(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	addField(g, 100, 100, 102, 100, 7)
	g.Map().GetTile(101, 100, 7).AddThing(0, newItem(t, g, idHole, 0))

	p := placePlayer(t, g, "Ada", Position{X: 100, Y: 100, Z: 7})
	_, ok := g.FindPath(p, Position{X: 102, Y: 100, Z: 7}, PathOptions{})
	assert.False(t, ok, "the only route runs over a hole")
}
