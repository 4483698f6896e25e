package world

import "github.com/otgo/server/internal/data"

// Viewport geometry. The client draws 8x6 around the character; spectator
// queries pad that so off-screen walkers still receive events.
const (
	MaxClientViewportX = 8
	MaxClientViewportY = 6
	MaxViewportX       = 11
	MaxViewportY       = 11
)

type spectatorKey struct {
	pos         Position
	multifloor  bool
	onlyPlayers bool
	rangeX      int
	rangeY      int
}

// Map is the spatial index of the world: a quad tree of tile leaves plus a
// per-tick spectator cache. All access happens on the game goroutine.
type Map struct {
	root qTreeNode

	// Forwarded committed tile mutations (the game broadcasts them).
	observer tileObserver

	specCache map[spectatorKey][]Creature

	tileLimit int
}

// NewMap creates an empty map.
func NewMap() *Map {
	return &Map{
		specCache: make(map[spectatorKey][]Creature),
		tileLimit: defaultTileItemLimit,
	}
}

// SetObserver installs the sink for committed tile mutations.
func (m *Map) SetObserver(o tileObserver) { m.observer = o }

// SetTileItemLimit overrides the default per-tile item cap applied to tiles
// attached after the call.
func (m *Map) SetTileItemLimit(n int) {
	if n > 0 {
		m.tileLimit = n
	}
}

// TileChanged forwards tile mutations to the installed observer. The map
// itself only cares about creature placement, which it tracks directly.
func (m *Map) TileChanged(t *Tile) {
	if m.observer != nil {
		m.observer.TileChanged(t)
	}
}

// GetTile returns the tile at a coordinate, or nil.
func (m *Map) GetTile(x, y uint16, z uint8) *Tile {
	if int(z) >= MapMaxLayers {
		return nil
	}
	leaf := m.root.getLeaf(x, y)
	if leaf == nil {
		return nil
	}
	floor := leaf.floor(z, false)
	if floor == nil {
		return nil
	}
	return floor.Tile(x, y)
}

// TileAt is GetTile keyed by Position.
func (m *Map) TileAt(pos Position) *Tile {
	if !pos.IsMapPosition() {
		return nil
	}
	return m.GetTile(pos.X, pos.Y, pos.Z)
}

// SetTile attaches a tile, creating the leaf and linking it to its west and
// north neighbours for contiguous spectator scans.
func (m *Map) SetTile(t *Tile) {
	pos := t.Pos()
	if int(pos.Z) >= MapMaxLayers {
		return
	}
	leaf := m.root.createLeaf(pos.X, pos.Y)
	if leaf.leafE == nil {
		leaf.leafE = m.root.getLeaf(pos.X+FloorSize, pos.Y)
	}
	if leaf.leafS == nil {
		leaf.leafS = m.root.getLeaf(pos.X, pos.Y+FloorSize)
	}
	if west := m.root.getLeaf(pos.X-FloorSize, pos.Y); west != nil {
		west.leafE = leaf
	}
	if north := m.root.getLeaf(pos.X, pos.Y-FloorSize); north != nil {
		north.leafS = leaf
	}
	leaf.floor(pos.Z, true).setTile(pos.X, pos.Y, t)
	t.m = m
	t.observer = m
	t.SetItemLimit(m.tileLimit)
}

// ── Creature placement ──────────────────────────────────────────────

// Relocation offsets tried when the requested tile refuses a creature.
var placeRelocation = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

var placeRelocationExtended = [12][2]int{
	{-2, 0}, {0, -2}, {0, 2}, {2, 0},
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// PlaceCreature puts a creature on the map at or near pos. With extended
// search the two-tile ring is tried first (login relocations); forced
// placement ignores blocking.
func (m *Map) PlaceCreature(pos Position, c Creature, extended, forced bool) ReturnValue {
	tile := m.TileAt(pos)
	if tile != nil && tile.QueryAdd(0, c, 1, FlagIgnoreFieldDamage, nil) == RetNoError {
		m.putCreature(tile, c)
		return RetNoError
	}

	offsets := placeRelocation[:]
	if extended {
		offsets = placeRelocationExtended[:]
	}
	for _, off := range offsets {
		near := m.GetTile(uint16(int(pos.X)+off[0]), uint16(int(pos.Y)+off[1]), pos.Z)
		if near == nil {
			continue
		}
		if near.QueryAdd(0, c, 1, FlagIgnoreFieldDamage, nil) == RetNoError {
			m.putCreature(near, c)
			return RetNoError
		}
	}

	if forced && tile != nil {
		m.putCreature(tile, c)
		return RetNoError
	}
	return RetNotPossible
}

func (m *Map) putCreature(tile *Tile, c Creature) {
	tile.AddThing(0, c)
	if leaf := m.root.getLeaf(tile.pos.X, tile.pos.Y); leaf != nil {
		leaf.addCreature(c)
	}
	m.clearSpectatorCache()
}

// MoveCreature relocates a creature between tiles, keeping the leaf index
// in sync. A hop farther than one tile, or across floors, counts as a
// teleport; ordinary steps turn the creature towards its destination.
func (m *Map) MoveCreature(c Creature, dest *Tile, forceTeleport bool) {
	oldTile := c.Tile()
	if oldTile == nil || dest == nil || oldTile == dest {
		return
	}
	oldPos := oldTile.Pos()
	newPos := dest.Pos()

	teleport := forceTeleport || dest.Ground() == nil || !oldPos.InRange(newPos, 1, 1, 0)
	if !teleport && oldPos != newPos {
		c.SetDirection(oldPos.DirectionTo(newPos))
	}

	oldTile.RemoveThing(c, 1)
	if leaf := m.root.getLeaf(oldPos.X, oldPos.Y); leaf != nil {
		leaf.removeCreature(c)
	}

	dest.AddThing(0, c)
	if leaf := m.root.getLeaf(newPos.X, newPos.Y); leaf != nil {
		leaf.addCreature(c)
	}
	m.clearSpectatorCache()
}

// RemoveCreature takes a creature off the map entirely.
func (m *Map) RemoveCreature(c Creature) {
	tile := c.Tile()
	if tile == nil {
		return
	}
	pos := tile.Pos()
	tile.RemoveThing(c, 1)
	if leaf := m.root.getLeaf(pos.X, pos.Y); leaf != nil {
		leaf.removeCreature(c)
	}
	m.clearSpectatorCache()
}

// ── Spectators ──────────────────────────────────────────────────────

// spectatorFloorRange resolves which z-levels can see a position.
// Underground the view is two floors either way; on the surface lower
// floors see progressively deeper.
func spectatorFloorRange(z uint8, multifloor bool) (minZ, maxZ int) {
	if !multifloor {
		return int(z), int(z)
	}
	if z > GroundLayer {
		minZ = int(z) - 2
		if minZ < 0 {
			minZ = 0
		}
		maxZ = int(z) + 2
		if maxZ > MaxZ {
			maxZ = MaxZ
		}
		return minZ, maxZ
	}
	switch z {
	case 6:
		return 0, 8
	case 7:
		return 0, 9
	default:
		return 0, GroundLayer
	}
}

// GetSpectators returns the creatures able to observe pos within the given
// horizontal range. Results are cached until the next creature placement
// change; callers must not mutate the returned slice.
func (m *Map) GetSpectators(pos Position, multifloor, onlyPlayers bool, rangeX, rangeY int) []Creature {
	if rangeX <= 0 {
		rangeX = MaxViewportX
	}
	if rangeY <= 0 {
		rangeY = MaxViewportY
	}
	key := spectatorKey{pos: pos, multifloor: multifloor, onlyPlayers: onlyPlayers, rangeX: rangeX, rangeY: rangeY}
	if cached, ok := m.specCache[key]; ok {
		return cached
	}

	minZ, maxZ := spectatorFloorRange(pos.Z, multifloor)
	list := m.gatherSpectators(pos, rangeX, rangeY, minZ, maxZ, onlyPlayers)
	m.specCache[key] = list
	return list
}

func (m *Map) gatherSpectators(pos Position, rangeX, rangeY, minZ, maxZ int, onlyPlayers bool) []Creature {
	minX := int(pos.X) - rangeX
	if minX < 0 {
		minX = 0
	}
	minY := int(pos.Y) - rangeY
	if minY < 0 {
		minY = 0
	}
	maxX := int(pos.X) + rangeX
	maxY := int(pos.Y) + rangeY

	// Walk leaf-aligned cells, following quick-links where the leaves are
	// contiguous and re-descending the tree across gaps.
	startX := minX &^ floorMask
	startY := minY &^ floorMask

	var out []Creature
	leafS := m.root.getLeaf(uint16(startX), uint16(startY))
	for ny := startY; ny <= maxY; ny += FloorSize {
		leafE := leafS
		for nx := startX; nx <= maxX; nx += FloorSize {
			if leafE == nil {
				leafE = m.root.getLeaf(uint16(nx+FloorSize), uint16(ny))
				continue
			}
			list := leafE.creatures
			if onlyPlayers {
				list = leafE.players
			}
			for _, c := range list {
				cp := c.MapPosition()
				if int(cp.Z) < minZ || int(cp.Z) > maxZ {
					continue
				}
				if int(cp.X) < minX || int(cp.X) > maxX || int(cp.Y) < minY || int(cp.Y) > maxY {
					continue
				}
				out = append(out, c)
			}
			leafE = leafE.leafE
		}
		if leafS != nil {
			leafS = leafS.leafS
		} else {
			leafS = m.root.getLeaf(uint16(startX), uint16(ny+FloorSize))
		}
	}
	return out
}

func (m *Map) clearSpectatorCache() {
	if len(m.specCache) > 0 {
		m.specCache = make(map[spectatorKey][]Creature)
	}
}

// ── Line of sight ───────────────────────────────────────────────────

// checkSightLine rasterises the segment between two same-floor positions
// and fails on any intermediate projectile-blocking tile. Endpoints are
// not checked.
func (m *Map) checkSightLine(from, to Position) bool {
	x0, y0 := int(from.X), int(from.Y)
	x1, y1 := int(to.X), int(to.Y)

	dx, dy := x1-x0, y1-y0
	sx, sy := 1, 1
	if dx < 0 {
		dx, sx = -dx, -1
	}
	if dy < 0 {
		dy, sy = -dy, -1
	}
	err := dx - dy
	x, y := x0, y0
	for {
		if x == x1 && y == y1 {
			return true
		}
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
		if x == x1 && y == y1 {
			return true
		}
		tile := m.GetTile(uint16(x), uint16(y), from.Z)
		if tile != nil && tile.HasFlag(TileBlockProjectile) {
			return false
		}
	}
}

// IsSightClear reports whether a projectile can pass between two positions.
// Rasterisation is not symmetric, so both directions are tried.
func (m *Map) IsSightClear(from, to Position, floorCheck bool) bool {
	if floorCheck && from.Z != to.Z {
		return false
	}
	if from.Z != to.Z {
		return false
	}
	return m.checkSightLine(from, to) || m.checkSightLine(to, from)
}

// CanThrowObjectTo reports whether an item can be thrown from one position
// to another: never upward, at most two floors down, within range, and
// optionally with clear sight.
func (m *Map) CanThrowObjectTo(from, to Position, checkLineOfSight bool, rangeX, rangeY int) bool {
	if from.Z > to.Z {
		return false
	}
	if int(to.Z)-int(from.Z) > 2 {
		return false
	}
	if rangeX <= 0 {
		rangeX = MaxClientViewportX
	}
	if rangeY <= 0 {
		rangeY = MaxClientViewportY
	}
	if from.DistanceX(to) > rangeX || from.DistanceY(to) > rangeY {
		return false
	}
	if checkLineOfSight && from.Z == to.Z {
		return m.IsSightClear(from, to, false)
	}
	return true
}

// ── Destination redirection ─────────────────────────────────────────

// tileDestination resolves where a thing dropped on a tile really lands:
// teleporters forward to their exit, holes drop a floor, stairs and ladders
// climb one. Returns the tile itself when nothing redirects.
func (m *Map) tileDestination(t *Tile, thing Thing) *Tile {
	if tp := t.TeleportItem(); tp != nil {
		if thing == nil || thing.AsItem() == nil || thing.AsItem().Teleport() != tp {
			if dest := m.TileAt(tp.Destination()); dest != nil {
				return dest
			}
		}
	}

	pos := t.Pos()
	switch kind := t.floorChangeKind(); kind {
	case data.FloorChangeDown:
		if pos.Z >= MaxZ {
			return t
		}
		dx, dy := int(pos.X), int(pos.Y)
		below := m.GetTile(pos.X, pos.Y, pos.Z+1)
		if below != nil {
			// A ladder on the lower tile offsets the landing spot so the
			// faller does not stand inside it.
			switch below.floorChangeKind() {
			case data.FloorChangeNorth:
				dy++
			case data.FloorChangeSouth:
				dy--
			case data.FloorChangeEast:
				dx--
			case data.FloorChangeWest:
				dx++
			}
		}
		if dest := m.GetTile(uint16(dx), uint16(dy), pos.Z+1); dest != nil {
			return dest
		}
		return below

	case data.FloorChangeUp, data.FloorChangeNorth, data.FloorChangeSouth,
		data.FloorChangeEast, data.FloorChangeWest:
		if pos.Z == 0 {
			return t
		}
		dx, dy := int(pos.X), int(pos.Y)
		switch kind {
		case data.FloorChangeNorth:
			dy--
		case data.FloorChangeSouth:
			dy++
		case data.FloorChangeEast:
			dx++
		case data.FloorChangeWest:
			dx--
		}
		if dest := m.GetTile(uint16(dx), uint16(dy), pos.Z-1); dest != nil {
			return dest
		}
	}
	return t
}
