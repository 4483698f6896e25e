package world

// Creature is a thing that occupies exactly one tile and moves between
// tiles through the map. Players additionally expose an inventory cylinder.
type Creature interface {
	Thing

	ID() uint32
	Name() string

	Tile() *Tile
	setTile(*Tile)

	Direction() Direction
	SetDirection(Direction)

	// IsBlocking reports whether other creatures cannot share the tile.
	IsBlocking() bool
	// IsPushable reports whether a blocked mover may shove this creature
	// to a neighbouring tile.
	IsPushable() bool

	Health() int
	MaxHealth() int

	// IncRef/DecRef pin the creature across re-entrant operations, the
	// same release discipline items follow.
	IncRef()
	DecRef()

	AsPlayer() *Player
	AsMonster() *Monster
	AsNpc() *Npc
}

// creatureBase carries the state shared by all creature kinds.
type creatureBase struct {
	id        uint32
	name      string
	tile      *Tile
	dir       Direction
	health    int
	maxHealth int
	refs      int32
}

func (c *creatureBase) ID() uint32   { return c.id }
func (c *creatureBase) Name() string { return c.name }

func (c *creatureBase) Tile() *Tile     { return c.tile }
func (c *creatureBase) setTile(t *Tile) { c.tile = t }

func (c *creatureBase) Direction() Direction     { return c.dir }
func (c *creatureBase) SetDirection(d Direction) { c.dir = d }

func (c *creatureBase) Health() int    { return c.health }
func (c *creatureBase) MaxHealth() int { return c.maxHealth }

// Parent returns the tile holding the creature. A creature's parent is
// always its tile; the map keeps both in sync on every move.
func (c *creatureBase) Parent() Cylinder {
	if c.tile == nil {
		return nil
	}
	return c.tile
}

// SetParent accepts only tiles; anything else detaches the creature.
func (c *creatureBase) SetParent(cyl Cylinder) {
	if t, ok := cyl.(*Tile); ok {
		c.tile = t
		return
	}
	c.tile = nil
}

func (c *creatureBase) MapPosition() Position {
	if c.tile == nil {
		return Position{X: NoPos}
	}
	return c.tile.Pos()
}

func (c *creatureBase) AsItem() *Item { return nil }

// IncRef/DecRef mirror the item release discipline so creatures removed
// mid-iteration stay valid until the cleanup flush.
func (c *creatureBase) IncRef() { c.refs++ }
func (c *creatureBase) DecRef() {
	if c.refs > 0 {
		c.refs--
	}
}

// RefCount returns the live reference count.
func (c *creatureBase) RefCount() int32 { return c.refs }

// Monster is a hostile creature. Monsters block their tile, may be pushed,
// and push moveable obstacles out of their way when walking.
type Monster struct {
	creatureBase
}

// NewMonster creates a monster with the given id and name.
func NewMonster(id uint32, name string) *Monster {
	m := &Monster{creatureBase{id: id, name: name, dir: South, health: 100, maxHealth: 100}}
	return m
}

func (m *Monster) AsCreature() Creature { return m }
func (m *Monster) AsPlayer() *Player    { return nil }
func (m *Monster) AsMonster() *Monster  { return m }
func (m *Monster) AsNpc() *Npc          { return nil }

func (m *Monster) IsBlocking() bool { return true }
func (m *Monster) IsPushable() bool { return true }

// Npc is a scripted townsfolk creature. Npcs block and cannot be pushed.
type Npc struct {
	creatureBase
}

// NewNpc creates an npc with the given id and name.
func NewNpc(id uint32, name string) *Npc {
	n := &Npc{creatureBase{id: id, name: name, dir: South, health: 100, maxHealth: 100}}
	return n
}

func (n *Npc) AsCreature() Creature { return n }
func (n *Npc) AsPlayer() *Player    { return nil }
func (n *Npc) AsMonster() *Monster  { return nil }
func (n *Npc) AsNpc() *Npc          { return n }

func (n *Npc) IsBlocking() bool { return true }
func (n *Npc) IsPushable() bool { return false }
