package world

// Events emitted by the game facade onto the tick bus. Systems consume them
// one tick later: broadcast builds client updates from the positions, the
// persistence system marks dirty cylinders.

// ItemMovedEvent records a committed item move between two cylinders.
type ItemMovedEvent struct {
	Item    *Item
	Actor   Creature
	From    Cylinder
	To      Cylinder
	FromPos Position
	ToPos   Position
	Count   uint32
}

// ItemAddedEvent records an item created or spawned into a cylinder.
type ItemAddedEvent struct {
	Item *Item
	To   Cylinder
	Pos  Position
}

// ItemRemovedEvent records an item destroyed or consumed. Complete is false
// for partial stack removals.
type ItemRemovedEvent struct {
	Item     *Item
	From     Cylinder
	Pos      Position
	Count    uint32
	Complete bool
}

// ItemTransformedEvent records a decay or scripted transform in place.
type ItemTransformedEvent struct {
	Old *Item
	New *Item
	Pos Position
}

// CreatureMovedEvent records a committed creature step or teleport.
type CreatureMovedEvent struct {
	Creature Creature
	FromPos  Position
	ToPos    Position
	Teleport bool
}

// CreaturePlacedEvent records a creature entering the map.
type CreaturePlacedEvent struct {
	Creature Creature
	Pos      Position
}

// CreatureRemovedEvent records a creature leaving the map.
type CreatureRemovedEvent struct {
	Creature Creature
	Pos      Position
}

// MailDeliveredEvent records a mailbox delivery into a depot.
type MailDeliveredEvent struct {
	Item      *Item
	Recipient string
	TownID    uint32
}
