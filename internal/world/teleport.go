package world

// TeleportItem relocates anything placed on its tile to a fixed destination.
// The redirect happens inside Tile.QueryDestination, so the move engine
// treats a teleporter tile like any other redirecting cylinder.
type TeleportItem struct {
	Item
	dest Position
}

// Destination returns the teleport target position.
func (t *TeleportItem) Destination() Position { return t.dest }

// SetDestination sets the teleport target position.
func (t *TeleportItem) SetDestination(p Position) { t.dest = p }
