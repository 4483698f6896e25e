package world

// Quad tree geometry. 16-bit coordinates descend one bit per level until
// the leaf, which holds a dense per-floor grid of tiles.
const (
	floorBits = 3
	FloorSize = 1 << floorBits // 8
	floorMask = FloorSize - 1
)

// Floor is the dense tile grid of one z-level inside a leaf.
type Floor struct {
	tiles [FloorSize][FloorSize]*Tile
}

// Tile returns the tile at leaf-local coordinates.
func (f *Floor) Tile(x, y uint16) *Tile {
	return f.tiles[x&floorMask][y&floorMask]
}

func (f *Floor) setTile(x, y uint16, t *Tile) {
	f.tiles[x&floorMask][y&floorMask] = t
}

// qTreeLeaf is a terminal node: per-floor tile grids plus the creatures
// physically present in this spatial bucket, indexed for radius scans.
// leafS/leafE are quick-links to the south and east neighbours so a
// rectangle scan walks contiguous leaves instead of re-descending the tree
// per tile.
type qTreeLeaf struct {
	floors    [MapMaxLayers]*Floor
	creatures []Creature
	players   []Creature

	leafS *qTreeLeaf
	leafE *qTreeLeaf
}

// floor returns the Floor for a z-level, optionally creating it.
func (l *qTreeLeaf) floor(z uint8, create bool) *Floor {
	if int(z) >= MapMaxLayers {
		return nil
	}
	if l.floors[z] == nil && create {
		l.floors[z] = &Floor{}
	}
	return l.floors[z]
}

// addCreature indexes a creature present in this bucket.
func (l *qTreeLeaf) addCreature(c Creature) {
	l.creatures = append(l.creatures, c)
	if c.AsPlayer() != nil {
		l.players = append(l.players, c)
	}
}

// removeCreature unindexes a creature. Removal keeps slice order so
// spectator iteration stays deterministic.
func (l *qTreeLeaf) removeCreature(c Creature) {
	for i, existing := range l.creatures {
		if existing == c {
			l.creatures = append(l.creatures[:i], l.creatures[i+1:]...)
			break
		}
	}
	if c.AsPlayer() == nil {
		return
	}
	for i, existing := range l.players {
		if existing == c {
			l.players = append(l.players[:i], l.players[i+1:]...)
			break
		}
	}
}

// qTreeNode is an interior node. A node either has children or is the
// parent of a leaf; the tree never deletes nodes once created.
type qTreeNode struct {
	child [4]*qTreeNode
	leaf  *qTreeLeaf
}

func childIndex(x, y uint16, bit uint) int {
	return int(((x>>bit)&1)<<1 | (y>>bit)&1)
}

// getLeaf descends to the leaf covering (x, y), or nil.
func (n *qTreeNode) getLeaf(x, y uint16) *qTreeLeaf {
	node := n
	bit := uint(15)
	for node != nil {
		if node.leaf != nil {
			return node.leaf
		}
		node = node.child[childIndex(x, y, bit)]
		bit--
	}
	return nil
}

// createLeaf descends to the leaf covering (x, y), creating intermediate
// nodes and the leaf on first write.
func (n *qTreeNode) createLeaf(x, y uint16) *qTreeLeaf {
	node := n
	for bit := uint(15); bit >= floorBits; bit-- {
		idx := childIndex(x, y, bit)
		if node.child[idx] == nil {
			node.child[idx] = &qTreeNode{}
		}
		node = node.child[idx]
	}
	if node.leaf == nil {
		node.leaf = &qTreeLeaf{}
	}
	return node.leaf
}
