package world

import "container/heap"

// Walk costs. Diagonal steps cost two and a half straight steps, which
// keeps paths visually natural without floating point.
const (
	walkCostStraight = 10
	walkCostDiagonal = 25

	// pathMaxNodes bounds the search; a blocked-in target fails fast
	// instead of flooding the map.
	pathMaxNodes = 512
)

// PathOptions tune a path search.
type PathOptions struct {
	// MinTargetDist/MaxTargetDist accept any end tile within this Chebyshev
	// distance band around the target (ranged attackers keep distance).
	MinTargetDist int
	MaxTargetDist int

	// ClearSight requires line of sight from the end tile to the target.
	ClearSight bool

	// MaxSearchDist caps how far from the start the search may wander.
	// Zero means unlimited (within the node budget).
	MaxSearchDist int

	// IgnoreCreature treats one blocking creature as absent, so a chase
	// can route onto the tile its target stands on.
	IgnoreCreature Creature
}

type pathNode struct {
	pos    Position
	parent *pathNode
	dir    Direction // step taken from parent
	g      int       // accumulated cost
	f      int       // g + heuristic
	open   bool
	index  int // heap position
}

type pathHeap []*pathNode

func (h pathHeap) Len() int           { return len(h) }
func (h pathHeap) Less(i, j int) bool { return h[i].f < h[j].f }
func (h pathHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *pathHeap) Push(x any)        { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *pathHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

func chebyshev(a, b Position) int {
	dx := a.DistanceX(b)
	dy := a.DistanceY(b)
	if dx > dy {
		return dx
	}
	return dy
}

// FindPath searches for a walkable route from the creature to the target
// position on the same floor. The result is the direction sequence to walk;
// ok is false when no route exists within the node budget.
func (g *Game) FindPath(c Creature, target Position, opts PathOptions) ([]Direction, bool) {
	start := c.MapPosition()
	if !start.IsMapPosition() || start.Z != target.Z {
		return nil, false
	}
	if opts.MaxTargetDist <= 0 {
		opts.MaxTargetDist = opts.MinTargetDist
	}

	atGoal := func(pos Position) bool {
		d := chebyshev(pos, target)
		if d < opts.MinTargetDist || d > opts.MaxTargetDist {
			return false
		}
		if opts.ClearSight && !g.world.IsSightClear(pos, target, true) {
			return false
		}
		return true
	}
	if atGoal(start) {
		return nil, true
	}

	nodes := make(map[Position]*pathNode, pathMaxNodes)
	open := &pathHeap{}
	heap.Init(open)

	startNode := &pathNode{pos: start, dir: DirectionNone, f: chebyshev(start, target) * walkCostStraight, open: true}
	nodes[start] = startNode
	heap.Push(open, startNode)

	for open.Len() > 0 && len(nodes) < pathMaxNodes {
		current := heap.Pop(open).(*pathNode)
		current.open = false

		if atGoal(current.pos) {
			return rebuildPath(current), true
		}

		for dir := North; dir <= NorthEast; dir++ {
			next := current.pos.Next(dir)
			if next == current.pos {
				continue
			}
			if opts.MaxSearchDist > 0 && chebyshev(start, next) > opts.MaxSearchDist {
				continue
			}

			stepCost := walkCostStraight
			if dir.IsDiagonal() {
				stepCost = walkCostDiagonal
			}

			tile := g.world.TileAt(next)
			if tile == nil {
				continue
			}
			// The goal band may include tiles the creature cannot stand on;
			// everything on the way must pass the walk check.
			ret := tile.QueryAdd(0, c, 1, FlagPathfinding|FlagIgnoreFieldDamage, nil)
			if ret == RetNotEnoughRoom && opts.IgnoreCreature != nil &&
				tile.BlockingCreature(c) == opts.IgnoreCreature {
				ret = tile.QueryAdd(0, c, 1, FlagPathfinding|FlagIgnoreFieldDamage|FlagIgnoreBlockCreature, nil)
			}
			if ret != RetNoError {
				continue
			}
			stepCost += tileWalkCost(tile)

			tentative := current.g + stepCost
			node, seen := nodes[next]
			if seen && tentative >= node.g {
				continue
			}
			if !seen {
				if len(nodes) >= pathMaxNodes {
					continue
				}
				node = &pathNode{pos: next}
				nodes[next] = node
			}
			node.parent = current
			node.dir = dir
			node.g = tentative
			node.f = tentative + chebyshev(next, target)*walkCostStraight
			if node.open {
				heap.Fix(open, node.index)
			} else {
				node.open = true
				heap.Push(open, node)
			}
		}
	}
	return nil, false
}

// tileWalkCost sums the avoidance bias of the items on a tile.
func tileWalkCost(t *Tile) int {
	cost := 0
	if g := t.Ground(); g != nil {
		cost += g.Type().WalkCost
	}
	for _, it := range t.DownItems() {
		cost += it.Type().WalkCost
	}
	return cost
}

func rebuildPath(end *pathNode) []Direction {
	n := 0
	for node := end; node.parent != nil; node = node.parent {
		n++
	}
	dirs := make([]Direction, n)
	for node := end; node.parent != nil; node = node.parent {
		n--
		dirs[n] = node.dir
	}
	return dirs
}
