package world

import "fmt"

// Floor layout constants. z <= 7 is the surface stack, z > 7 is underground.
const (
	MapMaxLayers  = 16
	GroundLayer   = 7
	UndergroundZ  = 8
	MaxZ          = 15
)

// NoPos is the reserved x sentinel meaning "not a map position"
// (inventory/container addressing uses it).
const NoPos uint16 = 0xFFFF

// Direction is one of the 8 movement headings.
type Direction int

const (
	North Direction = iota
	East
	South
	West
	SouthWest
	SouthEast
	NorthWest
	NorthEast
	DirectionNone
)

func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case SouthWest:
		return "southwest"
	case SouthEast:
		return "southeast"
	case NorthWest:
		return "northwest"
	case NorthEast:
		return "northeast"
	}
	return "none"
}

// IsDiagonal reports whether the direction moves on both axes.
func (d Direction) IsDiagonal() bool {
	switch d {
	case SouthWest, SouthEast, NorthWest, NorthEast:
		return true
	}
	return false
}

// Position is an immutable 3-D map coordinate.
type Position struct {
	X uint16
	Y uint16
	Z uint8
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// IsMapPosition reports whether p addresses a real tile (not an
// inventory/container slot).
func (p Position) IsMapPosition() bool {
	return p.X != NoPos
}

func absDelta(a, b uint16) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// DistanceX returns |a.x - b.x|.
func (p Position) DistanceX(o Position) int { return absDelta(p.X, o.X) }

// DistanceY returns |a.y - b.y|.
func (p Position) DistanceY(o Position) int { return absDelta(p.Y, o.Y) }

// DistanceZ returns |a.z - b.z|.
func (p Position) DistanceZ(o Position) int {
	if p.Z > o.Z {
		return int(p.Z - o.Z)
	}
	return int(o.Z - p.Z)
}

// InRange reports whether o lies within the given rectangular range of p,
// with an independently configurable floor tolerance.
func (p Position) InRange(o Position, dx, dy, dz int) bool {
	return p.DistanceX(o) <= dx && p.DistanceY(o) <= dy && p.DistanceZ(o) <= dz
}

// InSameFloorRange is InRange with dz = 0.
func (p Position) InSameFloorRange(o Position, dx, dy int) bool {
	return p.Z == o.Z && p.DistanceX(o) <= dx && p.DistanceY(o) <= dy
}

// directionDX/directionDY hold the unit vector per heading.
var directionDX = [8]int{0, 1, 0, -1, -1, 1, -1, 1}
var directionDY = [8]int{-1, 0, 1, 0, 1, 1, -1, -1}

// Next returns the neighbouring position one step in the given direction.
// Out-of-range directions return p unchanged.
func (p Position) Next(dir Direction) Position {
	if dir < North || dir > NorthEast {
		return p
	}
	n := p
	n.X = uint16(int(n.X) + directionDX[dir])
	n.Y = uint16(int(n.Y) + directionDY[dir])
	return n
}

// DirectionTo returns the dominant heading from p towards o.
func (p Position) DirectionTo(o Position) Direction {
	dx := int(o.X) - int(p.X)
	dy := int(o.Y) - int(p.Y)
	switch {
	case dx < 0 && dy < 0:
		return NorthWest
	case dx > 0 && dy < 0:
		return NorthEast
	case dx < 0 && dy > 0:
		return SouthWest
	case dx > 0 && dy > 0:
		return SouthEast
	case dx < 0:
		return West
	case dx > 0:
		return East
	case dy < 0:
		return North
	case dy > 0:
		return South
	}
	return DirectionNone
}
