package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionNext(t *testing.T) {
	start := Position{X: 100, Y: 100, Z: 7}

	tests := []struct {
		dir  Direction
		want Position
	}{
		{North, Position{X: 100, Y: 99, Z: 7}},
		{East, Position{X: 101, Y: 100, Z: 7}},
		{South, Position{X: 100, Y: 101, Z: 7}},
		{West, Position{X: 99, Y: 100, Z: 7}},
		{NorthEast, Position{X: 101, Y: 99, Z: 7}},
		{NorthWest, Position{X: 99, Y: 99, Z: 7}},
		{SouthEast, Position{X: 101, Y: 101, Z: 7}},
		{SouthWest, Position{X: 99, Y: 101, Z: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, start.Next(tt.dir))
		})
	}

	assert.Equal(t, start, start.Next(DirectionNone), "none keeps the position")
}

func TestDirectionTo(t *testing.T) {
	from := Position{X: 100, Y: 100, Z: 7}

	assert.Equal(t, North, from.DirectionTo(Position{X: 100, Y: 90, Z: 7}))
	assert.Equal(t, South, from.DirectionTo(Position{X: 100, Y: 110, Z: 7}))
	assert.Equal(t, East, from.DirectionTo(Position{X: 110, Y: 100, Z: 7}))
	assert.Equal(t, West, from.DirectionTo(Position{X: 90, Y: 100, Z: 7}))
	assert.Equal(t, NorthEast, from.DirectionTo(Position{X: 101, Y: 99, Z: 7}))
	assert.Equal(t, SouthWest, from.DirectionTo(Position{X: 95, Y: 105, Z: 7}))
	assert.Equal(t, DirectionNone, from.DirectionTo(from))
}

func TestIsDiagonal(t *testing.T) {
	for dir := North; dir <= West; dir++ {
		assert.False(t, dir.IsDiagonal(), dir.String())
	}
	for dir := SouthWest; dir <= NorthEast; dir++ {
		assert.True(t, dir.IsDiagonal(), dir.String())
	}
}

func TestInRange(t *testing.T) {
	base := Position{X: 100, Y: 100, Z: 7}

	assert.True(t, base.InRange(Position{X: 101, Y: 99, Z: 7}, 1, 1, 0))
	assert.False(t, base.InRange(Position{X: 102, Y: 100, Z: 7}, 1, 1, 0))
	assert.False(t, base.InRange(Position{X: 100, Y: 100, Z: 8}, 1, 1, 0), "floor mismatch")
	assert.True(t, base.InRange(Position{X: 100, Y: 100, Z: 8}, 1, 1, 1))

	assert.True(t, base.InSameFloorRange(Position{X: 103, Y: 98, Z: 7}, 3, 2))
	assert.False(t, base.InSameFloorRange(Position{X: 103, Y: 98, Z: 6}, 3, 2))
}

func TestDistances(t *testing.T) {
	a := Position{X: 10, Y: 20, Z: 7}
	b := Position{X: 13, Y: 16, Z: 9}

	assert.Equal(t, 3, a.DistanceX(b))
	assert.Equal(t, 4, a.DistanceY(b))
	assert.Equal(t, 2, a.DistanceZ(b))
	assert.Equal(t, 3, b.DistanceX(a), "symmetric")
}

func TestNoPosSentinel(t *testing.T) {
	assert.False(t, Position{X: NoPos}.IsMapPosition())
	assert.True(t, Position{X: 0, Y: 0, Z: 0}.IsMapPosition())
}
