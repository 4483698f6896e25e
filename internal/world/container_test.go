package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(tb testing.TB, g *Game, id uint16) *Container {
	tb.Helper()
	item := newItem(tb, g, id, 0)
	c := item.Container()
	require.NotNil(tb, c, "type %d is not a container", id)
	return c
}

func TestContainerCapacity(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	crate := newContainer(t, g, idCrate) // one slot

	sword := newItem(t, g, idSword, 0)
	assert.True(t, crate.QueryAdd(IndexWherever, sword, 1, 0, nil).OK())
	crate.AddThing(IndexWherever, sword)

	assert.True(t, crate.IsFull())
	helmet := newItem(t, g, idHelmet, 0)
	assert.Equal(t, RetContainerNotEnoughRoom, crate.QueryAdd(IndexWherever, helmet, 1, 0, nil))
	assert.True(t, crate.QueryAdd(IndexWherever, helmet, 1, FlagNoLimit, nil).OK())
}

func TestContainerRejectsNonPickupable(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	bp := newContainer(t, g, idBackpack)

	door := newItem(t, g, idDoorShut, 0)
	assert.Equal(t, RetNotPossible, bp.QueryAdd(IndexWherever, door, 1, 0, nil))
}

func TestContainerRejectsSelfNesting(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	outer := newContainer(t, g, idBackpack)
	inner := newContainer(t, g, idParcel)
	outer.AddThing(IndexWherever, &inner.Item)

	assert.Equal(t, RetThisIsImpossible, outer.QueryAdd(IndexWherever, &outer.Item, 1, 0, nil), "container into itself")
	assert.Equal(t, RetThisIsImpossible, inner.QueryAdd(IndexWherever, &outer.Item, 1, 0, nil), "parent into child")
}

func TestContainerFullMergesStacks(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	crate := newContainer(t, g, idCrate)
	crate.AddThing(IndexWherever, newItem(t, g, idGold, 70))
	require.True(t, crate.IsFull())

	gold := newItem(t, g, idGold, 20)
	assert.True(t, crate.QueryAdd(IndexWherever, gold, 20, 0, nil).OK(), "merge room remains")

	crate.ItemByIndex(0).SetCount(StackMax)
	assert.Equal(t, RetContainerNotEnoughRoom, crate.QueryAdd(IndexWherever, gold, 20, 0, nil))
}

func TestContainerQueryMaxCount(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	bp := newContainer(t, g, idBackpack) // 20 slots
	bp.AddThing(IndexWherever, newItem(t, g, idGold, 60))
	bp.AddThing(IndexWherever, newItem(t, g, idSword, 0))

	gold := newItem(t, g, idGold, 50)
	ret, room := bp.QueryMaxCount(IndexWherever, gold, 50, 0)
	assert.True(t, ret.OK())
	assert.Equal(t, uint32(50), room)

	// 18 free slots plus 40 merge headroom.
	ret, room = bp.QueryMaxCount(IndexWherever, gold, 5000, 0)
	assert.True(t, ret.OK())
	assert.Equal(t, uint32(18*StackMax+40), room)

	sword := newItem(t, g, idSword, 0)
	ret, room = bp.QueryMaxCount(IndexWherever, sword, 1, 0)
	assert.True(t, ret.OK())
	assert.Equal(t, uint32(1), room)

	crate := newContainer(t, g, idCrate)
	crate.AddThing(IndexWherever, newItem(t, g, idSword, 0))
	ret, room = crate.QueryMaxCount(IndexWherever, sword, 1, 0)
	assert.Equal(t, RetContainerNotEnoughRoom, ret)
	assert.Zero(t, room)
}

func TestContainerQueryDestinationDescends(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	outer := newContainer(t, g, idBackpack)
	inner := newContainer(t, g, idParcel)
	outer.AddThing(IndexWherever, &inner.Item)

	// Dropping onto the nested container's slot descends into it.
	index := outer.ThingIndex(&inner.Item)
	sword := newItem(t, g, idSword, 0)
	cyl, dest := outer.QueryDestination(&index, sword, 0)
	assert.Equal(t, Cylinder(inner), cyl)
	assert.Nil(t, dest)
	assert.Equal(t, IndexWherever, index)

	// Stackables resolve to the first merge candidate.
	outer.AddThing(IndexWherever, newItem(t, g, idGold, 30))
	index = IndexWherever
	gold := newItem(t, g, idGold, 10)
	cyl, dest = outer.QueryDestination(&index, gold, 0)
	assert.Equal(t, Cylinder(outer), cyl)
	require.NotNil(t, dest)
	assert.Equal(t, uint32(30), dest.Count())
	assert.Equal(t, outer.ThingIndex(dest), index)
}

func TestContainerRemovePartial(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	bp := newContainer(t, g, idBackpack)
	gold := newItem(t, g, idGold, 80)
	bp.AddThing(IndexWherever, gold)

	bp.RemoveThing(gold, 30)
	assert.Equal(t, uint32(50), gold.Count())
	assert.Equal(t, 1, bp.Size())

	bp.RemoveThing(gold, 50)
	assert.Zero(t, bp.Size())
	assert.Nil(t, gold.Parent())
}

func TestContainerTotalsAndWeight(t *testing.T) {
	g := newTestGame(t, GameConfig{})
	bp := newContainer(t, g, idBackpack)
	inner := newContainer(t, g, idParcel)
	inner.InternalAddThing(IndexWherever, newItem(t, g, idGold, 50))
	bp.InternalAddThing(IndexWherever, &inner.Item)
	bp.InternalAddThing(IndexWherever, newItem(t, g, idSword, 0))

	assert.Equal(t, 3, bp.TotalItemCount(), "nested items count")
	assert.Equal(t, uint32(50), bp.ItemTypeCount(idGold, -1), "counts into nested containers")
	assert.Equal(t, uint32(1800+1500+50*10+2500), bp.HoldingWeight())
}
