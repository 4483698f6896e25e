package world

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/otgo/server/internal/core/event"
	"github.com/otgo/server/internal/data"
)

// Template ids shared by the package tests. They mirror the shipped
// data/items.yaml so test expectations read like real gameplay.
const (
	idGrass         uint16 = 100
	idStone         uint16 = 101
	idSwamp         uint16 = 102
	idLadder        uint16 = 410
	idHole          uint16 = 411
	idStairsN       uint16 = 412
	idWall          uint16 = 1025
	idTeleport      uint16 = 1387
	idFire          uint16 = 1492
	idFireDim       uint16 = 1493
	idBackpack      uint16 = 1988
	idCrate         uint16 = 1990
	idTorch         uint16 = 2050
	idTorchOut      uint16 = 2051
	idGold          uint16 = 2148
	idSword         uint16 = 2376
	idTwoHand       uint16 = 2377
	idHelmet        uint16 = 2461
	idShield        uint16 = 2509
	idDepot         uint16 = 2589
	idMailbox       uint16 = 2593
	idParcel        uint16 = 2595
	idParcelStamped uint16 = 2596
	idLabel         uint16 = 2597
	idLabelStamped  uint16 = 2598
	idApple         uint16 = 2674
	idDoorShut      uint16 = 1209
	idDoorOpen      uint16 = 1211
)

// testTypes builds a synthetic template table equivalent to what the YAML
// loader would produce for the same definitions.
func testTypes() *data.ItemTypeTable {
	table := data.NewItemTypeTable()
	reg := func(it data.ItemType) {
		copied := it
		table.Register(&copied)
	}

	reg(data.ItemType{ID: idGrass, Name: "grass", IsGroundTile: true, Moveable: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idStone, Name: "stone floor", IsGroundTile: true, Moveable: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idSwamp, Name: "swamp", IsGroundTile: true, Moveable: true, WalkCost: 25, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idLadder, Name: "ladder", FloorChangeKind: data.FloorChangeUp, AlwaysOnTop: true, TopOrder: 2, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idHole, Name: "hole", FloorChangeKind: data.FloorChangeDown, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idStairsN, Name: "stairs", FloorChangeKind: data.FloorChangeNorth, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idWall, Name: "stone wall", BlockSolid: true, BlockProjectile: true, BlockPathFind: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idTeleport, Name: "magic forcefield", Kind: data.KindTeleport, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idFire, Name: "fire field", Kind: data.KindMagicField, Moveable: true, Duration: 120, DecayTo: int(idFireDim), WalkCost: 60, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idFireDim, Name: "dying fire field", Kind: data.KindMagicField, Moveable: true, Duration: 60, DecayTo: 0, WalkCost: 30, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idBackpack, Name: "backpack", Kind: data.KindContainer, ContainerSize: 20, Weight: 1800, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosBackpack})
	reg(data.ItemType{ID: idCrate, Name: "crate", Kind: data.KindContainer, ContainerSize: 1, Weight: 2000, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idParcel, Name: "parcel", Kind: data.KindContainer, ContainerSize: 10, Weight: 1500, Moveable: true, Pickupable: true, TransformTo: idParcelStamped, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idParcelStamped, Name: "stamped parcel", Kind: data.KindContainer, ContainerSize: 10, Weight: 1500, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idTorch, Name: "torch", Weight: 500, Moveable: true, Pickupable: true, Duration: 600, DecayTo: int(idTorchOut), SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idTorchOut, Name: "burnt torch", Weight: 500, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idGold, Name: "gold coin", Weight: 10, Moveable: true, Pickupable: true, Stackable: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idApple, Name: "red apple", Weight: 200, Moveable: true, Pickupable: true, Stackable: true, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idSword, Name: "sword", Weight: 2500, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosHand, WeaponType: data.WeaponSword})
	reg(data.ItemType{ID: idTwoHand, Name: "two handed sword", Weight: 7000, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosTwoHand | data.SlotPosHand, WeaponType: data.WeaponSword})
	reg(data.ItemType{ID: idHelmet, Name: "leather helmet", Weight: 2200, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosHead})
	reg(data.ItemType{ID: idShield, Name: "wooden shield", Weight: 4000, Moveable: true, Pickupable: true, SlotPosition: data.SlotPosHand, WeaponType: data.WeaponShield})

	reg(data.ItemType{ID: idDepot, Name: "locker", Kind: data.KindDepot, ContainerSize: 30, BlockSolid: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idMailbox, Name: "mailbox", Kind: data.KindMailbox, BlockSolid: true, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idLabel, Name: "label", Weight: 10, Moveable: true, Pickupable: true, CanReadText: true, CanWriteText: true, MaxTextLen: 128, TransformTo: idLabelStamped, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idLabelStamped, Name: "stamped label", Weight: 10, Moveable: true, Pickupable: true, CanReadText: true, MaxTextLen: 128, SlotPosition: data.SlotPosWherever})

	reg(data.ItemType{ID: idDoorShut, Name: "closed door", Kind: data.KindDoor, BlockSolid: true, BlockPathFind: true, TransformTo: idDoorOpen, SlotPosition: data.SlotPosWherever})
	reg(data.ItemType{ID: idDoorOpen, Name: "open door", Kind: data.KindDoor, AlwaysOnTop: true, TopOrder: 3, TransformTo: idDoorShut, SlotPosition: data.SlotPosWherever})

	return table
}

// newTestGame builds an engine over an empty map. Callers lay tiles with
// addGround / addGroundType before placing anything.
func newTestGame(tb testing.TB, cfg GameConfig) *Game {
	tb.Helper()
	if cfg.DepotLockerID == 0 {
		cfg.DepotLockerID = idDepot
	}
	return NewGame(zap.NewNop(), event.NewBus(), NewMap(), testTypes(), cfg)
}

// addGround attaches a grass tile at a position.
func addGround(g *Game, x, y uint16, z uint8) *Tile {
	return addGroundType(g, idGrass, x, y, z)
}

// addGroundType attaches a tile with the given ground template.
func addGroundType(g *Game, groundID uint16, x, y uint16, z uint8) *Tile {
	t := NewTile(Position{X: x, Y: y, Z: z})
	t.SetGround(g.Factory().New(groundID, 0))
	g.Map().SetTile(t)
	return t
}

// addField lays a rectangle of grass tiles on one floor.
func addField(g *Game, x0, y0, x1, y1 uint16, z uint8) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			addGround(g, x, y, z)
		}
	}
}

// placePlayer creates a player and puts it on the map.
func placePlayer(tb testing.TB, g *Game, name string, pos Position) *Player {
	tb.Helper()
	id := g.NextCreatureID()
	p := NewPlayer(id, id, name)
	require.True(tb, g.AddPlayer(p, pos).OK(), "place player %s at %v", name, pos)
	return p
}

// newItem builds a detached item.
func newItem(tb testing.TB, g *Game, id uint16, count uint16) *Item {
	tb.Helper()
	it := g.Factory().New(id, count)
	require.NotNil(tb, it, "unknown test item type %d", id)
	return it
}

// drainEvents swaps and dispatches the bus so subscribers see everything
// emitted so far.
func drainEvents(bus *event.Bus) {
	bus.SwapBuffers()
	bus.DispatchAll()
}
