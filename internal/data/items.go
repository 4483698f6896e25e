package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemKind selects the logical item subclass built by the item factory.
type ItemKind int

const (
	KindPlain ItemKind = iota
	KindContainer
	KindDepot
	KindMailbox
	KindDoor
	KindBed
	KindTeleport
	KindMagicField
)

// kindMap maps YAML kind strings to ItemKind values.
var kindMap = map[string]ItemKind{
	"":           KindPlain,
	"plain":      KindPlain,
	"container":  KindContainer,
	"depot":      KindDepot,
	"mailbox":    KindMailbox,
	"door":       KindDoor,
	"bed":        KindBed,
	"teleport":   KindTeleport,
	"magicfield": KindMagicField,
}

// WeaponType classifies equippable weapons for hand-slot legality.
type WeaponType int

const (
	WeaponNone WeaponType = iota
	WeaponSword
	WeaponClub
	WeaponAxe
	WeaponDistance
	WeaponWand
	WeaponShield
	WeaponAmmo
)

var weaponMap = map[string]WeaponType{
	"":         WeaponNone,
	"none":     WeaponNone,
	"sword":    WeaponSword,
	"club":     WeaponClub,
	"axe":      WeaponAxe,
	"distance": WeaponDistance,
	"wand":     WeaponWand,
	"shield":   WeaponShield,
	"ammo":     WeaponAmmo,
}

// Slot position bitmask for equippable items. An item's SlotPosition may set
// several bits (e.g. a ring fits either ring slot via SlotPosRing).
const (
	SlotPosNone     uint32 = 0
	SlotPosHead     uint32 = 1 << 0
	SlotPosNecklace uint32 = 1 << 1
	SlotPosBackpack uint32 = 1 << 2
	SlotPosArmor    uint32 = 1 << 3
	SlotPosRight    uint32 = 1 << 4
	SlotPosLeft     uint32 = 1 << 5
	SlotPosLegs     uint32 = 1 << 6
	SlotPosFeet     uint32 = 1 << 7
	SlotPosRing     uint32 = 1 << 8
	SlotPosAmmo     uint32 = 1 << 9
	SlotPosTwoHand  uint32 = 1 << 10
	SlotPosHand     uint32 = SlotPosRight | SlotPosLeft
	SlotPosWherever uint32 = ^uint32(0)
)

var slotMap = map[string]uint32{
	"":         SlotPosWherever,
	"wherever": SlotPosWherever,
	"head":     SlotPosHead,
	"necklace": SlotPosNecklace,
	"backpack": SlotPosBackpack,
	"armor":    SlotPosArmor,
	"hand":     SlotPosHand,
	"legs":     SlotPosLegs,
	"feet":     SlotPosFeet,
	"ring":     SlotPosRing,
	"ammo":     SlotPosAmmo,
	"two-handed": SlotPosTwoHand | SlotPosHand,
}

// FluidType is the subtype interpretation for fluid containers and splashes.
type FluidType int

const (
	FluidNone FluidType = iota
	FluidWater
	FluidBlood
	FluidBeer
	FluidSlime
	FluidLemonade
	FluidMilk
	FluidManaPotion
	FluidLifePotion
	FluidOil
	FluidUrine
	FluidWine
	FluidMud
)

// FloorChange directions for stairs/holes/ladders.
type FloorChange int

const (
	FloorChangeNone FloorChange = iota
	FloorChangeUp
	FloorChangeDown
	FloorChangeNorth
	FloorChangeSouth
	FloorChangeEast
	FloorChangeWest
)

var floorChangeMap = map[string]FloorChange{
	"":      FloorChangeNone,
	"up":    FloorChangeUp,
	"down":  FloorChangeDown,
	"north": FloorChangeNorth,
	"south": FloorChangeSouth,
	"east":  FloorChangeEast,
	"west":  FloorChangeWest,
}

// ItemType is one immutable item template. The subtype field of an item
// instance is interpreted entirely through these flags: stack count when
// Stackable, charge count when Charges > 0, fluid type for fluid containers.
type ItemType struct {
	ID     uint16
	Name   string
	Plural string
	Kind   ItemKind

	// Weight per unit, in hundredths of an ounce.
	Weight uint32

	// Static tile/stacking behaviour.
	BlockSolid      bool
	BlockProjectile bool
	BlockPathFind   bool
	AlwaysOnTop     bool
	TopOrder        int // 1=border, 2=ladder/hole edge, 3=doors/top decor
	IsGroundTile    bool
	Moveable        bool
	Pickupable      bool
	Stackable       bool
	Hangable        bool
	HookSouth       bool
	HookEast        bool
	ForceUse        bool
	CanReadText     bool
	CanWriteText    bool
	MaxTextLen      int

	// Equip behaviour.
	SlotPosition uint32
	WeaponType   WeaponType
	WieldInfo    string // vocation/level gate description, checked by scripts

	// Container behaviour.
	ContainerSize int

	// Charges / fluids.
	Charges   uint32
	FluidKind FluidType

	// Decay.
	Duration int // seconds; 0 = never decays
	DecayTo  int // item id to transform into, 0 = vanish, -1 = no transform

	// Transform pairs (doors open/close, beds free/occupied).
	TransformTo   uint16
	TransformPair uint16 // bed head/foot counterpart

	// Light emitted while on a tile or held.
	LightLevel int
	LightColor int

	FloorChangeKind FloorChange

	// Walk-cost bias added per tile for the path search (fields, hazards).
	WalkCost int
}

// IsFluidContainer reports whether the subtype stores a FluidType.
func (it *ItemType) IsFluidContainer() bool { return it.FluidKind != FluidNone }

// HasSubType reports whether the instance subtype field carries meaning.
func (it *ItemType) HasSubType() bool {
	return it.Stackable || it.Charges > 0 || it.IsFluidContainer()
}

// itemTypeYAML is the on-disk shape of one template entry.
type itemTypeYAML struct {
	ID              uint16 `yaml:"id"`
	Name            string `yaml:"name"`
	Plural          string `yaml:"plural"`
	Kind            string `yaml:"kind"`
	Weight          uint32 `yaml:"weight"`
	BlockSolid      bool   `yaml:"block_solid"`
	BlockProjectile bool   `yaml:"block_projectile"`
	BlockPathFind   bool   `yaml:"block_pathfind"`
	AlwaysOnTop     bool   `yaml:"always_on_top"`
	TopOrder        int    `yaml:"top_order"`
	Ground          bool   `yaml:"ground"`
	NotMoveable     bool   `yaml:"not_moveable"`
	Pickupable      bool   `yaml:"pickupable"`
	Stackable       bool   `yaml:"stackable"`
	Hangable        bool   `yaml:"hangable"`
	HookSouth       bool   `yaml:"hook_south"`
	HookEast        bool   `yaml:"hook_east"`
	Readable        bool   `yaml:"readable"`
	Writeable       bool   `yaml:"writeable"`
	MaxTextLen      int    `yaml:"max_text_len"`
	Slot            string `yaml:"slot"`
	Weapon          string `yaml:"weapon"`
	WieldInfo       string `yaml:"wield_info"`
	ContainerSize   int    `yaml:"container_size"`
	Charges         uint32 `yaml:"charges"`
	Fluid           bool   `yaml:"fluid_container"`
	Duration        int    `yaml:"duration"`
	DecayTo         int    `yaml:"decay_to"`
	TransformTo     uint16 `yaml:"transform_to"`
	TransformPair   uint16 `yaml:"transform_pair"`
	LightLevel      int    `yaml:"light_level"`
	LightColor      int    `yaml:"light_color"`
	FloorChange     string `yaml:"floor_change"`
	WalkCost        int    `yaml:"walk_cost"`
}

type itemFileYAML struct {
	Items []itemTypeYAML `yaml:"items"`
}

// ItemTypeTable holds all item templates indexed densely by id.
type ItemTypeTable struct {
	byID  []*ItemType
	count int
}

// Get returns the template for an id, or nil.
func (t *ItemTypeTable) Get(id uint16) *ItemType {
	if int(id) >= len(t.byID) {
		return nil
	}
	return t.byID[id]
}

// Count returns the number of loaded templates.
func (t *ItemTypeTable) Count() int { return t.count }

// Register inserts a template, growing the dense index as needed.
// Exposed for tests that build small synthetic tables.
func (t *ItemTypeTable) Register(it *ItemType) {
	for int(it.ID) >= len(t.byID) {
		t.byID = append(t.byID, nil)
	}
	if t.byID[it.ID] == nil {
		t.count++
	}
	t.byID[it.ID] = it
}

// NewItemTypeTable creates an empty table.
func NewItemTypeTable() *ItemTypeTable {
	return &ItemTypeTable{byID: make([]*ItemType, 0, 4096)}
}

// LoadItemTypes loads the item template table from a YAML file.
func LoadItemTypes(path string) (*ItemTypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read item types %s: %w", path, err)
	}
	var file itemFileYAML
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse item types: %w", err)
	}

	table := NewItemTypeTable()
	for _, y := range file.Items {
		if y.ID == 0 {
			continue
		}
		it := &ItemType{
			ID:              y.ID,
			Name:            y.Name,
			Plural:          y.Plural,
			Kind:            kindMap[y.Kind],
			Weight:          y.Weight,
			BlockSolid:      y.BlockSolid,
			BlockProjectile: y.BlockProjectile,
			BlockPathFind:   y.BlockPathFind,
			AlwaysOnTop:     y.AlwaysOnTop,
			TopOrder:        y.TopOrder,
			IsGroundTile:    y.Ground,
			Moveable:        !y.NotMoveable,
			Pickupable:      y.Pickupable,
			Stackable:       y.Stackable,
			Hangable:        y.Hangable,
			HookSouth:       y.HookSouth,
			HookEast:        y.HookEast,
			CanReadText:     y.Readable,
			CanWriteText:    y.Writeable,
			MaxTextLen:      y.MaxTextLen,
			SlotPosition:    slotFromYAML(y.Slot),
			WeaponType:      weaponMap[y.Weapon],
			WieldInfo:       y.WieldInfo,
			ContainerSize:   y.ContainerSize,
			Charges:         y.Charges,
			Duration:        y.Duration,
			DecayTo:         y.DecayTo,
			TransformTo:     y.TransformTo,
			TransformPair:   y.TransformPair,
			LightLevel:      y.LightLevel,
			LightColor:      y.LightColor,
			FloorChangeKind: floorChangeMap[y.FloorChange],
			WalkCost:        y.WalkCost,
		}
		if y.Fluid {
			it.FluidKind = FluidWater
		}
		// Doors and beds are fixtures regardless of YAML.
		if it.Kind == KindDoor || it.Kind == KindBed {
			it.Moveable = false
		}
		table.Register(it)
	}
	return table, nil
}

func slotFromYAML(s string) uint32 {
	if v, ok := slotMap[s]; ok {
		return v
	}
	return SlotPosWherever
}
