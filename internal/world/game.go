package world

import (
	"strings"

	"go.uber.org/zap"

	"github.com/otgo/server/internal/core/event"
	"github.com/otgo/server/internal/data"
)

// StackingPolicy selects how partial stack moves behave.
type StackingPolicy int

const (
	// StackingModern merges into the target stack and places the overflow
	// as a fresh stack at the destination.
	StackingModern StackingPolicy = iota
	// StackingOldschool merges only what fits; the overflow stays at the
	// source.
	StackingOldschool
)

// SwapPolicy selects where an exchanged slot item goes.
type SwapPolicy int

const (
	// SwapModern parks the displaced item anywhere the actor can hold it
	// when the source cannot take it back.
	SwapModern SwapPolicy = iota
	// SwapClassic requires the source cylinder to accept the displaced
	// item, failing the move otherwise.
	SwapClassic
)

// Hooks are the scripted interception points around movement. Pre-hooks
// veto by returning a failure value before any mutation happens.
type Hooks interface {
	OnItemMove(actor Creature, item *Item, from, to Cylinder, count uint32) ReturnValue
	OnItemMoved(actor Creature, item *Item, from, to Cylinder, count uint32)
	OnCreatureMove(c Creature, from, to *Tile) ReturnValue
	OnCreatureMoved(c Creature, from, to *Tile)
}

// DepotResolver loads and saves characters who are not online, so mail can
// land in an offline recipient's depot. Wired to the persistence layer.
type DepotResolver interface {
	// LoadPlayer returns a detached player with depots attached, or false
	// when no such character exists.
	LoadPlayer(name string) (*Player, bool)
	// SavePlayer writes the player's depots back.
	SavePlayer(p *Player) error
}

// GameConfig carries the gameplay policy knobs read from the config file.
type GameConfig struct {
	Stacking      StackingPolicy
	Swap          SwapPolicy
	DepotLockerID uint16
	MaxDepotItems int
	TileItemLimit int
}

// Game is the transactional move engine over the cylinder contract. All
// methods run on the game goroutine; nothing here locks.
type Game struct {
	log     *zap.Logger
	bus     *event.Bus
	world   *Map
	types   *data.ItemTypeTable
	factory *ItemFactory
	towns   *Towns
	houses  map[uint32]*House

	players       map[uint32]*Player
	playersByName map[string]*Player

	hooks  Hooks
	depots DepotResolver
	cfg    GameConfig

	// Things unlinked this tick stay referenced until the cleanup flush so
	// event consumers never see freed state.
	releasedItems     []*Item
	releasedCreatures []Creature

	decay *decayScheduler

	nextCreatureID uint32
}

// NewGame wires the engine over a map and item table.
func NewGame(log *zap.Logger, bus *event.Bus, m *Map, types *data.ItemTypeTable, cfg GameConfig) *Game {
	if cfg.MaxDepotItems <= 0 {
		cfg.MaxDepotItems = defaultMaxDepotItems
	}
	g := &Game{
		log:           log,
		bus:           bus,
		world:         m,
		types:         types,
		factory:       NewItemFactory(types),
		towns:         NewTowns(),
		houses:        make(map[uint32]*House),
		players:       make(map[uint32]*Player),
		playersByName: make(map[string]*Player),
		cfg:           cfg,
		decay:         newDecayScheduler(),
	}
	if cfg.TileItemLimit > 0 {
		m.SetTileItemLimit(cfg.TileItemLimit)
	}
	return g
}

// Map returns the spatial index.
func (g *Game) Map() *Map { return g.world }

// Config returns the gameplay policy knobs.
func (g *Game) Config() GameConfig { return g.cfg }

// Factory returns the item factory.
func (g *Game) Factory() *ItemFactory { return g.factory }

// Towns returns the town registry.
func (g *Game) Towns() *Towns { return g.towns }

// SetHooks installs the scripted movement hooks.
func (g *Game) SetHooks(h Hooks) { g.hooks = h }

// SetDepotResolver installs the offline character store used for mail.
func (g *Game) SetDepotResolver(r DepotResolver) { g.depots = r }

// AddHouse registers a house.
func (g *Game) AddHouse(h *House) { g.houses[h.ID()] = h }

// HouseByID returns a registered house, or nil.
func (g *Game) HouseByID(id uint32) *House { return g.houses[id] }

// Houses returns the house registry. Callers must not mutate.
func (g *Game) Houses() map[uint32]*House { return g.houses }

// NextCreatureID hands out runtime creature ids.
func (g *Game) NextCreatureID() uint32 {
	g.nextCreatureID++
	return g.nextCreatureID
}

// ── Players ─────────────────────────────────────────────────────────

// AddPlayer places a player on the map and registers it for lookups.
func (g *Game) AddPlayer(p *Player, pos Position) ReturnValue {
	ret := g.world.PlaceCreature(pos, p, true, false)
	if !ret.OK() {
		return ret
	}
	g.players[p.ID()] = p
	g.playersByName[strings.ToLower(p.Name())] = p
	p.SetInventoryListener(g)
	event.Emit(g.bus, CreaturePlacedEvent{Creature: p, Pos: p.MapPosition()})
	return RetNoError
}

// PlayerByID returns an online player, or nil.
func (g *Game) PlayerByID(id uint32) *Player { return g.players[id] }

// Players returns the online player registry. Callers must not mutate.
func (g *Game) Players() map[uint32]*Player { return g.players }

// InventoryChanged flags the player for the next batch save.
func (g *Game) InventoryChanged(p *Player, _ *Item, _ int, _ bool) {
	p.MarkDirty()
}

// PlayerByName returns an online player by case-insensitive name, or nil.
func (g *Game) PlayerByName(name string) *Player {
	return g.playersByName[strings.ToLower(name)]
}

// PlaceCreature puts a monster or npc on the map.
func (g *Game) PlaceCreature(c Creature, pos Position, extended, forced bool) ReturnValue {
	ret := g.world.PlaceCreature(pos, c, extended, forced)
	if !ret.OK() {
		return ret
	}
	if p := c.AsPlayer(); p != nil {
		g.players[p.ID()] = p
		g.playersByName[strings.ToLower(p.Name())] = p
	}
	event.Emit(g.bus, CreaturePlacedEvent{Creature: c, Pos: c.MapPosition()})
	return RetNoError
}

// RemoveCreature takes a creature off the map and defers its release.
func (g *Game) RemoveCreature(c Creature) {
	pos := c.MapPosition()
	g.world.RemoveCreature(c)
	if p := c.AsPlayer(); p != nil {
		delete(g.players, p.ID())
		delete(g.playersByName, strings.ToLower(p.Name()))
	}
	c.IncRef()
	g.releasedCreatures = append(g.releasedCreatures, c)
	event.Emit(g.bus, CreatureRemovedEvent{Creature: c, Pos: pos})
}

// ── Item moves ──────────────────────────────────────────────────────

// MoveItem is the player-facing move: source and destination checks run
// with no bypass flags.
func (g *Game) MoveItem(actor Creature, item *Item, count uint32, toCylinder Cylinder, toIndex int) ReturnValue {
	if item == nil || item.Parent() == nil {
		return RetNotPossible
	}
	return g.internalMoveItem(actor, item.Parent(), toCylinder, toIndex, item, count, nil, 0)
}

// MoveTradedItem is MoveItem for an actor with an open trade offer: the
// destination must not sit inside the offered item.
func (g *Game) MoveTradedItem(actor Creature, item *Item, count uint32, toCylinder Cylinder, toIndex int, tradeItem *Item) ReturnValue {
	if item == nil || item.Parent() == nil {
		return RetNotPossible
	}
	return g.internalMoveItem(actor, item.Parent(), toCylinder, toIndex, item, count, tradeItem, 0)
}

// internalMoveItem moves count units of item between cylinders. Legality
// runs entirely through the five query operations before any mutation; a
// failed check leaves both cylinders untouched. When only part of the
// requested count fits, that part moves and the blocking check's failure
// value is returned.
func (g *Game) internalMoveItem(actor Creature, fromCylinder, toCylinder Cylinder, index int, item *Item, count uint32, tradeItem *Item, flags CylinderFlags) ReturnValue {
	if fromCylinder == nil || toCylinder == nil || item == nil {
		return RetNotPossible
	}
	if count == 0 || (item.IsStackable() && count > item.Count()) || (!item.IsStackable() && count != 1) {
		return RetNotPossible
	}

	if g.hooks != nil {
		if ret := g.hooks.OnItemMove(actor, item, fromCylinder, toCylinder, count); !ret.OK() {
			return ret
		}
	}

	fromPos := item.MapPosition()

	// Resolve the real destination: containers forward to nested targets,
	// tiles through stairs and teleporters, players to a free slot. Bypass
	// flags apply to the first hop only.
	var destItem *Item
	destCylinder := toCylinder
	destFlags := flags
	for hop := 0; hop < MapMaxLayers; hop++ {
		sub, di := destCylinder.QueryDestination(&index, item, destFlags)
		destItem = di
		if sub == destCylinder {
			break
		}
		destCylinder = sub
		destFlags = 0
	}
	toCylinder = destCylinder

	if mb, ok := toCylinder.(*Mailbox); ok {
		return g.deliverMail(actor, mb, fromCylinder, item, count)
	}

	// Dropping a stack onto itself is a successful no-op.
	if item == destItem {
		return RetNoError
	}

	ret := toCylinder.QueryAdd(index, item, count, flags, actor)
	if ret == RetNeedExchange {
		if xret := g.exchangeSlotItem(actor, fromCylinder, toCylinder, index, item, destItem, flags); !xret.OK() {
			return xret
		}
		destItem = nil
		ret = toCylinder.QueryAdd(index, item, count, flags, actor)
	}
	if !ret.OK() {
		return ret
	}

	retMaxCount, maxQueryCount := toCylinder.QueryMaxCount(index, item, count, flags)
	if !retMaxCount.OK() && maxQueryCount == 0 {
		return retMaxCount
	}

	m := count
	if item.IsStackable() {
		m = min(count, maxQueryCount)
		if g.cfg.Stacking == StackingOldschool && !flags.Has(FlagNoLimit) &&
			destItem != nil && destItem.CanMergeWith(item) &&
			count > uint32(StackMax)-destItem.Count() {
			// Old stacking refuses partial merges: the stack merges whole
			// or lands whole in a fresh slot.
			if !hasFreeStackSlot(toCylinder) {
				return RetNotEnoughRoom
			}
			destItem = nil
			m = count
		}
	}

	if ret := fromCylinder.QueryRemove(item, m, flags, actor); !ret.OK() {
		return ret
	}

	// An item under trade negotiation must never end up holding itself.
	if tradeItem != nil {
		if it := asCylinderItem(toCylinder); it != nil && it == tradeItem {
			return RetNotEnoughRoom
		}
		if parentChainContains(toCylinder, tradeItem) {
			return RetNotEnoughRoom
		}
	}

	fromIndex := fromCylinder.ThingIndex(item)
	fromCylinder.RemoveThing(item, m)

	moveItem := item
	if item.IsStackable() {
		var merged uint32
		if destItem != nil && destItem.CanMergeWith(item) {
			merged = min(uint32(StackMax)-destItem.Count(), m)
			if merged > 0 {
				toCylinder.UpdateThing(destItem, destItem.ID(), destItem.Count()+merged)
			}
		}
		remainder := m - merged
		detached := item.Parent() == nil
		switch {
		case remainder == 0:
			moveItem = nil
			if detached {
				g.ReleaseItem(item)
			}
		case detached:
			item.SetCount(remainder)
		default:
			moveItem = item.CloneWithCount(g.factory, remainder)
		}
	}

	if moveItem != nil {
		toCylinder.AddThing(index, moveItem)
	}

	completeRemoval := item.Parent() != fromCylinder
	fromCylinder.PostRemoveNotify(item, toCylinder, fromIndex, completeRemoval)
	if moveItem != nil {
		if newIndex := toCylinder.ThingIndex(moveItem); newIndex >= 0 {
			toCylinder.PostAddNotify(moveItem, fromCylinder, newIndex)
		}
	}

	if moveItem != nil {
		g.startDecay(moveItem)
	}
	if destItem != nil {
		g.startDecay(destItem)
	}

	if g.hooks != nil {
		g.hooks.OnItemMoved(actor, item, fromCylinder, toCylinder, m)
	}
	moved := moveItem
	if moved == nil {
		moved = destItem
	}
	event.Emit(g.bus, ItemMovedEvent{
		Item: moved, Actor: actor,
		From: fromCylinder, To: toCylinder,
		FromPos: fromPos, ToPos: cylinderPosition(toCylinder),
		Count: m,
	})

	if item.IsStackable() && maxQueryCount < count {
		return retMaxCount
	}
	return RetNoError
}

// exchangeSlotItem clears an occupied slot so a pending add can land. The
// displaced item goes back to the source cylinder; under the modern swap
// policy it may fall anywhere the acting player can hold it.
func (g *Game) exchangeSlotItem(actor Creature, fromCylinder, toCylinder Cylinder, index int, item, displaced *Item, flags CylinderFlags) ReturnValue {
	if displaced == nil {
		if th := toCylinder.ThingByIndex(index); th != nil {
			displaced = th.AsItem()
		}
	}
	if displaced == nil {
		return RetNotEnoughRoom
	}

	dest := fromCylinder
	destIndex := fromCylinder.ThingIndex(item)
	ret := dest.QueryAdd(destIndex, displaced, displaced.Count(), 0, actor)

	if !ret.OK() && g.cfg.Swap == SwapModern && actor != nil {
		if p := actor.AsPlayer(); p != nil {
			idx := IndexWherever
			sub, _ := p.QueryDestination(&idx, displaced, 0)
			if sub != nil {
				if r := sub.QueryAdd(idx, displaced, displaced.Count(), 0, actor); r.OK() {
					dest, destIndex, ret = sub, idx, RetNoError
				}
			}
		}
	}
	if !ret.OK() {
		return ret
	}

	if r, room := dest.QueryMaxCount(destIndex, displaced, displaced.Count(), 0); !r.OK() || room < displaced.Count() {
		return RetNotEnoughRoom
	}
	if r := toCylinder.QueryRemove(displaced, displaced.Count(), flags, actor); !r.OK() {
		return r
	}

	oldIndex := toCylinder.ThingIndex(displaced)
	toCylinder.RemoveThing(displaced, displaced.Count())
	dest.AddThing(destIndex, displaced)
	if oldIndex >= 0 {
		toCylinder.PostRemoveNotify(displaced, dest, oldIndex, true)
	}
	if newIndex := dest.ThingIndex(displaced); newIndex >= 0 {
		dest.PostAddNotify(displaced, toCylinder, newIndex)
	}
	if g.hooks != nil {
		g.hooks.OnItemMoved(actor, displaced, toCylinder, dest, displaced.Count())
	}
	return RetNoError
}

// hasFreeStackSlot reports whether the destination can take a whole fresh
// stack beside an occupied merge target. Inventory slots hold one stack, so
// they never can.
func hasFreeStackSlot(c Cylinder) bool {
	switch v := c.(type) {
	case *Tile:
		return v.ItemCount() < v.itemLimit()
	case *Container:
		return !v.IsFull()
	case *DepotLocker:
		return !v.IsFull()
	}
	return false
}

// asCylinderItem returns the item identity of an item-backed cylinder.
func asCylinderItem(c Cylinder) *Item {
	if t, ok := c.(Thing); ok {
		return t.AsItem()
	}
	return nil
}

func cylinderPosition(c Cylinder) Position {
	if t, ok := c.(Thing); ok {
		return t.MapPosition()
	}
	return Position{X: NoPos}
}

// ── Mail ────────────────────────────────────────────────────────────

const defaultMaxDepotItems = 2000

// deliverMail replaces a move into a mailbox with a move into the
// recipient's depot. Offline recipients load on demand through the depot
// resolver and save back after delivery. Failure at any step leaves the
// item at its source.
func (g *Game) deliverMail(actor Creature, mb *Mailbox, fromCylinder Cylinder, item *Item, count uint32) ReturnValue {
	name, townName, ok := mb.Recipient(item)
	if !ok {
		return RetNotPossible
	}
	recipient := g.PlayerByName(name)
	offline := false
	if recipient == nil && g.depots != nil {
		if loaded, found := g.depots.LoadPlayer(name); found {
			recipient = loaded
			offline = true
		}
	}
	if recipient == nil {
		return RetNotPossible
	}

	townID := recipient.TownID()
	if townName != "" {
		if town := g.towns.GetByName(townName); town != nil {
			townID = town.ID
		}
	}
	depot := recipient.Depot(townID, g.factory, g.cfg.DepotLockerID, g.cfg.MaxDepotItems)
	if depot == nil {
		return RetNotPossible
	}

	ret := g.internalMoveItem(actor, fromCylinder, depot, IndexWherever, item, count, nil, FlagNoLimit)
	if !ret.OK() {
		return ret
	}

	// The stamp transform finalizes only after the item landed.
	delivered := item
	if to := item.Type().TransformTo; to != 0 {
		if stamped := g.TransformItem(item, to); stamped != nil {
			delivered = stamped
		}
	}
	if offline {
		if err := g.depots.SavePlayer(recipient); err != nil {
			g.log.Error("offline mail save failed",
				zap.String("recipient", recipient.Name()),
				zap.Error(err))
		}
	}
	g.log.Debug("mail delivered",
		zap.String("recipient", recipient.Name()),
		zap.Uint32("town", townID),
		zap.Bool("offline", offline),
		zap.Uint16("item", delivered.ID()))
	event.Emit(g.bus, MailDeliveredEvent{Item: delivered, Recipient: recipient.Name(), TownID: townID})
	return RetNoError
}

// ── Item add / remove ───────────────────────────────────────────────

// AddItem creates count units of an item type inside a cylinder.
func (g *Game) AddItem(toCylinder Cylinder, id uint16, count uint32) (*Item, ReturnValue) {
	item := g.factory.New(id, 0)
	if item == nil {
		return nil, RetNotPossible
	}
	if item.IsStackable() {
		item.SetCount(count)
	}
	ret := g.internalAddItem(toCylinder, item, IndexWherever, FlagNoLimit, false)
	if !ret.OK() {
		g.ReleaseItem(item)
		return nil, ret
	}
	return item, RetNoError
}

// internalAddItem places a fresh item into a cylinder. With test set the
// legality checks run but nothing mutates.
func (g *Game) internalAddItem(toCylinder Cylinder, item *Item, index int, flags CylinderFlags, test bool) ReturnValue {
	if toCylinder == nil || item == nil {
		return RetNotPossible
	}

	var destItem *Item
	destCylinder := toCylinder
	destFlags := flags
	for hop := 0; hop < MapMaxLayers; hop++ {
		sub, di := destCylinder.QueryDestination(&index, item, destFlags)
		destItem = di
		if sub == destCylinder {
			break
		}
		destCylinder = sub
		destFlags = 0
	}
	toCylinder = destCylinder

	if ret := toCylinder.QueryAdd(index, item, item.Count(), flags, nil); !ret.OK() {
		return ret
	}
	retMaxCount, maxQueryCount := toCylinder.QueryMaxCount(index, item, item.Count(), flags)
	if !retMaxCount.OK() && maxQueryCount == 0 {
		return retMaxCount
	}
	if test {
		return RetNoError
	}

	if item.IsStackable() && destItem != nil && destItem.CanMergeWith(item) {
		merged := min(uint32(StackMax)-destItem.Count(), item.Count())
		if merged > 0 {
			toCylinder.UpdateThing(destItem, destItem.ID(), destItem.Count()+merged)
			g.startDecay(destItem)
		}
		remainder := item.Count() - merged
		if remainder == 0 {
			g.ReleaseItem(item)
			event.Emit(g.bus, ItemAddedEvent{Item: destItem, To: toCylinder, Pos: cylinderPosition(toCylinder)})
			return RetNoError
		}
		item.SetCount(remainder)
	}

	toCylinder.AddThing(index, item)
	if newIndex := toCylinder.ThingIndex(item); newIndex >= 0 {
		toCylinder.PostAddNotify(item, nil, newIndex)
	}
	g.startDecay(item)
	event.Emit(g.bus, ItemAddedEvent{Item: item, To: toCylinder, Pos: cylinderPosition(toCylinder)})
	return RetNoError
}

// RemoveItem destroys count units of an item where it stands.
func (g *Game) RemoveItem(item *Item, count uint32) ReturnValue {
	return g.internalRemoveItem(item, count, false, 0)
}

// internalRemoveItem removes count units from an item's parent cylinder.
// A complete removal unlinks beds and evicts any pending decay.
func (g *Game) internalRemoveItem(item *Item, count uint32, test bool, flags CylinderFlags) ReturnValue {
	if item == nil {
		return RetNotPossible
	}
	cylinder := item.Parent()
	if cylinder == nil {
		return RetNotPossible
	}
	if count == 0 || count > item.Count() {
		count = item.Count()
	}

	if ret := cylinder.QueryRemove(item, count, flags|FlagIgnoreBlockItem, nil); !ret.OK() {
		return ret
	}
	if test {
		return RetNoError
	}

	pos := item.MapPosition()
	index := cylinder.ThingIndex(item)
	complete := count >= item.Count()

	cylinder.RemoveThing(item, count)
	cylinder.PostRemoveNotify(item, nil, index, complete)

	if complete {
		if bed := item.Bed(); bed != nil {
			bed.Vacate()
		}
		g.stopDecay(item)
		g.ReleaseItem(item)
	}
	event.Emit(g.bus, ItemRemovedEvent{Item: item, From: cylinder, Pos: pos, Count: count, Complete: complete})
	return RetNoError
}

// TransformItem swaps an item's type in place (decay chains, door state).
// Returns the item holding the new identity.
func (g *Game) TransformItem(item *Item, newID uint16) *Item {
	if item == nil || item.ID() == newID {
		return item
	}
	cylinder := item.Parent()
	if cylinder == nil {
		return nil
	}
	newType := g.types.Get(newID)
	if newType == nil {
		g.internalRemoveItem(item, 0, false, 0)
		return nil
	}

	pos := item.MapPosition()
	index := cylinder.ThingIndex(item)
	if index < 0 {
		return nil
	}

	replacement := g.factory.New(newID, item.SubType())
	if replacement == nil {
		return nil
	}
	replacement.inheritAttributes(item)
	if oldC, newC := item.Container(), replacement.Container(); oldC != nil && newC != nil {
		for _, child := range append([]*Item(nil), oldC.Items()...) {
			oldC.RemoveThing(child, child.Count())
			newC.InternalAddThing(IndexWherever, child)
		}
	}
	g.stopDecay(item)
	cylinder.ReplaceThing(index, replacement)
	g.ReleaseItem(item)
	g.startDecay(replacement)
	event.Emit(g.bus, ItemTransformedEvent{Old: item, New: replacement, Pos: pos})
	return replacement
}

// ── Creature moves ──────────────────────────────────────────────────

// MoveCreature steps a creature one tile in a direction. Monsters shove
// pushable obstacles out of their way.
func (g *Game) MoveCreature(c Creature, dir Direction, flags CylinderFlags) ReturnValue {
	fromTile := c.Tile()
	if fromTile == nil {
		return RetNotPossible
	}
	destPos := fromTile.Pos().Next(dir)
	toTile := g.world.TileAt(destPos)
	if toTile == nil {
		return RetNotPossible
	}
	return g.internalMoveCreature(c, toTile, flags, false)
}

// internalMoveCreature relocates a creature onto a tile and then follows
// any destination redirects (holes under the landing tile, teleporters),
// bounded by the floor count.
func (g *Game) internalMoveCreature(c Creature, toTile *Tile, flags CylinderFlags, forceTeleport bool) ReturnValue {
	fromTile := c.Tile()
	if fromTile == nil || toTile == nil {
		return RetNotPossible
	}

	if g.hooks != nil {
		if ret := g.hooks.OnCreatureMove(c, fromTile, toTile); !ret.OK() {
			return ret
		}
	}

	ret := toTile.QueryAdd(0, c, 1, flags, nil)
	if ret == RetNotEnoughRoom && c.AsMonster() != nil && !flags.Has(FlagIgnoreBlockCreature) {
		g.pushObstacles(c, toTile)
		ret = toTile.QueryAdd(0, c, 1, flags, nil)
	}
	if !ret.OK() {
		return ret
	}

	fromPos := fromTile.Pos()
	g.world.MoveCreature(c, toTile, forceTeleport)
	if c.Tile() != toTile {
		return RetNoError
	}

	// Follow hole and teleport chains under the landing tile.
	current := toTile
	for hop := 0; hop < MapMaxLayers; hop++ {
		next := g.world.tileDestination(current, c)
		if next == nil || next == current {
			break
		}
		g.world.MoveCreature(c, next, true)
		if c.Tile() != next {
			break
		}
		current = next
	}

	toPos := c.MapPosition()
	teleport := forceTeleport || !fromPos.InRange(toPos, 1, 1, 0)
	if g.hooks != nil {
		g.hooks.OnCreatureMoved(c, fromTile, c.Tile())
	}
	if p := c.AsPlayer(); p != nil {
		p.MarkDirty()
	}
	event.Emit(g.bus, CreatureMovedEvent{Creature: c, FromPos: fromPos, ToPos: toPos, Teleport: teleport})
	return RetNoError
}

// TeleportCreature drops a creature onto an arbitrary tile, ignoring
// blocking items.
func (g *Game) TeleportCreature(c Creature, pos Position) ReturnValue {
	toTile := g.world.TileAt(pos)
	if toTile == nil {
		return RetNotPossible
	}
	return g.internalMoveCreature(c, toTile, FlagIgnoreBlockItem, true)
}

// Turn rotates a creature without moving it.
func (g *Game) Turn(c Creature, dir Direction) {
	if c.Direction() == dir {
		return
	}
	c.SetDirection(dir)
}

// pushObstacles clears a tile for an advancing monster: pushable creatures
// are shoved to a free neighbour, loose blocking items are displaced or
// destroyed.
func (g *Game) pushObstacles(mover Creature, tile *Tile) {
	for _, blocked := range append([]Creature(nil), tile.Creatures()...) {
		if !blocked.IsBlocking() || !blocked.IsPushable() {
			continue
		}
		for dir := North; dir <= West; dir++ {
			near := g.world.TileAt(tile.Pos().Next(dir))
			if near == nil {
				continue
			}
			if near.QueryAdd(0, blocked, 1, 0, nil) == RetNoError {
				g.world.MoveCreature(blocked, near, false)
				break
			}
		}
	}
	for _, it := range append([]*Item(nil), tile.DownItems()...) {
		if !it.IsBlocking() || !it.IsMoveable() {
			continue
		}
		moved := false
		for dir := North; dir <= West; dir++ {
			near := g.world.TileAt(tile.Pos().Next(dir))
			if near == nil {
				continue
			}
			if g.internalMoveItem(nil, tile, near, IndexWherever, it, it.Count(), nil, 0).OK() {
				moved = true
				break
			}
		}
		if !moved {
			g.internalRemoveItem(it, 0, false, 0)
		}
	}
}

// ── Deferred release ────────────────────────────────────────────────

// ReleaseItem queues a detached item for the end-of-tick flush.
func (g *Game) ReleaseItem(item *Item) {
	item.IncRef()
	g.releasedItems = append(g.releasedItems, item)
}

// FlushReleases drops the references held for this tick. Runs in the
// cleanup phase after every consumer has seen the events.
func (g *Game) FlushReleases() {
	for _, it := range g.releasedItems {
		it.DecRef()
	}
	g.releasedItems = g.releasedItems[:0]
	for _, c := range g.releasedCreatures {
		c.DecRef()
	}
	g.releasedCreatures = g.releasedCreatures[:0]
}
