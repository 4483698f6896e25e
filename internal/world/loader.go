package world

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/otgo/server/internal/data"
)

var zoneFlagNames = map[string]TileFlags{
	"protection": TileProtectionZone,
	"nopvp":      TileNoPvpZone,
	"pvp":        TilePvpZone,
	"nologout":   TileNoLogout,
	"refresh":    TileRefresh,
}

// BuildWorld populates the game from parsed data files: towns first, then
// tiles with their load-time items, then houses linking tiles, doors and
// beds together.
func BuildWorld(g *Game, wf *data.WorldFile, towns []data.TownDef, houses []data.HouseDef) error {
	for _, td := range towns {
		g.Towns().Add(&Town{
			ID:   td.ID,
			Name: td.Name,
			TemplePos: Position{
				X: td.Temple.X,
				Y: td.Temple.Y,
				Z: td.Temple.Z,
			},
		})
	}

	for _, td := range wf.Tiles {
		tile, err := buildTile(g, td)
		if err != nil {
			return err
		}
		g.Map().SetTile(tile)
	}

	for _, hd := range houses {
		if err := buildHouse(g, hd); err != nil {
			return err
		}
	}

	g.log.Info("world loaded",
		zap.String("name", wf.Name),
		zap.Int("tiles", len(wf.Tiles)),
		zap.Int("towns", len(towns)),
		zap.Int("houses", len(houses)))
	return nil
}

func buildTile(g *Game, td data.TileDef) (*Tile, error) {
	pos := Position{X: td.X, Y: td.Y, Z: td.Z}
	tile := NewTile(pos)

	var zones TileFlags
	for _, name := range td.Zones {
		bit, ok := zoneFlagNames[name]
		if !ok {
			return nil, fmt.Errorf("tile %v: unknown zone %q", pos, name)
		}
		zones |= bit
	}
	tile.SetStaticFlags(zones)

	if td.Ground != 0 {
		ground := g.factory.New(td.Ground, 0)
		if ground == nil {
			return nil, fmt.Errorf("tile %v: unknown ground type %d", pos, td.Ground)
		}
		tile.SetGround(ground)
	}

	for _, id := range td.Items {
		item, err := buildItem(g, pos, id)
		if err != nil {
			return nil, err
		}
		tile.InternalAddThing(IndexWherever, item)
		g.startDecay(item)
	}
	return tile, nil
}

func buildItem(g *Game, pos Position, id data.ItemDef) (*Item, error) {
	item := g.factory.New(id.ID, id.SubType)
	if item == nil {
		return nil, fmt.Errorf("tile %v: unknown item type %d", pos, id.ID)
	}
	if item.IsStackable() && id.Count > 0 {
		item.SetCount(id.Count)
	}
	if id.ActionID != 0 {
		item.SetActionID(id.ActionID)
	}
	if id.UniqueID != 0 {
		item.SetUniqueID(id.UniqueID)
	}
	if id.Text != "" {
		item.SetText(id.Text)
	}
	if tp := item.Teleport(); tp != nil {
		tp.SetDestination(Position{X: id.DestX, Y: id.DestY, Z: id.DestZ})
	}
	if door := item.Door(); door != nil {
		door.SetDoorID(id.DoorID)
	}
	return item, nil
}

func buildHouse(g *Game, hd data.HouseDef) error {
	entry := Position{X: hd.Entry.X, Y: hd.Entry.Y, Z: hd.Entry.Z}
	house := NewHouse(hd.ID, hd.Name, hd.TownID, entry)
	if hd.Owner != 0 {
		house.SetOwner(hd.Owner)
	}

	var beds []*BedItem
	for _, tp := range hd.Tiles {
		pos := Position{X: tp.X, Y: tp.Y, Z: tp.Z}
		tile := g.Map().TileAt(pos)
		if tile == nil {
			return fmt.Errorf("house %d: no tile at %v", hd.ID, pos)
		}
		house.AddTile(tile)

		for _, it := range tile.TopItems() {
			if door := it.Door(); door != nil {
				door.SetHouse(house)
			}
		}
		for _, it := range tile.DownItems() {
			if door := it.Door(); door != nil {
				door.SetHouse(house)
			}
			if bed := it.Bed(); bed != nil {
				house.AddBed(bed)
				beds = append(beds, bed)
			}
		}
	}

	linkBedPairs(beds)
	g.AddHouse(house)
	return nil
}

// linkBedPairs joins adjacent bed halves whose templates name each other as
// transform pair.
func linkBedPairs(beds []*BedItem) {
	for _, bed := range beds {
		if bed.Partner() != nil {
			continue
		}
		pairID := bed.Type().TransformPair
		if pairID == 0 {
			continue
		}
		pos := bed.MapPosition()
		for _, other := range beds {
			if other == bed || other.Partner() != nil || other.ID() != pairID {
				continue
			}
			if pos.InRange(other.MapPosition(), 1, 1, 0) {
				bed.LinkPartner(other)
				break
			}
		}
	}
}
