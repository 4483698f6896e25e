package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/otgo/server/internal/world"
)

// PlayerRow is the flat character record.
type PlayerRow struct {
	GUID     uint32
	Name     string
	Level    int
	Capacity uint32
	TownID   uint32
	PosX     uint16
	PosY     uint16
	PosZ     uint8
	Dir      int16
}

// ItemRowPID values below this are inventory slot numbers; at and above,
// container parent references.
const firstItemSID = 101

// PlayerRepo persists players and their item trees.
type PlayerRepo struct {
	db *DB
}

func NewPlayerRepo(db *DB) *PlayerRepo {
	return &PlayerRepo{db: db}
}

// LoadPlayer returns the character record by name, or pgx.ErrNoRows.
func (r *PlayerRepo) LoadPlayer(ctx context.Context, name string) (*PlayerRow, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT guid, name, level, capacity, town_id, pos_x, pos_y, pos_z, direction
		 FROM players WHERE lower(name) = lower($1)`, name,
	)
	var p PlayerRow
	if err := row.Scan(&p.GUID, &p.Name, &p.Level, &p.Capacity, &p.TownID,
		&p.PosX, &p.PosY, &p.PosZ, &p.Dir); err != nil {
		return nil, err
	}
	return &p, nil
}

// MaxGUID returns the highest assigned player guid, 0 when none exist.
func (r *PlayerRepo) MaxGUID(ctx context.Context) (uint32, error) {
	var max uint32
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(guid), 0) FROM players`).Scan(&max)
	return max, err
}

// SavePlayer upserts the character record and replaces its item trees.
func (r *PlayerRepo) SavePlayer(ctx context.Context, p *world.Player) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	pos := p.MapPosition()
	if _, err := tx.Exec(ctx,
		`INSERT INTO players (guid, name, level, capacity, town_id, pos_x, pos_y, pos_z, direction)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (guid) DO UPDATE SET
		   level = EXCLUDED.level, capacity = EXCLUDED.capacity,
		   town_id = EXCLUDED.town_id,
		   pos_x = EXCLUDED.pos_x, pos_y = EXCLUDED.pos_y, pos_z = EXCLUDED.pos_z,
		   direction = EXCLUDED.direction`,
		p.GUID(), p.Name(), p.Level(), p.Capacity(), p.TownID(),
		pos.X, pos.Y, pos.Z, int16(p.Direction()),
	); err != nil {
		return fmt.Errorf("save player %s: %w", p.Name(), err)
	}

	if err := r.saveInventory(ctx, tx, p); err != nil {
		return err
	}
	if err := r.saveDepots(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// SaveDepots replaces the player's depot trees only, leaving the character
// row untouched. Used for deliveries to characters who are not online.
func (r *PlayerRepo) SaveDepots(ctx context.Context, p *world.Player) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.saveDepots(ctx, tx, p); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// saveInventory flattens the slot items and their nested containers.
// pid is the slot number for top-level items, the parent's sid below.
func (r *PlayerRepo) saveInventory(ctx context.Context, tx pgx.Tx, p *world.Player) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM player_items WHERE player_guid = $1`, p.GUID()); err != nil {
		return err
	}

	sid := firstItemSID
	var insert func(pid int, item *world.Item) error
	insert = func(pid int, item *world.Item) error {
		mySID := sid
		sid++
		if _, err := tx.Exec(ctx,
			`INSERT INTO player_items (player_guid, pid, sid, item_type, count, attributes)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.GUID(), pid, mySID, item.ID(), item.Count(), EncodeItemAttributes(item),
		); err != nil {
			return err
		}
		if sub := item.Container(); sub != nil {
			for _, child := range sub.Items() {
				if err := insert(mySID, child); err != nil {
					return err
				}
			}
		}
		return nil
	}

	for slot := world.SlotFirst; slot <= world.SlotLast; slot++ {
		if item := p.InventoryItem(slot); item != nil {
			if err := insert(slot, item); err != nil {
				return fmt.Errorf("save inventory %s: %w", p.Name(), err)
			}
		}
	}
	return nil
}

// saveDepots writes one tree per town; the locker item is the root row
// with pid 0.
func (r *PlayerRepo) saveDepots(ctx context.Context, tx pgx.Tx, p *world.Player) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM depot_items WHERE player_guid = $1`, p.GUID()); err != nil {
		return err
	}

	for townID, depot := range p.Depots() {
		sid := firstItemSID
		var insert func(pid int, item *world.Item) error
		insert = func(pid int, item *world.Item) error {
			mySID := sid
			sid++
			if _, err := tx.Exec(ctx,
				`INSERT INTO depot_items (player_guid, town_id, pid, sid, item_type, count, attributes)
				 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				p.GUID(), townID, pid, mySID, item.ID(), item.Count(), EncodeItemAttributes(item),
			); err != nil {
				return err
			}
			if sub := item.Container(); sub != nil {
				for _, child := range sub.Items() {
					if err := insert(mySID, child); err != nil {
						return err
					}
				}
			}
			return nil
		}
		if err := insert(0, depot.AsItem()); err != nil {
			return fmt.Errorf("save depot %s town %d: %w", p.Name(), townID, err)
		}
	}
	return nil
}

type itemRow struct {
	pid      int
	sid      int
	itemType uint16
	count    uint32
	attrs    []byte
}

// LoadInventory rebuilds the player's slot items and nested containers.
func (r *PlayerRepo) LoadInventory(ctx context.Context, p *world.Player, factory *world.ItemFactory) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT pid, sid, item_type, count, attributes
		 FROM player_items WHERE player_guid = $1 ORDER BY sid`, p.GUID(),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	bySID := make(map[int]*world.Item)
	for rows.Next() {
		var row itemRow
		if err := rows.Scan(&row.pid, &row.sid, &row.itemType, &row.count, &row.attrs); err != nil {
			return err
		}
		item, err := buildItem(factory, row)
		if err != nil {
			return fmt.Errorf("load inventory %s: %w", p.Name(), err)
		}
		bySID[row.sid] = item

		if row.pid < firstItemSID {
			p.InternalAddThing(row.pid, item)
			continue
		}
		parent := bySID[row.pid]
		if parent == nil || parent.Container() == nil {
			return fmt.Errorf("load inventory %s: orphan item sid %d", p.Name(), row.sid)
		}
		parent.Container().InternalAddThing(world.IndexWherever, item)
	}
	return rows.Err()
}

// LoadDepots rebuilds the player's depot lockers.
func (r *PlayerRepo) LoadDepots(ctx context.Context, p *world.Player, factory *world.ItemFactory, maxDepotItems int) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT town_id, pid, sid, item_type, count, attributes
		 FROM depot_items WHERE player_guid = $1 ORDER BY town_id, sid`, p.GUID(),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	type key struct {
		town uint32
		sid  int
	}
	bySID := make(map[key]*world.Item)
	for rows.Next() {
		var townID uint32
		var row itemRow
		if err := rows.Scan(&townID, &row.pid, &row.sid, &row.itemType, &row.count, &row.attrs); err != nil {
			return err
		}
		item, err := buildItem(factory, row)
		if err != nil {
			return fmt.Errorf("load depot %s town %d: %w", p.Name(), townID, err)
		}
		bySID[key{townID, row.sid}] = item

		if row.pid == 0 {
			depot := item.Depot()
			if depot == nil {
				return fmt.Errorf("load depot %s town %d: root item %d is not a locker", p.Name(), townID, row.itemType)
			}
			depot.SetTownID(townID)
			depot.SetMaxDepotItems(maxDepotItems)
			p.AttachDepot(depot)
			continue
		}
		parent := bySID[key{townID, row.pid}]
		if parent == nil || parent.Container() == nil {
			return fmt.Errorf("load depot %s town %d: orphan item sid %d", p.Name(), townID, row.sid)
		}
		parent.Container().InternalAddThing(world.IndexWherever, item)
	}
	return rows.Err()
}

func buildItem(factory *world.ItemFactory, row itemRow) (*world.Item, error) {
	item := factory.New(row.itemType, 0)
	if item == nil {
		return nil, fmt.Errorf("unknown item type %d", row.itemType)
	}
	if item.IsStackable() && row.count > 0 {
		item.SetCount(row.count)
	}
	if len(row.attrs) > 0 {
		if err := DecodeItemAttributes(item, row.attrs); err != nil {
			return nil, err
		}
	}
	return item, nil
}
