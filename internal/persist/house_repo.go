package persist

import (
	"context"
	"fmt"

	"github.com/otgo/server/internal/world"
)

// HouseRepo persists house ownership and access lists. The houses
// themselves come from the map data; rows only carry mutable state.
type HouseRepo struct {
	db *DB
}

func NewHouseRepo(db *DB) *HouseRepo {
	return &HouseRepo{db: db}
}

// LoadAll applies stored ownership and access lists to already built
// houses. Rows for houses the map no longer defines are skipped.
func (r *HouseRepo) LoadAll(ctx context.Context, g *world.Game) error {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, owner_guid, guest_list, subowner_list FROM houses`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, owner uint32
		var guests, subOwners string
		if err := rows.Scan(&id, &owner, &guests, &subOwners); err != nil {
			return err
		}
		house := g.HouseByID(id)
		if house == nil {
			continue
		}
		if owner != 0 {
			house.SetOwner(owner)
		}
		house.SetGuestList(guests)
		house.SetSubOwnerList(subOwners)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	doorRows, err := r.db.Pool.Query(ctx,
		`SELECT house_id, door_id, list FROM house_door_lists`)
	if err != nil {
		return err
	}
	defer doorRows.Close()

	for doorRows.Next() {
		var houseID uint32
		var doorID uint8
		var list string
		if err := doorRows.Scan(&houseID, &doorID, &list); err != nil {
			return err
		}
		if house := g.HouseByID(houseID); house != nil {
			house.SetDoorList(doorID, list)
		}
	}
	return doorRows.Err()
}

// SaveAll replaces the stored state of every house.
func (r *HouseRepo) SaveAll(ctx context.Context, g *world.Game) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for id, house := range g.Houses() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO houses (id, owner_guid, guest_list, subowner_list)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET
			   owner_guid = EXCLUDED.owner_guid,
			   guest_list = EXCLUDED.guest_list,
			   subowner_list = EXCLUDED.subowner_list`,
			id, house.OwnerGUID(), house.GuestList(), house.SubOwnerList(),
		); err != nil {
			return fmt.Errorf("save house %d: %w", id, err)
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM house_door_lists WHERE house_id = $1`, id); err != nil {
			return err
		}
		for doorID, list := range house.DoorLists() {
			if list == "" {
				continue
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO house_door_lists (house_id, door_id, list)
				 VALUES ($1, $2, $3)`,
				id, doorID, list,
			); err != nil {
				return fmt.Errorf("save house %d door %d: %w", id, doorID, err)
			}
		}
	}
	return tx.Commit(ctx)
}
