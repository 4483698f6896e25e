package persist

import (
	"context"
	"fmt"

	"github.com/otgo/server/internal/world"
)

// JournalEntry is one audit record of an item changing hands or place.
type JournalEntry struct {
	ActorGUID uint32
	ItemType  uint16
	Count     uint32
	FromX     uint16
	FromY     uint16
	FromZ     uint8
	ToX       uint16
	ToY       uint16
	ToZ       uint8
}

// NewJournalEntry flattens a move event into a journal row.
func NewJournalEntry(ev world.ItemMovedEvent) JournalEntry {
	e := JournalEntry{
		ItemType: ev.Item.ID(),
		Count:    ev.Count,
		FromX:    ev.FromPos.X,
		FromY:    ev.FromPos.Y,
		FromZ:    ev.FromPos.Z,
		ToX:      ev.ToPos.X,
		ToY:      ev.ToPos.Y,
		ToZ:      ev.ToPos.Z,
	}
	if p, ok := ev.Actor.(*world.Player); ok && p != nil {
		e.ActorGUID = p.GUID()
	}
	return e
}

// JournalRepo writes the item move journal. Entries are batched per tick
// and flushed in one transaction; a failed flush leaves the batch for the
// next attempt.
type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append writes a batch of journal entries atomically.
func (r *JournalRepo) Append(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO move_journal (actor_guid, item_type, count,
			   from_x, from_y, from_z, to_x, to_y, to_z)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			e.ActorGUID, e.ItemType, e.Count,
			e.FromX, e.FromY, e.FromZ, e.ToX, e.ToY, e.ToZ,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// MarkProcessed flags all pending journal rows, called after a world save
// so replay tooling knows the state they led to is on disk.
func (r *JournalRepo) MarkProcessed(ctx context.Context) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE move_journal SET processed = TRUE WHERE processed = FALSE`,
	)
	return err
}
