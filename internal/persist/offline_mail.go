package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/otgo/server/internal/world"
)

// offlineMailTimeout bounds each database round trip made from the game
// loop when mail targets a character who is not online.
const offlineMailTimeout = 5 * time.Second

// OfflineDepots adapts the player repository to the engine's depot
// resolver: it loads a recipient's depots on demand and writes them back
// after a delivery.
type OfflineDepots struct {
	repo          *PlayerRepo
	factory       *world.ItemFactory
	maxDepotItems int
	log           *zap.Logger
}

func NewOfflineDepots(repo *PlayerRepo, factory *world.ItemFactory, maxDepotItems int, log *zap.Logger) *OfflineDepots {
	return &OfflineDepots{repo: repo, factory: factory, maxDepotItems: maxDepotItems, log: log}
}

// LoadPlayer builds a detached player carrying only what mail delivery
// needs: identity, home town and depot trees.
func (o *OfflineDepots) LoadPlayer(name string) (*world.Player, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), offlineMailTimeout)
	defer cancel()

	row, err := o.repo.LoadPlayer(ctx, name)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			o.log.Error("offline recipient lookup failed", zap.String("name", name), zap.Error(err))
		}
		return nil, false
	}
	p := world.NewPlayer(0, row.GUID, row.Name)
	p.SetLevel(row.Level)
	p.SetCapacity(row.Capacity)
	p.SetTownID(row.TownID)
	if err := o.repo.LoadDepots(ctx, p, o.factory, o.maxDepotItems); err != nil {
		o.log.Error("offline recipient depots failed to load", zap.String("name", name), zap.Error(err))
		return nil, false
	}
	return p, true
}

// SavePlayer writes the depot trees back. The character row stays as the
// owner left it.
func (o *OfflineDepots) SavePlayer(p *world.Player) error {
	ctx, cancel := context.WithTimeout(context.Background(), offlineMailTimeout)
	defer cancel()
	return o.repo.SaveDepots(ctx, p)
}
