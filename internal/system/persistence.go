package system

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/otgo/server/internal/core/event"
	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/persist"
	"github.com/otgo/server/internal/world"
)

// PersistenceSystem batch-saves dirty players every N ticks and appends
// the item move journal. Phase 5 (Persist).
type PersistenceSystem struct {
	game        *world.Game
	playerRepo  *persist.PlayerRepo
	journalRepo *persist.JournalRepo
	log         *zap.Logger

	pending   []persist.JournalEntry
	tickCount int
	interval  int // save every N ticks
}

func NewPersistenceSystem(g *world.Game, bus *event.Bus, playerRepo *persist.PlayerRepo, journalRepo *persist.JournalRepo, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	s := &PersistenceSystem{
		game:        g,
		playerRepo:  playerRepo,
		journalRepo: journalRepo,
		log:         log,
		interval:    intervalTicks,
	}
	event.Subscribe(bus, func(ev world.ItemMovedEvent) {
		s.pending = append(s.pending, persist.NewJournalEntry(ev))
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.flushJournal()

	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.savePlayers(true)
}

// SaveAllPlayers persists every online player regardless of dirty flags.
// Called on graceful shutdown.
func (s *PersistenceSystem) SaveAllPlayers() {
	s.savePlayers(false)
}

func (s *PersistenceSystem) flushJournal() {
	if len(s.pending) == 0 || s.journalRepo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.journalRepo.Append(ctx, s.pending); err != nil {
		// Keep the batch; retry next tick.
		s.log.Error("journal flush failed", zap.Error(err))
		return
	}
	s.pending = s.pending[:0]
}

func (s *PersistenceSystem) savePlayers(dirtyOnly bool) {
	count := 0
	for _, p := range s.game.Players() {
		if dirtyOnly && !p.Dirty() {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := s.playerRepo.SavePlayer(ctx, p)
		cancel()
		if err != nil {
			s.log.Error("player save failed", zap.String("name", p.Name()), zap.Error(err))
			continue
		}
		p.ClearDirty()
		count++
	}
	if count > 0 {
		s.log.Info("batch save complete", zap.Int("players", count))
	}

	if s.journalRepo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.journalRepo.MarkProcessed(ctx); err != nil {
			s.log.Error("journal mark processed failed", zap.Error(err))
		}
	}
}
