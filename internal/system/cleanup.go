package system

import (
	"time"

	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/world"
)

// CleanupSystem releases things detached from the world during the tick.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	game *world.Game
}

func NewCleanupSystem(g *world.Game) *CleanupSystem {
	return &CleanupSystem{game: g}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.game.FlushReleases()
}
