package system

import (
	"time"

	coresys "github.com/otgo/server/internal/core/system"
	"github.com/otgo/server/internal/world"
)

// DecaySystem advances item decay clocks. Phase 2 (Update).
type DecaySystem struct {
	game *world.Game
}

func NewDecaySystem(g *world.Game) *DecaySystem {
	return &DecaySystem{game: g}
}

func (s *DecaySystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DecaySystem) Update(dt time.Duration) {
	s.game.CheckDecay(dt)
}
