package system

import (
	"sort"
	"time"
)

// Runner drives the registered systems once per tick, in ascending phase
// order. Systems sharing a phase run in registration order.
type Runner struct {
	systems []System
}

func NewRunner() *Runner {
	return &Runner{}
}

// Register inserts a system at the end of its phase.
func (r *Runner) Register(s System) {
	at := sort.Search(len(r.systems), func(i int) bool {
		return r.systems[i].Phase() > s.Phase()
	})
	r.systems = append(r.systems, nil)
	copy(r.systems[at+1:], r.systems[at:])
	r.systems[at] = s
}

// Tick runs every system once.
func (r *Runner) Tick(dt time.Duration) {
	for _, s := range r.systems {
		s.Update(dt)
	}
}

// TickPhase runs only the systems of one phase. The server uses it to poll
// input between full ticks without advancing the world.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
		}
	}
}
