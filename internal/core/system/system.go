package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: drain command queues
	PhasePreUpdate               // 1: process last tick's events
	PhaseUpdate                  // 2: game logic, decay
	PhasePostUpdate              // 3: derived world state
	PhaseOutput                  // 4: build + send client updates
	PhasePersist                 // 5: journal flush + batch save
	PhaseCleanup                 // 6: release detached things
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
