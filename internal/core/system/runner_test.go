package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	phase Phase
	name  string
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }
func (s *recordingSystem) Update(time.Duration) {
	*s.log = append(*s.log, s.name)
}

func TestRunnerTicksInPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseCleanup, name: "cleanup", log: &log})
	r.Register(&recordingSystem{phase: PhaseInput, name: "input", log: &log})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "update", log: &log})

	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"input", "update", "cleanup"}, log)
}

func TestRunnerKeepsRegistrationOrderWithinPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "a", log: &log})
	r.Register(&recordingSystem{phase: PhaseOutput, name: "out", log: &log})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "b", log: &log})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "c", log: &log})

	r.Tick(50 * time.Millisecond)
	assert.Equal(t, []string{"a", "b", "c", "out"}, log)
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{phase: PhaseInput, name: "input", log: &log})
	r.Register(&recordingSystem{phase: PhaseUpdate, name: "update", log: &log})

	r.TickPhase(PhaseInput, 50*time.Millisecond)
	assert.Equal(t, []string{"input"}, log, "other phases stay idle")
}
