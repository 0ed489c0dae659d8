package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseThink      Phase = iota // 0: scheduled thinks, projectiles
	PhaseActors                  // 1: behavior engine, combat runs inline
	PhasePostUpdate              // 2: damage feedback, level bookkeeping
	PhaseOutput                  // 3: publish events to the host
	PhasePersist                 // 4: autosave
	PhaseCleanup                 // 5: free deferred objects
)

var phaseNames = [...]string{"think", "actors", "post_update", "output", "persist", "cleanup"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
