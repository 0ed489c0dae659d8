package system

import (
	"sort"
	"time"
)

// SlowFunc is told about a phase whose systems took longer than the
// runner's budget in one tick.
type SlowFunc func(phase Phase, took time.Duration)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	sorted  bool

	budget time.Duration
	onSlow SlowFunc
	now    func() time.Time
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
		now:     time.Now,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// WatchPhases reports every phase that runs longer than budget. A zero
// budget turns reporting off.
func (r *Runner) WatchPhases(budget time.Duration, fn SlowFunc) {
	r.budget = budget
	r.onSlow = fn
}

// Len returns the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	i := 0
	for i < len(r.systems) {
		phase := r.systems[i].Phase()
		j := i
		for j < len(r.systems) && r.systems[j].Phase() == phase {
			j++
		}
		r.runPhase(phase, r.systems[i:j], dt)
		i = j
	}
}

// TickPhase runs only the systems of one phase.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	lo := sort.Search(len(r.systems), func(i int) bool { return r.systems[i].Phase() >= phase })
	hi := lo
	for hi < len(r.systems) && r.systems[hi].Phase() == phase {
		hi++
	}
	r.runPhase(phase, r.systems[lo:hi], dt)
}

func (r *Runner) runPhase(phase Phase, systems []System, dt time.Duration) {
	if len(systems) == 0 {
		return
	}
	if r.budget <= 0 || r.onSlow == nil {
		for _, s := range systems {
			s.Update(dt)
		}
		return
	}
	start := r.now()
	for _, s := range systems {
		s.Update(dt)
	}
	if took := r.now().Sub(start); took > r.budget {
		r.onSlow(phase, took)
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
