package system

import (
	"fmt"
	"time"

	"github.com/fragd/server/internal/core/arena"
	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// ThinkSystem runs physics and due think hooks for every object, in
// ascending slot order. Phase 0 (Think).
type ThinkSystem struct {
	c *sim.Context
}

func NewThinkSystem(c *sim.Context) *ThinkSystem {
	return &ThinkSystem{c: c}
}

func (s *ThinkSystem) Phase() coresys.Phase { return coresys.PhaseThink }

func (s *ThinkSystem) Update(_ time.Duration) {
	now := s.c.Now()
	var due []arena.Handle
	s.c.Objects.Each(func(o *world.Object) {
		if o.Self.Index() == 0 {
			return
		}
		if needsPhysics(o) || thinkDue(o, now) {
			due = append(due, o.Self)
		}
	})
	for _, h := range due {
		o := s.c.Lookup(h)
		if o == nil {
			continue
		}
		guard(s.c, o, "think", func() { RunThink(s.c, o) })
	}
}

func thinkDue(o *world.Object, now world.Tick) bool {
	return o.Think != 0 && o.NextThink != 0 && o.NextThink <= now
}

// RunThink moves o one tick and then calls its think hook if it is due.
func RunThink(c *sim.Context, o *world.Object) {
	runPhysics(c, o)
	if !o.InUse || c.Objects.Pending(o.Self) || !thinkDue(o, c.Now()) {
		return
	}
	o.NextThink = 0
	fn, ok := c.Registry.Think.Get(o.Think)
	if !ok {
		arena.Raise("think", o.Self, fmt.Errorf("think %d: %w", o.Think, sim.ErrUnknownKey))
	}
	fn(c, o)
}
