package system

import (
	"fmt"
	"time"

	"github.com/fragd/server/internal/core/arena"
	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// ActorSystem is the behavior engine. Every tick it gives each live actor
// one turn in ascending slot order. Phase 1 (Actors).
type ActorSystem struct {
	c *sim.Context
}

func NewActorSystem(c *sim.Context) *ActorSystem {
	return &ActorSystem{c: c}
}

func (s *ActorSystem) Phase() coresys.Phase { return coresys.PhaseActors }

func (s *ActorSystem) Update(_ time.Duration) {
	var actors []arena.Handle
	s.c.Objects.Each(func(o *world.Object) {
		if o.Actor != nil {
			actors = append(actors, o.Self)
		}
	})
	for _, h := range actors {
		// An earlier turn may have freed this one.
		o := s.c.Lookup(h)
		if o == nil || o.Actor == nil {
			continue
		}
		guard(s.c, o, "frame", func() { RunFrame(s.c, o) })
	}
}

// RunFrame executes one tick of an actor's current move: locomotion with
// the frame distance, then the frame event, then the cursor advance. A
// transition made by either callback leaves the cursor on the new move's
// first frame for the next tick. Past the last frame the continuation runs;
// if it neither transitions nor holds, the move repeats from its first frame.
func RunFrame(c *sim.Context, self *world.Object) {
	a := self.Actor
	if a.PauseUntil > c.Now() {
		return
	}
	move, ok := c.Registry.Move.Get(a.Move)
	if !ok {
		arena.Raise("run frame", self.Self, fmt.Errorf("move %d: %w", a.Move, sim.ErrUnknownKey))
	}
	frame, err := move.At(a.Frame)
	if err != nil {
		arena.Raise("run frame", self.Self, err)
	}

	start := a.Transitions
	if !a.Flags.Has(world.AIDetached) {
		dist := frame.Dist
		if a.Flags.Has(world.AIHoldFrame) {
			dist = 0
		}
		Locomote(c, self, frame.AI, dist)
	}
	if self.Actor == nil || a.Transitions != start {
		return
	}
	if frame.Event != 0 {
		if fn, ok := c.Registry.Event.Get(frame.Event); ok {
			fn(c, self)
		}
	}
	if self.Actor == nil || a.Transitions != start || a.Flags.Has(world.AIHoldFrame) {
		return
	}

	if a.Frame < move.Last {
		a.Frame++
		return
	}
	if fn, ok := c.Registry.End.Get(move.End); ok {
		fn(c, self)
		if self.Actor == nil || a.Transitions != start || a.Flags.Has(world.AIHoldFrame) {
			return
		}
	}
	c.SetMove(self, a.Move)
}
