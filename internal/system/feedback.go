package system

import (
	"time"

	"github.com/fragd/server/internal/core/event"
	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// FeedbackSystem publishes each player's accumulated damage for the tick
// and resets the totals. Phase 2 (PostUpdate).
type FeedbackSystem struct {
	c *sim.Context
}

func NewFeedbackSystem(c *sim.Context) *FeedbackSystem {
	return &FeedbackSystem{c: c}
}

func (s *FeedbackSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *FeedbackSystem) Update(_ time.Duration) {
	s.c.Objects.Players(func(p *world.Object) {
		cl := p.Client
		if cl.DamageArmor == 0 && cl.DamagePArmor == 0 && cl.DamageBlood == 0 && cl.DamageKnockback == 0 {
			return
		}
		event.Emit(s.c.Bus, event.DamageFeedback{
			Player:     p.Self,
			Armor:      cl.DamageArmor,
			PowerArmor: cl.DamagePArmor,
			Blood:      cl.DamageBlood,
			Knockback:  cl.DamageKnockback,
			From:       event.Vec(cl.DamageFrom),
		})
		cl.DamageArmor, cl.DamagePArmor, cl.DamageBlood, cl.DamageKnockback = 0, 0, 0, 0
	})
}

// EventSystem hands the tick's events to the host subscribers.
// Phase 3 (Output).
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
