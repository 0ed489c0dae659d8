package system

import (
	coresys "github.com/fragd/server/internal/core/system"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// Use is the entry point the relay graph calls to trigger an object. Objects
// without a use hook ignore it.
func Use(c *sim.Context, o, other, activator *world.Object) {
	if o == nil || !o.InUse {
		return
	}
	fn, ok := c.Registry.Use.Get(o.Use)
	if !ok {
		return
	}
	if other == nil {
		other = c.Objects.World()
	}
	if activator == nil {
		activator = other
	}
	fn(c, o, other, activator)
}

// Register installs the engine's own behaviors: missile touches and the
// timed self-removal think.
func Register(r *sim.Registry) error {
	if _, err := r.Think.Register(KeyFreeSelf, freeSelf); err != nil {
		return err
	}
	if _, err := r.Touch.Register(KeyBoltTouch, boltTouch); err != nil {
		return err
	}
	if _, err := r.Touch.Register(KeyRocketTouch, rocketTouch); err != nil {
		return err
	}
	return nil
}

// Systems returns the tick systems in their phase order.
func Systems(c *sim.Context) []coresys.System {
	return []coresys.System{
		NewThinkSystem(c),
		NewActorSystem(c),
		NewFeedbackSystem(c),
		NewEventSystem(c.Bus),
		NewCleanupSystem(c),
	}
}
