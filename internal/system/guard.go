package system

import (
	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
	"go.uber.org/zap"
)

// guard runs one object's turn. A contract violation raised inside the turn
// aborts the turn and neutralizes the object the fault names, or the turn
// holder when the fault names no live object. The tick goes on with the
// next object. Any other panic is not ours to swallow.
func guard(c *sim.Context, o *world.Object, op string, fn func()) {
	h := o.Self
	end := c.Turn(h)
	defer end()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		f, ok := r.(*arena.Fault)
		if !ok {
			panic(r)
		}
		culprit := h
		if !f.Handle.IsZero() && c.Lookup(f.Handle) != nil {
			culprit = f.Handle
		}
		c.Log.Error("behavior aborted",
			zap.String("op", op),
			zap.Stringer("turn", h),
			zap.Stringer("culprit", culprit),
			zap.String("class", o.ClassName),
			zap.Error(f))
		c.Metrics.Fault(op)
		neutralize(c, culprit)
	}()
	fn()
}

// neutralize queues a faulted object for freeing. Player slots are never
// freed here; the player is detached from behavior instead.
func neutralize(c *sim.Context, h arena.Handle) {
	o := c.Lookup(h)
	if o == nil {
		return
	}
	if c.Objects.Pool().Reserved(h) {
		o.Actor = nil
		o.Think = 0
		return
	}
	if !c.Objects.Pending(h) {
		c.Objects.Defer(h)
	}
}
