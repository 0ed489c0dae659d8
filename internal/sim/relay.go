package sim

import (
	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/world"
)

// Relay fires the objects named by a target string.
type Relay interface {
	FireTargets(c *Context, self, activator *world.Object, target string)
}

// NopRelay ignores all targets.
type NopRelay struct{}

func (NopRelay) FireTargets(*Context, *world.Object, *world.Object, string) {}

// NameRelay calls the use behavior of every live object whose TargetName
// matches, in slot order. A target freed by an earlier use hook is skipped,
// even when its slot has been reused since.
type NameRelay struct{}

func (NameRelay) FireTargets(c *Context, self, activator *world.Object, target string) {
	if target == "" {
		return
	}
	var hits []arena.Handle
	c.Objects.Each(func(o *world.Object) {
		if o.TargetName == target && o.Self != self.Self {
			hits = append(hits, o.Self)
		}
	})
	for _, h := range hits {
		o := c.Lookup(h)
		if o == nil {
			continue
		}
		if fn, ok := c.Registry.Use.Get(o.Use); ok {
			fn(c, o, self, activator)
		}
	}
}
