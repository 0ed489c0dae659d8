package monster

import (
	"strings"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
)

// registrar registers behaviors and keeps the first error, so a class can
// be declared as a flat list of calls.
type registrar struct {
	reg     *sim.Registry
	scripts map[string]world.EventID // move kind -> scripted event
	err     error

	resumeEnd world.EndID
	deadEnd   world.EndID
}

func (g *registrar) fail(err error) {
	if g.err == nil && err != nil {
		g.err = err
	}
}

func (g *registrar) event(name string, fn sim.ThinkFunc) world.EventID {
	id, err := g.reg.Event.Register(name, fn)
	g.fail(err)
	return id
}

func (g *registrar) end(name string, fn sim.ThinkFunc) world.EndID {
	id, err := g.reg.End.Register(name, fn)
	g.fail(err)
	return id
}

func (g *registrar) pain(name string, fn sim.PainFunc) world.PainID {
	id, err := g.reg.Pain.Register(name, fn)
	g.fail(err)
	return id
}

func (g *registrar) die(name string, fn sim.DieFunc) world.DieID {
	id, err := g.reg.Die.Register(name, fn)
	g.fail(err)
	return id
}

func (g *registrar) use(name string, fn sim.UseFunc) world.UseID {
	id, err := g.reg.Use.Register(name, fn)
	g.fail(err)
	return id
}

func (g *registrar) class(cl *sim.Class) world.ClassID {
	id, err := g.reg.Class.Register(cl.Name, cl)
	g.fail(err)
	return id
}

// script registers a Lua frame event. frame_<kind> is attached to the first
// frame of every move of that kind.
func (g *registrar) script(name string, fn sim.ThinkFunc) {
	id := g.event(name, fn)
	if id != 0 {
		g.scripts[strings.TrimPrefix(name, scripting.FramePrefix)] = id
	}
}

// move registers prefix_kind over frames starting at first.
func (g *registrar) move(prefix, kind string, first int, frames []world.Frame, end world.EndID) world.MoveID {
	if len(frames) > 0 && frames[0].Event == 0 {
		frames[0].Event = g.scripts[kind]
	}
	id, err := g.reg.RegisterMove(&world.Move{
		Name:   prefix + "_" + kind,
		First:  first,
		Last:   first + len(frames) - 1,
		Frames: frames,
		End:    end,
	})
	g.fail(err)
	return id
}

// frames builds one frame per distance, all with the same locomotion.
func frames(ai world.AIKind, dists ...float64) []world.Frame {
	fs := make([]world.Frame, len(dists))
	for i, d := range dists {
		fs[i] = world.Frame{AI: ai, Dist: d}
	}
	return fs
}

// still builds n frames of ai without movement.
func still(ai world.AIKind, n int) []world.Frame {
	return frames(ai, make([]float64, n)...)
}

// on sets the event of frame index i.
func on(fs []world.Frame, ev world.EventID, idx ...int) []world.Frame {
	for _, i := range idx {
		fs[i].Event = ev
	}
	return fs
}

// enemyOf returns the live enemy of self, nil when gone or dead.
func enemyOf(c *sim.Context, self *world.Object) *world.Object {
	enemy := c.Lookup(self.Enemy)
	if enemy == nil || !enemy.Alive() {
		return nil
	}
	return enemy
}

// resume goes back to hunting after a one-off move, or to standing when
// there is nothing left to hunt.
func resume(c *sim.Context, self *world.Object) {
	cl := c.Class(self)
	if cl == nil {
		return
	}
	if enemyOf(c, self) != nil && !self.Actor.Flags.Has(world.AIStandGround) && cl.Run != nil {
		cl.Run(c, self)
		return
	}
	if cl.Stand != nil {
		cl.Stand(c, self)
	}
}

// dead holds the last frame of a death move and lowers the corpse.
func dead(c *sim.Context, self *world.Object) {
	self.Actor.Flags |= world.AIHoldFrame
	self.Maxs[2] = -8
	self.Velocity = world.Vec3{}
	c.Link(self)
}

// monsterUse makes a triggered monster go after the player who triggered it.
func monsterUse(c *sim.Context, self, _, activator *world.Object) {
	if !self.Alive() || self.Actor == nil || !activator.IsPlayer() || !activator.Alive() {
		return
	}
	if activator.Flags.Has(world.FlagNoTarget) || self.Actor.Flags.Has(world.AIGoodGuy) {
		return
	}
	self.Enemy = activator.Self
	system.FoundTarget(c, self)
}

// flinch is the shared pain reaction: rate-limited by PainDebounce, always
// audible, and without the pain move on nightmare.
func flinch(c *sim.Context, self *world.Object, sound string, move world.MoveID) bool {
	now := c.Now()
	if now < self.PainDebounce {
		return false
	}
	self.PainDebounce = now + c.Rules.PainDebounce
	c.Sound(self, sound)
	if c.Rules.Skill == sim.SkillNightmare {
		return false
	}
	c.SetMove(self, move)
	return true
}

// gib throws the body apart when health is past the gib threshold.
func gib(c *sim.Context, self *world.Object) bool {
	if self.Health > self.GibHealth {
		return false
	}
	c.Sound(self, "misc/udeath.wav")
	kind := event.EffectBlood
	switch {
	case self.Flags.Has(world.FlagMechanical):
		kind = event.EffectSparks
	case self.Flags.Has(world.FlagAlienBlood):
		kind = event.EffectGreenBlood
	}
	c.Effect(kind, self.Center(), world.Vec3{}, 4)
	self.Gibbed = true
	c.Release(self)
	return true
}

// muzzle is the firing point: ahead of the origin at gun height.
func muzzle(self *world.Object, ahead float64) world.Vec3 {
	forward, _, _ := world.AngleVectors(self.Angles)
	p := self.Origin.MA(ahead, forward)
	p[2] += self.Maxs[2] - 12
	return p
}

// aimAt is the direction from start to the upper body of target.
func aimAt(start world.Vec3, target *world.Object) world.Vec3 {
	end := target.Origin
	end[2] += target.Maxs[2] - 8
	return end.Sub(start)
}

// scriptEvent binds a Lua frame event.
func scriptEvent(lua *scripting.Engine, name string) sim.ThinkFunc {
	return func(c *sim.Context, self *world.Object) {
		ctx := scripting.FrameContext{
			Class:     self.ClassName,
			Health:    self.Health,
			MaxHealth: self.MaxHealth,
			Skill:     c.Rules.Skill,
		}
		if enemy := enemyOf(c, self); enemy != nil {
			ctx.HasEnemy = true
			ctx.EnemyRange = enemy.Origin.Sub(self.Origin).Len()
		}
		res := lua.RunFrame(name, ctx)
		if res.Sound != "" {
			c.Sound(self, res.Sound)
		}
		if res.Pause > 0 {
			self.Actor.PauseUntil = c.Now() + c.Clock.Ticks(time.Duration(res.Pause*float64(time.Second)))
		}
		if res.Move != "" {
			id, err := c.Registry.Move.Lookup(res.Move)
			if err != nil {
				arena.Raise(name, self.Self, err)
			}
			c.SetMove(self, id)
		}
	}
}

// repeat returns n copies of d.
func repeat(d float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = d
	}
	return out
}

// start returns a hook that plays id.
func start(id world.MoveID) sim.ThinkFunc {
	return func(c *sim.Context, self *world.Object) {
		c.SetMove(self, id)
	}
}

// sound returns a hook that plays a sound on the actor.
func sound(name string) sim.ThinkFunc {
	return func(c *sim.Context, self *world.Object) {
		c.Sound(self, name)
	}
}
