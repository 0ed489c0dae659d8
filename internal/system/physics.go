package system

import (
	"math"

	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

const (
	gravity   = 800
	stopSpeed = 100
	friction  = 6
)

func needsPhysics(o *world.Object) bool {
	switch o.MoveType {
	case world.MoveFlyMissile, world.MoveToss, world.MoveBounce:
		return true
	case world.MoveStep:
		return !o.Velocity.IsZero() || !o.Flags.Has(world.FlagOnGround|world.FlagFly|world.FlagSwim)
	}
	return false
}

func runPhysics(c *sim.Context, o *world.Object) {
	switch o.MoveType {
	case world.MoveFlyMissile, world.MoveToss, world.MoveBounce:
		physicsToss(c, o)
	case world.MoveStep:
		physicsStep(c, o)
	}
}

// physicsToss moves missiles in a straight line and tossed objects under
// gravity. Hitting something calls the touch hooks of both sides.
func physicsToss(c *sim.Context, o *world.Object) {
	ft := c.Clock.FrameTime()
	if o.MoveType != world.MoveFlyMissile {
		if o.Flags.Has(world.FlagOnGround) {
			return
		}
		o.Velocity[2] -= gravity * ft
	}

	end := o.Origin.MA(ft, o.Velocity)
	tr := c.Spatial.Trace(o.Origin, o.Mins, o.Maxs, end, o.Self, world.MaskShot)
	o.Origin = tr.EndPos
	c.Link(o)
	if !tr.Blocked() {
		return
	}

	switch o.MoveType {
	case world.MoveBounce:
		o.Velocity = clipVelocity(o.Velocity, tr.Normal, 1.5)
	case world.MoveToss:
		o.Velocity = clipVelocity(o.Velocity, tr.Normal, 1)
	}
	if o.MoveType != world.MoveFlyMissile && tr.Normal[2] > 0.7 {
		o.Velocity = world.Vec3{}
		o.Flags |= world.FlagOnGround
	}
	impact(c, o, c.Lookup(tr.Hit), tr.Normal, tr.Surface)
}

// physicsStep applies knockback velocity, gravity and ground friction to
// actors and corpses.
func physicsStep(c *sim.Context, o *world.Object) {
	ft := c.Clock.FrameTime()
	airborne := o.Flags.Has(world.FlagFly | world.FlagSwim)
	onGround := o.Flags.Has(world.FlagOnGround)

	if !onGround && !airborne {
		o.Velocity[2] -= gravity * ft
	}
	if onGround || airborne {
		axes := 2
		if airborne {
			axes = 3
		}
		speed := 0.0
		for i := 0; i < axes; i++ {
			speed += o.Velocity[i] * o.Velocity[i]
		}
		speed = math.Sqrt(speed)
		if speed > 0 {
			control := math.Max(speed, stopSpeed)
			next := math.Max(speed-ft*control*friction, 0)
			for i := 0; i < axes; i++ {
				o.Velocity[i] *= next / speed
			}
		}
	}
	if o.Velocity.IsZero() {
		return
	}

	end := o.Origin.MA(ft, o.Velocity)
	tr := c.Spatial.Trace(o.Origin, o.Mins, o.Maxs, end, o.Self, world.MaskMonsterSolid)
	if tr.AllSolid {
		o.Velocity = world.Vec3{}
		return
	}
	o.Origin = tr.EndPos
	if tr.Blocked() {
		if tr.Normal[2] > 0.7 {
			o.Flags |= world.FlagOnGround
			o.Velocity[2] = 0
		}
		o.Velocity = clipVelocity(o.Velocity, tr.Normal, 1)
	}
	if !airborne && o.Velocity[2] > 0 {
		o.Flags &^= world.FlagOnGround
	} else if !airborne && o.Flags.Has(world.FlagOnGround) {
		below := o.Origin
		below[2]--
		if !c.Spatial.Trace(o.Origin, o.Mins, o.Maxs, below, o.Self, world.MaskMonsterSolid).Blocked() {
			o.Flags &^= world.FlagOnGround
		}
	}
	c.Link(o)
}

// clipVelocity slides v along a surface.
func clipVelocity(v, normal world.Vec3, overbounce float64) world.Vec3 {
	backoff := v.Dot(normal) * overbounce
	out := v.MA(-backoff, normal)
	for i := range out {
		if out[i] > -0.1 && out[i] < 0.1 {
			out[i] = 0
		}
	}
	return out
}

// impact runs the touch hooks of two objects that collided. A nil other is
// the world.
func impact(c *sim.Context, self, other *world.Object, normal world.Vec3, surface string) {
	if other == nil {
		other = c.Objects.World()
	}
	if fn, ok := c.Registry.Touch.Get(self.Touch); ok && self.InUse {
		fn(c, self, other, normal, surface)
	}
	if fn, ok := c.Registry.Touch.Get(other.Touch); ok && other.InUse && self.InUse {
		fn(c, other, self, world.Vec3{}, "")
	}
}
