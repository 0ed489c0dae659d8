package system

import (
	"time"

	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// RangeBucket classifies the distance between two objects.
type RangeBucket int

const (
	RangeMelee RangeBucket = iota
	RangeNear
	RangeMid
	RangeFar
)

const (
	meleeDistance     = 80
	defaultSightRange = 1000
)

func Range(self, other *world.Object) RangeBucket {
	d := other.Origin.Sub(self.Origin).Len()
	switch {
	case d < meleeDistance:
		return RangeMelee
	case d < 500:
		return RangeNear
	case d < 1000:
		return RangeMid
	}
	return RangeFar
}

// eye is the point an object sees and shoots from.
func eye(o *world.Object) world.Vec3 {
	p := o.Origin
	p[2] += o.Maxs[2] - 8
	return p
}

// Visible reports an unobstructed line of sight through level geometry.
func Visible(c *sim.Context, self, other *world.Object) bool {
	tr := c.Spatial.Trace(eye(self), world.Vec3{}, world.Vec3{}, eye(other), self.Self, world.MaskSolid)
	return tr.Fraction == 1
}

// InFront reports whether other is inside a wide cone ahead of self.
func InFront(self, other *world.Object) bool {
	forward, _, _ := world.AngleVectors(self.Angles)
	dir, _ := other.Origin.Sub(self.Origin).Normalize()
	return dir.Dot(forward) > 0.3
}

// liveEnemy dereferences the stored enemy, nil when it is gone or dead.
func liveEnemy(c *sim.Context, self *world.Object) *world.Object {
	if self.Enemy.IsZero() {
		return nil
	}
	enemy := c.Lookup(self.Enemy)
	if enemy == nil || !enemy.Alive() {
		return nil
	}
	return enemy
}

// FindTarget looks for the nearest live player the actor can see. Players
// behind the actor are noticed only at melee range; far players never.
func FindTarget(c *sim.Context, self *world.Object) bool {
	a := self.Actor
	if a == nil || a.Flags.Has(world.AIGoodGuy|world.AIDetached) {
		return false
	}
	sight := a.SightRange
	if sight <= 0 {
		sight = defaultSightRange
	}

	var best *world.Object
	bestDist := sight
	c.Objects.Players(func(p *world.Object) {
		if !p.Alive() || p.Flags.Has(world.FlagNoTarget) {
			return
		}
		d := p.Origin.Sub(self.Origin).Len()
		if d > bestDist {
			return
		}
		switch r := Range(self, p); {
		case r == RangeFar:
			return
		case r != RangeMelee && !InFront(self, p):
			return
		}
		if !Visible(c, self, p) {
			return
		}
		best, bestDist = p, d
	})
	if best == nil {
		return false
	}
	self.Enemy = best.Self
	FoundTarget(c, self)
	return true
}

// FoundTarget records first sight of the enemy and starts the hunt.
func FoundTarget(c *sim.Context, self *world.Object) {
	enemy := c.Lookup(self.Enemy)
	if enemy == nil {
		return
	}
	a := self.Actor
	a.LastSighting = enemy.Origin
	a.SearchTime = c.Now() + c.Clock.Ticks(5*time.Second)
	a.Flags &^= world.AILostSight
	if cl := c.Class(self); cl != nil && cl.Sight != nil {
		cl.Sight(c, self)
	}
	HuntTarget(c, self)
}

// HuntTarget switches to the run (or stand-ground) move and delays the first
// shot by a second.
func HuntTarget(c *sim.Context, self *world.Object) {
	enemy := c.Lookup(self.Enemy)
	if enemy == nil {
		return
	}
	a := self.Actor
	a.IdealYaw = yawTo(self, enemy)
	if cl := c.Class(self); cl != nil {
		if a.Flags.Has(world.AIStandGround) {
			if cl.Stand != nil {
				cl.Stand(c, self)
			}
		} else if cl.Run != nil {
			cl.Run(c, self)
		}
	}
	a.AttackFinished = c.Now() + c.Clock.Ticks(time.Second)
}
