package system

import (
	"math"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

const (
	defaultStepSize = 18
	defaultYawSpeed = 20
)

// Locomote dispatches one frame of locomotion.
func Locomote(c *sim.Context, self *world.Object, kind world.AIKind, dist float64) {
	switch kind {
	case world.AIMove:
		if dist != 0 {
			WalkMove(c, self, self.Angles[world.Yaw], dist)
		}
	case world.AIStand:
		Stand(c, self, dist)
	case world.AIWalk:
		Walk(c, self, dist)
	case world.AIRun:
		Run(c, self, dist)
	case world.AICharge:
		Charge(c, self, dist)
	case world.AITurn:
		Turn(c, self, dist)
	}
}

// Stand idles in place watching for targets. Stand-ground actors keep
// facing and shooting at a live enemy without moving toward it.
func Stand(c *sim.Context, self *world.Object, dist float64) {
	a := self.Actor
	if dist != 0 {
		WalkMove(c, self, self.Angles[world.Yaw], dist)
	}
	if a.Flags.Has(world.AIStandGround) {
		if enemy := liveEnemy(c, self); enemy != nil {
			a.IdealYaw = yawTo(self, enemy)
			ChangeYaw(self)
			if Visible(c, self, enemy) {
				attackIfReady(c, self, enemy)
			}
			return
		}
		self.Enemy = arena.None
		FindTarget(c, self)
		return
	}
	if FindTarget(c, self) {
		return
	}
	if a.IdleTime != 0 && c.Now() >= a.IdleTime {
		a.IdleTime = 0
		if cl := c.Class(self); cl != nil && cl.Walk != nil {
			cl.Walk(c, self)
		}
	}
}

// Walk patrols along the current facing, turning away from obstacles.
func Walk(c *sim.Context, self *world.Object, dist float64) {
	if FindTarget(c, self) {
		return
	}
	a := self.Actor
	ChangeYaw(self)
	if dist != 0 && !WalkMove(c, self, self.Angles[world.Yaw], dist) {
		a.IdealYaw = world.AngleMod(self.Angles[world.Yaw] + 90 + 180*c.Random())
	}
	if cl := c.Class(self); cl != nil && cl.Search != nil && c.Now() >= a.SearchTime {
		if a.SearchTime != 0 {
			cl.Search(c, self)
		}
		a.SearchTime = c.Now() + seconds(c, 15+15*c.Random())
	}
}

// Run pursues the enemy and decides when to attack. A dead or freed enemy
// is the signal to look for another target or fall back to standing.
func Run(c *sim.Context, self *world.Object, dist float64) {
	a := self.Actor
	enemy := liveEnemy(c, self)
	if enemy == nil {
		self.Enemy = arena.None
		a.AttackState = world.AttackStraight
		if !FindTarget(c, self) {
			standDown(c, self)
		}
		return
	}
	if a.Flags.Has(world.AIStandGround) {
		standDown(c, self)
		return
	}

	visible := Visible(c, self, enemy)
	if visible {
		a.LastSighting = enemy.Origin
		a.Flags &^= world.AILostSight
		a.SearchTime = c.Now() + c.Clock.Ticks(5*time.Second)
	} else {
		a.Flags |= world.AILostSight
		if c.Now() >= a.SearchTime {
			self.Enemy = arena.None
			a.AttackState = world.AttackStraight
			if cl := c.Class(self); cl != nil && cl.Search != nil {
				cl.Search(c, self)
			}
			standDown(c, self)
			return
		}
	}
	if visible && attackIfReady(c, self, enemy) {
		return
	}

	a.IdealYaw = world.VecToYaw(a.LastSighting.Sub(self.Origin))
	ChangeYaw(self)
	if dist != 0 {
		chase(c, self, dist)
	}
}

// Charge closes in on the enemy while an attack move plays.
func Charge(c *sim.Context, self *world.Object, dist float64) {
	if enemy := liveEnemy(c, self); enemy != nil {
		self.Actor.IdealYaw = yawTo(self, enemy)
	}
	ChangeYaw(self)
	if dist != 0 {
		WalkMove(c, self, self.Angles[world.Yaw], dist)
	}
}

// Turn faces the enemy without moving along the frame.
func Turn(c *sim.Context, self *world.Object, dist float64) {
	if dist != 0 {
		WalkMove(c, self, self.Angles[world.Yaw], dist)
	}
	if enemy := liveEnemy(c, self); enemy != nil {
		self.Actor.IdealYaw = yawTo(self, enemy)
	} else if FindTarget(c, self) {
		return
	}
	ChangeYaw(self)
}

func standDown(c *sim.Context, self *world.Object) {
	if cl := c.Class(self); cl != nil && cl.Stand != nil {
		cl.Stand(c, self)
	}
}

// chase steps toward the ideal yaw, trying side angles when blocked.
func chase(c *sim.Context, self *world.Object, dist float64) bool {
	ideal := self.Actor.IdealYaw
	for _, off := range [...]float64{0, 45, -45, 90, -90} {
		if WalkMove(c, self, world.AngleMod(ideal+off), dist) {
			return true
		}
	}
	return false
}

// ChangeYaw turns toward IdealYaw by at most YawSpeed degrees.
func ChangeYaw(self *world.Object) {
	a := self.Actor
	current := world.AngleMod(self.Angles[world.Yaw])
	ideal := world.AngleMod(a.IdealYaw)
	if current == ideal {
		return
	}
	speed := a.YawSpeed
	if speed <= 0 {
		speed = defaultYawSpeed
	}
	move := ideal - current
	if move > 180 {
		move -= 360
	} else if move < -180 {
		move += 360
	}
	move = math.Max(-speed, math.Min(speed, move))
	self.Angles[world.Yaw] = world.AngleMod(current + move)
}

// FacingIdeal reports whether the actor is within 45 degrees of IdealYaw.
func FacingIdeal(self *world.Object) bool {
	delta := world.AngleMod(self.Angles[world.Yaw] - self.Actor.IdealYaw)
	return delta <= 45 || delta >= 315
}

// WalkMove moves an actor dist units along yaw. Ground walkers must be on
// the ground to move.
func WalkMove(c *sim.Context, self *world.Object, yaw, dist float64) bool {
	if !self.Flags.Has(world.FlagOnGround | world.FlagFly | world.FlagSwim) {
		return false
	}
	return MoveStep(c, self, world.YawVector(yaw).Scale(dist))
}

// MoveStep validates and commits a displacement. Flyers and swimmers move
// freely but never into solids, drifting toward their enemy's height.
// Walkers climb or descend at most one step and refuse to walk off ledges
// unless already partially off the ground. A refused move leaves the actor
// where it was and returns false.
func MoveStep(c *sim.Context, self *world.Object, move world.Vec3) bool {
	oldorg := self.Origin

	if self.Flags.Has(world.FlagFly | world.FlagSwim) {
		enemy := liveEnemy(c, self)
		for i := 0; i < 2; i++ {
			neworg := oldorg.Add(move)
			if i == 0 && enemy != nil {
				dz := self.Origin[2] - enemy.Origin[2]
				if dz > 40 {
					neworg[2] -= 8
				} else if dz < 30 {
					neworg[2] += 8
				}
			}
			tr := c.Spatial.Trace(oldorg, self.Mins, self.Maxs, neworg, self.Self, world.MaskMonsterSolid)
			if !tr.Blocked() {
				self.Origin = tr.EndPos
				c.Link(self)
				return true
			}
			if enemy == nil {
				break
			}
		}
		return false
	}

	step := stepSize(self)
	neworg := oldorg.Add(move)
	neworg[2] += step
	end := neworg
	end[2] -= step * 2

	tr := c.Spatial.Trace(neworg, self.Mins, self.Maxs, end, self.Self, world.MaskMonsterSolid)
	if tr.AllSolid {
		return false
	}
	if tr.StartSolid {
		neworg[2] -= step
		tr = c.Spatial.Trace(neworg, self.Mins, self.Maxs, end, self.Self, world.MaskMonsterSolid)
		if tr.AllSolid || tr.StartSolid {
			return false
		}
	}
	if tr.Fraction == 1 {
		// Nothing underfoot.
		if self.Flags.Has(world.FlagPartialGround) {
			self.Origin = oldorg.Add(move)
			self.Flags &^= world.FlagOnGround
			c.Link(self)
			return true
		}
		return false
	}

	self.Origin = tr.EndPos
	if !CheckBottom(c, self) {
		if self.Flags.Has(world.FlagPartialGround) {
			c.Link(self)
			return true
		}
		self.Origin = oldorg
		return false
	}
	self.Flags &^= world.FlagPartialGround
	self.Flags |= world.FlagOnGround
	c.Link(self)
	return true
}

// CheckBottom reports whether the actor's box is supported: either every
// bottom corner rests on solid ground, or no corner drops more than a step
// below the ground under the center.
func CheckBottom(c *sim.Context, self *world.Object) bool {
	mins, maxs := self.AbsMin(), self.AbsMax()
	corners := [4]world.Vec3{
		{mins[0], mins[1], mins[2]},
		{mins[0], maxs[1], mins[2]},
		{maxs[0], mins[1], mins[2]},
		{maxs[0], maxs[1], mins[2]},
	}

	supported := true
	for _, p := range corners {
		p[2]--
		if !pointSolid(c, p) {
			supported = false
			break
		}
	}
	if supported {
		return true
	}

	step := stepSize(self)
	stop := mins[2] - 2*step
	mid := world.Vec3{(mins[0] + maxs[0]) / 2, (mins[1] + maxs[1]) / 2, mins[2]}
	tr := c.Spatial.Trace(mid, world.Vec3{}, world.Vec3{}, world.Vec3{mid[0], mid[1], stop}, self.Self, world.MaskMonsterSolid)
	if tr.Fraction == 1 {
		return false
	}
	ground := tr.EndPos[2]
	for _, p := range corners {
		tr = c.Spatial.Trace(p, world.Vec3{}, world.Vec3{}, world.Vec3{p[0], p[1], stop}, self.Self, world.MaskMonsterSolid)
		if tr.Fraction == 1 || ground-tr.EndPos[2] > step {
			return false
		}
	}
	return true
}

// DropToFloor settles a walker onto the ground below it, at most 256 units
// down. It reports false when nothing is underneath or the actor starts
// inside a solid.
func DropToFloor(c *sim.Context, self *world.Object) bool {
	end := self.Origin
	end[2] -= 256
	tr := c.Spatial.Trace(self.Origin, self.Mins, self.Maxs, end, self.Self, world.MaskMonsterSolid)
	if tr.Fraction == 1 || tr.AllSolid || tr.StartSolid {
		return false
	}
	self.Origin = tr.EndPos
	self.Flags |= world.FlagOnGround
	c.Link(self)
	return true
}

func stepSize(self *world.Object) float64 {
	if self.Actor != nil && self.Actor.StepSize > 0 {
		return self.Actor.StepSize
	}
	return defaultStepSize
}

func pointSolid(c *sim.Context, p world.Vec3) bool {
	return c.Spatial.Trace(p, world.Vec3{}, world.Vec3{}, p, arena.None, world.MaskSolid).StartSolid
}

func yawTo(self, other *world.Object) float64 {
	return world.VecToYaw(other.Origin.Sub(self.Origin))
}

// seconds converts a float duration into ticks.
func seconds(c *sim.Context, s float64) world.Tick {
	return c.Clock.Ticks(time.Duration(s * float64(time.Second)))
}
