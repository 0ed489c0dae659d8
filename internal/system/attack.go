package system

import (
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// CheckAttack is the generic attack decision. Melee-capable actors always
// swing at melee range (most of the time on easy). Otherwise a clear shot,
// an expired AttackFinished and a range-based chance are required; a
// positive decision arms AttackState and a 0-2s cooldown.
func CheckAttack(c *sim.Context, self *world.Object) bool {
	enemy := liveEnemy(c, self)
	if enemy == nil {
		return false
	}
	a := self.Actor

	tr := c.Spatial.Trace(eye(self), world.Vec3{}, world.Vec3{}, eye(enemy), self.Self, world.MaskShot)
	if tr.Blocked() && tr.Hit != enemy.Self {
		return false
	}

	cl := c.Class(self)
	r := Range(self, enemy)
	if r == RangeMelee && cl != nil && cl.Melee != nil {
		if c.Rules.Skill == sim.SkillEasy && c.Rand.Intn(4) != 0 {
			return false
		}
		a.AttackState = world.AttackMelee
		return true
	}
	if cl == nil || cl.Attack == nil {
		return false
	}
	if c.Now() < a.AttackFinished || r == RangeFar {
		return false
	}

	var chance float64
	switch {
	case a.Flags.Has(world.AIStandGround):
		chance = 0.4
	case r == RangeMelee:
		chance = 0.2
	case r == RangeNear:
		chance = 0.1
	case r == RangeMid:
		chance = 0.02
	}
	switch c.Rules.Skill {
	case sim.SkillEasy:
		chance *= 0.5
	case sim.SkillHard, sim.SkillNightmare:
		chance *= 2
	}
	if c.Random() < chance {
		a.AttackState = world.AttackMissile
		a.AttackFinished = c.Now() + seconds(c, 2*c.Random())
		return true
	}
	return false
}

// attackIfReady carries out an armed attack, or decides whether to arm one.
// Missile attacks wait until the actor faces its enemy.
func attackIfReady(c *sim.Context, self, enemy *world.Object) bool {
	a := self.Actor
	cl := c.Class(self)
	if a.AttackState == world.AttackStraight {
		var decided bool
		if cl != nil && cl.CheckAttack != nil {
			decided = cl.CheckAttack(c, self)
		} else {
			decided = CheckAttack(c, self)
		}
		if !decided {
			return false
		}
	}

	switch a.AttackState {
	case world.AttackMelee:
		a.AttackState = world.AttackStraight
		if cl != nil && cl.Melee != nil {
			cl.Melee(c, self)
		}
		return true
	case world.AttackMissile:
		a.IdealYaw = yawTo(self, enemy)
		ChangeYaw(self)
		if !FacingIdeal(self) {
			return true
		}
		a.AttackState = world.AttackStraight
		if cl != nil && cl.Attack != nil {
			cl.Attack(c, self)
		}
		return true
	}
	return false
}

// FireHit resolves a melee swing at the enemy. aim[0] is the reach, aim[1]
// the sideways offset of the strike point, aim[2] its height above the
// attacker's origin. It returns false on a miss.
func FireHit(c *sim.Context, self *world.Object, aim world.Vec3, damage, kick int) bool {
	enemy := liveEnemy(c, self)
	if enemy == nil {
		return false
	}

	dir := enemy.Origin.Sub(self.Origin)
	reach := dir.Len()
	if reach > aim[0] {
		return false
	}

	forward, right, _ := world.AngleVectors(self.Angles)
	point := self.Origin.MA(reach, forward).MA(aim[1], right)
	point[2] += aim[2]

	tr := c.Spatial.Trace(self.Origin, world.Vec3{}, world.Vec3{}, point, self.Self, world.MaskShot)
	target := enemy
	if tr.Fraction < 1 {
		hit := c.Lookup(tr.Hit)
		if hit == nil || !hit.TakeDamage {
			return false
		}
		target = hit
		point = tr.EndPos
	}

	normal := forward.Scale(-1)
	ApplyDamage(c, DamageRequest{
		Target:    target,
		Inflictor: self,
		Attacker:  self,
		Dir:       dir,
		Point:     point,
		Normal:    normal,
		Amount:    damage,
		Knockback: kick / 2,
		Style:     world.StyleNoKnockback,
		Cause:     world.CauseHit,
	})

	// Do our own kick: away from the strike point.
	if target.InUse && !target.MoveType.Immovable() {
		push, _ := target.Center().Sub(point).Normalize()
		target.Velocity = target.Velocity.MA(float64(kick), push)
		if target.Velocity[2] > 0 {
			target.Flags &^= world.FlagOnGround
		}
	}
	return true
}
