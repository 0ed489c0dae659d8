package system

import (
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

const traceRange = 8192

// Behavior keys registered by Register.
const (
	KeyFreeSelf    = "free_self"
	KeyBoltTouch   = "bolt_touch"
	KeyRocketTouch = "rocket_touch"
)

// Bullet is a hitscan attack. Spread is in units at the end of the trace.
type Bullet struct {
	Damage  int
	Kick    int
	HSpread float64
	VSpread float64
	Count   int
	Cause   world.Cause
}

// FireBullet traces Count pellets (at least one) from start along aim.
// Each pellet that reaches a damageable object runs the combat pipeline;
// others leave a spark on the surface they hit.
func FireBullet(c *sim.Context, self *world.Object, start, aim world.Vec3, b Bullet) {
	forward, right, up := world.AngleVectors(world.VecToAngles(aim))
	for i := 0; i < max(b.Count, 1); i++ {
		end := start.MA(traceRange, forward).
			MA(c.Crandom()*b.HSpread, right).
			MA(c.Crandom()*b.VSpread, up)
		tr := c.Spatial.Trace(start, world.Vec3{}, world.Vec3{}, end, self.Self, world.MaskShot)
		if !tr.Blocked() {
			continue
		}
		if hit := c.Lookup(tr.Hit); hit != nil && hit.TakeDamage {
			ApplyDamage(c, DamageRequest{
				Target:    hit,
				Inflictor: self,
				Attacker:  self,
				Dir:       aim,
				Point:     tr.EndPos,
				Normal:    tr.Normal,
				Amount:    b.Damage,
				Knockback: b.Kick,
				Style:     world.StyleBullet,
				Cause:     b.Cause,
			})
			continue
		}
		if tr.Surface != "sky" {
			c.Effect(event.EffectBulletSparks, tr.EndPos, tr.Normal, 1)
		}
	}
}

// Projectile describes a flying missile.
type Projectile struct {
	Damage       int
	Speed        float64
	RadiusDamage int
	DamageRadius float64
	Style        world.Style
	Cause        world.Cause
}

// FireBolt launches an energy bolt that damages what it touches.
func FireBolt(c *sim.Context, self *world.Object, start, dir world.Vec3, p Projectile) *world.Object {
	if p.Cause == "" {
		p.Cause = world.CauseBlaster
	}
	bolt := launch(c, self, start, dir, p, "bolt", KeyBoltTouch)
	bolt.NextThink = c.Now() + c.Clock.Ticks(2*time.Second)
	checkLaunch(c, self, bolt)
	return bolt
}

// FireRocket launches a rocket that explodes on contact.
func FireRocket(c *sim.Context, self *world.Object, start, dir world.Vec3, p Projectile) *world.Object {
	if p.Cause == "" {
		p.Cause = world.CauseRocket
	}
	rocket := launch(c, self, start, dir, p, "rocket", KeyRocketTouch)
	life := 8000 / max(p.Speed, 1)
	rocket.NextThink = c.Now() + seconds(c, life)
	checkLaunch(c, self, rocket)
	return rocket
}

func launch(c *sim.Context, self *world.Object, start, dir world.Vec3, p Projectile, class, touch string) *world.Object {
	dir, _ = dir.Normalize()
	o := c.Spawn(start)
	o.ClassName = class
	o.Kind = world.KindWorld
	o.MoveType = world.MoveFlyMissile
	o.Solid = world.SolidBBox
	o.Angles = world.VecToAngles(dir)
	o.Velocity = dir.Scale(p.Speed)
	o.Owner = self.Self
	o.Damage = p.Damage
	o.RadiusDamage = p.RadiusDamage
	o.DamageRadius = p.DamageRadius
	o.Cause = p.Cause
	o.Touch = touchKey(c, touch)
	o.Think = thinkKey(c, KeyFreeSelf)
	return o
}

// checkLaunch detonates a missile at once when its muzzle is behind a wall
// or inside another object.
func checkLaunch(c *sim.Context, self, missile *world.Object) {
	tr := c.Spatial.Trace(self.Origin, world.Vec3{}, world.Vec3{}, missile.Origin, self.Self, world.MaskShot)
	if !tr.Blocked() {
		return
	}
	missile.Origin = tr.EndPos.MA(-10, missile.Velocity.Scale(1/max(missile.Velocity.Len(), 1)))
	c.Link(missile)
	impact(c, missile, c.Lookup(tr.Hit), tr.Normal, tr.Surface)
}

func boltTouch(c *sim.Context, self, other *world.Object, normal world.Vec3, surface string) {
	if other.Self == self.Owner {
		return
	}
	if surface == "sky" {
		c.Release(self)
		return
	}
	if other.TakeDamage {
		ApplyDamage(c, DamageRequest{
			Target:    other,
			Inflictor: self,
			Attacker:  ownerOf(c, self),
			Dir:       self.Velocity,
			Point:     self.Origin,
			Normal:    normal,
			Amount:    self.Damage,
			Knockback: 1,
			Style:     world.StyleEnergy,
			Cause:     self.Cause,
		})
	} else {
		c.Effect(event.EffectSparks, self.Origin, normal, 1)
	}
	c.Release(self)
}

func rocketTouch(c *sim.Context, self, other *world.Object, normal world.Vec3, surface string) {
	if other.Self == self.Owner {
		return
	}
	if surface == "sky" {
		c.Release(self)
		return
	}
	attacker := ownerOf(c, self)
	if other.TakeDamage {
		ApplyDamage(c, DamageRequest{
			Target:    other,
			Inflictor: self,
			Attacker:  attacker,
			Dir:       self.Velocity,
			Point:     self.Origin,
			Normal:    normal,
			Amount:    self.Damage,
			Cause:     self.Cause,
		})
	}
	ApplyRadiusDamage(c, RadiusRequest{
		Inflictor: self,
		Attacker:  attacker,
		Amount:    float64(self.RadiusDamage),
		Ignore:    other,
		Radius:    self.DamageRadius,
		Cause:     world.CauseRocketSplash,
	})
	c.Effect(event.EffectExplosion, self.Origin, normal, 1)
	c.Release(self)
}

func freeSelf(c *sim.Context, self *world.Object) {
	c.Release(self)
}

// ownerOf resolves the object that fired self, the world when it is gone.
func ownerOf(c *sim.Context, self *world.Object) *world.Object {
	if o := c.Lookup(self.Owner); o != nil {
		return o
	}
	return c.Objects.World()
}

func touchKey(c *sim.Context, name string) world.TouchID {
	id, err := c.Registry.Touch.Lookup(name)
	if err != nil {
		arena.Raise("lookup touch", c.Current(), err)
	}
	return id
}

func thinkKey(c *sim.Context, name string) world.ThinkID {
	id, err := c.Registry.Think.Lookup(name)
	if err != nil {
		arena.Raise("lookup think", c.Current(), err)
	}
	return id
}
