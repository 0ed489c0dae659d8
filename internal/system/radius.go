package system

import (
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// RadiusRequest describes a splash of damage centered on the inflictor.
type RadiusRequest struct {
	Inflictor *world.Object
	Attacker  *world.Object
	Amount    float64
	Ignore    *world.Object
	Radius    float64
	Style     world.Style
	Cause     world.Cause
}

// ApplyRadiusDamage hurts every object within Radius of the inflictor with
// a linear falloff of half a point per unit from the target's center. The
// attacker takes half unless the style says otherwise, and occluded targets
// take nothing. Callers must not rely on the visiting order.
func ApplyRadiusDamage(c *sim.Context, r RadiusRequest) {
	inflictor := r.Inflictor
	origin := inflictor.Origin
	for _, h := range c.Spatial.QueryRegion(origin, r.Radius) {
		ent := c.Lookup(h)
		if ent == nil || !ent.TakeDamage {
			continue
		}
		if r.Ignore != nil && ent == r.Ignore {
			continue
		}
		points := RadiusPoints(r.Amount, origin, ent)
		if ent == r.Attacker && !r.Style.Has(world.StyleNoRadiusHalving) {
			points *= 0.5
		}
		if points <= 0 || !CanDamage(c, ent, inflictor) {
			continue
		}
		ApplyDamage(c, DamageRequest{
			Target:    ent,
			Inflictor: inflictor,
			Attacker:  r.Attacker,
			Dir:       ent.Origin.Sub(origin),
			Point:     origin,
			Amount:    int(points),
			Knockback: int(points),
			Style:     r.Style | world.StyleRadius,
			Cause:     r.Cause,
		})
	}
}

// RadiusPoints is the falloff damage at ent's bounding box center.
func RadiusPoints(amount float64, origin world.Vec3, ent *world.Object) float64 {
	return amount - 0.5*origin.Sub(ent.Center()).Len()
}

// CanDamage reports whether an explosion at the inflictor reaches targ: its
// origin or one of four points 15 units around it must be in the clear.
// Brush movers are tested at their box center.
func CanDamage(c *sim.Context, targ, inflictor *world.Object) bool {
	reaches := func(dest world.Vec3) bool {
		tr := c.Spatial.Trace(inflictor.Origin, world.Vec3{}, world.Vec3{}, dest, inflictor.Self, world.MaskSolid)
		return tr.Fraction == 1
	}
	if targ.MoveType == world.MovePush {
		return reaches(targ.Center())
	}
	if reaches(targ.Origin) {
		return true
	}
	for _, off := range [...]world.Vec3{{15, 15, 0}, {15, -15, 0}, {-15, 15, 0}, {-15, -15, 0}} {
		if reaches(targ.Origin.Add(off)) {
			return true
		}
	}
	return false
}
