package system

import (
	"math"

	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// checkPowerArmor returns how much of damage the target's power armor
// absorbs, spending cells. Screens only cover hits from the front.
func checkPowerArmor(c *sim.Context, targ *world.Object, point, normal world.Vec3, damage int, style world.Style) int {
	pa := &targ.PowerArmor
	if damage <= 0 || style.Has(world.StyleNoArmor) || pa.Kind == world.PowerArmorNone || pa.Cells <= 0 {
		return 0
	}

	var perCell int
	var effect event.EffectKind
	switch pa.Kind {
	case world.PowerArmorScreen:
		forward, _, _ := world.AngleVectors(targ.Angles)
		vec, _ := point.Sub(targ.Origin).Normalize()
		if vec.Dot(forward) <= 0.3 {
			return 0
		}
		perCell = 1
		effect = event.EffectScreenSparks
		damage /= 3
	case world.PowerArmorShield:
		perCell = 2
		if style.Has(world.StyleEnergy) {
			perCell = 1
		}
		effect = event.EffectShieldSparks
		damage = 2 * damage / 3
	default:
		return 0
	}

	save := min(pa.Cells*perCell, damage)
	if save <= 0 {
		return 0
	}
	c.Effect(effect, point, normal, save)
	pa.Cells -= save / perCell
	return save
}

// checkArmor returns how much of damage regular armor absorbs, spending
// points: ceil(coefficient * damage) clamped to what is left.
func checkArmor(c *sim.Context, targ *world.Object, point, normal world.Vec3, damage int, style world.Style) int {
	ar := &targ.Armor
	if damage <= 0 || style.Has(world.StyleNoArmor) || ar.Kind == world.ArmorNone || ar.Points <= 0 {
		return 0
	}
	spec, ok := c.Armor.Armor(ar.Kind)
	if !ok {
		return 0
	}
	coef := spec.Normal
	if style.Has(world.StyleEnergy) {
		coef = spec.Energy
	}
	save := min(int(math.Ceil(coef*float64(damage))), ar.Points)
	if save <= 0 {
		return 0
	}
	ar.Points -= save
	c.Effect(sparksFor(style), point, normal, save)
	return save
}
