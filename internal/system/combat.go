package system

import (
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

const (
	minKnockbackMass = 50
	selfKnockback    = 1600.0
	otherKnockback   = 500.0
	healthFloor      = -999
)

// DamageRequest is one attack against one target. A nil Inflictor or
// Attacker means the world.
type DamageRequest struct {
	Target    *world.Object
	Inflictor *world.Object
	Attacker  *world.Object
	Dir       world.Vec3
	Point     world.Vec3
	Normal    world.Vec3
	Amount    int
	Knockback int
	Style     world.Style
	Cause     world.Cause
}

// ApplyDamage runs the combat pipeline for one hit. The step order is fixed:
// scaling, team rules, knockback, protection, power armor, armor, then
// health loss and either death or pain. A target that does not accept
// damage, or a non-positive amount, leaves everything untouched.
func ApplyDamage(c *sim.Context, d DamageRequest) {
	targ := d.Target
	if targ == nil || !targ.InUse || !targ.TakeDamage || d.Amount <= 0 {
		return
	}
	world0 := c.Objects.World()
	if d.Inflictor == nil {
		d.Inflictor = world0
	}
	if d.Attacker == nil {
		d.Attacker = world0
	}
	attacker := d.Attacker
	damage := d.Amount
	knockback := d.Knockback
	now := c.Now()

	// Easy skill halves damage to players in single player.
	if c.Rules.Skill == sim.SkillEasy && !c.Rules.Deathmatch && targ.IsPlayer() {
		damage /= 2
		if damage == 0 {
			damage = 1
		}
	}

	targ.MeansOfDeath = d.Cause
	targ.FriendlyFire = false
	if targ != attacker && sameTeam(c, targ, attacker) {
		if c.Rules.NoFriendlyFire && !d.Style.Has(world.StyleIgnoreFriendlyFire) {
			damage = 0
		} else {
			targ.FriendlyFire = true
		}
	}

	dir, _ := d.Dir.Normalize()

	// Bonus for surprising an actor.
	if !d.Style.Has(world.StyleRadius) && targ.IsActor() && attacker.IsPlayer() &&
		targ.Enemy.IsZero() && targ.Health > 0 {
		damage *= 2
	}

	if targ.Flags.Has(world.FlagNoKnockback) {
		knockback = 0
	}
	if !d.Style.Has(world.StyleNoKnockback) && knockback != 0 && !targ.MoveType.Immovable() {
		mass := float64(max(targ.Mass, minKnockbackMass))
		scale := otherKnockback
		if targ.IsPlayer() && attacker == targ {
			scale = selfKnockback
		}
		targ.Velocity = targ.Velocity.MA(scale*float64(knockback)/mass, dir)
	}

	take := damage
	save := 0
	protected := isProtected(c, targ) && !d.Style.Has(world.StyleNoProtection)
	if protected {
		take, save = 0, damage
		if now >= targ.PainDebounce {
			targ.Saved++
			targ.PainDebounce = now + c.Rules.ProtectDebounce
			event.Emit(c.Bus, event.Protected{Target: targ.Self, Saved: save})
			c.Effect(sparksFor(d.Style), d.Point, d.Normal, save)
			c.Sound(targ, "items/protect4.wav")
		}
	}

	psave := checkPowerArmor(c, targ, d.Point, d.Normal, take, d.Style)
	take -= psave
	asave := checkArmor(c, targ, d.Point, d.Normal, take, d.Style)
	take -= asave
	asave += save

	if d.Style.Has(world.StyleDestroyArmor) && !protected {
		take = damage
	}

	if take > 0 {
		c.Effect(impactEffect(targ, d.Style), d.Point, d.Normal, take)
		targ.Health -= take
		c.Metrics.Damage(take, d.Cause)

		if targ.Health <= 0 {
			if targ.Health < healthFloor {
				targ.Health = healthFloor
			}
			if d.Style.Has(world.StyleInstantGib) && targ.Health >= targ.GibHealth {
				targ.Health = max(targ.GibHealth-1, healthFloor)
			}
			if targ.IsActor() || targ.IsPlayer() {
				targ.Flags |= world.FlagNoKnockback
			}
			Killed(c, targ, d.Inflictor, attacker, take, d.Point)
			return
		}
	}

	switch {
	case targ.IsActor():
		ReactToDamage(c, targ, attacker)
		if !targ.Actor.Flags.Has(world.AIDucked) && take > 0 {
			pain(c, targ, attacker, float64(knockback), take)
			if c.Rules.Skill == sim.SkillNightmare {
				targ.PainDebounce = now + seconds(c, 5)
			}
		}
	case targ.IsPlayer():
		if !targ.Flags.Has(world.FlagGodMode) && take > 0 {
			pain(c, targ, attacker, float64(knockback), take)
		}
	case take > 0:
		pain(c, targ, attacker, float64(knockback), take)
	}

	if cl := targ.Client; cl != nil {
		cl.DamagePArmor += psave
		cl.DamageArmor += asave
		cl.DamageBlood += take
		cl.DamageKnockback += knockback
		cl.DamageFrom = d.Point
	}
}

func pain(c *sim.Context, targ, attacker *world.Object, kick float64, damage int) {
	if fn, ok := c.Registry.Pain.Get(targ.Pain); ok {
		fn(c, targ, attacker, kick, damage)
	}
}

// sameTeam applies only between players: everyone in coop, matching team
// names in team deathmatch.
func sameTeam(c *sim.Context, a, b *world.Object) bool {
	if !a.IsPlayer() || !b.IsPlayer() {
		return false
	}
	if c.Rules.Coop {
		return true
	}
	return c.Rules.Deathmatch && c.Rules.TeamPlay && a.Team != "" && a.Team == b.Team
}

func isProtected(c *sim.Context, targ *world.Object) bool {
	if targ.Flags.Has(world.FlagGodMode) {
		return true
	}
	return targ.Client != nil && targ.Client.InvincibleUntil > c.Now()
}

func sparksFor(style world.Style) event.EffectKind {
	if style.Has(world.StyleBullet) {
		return event.EffectBulletSparks
	}
	return event.EffectSparks
}

// impactEffect picks blood for organic players and actors, sparks for
// everything else.
func impactEffect(targ *world.Object, style world.Style) event.EffectKind {
	if !targ.IsActor() && !targ.IsPlayer() || targ.Flags.Has(world.FlagMechanical) {
		return sparksFor(style)
	}
	if targ.Flags.Has(world.FlagAlienBlood) {
		return event.EffectGreenBlood
	}
	return event.EffectBlood
}
