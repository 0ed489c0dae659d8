package system

import (
	"strings"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
	"go.uber.org/zap"
)

// Killed performs the death transition. Actors and players become inert
// corpses detached from the behavior engine; other objects (doors, barrels)
// only get their die hook.
func Killed(c *sim.Context, targ, inflictor, attacker *world.Object, damage int, point world.Vec3) {
	if targ.Health < healthFloor {
		targ.Health = healthFloor
	}
	targ.Enemy = attacker.Self
	c.Metrics.Kill(targ.MeansOfDeath)
	event.Emit(c.Bus, event.ObjectKilled{
		Victim:    targ.Self,
		Inflictor: inflictor.Self,
		Attacker:  attacker.Self,
		Cause:     string(targ.MeansOfDeath),
		Damage:    damage,
	})

	if !targ.IsActor() && !targ.IsPlayer() {
		die(c, targ, inflictor, attacker, damage, point)
		return
	}

	if targ.IsActor() && targ.Kind != world.KindCorpse {
		if !targ.Actor.Flags.Has(world.AIGoodGuy) {
			c.Level.KilledMonsters++
			if c.Rules.Coop && attacker.IsPlayer() {
				attacker.Client.Score++
			}
			// Medics do not revive their own kills.
			if attacker.IsActor() && attacker.Actor.Flags.Has(world.AIMedic) {
				targ.Owner = attacker.Self
			}
		}
	}
	severRelations(c, targ)
	if targ.IsPlayer() {
		obituary(c, targ, attacker)
	}

	targ.TakeDamage = false
	targ.Kind = world.KindCorpse
	targ.Touch = 0
	if a := targ.Actor; a != nil {
		a.Flags |= world.AIDetached
		a.Flags &^= world.AIHoldFrame
		a.AttackState = world.AttackStraight
		a.PauseUntil = 0

		relay := targ.DeathTarget
		if relay == "" {
			relay = targ.Target
		}
		if relay != "" {
			c.Relay.FireTargets(c, targ, attacker, relay)
		}
	}

	die(c, targ, inflictor, attacker, damage, point)
	if targ.Die == 0 && targ.InUse {
		// No death animation to play.
		targ.Actor = nil
	}
}

func die(c *sim.Context, targ, inflictor, attacker *world.Object, damage int, point world.Vec3) {
	if fn, ok := c.Registry.Die.Get(targ.Die); ok {
		fn(c, targ, inflictor, attacker, damage, point)
	}
}

// severRelations ends any healer/patient pairing the dying object is part
// of and tells the other side's class.
func severRelations(c *sim.Context, targ *world.Object) {
	if healer := c.Lookup(targ.Healer); healer != nil {
		if healer.Actor != nil && healer.Actor.HealTarget == targ.Self {
			healer.Actor.HealTarget = arena.None
		}
		if cl := c.Class(healer); cl != nil && cl.Severed != nil {
			cl.Severed(c, healer, targ)
		}
	}
	targ.Healer = arena.None

	if targ.Actor == nil {
		return
	}
	if patient := c.Lookup(targ.Actor.HealTarget); patient != nil {
		if patient.Healer == targ.Self {
			patient.Healer = arena.None
		}
		if cl := c.Class(targ); cl != nil && cl.Severed != nil {
			cl.Severed(c, targ, patient)
		}
	}
	targ.Actor.HealTarget = arena.None
}

// obituary broadcasts the kill message for a player and adjusts deathmatch
// scores: environment deaths and self-kills cost the victim a point, kills
// earn the attacker one, team kills cost the attacker one.
func obituary(c *sim.Context, self, attacker *world.Object) {
	info, _ := c.Causes.Cause(self.MeansOfDeath)
	ff := self.FriendlyFire || (c.Rules.Coop && attacker.IsPlayer() && attacker != self)
	name := self.Client.Name
	dm := c.Rules.Deathmatch

	var text string
	switch {
	case info.Environment != "":
		text = c.Printer.Sprintf("%s %s.", name, info.Environment)
		if dm {
			self.Client.Score--
		}
		self.Enemy = arena.None
	case attacker == self:
		msg := info.Self
		if msg == "" {
			msg = "killed " + world.SelfPlaceholder
		}
		msg = strings.ReplaceAll(msg, world.SelfPlaceholder, reflexive(self.Client.Gender))
		text = c.Printer.Sprintf("%s %s.", name, msg)
		if dm {
			self.Client.Score--
		}
		self.Enemy = arena.None
	case attacker.IsPlayer() && info.Kill != "":
		text = c.Printer.Sprintf("%s %s %s%s", name, info.Kill, attacker.Client.Name, info.KillSuffix)
		if dm {
			if ff {
				attacker.Client.Score--
			} else {
				attacker.Client.Score++
			}
		}
	default:
		text = c.Printer.Sprintf("%s died.", name)
		if dm {
			self.Client.Score--
		}
	}

	c.Log.Info("obituary", zap.String("text", text), zap.String("cause", string(self.MeansOfDeath)))
	event.Emit(c.Bus, event.Obituary{Victim: self.Self, Attacker: attacker.Self, Text: text})
}

func reflexive(g world.Gender) string {
	switch g {
	case world.GenderFemale:
		return "herself"
	case world.GenderNeuter:
		return "itself"
	}
	return "himself"
}
