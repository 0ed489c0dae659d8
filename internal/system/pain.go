package system

import (
	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
)

// ReactToDamage decides whether a hurt actor turns on its attacker. Good-guy
// actors never turn on players or each other. Players always draw anger.
// Actors of a different kind that move the same way (walk/fly/swim) start
// infighting; otherwise the victim shoots back at whoever meant to hit it,
// or helps by going after the attacker's own enemy.
func ReactToDamage(c *sim.Context, targ, attacker *world.Object) {
	if !attacker.IsPlayer() && !attacker.IsActor() {
		return
	}
	if attacker == targ || attacker.Self == targ.Enemy || targ.Actor.Flags.Has(world.AIDetached) {
		return
	}
	if targ.Actor.Flags.Has(world.AIGoodGuy) {
		if attacker.IsPlayer() || attacker.Actor.Flags.Has(world.AIGoodGuy) {
			return
		}
	}

	if attacker.IsPlayer() {
		// Keep a visible player enemy; only switch if it is out of sight.
		if current := liveEnemy(c, targ); current != nil && current.IsPlayer() && Visible(c, targ, current) {
			return
		}
		anger(c, targ, attacker.Self)
		return
	}

	const movement = world.FlagFly | world.FlagSwim
	switch {
	case targ.Flags&movement == attacker.Flags&movement && targ.ClassName != attacker.ClassName:
		anger(c, targ, attacker.Self)
	case attacker.Enemy == targ.Self:
		anger(c, targ, attacker.Self)
	case !attacker.Enemy.IsZero() && c.Lookup(attacker.Enemy) != nil:
		anger(c, targ, attacker.Enemy)
	}
}

func anger(c *sim.Context, targ *world.Object, enemy arena.Handle) {
	targ.Enemy = enemy
	if !targ.Actor.Flags.Has(world.AIDucked) {
		FoundTarget(c, targ)
	}
}
