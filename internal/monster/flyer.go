package monster

import (
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
)

const flyerBoltSpeed = 1000

type flyer struct {
	stand, walk, run, attack, pain world.MoveID
}

func registerFlyer(g *registrar) *kind {
	f := &flyer{}
	fire := g.event("flyer_fire", f.fire)

	f.stand = g.move("flyer", "stand", 0, still(world.AIStand, 10), 0)
	f.walk = g.move("flyer", "walk", 10, frames(world.AIWalk, repeat(5, 12)...), 0)
	f.run = g.move("flyer", "run", 22, frames(world.AIRun, repeat(10, 12)...), 0)
	f.attack = g.move("flyer", "attack", 34, on(still(world.AICharge, 9), fire, 2, 6), g.resumeEnd)
	f.pain = g.move("flyer", "pain", 43, still(world.AIMove, 4), g.resumeEnd)

	return &kind{
		class: g.class(&sim.Class{
			Name:   "monster_flyer",
			Stand:  start(f.stand),
			Walk:   start(f.walk),
			Run:    start(f.run),
			Attack: start(f.attack),
			Sight:  sound("flyer/flysght1.wav"),
		}),
		pain: g.pain("flyer_pain", f.painHook),
		die:  g.die("flyer_die", flyerDie),
	}
}

func (f *flyer) fire(c *sim.Context, self *world.Object) {
	enemy := enemyOf(c, self)
	if enemy == nil {
		return
	}
	from := muzzle(self, 16)
	system.FireBolt(c, self, from, aimAt(from, enemy), system.Projectile{
		Damage: self.Actor.AttackDamage,
		Speed:  flyerBoltSpeed,
	})
	c.Sound(self, "flyer/flyatck3.wav")
}

func (f *flyer) painHook(c *sim.Context, self, _ *world.Object, _ float64, _ int) {
	flinch(c, self, "flyer/flypain1.wav", f.pain)
}

// flyerDie blows the flyer up; there is no corpse.
func flyerDie(c *sim.Context, self, _, _ *world.Object, _ int, _ world.Vec3) {
	c.Sound(self, "flyer/flydeth1.wav")
	c.Effect(event.EffectExplosion, self.Origin, world.Vec3{}, 1)
	c.Release(self)
}
