package monster

import (
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
)

// berserkReach is the swing reach, measured origin to origin.
const berserkReach = 80

type berserk struct {
	roster                  *Roster
	stand, walk, run, melee world.MoveID
	pain, death             world.MoveID
}

func registerBerserk(g *registrar, r *Roster) *kind {
	b := &berserk{roster: r}
	swing := g.event("berserk_swing", b.swing)

	b.stand = g.move("berserk", "stand", 0, still(world.AIStand, 5), 0)
	b.walk = g.move("berserk", "walk", 5, frames(world.AIWalk, 9.1, 6.3, 4.9, 6.7, 4.1, 6.5, 5, 3, 5, 6, 4), 0)
	b.run = g.move("berserk", "run", 16, frames(world.AIRun, 21, 11, 21, 25, 18, 19), 0)
	b.melee = g.move("berserk", "melee", 22, on(still(world.AICharge, 8), swing, 3), g.resumeEnd)
	b.pain = g.move("berserk", "pain", 30, still(world.AIMove, 4), g.resumeEnd)
	b.death = g.move("berserk", "death", 34, still(world.AIMove, 13), g.deadEnd)

	return &kind{
		class: g.class(&sim.Class{
			Name:  "monster_berserk",
			Stand: start(b.stand),
			Walk:  start(b.walk),
			Run:   start(b.run),
			Melee: start(b.melee),
			Sight: sound("berserk/sight.wav"),
		}),
		pain: g.pain("berserk_pain", b.painHook),
		die:  g.die("berserk_die", b.dieHook),
	}
}

func (b *berserk) swing(c *sim.Context, self *world.Object) {
	c.Sound(self, "berserk/attack.wav")
	system.FireHit(c, self, world.Vec3{berserkReach, 0, 0}, b.roster.meleeDamage(c, self), 400)
}

// painHook ignores light hits half of the time.
func (b *berserk) painHook(c *sim.Context, self, _ *world.Object, _ float64, damage int) {
	if damage < 20 && c.Random() < 0.5 {
		return
	}
	flinch(c, self, "berserk/berpain2.wav", b.pain)
}

func (b *berserk) dieHook(c *sim.Context, self, _, _ *world.Object, _ int, _ world.Vec3) {
	if gib(c, self) {
		return
	}
	c.Sound(self, "berserk/berdeth2.wav")
	c.SetMove(self, b.death)
}

// meleeDamage is the scripted melee formula when scripting is on, otherwise
// the template damage plus up to five.
func (r *Roster) meleeDamage(c *sim.Context, self *world.Object) int {
	base := self.Actor.AttackDamage
	if r.lua == nil {
		return base + c.Rand.Intn(6)
	}
	return r.lua.CalcMonsterMelee(scripting.MeleeContext{
		Class:     self.ClassName,
		Damage:    base,
		Skill:     c.Rules.Skill,
		Health:    self.Health,
		MaxHealth: self.MaxHealth,
	})
}
