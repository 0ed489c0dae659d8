package monster

import (
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
)

const duckHeight = 32

type soldier struct {
	stand, walk, run, attack world.MoveID
	pain, duck, death        world.MoveID
}

func registerSoldier(g *registrar) *kind {
	s := &soldier{}
	fire := g.event("soldier_fire", s.fire)
	duckDown := g.event("soldier_duck_down", duckDown)
	duckUp := g.end("soldier_duck_up", s.duckUp)

	s.stand = g.move("soldier", "stand", 0, still(world.AIStand, 30), 0)
	s.walk = g.move("soldier", "walk", 30, frames(world.AIWalk, 3, 6, 2, 2, 2, 1, 3, 6, 2, 2, 2, 1), 0)
	s.run = g.move("soldier", "run", 42, frames(world.AIRun, 10, 11, 11, 16, 10, 15), 0)
	s.attack = g.move("soldier", "attack", 48, on(still(world.AICharge, 12), fire, 4), g.resumeEnd)
	s.pain = g.move("soldier", "pain", 60, frames(world.AIMove, -3, 4, 1, 1, 0), g.resumeEnd)
	s.duck = g.move("soldier", "duck", 65, on(still(world.AIMove, 5), duckDown, 0), duckUp)
	s.death = g.move("soldier", "death", 70, still(world.AIMove, 10), g.deadEnd)

	return &kind{
		class: g.class(&sim.Class{
			Name:   "monster_soldier",
			Stand:  s.play(s.stand),
			Walk:   s.play(s.walk),
			Run:    s.play(s.run),
			Attack: start(s.attack),
			Sight:  sound("soldier/solsght1.wav"),
		}),
		pain: g.pain("soldier_pain", s.painHook),
		die:  g.die("soldier_die", s.dieHook),
	}
}

// play starts a locomotion move, standing up first if ducked.
func (s *soldier) play(id world.MoveID) sim.ThinkFunc {
	return func(c *sim.Context, self *world.Object) {
		standUp(self)
		c.SetMove(self, id)
	}
}

// fire shoots one machinegun round at the enemy. Capability flags layer on
// top: brutal soldiers fire a shotgun spread, and hard skill tightens aim.
func (s *soldier) fire(c *sim.Context, self *world.Object) {
	enemy := enemyOf(c, self)
	if enemy == nil {
		return
	}
	b := system.Bullet{
		Damage:  self.Actor.AttackDamage,
		Kick:    2,
		HSpread: 300,
		VSpread: 500,
		Count:   1,
		Cause:   world.CauseMachinegun,
	}
	if self.Actor.Flags.Has(world.AIBrutal) {
		b.Count = 6
		b.HSpread = 500
		b.Cause = world.CauseShotgun
	}
	if c.Rules.Skill >= sim.SkillHard {
		b.HSpread /= 2
		b.VSpread /= 2
	}
	from := muzzle(self, 16)
	system.FireBullet(c, self, from, aimAt(from, enemy), b)
	c.Sound(self, "soldier/solatck2.wav")
}

// painHook flinches, except that a badly hurt soldier on hard skill ducks
// instead; ducked actors get no further pain reactions.
func (s *soldier) painHook(c *sim.Context, self, _ *world.Object, _ float64, _ int) {
	now := c.Now()
	if c.Rules.Skill >= sim.SkillHard && self.Health*2 <= self.MaxHealth && now >= self.PainDebounce {
		self.PainDebounce = now + c.Rules.PainDebounce
		c.Sound(self, "soldier/solpain2.wav")
		c.SetMove(self, s.duck)
		return
	}
	flinch(c, self, "soldier/solpain1.wav", s.pain)
}

func (s *soldier) dieHook(c *sim.Context, self, _, _ *world.Object, _ int, _ world.Vec3) {
	standUp(self)
	if gib(c, self) {
		return
	}
	c.Sound(self, "soldier/soldeth1.wav")
	c.SetMove(self, s.death)
}

func duckDown(c *sim.Context, self *world.Object) {
	if self.Actor.Flags.Has(world.AIDucked) {
		return
	}
	self.Actor.Flags |= world.AIDucked
	self.Maxs[2] -= duckHeight
	c.Link(self)
}

func (s *soldier) duckUp(c *sim.Context, self *world.Object) {
	standUp(self)
	resume(c, self)
}

func standUp(self *world.Object) {
	if self.Actor.Flags.Has(world.AIDucked) {
		self.Actor.Flags &^= world.AIDucked
		self.Maxs[2] += duckHeight
	}
}
