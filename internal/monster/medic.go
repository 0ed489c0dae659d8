package monster

import (
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
)

const (
	medicSearchRadius = 1024
	medicHealRange    = 80
	medicBoltSpeed    = 1000
	medicGiveUp       = 10 * time.Second
)

// medic revives dead monsters. The medic and its patient hold each other's
// handle (HealTarget and Healer) from the moment the corpse is picked until
// the revive, a give-up or either side's death.
type medic struct {
	roster                   *Roster
	stand, walk, run, attack world.MoveID
	approach, heal           world.MoveID
	pain, death              world.MoveID
}

func registerMedic(g *registrar, r *Roster) *kind {
	m := &medic{roster: r}
	scan := g.event("medic_scan", m.scan)
	steer := g.event("medic_steer", m.steer)
	revive := g.event("medic_revive", m.revive)
	fire := g.event("medic_fire", m.fire)
	approachEnd := g.end("medic_approach_end", m.approachEnd)

	m.stand = g.move("medic", "stand", 0, on(still(world.AIStand, 12), scan, 0), 0)
	m.walk = g.move("medic", "walk", 12, on(frames(world.AIWalk, repeat(6, 12)...), scan, 0), 0)
	m.run = g.move("medic", "run", 24, frames(world.AIRun, 18, 22.5, 25.4, 23.4, 24, 35.6), 0)
	m.attack = g.move("medic", "attack", 30, on(still(world.AICharge, 12), fire, 3, 6, 9), g.resumeEnd)
	m.approach = g.move("medic", "approach", 42, on(frames(world.AIMove, repeat(10, 6)...), steer, 0, 1, 2, 3, 4, 5), approachEnd)
	m.heal = g.move("medic", "heal", 48, on(still(world.AIMove, 12), revive, 6), g.resumeEnd)
	m.pain = g.move("medic", "pain", 60, still(world.AIMove, 4), g.resumeEnd)
	m.death = g.move("medic", "death", 64, still(world.AIMove, 10), g.deadEnd)

	return &kind{
		class: g.class(&sim.Class{
			Name:    "monster_medic",
			Stand:   start(m.stand),
			Walk:    start(m.walk),
			Run:     m.runHook,
			Attack:  start(m.attack),
			Sight:   sound("medic/medsght1.wav"),
			Severed: m.severed,
		}),
		pain: g.pain("medic_pain", m.painHook),
		die:  g.die("medic_die", m.dieHook),
		setup: func(o *world.Object) {
			o.Actor.Flags |= world.AIMedic
		},
	}
}

// scan looks for a corpse to revive while the medic has nothing to fight.
func (m *medic) scan(c *sim.Context, self *world.Object) {
	a := self.Actor
	if !a.HealTarget.IsZero() || enemyOf(c, self) != nil {
		return
	}
	patient := m.findCorpse(c, self)
	if patient == nil {
		return
	}
	a.HealTarget = patient.Self
	a.SearchTime = c.Now() + c.Clock.Ticks(medicGiveUp)
	patient.Healer = self.Self
	c.Sound(self, "medic/medsrch1.wav")
	c.SetMove(self, m.approach)
}

// findCorpse picks the nearest visible monster corpse that nobody tends and
// that this medic did not kill.
func (m *medic) findCorpse(c *sim.Context, self *world.Object) *world.Object {
	var best *world.Object
	bestDist := float64(medicSearchRadius)
	for _, h := range c.Spatial.QueryRegion(self.Origin, medicSearchRadius) {
		o := c.Lookup(h)
		if o == nil || o == self || o.Kind != world.KindCorpse || o.Actor == nil {
			continue
		}
		if o.Owner == self.Self || c.Lookup(o.Healer) != nil || o.Actor.Flags.Has(world.AIGoodGuy) {
			continue
		}
		if m.roster.Template(o.ClassName) == nil || !system.Visible(c, self, o) {
			continue
		}
		if d := o.Origin.Sub(self.Origin).Len(); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// patient resolves the heal target while the relation still holds.
func (m *medic) patient(c *sim.Context, self *world.Object) *world.Object {
	p := c.Lookup(self.Actor.HealTarget)
	if p == nil || p.Kind != world.KindCorpse || p.Healer != self.Self {
		return nil
	}
	return p
}

// release ends the relation from the medic's side.
func (m *medic) release(c *sim.Context, self *world.Object) {
	if p := c.Lookup(self.Actor.HealTarget); p != nil && p.Healer == self.Self {
		p.Healer = arena.None
	}
	self.Actor.HealTarget = arena.None
}

func (m *medic) giveUp(c *sim.Context, self *world.Object) {
	m.release(c, self)
	resume(c, self)
}

func (m *medic) steer(c *sim.Context, self *world.Object) {
	p := m.patient(c, self)
	if p == nil {
		m.giveUp(c, self)
		return
	}
	if p.Origin.Sub(self.Origin).Len() <= medicHealRange {
		c.SetMove(self, m.heal)
		return
	}
	self.Actor.IdealYaw = world.VecToYaw(p.Origin.Sub(self.Origin))
	system.ChangeYaw(self)
}

// approachEnd keeps walking until the patient is in reach. A medic that
// cannot get there in time gives the corpse up for good.
func (m *medic) approachEnd(c *sim.Context, self *world.Object) {
	p := m.patient(c, self)
	if p == nil {
		m.giveUp(c, self)
		return
	}
	if c.Now() >= self.Actor.SearchTime {
		p.Owner = self.Self
		m.giveUp(c, self)
	}
}

// revive stands the patient back up at full health, unless something now
// occupies the space its body needs.
func (m *medic) revive(c *sim.Context, self *world.Object) {
	p := m.patient(c, self)
	m.release(c, self)
	if p == nil {
		return
	}
	tmpl := m.roster.Template(p.ClassName)
	if tmpl == nil {
		return
	}
	maxs := world.Vec3(tmpl.Maxs)
	tr := c.Spatial.Trace(p.Origin, p.Mins, maxs, p.Origin, p.Self, world.MaskMonsterSolid)
	if tr.StartSolid {
		p.Owner = self.Self
		return
	}

	p.Maxs = maxs
	p.Kind = world.KindActor
	p.Health = p.MaxHealth
	p.TakeDamage = true
	p.Flags &^= world.FlagNoKnockback
	p.Enemy = arena.None
	p.Owner = arena.None
	pa := p.Actor
	pa.Flags &^= world.AIDetached | world.AIHoldFrame
	pa.AttackState = world.AttackStraight
	pa.PauseUntil = 0
	c.Link(p)
	c.Level.TotalMonsters++
	c.Sound(self, "medic/medatck5.wav")
	if cl := c.Class(p); cl != nil && cl.Stand != nil {
		cl.Stand(c, p)
	}
}

func (m *medic) fire(c *sim.Context, self *world.Object) {
	enemy := enemyOf(c, self)
	if enemy == nil {
		return
	}
	from := muzzle(self, 20)
	system.FireBolt(c, self, from, aimAt(from, enemy), system.Projectile{
		Damage: self.Actor.AttackDamage,
		Speed:  medicBoltSpeed,
	})
	c.Sound(self, "medic/medatck1.wav")
}

// runHook drops the patient to go after an enemy.
func (m *medic) runHook(c *sim.Context, self *world.Object) {
	m.release(c, self)
	c.SetMove(self, m.run)
}

func (m *medic) severed(c *sim.Context, self, _ *world.Object) {
	a := self.Actor
	if a.Flags.Has(world.AIDetached) {
		return
	}
	if a.Move == m.approach || a.Move == m.heal {
		resume(c, self)
	}
}

func (m *medic) painHook(c *sim.Context, self, _ *world.Object, _ float64, _ int) {
	if flinch(c, self, "medic/medpain1.wav", m.pain) {
		m.release(c, self)
	}
}

func (m *medic) dieHook(c *sim.Context, self, _, _ *world.Object, _ int, _ world.Vec3) {
	if gib(c, self) {
		return
	}
	c.Sound(self, "medic/meddeth1.wav")
	c.SetMove(self, m.death)
}
