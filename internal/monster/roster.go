// Package monster holds the actor roster: per-class move tables, frame
// events and hooks, registered once at boot and gated by feature switches.
package monster

import (
	"errors"
	"fmt"

	"github.com/fragd/server/internal/data"
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
	"go.uber.org/zap"
)

// ErrUnknownClass is returned when spawning a class that is not registered,
// either because it does not exist or because its feature switch is off.
var ErrUnknownClass = errors.New("unknown monster class")

// Shared behavior keys.
const (
	KeyResume = "monster_resume"
	KeyDead   = "monster_dead"
	KeyUse    = "monster_use"
)

// kind is everything Spawn needs to bring up one class.
type kind struct {
	class world.ClassID
	pain  world.PainID
	die   world.DieID
	setup func(o *world.Object)
}

// Roster is the set of registered monster classes.
type Roster struct {
	templates *data.MonsterTable
	lua       *scripting.Engine
	kinds     map[string]*kind
	use       world.UseID
}

// Register installs every monster class enabled by c.Features into
// c.Registry. lua may be nil; scripted frame events and melee formulas are
// used only when the scripting feature is on and an engine is given.
func Register(c *sim.Context, templates *data.MonsterTable, lua *scripting.Engine) (*Roster, error) {
	if !c.Features.Scripting {
		lua = nil
	}
	r := &Roster{templates: templates, lua: lua, kinds: make(map[string]*kind)}
	g := &registrar{reg: c.Registry, scripts: make(map[string]world.EventID)}

	g.resumeEnd = g.end(KeyResume, resume)
	g.deadEnd = g.end(KeyDead, dead)
	r.use = g.use(KeyUse, monsterUse)
	if lua != nil {
		for _, name := range lua.FrameEvents() {
			g.script(name, scriptEvent(lua, name))
		}
	}

	if c.Features.SinglePlayerAI {
		r.add("monster_soldier", registerSoldier(g))
		r.add("monster_berserk", registerBerserk(g, r))
	}
	if c.Features.Flyer {
		r.add("monster_flyer", registerFlyer(g))
	}
	if c.Features.Medic {
		r.add("monster_medic", registerMedic(g, r))
	}
	if g.err != nil {
		return nil, fmt.Errorf("register monsters: %w", g.err)
	}

	c.Log.Info("monster roster registered",
		zap.Int("classes", len(r.kinds)),
		zap.Int("moves", c.Registry.Move.Len()),
		zap.Bool("scripting", lua != nil))
	return r, nil
}

func (r *Roster) add(name string, k *kind) {
	r.kinds[name] = k
}

// Has reports whether a class is registered.
func (r *Roster) Has(class string) bool {
	_, ok := r.kinds[class]
	return ok
}

// Spawn creates a monster of class at origin facing yaw. Walkers are
// dropped to the floor below them.
func (r *Roster) Spawn(c *sim.Context, class string, origin world.Vec3, yaw float64) (*world.Object, error) {
	k, ok := r.kinds[class]
	if !ok {
		return nil, fmt.Errorf("spawn %s: %w", class, ErrUnknownClass)
	}
	tmpl := r.templates.Get(class)
	if tmpl == nil {
		return nil, fmt.Errorf("spawn %s: no template: %w", class, ErrUnknownClass)
	}
	health := tmpl.Health
	if r.lua != nil {
		health = r.lua.ScaleHealth(health, c.Rules.Skill)
	}

	o, err := c.Objects.Allocate(c.Now())
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", class, err)
	}
	o.ClassName = class
	o.Kind = world.KindActor
	o.Origin = origin
	o.Angles = world.Vec3{0, yaw, 0}
	o.Mins = world.Vec3(tmpl.Mins)
	o.Maxs = world.Vec3(tmpl.Maxs)
	o.Solid = world.SolidBBox
	o.MoveType = world.MoveStep
	o.Mass = tmpl.Mass
	o.Health, o.MaxHealth, o.GibHealth = health, health, tmpl.GibHealth
	o.TakeDamage = true
	if tmpl.Fly {
		o.Flags |= world.FlagFly
	}
	if tmpl.Mechanical {
		o.Flags |= world.FlagMechanical
	}
	if tmpl.AlienBlood {
		o.Flags |= world.FlagAlienBlood
	}
	o.Pain = k.pain
	o.Die = k.die
	o.Use = r.use
	o.Actor = &world.ActorState{
		Class:        k.class,
		YawSpeed:     tmpl.YawSpeed,
		IdealYaw:     yaw,
		SightRange:   tmpl.SightRange,
		StepSize:     tmpl.StepSize,
		AttackDamage: tmpl.AttackDamage,
	}
	if k.setup != nil {
		k.setup(o)
	}
	c.Link(o)
	if !tmpl.Fly {
		system.DropToFloor(c, o)
	}
	c.Level.TotalMonsters++

	if cl := c.Class(o); cl != nil && cl.Stand != nil {
		cl.Stand(c, o)
	}
	return o, nil
}

// SpawnLevel spawns every spawn point whose class is registered and reports
// how many were placed. Classes switched off by features are skipped.
func (r *Roster) SpawnLevel(c *sim.Context, spawns []data.SpawnPoint) (int, error) {
	n := 0
	for _, s := range spawns {
		if !r.Has(s.Class) {
			c.Log.Debug("spawn skipped", zap.String("class", s.Class))
			continue
		}
		o, err := r.Spawn(c, s.Class, world.Vec3(s.Origin), s.Yaw)
		if err != nil {
			return n, err
		}
		o.Target = s.Target
		o.TargetName = s.TargetName
		o.DeathTarget = s.DeathTarget
		if s.StandGround {
			o.Actor.Flags |= world.AIStandGround
		}
		if s.GoodGuy {
			o.Actor.Flags |= world.AIGoodGuy
		}
		if s.Brutal {
			o.Actor.Flags |= world.AIBrutal
		}
		n++
	}
	return n, nil
}

// Template returns the static stats of a class, nil when unknown.
func (r *Roster) Template(class string) *data.MonsterTemplate {
	return r.templates.Get(class)
}
