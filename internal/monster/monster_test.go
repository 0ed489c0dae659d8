package monster

import (
	"testing"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/data"
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var allFeatures = sim.Features{SinglePlayerAI: true, Flyer: true, Medic: true}

type fixture struct {
	c      *sim.Context
	roster *Roster
	think  *system.ThinkSystem
	actors *system.ActorSystem
}

// newFixture builds a context over a flat floor with its top at z=0.
func newFixture(t *testing.T, features sim.Features, lua *scripting.Engine) *fixture {
	t.Helper()
	geo := &world.BoxMap{Name: "test", Brushes: []world.Brush{
		{Mins: world.Vec3{-4096, -4096, -64}, Maxs: world.Vec3{4096, 4096, 0}, Surface: "floor"},
	}}
	return newFixtureMap(t, features, lua, geo)
}

func newFixtureMap(t *testing.T, features sim.Features, lua *scripting.Engine, geo *world.BoxMap) *fixture {
	t.Helper()
	store := world.NewStore(arena.Policy{Max: 128, Reserved: 4, Quarantine: 10})
	c := sim.New(zap.NewNop(), world.NewClock(100*time.Millisecond), store, geo)
	c.Features = features
	require.NoError(t, system.Register(c.Registry))

	templates, err := data.LoadMonsterTable("../../data/yaml/monster_list.yaml")
	require.NoError(t, err)
	roster, err := Register(c, templates, lua)
	require.NoError(t, err)
	return &fixture{
		c:      c,
		roster: roster,
		think:  system.NewThinkSystem(c),
		actors: system.NewActorSystem(c),
	}
}

func (f *fixture) tick(n int) {
	for i := 0; i < n; i++ {
		f.c.Clock.Advance()
		f.think.Update(0)
		f.actors.Update(0)
	}
}

func (f *fixture) spawn(t *testing.T, class string, x, y, z, yaw float64) *world.Object {
	t.Helper()
	o, err := f.roster.Spawn(f.c, class, world.Vec3{x, y, z}, yaw)
	require.NoError(t, err)
	return o
}

func (f *fixture) player(t *testing.T, n int, x, y float64) *world.Object {
	t.Helper()
	o, err := f.c.Objects.ClaimPlayer(n)
	require.NoError(t, err)
	o.Origin = world.Vec3{x, y, 24}
	o.ClassName = "player"
	o.Mins = world.Vec3{-16, -16, -24}
	o.Maxs = world.Vec3{16, 16, 32}
	o.Solid = world.SolidBBox
	o.MoveType = world.MoveWalk
	o.Flags = world.FlagOnGround
	o.Health, o.MaxHealth, o.GibHealth = 100, 100, -40
	o.TakeDamage = true
	o.Client.Name = "player"
	f.c.Link(o)
	return o
}

func (f *fixture) hit(target, attacker *world.Object, amount int) {
	system.ApplyDamage(f.c, system.DamageRequest{
		Target:   target,
		Attacker: attacker,
		Dir:      world.Vec3{1, 0, 0},
		Point:    target.Origin,
		Amount:   amount,
	})
}

func (f *fixture) move(o *world.Object) string {
	return f.c.Registry.Move.Name(o.Actor.Move)
}

func (f *fixture) fire(t *testing.T, name string, o *world.Object) {
	t.Helper()
	id, err := f.c.Registry.Event.Lookup(name)
	require.NoError(t, err)
	fn, ok := f.c.Registry.Event.Get(id)
	require.True(t, ok)
	fn(f.c, o)
}

func (f *fixture) sounds() []string {
	var out []string
	for _, s := range event.Pending[event.Sound](f.c.Bus) {
		out = append(out, s.Name)
	}
	return out
}

func (f *fixture) effects(kind event.EffectKind) int {
	n := 0
	for _, e := range event.Pending[event.Effect](f.c.Bus) {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestRegisterGatesRoster(t *testing.T) {
	tests := []struct {
		name     string
		features sim.Features
		want     []string
	}{
		{"all", allFeatures, []string{"monster_soldier", "monster_berserk", "monster_flyer", "monster_medic"}},
		{"base only", sim.Features{SinglePlayerAI: true}, []string{"monster_soldier", "monster_berserk"}},
		{"expansion only", sim.Features{Flyer: true, Medic: true}, []string{"monster_flyer", "monster_medic"}},
		{"none", sim.Features{}, nil},
	}
	classes := []string{"monster_soldier", "monster_berserk", "monster_flyer", "monster_medic"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.features, nil)
			for _, class := range classes {
				assert.Equal(t, contains(tt.want, class), f.roster.Has(class), class)
			}
			assert.Equal(t, len(tt.want), f.c.Registry.Class.Len())
			for _, class := range classes {
				if contains(tt.want, class) {
					continue
				}
				_, err := f.roster.Spawn(f.c, class, world.Vec3{0, 0, 24}, 0)
				assert.ErrorIs(t, err, ErrUnknownClass)
			}
		})
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestRegisterTwiceIsRejected(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	_, err := Register(f.c, f.roster.templates, nil)
	assert.ErrorIs(t, err, sim.ErrDuplicateKey)
}

func TestSpawnSetsUpActor(t *testing.T) {
	f := newFixture(t, allFeatures, nil)

	s := f.spawn(t, "monster_soldier", 0, 0, 100, 90)
	assert.Equal(t, world.KindActor, s.Kind)
	assert.Equal(t, 30, s.Health)
	assert.Equal(t, 30, s.MaxHealth)
	assert.Equal(t, -30, s.GibHealth)
	assert.Equal(t, 100, s.Mass)
	assert.True(t, s.TakeDamage)
	assert.Equal(t, world.Vec3{0, 90, 0}, s.Angles)
	assert.InDelta(t, 24, s.Origin[2], 0.05, "dropped to the floor")
	assert.True(t, s.Flags.Has(world.FlagOnGround))
	assert.Equal(t, "monster_soldier", f.c.Registry.Class.Name(s.Actor.Class))
	assert.Equal(t, "soldier_stand", f.move(s))
	assert.Equal(t, 4, s.Actor.AttackDamage)

	fl := f.spawn(t, "monster_flyer", 0, 200, 160, 0)
	assert.Equal(t, 160.0, fl.Origin[2], "flyers stay where they spawn")
	assert.True(t, fl.Flags.Has(world.FlagFly))
	assert.True(t, fl.Flags.Has(world.FlagMechanical))

	m := f.spawn(t, "monster_medic", 0, 400, 24, 0)
	assert.True(t, m.Actor.Flags.Has(world.AIMedic))

	assert.Equal(t, 3, f.c.Level.TotalMonsters)
}

func TestSpawnLevel(t *testing.T) {
	maps, err := data.LoadMapData("../../data/yaml/map_list.yaml", "../../data/maps")
	require.NoError(t, err)
	lvl := maps.Get("base1")
	require.NotNil(t, lvl)

	f := newFixtureMap(t, sim.Features{SinglePlayerAI: true}, nil, lvl.Map)
	n, err := f.roster.SpawnLevel(f.c, lvl.Spawns)
	require.NoError(t, err)
	assert.Equal(t, 3, n, "flyer and medic are switched off")
	assert.Equal(t, 3, f.c.Level.TotalMonsters)

	var squad, berserk *world.Object
	f.c.Objects.Each(func(o *world.Object) {
		switch {
		case o.TargetName == "squad":
			squad = o
		case o.ClassName == "monster_berserk":
			berserk = o
		}
	})
	require.NotNil(t, squad)
	require.NotNil(t, berserk)
	assert.Equal(t, "gate", berserk.DeathTarget)

	f = newFixtureMap(t, allFeatures, nil, lvl.Map)
	n, err = f.roster.SpawnLevel(f.c, lvl.Spawns)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	f.c.Objects.Each(func(o *world.Object) {
		if o.ClassName == "monster_medic" {
			assert.True(t, o.Actor.Flags.Has(world.AIStandGround))
		}
	})
}

func TestMonsterUseTargetsActivator(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	s := f.spawn(t, "monster_soldier", 0, 0, 24, 0)
	p := f.player(t, 1, -300, 0)
	p.Flags |= world.FlagNoTarget

	system.Use(f.c, s, p, p)
	assert.True(t, s.Enemy.IsZero(), "notarget players are ignored")

	p.Flags &^= world.FlagNoTarget
	system.Use(f.c, s, p, p)
	assert.Equal(t, p.Self, s.Enemy)
	assert.Equal(t, "soldier_run", f.move(s))
	assert.Contains(t, f.sounds(), "soldier/solsght1.wav")
}
