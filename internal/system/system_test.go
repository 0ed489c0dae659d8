package system

import (
	"testing"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fixture is a small level: a large floor with its top at z=0.
type fixture struct {
	c      *sim.Context
	pains  []int
	deaths int

	pain world.PainID
	die  world.DieID
}

func newFixture(t *testing.T, brushes ...world.Brush) *fixture {
	t.Helper()
	geo := &world.BoxMap{Name: "test", Brushes: append([]world.Brush{
		{Mins: world.Vec3{-4096, -4096, -64}, Maxs: world.Vec3{4096, 4096, 0}, Surface: "floor"},
	}, brushes...)}
	store := world.NewStore(arena.Policy{Max: 64, Reserved: 4, Quarantine: 10})
	c := sim.New(zap.NewNop(), world.NewClock(100*time.Millisecond), store, geo)
	require.NoError(t, Register(c.Registry))

	f := &fixture{c: c}
	f.pain = c.Registry.Pain.MustRegister("test_pain", func(_ *sim.Context, _, _ *world.Object, _ float64, damage int) {
		f.pains = append(f.pains, damage)
	})
	f.die = c.Registry.Die.MustRegister("test_die", func(*sim.Context, *world.Object, *world.Object, *world.Object, int, world.Vec3) {
		f.deaths++
	})
	return f
}

// actor spawns a 100-health walker standing on the floor at x, y.
func (f *fixture) actor(x, y float64) *world.Object {
	o := f.c.Spawn(world.Vec3{x, y, 24})
	o.ClassName = "test_actor"
	o.Kind = world.KindActor
	o.Mins = world.Vec3{-16, -16, -24}
	o.Maxs = world.Vec3{16, 16, 32}
	o.Solid = world.SolidBBox
	o.MoveType = world.MoveStep
	o.Flags = world.FlagOnGround
	o.Health, o.MaxHealth, o.GibHealth = 100, 100, -40
	o.TakeDamage = true
	o.Mass = 200
	o.Pain = f.pain
	o.Die = f.die
	o.Actor = &world.ActorState{}
	return o
}

// player claims reserved slot n and places the player on the floor.
func (f *fixture) player(t *testing.T, n int, name string, x, y float64) *world.Object {
	t.Helper()
	o, err := f.c.Objects.ClaimPlayer(n)
	require.NoError(t, err)
	o.Origin = world.Vec3{x, y, 24}
	o.ClassName = "player"
	o.Kind = world.KindWorld
	o.Mins = world.Vec3{-16, -16, -24}
	o.Maxs = world.Vec3{16, 16, 32}
	o.Solid = world.SolidBBox
	o.MoveType = world.MoveWalk
	o.Flags = world.FlagOnGround
	o.Health, o.MaxHealth, o.GibHealth = 100, 100, -40
	o.TakeDamage = true
	o.Mass = 200
	o.Pain = f.pain
	o.Die = f.die
	o.Client.Name = name
	f.c.Link(o)
	return o
}

func (f *fixture) hit(target, attacker *world.Object, amount int) {
	ApplyDamage(f.c, DamageRequest{
		Target:   target,
		Attacker: attacker,
		Dir:      world.Vec3{1, 0, 0},
		Point:    target.Origin,
		Amount:   amount,
	})
}

type causeMap map[world.Cause]world.CauseInfo

func (m causeMap) Cause(c world.Cause) (world.CauseInfo, bool) {
	info, ok := m[c]
	return info, ok
}
