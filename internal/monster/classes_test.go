package monster

import (
	"testing"

	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/scripting"
	"github.com/fragd/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// swingAt starts a berserker melee on a player standing 60 units ahead and
// plays it up to the swing frame.
func swingAt(t *testing.T, f *fixture) *world.Object {
	t.Helper()
	b := f.spawn(t, "monster_berserk", 0, 0, 24, 0)
	p := f.player(t, 1, 60, 0)
	b.Enemy = p.Self
	f.c.Class(b).Melee(f.c, b)
	require.Equal(t, "berserk_melee", f.move(b))
	f.tick(4)
	return p
}

func TestBerserkSwing(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	p := swingAt(t, f)
	assert.GreaterOrEqual(t, p.Health, 80)
	assert.LessOrEqual(t, p.Health, 85)
	assert.Contains(t, f.sounds(), "berserk/attack.wav")
}

func TestBerserkSwingUsesScriptedFormula(t *testing.T) {
	lua, err := scripting.NewEngine(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(lua.Close)
	require.NoError(t, lua.LoadString("function calc_monster_melee(ctx) return ctx.damage + 27 end"))

	features := allFeatures
	features.Scripting = true
	f := newFixture(t, features, lua)
	p := swingAt(t, f)
	assert.Equal(t, 58, p.Health)
}

func TestBerserkHeavyHitAlwaysFlinches(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	b := f.spawn(t, "monster_berserk", 0, 0, 24, 0)
	f.hit(b, nil, 25)
	assert.Equal(t, "berserk_pain", f.move(b))
}

func TestFlyerFiresBolt(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	fl := f.spawn(t, "monster_flyer", 0, 0, 100, 0)
	p := f.player(t, 1, 300, 0)
	fl.Enemy = p.Self

	f.fire(t, "flyer_fire", fl)
	var bolts []*world.Object
	f.c.Objects.Each(func(o *world.Object) {
		if o.ClassName == "bolt" {
			bolts = append(bolts, o)
		}
	})
	require.Len(t, bolts, 1)
	assert.Equal(t, fl.Self, bolts[0].Owner)
	assert.Equal(t, 5, bolts[0].Damage)
	assert.InDelta(t, 1000, bolts[0].Velocity.Len(), 1e-6)

	for i := 0; i < 10 && p.Health == 100; i++ {
		f.tick(1)
	}
	assert.Equal(t, 95, p.Health)
}

func TestFlyerExplodesOnDeath(t *testing.T) {
	f := newFixture(t, allFeatures, nil)
	fl := f.spawn(t, "monster_flyer", 0, 0, 100, 0)
	h := fl.Self

	f.hit(fl, nil, 60)
	assert.Nil(t, f.c.Lookup(h))
	assert.Equal(t, 1, f.effects(event.EffectExplosion))
	assert.Equal(t, 1, f.c.Level.KilledMonsters)
}
