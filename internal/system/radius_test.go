package system

import (
	"testing"

	"github.com/fragd/server/internal/world"
	"github.com/stretchr/testify/assert"
)

// blast sets up an inflictor at the origin that is also the attacker.
func (f *fixture) blast() *world.Object {
	o := f.actor(0, 0)
	o.Health = 1000
	return o
}

func taken(o *world.Object) int { return 1000 - o.Health }

func TestRadiusDamageFalloffAndSelfHalving(t *testing.T) {
	for _, style := range []world.Style{0, world.StyleNoRadiusHalving} {
		f := newFixture(t)
		bomb := f.blast()
		near := f.actor(40, 0)
		far := f.actor(-360, 0)
		near.Health, far.Health = 1000, 1000

		ApplyRadiusDamage(f.c, RadiusRequest{
			Inflictor: bomb,
			Attacker:  bomb,
			Amount:    200,
			Radius:    600,
			Style:     style,
		})

		assert.Positive(t, taken(far))
		assert.Less(t, taken(far), taken(near))

		full := int(RadiusPoints(200, bomb.Origin, bomb))
		if style.Has(world.StyleNoRadiusHalving) {
			assert.Equal(t, full, taken(bomb))
		} else {
			assert.Equal(t, int(RadiusPoints(200, bomb.Origin, bomb)*0.5), taken(bomb))
		}
	}
}

func TestRadiusDamageMonotoneInDistance(t *testing.T) {
	f := newFixture(t)
	bomb := f.c.Spawn(world.Vec3{0, 0, 24})
	var targets []*world.Object
	for x := 50.0; x <= 350; x += 50 {
		o := f.actor(x, 0)
		o.Health = 1000
		targets = append(targets, o)
	}

	ApplyRadiusDamage(f.c, RadiusRequest{Inflictor: bomb, Amount: 200, Radius: 400})

	for i := 1; i < len(targets); i++ {
		assert.Less(t, taken(targets[i]), taken(targets[i-1]))
	}
	assert.Positive(t, taken(targets[len(targets)-1]))
}

func TestRadiusDamageRespectsRadiusAndIgnore(t *testing.T) {
	f := newFixture(t)
	bomb := f.c.Spawn(world.Vec3{0, 0, 24})
	outside := f.actor(150, 0)
	ignored := f.actor(-50, 0)

	ApplyRadiusDamage(f.c, RadiusRequest{Inflictor: bomb, Amount: 200, Radius: 100, Ignore: ignored})

	assert.Equal(t, 100, outside.Health)
	assert.Equal(t, 100, ignored.Health)
	assert.Empty(t, f.pains)
}

func TestRadiusDamageBlockedByWalls(t *testing.T) {
	wall := world.Brush{Mins: world.Vec3{100, -200, 0}, Maxs: world.Vec3{120, 200, 200}}
	f := newFixture(t, wall)
	bomb := f.c.Spawn(world.Vec3{0, 0, 24})
	hidden := f.actor(200, 0)
	open := f.actor(-200, 0)

	assert.False(t, CanDamage(f.c, hidden, bomb))
	assert.True(t, CanDamage(f.c, open, bomb))

	ApplyRadiusDamage(f.c, RadiusRequest{Inflictor: bomb, Amount: 200, Radius: 400})
	assert.Equal(t, 100, hidden.Health)
	assert.Less(t, open.Health, 100)
}

func TestRadiusDamageKnocksAway(t *testing.T) {
	f := newFixture(t)
	bomb := f.c.Spawn(world.Vec3{0, 0, 24})
	a := f.actor(60, 0)
	a.Flags |= world.FlagGodMode

	ApplyRadiusDamage(f.c, RadiusRequest{Inflictor: bomb, Amount: 100, Radius: 200})
	assert.Greater(t, a.Velocity[0], 0.0)
	assert.Equal(t, 100, a.Health)
}
