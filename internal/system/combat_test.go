package system

import (
	"testing"
	"time"

	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDamageHurtsAndCallsPainOnce(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)

	f.hit(a, nil, 30)

	assert.Equal(t, 70, a.Health)
	assert.Equal(t, []int{30}, f.pains)
	assert.Zero(t, f.deaths)
	assert.Equal(t, world.KindActor, a.Kind)
	assert.True(t, a.TakeDamage)
}

func TestApplyDamageLethalRunsDeathOnce(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	a.Health = 20

	f.hit(a, nil, 30)
	assert.Equal(t, -10, a.Health)
	assert.Equal(t, 1, f.deaths)
	assert.False(t, a.TakeDamage)
	assert.Equal(t, world.KindCorpse, a.Kind)
	assert.True(t, a.Actor.Flags.Has(world.AIDetached))
	assert.True(t, a.Flags.Has(world.FlagNoKnockback))

	f.hit(a, nil, 30)
	f.hit(a, nil, 500)
	assert.Equal(t, -10, a.Health, "corpse ignores further damage")
	assert.Equal(t, 1, f.deaths)
	assert.Len(t, event.Pending[event.ObjectKilled](f.c.Bus), 1)
	assert.Empty(t, f.pains)
}

func TestApplyDamageClampsHealth(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	f.hit(a, nil, 5000)
	assert.Equal(t, -999, a.Health)
}

func TestApplyDamageInstantGib(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	ApplyDamage(f.c, DamageRequest{Target: a, Amount: 101, Style: world.StyleInstantGib})
	assert.Less(t, a.Health, a.GibHealth)
}

func TestApplyDamageZeroAmountChangesNothing(t *testing.T) {
	f := newFixture(t)
	for _, amount := range []int{0, -5} {
		a := f.actor(0, 0)
		a.Armor = world.Armor{Kind: world.ArmorBody, Points: 50}
		a.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 20}
		before := *a

		ApplyDamage(f.c, DamageRequest{
			Target:    a,
			Dir:       world.Vec3{1, 0, 0},
			Amount:    amount,
			Knockback: 80,
			Style:     world.StyleNoProtection | world.StyleDestroyArmor,
		})

		assert.Equal(t, before.Health, a.Health)
		assert.Equal(t, before.Armor, a.Armor)
		assert.Equal(t, before.PowerArmor, a.PowerArmor)
		assert.Equal(t, before.Velocity, a.Velocity)
	}
	assert.Empty(t, f.pains)
}

func TestApplyDamageRejectedWhenNotDamageable(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	a.TakeDamage = false
	ApplyDamage(f.c, DamageRequest{Target: a, Dir: world.Vec3{1, 0, 0}, Amount: 50, Knockback: 50})
	assert.Equal(t, 100, a.Health)
	assert.True(t, a.Velocity.IsZero())
}

func TestGodmodeSavesAtMostOncePerWindow(t *testing.T) {
	f := newFixture(t)
	f.c.Rules.ProtectDebounce = 2
	a := f.actor(0, 0)
	a.Flags |= world.FlagGodMode

	var savedAt []world.Tick
	for tick := world.Tick(0); tick < 10; tick++ {
		f.c.Clock.Set(tick)
		prev := a.Saved
		f.hit(a, nil, 25)
		f.hit(a, nil, 25)
		if a.Saved != prev {
			assert.Equal(t, prev+1, a.Saved)
			savedAt = append(savedAt, tick)
		}
		assert.Equal(t, 100, a.Health)
	}
	assert.Equal(t, []world.Tick{0, 2, 4, 6, 8}, savedAt)
	assert.Len(t, event.Pending[event.Protected](f.c.Bus), 5)
	assert.Empty(t, f.pains)

	ApplyDamage(f.c, DamageRequest{Target: a, Amount: 25, Style: world.StyleNoProtection})
	assert.Equal(t, 75, a.Health)
}

func TestInvincibilityProtectsPlayer(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, 1, "Ana", 0, 0)
	p.Client.InvincibleUntil = 50
	f.c.Clock.Set(10)

	f.hit(p, nil, 40)
	assert.Equal(t, 100, p.Health)
	assert.Equal(t, 1, p.Saved)
	assert.Equal(t, 40, p.Client.DamageArmor, "protection counts as armor feedback")

	f.c.Clock.Set(60)
	f.hit(p, nil, 40)
	assert.Equal(t, 60, p.Health)
}

func TestPowerArmorShield(t *testing.T) {
	f := newFixture(t)

	a := f.actor(0, 0)
	a.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 10}
	f.hit(a, nil, 30)
	assert.Equal(t, 90, a.Health, "two thirds absorbed at two damage per cell")
	assert.Zero(t, a.PowerArmor.Cells)

	b := f.actor(100, 0)
	b.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 10}
	ApplyDamage(f.c, DamageRequest{Target: b, Amount: 30, Style: world.StyleEnergy})
	assert.Equal(t, 80, b.Health, "energy costs one cell per damage")
	assert.Zero(t, b.PowerArmor.Cells)
}

func TestPowerArmorScreenIsDirectional(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	a.PowerArmor = world.PowerArmor{Kind: world.PowerArmorScreen, Cells: 100}

	front := a.Origin.Add(world.Vec3{20, 0, 0})
	ApplyDamage(f.c, DamageRequest{Target: a, Point: front, Amount: 30})
	assert.Equal(t, 80, a.Health)
	assert.Equal(t, 90, a.PowerArmor.Cells)

	back := a.Origin.Add(world.Vec3{-20, 0, 0})
	ApplyDamage(f.c, DamageRequest{Target: a, Point: back, Amount: 30})
	assert.Equal(t, 50, a.Health)
	assert.Equal(t, 90, a.PowerArmor.Cells)
}

func TestPowerArmorMonotonicInCells(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	for _, kind := range []world.PowerArmorKind{world.PowerArmorScreen, world.PowerArmorShield} {
		for _, style := range []world.Style{0, world.StyleEnergy} {
			prev := -1
			for cells := 0; cells <= 60; cells++ {
				a.Health = 1000
				a.PowerArmor = world.PowerArmor{Kind: kind, Cells: cells}
				ApplyDamage(f.c, DamageRequest{Target: a, Point: a.Origin.Add(world.Vec3{30, 0, 0}), Amount: 90, Style: style})
				absorbed := 90 - (1000 - a.Health)
				assert.GreaterOrEqual(t, absorbed, prev, "kind %d style %d cells %d", kind, style, cells)
				prev = absorbed
			}
		}
	}
}

func TestArmorAbsorption(t *testing.T) {
	tests := []struct {
		name       string
		points     int
		style      world.Style
		wantHealth int
		wantPoints int
	}{
		{"normal", 100, 0, 80, 70},
		{"energy", 100, world.StyleEnergy, 65, 85},
		{"clamped to points", 10, 0, 60, 0},
		{"no armor style", 100, world.StyleNoArmor, 50, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.player(t, 1, "Ana", 0, 0)
			p.Armor = world.Armor{Kind: world.ArmorCombat, Points: tt.points}
			ApplyDamage(f.c, DamageRequest{Target: p, Amount: 50, Style: tt.style})
			assert.Equal(t, tt.wantHealth, p.Health)
			assert.Equal(t, tt.wantPoints, p.Armor.Points)
		})
	}
}

// TestApplyDamageStyleMatrix pins the order of protection, power armor,
// armor and the destroy-armor override.
func TestApplyDamageStyleMatrix(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(o *world.Object)
		amount int
		style  world.Style
		check  func(t *testing.T, o *world.Object)
	}{
		{
			name:   "destroy armor still spends armor",
			setup:  func(o *world.Object) { o.Armor = world.Armor{Kind: world.ArmorCombat, Points: 100} },
			amount: 50,
			style:  world.StyleDestroyArmor,
			check: func(t *testing.T, o *world.Object) {
				assert.Equal(t, 50, o.Health)
				assert.Equal(t, 70, o.Armor.Points)
			},
		},
		{
			name:   "destroy armor drains power armor without re-absorbing",
			setup:  func(o *world.Object) { o.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 10} },
			amount: 30,
			style:  world.StyleDestroyArmor,
			check: func(t *testing.T, o *world.Object) {
				assert.Equal(t, 70, o.Health)
				assert.Zero(t, o.PowerArmor.Cells)
			},
		},
		{
			name:   "destroy armor does not beat godmode",
			setup:  func(o *world.Object) { o.Flags |= world.FlagGodMode },
			amount: 50,
			style:  world.StyleDestroyArmor,
			check: func(t *testing.T, o *world.Object) {
				assert.Equal(t, 100, o.Health)
			},
		},
		{
			name:   "no protection beats godmode",
			setup:  func(o *world.Object) { o.Flags |= world.FlagGodMode },
			amount: 50,
			style:  world.StyleNoProtection,
			check: func(t *testing.T, o *world.Object) {
				assert.Equal(t, 50, o.Health)
			},
		},
		{
			name: "power armor absorbs before armor",
			setup: func(o *world.Object) {
				o.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 10}
				o.Armor = world.Armor{Kind: world.ArmorCombat, Points: 100}
			},
			amount: 30,
			check: func(t *testing.T, o *world.Object) {
				assert.Zero(t, o.PowerArmor.Cells)
				assert.Equal(t, 94, o.Armor.Points)
				assert.Equal(t, 96, o.Health)
			},
		},
		{
			name: "no armor skips both armors",
			setup: func(o *world.Object) {
				o.PowerArmor = world.PowerArmor{Kind: world.PowerArmorShield, Cells: 10}
				o.Armor = world.Armor{Kind: world.ArmorCombat, Points: 100}
			},
			amount: 30,
			style:  world.StyleNoArmor | world.StyleDestroyArmor,
			check: func(t *testing.T, o *world.Object) {
				assert.Equal(t, 10, o.PowerArmor.Cells)
				assert.Equal(t, 100, o.Armor.Points)
				assert.Equal(t, 70, o.Health)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.player(t, 1, "Ana", 0, 0)
			tt.setup(p)
			ApplyDamage(f.c, DamageRequest{Target: p, Amount: tt.amount, Style: tt.style})
			tt.check(t, p)
		})
	}
}

func TestEasySkillHalvesPlayerDamage(t *testing.T) {
	f := newFixture(t)
	f.c.Rules.Skill = sim.SkillEasy
	p := f.player(t, 1, "Ana", 0, 0)
	a := f.actor(200, 0)

	f.hit(p, nil, 30)
	assert.Equal(t, 85, p.Health)
	f.hit(p, nil, 1)
	assert.Equal(t, 84, p.Health, "never rounds down to zero")

	f.hit(a, nil, 30)
	assert.Equal(t, 70, a.Health, "actors take full damage")

	f.c.Rules.Deathmatch = true
	f.hit(p, nil, 30)
	assert.Equal(t, 54, p.Health)
}

func TestFriendlyFire(t *testing.T) {
	f := newFixture(t)
	f.c.Rules.Coop = true
	f.c.Rules.NoFriendlyFire = true
	a := f.player(t, 1, "Ana", 0, 0)
	b := f.player(t, 2, "Ben", 100, 0)

	ApplyDamage(f.c, DamageRequest{Target: b, Attacker: a, Dir: world.Vec3{1, 0, 0}, Amount: 30, Knockback: 40})
	assert.Equal(t, 100, b.Health)
	assert.Greater(t, b.Velocity[0], 0.0, "knockback still applies")

	ApplyDamage(f.c, DamageRequest{Target: b, Attacker: a, Amount: 30, Style: world.StyleIgnoreFriendlyFire})
	assert.Equal(t, 70, b.Health)

	f.c.Rules.NoFriendlyFire = false
	ApplyDamage(f.c, DamageRequest{Target: b, Attacker: a, Amount: 10})
	assert.Equal(t, 60, b.Health)
	assert.True(t, b.FriendlyFire)
}

func TestSneakAttackBonus(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, 1, "Ana", -200, 0)

	unaware := f.actor(0, 0)
	f.hit(unaware, p, 20)
	assert.Equal(t, 60, unaware.Health)

	alert := f.actor(100, 0)
	alert.Enemy = p.Self
	f.hit(alert, p, 20)
	assert.Equal(t, 80, alert.Health)

	splashed := f.actor(-100, 0)
	ApplyDamage(f.c, DamageRequest{Target: splashed, Attacker: p, Amount: 20, Style: world.StyleRadius})
	assert.Equal(t, 80, splashed.Health)
}

func TestKnockback(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture, t *testing.T) (target, attacker *world.Object)
		style world.Style
		want  float64
	}{
		{
			name: "scaled by mass",
			setup: func(f *fixture, _ *testing.T) (*world.Object, *world.Object) {
				return f.actor(0, 0), nil
			},
			want: 500.0 * 100 / 200,
		},
		{
			name: "light targets use the mass floor",
			setup: func(f *fixture, _ *testing.T) (*world.Object, *world.Object) {
				a := f.actor(0, 0)
				a.Mass = 10
				return a, nil
			},
			want: 500.0 * 100 / 50,
		},
		{
			name: "self inflicted by a player",
			setup: func(f *fixture, t *testing.T) (*world.Object, *world.Object) {
				p := f.player(t, 1, "Ana", 0, 0)
				return p, p
			},
			want: 1600.0 * 100 / 200,
		},
		{
			name: "style disables",
			setup: func(f *fixture, _ *testing.T) (*world.Object, *world.Object) {
				return f.actor(0, 0), nil
			},
			style: world.StyleNoKnockback,
		},
		{
			name: "immovable",
			setup: func(f *fixture, _ *testing.T) (*world.Object, *world.Object) {
				a := f.actor(0, 0)
				a.MoveType = world.MovePush
				return a, nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			target, attacker := tt.setup(f, t)
			target.Flags |= world.FlagGodMode
			ApplyDamage(f.c, DamageRequest{
				Target:    target,
				Attacker:  attacker,
				Dir:       world.Vec3{3, 0, 0},
				Amount:    10,
				Knockback: 100,
				Style:     tt.style,
			})
			assert.InDelta(t, tt.want, target.Velocity[0], 1e-9)
		})
	}
}

func TestDuckedActorSkipsPain(t *testing.T) {
	f := newFixture(t)
	a := f.actor(0, 0)
	a.Actor.Flags |= world.AIDucked
	f.hit(a, nil, 10)
	assert.Equal(t, 90, a.Health)
	assert.Empty(t, f.pains)
}

func TestNightmareSetsPainDebounce(t *testing.T) {
	f := newFixture(t)
	f.c.Rules.Skill = sim.SkillNightmare
	a := f.actor(0, 0)
	f.hit(a, nil, 10)
	assert.Equal(t, f.c.Clock.Ticks(5*time.Second), a.PainDebounce)
}

func TestImpactEffects(t *testing.T) {
	f := newFixture(t)
	organic := f.actor(0, 0)
	alien := f.actor(100, 0)
	alien.Flags |= world.FlagAlienBlood
	robot := f.actor(200, 0)
	robot.Flags |= world.FlagMechanical
	crate := f.c.Spawn(world.Vec3{300, 0, 0})
	crate.TakeDamage = true
	crate.Health = 50

	f.hit(organic, nil, 5)
	f.hit(alien, nil, 5)
	f.hit(robot, nil, 5)
	ApplyDamage(f.c, DamageRequest{Target: crate, Amount: 5, Style: world.StyleBullet})

	var kinds []event.EffectKind
	for _, e := range event.Pending[event.Effect](f.c.Bus) {
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []event.EffectKind{
		event.EffectBlood, event.EffectGreenBlood, event.EffectSparks, event.EffectBulletSparks,
	}, kinds)
	assert.Equal(t, 45, crate.Health)
}

func TestPlayerDamageFeedback(t *testing.T) {
	f := newFixture(t)
	p := f.player(t, 1, "Ana", 0, 0)
	p.Armor = world.Armor{Kind: world.ArmorJacket, Points: 50}

	ApplyDamage(f.c, DamageRequest{Target: p, Point: world.Vec3{5, 5, 5}, Amount: 20, Knockback: 7})
	assert.Equal(t, 6, p.Client.DamageArmor)
	assert.Equal(t, 14, p.Client.DamageBlood)
	assert.Equal(t, 7, p.Client.DamageKnockback)

	NewFeedbackSystem(f.c).Update(0)
	fb := event.Pending[event.DamageFeedback](f.c.Bus)
	require.Len(t, fb, 1)
	assert.Equal(t, event.DamageFeedback{Player: p.Self, Armor: 6, Blood: 14, Knockback: 7, From: event.Vec{5, 5, 5}}, fb[0])
	assert.Zero(t, p.Client.DamageBlood)

	NewFeedbackSystem(f.c).Update(0)
	assert.Len(t, event.Pending[event.DamageFeedback](f.c.Bus), 1)
}
