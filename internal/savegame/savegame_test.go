package savegame_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/data"
	"github.com/fragd/server/internal/monster"
	"github.com/fragd/server/internal/savegame"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/system"
	"github.com/fragd/server/internal/world"
	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type level struct {
	c      *sim.Context
	roster *monster.Roster
}

// newLevel builds a context with the full roster. shift registers a few
// unrelated behaviors first so that IDs differ between two levels.
func newLevel(t *testing.T, shift bool) *level {
	t.Helper()
	geo := &world.BoxMap{Name: "test", Brushes: []world.Brush{
		{Mins: world.Vec3{-4096, -4096, -64}, Maxs: world.Vec3{4096, 4096, 0}, Surface: "floor"},
	}}
	store := world.NewStore(arena.Policy{Max: 64, Reserved: 2, Quarantine: 10})
	c := sim.New(zap.NewNop(), world.NewClock(100*time.Millisecond), store, geo)
	c.Features = sim.Features{SinglePlayerAI: true, Medic: true, Flyer: true}
	if shift {
		noop := func(*sim.Context, *world.Object) {}
		c.Registry.Think.MustRegister("padding_think", noop)
		c.Registry.Event.MustRegister("padding_event", noop)
	}
	require.NoError(t, system.Register(c.Registry))

	templates, err := data.LoadMonsterTable("../../data/yaml/monster_list.yaml")
	require.NoError(t, err)
	roster, err := monster.Register(c, templates, nil)
	require.NoError(t, err)
	return &level{c: c, roster: roster}
}

func (l *level) spawn(t *testing.T, class string, x float64) *world.Object {
	t.Helper()
	o, err := l.roster.Spawn(l.c, class, world.Vec3{x, 0, 24}, 0)
	require.NoError(t, err)
	return o
}

func (l *level) player(t *testing.T) *world.Object {
	t.Helper()
	p, err := l.c.Objects.ClaimPlayer(1)
	require.NoError(t, err)
	p.ClassName = "player"
	p.Origin = world.Vec3{600, 0, 24}
	p.Health, p.MaxHealth = 80, 100
	p.TakeDamage = true
	p.Client.Name = "ranger"
	p.Client.Score = 3
	p.Armor = world.Armor{Kind: world.ArmorCombat, Points: 40}
	l.c.Link(p)
	return p
}

// roundTrip sends a snapshot through JSON like a save store does.
func roundTrip(t *testing.T, s *savegame.Snapshot) *savegame.Snapshot {
	t.Helper()
	raw, err := json.Marshal(s)
	require.NoError(t, err)
	var out savegame.Snapshot
	require.NoError(t, json.Unmarshal(raw, &out))
	return &out
}

func TestCaptureRestore(t *testing.T) {
	src := newLevel(t, false)
	soldier := src.spawn(t, "monster_soldier", 0)
	medic := src.spawn(t, "monster_medic", 200)
	p := src.player(t)
	soldier.Enemy = p.Self
	soldier.Actor.Frame = 5
	src.c.Clock.Set(420)

	snap := savegame.Capture(src.c, "base1")
	_, err := ksuid.Parse(snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "base1", snap.Level)
	assert.Equal(t, world.Tick(420), snap.Tick)
	require.Len(t, snap.Objects, 3)

	dst := newLevel(t, true)
	n, err := savegame.Restore(dst.c, roundTrip(t, snap))
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, world.Tick(420), dst.c.Now())
	assert.Equal(t, 2, dst.c.Level.TotalMonsters)

	s := dst.c.Lookup(soldier.Self)
	require.NotNil(t, s)
	assert.Equal(t, "monster_soldier", s.ClassName)
	assert.Equal(t, "soldier_stand", dst.c.Registry.Move.Name(s.Actor.Move))
	assert.Equal(t, "monster_soldier", dst.c.Registry.Class.Name(s.Actor.Class))
	assert.Equal(t, 5, s.Actor.Frame)
	assert.Equal(t, src.c.Registry.Pain.Name(soldier.Pain), dst.c.Registry.Pain.Name(s.Pain))
	assert.Equal(t, "monster_use", dst.c.Registry.Use.Name(s.Use))

	rp := dst.c.Lookup(s.Enemy)
	require.NotNil(t, rp, "enemy reference survives")
	assert.Equal(t, "ranger", rp.Client.Name)
	assert.Equal(t, 3, rp.Client.Score)
	assert.Equal(t, 80, rp.Health)
	assert.Equal(t, world.Armor{Kind: world.ArmorCombat, Points: 40}, rp.Armor)

	m := dst.c.Lookup(medic.Self)
	require.NotNil(t, m)
	assert.True(t, m.Actor.Flags.Has(world.AIMedic))

	// Restored actors are linked and run.
	assert.Contains(t, dst.c.Spatial.QueryRegion(world.Vec3{0, 0, 24}, 64), soldier.Self)
	system.NewActorSystem(dst.c).Update(0)
	assert.NotNil(t, dst.c.Lookup(soldier.Self))
}

func TestCaptureSkipsFreedAndPending(t *testing.T) {
	l := newLevel(t, false)
	a := l.spawn(t, "monster_soldier", 0)
	b := l.spawn(t, "monster_soldier", 100)
	c := l.spawn(t, "monster_soldier", 200)
	l.c.Release(a)
	l.c.Objects.Defer(b.Self)

	snap := savegame.Capture(l.c, "test")
	require.Len(t, snap.Objects, 1)
	assert.Equal(t, c.Self, snap.Objects[0].Handle)
}

func TestRestoreDropsBadObjects(t *testing.T) {
	tests := []struct {
		name  string
		spoil func(r *savegame.Record)
	}{
		{"unknown pain", func(r *savegame.Record) { r.Pain = "soldier_pain_v2" }},
		{"unknown move", func(r *savegame.Record) { r.Actor.Move = "soldier_moonwalk" }},
		{"unknown class", func(r *savegame.Record) { r.Actor.Class = "monster_tank" }},
		{"frame out of range", func(r *savegame.Record) { r.Actor.Frame = 999 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newLevel(t, false)
			bad := src.spawn(t, "monster_soldier", 0)
			good := src.spawn(t, "monster_berserk", 200)
			good.Enemy = bad.Self
			snap := roundTrip(t, savegame.Capture(src.c, "test"))
			for i := range snap.Objects {
				if snap.Objects[i].Handle == bad.Self {
					tt.spoil(&snap.Objects[i])
				}
			}

			dst := newLevel(t, false)
			n, err := savegame.Restore(dst.c, snap)
			require.NoError(t, err)
			assert.Equal(t, 1, n)
			assert.Nil(t, dst.c.Lookup(bad.Self))
			g := dst.c.Lookup(good.Self)
			require.NotNil(t, g)
			assert.Nil(t, dst.c.Lookup(g.Enemy), "reference to the dropped object is stale")
		})
	}
}

func TestRestoreReplacesExistingObjects(t *testing.T) {
	src := newLevel(t, false)
	kept := src.spawn(t, "monster_soldier", 0)
	snap := roundTrip(t, savegame.Capture(src.c, "test"))

	dst := newLevel(t, false)
	for i := 0; i < 5; i++ {
		dst.spawn(t, "monster_flyer", float64(i*100))
	}
	_, err := savegame.Restore(dst.c, snap)
	require.NoError(t, err)

	assert.Equal(t, 2, dst.c.Objects.Pool().Live(), "world plus the soldier")
	require.NotNil(t, dst.c.Lookup(kept.Self))
	assert.Equal(t, "monster_soldier", dst.c.Lookup(kept.Self).ClassName)
}
