package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	e, err := NewEngine(dir, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e
}

func TestShippedScripts(t *testing.T) {
	e := newEngine(t, "../../scripts")
	assert.Equal(t, []string{"frame_run", "frame_stand"}, e.FrameEvents())
	assert.Equal(t, 100, e.ScaleHealth(100, 1))
	assert.Equal(t, 125, e.ScaleHealth(100, 2))
	assert.Equal(t, 150, e.ScaleHealth(100, 3))

	dmg := e.CalcMonsterMelee(MeleeContext{Damage: 10, Skill: 1, Health: 100, MaxHealth: 100})
	assert.GreaterOrEqual(t, dmg, 10)
	assert.LessOrEqual(t, dmg, 15)

	res := e.RunFrame("frame_run", FrameContext{Class: "monster_soldier", HasEnemy: true, EnemyRange: 200})
	assert.Equal(t, FrameResult{Sound: "monster_soldier/sight", Pause: 0.5}, res)
	assert.Equal(t, FrameResult{}, e.RunFrame("frame_run", FrameContext{}))
}

func TestMissingDirectoryLoadsNothing(t *testing.T) {
	e := newEngine(t, t.TempDir())
	assert.Empty(t, e.FrameEvents())
	assert.Equal(t, 7, e.CalcMonsterMelee(MeleeContext{Damage: 7}))
	assert.Equal(t, 80, e.ScaleHealth(80, 3))
	assert.Equal(t, FrameResult{}, e.RunFrame("frame_none", FrameContext{}))
}

func TestBrokenScriptFailsLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ai"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ai", "bad.lua"), []byte("function frame_x("), 0o644))

	_, err := NewEngine(dir, zap.NewNop())
	assert.ErrorContains(t, err, "load ai scripts")
}

func TestCalcMonsterMelee(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want int
	}{
		{"formula", "function calc_monster_melee(ctx) return ctx.damage * 3 + ctx.skill end", 32},
		{"runtime error", "function calc_monster_melee(ctx) return ctx.nope.x end", 10},
		{"non-number", "function calc_monster_melee(ctx) return 'hard' end", 10},
		{"negative", "function calc_monster_melee(ctx) return -4 end", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, t.TempDir())
			require.NoError(t, e.LoadString(tt.src))
			assert.Equal(t, tt.want, e.CalcMonsterMelee(MeleeContext{Damage: 10, Skill: 2}))
		})
	}
}

func TestRunFrame(t *testing.T) {
	e := newEngine(t, t.TempDir())
	require.NoError(t, e.LoadString(`
function frame_hurt(ctx)
    if ctx.health < ctx.max_health then
        return { move = "soldier_duck", pause = 1 }
    end
end
function frame_boom(ctx) error("boom") end
not_a_frame = 3
`))
	assert.Equal(t, []string{"frame_boom", "frame_hurt"}, e.FrameEvents())
	assert.Equal(t, FrameResult{Move: "soldier_duck", Pause: 1},
		e.RunFrame("frame_hurt", FrameContext{Health: 5, MaxHealth: 30}))
	assert.Equal(t, FrameResult{}, e.RunFrame("frame_hurt", FrameContext{Health: 30, MaxHealth: 30}))
	assert.Equal(t, FrameResult{}, e.RunFrame("frame_boom", FrameContext{}))
}
