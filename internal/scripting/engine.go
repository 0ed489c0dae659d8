package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// FramePrefix marks Lua globals that are bound as frame events.
const FramePrefix = "frame_"

// Engine wraps a single gopher-lua VM for game logic execution.
// Single-goroutine access only (tick loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	// Load core scripts first, then feature scripts
	for _, sub := range []string{"core", "combat", "ai"} {
		p := filepath.Join(scriptsDir, sub)
		if err := e.loadDir(p); err != nil {
			vm.Close()
			return nil, fmt.Errorf("load %s scripts: %w", sub, err)
		}
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source in the engine's VM.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// MeleeContext holds pre-packed data for a monster melee swing.
type MeleeContext struct {
	Class     string
	Damage    int // template attack_damage
	Skill     int
	Health    int
	MaxHealth int
}

// CalcMonsterMelee calls the Lua calc_monster_melee function. Missing
// functions and script errors fall back to the template damage.
func (e *Engine) CalcMonsterMelee(ctx MeleeContext) int {
	fn := e.vm.GetGlobal("calc_monster_melee")
	if fn == lua.LNil {
		return ctx.Damage
	}

	t := e.vm.NewTable()
	t.RawSetString("class", lua.LString(ctx.Class))
	t.RawSetString("damage", lua.LNumber(ctx.Damage))
	t.RawSetString("skill", lua.LNumber(ctx.Skill))
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua calc_monster_melee error", zap.Error(err))
		return ctx.Damage
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua calc_monster_melee returned non-number")
		return ctx.Damage
	}
	if n < 0 {
		return 0
	}
	return int(n)
}

// FrameEvents lists the scripted frame events (globals named frame_*) in
// name order.
func (e *Engine) FrameEvents() []string {
	var names []string
	e.vm.G.Global.ForEach(func(k, v lua.LValue) {
		name, ok := k.(lua.LString)
		if !ok || v.Type() != lua.LTFunction {
			return
		}
		if strings.HasPrefix(string(name), FramePrefix) {
			names = append(names, string(name))
		}
	})
	sort.Strings(names)
	return names
}

// FrameContext is the actor state a scripted frame event sees.
type FrameContext struct {
	Class      string
	Health     int
	MaxHealth  int
	Skill      int
	HasEnemy   bool
	EnemyRange float64
}

// FrameResult holds the commands returned by a scripted frame event.
type FrameResult struct {
	Sound string  // sound to play, "" for none
	Pause float64 // seconds to pause the actor
	Move  string  // move key to switch to, "" to keep playing
}

// RunFrame calls the named frame event. Errors are logged and yield an empty
// result.
func (e *Engine) RunFrame(name string, ctx FrameContext) FrameResult {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua frame event not found", zap.String("name", name))
		return FrameResult{}
	}

	t := e.vm.NewTable()
	t.RawSetString("class", lua.LString(ctx.Class))
	t.RawSetString("health", lua.LNumber(ctx.Health))
	t.RawSetString("max_health", lua.LNumber(ctx.MaxHealth))
	t.RawSetString("skill", lua.LNumber(ctx.Skill))
	t.RawSetString("has_enemy", lua.LBool(ctx.HasEnemy))
	t.RawSetString("enemy_range", lua.LNumber(ctx.EnemyRange))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua frame event error", zap.String("name", name), zap.Error(err))
		return FrameResult{}
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		// nil means nothing to do
		return FrameResult{}
	}
	return FrameResult{
		Sound: lStr(rt, "sound"),
		Pause: float64(lua.LVAsNumber(rt.RawGetString("pause"))),
		Move:  lStr(rt, "move"),
	}
}

// ScaleHealth calls Lua monster_health(base, skill) for a spawning monster.
// Without the function, or on a non-positive result, base is kept.
func (e *Engine) ScaleHealth(base, skill int) int {
	if e.vm.GetGlobal("monster_health") == lua.LNil {
		return base
	}
	if hp := e.callIntFunc("monster_health", base, skill); hp > 0 {
		return hp
	}
	return base
}

// lStr reads a string field from a Lua table.
func lStr(t *lua.LTable, key string) string {
	v := t.RawGetString(key)
	if v == lua.LNil {
		return ""
	}
	return lua.LVAsString(v)
}

// callIntFunc calls a Lua function with int args and returns an int result.
func (e *Engine) callIntFunc(name string, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return 0
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return 0
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return int(lua.LVAsNumber(result))
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
