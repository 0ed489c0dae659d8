package sim

import (
	"math/rand"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/core/event"
	"github.com/fragd/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Context is the simulation state passed to every behavior. It is owned by
// the tick goroutine.
type Context struct {
	Log      *zap.Logger
	Clock    *world.Clock
	Objects  *world.Store
	Grid     *world.Grid
	Spatial  Spatial
	Registry *Registry
	Bus      *event.Bus
	Relay    Relay
	Metrics  *Metrics
	Rand     *rand.Rand
	Printer  *message.Printer

	Rules    Rules
	Features Features
	Level    Level
	Armor    ArmorTable
	Causes   CauseTable

	turn arena.Handle
}

// New wires a context over objects with default collaborators. geometry may
// be nil for an empty level.
func New(log *zap.Logger, clock *world.Clock, objects *world.Store, geometry *world.BoxMap) *Context {
	grid := world.NewGrid(256, 64)
	objects.Pool().AddUnlinker(grid)
	c := &Context{
		Log:      log,
		Clock:    clock,
		Objects:  objects,
		Grid:     grid,
		Spatial:  &WorldSpatial{Map: geometry, Grid: grid, Objects: objects},
		Registry: NewRegistry(),
		Bus:      event.NewBus(),
		Relay:    NameRelay{},
		Rand:     rand.New(rand.NewSource(1)),
		Printer:  message.NewPrinter(language.English),
		Rules: Rules{
			Skill:           SkillMedium,
			ProtectDebounce: clock.Ticks(2 * time.Second),
			PainDebounce:    clock.Ticks(3 * time.Second),
		},
		Armor:  DefaultArmor{},
		Causes: NoCauses{},
	}
	if m, err := NewMetrics(objects); err != nil {
		log.Warn("metrics disabled", zap.Error(err))
	} else {
		c.Metrics = m
	}
	return c
}

func (c *Context) Now() world.Tick { return c.Clock.Now() }

// Spawn allocates and links a fresh object at origin.
func (c *Context) Spawn(origin world.Vec3) *world.Object {
	o := c.Objects.MustAllocate(c.Now())
	o.Origin = origin
	c.Link(o)
	return o
}

// Link refreshes o's position in the spatial index.
func (c *Context) Link(o *world.Object) {
	c.Grid.Link(o.Self, o.Origin)
}

// Lookup dereferences a stored reference, nil if it no longer resolves.
func (c *Context) Lookup(h arena.Handle) *world.Object {
	return c.Objects.Lookup(h)
}

// Release frees o. An object released during its own turn is queued and
// freed once the turn ends.
func (c *Context) Release(o *world.Object) {
	if o == nil || !o.InUse {
		return
	}
	h := o.Self
	if h == c.turn {
		if !c.Objects.Pending(h) {
			c.Objects.Defer(h)
		}
		return
	}
	var err error
	if c.Objects.Pool().Reserved(h) {
		err = c.Objects.ReleasePlayer(h, c.Now())
	} else {
		err = c.Objects.Free(h, c.Now())
	}
	if err != nil {
		arena.Raise("release", h, err)
	}
}

// Turn marks h as the object currently running and returns the function that
// ends the turn and flushes deferred frees.
func (c *Context) Turn(h arena.Handle) func() {
	prev := c.turn
	c.turn = h
	return func() {
		c.turn = prev
		if prev.IsZero() {
			c.Flush()
		}
	}
}

// Current is the object whose turn is running, or arena.None.
func (c *Context) Current() arena.Handle { return c.turn }

// Flush frees every deferred object.
func (c *Context) Flush() {
	for _, err := range c.Objects.Flush(c.Now()) {
		c.Log.Warn("deferred free failed", zap.Error(err))
	}
}

// SetMove starts the move id on an actor: frame cursor at its first frame,
// hold cleared, and the transition counter bumped so the engine does not
// advance past the new first frame this tick.
func (c *Context) SetMove(self *world.Object, id world.MoveID) {
	m, ok := c.Registry.Move.Get(id)
	if !ok || self.Actor == nil {
		arena.Raise("set move", self.Self, ErrUnknownKey)
	}
	a := self.Actor
	a.Move = id
	a.Frame = m.First
	a.Transitions++
	a.Flags &^= world.AIHoldFrame
}

// Class returns the hook bundle of an actor, nil for non-actors.
func (c *Context) Class(self *world.Object) *Class {
	if self.Actor == nil {
		return nil
	}
	cl, _ := c.Registry.Class.Get(self.Actor.Class)
	return cl
}

func (c *Context) Sound(o *world.Object, name string) {
	event.Emit(c.Bus, event.Sound{Source: o.Self, Name: name})
}

func (c *Context) Effect(kind event.EffectKind, point, normal world.Vec3, count int) {
	event.Emit(c.Bus, event.Effect{Kind: kind, Point: event.Vec(point), Normal: event.Vec(normal), Count: count})
}

// Random returns a value in [0, 1).
func (c *Context) Random() float64 { return c.Rand.Float64() }

// Crandom returns a value in [-1, 1).
func (c *Context) Crandom() float64 { return 2 * (c.Rand.Float64() - 0.5) }
