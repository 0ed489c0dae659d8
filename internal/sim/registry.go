package sim

import (
	"errors"
	"fmt"

	"github.com/fragd/server/internal/world"
)

var (
	// ErrUnknownKey is returned when a saved behavior name has no registration.
	ErrUnknownKey = errors.New("unknown behavior key")
	// ErrDuplicateKey is returned when a name is registered twice.
	ErrDuplicateKey = errors.New("duplicate behavior key")
)

type (
	ThinkFunc func(c *Context, self *world.Object)
	PainFunc  func(c *Context, self, other *world.Object, kick float64, damage int)
	DieFunc   func(c *Context, self, inflictor, attacker *world.Object, damage int, point world.Vec3)
	UseFunc   func(c *Context, self, other, activator *world.Object)
	TouchFunc func(c *Context, self, other *world.Object, normal world.Vec3, surface string)
)

// Class bundles the decision hooks of one actor kind. Nil hooks are allowed
// and mean the actor has no such behavior.
type Class struct {
	Name   string
	Stand  ThinkFunc
	Walk   ThinkFunc
	Run    ThinkFunc
	Attack ThinkFunc // missile attack
	Melee  ThinkFunc
	Sight  ThinkFunc
	Search ThinkFunc
	// CheckAttack overrides the generic attack decision.
	CheckAttack func(c *Context, self *world.Object) bool
	// Severed is told when a healer/patient relation with other ended.
	Severed func(c *Context, self, other *world.Object)
}

// Table maps kind IDs to implementations under unique string keys.
type Table[ID ~uint16, F any] struct {
	kind   string
	names  []string
	fns    []F
	byName map[string]ID
}

func newTable[ID ~uint16, F any](kind string) Table[ID, F] {
	return Table[ID, F]{
		kind:   kind,
		names:  []string{""},
		fns:    make([]F, 1),
		byName: make(map[string]ID),
	}
}

// Register adds fn under name and returns its ID.
func (t *Table[ID, F]) Register(name string, fn F) (ID, error) {
	if name == "" {
		return 0, fmt.Errorf("register %s: empty name", t.kind)
	}
	if _, ok := t.byName[name]; ok {
		return 0, fmt.Errorf("register %s %q: %w", t.kind, name, ErrDuplicateKey)
	}
	id := ID(len(t.fns))
	t.names = append(t.names, name)
	t.fns = append(t.fns, fn)
	t.byName[name] = id
	return id, nil
}

// MustRegister is Register for boot-time tables where a duplicate is a bug.
func (t *Table[ID, F]) MustRegister(name string, fn F) ID {
	id, err := t.Register(name, fn)
	if err != nil {
		panic(err)
	}
	return id
}

// Get returns the implementation for id; ok is false for 0 or unknown IDs.
func (t *Table[ID, F]) Get(id ID) (F, bool) {
	var zero F
	if id == 0 || int(id) >= len(t.fns) {
		return zero, false
	}
	return t.fns[id], true
}

// Name returns the key of id, or "" for none.
func (t *Table[ID, F]) Name(id ID) string {
	if int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Lookup resolves a key back to its ID. The empty key resolves to 0.
func (t *Table[ID, F]) Lookup(name string) (ID, error) {
	if name == "" {
		return 0, nil
	}
	id, ok := t.byName[name]
	if !ok {
		return 0, fmt.Errorf("%s %q: %w", t.kind, name, ErrUnknownKey)
	}
	return id, nil
}

func (t *Table[ID, F]) Len() int { return len(t.fns) - 1 }

// Registry holds every engine-recognized behavior function. Each is
// registered exactly once under a unique name before first use.
type Registry struct {
	Think Table[world.ThinkID, ThinkFunc]
	Pain  Table[world.PainID, PainFunc]
	Die   Table[world.DieID, DieFunc]
	Use   Table[world.UseID, UseFunc]
	Touch Table[world.TouchID, TouchFunc]
	Event Table[world.EventID, ThinkFunc]
	End   Table[world.EndID, ThinkFunc]
	Class Table[world.ClassID, *Class]
	Move  Table[world.MoveID, *world.Move]
}

func NewRegistry() *Registry {
	return &Registry{
		Think: newTable[world.ThinkID, ThinkFunc]("think"),
		Pain:  newTable[world.PainID, PainFunc]("pain"),
		Die:   newTable[world.DieID, DieFunc]("die"),
		Use:   newTable[world.UseID, UseFunc]("use"),
		Touch: newTable[world.TouchID, TouchFunc]("touch"),
		Event: newTable[world.EventID, ThinkFunc]("event"),
		End:   newTable[world.EndID, ThinkFunc]("end"),
		Class: newTable[world.ClassID, *Class]("class"),
		Move:  newTable[world.MoveID, *world.Move]("move"),
	}
}

// RegisterMove validates a move table before registering it: the frame range
// must match, and every frame event and the continuation must already be
// registered.
func (r *Registry) RegisterMove(m *world.Move) (world.MoveID, error) {
	if err := m.Validate(); err != nil {
		return 0, err
	}
	for i, f := range m.Frames {
		if f.Event == 0 {
			continue
		}
		if _, ok := r.Event.Get(f.Event); !ok {
			return 0, fmt.Errorf("move %s frame %d: event %d: %w", m.Name, m.First+i, f.Event, ErrUnknownKey)
		}
	}
	if m.End != 0 {
		if _, ok := r.End.Get(m.End); !ok {
			return 0, fmt.Errorf("move %s: end %d: %w", m.Name, m.End, ErrUnknownKey)
		}
	}
	return r.Move.Register(m.Name, m)
}

// MustRegisterMove panics on an invalid table.
func (r *Registry) MustRegisterMove(m *world.Move) world.MoveID {
	id, err := r.RegisterMove(m)
	if err != nil {
		panic(err)
	}
	return id
}
