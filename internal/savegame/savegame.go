// Package savegame captures the object arena into a snapshot and restores
// it. Behavior references are stored by registry key, never by ID, so a
// snapshot survives a rebuild that registers behaviors in another order.
package savegame

import (
	"fmt"
	"time"

	"github.com/fragd/server/internal/core/arena"
	"github.com/fragd/server/internal/sim"
	"github.com/fragd/server/internal/world"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

// Snapshot is one saved level state. IDs are ksuids, so they sort by
// creation time.
type Snapshot struct {
	ID      string     `json:"id"`
	Level   string     `json:"level"`
	Tick    world.Tick `json:"tick"`
	Created time.Time  `json:"created"`
	Skill   int        `json:"skill"`
	Killed  int        `json:"killed_monsters"`
	Total   int        `json:"total_monsters"`
	Objects []Record   `json:"objects"`
}

// Record is one saved object.
type Record struct {
	Handle    arena.Handle `json:"handle"`
	Kind      world.Kind   `json:"kind"`
	ClassName string       `json:"class_name"`

	Origin   world.Vec3     `json:"origin"`
	Velocity world.Vec3     `json:"velocity"`
	Angles   world.Vec3     `json:"angles"`
	Mins     world.Vec3     `json:"mins"`
	Maxs     world.Vec3     `json:"maxs"`
	MoveType world.MoveType `json:"move_type"`
	Solid    world.Solid    `json:"solid"`
	Flags    world.Flags    `json:"flags"`
	Mass     int            `json:"mass"`

	Health     int              `json:"health"`
	MaxHealth  int              `json:"max_health"`
	GibHealth  int              `json:"gib_health"`
	TakeDamage bool             `json:"take_damage"`
	Armor      world.Armor      `json:"armor"`
	PowerArmor world.PowerArmor `json:"power_armor"`
	Team       string           `json:"team,omitempty"`

	Owner  arena.Handle `json:"owner,omitempty"`
	Enemy  arena.Handle `json:"enemy,omitempty"`
	Healer arena.Handle `json:"healer,omitempty"`

	NextThink    world.Tick `json:"next_think,omitempty"`
	PainDebounce world.Tick `json:"pain_debounce,omitempty"`
	Saved        int        `json:"saved,omitempty"`

	Think string `json:"think,omitempty"`
	Pain  string `json:"pain,omitempty"`
	Die   string `json:"die,omitempty"`
	Use   string `json:"use,omitempty"`
	Touch string `json:"touch,omitempty"`

	Target      string `json:"target,omitempty"`
	TargetName  string `json:"target_name,omitempty"`
	DeathTarget string `json:"death_target,omitempty"`

	Damage       int         `json:"damage,omitempty"`
	RadiusDamage int         `json:"radius_damage,omitempty"`
	DamageRadius float64     `json:"damage_radius,omitempty"`
	Cause        world.Cause `json:"cause,omitempty"`
	MeansOfDeath world.Cause `json:"means_of_death,omitempty"`
	FriendlyFire bool        `json:"friendly_fire,omitempty"`
	Gibbed       bool        `json:"gibbed,omitempty"`

	Actor  *ActorRecord       `json:"actor,omitempty"`
	Client *world.ClientState `json:"client,omitempty"`
}

// ActorRecord is the saved behavior state of an actor.
type ActorRecord struct {
	Class          string            `json:"class"`
	Move           string            `json:"move"`
	Frame          int               `json:"frame"`
	Flags          world.AIFlags     `json:"flags"`
	PauseUntil     world.Tick        `json:"pause_until,omitempty"`
	AttackFinished world.Tick        `json:"attack_finished,omitempty"`
	IdleTime       world.Tick        `json:"idle_time,omitempty"`
	SearchTime     world.Tick        `json:"search_time,omitempty"`
	AttackState    world.AttackState `json:"attack_state"`
	YawSpeed       float64           `json:"yaw_speed"`
	IdealYaw       float64           `json:"ideal_yaw"`
	SightRange     float64           `json:"sight_range"`
	StepSize       float64           `json:"step_size"`
	LastSighting   world.Vec3        `json:"last_sighting"`
	AttackDamage   int               `json:"attack_damage"`
	HealTarget     arena.Handle      `json:"heal_target,omitempty"`
}

// Capture records every live object except the world and anything already
// queued for freeing.
func Capture(c *sim.Context, level string) *Snapshot {
	s := &Snapshot{
		ID:      ksuid.New().String(),
		Level:   level,
		Tick:    c.Now(),
		Created: time.Now().UTC(),
		Skill:   c.Rules.Skill,
		Killed:  c.Level.KilledMonsters,
		Total:   c.Level.TotalMonsters,
	}
	r := c.Registry
	c.Objects.Each(func(o *world.Object) {
		if o.Self.Index() == 0 || c.Objects.Pending(o.Self) {
			return
		}
		rec := Record{
			Handle:       o.Self,
			Kind:         o.Kind,
			ClassName:    o.ClassName,
			Origin:       o.Origin,
			Velocity:     o.Velocity,
			Angles:       o.Angles,
			Mins:         o.Mins,
			Maxs:         o.Maxs,
			MoveType:     o.MoveType,
			Solid:        o.Solid,
			Flags:        o.Flags,
			Mass:         o.Mass,
			Health:       o.Health,
			MaxHealth:    o.MaxHealth,
			GibHealth:    o.GibHealth,
			TakeDamage:   o.TakeDamage,
			Armor:        o.Armor,
			PowerArmor:   o.PowerArmor,
			Team:         o.Team,
			Owner:        o.Owner,
			Enemy:        o.Enemy,
			Healer:       o.Healer,
			NextThink:    o.NextThink,
			PainDebounce: o.PainDebounce,
			Saved:        o.Saved,
			Think:        r.Think.Name(o.Think),
			Pain:         r.Pain.Name(o.Pain),
			Die:          r.Die.Name(o.Die),
			Use:          r.Use.Name(o.Use),
			Touch:        r.Touch.Name(o.Touch),
			Target:       o.Target,
			TargetName:   o.TargetName,
			DeathTarget:  o.DeathTarget,
			Damage:       o.Damage,
			RadiusDamage: o.RadiusDamage,
			DamageRadius: o.DamageRadius,
			Cause:        o.Cause,
			MeansOfDeath: o.MeansOfDeath,
			FriendlyFire: o.FriendlyFire,
			Gibbed:       o.Gibbed,
		}
		if a := o.Actor; a != nil {
			rec.Actor = &ActorRecord{
				Class:          r.Class.Name(a.Class),
				Move:           r.Move.Name(a.Move),
				Frame:          a.Frame,
				Flags:          a.Flags,
				PauseUntil:     a.PauseUntil,
				AttackFinished: a.AttackFinished,
				IdleTime:       a.IdleTime,
				SearchTime:     a.SearchTime,
				AttackState:    a.AttackState,
				YawSpeed:       a.YawSpeed,
				IdealYaw:       a.IdealYaw,
				SightRange:     a.SightRange,
				StepSize:       a.StepSize,
				LastSighting:   a.LastSighting,
				AttackDamage:   a.AttackDamage,
				HealTarget:     a.HealTarget,
			}
		}
		if cl := o.Client; cl != nil {
			saved := *cl
			rec.Client = &saved
		}
		s.Objects = append(s.Objects, rec)
	})
	return s
}

// Restore replaces the arena contents with the snapshot. Every object gets
// back its recorded handle, so stored references stay valid. An object
// naming an unknown behavior key or a frame outside its move is logged and
// freed; the rest of the snapshot still loads. It returns how many objects
// were restored.
func Restore(c *sim.Context, s *Snapshot) (int, error) {
	c.Objects.Clear(c.Now())
	c.Clock.Set(s.Tick)
	c.Rules.Skill = s.Skill
	c.Level.KilledMonsters = s.Killed
	c.Level.TotalMonsters = s.Total

	var restored []*world.Object
	var dropped []arena.Handle
	for i := range s.Objects {
		rec := &s.Objects[i]
		o, err := build(c.Registry, rec)
		if err == nil {
			err = c.Objects.Adopt(o)
		} else if adoptErr := c.Objects.Adopt(world.Object{Self: rec.Handle}); adoptErr == nil {
			// Hold the slot so the bad object is freed like any other.
			dropped = append(dropped, rec.Handle)
		}
		if err != nil {
			c.Log.Warn("savegame object dropped",
				zap.String("snapshot", s.ID),
				zap.Stringer("object", rec.Handle),
				zap.String("class", rec.ClassName),
				zap.Error(err))
			continue
		}
		restored = append(restored, c.Lookup(rec.Handle))
	}

	for _, h := range dropped {
		if err := drop(c, h); err != nil {
			return len(restored), fmt.Errorf("restore %s: %w", s.ID, err)
		}
	}
	for _, o := range restored {
		c.Link(o)
	}
	c.Log.Info("savegame restored",
		zap.String("snapshot", s.ID),
		zap.String("level", s.Level),
		zap.Int("objects", len(restored)),
		zap.Int("dropped", len(dropped)))
	return len(restored), nil
}

func drop(c *sim.Context, h arena.Handle) error {
	if c.Objects.Pool().Reserved(h) {
		return c.Objects.ReleasePlayer(h, c.Now())
	}
	return c.Objects.Free(h, c.Now())
}

// build resolves every key of rec into a fresh object.
func build(r *sim.Registry, rec *Record) (world.Object, error) {
	o := world.Object{
		Self:         rec.Handle,
		InUse:        true,
		Kind:         rec.Kind,
		ClassName:    rec.ClassName,
		Origin:       rec.Origin,
		Velocity:     rec.Velocity,
		Angles:       rec.Angles,
		Mins:         rec.Mins,
		Maxs:         rec.Maxs,
		MoveType:     rec.MoveType,
		Solid:        rec.Solid,
		Flags:        rec.Flags,
		Mass:         rec.Mass,
		Health:       rec.Health,
		MaxHealth:    rec.MaxHealth,
		GibHealth:    rec.GibHealth,
		TakeDamage:   rec.TakeDamage,
		Armor:        rec.Armor,
		PowerArmor:   rec.PowerArmor,
		Team:         rec.Team,
		Owner:        rec.Owner,
		Enemy:        rec.Enemy,
		Healer:       rec.Healer,
		NextThink:    rec.NextThink,
		PainDebounce: rec.PainDebounce,
		Saved:        rec.Saved,
		Target:       rec.Target,
		TargetName:   rec.TargetName,
		DeathTarget:  rec.DeathTarget,
		Damage:       rec.Damage,
		RadiusDamage: rec.RadiusDamage,
		DamageRadius: rec.DamageRadius,
		Cause:        rec.Cause,
		MeansOfDeath: rec.MeansOfDeath,
		FriendlyFire: rec.FriendlyFire,
		Gibbed:       rec.Gibbed,
	}
	var err error
	if o.Think, err = r.Think.Lookup(rec.Think); err != nil {
		return o, err
	}
	if o.Pain, err = r.Pain.Lookup(rec.Pain); err != nil {
		return o, err
	}
	if o.Die, err = r.Die.Lookup(rec.Die); err != nil {
		return o, err
	}
	if o.Use, err = r.Use.Lookup(rec.Use); err != nil {
		return o, err
	}
	if o.Touch, err = r.Touch.Lookup(rec.Touch); err != nil {
		return o, err
	}
	if rec.Client != nil {
		cl := *rec.Client
		o.Client = &cl
	}
	if rec.Actor == nil {
		return o, nil
	}

	ar := rec.Actor
	a := &world.ActorState{
		Frame:          ar.Frame,
		Flags:          ar.Flags,
		PauseUntil:     ar.PauseUntil,
		AttackFinished: ar.AttackFinished,
		IdleTime:       ar.IdleTime,
		SearchTime:     ar.SearchTime,
		AttackState:    ar.AttackState,
		YawSpeed:       ar.YawSpeed,
		IdealYaw:       ar.IdealYaw,
		SightRange:     ar.SightRange,
		StepSize:       ar.StepSize,
		LastSighting:   ar.LastSighting,
		AttackDamage:   ar.AttackDamage,
		HealTarget:     ar.HealTarget,
	}
	if a.Class, err = r.Class.Lookup(ar.Class); err != nil {
		return o, err
	}
	if a.Move, err = r.Move.Lookup(ar.Move); err != nil {
		return o, err
	}
	move, ok := r.Move.Get(a.Move)
	if !ok {
		return o, fmt.Errorf("actor without move: %w", sim.ErrUnknownKey)
	}
	if _, err := move.At(a.Frame); err != nil {
		return o, err
	}
	o.Actor = a
	return o, nil
}
