package world

import "github.com/fragd/server/internal/core/arena"

// Kind is the lifecycle kind of a slot's occupant.
type Kind uint8

const (
	KindFree Kind = iota
	KindWorld
	KindActor
	KindCorpse
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindWorld:
		return "world"
	case KindActor:
		return "actor"
	case KindCorpse:
		return "corpse"
	}
	return "unknown"
}

type MoveType uint8

const (
	MoveNone MoveType = iota
	MoveStep          // gravity-bound actor movement
	MoveWalk          // player movement
	MoveFly
	MoveToss
	MoveBounce
	MoveFlyMissile
	MovePush // doors and platforms
	MoveStop
)

// Immovable reports whether knockback never applies.
func (m MoveType) Immovable() bool {
	return m == MoveNone || m == MoveBounce || m == MovePush || m == MoveStop
}

type Solid uint8

const (
	SolidNot Solid = iota
	SolidTrigger
	SolidBBox
)

type Flags uint32

const (
	FlagGodMode Flags = 1 << iota
	FlagNoKnockback
	FlagFly
	FlagSwim
	FlagPartialGround
	FlagOnGround
	FlagMechanical
	FlagAlienBlood
	FlagNoTarget // ignored by actors looking for enemies
)

func (f Flags) Has(x Flags) bool { return f&x != 0 }

// AIFlags are the actor behavior bits.
type AIFlags uint32

const (
	AIStandGround AIFlags = 1 << iota
	AIDucked
	AIMedic
	AIHoldFrame
	AIGoodGuy
	AIBrutal
	AILostSight
	AIDetached // dead: no further locomotion or decisions
)

func (f AIFlags) Has(x AIFlags) bool { return f&x != 0 }

type AttackState uint8

const (
	AttackStraight AttackState = iota
	AttackMelee
	AttackMissile
)

type ArmorKind uint8

const (
	ArmorNone ArmorKind = iota
	ArmorJacket
	ArmorCombat
	ArmorBody
)

type PowerArmorKind uint8

const (
	PowerArmorNone PowerArmorKind = iota
	PowerArmorScreen
	PowerArmorShield
)

type Gender uint8

const (
	GenderMale Gender = iota
	GenderFemale
	GenderNeuter
)

type Armor struct {
	Kind   ArmorKind
	Points int
}

type PowerArmor struct {
	Kind  PowerArmorKind
	Cells int
}

// ClientState is present only on player objects.
type ClientState struct {
	Name            string
	Gender          Gender
	Score           int
	InvincibleUntil Tick

	// Per-tick damage totals, flushed by the feedback system.
	DamageArmor     int
	DamagePArmor    int
	DamageBlood     int
	DamageKnockback int
	DamageFrom      Vec3
}

// ActorState is present only on objects driven by the behavior engine.
type ActorState struct {
	Class       ClassID
	Move        MoveID
	Frame       int
	Flags       AIFlags
	Transitions uint64

	PauseUntil     Tick
	AttackFinished Tick
	IdleTime       Tick
	SearchTime     Tick
	AttackState    AttackState

	YawSpeed     float64
	IdealYaw     float64
	SightRange   float64
	StepSize     float64
	LastSighting Vec3

	AttackDamage int
	HealTarget   arena.Handle
}

// Object is the single mutable entity type.
type Object struct {
	Self      arena.Handle
	InUse     bool
	Kind      Kind
	ClassName string

	Origin   Vec3
	Velocity Vec3
	Angles   Vec3
	Mins     Vec3
	Maxs     Vec3
	MoveType MoveType
	Solid    Solid
	Flags    Flags
	Mass     int

	Health     int
	MaxHealth  int
	GibHealth  int
	TakeDamage bool
	Armor      Armor
	PowerArmor PowerArmor
	Team       string

	Owner  arena.Handle
	Enemy  arena.Handle
	Healer arena.Handle

	NextThink    Tick
	PainDebounce Tick
	Saved        int

	Think ThinkID
	Pain  PainID
	Die   DieID
	Use   UseID
	Touch TouchID

	Target      string
	TargetName  string
	DeathTarget string

	// Projectile payload.
	Damage       int
	RadiusDamage int
	DamageRadius float64
	Cause        Cause

	// Last damage cause, read by the obituary.
	MeansOfDeath Cause
	FriendlyFire bool
	Gibbed       bool

	Actor  *ActorState
	Client *ClientState
}

func (o *Object) IsActor() bool  { return o.Actor != nil }
func (o *Object) IsPlayer() bool { return o.Client != nil }

// Alive reports positive health on a non-corpse occupant.
func (o *Object) Alive() bool {
	return o.InUse && o.Kind != KindCorpse && o.Health > 0
}

func (o *Object) AbsMin() Vec3 { return o.Origin.Add(o.Mins) }
func (o *Object) AbsMax() Vec3 { return o.Origin.Add(o.Maxs) }

// Center is the middle of the bounding box in world space.
func (o *Object) Center() Vec3 {
	return o.Origin.MA(0.5, o.Mins.Add(o.Maxs))
}

// Size is the bounding box extent.
func (o *Object) Size() Vec3 { return o.Maxs.Sub(o.Mins) }
