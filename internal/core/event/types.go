package event

import "github.com/fragd/server/internal/core/arena"

// Vec is a plain position triple so the bus stays free of world types.
type Vec [3]float64

// EffectKind selects the client-side impact effect.
type EffectKind uint8

const (
	EffectSparks EffectKind = iota
	EffectBulletSparks
	EffectBlood
	EffectGreenBlood
	EffectScreenSparks
	EffectShieldSparks
	EffectExplosion
)

// Effect is a multicast impact effect at a point.
type Effect struct {
	Kind   EffectKind
	Point  Vec
	Normal Vec
	Count  int
}

// Sound asks the host to play a named sound on an object.
type Sound struct {
	Source arena.Handle
	Name   string
}

// ObjectKilled is emitted once per death transition.
type ObjectKilled struct {
	Victim    arena.Handle
	Inflictor arena.Handle
	Attacker  arena.Handle
	Cause     string
	Damage    int
}

// Obituary carries the broadcast kill message.
type Obituary struct {
	Victim   arena.Handle
	Attacker arena.Handle
	Text     string
}

// Protected is emitted when godmode or invulnerability absorbed a hit.
type Protected struct {
	Target arena.Handle
	Saved  int
}

// DamageFeedback carries one player's accumulated damage for a tick, used by
// the host for screen flashes and view kicks.
type DamageFeedback struct {
	Player     arena.Handle
	Armor      int
	PowerArmor int
	Blood      int
	Knockback  int
	From       Vec
}
