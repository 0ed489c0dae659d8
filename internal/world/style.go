package world

// Style describes the qualitative nature of an attack.
type Style uint16

const (
	StyleRadius             Style = 1 << iota // splash damage, no sneak-attack bonus
	StyleNoArmor                              // bypasses armor and power armor
	StyleEnergy                               // laser/blaster class damage
	StyleNoKnockback                          // no velocity change
	StyleBullet                               // bullet sparks instead of sparks
	StyleNoProtection                         // ignores godmode and invulnerability
	StyleDestroyArmor                         // full damage goes through absorbed armor
	StyleNoRadiusHalving                      // attacker takes full splash
	StyleIgnoreFriendlyFire                   // not zeroed between teammates
	StyleInstantGib                           // a lethal hit always gibs
)

func (s Style) Has(f Style) bool { return s&f != 0 }

// Cause names a means of death; obituary text is looked up by it.
type Cause string

const (
	CauseUnknown      Cause = "unknown"
	CauseHit          Cause = "hit"
	CauseBlaster      Cause = "blaster"
	CauseMachinegun   Cause = "machinegun"
	CauseShotgun      Cause = "shotgun"
	CauseRocket       Cause = "rocket"
	CauseRocketSplash Cause = "rocket_splash"
	CauseExplosive    Cause = "explosive"
	CauseFalling      Cause = "falling"
	CauseCrush        Cause = "crush"
	CauseTelefrag     Cause = "telefrag"
	CauseSuicide      Cause = "suicide"
	CauseTriggerHurt  Cause = "trigger_hurt"
)

// SelfPlaceholder in a self-kill message stands for the victim's reflexive
// pronoun. Messages are plain text, never format strings.
const SelfPlaceholder = "{self}"

// CauseInfo is the obituary data for one means of death. Messages follow the
// victim name; Kill and KillSuffix surround the attacker name.
type CauseInfo struct {
	Environment string // death without a player attacker, e.g. "cratered"
	Self        string // self-kill, e.g. "blew {self} up"
	Kill        string // e.g. "was blasted by"
	KillSuffix  string // appended after the attacker's name
}

// ArmorSpec holds the absorption coefficients of an armor kind.
type ArmorSpec struct {
	Normal float64
	Energy float64
	Max    int
}
