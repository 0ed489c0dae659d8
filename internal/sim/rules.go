package sim

import "github.com/fragd/server/internal/world"

// Skill levels.
const (
	SkillEasy = iota
	SkillMedium
	SkillHard
	SkillNightmare
)

// Rules are the game-mode settings read by the combat pipeline.
type Rules struct {
	Skill          int
	Deathmatch     bool
	Coop           bool
	TeamPlay       bool
	NoFriendlyFire bool
	// ProtectDebounce limits Protected feedback on invulnerable targets.
	ProtectDebounce world.Tick
	// PainDebounce is the minimum gap between pain reactions.
	PainDebounce world.Tick
}

// Features gate optional content at registration time.
type Features struct {
	SinglePlayerAI bool
	Flyer          bool
	Medic          bool
	Scripting      bool
}

// Level holds the per-level counters.
type Level struct {
	KilledMonsters int
	TotalMonsters  int
}

// ArmorTable resolves armor absorption coefficients.
type ArmorTable interface {
	Armor(kind world.ArmorKind) (world.ArmorSpec, bool)
}

// CauseTable resolves obituary data for a means of death.
type CauseTable interface {
	Cause(c world.Cause) (world.CauseInfo, bool)
}

// DefaultArmor is used when no armor table is loaded.
type DefaultArmor struct{}

func (DefaultArmor) Armor(kind world.ArmorKind) (world.ArmorSpec, bool) {
	switch kind {
	case world.ArmorJacket:
		return world.ArmorSpec{Normal: 0.3, Energy: 0.0, Max: 50}, true
	case world.ArmorCombat:
		return world.ArmorSpec{Normal: 0.6, Energy: 0.3, Max: 100}, true
	case world.ArmorBody:
		return world.ArmorSpec{Normal: 0.8, Energy: 0.6, Max: 200}, true
	}
	return world.ArmorSpec{}, false
}

// NoCauses knows no means of death; every obituary uses the fallback text.
type NoCauses struct{}

func (NoCauses) Cause(world.Cause) (world.CauseInfo, bool) { return world.CauseInfo{}, false }
