package game

import "slices"

const (
	// StatPointsPerLevel is granted for every level that does not owe a
	// spell or skill pick.
	StatPointsPerLevel = 3
	spellSkillEvery    = 5
	classChoiceEvery   = 20
)

func fibonacci(n int) int {
	if n <= 0 {
		return 0
	}
	a, b := 0, 1
	for i := 1; i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// XPThreshold is the experience needed to leave level.
func XPThreshold(level int) int {
	return fibonacci(level) * 10
}

func CanLevelUp(p Player) bool {
	return p.XP >= XPThreshold(p.Level)
}

// XPToNext is how much experience the player still needs; zero when a
// level-up is already due.
func XPToNext(p Player) int {
	return max(0, XPThreshold(p.Level)-p.XP)
}

// LevelUp raises the level by one and heals one heart and one mana, capped at
// the recomputed maxima.
func LevelUp(p Player) Player {
	p.Level++
	p = withCapacity(p)
	p.Hearts = min(p.Hearts+1, p.MaxHearts)
	p.Mana = min(p.Mana+1, p.MaxMana)
	return p
}

// NeedsSpellSkillChoice reports whether the current level owes a spell or
// skill pick.
func NeedsSpellSkillChoice(p Player) bool {
	return p.Level > 0 && p.Level%spellSkillEvery == 0
}

// ApplyStatPoints adds each allocation to its stat. Non-positive entries are
// ignored. Capacities are recomputed and current pools clamped, never raised.
func ApplyStatPoints(p Player, alloc StatBlock) Player {
	for s, n := range alloc {
		if n <= 0 {
			continue
		}
		p.Stats.Set(s, p.Stats.Get(s)+n)
	}
	return withCapacity(p)
}

// CanUnlockClass applies the class gate: not already held, level reached and
// every required stat met. Required elements are not checked.
func CanUnlockClass(p Player, className string, req ClassRequirement) bool {
	if p.HasClass(className) {
		return false
	}
	if p.Level < req.RequiredLevel {
		return false
	}
	return p.Stats.Meets(req.RequiredStats)
}

// AddClass grants a new class and its base stats.
func AddClass(p Player, className string, def ClassDef) Player {
	p.Classes = append(slices.Clone(p.Classes), PlayerClass{
		Name:       className,
		Level:      1,
		UnlockedAt: p.Level,
		Tier:       def.Tier,
	})
	p.Stats = p.Stats.Plus(def.BaseStats)
	return withCapacity(p)
}

// MultiLevelPolicy decides what happens when one event covers several XP
// thresholds.
type MultiLevelPolicy string

const (
	// LevelOnce applies a single level-up per event; the next event
	// re-checks.
	LevelOnce MultiLevelPolicy = "once"
	// LevelFinal applies every crossed threshold and owes a spell or skill
	// pick only when the final level calls for one.
	LevelFinal MultiLevelPolicy = "final"
	// LevelEach applies every crossed threshold and owes one pick per
	// multiple of five crossed.
	LevelEach MultiLevelPolicy = "each"
)

// Valid reports whether the policy is one of the known values.
func (m MultiLevelPolicy) Valid() bool {
	switch m {
	case LevelOnce, LevelFinal, LevelEach:
		return true
	}
	return false
}

// maxLevelsPerEvent bounds the level-up loop.
const maxLevelsPerEvent = 100

// Advancement is what a batch of level-ups owes the player.
type Advancement struct {
	Levels     int `json:"levels"`
	StatPoints int `json:"statPoints"`
	Picks      int `json:"picks"`
}

// Advance applies the level-ups due under policy.
func Advance(p Player, policy MultiLevelPolicy) (Player, Advancement) {
	var adv Advancement
	for CanLevelUp(p) && adv.Levels < maxLevelsPerEvent {
		p = LevelUp(p)
		adv.Levels++
		if policy != LevelFinal && NeedsSpellSkillChoice(p) {
			adv.Picks++
		} else {
			adv.StatPoints += StatPointsPerLevel
		}
		if policy != LevelEach && policy != LevelFinal {
			break
		}
	}
	if policy == LevelFinal && adv.Levels > 0 && NeedsSpellSkillChoice(p) {
		adv.StatPoints -= StatPointsPerLevel
		adv.Picks = 1
	}
	return p, adv
}
