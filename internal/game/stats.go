package game

import (
	"errors"
	"fmt"
)

// Stat names one of the player's base attributes. The set is closed: content
// keys that do not map to a Stat are rejected when the catalog is decoded.
type Stat int

const (
	StatStrength Stat = iota + 1
	StatIntelligence
	StatVitality
	StatMagic
	StatDexterity
	StatAgility
	StatLuck
	StatCharm
	StatReputation
	StatGold
)

// AllStats lists every stat in display order.
var AllStats = []Stat{
	StatStrength, StatIntelligence, StatVitality, StatMagic, StatDexterity,
	StatAgility, StatLuck, StatCharm, StatReputation, StatGold,
}

var statNames = map[Stat]string{
	StatStrength:     "strength",
	StatIntelligence: "intelligence",
	StatVitality:     "vitality",
	StatMagic:        "magic",
	StatDexterity:    "dexterity",
	StatAgility:      "agility",
	StatLuck:         "luck",
	StatCharm:        "charm",
	StatReputation:   "reputation",
	StatGold:         "gold",
}

// ErrUnknownStat is returned when a name does not match any Stat.
var ErrUnknownStat = errors.New("unknown stat")

func (s Stat) String() string {
	if n, ok := statNames[s]; ok {
		return n
	}
	return fmt.Sprintf("stat(%d)", int(s))
}

// ParseStat maps a content key such as "strength" to its Stat.
func ParseStat(name string) (Stat, error) {
	for _, s := range AllStats {
		if statNames[s] == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStat, name)
}

func (s Stat) MarshalText() ([]byte, error) {
	n, ok := statNames[s]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStat, int(s))
	}
	return []byte(n), nil
}

func (s *Stat) UnmarshalText(b []byte) error {
	v, err := ParseStat(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// StatBlock is a sparse set of per-stat values: requirements, bonuses or deltas.
type StatBlock map[Stat]int

// Stats represents a character's base attributes.
type Stats struct {
	Strength     int `yaml:"strength" json:"strength"`
	Intelligence int `yaml:"intelligence" json:"intelligence"`
	Vitality     int `yaml:"vitality" json:"vitality"`
	Magic        int `yaml:"magic" json:"magic"`
	Dexterity    int `yaml:"dexterity" json:"dexterity"`
	Agility      int `yaml:"agility" json:"agility"`
	Luck         int `yaml:"luck" json:"luck"`
	Charm        int `yaml:"charm" json:"charm"`
	Reputation   int `yaml:"reputation" json:"reputation"`
	Gold         int `yaml:"gold" json:"gold"`
}

func (s *Stats) field(stat Stat) *int {
	switch stat {
	case StatStrength:
		return &s.Strength
	case StatIntelligence:
		return &s.Intelligence
	case StatVitality:
		return &s.Vitality
	case StatMagic:
		return &s.Magic
	case StatDexterity:
		return &s.Dexterity
	case StatAgility:
		return &s.Agility
	case StatLuck:
		return &s.Luck
	case StatCharm:
		return &s.Charm
	case StatReputation:
		return &s.Reputation
	case StatGold:
		return &s.Gold
	default:
		return nil
	}
}

// Get returns the value of a single stat, or 0 for an invalid Stat.
func (s Stats) Get(stat Stat) int {
	if f := s.field(stat); f != nil {
		return *f
	}
	return 0
}

// Set assigns a single stat.
func (s *Stats) Set(stat Stat, v int) {
	if f := s.field(stat); f != nil {
		*f = v
	}
}

// Plus returns s with every delta in b added. Values are not clamped.
func (s Stats) Plus(b StatBlock) Stats {
	for stat, d := range b {
		s.Set(stat, s.Get(stat)+d)
	}
	return s
}

// Meets reports whether every floor in req is satisfied.
func (s Stats) Meets(req StatBlock) bool {
	for stat, floor := range req {
		if s.Get(stat) < floor {
			return false
		}
	}
	return true
}

// Capacity holds the resource maxima derived from stats.
type Capacity struct {
	MaxHearts int `json:"maxHearts"`
	MaxMana   int `json:"maxMana"`
}

// DeriveCapacity computes maxHearts from vitality and maxMana from magic.
func DeriveCapacity(s Stats) Capacity {
	return Capacity{
		MaxHearts: max(1, s.Vitality*2),
		MaxMana:   max(1, s.Magic*3),
	}
}

// CombatStats are percentages and flat bonuses read by combat and the UI.
type CombatStats struct {
	PhysicalDamage  int `json:"physicalDamage"`
	MagicalDamage   int `json:"magicalDamage"`
	CritChance      int `json:"critChance"`
	EscapeChance    int `json:"escapeChance"`
	LuckBonus       int `json:"luckBonus"`
	SocialInfluence int `json:"socialInfluence"`
}

func DeriveCombatStats(s Stats) CombatStats {
	return CombatStats{
		PhysicalDamage:  floorDiv(s.Strength, 2) + 1,
		MagicalDamage:   floorDiv(s.Magic, 2) + 1,
		CritChance:      5 + max(0, s.Dexterity-10),
		EscapeChance:    25 + max(0, s.Agility-10),
		LuckBonus:       floorDiv(s.Luck, 2) + 1,
		SocialInfluence: floorDiv(s.Charm+s.Reputation, 2) + 1,
	}
}

// floorDiv rounds toward negative infinity; stats can go negative through
// unclamped effects.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
