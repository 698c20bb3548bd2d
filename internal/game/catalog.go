package game

import (
	"maps"
	"slices"
)

// Catalog is the read-only content an engine runs against. It is built once
// and shared by every session.
type Catalog struct {
	Classes           map[string]ClassDef         `yaml:"classes"`
	ClassRequirements map[string]ClassRequirement `yaml:"classRequirements"`
	Races             map[string]StatBlock        `yaml:"races"`
	Items             map[string]Item             `yaml:"items"`
	Shops             map[string]Shop             `yaml:"shops"`
	Spells            map[string]Spell            `yaml:"spells"`
	Skills            map[string]Skill            `yaml:"skills"`
	Monsters          map[string]Monster          `yaml:"monsters"`
	Villains          map[string]Villain          `yaml:"villains"`
	Stories           map[string]*Story           `yaml:"-"`
}

// ClassDef describes a class a player can hold.
type ClassDef struct {
	ID                    string    `yaml:"id" json:"id"`
	Name                  string    `yaml:"name" json:"name"`
	Tier                  int       `yaml:"tier" json:"tier"`
	BaseStats             StatBlock `yaml:"baseStats" json:"baseStats,omitempty"`
	ElementalRequirements []Element `yaml:"elementalRequirements" json:"elementalRequirements,omitempty"`
	Reputation            int       `yaml:"reputation" json:"reputation"`
	Gold                  int       `yaml:"gold" json:"gold"`
	Description           string    `yaml:"description" json:"description,omitempty"`
	MaxLevel              int       `yaml:"maxLevel" json:"maxLevel"`
	CanChangeTo           []string  `yaml:"canChangeTo" json:"canChangeTo,omitempty"`
}

// ClassRequirement gates unlocking a class.
type ClassRequirement struct {
	RequiredStats    StatBlock `yaml:"requiredStats" json:"requiredStats,omitempty"`
	RequiredLevel    int       `yaml:"requiredLevel" json:"requiredLevel"`
	RequiredElements []Element `yaml:"requiredElements" json:"requiredElements,omitempty"`
	Description      string    `yaml:"description" json:"description,omitempty"`
	InitialEquipment []string  `yaml:"initialEquipment" json:"initialEquipment,omitempty"`
}

type ShopItem struct {
	ItemID   string `yaml:"itemId" json:"itemId"`
	Category string `yaml:"category" json:"category"`
	// Stock is the number of units for sale; nil means unlimited.
	Stock *int `yaml:"stock" json:"stock,omitempty"`
}

type Shop struct {
	ID             string     `yaml:"id" json:"id"`
	Name           string     `yaml:"name" json:"name"`
	Categories     []string   `yaml:"categories" json:"categories"`
	Items          []ShopItem `yaml:"items" json:"items"`
	BuyMultiplier  float64    `yaml:"buyMultiplier" json:"buyMultiplier"`
	SellMultiplier float64    `yaml:"sellMultiplier" json:"sellMultiplier"`
}

// SpellType decides how a spell resolves in combat.
type SpellType string

const (
	SpellAttack SpellType = "Attack"
	SpellDefend SpellType = "Defend"
	SpellHeal   SpellType = "Heal"
)

// Requirements gate learning a spell or skill.
type Requirements struct {
	Level   int       `yaml:"level" json:"level"`
	Stats   StatBlock `yaml:"stats" json:"stats,omitempty"`
	Classes []string  `yaml:"classes" json:"classes,omitempty"`
}

func (r Requirements) metBy(p Player) bool {
	if p.Level < r.Level || !p.Stats.Meets(r.Stats) {
		return false
	}
	return len(r.Classes) == 0 || slices.ContainsFunc(r.Classes, p.HasClass)
}

type Spell struct {
	ID           string       `yaml:"id" json:"id"`
	Name         string       `yaml:"name" json:"name"`
	Type         SpellType    `yaml:"type" json:"type"`
	Description  string       `yaml:"description" json:"description,omitempty"`
	ManaCost     int          `yaml:"manaCost" json:"manaCost"`
	Power        int          `yaml:"power" json:"power"`
	Element      Element      `yaml:"element" json:"element,omitempty"`
	Requirements Requirements `yaml:"requirements" json:"requirements"`
}

type Skill struct {
	ID           string       `yaml:"id" json:"id"`
	Name         string       `yaml:"name" json:"name"`
	Description  string       `yaml:"description" json:"description,omitempty"`
	Type         string       `yaml:"type" json:"type"`
	Effects      Effects      `yaml:"effects" json:"effects"`
	Requirements Requirements `yaml:"requirements" json:"requirements"`
}

type MonsterStats struct {
	Health  int `yaml:"health" json:"health"`
	Attack  int `yaml:"attack" json:"attack"`
	Defense int `yaml:"defense" json:"defense"`
	Mana    int `yaml:"mana" json:"mana"`
}

// AIProfile tunes the monster decision table. ThreatThreshold is a
// percentage of maximum health. ResourceThreshold is carried in content but
// not consulted.
type AIProfile struct {
	ThreatThreshold     int  `yaml:"threatThreshold" json:"threatThreshold"`
	ElementalPreference bool `yaml:"elementalPreference" json:"elementalPreference"`
	ResourceThreshold   int  `yaml:"resourceThreshold" json:"resourceThreshold"`
}

// Drop is one loot table entry, rolled independently.
type Drop struct {
	ItemID   string  `yaml:"itemId" json:"itemId"`
	Chance   float64 `yaml:"chance" json:"chance"`
	Quantity int     `yaml:"quantity" json:"quantity,omitempty"`
}

type DropTable struct {
	Items     []Drop `yaml:"items" json:"items,omitempty"`
	Equipment []Drop `yaml:"equipment" json:"equipment,omitempty"`
}

// ClassReward is bonus experience granted on victory to holders of a class,
// or to everyone when ClassName is "all".
type ClassReward struct {
	ClassName       string `yaml:"className" json:"className"`
	BonusXP         int    `yaml:"bonusXP" json:"bonusXP"`
	BonusReputation int    `yaml:"bonusReputation" json:"bonusReputation,omitempty"`
}

type Monster struct {
	ID           string        `yaml:"id" json:"id"`
	Name         string        `yaml:"name" json:"name"`
	Description  string        `yaml:"description" json:"description,omitempty"`
	Stats        MonsterStats  `yaml:"stats" json:"stats"`
	Element      Element       `yaml:"element" json:"element"`
	Spells       []string      `yaml:"spells" json:"spells,omitempty"`
	AI           AIProfile     `yaml:"ai" json:"ai"`
	DropTable    DropTable     `yaml:"dropTable" json:"dropTable"`
	ClassRewards []ClassReward `yaml:"classRewards" json:"classRewards,omitempty"`
	SpellUnlocks []string      `yaml:"spellUnlocks" json:"spellUnlocks,omitempty"`
}

// Villain is a monster with a story. Weaknesses and immunities are shown to
// the player but do not change combat numbers.
type Villain struct {
	Monster    `yaml:",inline"`
	Backstory  string    `yaml:"backstory" json:"backstory,omitempty"`
	Weaknesses []Element `yaml:"weaknesses" json:"weaknesses,omitempty"`
	Immunities []Element `yaml:"immunities" json:"immunities,omitempty"`
}

const allClasses = "all"

// Foe resolves a monster id, falling back to villains.
func (c *Catalog) Foe(id string) (*Monster, bool) {
	if m, ok := c.Monsters[id]; ok {
		return &m, true
	}
	if v, ok := c.Villains[id]; ok {
		m := v.Monster
		return &m, true
	}
	return nil, false
}

// Story returns the story with the given id.
func (c *Catalog) Story(id string) (*Story, bool) {
	s, ok := c.Stories[id]
	return s, ok && s != nil
}

// StoryIDs returns every story id in sorted order.
func (c *Catalog) StoryIDs() []string {
	return slices.Sorted(maps.Keys(c.Stories))
}

// CanUnlockClass looks up the class requirement and applies the unlock gate.
// Classes without a requirement entry cannot be unlocked.
func (c *Catalog) CanUnlockClass(p Player, className string) bool {
	req, ok := c.ClassRequirements[className]
	if !ok {
		return false
	}
	if _, ok := c.Classes[className]; !ok {
		return false
	}
	return CanUnlockClass(p, className, req)
}

// UnlockableClasses lists, in sorted order, every class the player could pick
// right now.
func (c *Catalog) UnlockableClasses(p Player) []string {
	var out []string
	for _, name := range slices.Sorted(maps.Keys(c.Classes)) {
		if c.CanUnlockClass(p, name) {
			out = append(out, name)
		}
	}
	return out
}

// EligibleSpells lists catalog spells the player meets the requirements for
// and has neither learned nor been granted.
func (c *Catalog) EligibleSpells(p Player) []Spell {
	var out []Spell
	for _, id := range slices.Sorted(maps.Keys(c.Spells)) {
		sp := c.Spells[id]
		if slices.Contains(p.Spells, id) || slices.Contains(p.UnlockedSpells, id) {
			continue
		}
		if sp.Requirements.metBy(p) {
			out = append(out, sp)
		}
	}
	return out
}

func (c *Catalog) EligibleSkills(p Player) []Skill {
	var out []Skill
	for _, id := range slices.Sorted(maps.Keys(c.Skills)) {
		sk := c.Skills[id]
		if slices.Contains(p.Skills, id) || slices.Contains(p.UnlockedSkills, id) {
			continue
		}
		if sk.Requirements.metBy(p) {
			out = append(out, sk)
		}
	}
	return out
}

// PickKind selects between the spell and skill lists.
type PickKind string

const (
	PickSpell PickKind = "spell"
	PickSkill PickKind = "skill"
)

// Learnable reports whether the player may learn id now: either it waits in
// the player's unlocked pool or it is eligible from the catalog.
func (c *Catalog) Learnable(p Player, kind PickKind, id string) bool {
	switch kind {
	case PickSpell:
		if _, ok := c.Spells[id]; !ok || slices.Contains(p.Spells, id) {
			return false
		}
		return slices.Contains(p.UnlockedSpells, id) || c.Spells[id].Requirements.metBy(p)
	case PickSkill:
		if _, ok := c.Skills[id]; !ok || slices.Contains(p.Skills, id) {
			return false
		}
		return slices.Contains(p.UnlockedSkills, id) || c.Skills[id].Requirements.metBy(p)
	}
	return false
}

// HasLearnable reports whether any spell or skill can be learned.
func (c *Catalog) HasLearnable(p Player) bool {
	return len(p.UnlockedSpells) > 0 || len(p.UnlockedSkills) > 0 ||
		len(c.EligibleSpells(p)) > 0 || len(c.EligibleSkills(p)) > 0
}

// Learn moves id into the learned list and out of the unlocked pool.
func Learn(p Player, kind PickKind, id string) Player {
	drop := func(s string) bool { return s == id }
	switch kind {
	case PickSpell:
		p.Spells = append(slices.Clone(p.Spells), id)
		p.UnlockedSpells = slices.DeleteFunc(slices.Clone(p.UnlockedSpells), drop)
	case PickSkill:
		p.Skills = append(slices.Clone(p.Skills), id)
		p.UnlockedSkills = slices.DeleteFunc(slices.Clone(p.UnlockedSkills), drop)
	}
	return p
}
