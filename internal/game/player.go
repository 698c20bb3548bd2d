package game

import (
	"errors"
	"fmt"
	"slices"
)

// Gender drives pronoun placeholders in node text.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// PlayerClass is one class the character holds.
type PlayerClass struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	UnlockedAt int    `json:"unlockedAt"`
	Tier       int    `json:"tier"`
}

// Player is the whole character. Engine functions take and return it by
// value; slices are cloned before they are modified.
type Player struct {
	ID             string        `json:"id,omitempty"`
	Name           string        `json:"name"`
	Gender         Gender        `json:"gender"`
	Race           string        `json:"race"`
	Classes        []PlayerClass `json:"classes"`
	ActiveClass    string        `json:"activeClass"`
	Stats          Stats         `json:"stats"`
	Level          int           `json:"level"`
	XP             int           `json:"xp"`
	Hearts         int           `json:"hearts"`
	MaxHearts      int           `json:"maxHearts"`
	Mana           int           `json:"mana"`
	MaxMana        int           `json:"maxMana"`
	Inventory      []Item        `json:"inventory"`
	Equipment      Equipment     `json:"equipment"`
	Spells         []string      `json:"spells"`
	Skills         []string      `json:"skills"`
	UnlockedSpells []string      `json:"unlockedSpells"`
	UnlockedSkills []string      `json:"unlockedSkills"`
	CurrentNode    string        `json:"currentNode"`
	Element        Element       `json:"element"`
}

// HasClass reports whether the player holds the named class.
func (p Player) HasClass(name string) bool {
	return slices.ContainsFunc(p.Classes, func(c PlayerClass) bool { return c.Name == name })
}

// HasItem reports whether an inventory entry with the given id exists.
func (p Player) HasItem(id string) bool {
	return slices.ContainsFunc(p.Inventory, byID(id))
}

// FindItem returns the first inventory entry with the given id.
func (p Player) FindItem(id string) (Item, bool) {
	if i := slices.IndexFunc(p.Inventory, byID(id)); i >= 0 {
		return p.Inventory[i], true
	}
	return Item{}, false
}

func byID(id string) func(Item) bool {
	return func(it Item) bool { return it.ID == id }
}

// withCapacity recomputes the maxima from base stats and clamps the current
// pools to them.
func withCapacity(p Player) Player {
	c := DeriveCapacity(p.Stats)
	p.MaxHearts = c.MaxHearts
	p.MaxMana = c.MaxMana
	p.Hearts = min(p.Hearts, p.MaxHearts)
	p.Mana = min(p.Mana, p.MaxMana)
	return p
}

var (
	ErrUnknownRace  = errors.New("unknown race")
	ErrUnknownClass = errors.New("unknown class")
)

const (
	startNode   = "intro"
	startGold   = 20
	baseStatVal = 1
)

// NewPlayer creates a level 1 character of the given race and starting class.
func NewPlayer(c *Catalog, name string, gender Gender, race, class string) (Player, error) {
	bonus, ok := c.Races[race]
	if !ok {
		return Player{}, fmt.Errorf("%w: %s", ErrUnknownRace, race)
	}
	def, ok := c.Classes[class]
	if !ok {
		return Player{}, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}

	var st Stats
	for _, s := range AllStats {
		st.Set(s, baseStatVal)
	}
	st.Gold = startGold
	st = st.Plus(bonus).Plus(def.BaseStats)
	if def.Tier == 0 {
		st.Reputation += def.Reputation
		st.Gold += def.Gold
	}

	elem := ElementNeutral
	if len(def.ElementalRequirements) > 0 {
		elem = def.ElementalRequirements[0]
	}
	if gender == "" {
		gender = GenderOther
	}

	capy := DeriveCapacity(st)
	p := Player{
		Name:        name,
		Gender:      gender,
		Race:        race,
		Classes:     []PlayerClass{{Name: class, Level: 1, UnlockedAt: 1, Tier: def.Tier}},
		ActiveClass: class,
		Stats:       st,
		Level:       1,
		Hearts:      capy.MaxHearts,
		MaxHearts:   capy.MaxHearts,
		Mana:        capy.MaxMana,
		MaxMana:     capy.MaxMana,
		CurrentNode: startNode,
		Element:     elem,
	}
	if req, ok := c.ClassRequirements[class]; ok {
		for _, id := range req.InitialEquipment {
			if it, ok := c.Items[id]; ok {
				p = AddItem(p, it)
			}
		}
	}
	return p, nil
}
