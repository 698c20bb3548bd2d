package game

import (
	"errors"
	"fmt"
	"slices"
)

// Turn says whose move it is.
type Turn string

const (
	TurnPlayer  Turn = "player"
	TurnMonster Turn = "monster"
)

// Action is a player combat action.
type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionCast   Action = "spell"
	ActionEscape Action = "escape"
)

const playerAttackSpread = 10

var (
	ErrCombatOver    = errors.New("combat is over")
	ErrNotPlayerTurn = errors.New("not the player's turn")
	ErrNotEnoughMana = errors.New("not enough mana")
)

// Fighter is one side's resource snapshot.
type Fighter struct {
	Health    int     `json:"health"`
	MaxHealth int     `json:"maxHealth"`
	Mana      int     `json:"mana"`
	Element   Element `json:"element"`
}

// Combat is the state of one fight. It lives only while the fight does; the
// final health and mana are copied back into the Player.
type Combat struct {
	Player  Fighter  `json:"player"`
	Monster Fighter  `json:"monster"`
	Foe     Monster  `json:"foe"`
	Turn    Turn     `json:"turn"`
	Round   int      `json:"round"`
	Log     []string `json:"log"`
	Outcome Outcome  `json:"outcome,omitempty"`

	strength int
	magic    int
	rng      Rand
}

// NewCombat snapshots the player and foe. Strength and magic include
// equipment bonuses.
func NewCombat(p Player, foe Monster, rng Rand) *Combat {
	t := EffectiveStats(p)
	c := &Combat{
		Player: Fighter{
			Health:    p.Hearts,
			MaxHealth: p.MaxHearts,
			Mana:      p.Mana,
			Element:   p.Element,
		},
		Monster: Fighter{
			Health:    foe.Stats.Health,
			MaxHealth: foe.Stats.Health,
			Mana:      foe.Stats.Mana,
			Element:   foe.Element,
		},
		Foe:      foe,
		Turn:     TurnPlayer,
		Round:    1,
		strength: t.Stats.Strength,
		magic:    t.Stats.Magic,
		rng:      rng,
	}
	c.logf("Combat begins against %s!", foe.Name)
	return c
}

// Done reports whether the fight has an outcome.
func (c *Combat) Done() bool {
	return c.Outcome != ""
}

func (c *Combat) logf(format string, args ...any) {
	c.Log = append(c.Log, fmt.Sprintf(format, args...))
}

func (c *Combat) ready() error {
	if c.Done() {
		return ErrCombatOver
	}
	if c.Turn != TurnPlayer {
		return ErrNotPlayerTurn
	}
	return nil
}

// Attack strikes the foe for a random 0..9 plus strength.
func (c *Combat) Attack() error {
	if err := c.ready(); err != nil {
		return err
	}
	dmg := max(0, c.rng.IntN(playerAttackSpread)+c.strength)
	c.Monster.Health = max(0, c.Monster.Health-dmg)
	c.logf("You attack %s for %d damage!", c.Foe.Name, dmg)
	c.endPlayerTurn()
	return nil
}

// Defend declares a defensive stance. It has no numeric effect.
func (c *Combat) Defend() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.logf("You take a defensive stance.")
	c.endPlayerTurn()
	return nil
}

// Cast spends the spell's mana and resolves it by type.
func (c *Combat) Cast(sp Spell) error {
	if err := c.ready(); err != nil {
		return err
	}
	if c.Player.Mana < sp.ManaCost {
		return fmt.Errorf("%w: %s costs %d", ErrNotEnoughMana, sp.Name, sp.ManaCost)
	}
	c.Player.Mana -= sp.ManaCost
	switch sp.Type {
	case SpellAttack:
		dmg := max(0, sp.Power+floorDiv(c.magic, 2))
		c.Monster.Health = max(0, c.Monster.Health-dmg)
		c.logf("You cast %s for %d damage!", sp.Name, dmg)
	case SpellHeal:
		before := c.Player.Health
		c.Player.Health = min(c.Player.MaxHealth, c.Player.Health+sp.Power)
		c.logf("You cast %s and heal %d hearts!", sp.Name, c.Player.Health-before)
	default:
		c.logf("You cast %s and a protective barrier surrounds you.", sp.Name)
	}
	c.endPlayerTurn()
	return nil
}

// Escape ends the fight at once.
func (c *Combat) Escape() error {
	if err := c.ready(); err != nil {
		return err
	}
	c.Outcome = OutcomeEscape
	c.logf("You escape from %s!", c.Foe.Name)
	return nil
}

func (c *Combat) endPlayerTurn() {
	if c.Monster.Health <= 0 {
		c.Outcome = OutcomeWin
		c.logf("%s is defeated!", c.Foe.Name)
		return
	}
	c.Turn = TurnMonster
	c.monsterTurn()
	if c.Player.Health <= 0 {
		c.Outcome = OutcomeLose
		c.logf("You have been defeated by %s.", c.Foe.Name)
		return
	}
	c.Turn = TurnPlayer
	c.Round++
}

// CombatResult is what a finished fight reports to the traversal.
type CombatResult struct {
	Outcome Outcome `json:"outcome"`
	Hearts  int     `json:"hearts"`
	Mana    int     `json:"mana"`
}

// Result returns the terminal report once the fight is over.
func (c *Combat) Result() (CombatResult, bool) {
	if !c.Done() {
		return CombatResult{}, false
	}
	return CombatResult{Outcome: c.Outcome, Hearts: c.Player.Health, Mana: c.Player.Mana}, true
}

// ApplyCombatResult copies the final resources back into the player and
// charges one reputation for escaping.
func ApplyCombatResult(p Player, r CombatResult) Player {
	p.Hearts = clamp(r.Hearts, 0, p.MaxHearts)
	p.Mana = clamp(r.Mana, 0, p.MaxMana)
	if r.Outcome == OutcomeEscape {
		p.Stats.Reputation = max(0, p.Stats.Reputation-1)
	}
	return p
}

// VictoryXP is the flat experience for winning a fight.
const VictoryXP = 50

// ApplyVictoryRewards grants experience, the first matching class reward,
// loot rolls and spell unlocks. It returns a line per reward for display.
func ApplyVictoryRewards(p Player, foe Monster, items map[string]Item, rng Rand) (Player, []string) {
	notes := []string{fmt.Sprintf("You gain %d XP.", VictoryXP)}
	p.XP += VictoryXP

	for _, r := range foe.ClassRewards {
		if r.ClassName != allClasses && !p.HasClass(r.ClassName) {
			continue
		}
		p.XP += r.BonusXP
		p.Stats.Reputation += r.BonusReputation
		notes = append(notes, fmt.Sprintf("Class bonus: %d XP.", r.BonusXP))
		break
	}

	for _, d := range foe.DropTable.Items {
		if rng.Float64() >= d.Chance {
			continue
		}
		it, ok := items[d.ItemID]
		if !ok {
			continue
		}
		n := max(1, d.Quantity)
		for range n {
			p = AddItem(p, it)
		}
		notes = append(notes, fmt.Sprintf("Found %s x%d.", it.Name, n))
	}
	for _, d := range foe.DropTable.Equipment {
		if rng.Float64() >= d.Chance {
			continue
		}
		if it, ok := items[d.ItemID]; ok {
			p = AddItem(p, it)
			notes = append(notes, fmt.Sprintf("Found %s.", it.Name))
		}
	}

	for _, id := range foe.SpellUnlocks {
		if slices.Contains(p.Spells, id) || slices.Contains(p.UnlockedSpells, id) {
			continue
		}
		p.UnlockedSpells = append(slices.Clone(p.UnlockedSpells), id)
		notes = append(notes, fmt.Sprintf("New spell available: %s.", id))
	}
	return p, notes
}
