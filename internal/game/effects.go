package game

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Resource keys that may appear next to stat names in an effects map.
const (
	keyXP        = "xp"
	keyHearts    = "hearts"
	keyMana      = "mana"
	keyMaxHearts = "maxHearts"
)

// Effects is a set of deltas applied by a choice, a consumable or an equipped
// item. Stat deltas are unclamped; hearts and mana are clamped by the caller.
type Effects struct {
	Stats     StatBlock
	XP        int
	Hearts    int
	Mana      int
	MaxHearts int
}

// Changes reports whether the effects carry a non-zero delta for stat.
func (e Effects) Changes(stat Stat) bool {
	return e.Stats[stat] != 0
}

func (e Effects) toMap() map[string]int {
	m := make(map[string]int, len(e.Stats)+4)
	for s, d := range e.Stats {
		m[s.String()] = d
	}
	if e.XP != 0 {
		m[keyXP] = e.XP
	}
	if e.Hearts != 0 {
		m[keyHearts] = e.Hearts
	}
	if e.Mana != 0 {
		m[keyMana] = e.Mana
	}
	if e.MaxHearts != 0 {
		m[keyMaxHearts] = e.MaxHearts
	}
	return m
}

func effectsFromMap(m map[string]int) (Effects, error) {
	var e Effects
	for k, v := range m {
		switch k {
		case keyXP:
			e.XP = v
		case keyHearts:
			e.Hearts = v
		case keyMana:
			e.Mana = v
		case keyMaxHearts:
			e.MaxHearts = v
		default:
			s, err := ParseStat(k)
			if err != nil {
				return Effects{}, fmt.Errorf("effects: %w", err)
			}
			if e.Stats == nil {
				e.Stats = StatBlock{}
			}
			e.Stats[s] = v
		}
	}
	return e, nil
}

func (e *Effects) UnmarshalYAML(n *yaml.Node) error {
	var m map[string]int
	if err := n.Decode(&m); err != nil {
		return err
	}
	v, err := effectsFromMap(m)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

func (e Effects) MarshalYAML() (any, error) {
	return e.toMap(), nil
}

func (e Effects) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toMap())
}

func (e *Effects) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	v, err := effectsFromMap(m)
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Outcome is the terminal result of a combat.
type Outcome string

const (
	OutcomeWin    Outcome = "win"
	OutcomeLose   Outcome = "lose"
	OutcomeEscape Outcome = "escape"
)

// Outcomes lists every combat outcome a combat node should branch on.
var Outcomes = []Outcome{OutcomeWin, OutcomeLose, OutcomeEscape}

var ErrUnknownOutcome = errors.New("unknown battle outcome")

func ParseOutcome(s string) (Outcome, error) {
	switch o := Outcome(s); o {
	case OutcomeWin, OutcomeLose, OutcomeEscape:
		return o, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
}

// ChoiceRequire holds the stat floors of a choice plus the optional battle
// outcome tag used on combat nodes. Content writes both in one flat map.
type ChoiceRequire struct {
	Stats        StatBlock
	BattleResult Outcome
}

const keyBattleResult = "battleResult"

func (r *ChoiceRequire) UnmarshalYAML(n *yaml.Node) error {
	var raw map[string]any
	if err := n.Decode(&raw); err != nil {
		return err
	}
	var out ChoiceRequire
	for k, v := range raw {
		if k == keyBattleResult {
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("require %s: expected string, got %T", k, v)
			}
			o, err := ParseOutcome(s)
			if err != nil {
				return err
			}
			out.BattleResult = o
			continue
		}
		stat, err := ParseStat(k)
		if err != nil {
			return fmt.Errorf("require: %w", err)
		}
		iv, ok := v.(int)
		if !ok {
			return fmt.Errorf("require %s: expected integer, got %T", k, v)
		}
		if out.Stats == nil {
			out.Stats = StatBlock{}
		}
		out.Stats[stat] = iv
	}
	*r = out
	return nil
}

func (r ChoiceRequire) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(r.Stats)+1)
	for s, v := range r.Stats {
		m[s.String()] = v
	}
	if r.BattleResult != "" {
		m[keyBattleResult] = r.BattleResult
	}
	return json.Marshal(m)
}

func (r *ChoiceRequire) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out ChoiceRequire
	for k, v := range raw {
		if k == keyBattleResult {
			var s string
			if err := json.Unmarshal(v, &s); err != nil {
				return err
			}
			o, err := ParseOutcome(s)
			if err != nil {
				return err
			}
			out.BattleResult = o
			continue
		}
		stat, err := ParseStat(k)
		if err != nil {
			return fmt.Errorf("require: %w", err)
		}
		var iv int
		if err := json.Unmarshal(v, &iv); err != nil {
			return fmt.Errorf("require %s: %w", k, err)
		}
		if out.Stats == nil {
			out.Stats = StatBlock{}
		}
		out.Stats[stat] = iv
	}
	*r = out
	return nil
}

// Element is an elemental affinity.
type Element string

const (
	ElementLight   Element = "Light"
	ElementDark    Element = "Dark"
	ElementFire    Element = "Fire"
	ElementWater   Element = "Water"
	ElementEarth   Element = "Earth"
	ElementAir     Element = "Air"
	ElementNeutral Element = "Neutral"
)

var elements = map[Element]bool{
	ElementLight: true, ElementDark: true, ElementFire: true,
	ElementWater: true, ElementEarth: true, ElementAir: true, ElementNeutral: true,
}

// Valid reports whether e is one of the known elements.
func (e Element) Valid() bool {
	return elements[e]
}
