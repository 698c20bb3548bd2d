package game

import "slices"

// IsChoiceAvailable applies every requirement on a choice. A nil roll means
// the player has not rolled yet and the dice requirement is not checked;
// callers hide dice-gated choices until a roll exists.
func IsChoiceAvailable(ch Choice, p Player, roll *int) bool {
	if !p.Stats.Meets(ch.Require.Stats) {
		return false
	}
	if len(ch.ClassRequire) > 0 && !slices.ContainsFunc(ch.ClassRequire, p.HasClass) {
		return false
	}
	if len(ch.ElementRequire) > 0 && !slices.Contains(ch.ElementRequire, p.Element) {
		return false
	}
	for _, id := range ch.ItemRequirements {
		if !p.HasItem(id) {
			return false
		}
	}
	if ch.DiceRequirement > 0 && roll != nil && *roll < ch.DiceRequirement {
		return false
	}
	return true
}

// OpenChoice is a choice the player may currently pick, with its position in
// the node's choice list.
type OpenChoice struct {
	Index  int    `json:"index"`
	Choice Choice `json:"choice"`
}

// AvailableChoices filters a node's choices for the player. Dice-gated choices
// are withheld entirely until a roll is supplied; needsRoll reports whether
// any were withheld.
func AvailableChoices(n *Node, p Player, roll *int) (open []OpenChoice, needsRoll bool) {
	if n == nil || n.IsCombat() {
		return nil, false
	}
	for i, ch := range n.Choices {
		if ch.DiceRequirement > 0 && roll == nil {
			needsRoll = true
			continue
		}
		if IsChoiceAvailable(ch, p, roll) {
			open = append(open, OpenChoice{Index: i, Choice: ch})
		}
	}
	return open, needsRoll
}
