package game

import "slices"

// ApplyChoice applies a choice's effects and rewards and moves the player to
// its destination. It does not check the destination exists; the engine
// does that before calling it.
func ApplyChoice(p Player, ch Choice, items map[string]Item) Player {
	eff := ch.Effects
	p.XP += eff.XP
	p.Hearts = clamp(p.Hearts+eff.Hearts, 0, p.MaxHearts)
	p.Mana = clamp(p.Mana+eff.Mana, 0, p.MaxMana)
	if len(eff.Stats) > 0 {
		p.Stats = p.Stats.Plus(eff.Stats)
		if eff.Changes(StatVitality) || eff.Changes(StatMagic) {
			p = withCapacity(p)
		}
	}

	for _, id := range ch.ItemRewards {
		if it, ok := items[id]; ok {
			p = AddItem(p, it)
		}
	}
	p.UnlockedSpells = grant(p.UnlockedSpells, p.Spells, ch.SpellRewards)
	p.UnlockedSkills = grant(p.UnlockedSkills, p.Skills, ch.SkillRewards)

	p.CurrentNode = ch.Next
	return p
}

// grant appends ids to pool unless already pooled or learned.
func grant(pool, learned, ids []string) []string {
	if len(ids) == 0 {
		return pool
	}
	pool = slices.Clone(pool)
	for _, id := range ids {
		if !slices.Contains(pool, id) && !slices.Contains(learned, id) {
			pool = append(pool, id)
		}
	}
	return pool
}
