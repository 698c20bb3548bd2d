package game

// MonsterMove is what the foe does on its turn.
type MonsterMove string

const (
	MoveAttack    MonsterMove = "attack"
	MoveDefend    MonsterMove = "defend"
	MoveHeal      MonsterMove = "heal"
	MoveElemental MonsterMove = "elemental"
)

const (
	healAmount       = 10
	healCost         = 5
	healChance       = 0.7
	elementalDamage  = 12
	elementalCost    = 3
	monsterHitSpread = 8
)

// aiRule is one row of the monster decision table. The first rule whose
// condition holds picks the move.
type aiRule struct {
	name   string
	when   func(c *Combat) bool
	decide func(c *Combat) MonsterMove
}

var monsterPolicy = []aiRule{
	{
		name: "threatened",
		when: threatened,
		decide: func(c *Combat) MonsterMove {
			if c.Monster.Mana >= healCost && c.rng.Float64() < healChance {
				return MoveHeal
			}
			return MoveDefend
		},
	},
	{
		name: "elemental",
		when: func(c *Combat) bool {
			return c.Foe.AI.ElementalPreference && c.Monster.Mana >= elementalCost
		},
		decide: func(*Combat) MonsterMove { return MoveElemental },
	},
	{
		name:   "default",
		when:   func(*Combat) bool { return true },
		decide: func(*Combat) MonsterMove { return MoveAttack },
	},
}

// threatened compares remaining health as a percentage against the
// profile's threshold.
func threatened(c *Combat) bool {
	if c.Monster.MaxHealth <= 0 {
		return false
	}
	return c.Monster.Health*100 <= c.Foe.AI.ThreatThreshold*c.Monster.MaxHealth
}

func decideMonsterMove(c *Combat) MonsterMove {
	for _, r := range monsterPolicy {
		if r.when(c) {
			return r.decide(c)
		}
	}
	return MoveAttack
}

func (c *Combat) monsterTurn() {
	name := c.Foe.Name
	switch decideMonsterMove(c) {
	case MoveHeal:
		c.Monster.Mana -= healCost
		before := c.Monster.Health
		c.Monster.Health = min(c.Monster.MaxHealth, c.Monster.Health+healAmount)
		c.logf("%s heals for %d health!", name, c.Monster.Health-before)
	case MoveDefend:
		c.logf("%s takes a defensive stance.", name)
	case MoveElemental:
		c.Monster.Mana -= elementalCost
		c.Player.Health = max(0, c.Player.Health-elementalDamage)
		c.logf("%s unleashes a %s attack for %d damage!", name, c.Monster.Element, elementalDamage)
	default:
		dmg := max(0, c.rng.IntN(monsterHitSpread)+c.Foe.Stats.Attack)
		c.Player.Health = max(0, c.Player.Health-dmg)
		c.logf("%s attacks you for %d damage!", name, dmg)
	}
}
