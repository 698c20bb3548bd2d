package game

import "testing"

// scriptedRand replays fixed draws. When a script runs out IntN returns 0
// and Float64 returns 0.99, so drops and monster heals do not fire.
type scriptedRand struct {
	ints   []int
	floats []float64
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func intp(v int) *int { return &v }

func testCatalog() *Catalog {
	return &Catalog{
		Races: map[string]StatBlock{
			"human": {StatStrength: 1, StatCharm: 1},
			"elf":   {StatMagic: 2},
		},
		Classes: map[string]ClassDef{
			"warrior": {ID: "warrior", Name: "Warrior", Tier: 0, BaseStats: StatBlock{StatStrength: 3, StatVitality: 2}, Reputation: 1, Gold: 10},
			"mage":    {ID: "mage", Name: "Mage", Tier: 0, BaseStats: StatBlock{StatMagic: 3}, ElementalRequirements: []Element{ElementFire}},
			"knight":  {ID: "knight", Name: "Knight", Tier: 1, BaseStats: StatBlock{StatStrength: 2, StatVitality: 1}},
		},
		ClassRequirements: map[string]ClassRequirement{
			"warrior": {InitialEquipment: []string{"rusty_sword"}},
			"knight":  {RequiredLevel: 20, RequiredStats: StatBlock{StatStrength: 5}},
		},
		Items: map[string]Item{
			"rusty_sword": {ID: "rusty_sword", Name: "Rusty Sword", Type: ItemWeapon, SubType: SubMainWeapon, Value: 10, Effects: Effects{Stats: StatBlock{StatStrength: 2}}},
			"iron_ring":   {ID: "iron_ring", Name: "Iron Ring", Type: ItemAccessory, SubType: SubRing, Value: 8, Effects: Effects{Stats: StatBlock{StatLuck: 1}}},
			"gold_ring":   {ID: "gold_ring", Name: "Gold Ring", Type: ItemAccessory, SubType: SubRing, Value: 30},
			"jade_ring":   {ID: "jade_ring", Name: "Jade Ring", Type: ItemAccessory, SubType: SubRing, Value: 20},
			"heavy_axe":   {ID: "heavy_axe", Name: "Heavy Axe", Type: ItemWeapon, SubType: SubMainWeapon, Value: 40, Requirements: StatBlock{StatStrength: 10}},
			"leather_cap": {ID: "leather_cap", Name: "Leather Cap", Type: ItemArmor, SubType: SubHead, Value: 5, Effects: Effects{MaxHearts: 2}},
			"potion":      {ID: "potion", Name: "Healing Potion", Type: ItemConsumable, SubType: SubPotion, Value: 10, Stackable: true, Quantity: 1, Effects: Effects{Hearts: 5}},
			"strength_tonic": {ID: "strength_tonic", Name: "Strength Tonic", Type: ItemConsumable, Value: 25,
				Effects: Effects{Stats: StatBlock{StatStrength: 1, StatVitality: 1}}},
			"gold_coin": {ID: "gold_coin", Name: "Gold Coin", Type: ItemQuest, Stackable: true, Quantity: 1},
			"old_map":   {ID: "old_map", Name: "Old Map", Type: ItemQuest},
		},
		Shops: map[string]Shop{
			"market": {
				ID:   "market",
				Name: "Village Market",
				Items: []ShopItem{
					{ItemID: "potion", Category: "potions", Stock: intp(2)},
					{ItemID: "rusty_sword", Category: "weapons"},
				},
				BuyMultiplier:  1.5,
				SellMultiplier: 1.0,
			},
		},
		Spells: map[string]Spell{
			"fireball": {ID: "fireball", Name: "Fireball", Type: SpellAttack, ManaCost: 3, Power: 8, Element: ElementFire, Requirements: Requirements{Level: 1}},
			"mend":     {ID: "mend", Name: "Mend", Type: SpellHeal, ManaCost: 2, Power: 5, Requirements: Requirements{Level: 1}},
			"ward":     {ID: "ward", Name: "Ward", Type: SpellDefend, ManaCost: 1, Requirements: Requirements{Level: 5, Classes: []string{"mage"}}},
		},
		Skills: map[string]Skill{
			"parry": {ID: "parry", Name: "Parry", Type: "passive", Requirements: Requirements{Level: 5, Stats: StatBlock{StatStrength: 3}}},
		},
		Monsters: map[string]Monster{
			"goblin": {
				ID: "goblin", Name: "Goblin", Element: ElementEarth,
				Stats: MonsterStats{Health: 20, Attack: 1, Mana: 0},
				DropTable: DropTable{
					Items:     []Drop{{ItemID: "gold_coin", Chance: 0.5, Quantity: 3}},
					Equipment: []Drop{{ItemID: "iron_ring", Chance: 0.1}},
				},
				ClassRewards: []ClassReward{{ClassName: "mage", BonusXP: 5}, {ClassName: "all", BonusXP: 10, BonusReputation: 1}},
				SpellUnlocks: []string{"fireball"},
			},
		},
		Villains: map[string]Villain{
			"witch": {
				Monster: Monster{
					ID: "witch", Name: "Swamp Witch", Element: ElementWater,
					Stats: MonsterStats{Health: 40, Attack: 4, Mana: 10},
					AI:    AIProfile{ThreatThreshold: 40, ElementalPreference: true},
				},
				Backstory:  "Cast out from the village.",
				Weaknesses: []Element{ElementFire},
			},
		},
		Stories: map[string]*Story{"trail": testStory()},
	}
}

func testStory() *Story {
	return &Story{
		ID:    "trail",
		Title: "The Trail",
		Start: "intro",
		Nodes: map[string]*Node{
			"intro": {ID: "intro", Type: NodeStory, Text: "Hello {player_name}.", Choices: []Choice{
				{Text: "Walk into the forest", Next: "forest"},
				{Text: "Climb the cliff", Next: "cliff", Require: ChoiceRequire{Stats: StatBlock{StatStrength: 3}}},
				{Text: "Squeeze into the cave", Next: "cave", DiceRequirement: 4},
				{Text: "Follow the broken sign", Next: "nowhere"},
				{Text: "Visit the market", Next: "market"},
				{Text: "Step on the trap", Next: "defeat", Effects: Effects{Hearts: -100}},
				{Text: "Study the old tome", Next: "cliff", Effects: Effects{XP: 10, Stats: StatBlock{StatVitality: 1}}, SpellRewards: []string{"mend"}, ItemRewards: []string{"potion"}},
			}},
			"forest": {ID: "forest", Type: NodeCombat, Battle: true, Monster: "goblin", Choices: []Choice{
				{Text: "Victory", Next: "victory", Require: ChoiceRequire{BattleResult: OutcomeWin}},
				{Text: "Defeat", Next: "defeat", Require: ChoiceRequire{BattleResult: OutcomeLose}},
				{Text: "Run", Next: "intro", BattleResult: OutcomeEscape},
			}},
			"lair": {ID: "lair", Type: NodeCombat, Monster: "witch", Choices: []Choice{
				{Text: "Victory", Next: "victory", Require: ChoiceRequire{BattleResult: OutcomeWin}},
			}},
			"market": {ID: "market", Type: NodeShop, Shop: &ShopRef{ShopID: "market"}, Choices: []Choice{
				{Text: "Leave", Next: "intro"},
			}},
			"cliff":   {ID: "cliff", Type: NodeStory, Choices: []Choice{{Text: "Back", Next: "intro"}}},
			"cave":    {ID: "cave", Type: NodeStory, Choices: []Choice{{Text: "Back", Next: "intro"}}},
			"victory": {ID: "victory", Type: NodeEnding, Ending: true},
			"defeat":  {ID: "defeat", Type: NodeEnding, Ending: true},
		},
	}
}

func newTestEngine(r Rand) *Engine {
	if r == nil {
		r = &scriptedRand{}
	}
	return &Engine{Catalog: testCatalog(), Rand: r}
}

// newTestSession creates a human warrior at the start of the trail.
func newTestSession(t *testing.T, e *Engine) *Session {
	t.Helper()
	p, err := NewPlayer(e.Catalog, "Ada", GenderFemale, "human", "warrior")
	if err != nil {
		t.Fatalf("Unexpected error creating player: %v", err)
	}
	s := NewSession(p)
	if err := e.Start(s, "trail"); err != nil {
		t.Fatalf("Unexpected error starting story: %v", err)
	}
	return s
}
