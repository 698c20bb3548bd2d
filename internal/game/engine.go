package game

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

var (
	ErrUnknownStory   = errors.New("unknown story")
	ErrUnknownNode    = errors.New("unknown node")
	ErrUnknownMonster = errors.New("unknown monster")
	ErrUnknownShop    = errors.New("unknown shop")
	ErrUnknownItem    = errors.New("unknown item")
)

// Phase is the step a session is waiting on.
type Phase string

const (
	PhaseStory          Phase = "story"
	PhaseCombat         Phase = "combat"
	PhaseLevelUp        Phase = "level_up"
	PhaseSpellSkill     Phase = "spell_skill_choice"
	PhaseClassSelection Phase = "class_selection"
	PhaseDead           Phase = "dead"
)

// Session is one play-through. It has a single owner; callers serialise
// access to it.
type Session struct {
	Player     Player         `json:"player"`
	StoryID    string         `json:"storyId"`
	Phase      Phase          `json:"phase"`
	Roll       *int           `json:"roll,omitempty"`
	StatPoints int            `json:"statPoints"`
	Picks      int            `json:"picks"`
	Visited    []string       `json:"visited"`
	Purchases  map[string]int `json:"purchases,omitempty"`
	// ClassOfferedAt is the level at which class selection was last offered.
	ClassOfferedAt int `json:"classOfferedAt,omitempty"`
	// Stalled names the combat node whose finished fight had no usable exit.
	// That fight cannot be entered again.
	Stalled string `json:"stalled,omitempty"`

	Combat *Combat `json:"-"`
}

// NewSession wraps a freshly created player.
func NewSession(p Player) *Session {
	return &Session{Player: p, Phase: PhaseStory}
}

// Snapshot returns a copy safe to hand to a store. The live combat is not
// part of it.
func (s *Session) Snapshot() Session {
	out := *s
	out.Visited = slices.Clone(s.Visited)
	out.Purchases = maps.Clone(s.Purchases)
	out.Combat = nil
	if s.Roll != nil {
		r := *s.Roll
		out.Roll = &r
	}
	return out
}

// StepResult reports what an operation did. A non-empty Message means the
// action was refused and the session is unchanged.
type StepResult struct {
	Phase     Phase    `json:"phase"`
	Message   string   `json:"message,omitempty"`
	Roll      *int     `json:"roll,omitempty"`
	Outcome   Outcome  `json:"outcome,omitempty"`
	Advanced  bool     `json:"advanced,omitempty"`
	Levels    int      `json:"levels,omitempty"`
	Died      bool     `json:"died,omitempty"`
	Stuck     bool     `json:"stuck,omitempty"`
	Notes     []string `json:"notes,omitempty"`
	CombatLog []string `json:"combatLog,omitempty"`
}

// Engine runs sessions against a catalog. Rand must be set; Log may be nil.
type Engine struct {
	Catalog *Catalog
	Rand    Rand
	Policy  MultiLevelPolicy
	Log     *slog.Logger
}

func (e *Engine) log() *slog.Logger {
	if e.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return e.Log
}

func (e *Engine) policy() MultiLevelPolicy {
	if e.Policy.Valid() {
		return e.Policy
	}
	return LevelOnce
}

func refuse(s *Session, msg string) StepResult {
	return StepResult{Phase: s.Phase, Message: msg}
}

// Start places the session at the start node of a story.
func (e *Engine) Start(s *Session, storyID string) error {
	story, ok := e.Catalog.Story(storyID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownStory, storyID)
	}
	s.StoryID = storyID
	s.Player.CurrentNode = story.Start
	s.Phase = PhaseStory
	s.Roll = nil
	s.Combat = nil
	s.Stalled = ""
	s.Visited = []string{story.Start}
	return nil
}

// Resume fixes up a session loaded from a store. A fight in progress cannot
// be restored, so the player stands before it again.
func (e *Engine) Resume(s *Session) {
	if s.Phase == PhaseCombat && s.Combat == nil {
		s.Phase = PhaseStory
	}
	if s.Phase == "" {
		s.Phase = PhaseStory
	}
}

func (e *Engine) CurrentNode(s *Session) (*Node, error) {
	story, ok := e.Catalog.Story(s.StoryID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStory, s.StoryID)
	}
	n := story.Nodes[s.Player.CurrentNode]
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, s.Player.CurrentNode)
	}
	return n, nil
}

// Roll throws one six-sided die for the current node's dice-gated choices.
func (e *Engine) Roll(s *Session) StepResult {
	if s.Phase != PhaseStory {
		return refuse(s, "You can't roll right now.")
	}
	if s.Roll != nil {
		return refuse(s, "You have already rolled.")
	}
	r := e.Rand.IntN(6) + 1
	s.Roll = &r
	return StepResult{Phase: s.Phase, Roll: &r}
}

// Choose takes the choice at index in the current node's choice list. On a
// combat node it starts the fight instead.
func (e *Engine) Choose(s *Session, index int) (StepResult, error) {
	if s.Phase != PhaseStory {
		return refuse(s, "Finish what you are doing first."), nil
	}
	node, err := e.CurrentNode(s)
	if err != nil {
		return StepResult{}, err
	}
	if node.IsCombat() {
		return e.EnterCombat(s)
	}
	if index < 0 || index >= len(node.Choices) {
		return refuse(s, "That choice doesn't exist."), nil
	}
	ch := node.Choices[index]
	if ch.DiceRequirement > 0 && s.Roll == nil {
		return refuse(s, "Roll the die first."), nil
	}
	if !IsChoiceAvailable(ch, s.Player, s.Roll) {
		return refuse(s, "That choice isn't available."), nil
	}
	return e.advance(s, ch), nil
}

// advance runs the normal choice path: destination check, effects, death
// check, then level-up check.
func (e *Engine) advance(s *Session, ch Choice) StepResult {
	if !e.reachable(s, ch) {
		e.log().Warn("choice has no destination",
			"story", s.StoryID, "node", s.Player.CurrentNode, "next", ch.Next)
		return refuse(s, "No destination for that choice.")
	}

	s.Player = ApplyChoice(s.Player, ch, e.Catalog.Items)
	s.Roll = nil
	s.Visited = append(s.Visited, ch.Next)
	res := StepResult{Advanced: true}
	if s.Player.Hearts <= 0 {
		e.die(s, &res)
		return res
	}
	e.checkLevel(s, &res)
	res.Phase = s.Phase
	return res
}

func (e *Engine) reachable(s *Session, ch Choice) bool {
	story, _ := e.Catalog.Story(s.StoryID)
	return ch.Next != "" && story != nil && story.Nodes[ch.Next] != nil
}

func (e *Engine) die(s *Session, res *StepResult) {
	s.Phase = PhaseDead
	s.Combat = nil
	res.Died = true
	res.Phase = PhaseDead
	e.log().Info("player died", "player", s.Player.Name, "story", s.StoryID, "node", s.Player.CurrentNode)
}

func (e *Engine) checkLevel(s *Session, res *StepResult) {
	p, adv := Advance(s.Player, e.policy())
	if adv.Levels == 0 {
		return
	}
	s.Player = p
	s.StatPoints += adv.StatPoints
	s.Picks += adv.Picks
	res.Levels = adv.Levels
	e.log().Info("level up",
		"player", p.Name, "level", p.Level, "stat_points", adv.StatPoints, "picks", adv.Picks)
	e.settle(s)
}

// settle picks the phase from what the player still owes: spell or skill
// picks first, then stat points, then a class choice every twenty levels.
func (e *Engine) settle(s *Session) {
	if s.Picks > 0 && !e.Catalog.HasLearnable(s.Player) {
		e.log().Info("no spell or skill to learn, pick waived", "player", s.Player.Name, "level", s.Player.Level)
		s.Picks = 0
	}
	p := s.Player
	switch {
	case s.Picks > 0:
		s.Phase = PhaseSpellSkill
	case s.StatPoints > 0:
		s.Phase = PhaseLevelUp
	case p.Level%classChoiceEvery == 0 && s.ClassOfferedAt != p.Level &&
		len(e.Catalog.UnlockableClasses(p)) > 0:
		s.ClassOfferedAt = p.Level
		s.Phase = PhaseClassSelection
	default:
		s.Phase = PhaseStory
	}
}

// EnterCombat starts the fight on a combat node.
func (e *Engine) EnterCombat(s *Session) (StepResult, error) {
	if s.Phase != PhaseStory {
		return refuse(s, "You can't start a fight now."), nil
	}
	node, err := e.CurrentNode(s)
	if err != nil {
		return StepResult{}, err
	}
	if !node.IsCombat() {
		return refuse(s, "There is nothing to fight here."), nil
	}
	if s.Stalled == node.ID {
		return refuse(s, "There is no way forward from this battle."), nil
	}
	foe, ok := e.Catalog.Foe(node.Monster)
	if !ok {
		return StepResult{}, fmt.Errorf("%w: %q on node %s", ErrUnknownMonster, node.Monster, node.ID)
	}
	s.Combat = NewCombat(s.Player, *foe, e.Rand)
	s.Phase = PhaseCombat
	s.Roll = nil
	return StepResult{Phase: s.Phase, CombatLog: slices.Clone(s.Combat.Log)}, nil
}

// CombatAction plays one player action and the monster's reply. When the
// fight ends the outcome choice of the node is applied.
func (e *Engine) CombatAction(s *Session, action Action, spellID string) (StepResult, error) {
	if s.Phase != PhaseCombat || s.Combat == nil {
		return refuse(s, "You are not in combat."), nil
	}
	c := s.Combat
	var err error
	switch action {
	case ActionAttack:
		err = c.Attack()
	case ActionDefend:
		err = c.Defend()
	case ActionEscape:
		err = c.Escape()
	case ActionCast:
		sp, ok := e.Catalog.Spells[spellID]
		if !ok || !slices.Contains(s.Player.Spells, spellID) {
			return refuse(s, "You don't know that spell."), nil
		}
		err = c.Cast(sp)
	default:
		return refuse(s, "Unknown combat action."), nil
	}
	if err != nil {
		return refuse(s, combatMessage(err)), nil
	}
	if !c.Done() {
		return StepResult{Phase: s.Phase, CombatLog: slices.Clone(c.Log)}, nil
	}
	return e.finishCombat(s)
}

func combatMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotEnoughMana):
		return "Not enough mana."
	case errors.Is(err, ErrNotPlayerTurn):
		return "Wait for your turn."
	default:
		return "The fight is already over."
	}
}

func (e *Engine) finishCombat(s *Session) (StepResult, error) {
	c := s.Combat
	r, _ := c.Result()
	node, err := e.CurrentNode(s)
	if err != nil {
		return StepResult{}, err
	}
	e.log().Info("combat finished",
		"player", s.Player.Name, "foe", c.Foe.ID, "outcome", r.Outcome, "rounds", c.Round)
	s.Combat = nil
	s.Phase = PhaseStory

	ch, ok := node.OutcomeChoice(r.Outcome)
	if !ok || !e.reachable(s, ch) {
		return e.stall(s, node, c, r), nil
	}

	p := ApplyCombatResult(s.Player, r)
	var notes []string
	if r.Outcome == OutcomeWin {
		p, notes = ApplyVictoryRewards(p, c.Foe, e.Catalog.Items, e.Rand)
	}
	s.Player = p
	res := e.advance(s, ch)
	res.Outcome = r.Outcome
	res.Notes = append(notes, res.Notes...)
	res.CombatLog = c.Log
	return res, nil
}

// stall ends a fight whose node has no usable exit for the outcome. Only
// health and mana carry over; the player stays put and the fight is closed.
func (e *Engine) stall(s *Session, node *Node, c *Combat, r CombatResult) StepResult {
	e.log().Warn("combat node has no usable choice for outcome",
		"story", s.StoryID, "node", node.ID, "outcome", r.Outcome)
	s.Player = ApplyCombatResult(s.Player, CombatResult{Hearts: r.Hearts, Mana: r.Mana})
	s.Stalled = node.ID
	res := StepResult{
		Outcome:   r.Outcome,
		Stuck:     true,
		Notes:     []string{"There is no way forward from this battle."},
		CombatLog: c.Log,
	}
	if s.Player.Hearts <= 0 {
		e.die(s, &res)
		return res
	}
	res.Phase = s.Phase
	return res
}

// AllocateStats spends pending stat points.
func (e *Engine) AllocateStats(s *Session, alloc StatBlock) StepResult {
	if s.Phase != PhaseLevelUp {
		return refuse(s, "You have no stat points to spend.")
	}
	total := 0
	for st, n := range alloc {
		if _, ok := statNames[st]; !ok {
			return refuse(s, "Unknown stat.")
		}
		if n < 0 {
			return refuse(s, "Allocations can't be negative.")
		}
		total += n
	}
	if total == 0 {
		return refuse(s, "Allocate at least one point.")
	}
	if total > s.StatPoints {
		return refuse(s, fmt.Sprintf("You only have %d points to spend.", s.StatPoints))
	}
	s.Player = ApplyStatPoints(s.Player, alloc)
	s.StatPoints -= total
	e.settle(s)
	return StepResult{Phase: s.Phase}
}

// PickSpellSkill learns one spell or skill that is pooled or eligible.
func (e *Engine) PickSpellSkill(s *Session, kind PickKind, id string) StepResult {
	if s.Phase != PhaseSpellSkill {
		return refuse(s, "There is nothing to learn right now.")
	}
	if !e.Catalog.Learnable(s.Player, kind, id) {
		return refuse(s, "You can't learn that.")
	}
	s.Player = Learn(s.Player, kind, id)
	s.Picks--
	e.settle(s)
	return StepResult{Phase: s.Phase}
}

// SelectClass takes an unlockable class. An empty name declines the offer.
func (e *Engine) SelectClass(s *Session, name string) StepResult {
	if s.Phase != PhaseClassSelection {
		return refuse(s, "There is no class to choose right now.")
	}
	if name != "" {
		if !e.Catalog.CanUnlockClass(s.Player, name) {
			return refuse(s, "You can't take that class.")
		}
		s.Player = AddClass(s.Player, name, e.Catalog.Classes[name])
		e.log().Info("class unlocked", "player", s.Player.Name, "class", name)
	}
	s.Phase = PhaseStory
	return StepResult{Phase: s.Phase}
}

// UseItem drinks or eats one unit of a consumable.
func (e *Engine) UseItem(s *Session, itemID string) StepResult {
	if s.Phase != PhaseStory {
		return refuse(s, "You can't use items now.")
	}
	it, ok := s.Player.FindItem(itemID)
	if !ok {
		return refuse(s, "You don't have that.")
	}
	if it.Type != ItemConsumable {
		return refuse(s, "You can't use that.")
	}
	s.Player = UseConsumable(s.Player, it)
	res := StepResult{Phase: s.Phase, Notes: []string{"You use " + it.Name + "."}}
	if s.Player.Hearts <= 0 {
		e.die(s, &res)
	}
	return res
}

func (e *Engine) EquipItem(s *Session, itemID string) StepResult {
	if s.Phase != PhaseStory {
		return refuse(s, "You can't change equipment now.")
	}
	it, ok := s.Player.FindItem(itemID)
	if !ok {
		return refuse(s, "You don't have that.")
	}
	if !CanEquip(s.Player, it) {
		return refuse(s, "You can't equip that.")
	}
	s.Player = Equip(s.Player, it)
	return StepResult{Phase: s.Phase}
}

func (e *Engine) UnequipSlot(s *Session, slot Slot) StepResult {
	if s.Phase != PhaseStory {
		return refuse(s, "You can't change equipment now.")
	}
	if s.Player.Equipment.Get(slot) == nil {
		return refuse(s, "Nothing is equipped there.")
	}
	s.Player = Unequip(s.Player, slot)
	return StepResult{Phase: s.Phase}
}

// shopHere returns the shop on the current node; ok is false when the node
// has none.
func (e *Engine) shopHere(s *Session) (id string, shop Shop, ok bool, err error) {
	node, err := e.CurrentNode(s)
	if err != nil {
		return "", Shop{}, false, err
	}
	if s.Phase != PhaseStory || !node.IsShop() {
		return "", Shop{}, false, nil
	}
	id = node.Shop.ShopID
	shop, found := e.Catalog.Shops[id]
	if !found {
		return "", Shop{}, false, fmt.Errorf("%w: %q on node %s", ErrUnknownShop, id, node.ID)
	}
	return id, shop, true, nil
}

func purchaseKey(shopID, itemID string) string {
	return shopID + "/" + itemID
}

// Buy purchases one catalog unit of itemID from the shop on this node.
func (e *Engine) Buy(s *Session, itemID string) (StepResult, error) {
	shopID, shop, ok, err := e.shopHere(s)
	if err != nil {
		return StepResult{}, err
	}
	if !ok {
		return refuse(s, "There is no shop here."), nil
	}
	offer, ok := shop.Offer(itemID)
	if !ok {
		return refuse(s, "The shop doesn't sell that."), nil
	}
	it, ok := e.Catalog.Items[itemID]
	if !ok {
		return StepResult{}, fmt.Errorf("%w: %q in shop %s", ErrUnknownItem, itemID, shopID)
	}
	key := purchaseKey(shopID, itemID)
	if offer.Stock != nil && s.Purchases[key] >= *offer.Stock {
		return refuse(s, "That item is sold out."), nil
	}
	price := shop.BuyPrice(it)
	if s.Player.Stats.Gold < price {
		return refuse(s, "You can't afford that."), nil
	}
	s.Player = AddItem(s.Player, it)
	s.Player.Stats.Gold -= price
	if s.Purchases == nil {
		s.Purchases = map[string]int{}
	}
	s.Purchases[key]++
	return StepResult{Phase: s.Phase, Notes: []string{fmt.Sprintf("Bought %s for %d gold.", it.Name, price)}}, nil
}

// Sell sells one unit of itemID to the shop on this node.
func (e *Engine) Sell(s *Session, itemID string) (StepResult, error) {
	_, shop, ok, err := e.shopHere(s)
	if err != nil {
		return StepResult{}, err
	}
	if !ok {
		return refuse(s, "There is no shop here."), nil
	}
	it, ok := s.Player.FindItem(itemID)
	if !ok {
		return refuse(s, "You don't have that."), nil
	}
	if it.Type == ItemQuest {
		return refuse(s, "The shopkeeper won't take that."), nil
	}
	price := shop.SellPrice(it)
	s.Player = RemoveItem(s.Player, itemID, 1)
	s.Player.Stats.Gold += price
	return StepResult{Phase: s.Phase, Notes: []string{fmt.Sprintf("Sold %s for %d gold.", it.Name, price)}}, nil
}
