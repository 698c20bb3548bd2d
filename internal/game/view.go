package game

import "slices"

// Offer is one line of a shop's price list.
type Offer struct {
	Item  Item `json:"item"`
	Price int  `json:"price"`
	Left  *int `json:"left,omitempty"`
}

type ShopView struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Offers []Offer `json:"offers"`
}

// View is what the presentation layer needs to draw the session.
type View struct {
	Phase       Phase        `json:"phase"`
	StoryID     string       `json:"storyId"`
	Player      Player       `json:"player"`
	Totals      Totals       `json:"totals"`
	CombatStats CombatStats  `json:"combatStats"`
	XPToNext    int          `json:"xpToNext"`
	Node        *Node        `json:"node,omitempty"`
	Text        string       `json:"text"`
	Choices     []OpenChoice `json:"choices"`
	NeedsRoll   bool         `json:"needsRoll,omitempty"`
	Roll        *int         `json:"roll,omitempty"`
	CanFight    bool         `json:"canFight,omitempty"`
	Ended       bool         `json:"ended,omitempty"`
	Combat      *Combat      `json:"combat,omitempty"`
	Shop        *ShopView    `json:"shop,omitempty"`
	StatPoints  int          `json:"statPoints,omitempty"`
	Spells      []Spell      `json:"spells,omitempty"`
	Skills      []Skill      `json:"skills,omitempty"`
	Classes     []string     `json:"classes,omitempty"`
}

// View describes the session. Node is nil and an error returned when the
// player stands on a node the story does not have.
func (e *Engine) View(s *Session) (View, error) {
	p := s.Player
	t := EffectiveStats(p)
	v := View{
		Phase:       s.Phase,
		StoryID:     s.StoryID,
		Player:      p,
		Totals:      t,
		CombatStats: DeriveCombatStats(t.Stats),
		XPToNext:    XPToNext(p),
		Roll:        s.Roll,
		Combat:      s.Combat,
		StatPoints:  s.StatPoints,
	}
	node, err := e.CurrentNode(s)
	if err != nil {
		return v, err
	}
	v.Node = node
	v.Text = RenderText(node.Text, p)
	v.Ended = node.Terminal()

	switch s.Phase {
	case PhaseStory:
		v.Choices, v.NeedsRoll = AvailableChoices(node, p, s.Roll)
		v.CanFight = node.IsCombat() && s.Stalled != node.ID
		if node.IsShop() {
			v.Shop = e.shopView(s, node.Shop.ShopID)
		}
	case PhaseSpellSkill:
		v.Spells, v.Skills = e.learnable(p)
	case PhaseClassSelection:
		v.Classes = e.Catalog.UnlockableClasses(p)
	}
	return v, nil
}

func (e *Engine) shopView(s *Session, id string) *ShopView {
	shop, ok := e.Catalog.Shops[id]
	if !ok {
		return nil
	}
	sv := &ShopView{ID: id, Name: shop.Name}
	for _, si := range shop.Items {
		it, ok := e.Catalog.Items[si.ItemID]
		if !ok {
			continue
		}
		o := Offer{Item: it, Price: shop.BuyPrice(it)}
		if si.Stock != nil {
			left := max(0, *si.Stock-s.Purchases[purchaseKey(id, si.ItemID)])
			o.Left = &left
		}
		sv.Offers = append(sv.Offers, o)
	}
	return sv
}

// learnable lists pooled spells and skills first, then catalog-eligible ones.
func (e *Engine) learnable(p Player) ([]Spell, []Skill) {
	var spells []Spell
	for _, id := range p.UnlockedSpells {
		if sp, ok := e.Catalog.Spells[id]; ok && !slices.Contains(p.Spells, id) {
			spells = append(spells, sp)
		}
	}
	spells = append(spells, e.Catalog.EligibleSpells(p)...)

	var skills []Skill
	for _, id := range p.UnlockedSkills {
		if sk, ok := e.Catalog.Skills[id]; ok && !slices.Contains(p.Skills, id) {
			skills = append(skills, sk)
		}
	}
	skills = append(skills, e.Catalog.EligibleSkills(p)...)
	return spells, skills
}
