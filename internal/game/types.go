package game

// Story is one story graph. Its ID is the file name it was loaded from.
type Story struct {
	ID    string           `yaml:"-" json:"id"`
	Title string           `yaml:"title" json:"title"`
	Start string           `yaml:"start" json:"start"`
	Nodes map[string]*Node `yaml:"nodes" json:"-"`
}

// NodeType is the presentation kind of a node.
type NodeType string

const (
	NodeStory  NodeType = "story"
	NodeCombat NodeType = "combat"
	NodeShop   NodeType = "shop"
	NodeChoice NodeType = "choice"
	NodeEnding NodeType = "ending"
)

// ShopRef points a shop node at a catalog shop.
type ShopRef struct {
	ShopID     string   `yaml:"shopId" json:"shopId"`
	Categories []string `yaml:"categories" json:"categories,omitempty"`
}

// Node represents a single scene in the story. Nodes are never mutated after
// loading.
type Node struct {
	ID              string   `yaml:"id" json:"id"`
	Title           string   `yaml:"title" json:"title"`
	Text            string   `yaml:"text" json:"text"`
	Type            NodeType `yaml:"type" json:"type"`
	Tags            []string `yaml:"tags" json:"tags,omitempty"`
	Battle          bool     `yaml:"battle" json:"battle,omitempty"`
	Monster         string   `yaml:"monster" json:"monster,omitempty"`
	Shop            *ShopRef `yaml:"shop" json:"shop,omitempty"`
	Choices         []Choice `yaml:"choices" json:"choices"`
	DiceRequirement int      `yaml:"dice_requirement" json:"diceRequirement,omitempty"`
	Ending          bool     `yaml:"is_ending" json:"isEnding,omitempty"`
}

// IsCombat reports whether entering the node starts a fight instead of
// offering its choices.
func (n *Node) IsCombat() bool {
	return n.Battle || n.Type == NodeCombat
}

// IsShop reports whether the node hosts a shop.
func (n *Node) IsShop() bool {
	return n.Shop != nil && n.Shop.ShopID != ""
}

// Terminal reports whether the node ends the story.
func (n *Node) Terminal() bool {
	return n.Ending || n.Type == NodeEnding
}

// Choice represents a player action available at a node.
type Choice struct {
	Text             string        `yaml:"text" json:"text"`
	Next             string        `yaml:"next_node" json:"next"`
	Effects          Effects       `yaml:"effects" json:"effects"`
	ItemRewards      []string      `yaml:"itemRewards" json:"itemRewards,omitempty"`
	ItemRequirements []string      `yaml:"itemRequirements" json:"itemRequirements,omitempty"`
	SpellRewards     []string      `yaml:"spellRewards" json:"spellRewards,omitempty"`
	SkillRewards     []string      `yaml:"skillRewards" json:"skillRewards,omitempty"`
	Require          ChoiceRequire `yaml:"require" json:"require"`
	BattleResult     Outcome       `yaml:"battleResult" json:"battleResult,omitempty"`
	ClassRequire     []string      `yaml:"classRequire" json:"classRequire,omitempty"`
	ElementRequire   []Element     `yaml:"elementRequire" json:"elementRequire,omitempty"`
	DiceRequirement  int           `yaml:"dice_requirement" json:"diceRequirement,omitempty"`
}

// Outcome returns the battle outcome this choice handles, if any. The tag may
// sit inside require or next to it.
func (c Choice) Outcome() Outcome {
	if c.Require.BattleResult != "" {
		return c.Require.BattleResult
	}
	return c.BattleResult
}

// OutcomeChoice returns the first choice handling outcome o.
func (n *Node) OutcomeChoice(o Outcome) (Choice, bool) {
	for _, ch := range n.Choices {
		if ch.Outcome() == o {
			return ch, true
		}
	}
	return Choice{}, false
}
