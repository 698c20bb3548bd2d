package game

// ItemType is the category of an item.
type ItemType string

const (
	ItemWeapon     ItemType = "weapon"
	ItemArmor      ItemType = "armor"
	ItemAccessory  ItemType = "accessory"
	ItemConsumable ItemType = "consumable"
	ItemQuest      ItemType = "quest"
)

// SubType is the equip sub-slot an item declares. Items without one cannot be
// equipped.
type SubType string

const (
	SubMainWeapon SubType = "main_weapon"
	SubSideWeapon SubType = "side_weapon"
	SubHead       SubType = "head"
	SubBody       SubType = "body"
	SubLegs       SubType = "legs"
	SubShoes      SubType = "shoes"
	SubRing       SubType = "ring"
	SubNecklace   SubType = "necklace"
	SubPotion     SubType = "potion"
)

// Item is an immutable catalog template. Inventory entries are copies whose
// Quantity is mutable for stackable items.
type Item struct {
	ID           string    `yaml:"id" json:"id"`
	Name         string    `yaml:"name" json:"name"`
	Type         ItemType  `yaml:"type" json:"type"`
	SubType      SubType   `yaml:"subType,omitempty" json:"subType,omitempty"`
	Description  string    `yaml:"description,omitempty" json:"description,omitempty"`
	Effects      Effects   `yaml:"effects,omitempty" json:"effects"`
	Requirements StatBlock `yaml:"requirements,omitempty" json:"requirements,omitempty"`
	Value        int       `yaml:"value" json:"value"`
	SellValue    int       `yaml:"sellValue,omitempty" json:"sellValue,omitempty"`
	Stackable    bool      `yaml:"stackable,omitempty" json:"stackable,omitempty"`
	Quantity     int       `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	Rarity       string    `yaml:"rarity,omitempty" json:"rarity,omitempty"`
	Element      Element   `yaml:"element,omitempty" json:"element,omitempty"`
}

// Count is the number of units an entry stands for; non-stackable entries and
// stackables without an explicit quantity count as one.
func (it Item) Count() int {
	if it.Quantity <= 0 {
		return 1
	}
	return it.Quantity
}

// Equippable reports whether the item declares an equip sub-slot.
func (it Item) Equippable() bool {
	return it.SubType != ""
}

// Slot names one equipment position.
type Slot string

const (
	SlotMainWeapon  Slot = "mainWeapon"
	SlotSideWeapon  Slot = "sideWeapon"
	SlotHead        Slot = "head"
	SlotBody        Slot = "body"
	SlotLegs        Slot = "legs"
	SlotShoes       Slot = "shoes"
	SlotRing1       Slot = "ring1"
	SlotRing2       Slot = "ring2"
	SlotNecklace    Slot = "necklace"
	SlotQuickPotion Slot = "quickPotion"
)

// AllSlots lists every slot in display order.
var AllSlots = []Slot{
	SlotMainWeapon, SlotSideWeapon, SlotHead, SlotBody, SlotLegs,
	SlotShoes, SlotRing1, SlotRing2, SlotNecklace, SlotQuickPotion,
}

var slotBySub = map[SubType]Slot{
	SubMainWeapon: SlotMainWeapon,
	SubSideWeapon: SlotSideWeapon,
	SubHead:       SlotHead,
	SubBody:       SlotBody,
	SubLegs:       SlotLegs,
	SubShoes:      SlotShoes,
	SubNecklace:   SlotNecklace,
	SubPotion:     SlotQuickPotion,
}

// Equipment maps each slot to at most one item. Rings have two slots.
type Equipment struct {
	MainWeapon  *Item `json:"mainWeapon,omitempty"`
	SideWeapon  *Item `json:"sideWeapon,omitempty"`
	Head        *Item `json:"head,omitempty"`
	Body        *Item `json:"body,omitempty"`
	Legs        *Item `json:"legs,omitempty"`
	Shoes       *Item `json:"shoes,omitempty"`
	Ring1       *Item `json:"ring1,omitempty"`
	Ring2       *Item `json:"ring2,omitempty"`
	Necklace    *Item `json:"necklace,omitempty"`
	QuickPotion *Item `json:"quickPotion,omitempty"`
}

func (e *Equipment) ref(s Slot) **Item {
	switch s {
	case SlotMainWeapon:
		return &e.MainWeapon
	case SlotSideWeapon:
		return &e.SideWeapon
	case SlotHead:
		return &e.Head
	case SlotBody:
		return &e.Body
	case SlotLegs:
		return &e.Legs
	case SlotShoes:
		return &e.Shoes
	case SlotRing1:
		return &e.Ring1
	case SlotRing2:
		return &e.Ring2
	case SlotNecklace:
		return &e.Necklace
	case SlotQuickPotion:
		return &e.QuickPotion
	default:
		return nil
	}
}

// Get returns the item in slot s, or nil when the slot is empty or unknown.
func (e Equipment) Get(s Slot) *Item {
	if r := e.ref(s); r != nil {
		return *r
	}
	return nil
}

// Items returns copies of every equipped item in slot order.
func (e Equipment) Items() []Item {
	var out []Item
	for _, s := range AllSlots {
		if it := e.Get(s); it != nil {
			out = append(out, *it)
		}
	}
	return out
}

// ParseSlot validates a slot name.
func ParseSlot(name string) (Slot, bool) {
	for _, s := range AllSlots {
		if string(s) == name {
			return s, true
		}
	}
	return "", false
}
