package game

import "slices"

// AddItem puts item into the inventory. A stackable item merges into an
// existing entry with the same id; anything else is appended.
func AddItem(p Player, item Item) Player {
	p.Inventory = slices.Clone(p.Inventory)
	if item.Stackable {
		if i := slices.IndexFunc(p.Inventory, byID(item.ID)); i >= 0 {
			p.Inventory[i].Quantity = p.Inventory[i].Count() + item.Count()
			return p
		}
		item.Quantity = item.Count()
	}
	p.Inventory = append(p.Inventory, item)
	return p
}

// RemoveItem takes qty units of itemID out of the inventory. The entry is
// dropped unless it is a stack holding more than qty. Absent items are a no-op.
func RemoveItem(p Player, itemID string, qty int) Player {
	qty = max(qty, 1)
	i := slices.IndexFunc(p.Inventory, byID(itemID))
	if i < 0 {
		return p
	}
	p.Inventory = slices.Clone(p.Inventory)
	if it := p.Inventory[i]; it.Stackable && it.Count() > qty {
		p.Inventory[i].Quantity = it.Count() - qty
		return p
	}
	p.Inventory = slices.Delete(p.Inventory, i, i+1)
	return p
}

// CanEquip reports whether the item has an equip sub-slot and the player's
// base stats meet its requirements.
func CanEquip(p Player, item Item) bool {
	if !item.Equippable() {
		return false
	}
	if item.SubType != SubRing {
		if _, ok := slotBySub[item.SubType]; !ok {
			return false
		}
	}
	return p.Stats.Meets(item.Requirements)
}

// Equip installs item in its slot. The inventory entry with the item's id is
// consumed and whatever the slot held goes back to the inventory. A ring goes
// to the first free ring slot, or replaces ring1.
func Equip(p Player, item Item) Player {
	if !CanEquip(p, item) {
		return p
	}
	i := slices.IndexFunc(p.Inventory, byID(item.ID))
	if i < 0 {
		return p
	}
	item = p.Inventory[i]
	p.Inventory = slices.Delete(slices.Clone(p.Inventory), i, i+1)

	slot := equipSlot(p.Equipment, item.SubType)
	ref := p.Equipment.ref(slot)
	if *ref != nil {
		p.Inventory = append(p.Inventory, **ref)
	}
	installed := item
	*ref = &installed
	return p
}

func equipSlot(e Equipment, sub SubType) Slot {
	if sub != SubRing {
		return slotBySub[sub]
	}
	switch {
	case e.Ring1 == nil:
		return SlotRing1
	case e.Ring2 == nil:
		return SlotRing2
	default:
		return SlotRing1
	}
}

// Unequip moves the item in slot back to the inventory.
func Unequip(p Player, slot Slot) Player {
	ref := p.Equipment.ref(slot)
	if ref == nil || *ref == nil {
		return p
	}
	p.Inventory = append(slices.Clone(p.Inventory), **ref)
	*ref = nil
	return p
}

// Totals is the player's effective view: base stats plus every equipped
// item's deltas, and hearts adjusted the same way.
type Totals struct {
	Stats     Stats `json:"stats"`
	Hearts    int   `json:"hearts"`
	MaxHearts int   `json:"maxHearts"`
}

// EffectiveStats sums equipment effects onto the base stats. Only stat,
// hearts and maxHearts deltas apply.
func EffectiveStats(p Player) Totals {
	t := Totals{Stats: p.Stats, Hearts: p.Hearts, MaxHearts: p.MaxHearts}
	for _, it := range p.Equipment.Items() {
		t.Stats = t.Stats.Plus(it.Effects.Stats)
		t.Hearts += it.Effects.Hearts
		t.MaxHearts += it.Effects.MaxHearts
	}
	return t
}

// UseConsumable applies a consumable's deltas and removes one unit of it.
// Non-consumables leave the player unchanged.
func UseConsumable(p Player, item Item) Player {
	if item.Type != ItemConsumable {
		return p
	}
	eff := item.Effects
	if len(eff.Stats) > 0 {
		p.Stats = p.Stats.Plus(eff.Stats)
		p = withCapacity(p)
	}
	p.MaxHearts = max(1, p.MaxHearts+eff.MaxHearts)
	p.Hearts = clamp(p.Hearts+eff.Hearts, 0, p.MaxHearts)
	p.Mana = clamp(p.Mana+eff.Mana, 0, p.MaxMana)
	return RemoveItem(p, item.ID, 1)
}
