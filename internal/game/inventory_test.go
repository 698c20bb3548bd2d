package game

import (
	"slices"
	"testing"
)

func inventoryCounts(p Player) map[string]int {
	m := map[string]int{}
	for _, it := range p.Inventory {
		m[it.ID] += it.Count()
	}
	for _, it := range p.Equipment.Items() {
		m["equipped:"+it.ID] += it.Count()
	}
	return m
}

func sameCounts(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

func TestAddItemStacks(t *testing.T) {
	c := testCatalog()
	var p Player
	p = AddItem(p, c.Items["potion"])
	p = AddItem(p, c.Items["potion"])
	if len(p.Inventory) != 1 {
		t.Fatalf("Expected 1 stacked entry, got %d", len(p.Inventory))
	}
	if p.Inventory[0].Quantity != 2 {
		t.Errorf("Expected quantity 2, got %d", p.Inventory[0].Quantity)
	}

	p = AddItem(p, c.Items["old_map"])
	p = AddItem(p, c.Items["old_map"])
	if len(p.Inventory) != 3 {
		t.Errorf("Expected non-stackable items to stay separate, got %d entries", len(p.Inventory))
	}
}

func TestAddItemDoesNotAliasInput(t *testing.T) {
	c := testCatalog()
	var p Player
	p = AddItem(p, c.Items["potion"])
	before := p
	_ = AddItem(before, c.Items["potion"])
	if before.Inventory[0].Quantity != 1 {
		t.Errorf("Expected the original player to keep quantity 1, got %d", before.Inventory[0].Quantity)
	}
}

func TestRemoveItem(t *testing.T) {
	c := testCatalog()
	var p Player
	for range 5 {
		p = AddItem(p, c.Items["potion"])
	}

	p = RemoveItem(p, "potion", 2)
	if p.Inventory[0].Quantity != 3 {
		t.Errorf("Expected quantity 3, got %d", p.Inventory[0].Quantity)
	}

	p = RemoveItem(p, "potion", 3)
	if len(p.Inventory) != 0 {
		t.Errorf("Expected the stack to be removed, got %v", p.Inventory)
	}

	unchanged := RemoveItem(p, "missing", 1)
	if len(unchanged.Inventory) != len(p.Inventory) {
		t.Error("Expected removing an absent item to be a no-op")
	}
}

func TestRemoveThenAddRestoresQuantity(t *testing.T) {
	c := testCatalog()
	var p Player
	for range 4 {
		p = AddItem(p, c.Items["potion"])
	}
	before := inventoryCounts(p)

	for _, qty := range []int{1, 3, 4} {
		removed := RemoveItem(p, "potion", qty)
		back := c.Items["potion"]
		back.Quantity = qty
		restored := AddItem(removed, back)
		if got := inventoryCounts(restored); !sameCounts(before, got) {
			t.Errorf("qty %d: expected %v, got %v", qty, before, got)
		}
	}
}

func TestCanEquip(t *testing.T) {
	c := testCatalog()
	p := Player{Stats: Stats{Strength: 5}}
	if !CanEquip(p, c.Items["rusty_sword"]) {
		t.Error("Expected the sword to be equippable")
	}
	if CanEquip(p, c.Items["heavy_axe"]) {
		t.Error("Expected the axe to need strength 10")
	}
	if CanEquip(p, c.Items["old_map"]) {
		t.Error("Expected an item without a sub-slot to be unequippable")
	}
}

func TestEquipUnequipRoundTrip(t *testing.T) {
	c := testCatalog()
	var p Player
	p = AddItem(p, c.Items["rusty_sword"])
	p = AddItem(p, c.Items["potion"])
	before := inventoryCounts(p)

	p = Equip(p, c.Items["rusty_sword"])
	if p.Equipment.MainWeapon == nil || p.Equipment.MainWeapon.ID != "rusty_sword" {
		t.Fatalf("Expected the sword in the main weapon slot, got %+v", p.Equipment.MainWeapon)
	}
	if p.HasItem("rusty_sword") {
		t.Error("Expected the sword to leave the inventory")
	}

	p = Unequip(p, SlotMainWeapon)
	if p.Equipment.MainWeapon != nil {
		t.Error("Expected the slot to be empty")
	}
	if got := inventoryCounts(p); !sameCounts(before, got) {
		t.Errorf("Expected %v after round trip, got %v", before, got)
	}
}

func TestEquipDisplacesCurrentItem(t *testing.T) {
	c := testCatalog()
	var p Player
	p = AddItem(p, c.Items["rusty_sword"])
	p = Equip(p, c.Items["rusty_sword"])

	axe := c.Items["heavy_axe"]
	axe.Requirements = nil
	p = AddItem(p, axe)
	p = Equip(p, axe)
	if p.Equipment.MainWeapon.ID != "heavy_axe" {
		t.Errorf("Expected the axe equipped, got %s", p.Equipment.MainWeapon.ID)
	}
	if !p.HasItem("rusty_sword") || p.HasItem("heavy_axe") {
		t.Errorf("Expected only the sword in the inventory, got %v", p.Inventory)
	}
}

func TestEquipRings(t *testing.T) {
	c := testCatalog()
	var p Player
	for _, id := range []string{"iron_ring", "gold_ring", "jade_ring"} {
		p = AddItem(p, c.Items[id])
	}
	before := inventoryCounts(p)
	total := func(m map[string]int) int {
		n := 0
		for _, v := range m {
			n += v
		}
		return n
	}

	p = Equip(p, c.Items["iron_ring"])
	p = Equip(p, c.Items["gold_ring"])
	if p.Equipment.Ring1.ID != "iron_ring" || p.Equipment.Ring2.ID != "gold_ring" {
		t.Fatalf("Expected rings to fill both slots, got %v and %v", p.Equipment.Ring1, p.Equipment.Ring2)
	}

	p = Equip(p, c.Items["jade_ring"])
	if p.Equipment.Ring1.ID != "jade_ring" {
		t.Errorf("Expected the third ring to replace ring1, got %s", p.Equipment.Ring1.ID)
	}
	if !p.HasItem("iron_ring") {
		t.Error("Expected the evicted ring back in the inventory")
	}
	if got := total(inventoryCounts(p)); got != total(before) {
		t.Errorf("Expected %d items in total, got %d", total(before), got)
	}
}

func TestEquipRejectsUnmetRequirements(t *testing.T) {
	c := testCatalog()
	var p Player
	p = AddItem(p, c.Items["heavy_axe"])
	after := Equip(p, c.Items["heavy_axe"])
	if after.Equipment.MainWeapon != nil || !after.HasItem("heavy_axe") {
		t.Error("Expected equip to be a no-op when requirements fail")
	}
}

func TestEquipRequiresInventoryEntry(t *testing.T) {
	c := testCatalog()
	p := Player{Stats: Stats{Strength: 5}, Inventory: []Item{c.Items["potion"]}}

	p = Equip(p, c.Items["rusty_sword"])
	if p.Equipment.MainWeapon != nil {
		t.Fatalf("Expected nothing equipped, got %+v", p.Equipment.MainWeapon)
	}
	p = Unequip(p, SlotMainWeapon)
	if len(p.Inventory) != 1 || p.HasItem("rusty_sword") {
		t.Errorf("Expected the inventory unchanged, got %v", p.Inventory)
	}
}

func TestUnequipEmptySlot(t *testing.T) {
	p := Player{Inventory: []Item{{ID: "x"}}}
	after := Unequip(p, SlotHead)
	if len(after.Inventory) != 1 {
		t.Errorf("Expected no change, got %v", after.Inventory)
	}
}

func TestEffectiveStats(t *testing.T) {
	c := testCatalog()
	p := Player{Stats: Stats{Strength: 5, Luck: 1}, Hearts: 4, MaxHearts: 6}
	for _, id := range []string{"rusty_sword", "iron_ring", "leather_cap"} {
		p = AddItem(p, c.Items[id])
	}
	p = Equip(p, c.Items["rusty_sword"])
	p = Equip(p, c.Items["iron_ring"])
	p = Equip(p, c.Items["leather_cap"])

	tot := EffectiveStats(p)
	if tot.Stats.Strength != 7 {
		t.Errorf("Expected strength 7, got %d", tot.Stats.Strength)
	}
	if tot.Stats.Luck != 2 {
		t.Errorf("Expected luck 2, got %d", tot.Stats.Luck)
	}
	if tot.MaxHearts != 8 {
		t.Errorf("Expected maxHearts 8, got %d", tot.MaxHearts)
	}
	if p.Stats.Strength != 5 {
		t.Errorf("Expected base strength untouched, got %d", p.Stats.Strength)
	}
}

func TestUseConsumable(t *testing.T) {
	c := testCatalog()
	p := Player{Stats: Stats{Vitality: 3, Magic: 1, Strength: 2}, Hearts: 2, MaxHearts: 6, Mana: 3, MaxMana: 3}
	p = AddItem(p, c.Items["potion"])
	p = AddItem(p, c.Items["potion"])

	p = UseConsumable(p, c.Items["potion"])
	if p.Hearts != 6 {
		t.Errorf("Expected hearts clamped to 6, got %d", p.Hearts)
	}
	if it, _ := p.FindItem("potion"); it.Quantity != 1 {
		t.Errorf("Expected one potion left, got %d", it.Quantity)
	}

	p = AddItem(p, c.Items["strength_tonic"])
	p = UseConsumable(p, c.Items["strength_tonic"])
	if p.Stats.Strength != 3 || p.Stats.Vitality != 4 {
		t.Errorf("Expected strength 3 and vitality 4, got %d and %d", p.Stats.Strength, p.Stats.Vitality)
	}
	if p.MaxHearts != 8 {
		t.Errorf("Expected maxHearts recomputed to 8, got %d", p.MaxHearts)
	}

	elixir := Item{ID: "elixir", Name: "Elixir", Type: ItemConsumable, Effects: Effects{MaxHearts: 3, Hearts: 20}}
	p = AddItem(p, elixir)
	p = UseConsumable(p, elixir)
	if p.MaxHearts != 11 || p.Hearts != 11 {
		t.Errorf("Expected maxHearts raised to 11 and hearts capped there, got %d/%d", p.Hearts, p.MaxHearts)
	}
	curse := Item{ID: "curse", Name: "Curse", Type: ItemConsumable, Effects: Effects{MaxHearts: -50}}
	p = AddItem(p, curse)
	p = UseConsumable(p, curse)
	if p.MaxHearts != 1 || p.Hearts != 1 {
		t.Errorf("Expected maxHearts floored at 1, got %d/%d", p.Hearts, p.MaxHearts)
	}

	before := slices.Clone(p.Inventory)
	p = AddItem(p, c.Items["rusty_sword"])
	after := UseConsumable(p, c.Items["rusty_sword"])
	if len(after.Inventory) != len(before)+1 {
		t.Error("Expected using a non-consumable to be a no-op")
	}
}
