package game

import "math"

const defaultSellRatio = 0.5

func multiplier(m float64) float64 {
	if m <= 0 {
		return 1
	}
	return m
}

// BuyPrice is what the shop charges for one unit.
func (s Shop) BuyPrice(it Item) int {
	return int(math.Floor(float64(it.Value) * multiplier(s.BuyMultiplier)))
}

// SellPrice is what the shop pays for one unit. Items without a sell value
// sell for half their value before the shop's multiplier.
func (s Shop) SellPrice(it Item) int {
	base := float64(it.SellValue)
	if it.SellValue == 0 {
		base = float64(it.Value) * defaultSellRatio
	}
	return int(math.Floor(base * multiplier(s.SellMultiplier)))
}

// Offer returns the stock entry for itemID.
func (s Shop) Offer(itemID string) (ShopItem, bool) {
	for _, si := range s.Items {
		if si.ItemID == itemID {
			return si, true
		}
	}
	return ShopItem{}, false
}
