package inventory

import (
	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
)

// Armor class constants.
const (
	UnarmoredBaseAC = 10
	ShieldBonus     = 2
)

// EquippedBodyArmor returns the first equipped body armor in items.
func EquippedBodyArmor(items []Item) (Item, bool) {
	for _, it := range items {
		if it.Equipped && it.BodyArmor() {
			return it, true
		}
	}
	return Item{}, false
}

// ShieldEquipped reports whether any equipped item is a shield.
func ShieldEquipped(items []Item) bool {
	for _, it := range items {
		if it.Equipped && it.Shield() {
			return true
		}
	}
	return false
}

// ACBreakdown itemizes the terms of ComputeAC.
type ACBreakdown struct {
	Base      int    `json:"base" yaml:"base"`
	Dex       int    `json:"dex" yaml:"dex"`
	Shield    int    `json:"shield" yaml:"shield"`
	ArmorID   string `json:"armorId,omitempty" yaml:"armor_id,omitempty"`
	ArmorName string `json:"armorName,omitempty" yaml:"armor_name,omitempty"`
}

// Total returns Base + Dex + Shield.
func (b ACBreakdown) Total() int {
	return b.Base + b.Dex + b.Shield
}

// Breakdown computes the armor class terms from the equipped items and the raw
// dexterity score.
//
// Postcondition: with no equipped body armor, Base == 10 and Dex == the dexterity
// modifier; with armor, Base is its BaseAC and Dex is 0 when the armor ignores
// dexterity or min(mod, MaxDexModifier) when capped.
func Breakdown(items []Item, dexScore int) ACBreakdown {
	dexMod := ability.Modifier(dexScore, 0)
	b := ACBreakdown{Base: UnarmoredBaseAC, Dex: dexMod}

	if armor, ok := EquippedBodyArmor(items); ok {
		b.ArmorID = armor.ID
		b.ArmorName = armor.Name
		props := ArmorProps{}
		if armor.Armor != nil {
			props = *armor.Armor
		}
		b.Base = props.BaseAC
		switch {
		case !props.DexModifier:
			b.Dex = 0
		case props.MaxDexModifier != nil:
			b.Dex = min(dexMod, *props.MaxDexModifier)
		}
	}
	if ShieldEquipped(items) {
		b.Shield = ShieldBonus
	}
	return b
}

// ComputeAC returns the single armor-class value for the equipped items.
func ComputeAC(items []Item, dexScore int) int {
	return Breakdown(items, dexScore).Total()
}

// DistributeLimbAC sets each limb's AC to the armor's LimbACs entry, 0 when absent.
//
// Postcondition: limbs is not modified; the result has the same length and order.
func DistributeLimbAC(armor Item, limbs []limb.Limb) []limb.Limb {
	var acs map[limb.ID]int
	if armor.Armor != nil {
		acs = armor.Armor.LimbACs
	}
	out := make([]limb.Limb, len(limbs))
	for i, l := range limbs {
		l.AC = acs[l.ID]
		out[i] = l
	}
	return out
}

// ResetLimbAC sets every limb's AC to 0. Previous values are not remembered.
func ResetLimbAC(limbs []limb.Limb) []limb.Limb {
	out := make([]limb.Limb, len(limbs))
	for i, l := range limbs {
		l.AC = 0
		out[i] = l
	}
	return out
}
