// Package equipment is the state machine that keeps a character's inventory
// flags, loadout index, weapon attacks, limb AC and global AC consistent
// across equip and unequip transitions.
//
// Every operation is total: an unknown item id returns the input snapshot
// unchanged (the same pointer) and never an error.
package equipment

import (
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// Equip equips itemID.
//
// Body armor unequips every other body armor, redistributes limb AC and
// recomputes global AC. Weapons gain their synthesized attack once. Shields
// recompute AC. Plain items only flip their flag.
//
// Postcondition: at most one body armor is equipped in the result.
func Equip(c *character.Character, itemID string) *character.Character {
	idx := indexOf(c.Inventory, itemID)
	if idx < 0 {
		return c
	}
	out := c.Clone()
	it := &out.Inventory[idx]
	it.Equipped = true

	switch {
	case it.BodyArmor():
		for i := range out.Inventory {
			if i != idx && out.Inventory[i].BodyArmor() {
				out.Inventory[i].Equipped = false
			}
		}
		out.Limbs = inventory.DistributeLimbAC(*it, out.Limbs)
		out.Loadout.ArmorID = it.ID
	case it.Type == inventory.TypeWeapon:
		out.Attacks, _ = attack.AddWeapon(out.Attacks, attack.FromWeapon(*it))
		if !slices.Contains(out.Loadout.WeaponIDs, it.ID) {
			out.Loadout.WeaponIDs = append(out.Loadout.WeaponIDs, it.ID)
		}
	}
	if affectsAC(*it) {
		refreshAC(out)
	}
	return out
}

// Unequip unequips itemID. Items that are not equipped are left alone and c is returned.
//
// Body armor resets every limb AC to 0. Weapons drop every attack linked to them.
func Unequip(c *character.Character, itemID string) *character.Character {
	idx := indexOf(c.Inventory, itemID)
	if idx < 0 || !c.Inventory[idx].Equipped {
		return c
	}
	out := c.Clone()
	it := &out.Inventory[idx]
	it.Equipped = false

	switch {
	case it.BodyArmor():
		out.Limbs = inventory.ResetLimbAC(out.Limbs)
		if out.Loadout.ArmorID == it.ID {
			out.Loadout.ArmorID = ""
		}
	case it.Type == inventory.TypeWeapon:
		out.Attacks, _ = attack.RemoveWeapon(out.Attacks, it.ID)
		out.Loadout.WeaponIDs = slices.DeleteFunc(out.Loadout.WeaponIDs, func(id string) bool { return id == it.ID })
	}
	if affectsAC(*it) {
		refreshAC(out)
	}
	return out
}

// Toggle equips itemID when it is unequipped and unequips it otherwise.
func Toggle(c *character.Character, itemID string) *character.Character {
	it, ok := inventory.Find(c.Inventory, itemID)
	if !ok {
		return c
	}
	if it.Equipped {
		return Unequip(c, itemID)
	}
	return Equip(c, itemID)
}

// Reindex rebuilds the loadout from item flags, for snapshots that arrive from
// outside the mutator such as an import. Stored weapon order and the stored
// armor survive while their items are still equipped; other equipped items
// follow in inventory order. Flags are left as found, so a sheet with two
// equipped body armors stays inconsistent. Missing weapon attacks are not
// resynthesized.
func Reindex(c *character.Character) *character.Character {
	out := c.Clone()
	armor := map[string]bool{}
	weapon := map[string]bool{}
	var firstArmor string
	var inventoryWeapons []string
	for _, it := range out.Inventory {
		if !it.Equipped {
			continue
		}
		switch {
		case it.BodyArmor():
			armor[it.ID] = true
			if firstArmor == "" {
				firstArmor = it.ID
			}
		case it.Type == inventory.TypeWeapon:
			weapon[it.ID] = true
			inventoryWeapons = append(inventoryWeapons, it.ID)
		}
	}

	var lo character.Loadout
	if armor[c.Loadout.ArmorID] {
		lo.ArmorID = c.Loadout.ArmorID
	} else {
		lo.ArmorID = firstArmor
	}
	for _, id := range c.Loadout.WeaponIDs {
		if weapon[id] && !slices.Contains(lo.WeaponIDs, id) {
			lo.WeaponIDs = append(lo.WeaponIDs, id)
		}
	}
	for _, id := range inventoryWeapons {
		if !slices.Contains(lo.WeaponIDs, id) {
			lo.WeaponIDs = append(lo.WeaponIDs, id)
		}
	}
	out.Loadout = lo
	return out
}

// Consistent reports whether the loadout index, item flags and weapon attacks agree.
func Consistent(c *character.Character) bool {
	armorID := ""
	var weapons []string
	for _, it := range c.Inventory {
		if !it.Equipped {
			continue
		}
		switch {
		case it.BodyArmor():
			if armorID != "" {
				return false
			}
			armorID = it.ID
		case it.Type == inventory.TypeWeapon:
			weapons = append(weapons, it.ID)
			if !attack.HasWeapon(c.Attacks, it.ID) {
				return false
			}
		}
	}
	if armorID != c.Loadout.ArmorID || len(weapons) != len(c.Loadout.WeaponIDs) {
		return false
	}
	for _, id := range weapons {
		if !slices.Contains(c.Loadout.WeaponIDs, id) {
			return false
		}
	}
	return true
}

func affectsAC(it inventory.Item) bool {
	return it.Type == inventory.TypeArmor || it.Shield()
}

// refreshAC writes the computed AC into out unless the user pinned it.
// out must be a fresh clone owned by the caller.
func refreshAC(out *character.Character) {
	if out.ArmorClass.IsAuto() {
		out.ArmorClass.Value = out.ComputedAC()
	}
}

func indexOf(items []inventory.Item, id string) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}
