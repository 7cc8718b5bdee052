package equipment

import (
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// AddItem appends it to the inventory. An empty id is replaced with a uuid; a
// colliding id returns c unchanged. An item that arrives flagged equipped is
// added unequipped and then run through Equip so derived state follows.
//
// Postcondition: added reports whether it was stored; stored is the item as kept.
func AddItem(c *character.Character, it inventory.Item) (out *character.Character, stored inventory.Item, added bool) {
	if it.ID == "" {
		it.ID = uuid.New().String()
	}
	if indexOf(c.Inventory, it.ID) >= 0 || !inventory.ValidType(it.Type) {
		return c, inventory.Item{}, false
	}
	if it.Quantity < 0 {
		it.Quantity = 0
	}
	wantEquipped := it.Equipped
	it.Equipped = false

	out = c.Clone()
	out.Inventory = append(out.Inventory, it.Clone())
	if wantEquipped {
		out = Equip(out, it.ID)
	}
	stored, _ = inventory.Find(out.Inventory, it.ID)
	return out, stored, true
}

// AddFromCatalog instantiates templateID from cat and adds it unequipped.
func AddFromCatalog(c *character.Character, cat *inventory.Catalog, templateID string) (*character.Character, inventory.Item, bool) {
	it, ok := cat.Instantiate(templateID)
	if !ok {
		return c, inventory.Item{}, false
	}
	return AddItem(c, it)
}

// UpdateItem replaces the stored item with it.ID. The stored equipped state is
// kept: an equipped item is unequipped, replaced and equipped again so limb
// AC, global AC and its weapon attack reflect the new fields.
func UpdateItem(c *character.Character, it inventory.Item) *character.Character {
	idx := indexOf(c.Inventory, it.ID)
	if idx < 0 || !inventory.ValidType(it.Type) {
		return c
	}
	wasEquipped := c.Inventory[idx].Equipped
	out := Unequip(c, it.ID)
	if out == c {
		out = c.Clone()
	}
	it.Equipped = false
	it.Quantity = max(it.Quantity, 0)
	out.Inventory[idx] = it.Clone()
	if wasEquipped {
		out = Equip(out, it.ID)
	}
	return out
}

// AdjustQuantity adds delta to the item's quantity, flooring at 0.
func AdjustQuantity(c *character.Character, itemID string, delta int) *character.Character {
	idx := indexOf(c.Inventory, itemID)
	if idx < 0 {
		return c
	}
	out := c.Clone()
	out.Inventory[idx].Quantity = max(out.Inventory[idx].Quantity+delta, 0)
	return out
}

// RemoveItem deletes itemID, unequipping it first so no derived state points at it.
func RemoveItem(c *character.Character, itemID string) *character.Character {
	if indexOf(c.Inventory, itemID) < 0 {
		return c
	}
	out := Unequip(c, itemID)
	if out == c {
		out = c.Clone()
	}
	idx := indexOf(out.Inventory, itemID)
	out.Inventory = slices.Delete(out.Inventory, idx, idx+1)
	return out
}
