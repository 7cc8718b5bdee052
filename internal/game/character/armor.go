package character

import (
	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// ComputedAC returns the armor class derived from the equipped inventory and
// the raw dexterity score. The stored ArmorClass may differ when it is manual.
func (c *Character) ComputedAC() int {
	return inventory.ComputeAC(c.Inventory, c.Score(ability.Dexterity))
}

// ACBreakdown itemizes ComputedAC.
func (c *Character) ACBreakdown() inventory.ACBreakdown {
	return inventory.Breakdown(c.Inventory, c.Score(ability.Dexterity))
}

// SetArmorClass pins the armor class to value. Equipment changes no longer
// overwrite it until ResetArmorClass is called.
func SetArmorClass(c *Character, value int) *Character {
	out := c.Clone()
	out.ArmorClass = Tracked{Mode: Manual, Value: value}
	return out
}

// ResetArmorClass returns the armor class to automatic mode and stores the computed value.
func ResetArmorClass(c *Character) *Character {
	out := c.Clone()
	out.ArmorClass = Tracked{Mode: Auto, Value: out.ComputedAC()}
	return out
}

// SetLevelMode chooses whether hosts follow the suggested level on experience
// gain (Auto) or keep the user's chosen level (Manual).
func SetLevelMode(c *Character, mode Mode) *Character {
	if mode != Auto && mode != Manual {
		return c
	}
	out := c.Clone()
	out.Level.Mode = mode
	return out
}
