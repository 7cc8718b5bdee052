// Package inventory defines the polymorphic inventory item, the armor class
// calculator that reads equipped items, the YAML item catalog, and currency display.
package inventory

import (
	"strings"

	"github.com/cory-johannsen/charsheet/internal/game/limb"
)

// Type discriminates the four inventory item kinds.
type Type string

const (
	// TypeArmor is wearable body armor or an armor-typed shield.
	TypeArmor Type = "armor"
	// TypeWeapon is a melee or ranged weapon.
	TypeWeapon Type = "weapon"
	// TypeAmmunition is ammunition consumed by ranged attacks.
	TypeAmmunition Type = "ammunition"
	// TypeItem is any other gear.
	TypeItem Type = "item"
)

// validTypes is the set of legal item types.
var validTypes = map[Type]bool{
	TypeArmor:      true,
	TypeWeapon:     true,
	TypeAmmunition: true,
	TypeItem:       true,
}

// ValidType reports whether t is one of the four item types.
func ValidType(t Type) bool { return validTypes[t] }

// ArmorProps holds the armor-only fields of an Item.
type ArmorProps struct {
	BaseAC      int  `json:"baseAC" yaml:"base_ac"`
	DexModifier bool `json:"dexModifier" yaml:"dex_modifier"`
	// MaxDexModifier caps the applied dexterity modifier; nil means uncapped.
	MaxDexModifier *int `json:"maxDexModifier,omitempty" yaml:"max_dex_modifier,omitempty"`
	// LimbACs is the per-limb armor class granted while equipped.
	LimbACs map[limb.ID]int `json:"limbACs,omitempty" yaml:"limb_acs,omitempty"`
}

// Item is one inventory entry. Armor and Weapon are populated according to Type.
type Item struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Type        Type    `json:"type" yaml:"type"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Quantity    int     `json:"quantity" yaml:"quantity"`
	Weight      float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
	Equipped    bool    `json:"equipped" yaml:"equipped"`
	// IsShield marks an item as a shield without relying on its name.
	IsShield bool         `json:"isShield,omitempty" yaml:"is_shield,omitempty"`
	Armor    *ArmorProps  `json:"armor,omitempty" yaml:"armor,omitempty"`
	Weapon   *WeaponProps `json:"weapon,omitempty" yaml:"weapon,omitempty"`
}

// shieldNameTriggers are the name substrings that mark an item as a shield.
var shieldNameTriggers = []string{"щит", "shield"}

// Shield reports whether the item counts as a shield: either flagged IsShield or
// named with one of the case-insensitive triggers "щит" or "shield".
func (i Item) Shield() bool {
	if i.IsShield {
		return true
	}
	name := strings.ToLower(i.Name)
	for _, trigger := range shieldNameTriggers {
		if strings.Contains(name, trigger) {
			return true
		}
	}
	return false
}

// BodyArmor reports whether the item is armor worn on the body, which excludes
// armor-typed shields. At most one body armor may be equipped at a time.
func (i Item) BodyArmor() bool {
	return i.Type == TypeArmor && !i.Shield()
}

// Clone returns a deep copy of i.
func (i Item) Clone() Item {
	if i.Armor != nil {
		a := *i.Armor
		if a.MaxDexModifier != nil {
			v := *a.MaxDexModifier
			a.MaxDexModifier = &v
		}
		if a.LimbACs != nil {
			m := make(map[limb.ID]int, len(a.LimbACs))
			for k, v := range a.LimbACs {
				m[k] = v
			}
			a.LimbACs = m
		}
		i.Armor = &a
	}
	if i.Weapon != nil {
		w := *i.Weapon
		i.Weapon = &w
	}
	return i
}

// Find returns the item with id and whether it exists.
func Find(items []Item, id string) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// CloneAll returns a deep copy of items.
func CloneAll(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
