// Package attack models the attack entries on a character sheet. Attacks are
// either user-authored or synthesized from an equipped weapon.
package attack

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// WeaponPrefix prefixes the id of every weapon-derived attack.
const WeaponPrefix = "attack_weapon_"

// DefaultActionType is the action economy slot of a synthesized attack.
const DefaultActionType = "action"

// Attack is one row of the attacks table.
//
// Invariant: WeaponID != "" iff the attack was synthesized from an inventory weapon,
// in which case ID == WeaponAttackID(WeaponID).
type Attack struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name"`
	Attribute      ability.ID `json:"attribute" yaml:"attribute"`
	Damage         string     `json:"damage" yaml:"damage"`
	DamageType     string     `json:"damageType" yaml:"damage_type"`
	HitBonus       int        `json:"hitBonus" yaml:"hit_bonus"`
	ActionType     string     `json:"actionType" yaml:"action_type"`
	UsesAmmunition bool       `json:"usesAmmunition" yaml:"uses_ammunition"`
	AmmunitionCost int        `json:"ammunitionCost" yaml:"ammunition_cost"`
	WeaponID       string     `json:"weaponId,omitempty" yaml:"weapon_id,omitempty"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// WeaponAttackID returns the deterministic id of the attack synthesized for itemID.
func WeaponAttackID(itemID string) string {
	return WeaponPrefix + itemID
}

// FromWeapon synthesizes the attack granted by equipping w. Only melee weapons
// use strength; ranged and unclassified weapons use dexterity.
//
// Precondition: w.Type == inventory.TypeWeapon.
// Postcondition: result.WeaponID == w.ID; result.ID == WeaponAttackID(w.ID).
func FromWeapon(w inventory.Item) Attack {
	attr := ability.Dexterity
	if w.IsMelee() {
		attr = ability.Strength
	}
	return Attack{
		ID:             WeaponAttackID(w.ID),
		Name:           w.Name,
		Attribute:      attr,
		Damage:         w.DamageOrDefault(),
		DamageType:     w.DamageTypeOrDefault(),
		HitBonus:       0,
		ActionType:     DefaultActionType,
		UsesAmmunition: w.IsRanged(),
		AmmunitionCost: 1,
		WeaponID:       w.ID,
		Description:    w.Description,
	}
}

// New returns a user attack with a fresh uuid and the default action type
// when actionType is empty.
func New(name string, attr ability.ID, damage, damageType string, hitBonus int, actionType string) Attack {
	if actionType == "" {
		actionType = DefaultActionType
	}
	return Attack{
		ID:         uuid.New().String(),
		Name:       name,
		Attribute:  attr,
		Damage:     damage,
		DamageType: damageType,
		HitBonus:   hitBonus,
		ActionType: actionType,
	}
}

// FromWeaponItem reports whether a is derived from an inventory weapon.
func (a Attack) FromWeaponItem() bool {
	return a.WeaponID != ""
}
