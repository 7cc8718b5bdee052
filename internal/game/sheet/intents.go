package sheet

import (
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/equipment"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/resource"
	"github.com/cory-johannsen/charsheet/internal/game/vitals"
)

// Equip equips itemID.
func (s *Session) Equip(itemID string) *character.Character {
	return s.apply("equip", func(c *character.Character) *character.Character {
		return equipment.Equip(c, itemID)
	})
}

// Unequip unequips itemID.
func (s *Session) Unequip(itemID string) *character.Character {
	return s.apply("unequip", func(c *character.Character) *character.Character {
		return equipment.Unequip(c, itemID)
	})
}

// ToggleEquip flips the equipped state of itemID.
func (s *Session) ToggleEquip(itemID string) *character.Character {
	return s.apply("toggle_equip", func(c *character.Character) *character.Character {
		return equipment.Toggle(c, itemID)
	})
}

// AddItem adds it to the inventory and returns the stored item.
func (s *Session) AddItem(it inventory.Item) (inventory.Item, bool) {
	var stored inventory.Item
	var ok bool
	s.apply("add_item", func(c *character.Character) *character.Character {
		var out *character.Character
		out, stored, ok = equipment.AddItem(c, it)
		return out
	})
	return stored, ok
}

// AddFromCatalog instantiates templateID from the configured catalog.
func (s *Session) AddFromCatalog(templateID string) (inventory.Item, error) {
	if s.deps.Catalog == nil {
		return inventory.Item{}, ErrNoCatalog
	}
	var stored inventory.Item
	var ok bool
	s.apply("add_from_catalog", func(c *character.Character) *character.Character {
		var out *character.Character
		out, stored, ok = equipment.AddFromCatalog(c, s.deps.Catalog, templateID)
		return out
	})
	if !ok {
		return inventory.Item{}, fmt.Errorf("catalog template %q not found", templateID)
	}
	return stored, nil
}

// UpdateItem replaces the item with it.ID.
func (s *Session) UpdateItem(it inventory.Item) *character.Character {
	return s.apply("update_item", func(c *character.Character) *character.Character {
		return equipment.UpdateItem(c, it)
	})
}

// RemoveItem deletes itemID from the inventory.
func (s *Session) RemoveItem(itemID string) *character.Character {
	return s.apply("remove_item", func(c *character.Character) *character.Character {
		return equipment.RemoveItem(c, itemID)
	})
}

// ToggleSkillProficiency flips proficiency of skillID.
func (s *Session) ToggleSkillProficiency(skillID string) *character.Character {
	return s.apply("toggle_skill_proficiency", func(c *character.Character) *character.Character {
		return character.ToggleSkillProficiency(c, skillID)
	})
}

// ToggleSkillExpertise flips expertise of skillID.
func (s *Session) ToggleSkillExpertise(skillID string) *character.Character {
	return s.apply("toggle_skill_expertise", func(c *character.Character) *character.Character {
		return character.ToggleSkillExpertise(c, skillID)
	})
}

// ToggleSavingThrow flips the saving throw proficiency of attr.
func (s *Session) ToggleSavingThrow(attr ability.ID) *character.Character {
	return s.apply("toggle_saving_throw", func(c *character.Character) *character.Character {
		return character.ToggleSavingThrow(c, attr)
	})
}

// SetAttribute replaces the score of attr. A dexterity change refreshes an
// automatic armor class.
func (s *Session) SetAttribute(attr ability.ID, score int) *character.Character {
	return s.apply("set_attribute", func(c *character.Character) *character.Character {
		out := character.SetAttribute(c, attr, score)
		if out != c && attr == ability.Dexterity && out.ArmorClass.IsAuto() {
			out = character.ResetArmorClass(out)
		}
		return out
	})
}

// SetAttributeBonus replaces the flat bonus of attr.
func (s *Session) SetAttributeBonus(attr ability.ID, bonus int) *character.Character {
	return s.apply("set_attribute_bonus", func(c *character.Character) *character.Character {
		return character.SetAttributeBonus(c, attr, bonus)
	})
}

// ApplyExperience stores xp and the confirmed level.
func (s *Session) ApplyExperience(xp, level int) *character.Character {
	return s.apply("apply_experience", func(c *character.Character) *character.Character {
		return character.ApplyExperience(c, s.deps.Table, xp, level)
	})
}

// GainExperience adds delta experience. In automatic level mode the level
// follows the table; in manual mode it is kept.
func (s *Session) GainExperience(delta int) *character.Character {
	return s.apply("gain_experience", func(c *character.Character) *character.Character {
		xp := max(c.Experience+delta, 0)
		level := c.LevelValue()
		if c.Level.IsAuto() {
			level = s.deps.Table.LevelForExperience(xp)
		}
		return character.ApplyExperience(c, s.deps.Table, xp, level)
	})
}

// SetArmorClass pins the armor class.
func (s *Session) SetArmorClass(value int) *character.Character {
	return s.apply("set_armor_class", func(c *character.Character) *character.Character {
		return character.SetArmorClass(c, value)
	})
}

// ResetArmorClass returns the armor class to automatic mode.
func (s *Session) ResetArmorClass() *character.Character {
	return s.apply("reset_armor_class", character.ResetArmorClass)
}

// UpdateHealth replaces the health pool.
func (s *Session) UpdateHealth(current, maxHP, temp, bonus int) vitals.Delta[vitals.Health] {
	var d vitals.Delta[vitals.Health]
	s.apply("update_health", func(c *character.Character) *character.Character {
		var out *character.Character
		out, d = vitals.UpdateHealth(c, current, maxHP, temp, bonus)
		return out
	})
	return d
}

// Damage applies untyped damage.
func (s *Session) Damage(amount int) vitals.Delta[vitals.Health] {
	return s.DamageTyped(amount, "")
}

// DamageTyped applies damage scaled by any resistance to damageType.
func (s *Session) DamageTyped(amount int, damageType string) vitals.Delta[vitals.Health] {
	var d vitals.Delta[vitals.Health]
	s.apply("damage", func(c *character.Character) *character.Character {
		var out *character.Character
		out, d = vitals.ApplyTypedDamage(c, amount, damageType)
		return out
	})
	return d
}

// Heal restores hit points.
func (s *Session) Heal(amount int) vitals.Delta[vitals.Health] {
	var d vitals.Delta[vitals.Health]
	s.apply("heal", func(c *character.Character) *character.Character {
		var out *character.Character
		out, d = vitals.Heal(c, amount)
		return out
	})
	return d
}

// GrantTempHP grants temporary hit points.
func (s *Session) GrantTempHP(amount int) vitals.Delta[vitals.Health] {
	var d vitals.Delta[vitals.Health]
	s.apply("grant_temp_hp", func(c *character.Character) *character.Character {
		var out *character.Character
		out, d = vitals.GrantTempHP(c, amount)
		return out
	})
	return d
}

// SetSanity stores value clamped to the sanity formula's cap.
func (s *Session) SetSanity(value int) (vitals.Delta[int], error) {
	var d vitals.Delta[int]
	var capErr error
	s.apply("set_sanity", func(c *character.Character) *character.Character {
		maxSanity, err := s.maxSanityFor(c)
		if err != nil {
			capErr = err
			return c
		}
		var out *character.Character
		out, d = vitals.UpdateSanity(c, value, maxSanity)
		return out
	})
	if capErr != nil {
		return d, fmt.Errorf("sanity cap: %w", capErr)
	}
	return d, nil
}

// UpdateCurrency replaces the purse.
func (s *Session) UpdateCurrency(purse inventory.Currency) vitals.Delta[inventory.Currency] {
	var d vitals.Delta[inventory.Currency]
	s.apply("update_currency", func(c *character.Character) *character.Character {
		var out *character.Character
		out, d = vitals.UpdateCurrency(c, purse)
		return out
	})
	return d
}

// AddCondition adds id. With a registry configured, unknown ids are rejected.
func (s *Session) AddCondition(id condition.ID) error {
	if s.deps.Conditions != nil && !s.deps.Conditions.Known(id) {
		return fmt.Errorf("%w: %q", ErrUnknownCondition, id)
	}
	s.apply("add_condition", func(c *character.Character) *character.Character {
		out, _ := vitals.AddCondition(c, id)
		return out
	})
	return nil
}

// RemoveCondition removes id.
func (s *Session) RemoveCondition(id condition.ID) *character.Character {
	return s.apply("remove_condition", func(c *character.Character) *character.Character {
		out, _ := vitals.RemoveCondition(c, id)
		return out
	})
}

// SetConditions replaces the condition set.
func (s *Session) SetConditions(ids []condition.ID) error {
	if s.deps.Conditions != nil {
		for _, id := range ids {
			if !s.deps.Conditions.Known(id) {
				return fmt.Errorf("%w: %q", ErrUnknownCondition, id)
			}
		}
	}
	s.apply("set_conditions", func(c *character.Character) *character.Character {
		return vitals.SetConditions(c, ids)
	})
	return nil
}

// AddResistance records a new resistance.
func (s *Session) AddResistance(damageType string, level condition.Level) condition.Resistance {
	var r condition.Resistance
	s.apply("add_resistance", func(c *character.Character) *character.Character {
		var out *character.Character
		out, r = vitals.AddResistance(c, damageType, level)
		return out
	})
	return r
}

// UpdateResistance replaces the resistance with r.ID.
func (s *Session) UpdateResistance(r condition.Resistance) *character.Character {
	return s.apply("update_resistance", func(c *character.Character) *character.Character {
		out, _ := vitals.UpdateResistance(c, r)
		return out
	})
}

// RemoveResistance deletes the resistance with id.
func (s *Session) RemoveResistance(id string) *character.Character {
	return s.apply("remove_resistance", func(c *character.Character) *character.Character {
		out, _ := vitals.RemoveResistance(c, id)
		return out
	})
}

// CreateResource adds a new resource and returns it.
func (s *Session) CreateResource(name, iconName string, maxValue int, description string, initial int) resource.Resource {
	r := resource.New(name, iconName, maxValue, description, initial)
	s.apply("create_resource", func(c *character.Character) *character.Character {
		out := c.Clone()
		out.Resources = resource.Create(out.Resources, r)
		return out
	})
	return r
}

// UpdateResource patches the resource with id.
func (s *Session) UpdateResource(id string, p resource.Patch) *character.Character {
	return s.resources("update_resource", func(list []resource.Resource) ([]resource.Resource, bool) {
		return resource.Update(list, id, p)
	})
}

// DeleteResource removes the resource with id.
func (s *Session) DeleteResource(id string) *character.Character {
	return s.resources("delete_resource", func(list []resource.Resource) ([]resource.Resource, bool) {
		return resource.Delete(list, id)
	})
}

// SpendResource subtracts n from the resource with id.
func (s *Session) SpendResource(id string, n int) *character.Character {
	return s.resources("spend_resource", func(list []resource.Resource) ([]resource.Resource, bool) {
		return resource.Spend(list, id, n)
	})
}

// RestoreResource adds n to the resource with id.
func (s *Session) RestoreResource(id string, n int) *character.Character {
	return s.resources("restore_resource", func(list []resource.Resource) ([]resource.Resource, bool) {
		return resource.Restore(list, id, n)
	})
}

// RefillResource sets the resource with id to its maximum.
func (s *Session) RefillResource(id string) *character.Character {
	return s.resources("refill_resource", func(list []resource.Resource) ([]resource.Resource, bool) {
		return resource.Refill(list, id)
	})
}

// LongRest refills every resource, restores current hit points to the
// effective maximum and every limb to full.
func (s *Session) LongRest() *character.Character {
	return s.apply("long_rest", func(c *character.Character) *character.Character {
		out := c.Clone()
		out.Resources = resource.RefillAll(out.Resources)
		out.CurrentHP = max(out.CurrentHP, out.EffectiveMaxHP())
		for i := range out.Limbs {
			out.Limbs[i].CurrentHP = out.Limbs[i].MaxHP
		}
		return out
	})
}

func (s *Session) resources(intent string, fn func([]resource.Resource) ([]resource.Resource, bool)) *character.Character {
	return s.apply(intent, func(c *character.Character) *character.Character {
		list, ok := fn(c.Resources)
		if !ok {
			return c
		}
		out := c.Clone()
		out.Resources = list
		return out
	})
}

// DamageLimb subtracts amount from the limb with id.
func (s *Session) DamageLimb(id limb.ID, amount int) *character.Character {
	return s.limb("damage_limb", id, func(l limb.Limb) limb.Limb { return limb.ApplyDamage(l, amount) })
}

// HealLimb adds amount to the limb with id.
func (s *Session) HealLimb(id limb.ID, amount int) *character.Character {
	return s.limb("heal_limb", id, func(l limb.Limb) limb.Limb { return limb.ApplyHeal(l, amount) })
}

// SetLimbMaxHP replaces the maximum hit points of the limb with id.
func (s *Session) SetLimbMaxHP(id limb.ID, maxHP int) *character.Character {
	return s.limb("set_limb_max_hp", id, func(l limb.Limb) limb.Limb { return limb.SetMaxHP(l, maxHP) })
}

// SetLimbAC replaces the armor class of the limb with id.
func (s *Session) SetLimbAC(id limb.ID, ac int) *character.Character {
	return s.limb("set_limb_ac", id, func(l limb.Limb) limb.Limb { return limb.SetAC(l, ac) })
}

// ApplySuggestedLimbHP sets every limb to the suggested maximum derived from
// total hit points and constitution.
func (s *Session) ApplySuggestedLimbHP() *character.Character {
	return s.apply("apply_suggested_limb_hp", func(c *character.Character) *character.Character {
		out := c.Clone()
		out.Limbs = limb.ApplySuggestedMaxHP(out.Limbs, out.MaxHP, out.Score(ability.Constitution))
		return out
	})
}

func (s *Session) limb(intent string, id limb.ID, fn func(limb.Limb) limb.Limb) *character.Character {
	return s.apply(intent, func(c *character.Character) *character.Character {
		list, ok := limb.Update(c.Limbs, id, fn)
		if !ok {
			return c
		}
		out := c.Clone()
		out.Limbs = list
		return out
	})
}

// AddAttack adds a user attack.
func (s *Session) AddAttack(a attack.Attack) *character.Character {
	return s.attacks("add_attack", func(list []attack.Attack) ([]attack.Attack, bool) {
		return attack.Add(list, a)
	})
}

// UpdateAttack replaces the attack with a.ID.
func (s *Session) UpdateAttack(a attack.Attack) *character.Character {
	return s.attacks("update_attack", func(list []attack.Attack) ([]attack.Attack, bool) {
		return attack.Update(list, a)
	})
}

// DeleteAttack removes a user attack. Weapon attacks are removed by unequipping.
func (s *Session) DeleteAttack(id string) *character.Character {
	return s.attacks("delete_attack", func(list []attack.Attack) ([]attack.Attack, bool) {
		return attack.Delete(list, id)
	})
}

func (s *Session) attacks(intent string, fn func([]attack.Attack) ([]attack.Attack, bool)) *character.Character {
	return s.apply(intent, func(c *character.Character) *character.Character {
		list, ok := fn(c.Attacks)
		if !ok {
			return c
		}
		out := c.Clone()
		out.Attacks = list
		return out
	})
}
