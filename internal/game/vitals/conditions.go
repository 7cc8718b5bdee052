package vitals

import (
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
)

// AddCondition adds id to the condition set. A present id returns c unchanged.
func AddCondition(c *character.Character, id condition.ID) (*character.Character, bool) {
	set, changed := condition.Add(c.Conditions, id)
	if !changed {
		return c, false
	}
	out := c.Clone()
	out.Conditions = set
	return out, true
}

// RemoveCondition removes id from the condition set.
func RemoveCondition(c *character.Character, id condition.ID) (*character.Character, bool) {
	set, changed := condition.Remove(c.Conditions, id)
	if !changed {
		return c, false
	}
	out := c.Clone()
	out.Conditions = set
	return out, true
}

// SetConditions replaces the condition set with ids, dropping duplicates.
func SetConditions(c *character.Character, ids []condition.ID) *character.Character {
	out := c.Clone()
	out.Conditions = condition.Dedupe(ids)
	return out
}

// AddResistance appends a new resistance against damageType with a fresh id.
func AddResistance(c *character.Character, damageType string, level condition.Level) (*character.Character, condition.Resistance) {
	r := condition.NewResistance(damageType, level)
	out := c.Clone()
	out.Resistances = condition.UpsertResistance(out.Resistances, r)
	return out, r
}

// UpdateResistance replaces the resistance with r.ID. Unknown ids and invalid
// levels return c unchanged.
func UpdateResistance(c *character.Character, r condition.Resistance) (*character.Character, bool) {
	found := false
	for _, v := range c.Resistances {
		if v.ID == r.ID {
			found = true
			break
		}
	}
	if !found || !condition.ValidLevel(r.Level) {
		return c, false
	}
	out := c.Clone()
	out.Resistances = condition.UpsertResistance(out.Resistances, r)
	return out, true
}

// RemoveResistance deletes the resistance with id.
func RemoveResistance(c *character.Character, id string) (*character.Character, bool) {
	list, ok := condition.RemoveResistance(c.Resistances, id)
	if !ok {
		return c, false
	}
	out := c.Clone()
	out.Resistances = list
	return out, true
}

// ApplyTypedDamage scales amount by the character's resistance to damageType
// before applying it with ApplyDamage.
func ApplyTypedDamage(c *character.Character, amount int, damageType string) (*character.Character, Delta[Health]) {
	if r, ok := condition.ForType(c.Resistances, damageType); ok {
		amount = r.Scale(amount)
	}
	return ApplyDamage(c, amount)
}
