package sheet

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/equipment"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// ErrNoAmmunition is returned when an attack that uses ammunition finds no
// equipped ammunition with enough quantity.
var ErrNoAmmunition = errors.New("no ammunition equipped")

// AttackRoll is the outcome of RollAttack.
type AttackRoll struct {
	AttackID   string
	ToHit      dice.RollResult
	Damage     dice.RollResult
	DamageType string
	Crit       bool
	Fumble     bool
	// AmmunitionID is the item the shot was drawn from, if any.
	AmmunitionID string
}

// RollCheck rolls an ability check.
func (s *Session) RollCheck(attr ability.ID, mode dice.Mode) dice.RollResult {
	c := s.Character()
	return s.deps.Roller.Check("check:"+string(attr), c.CheckBonus(attr), mode)
}

// RollSave rolls a saving throw.
func (s *Session) RollSave(attr ability.ID, mode dice.Mode) dice.RollResult {
	c := s.Character()
	return s.deps.Roller.Check("save:"+string(attr), c.SaveBonus(attr), mode)
}

// RollSkill rolls a skill check. ok is false for an unknown skill.
func (s *Session) RollSkill(skillID string, mode dice.Mode) (dice.RollResult, bool) {
	c := s.Character()
	bonus, ok := c.SkillBonus(skillID)
	if !ok {
		return dice.RollResult{}, false
	}
	return s.deps.Roller.Check("skill:"+skillID, bonus, mode), true
}

// ToHitBonus is the attack roll bonus: attribute modifier, proficiency bonus
// and the attack's own hit bonus.
func ToHitBonus(c *character.Character, a attack.Attack) int {
	return c.CheckBonus(a.Attribute) + c.ProficiencyBonus + a.HitBonus
}

// RollAttack rolls to hit and damage for attackID. A natural 20 doubles the
// damage dice. Attacks that use ammunition consume AmmunitionCost from the
// first equipped ammunition item that can pay it.
func (s *Session) RollAttack(attackID string, mode dice.Mode) (AttackRoll, error) {
	c := s.Character()
	a, ok := attack.Find(c.Attacks, attackID)
	if !ok {
		return AttackRoll{}, fmt.Errorf("attack %q not found", attackID)
	}
	expr, err := dice.Parse(a.Damage)
	if err != nil {
		return AttackRoll{}, fmt.Errorf("attack %q: %w", attackID, err)
	}

	var ammoID string
	if a.UsesAmmunition {
		// Lookup and spend run under one lock.
		s.apply("spend_ammunition", func(cur *character.Character) *character.Character {
			ammo, ok := ammunitionFor(cur.Inventory, a.AmmunitionCost)
			if !ok {
				return cur
			}
			ammoID = ammo.ID
			return equipment.AdjustQuantity(cur, ammo.ID, -a.AmmunitionCost)
		})
		if ammoID == "" {
			return AttackRoll{}, ErrNoAmmunition
		}
	}

	res := AttackRoll{AttackID: a.ID, DamageType: a.DamageType, AmmunitionID: ammoID}
	res.ToHit = s.deps.Roller.Check("attack:"+a.Name, ToHitBonus(c, a), mode)
	res.Crit, res.Fumble = dice.Natural(res.ToHit)

	expr.Modifier += c.CheckBonus(a.Attribute)
	if res.Crit {
		expr.Count *= 2
		expr.KeepHighest *= 2
	}
	res.Damage, err = s.deps.Roller.RollExpr(expr.String())
	if err != nil {
		return AttackRoll{}, err
	}
	return res, nil
}

func ammunitionFor(items []inventory.Item, cost int) (inventory.Item, bool) {
	for _, it := range items {
		if it.Type == inventory.TypeAmmunition && it.Equipped && it.Quantity >= cost {
			return it, true
		}
	}
	return inventory.Item{}, false
}
