package character

import (
	"slices"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
)

// CheckBonus returns the ability check bonus for attr.
func (c *Character) CheckBonus(attr ability.ID) int {
	return ability.Modifier(c.Score(attr), c.Bonus(attr))
}

// HasSaveProficiency reports whether attr is in the saving throw set.
func (c *Character) HasSaveProficiency(attr ability.ID) bool {
	return slices.Contains(c.SavingThrowProficiencies, attr)
}

// SaveBonus returns the saving throw bonus for attr.
func (c *Character) SaveBonus(attr ability.ID) int {
	b := c.CheckBonus(attr)
	if c.HasSaveProficiency(attr) {
		b += c.ProficiencyBonus
	}
	return b
}

// SkillBonus returns the bonus for skillID. Expertise adds the proficiency
// bonus a second time on top of proficiency.
//
// Postcondition: ok is false and the bonus 0 when the skill is unknown.
func (c *Character) SkillBonus(skillID string) (bonus int, ok bool) {
	s, ok := c.FindSkill(skillID)
	if !ok {
		return 0, false
	}
	bonus = c.CheckBonus(s.Attribute)
	if s.Proficient {
		bonus += c.ProficiencyBonus
	}
	if s.Expertise {
		bonus += c.ProficiencyBonus
	}
	return bonus, true
}

// PassiveScore returns 10 plus the skill bonus, e.g. passive perception.
func (c *Character) PassiveScore(skillID string) int {
	b, _ := c.SkillBonus(skillID)
	return 10 + b
}

// ToggleSkillProficiency flips proficiency for skillID. Turning proficiency
// off also clears expertise.
//
// Postcondition: returns c itself when the skill is unknown.
func ToggleSkillProficiency(c *Character, skillID string) *Character {
	i := c.skillIndex(skillID)
	if i < 0 {
		return c
	}
	out := c.Clone()
	s := &out.Skills[i]
	s.Proficient = !s.Proficient
	if !s.Proficient {
		s.Expertise = false
	}
	return out
}

// ToggleSkillExpertise flips expertise for skillID. A skill without
// proficiency cannot gain expertise, so the call is a no-op returning c.
func ToggleSkillExpertise(c *Character, skillID string) *Character {
	i := c.skillIndex(skillID)
	if i < 0 || !c.Skills[i].Proficient {
		return c
	}
	out := c.Clone()
	out.Skills[i].Expertise = !out.Skills[i].Expertise
	return out
}

// ToggleSavingThrow adds attr to the saving throw set, or removes it if present.
//
// Postcondition: the set never holds duplicates; unknown attributes return c.
func ToggleSavingThrow(c *Character, attr ability.ID) *Character {
	if !ability.Valid(attr) {
		return c
	}
	out := c.Clone()
	if i := slices.Index(out.SavingThrowProficiencies, attr); i >= 0 {
		out.SavingThrowProficiencies = slices.Delete(out.SavingThrowProficiencies, i, i+1)
		return out
	}
	out.SavingThrowProficiencies = append(out.SavingThrowProficiencies, attr)
	return out
}

// SetAttribute replaces the raw score for attr.
func SetAttribute(c *Character, attr ability.ID, score int) *Character {
	if !ability.Valid(attr) {
		return c
	}
	out := c.Clone()
	if out.Attributes == nil {
		out.Attributes = make(map[ability.ID]int)
	}
	out.Attributes[attr] = score
	return out
}

// SetAttributeBonus replaces the flat bonus for attr.
func SetAttributeBonus(c *Character, attr ability.ID, bonus int) *Character {
	if !ability.Valid(attr) {
		return c
	}
	out := c.Clone()
	if out.AttributeBonuses == nil {
		out.AttributeBonuses = make(map[ability.ID]int)
	}
	out.AttributeBonuses[attr] = bonus
	return out
}

// ApplyExperience stores xp and the user-confirmed level, then recomputes the
// proficiency bonus from that level. The level is trusted, not derived from xp.
//
// Postcondition: result.Level.Value in [1, 20];
// result.ProficiencyBonus == table.ProficiencyBonus(result.Level.Value).
func ApplyExperience(c *Character, table *progression.Table, xp, level int) *Character {
	out := c.Clone()
	out.Experience = max(xp, 0)
	out.Level.Value = progression.ClampLevel(level)
	out.ProficiencyBonus = table.ProficiencyBonus(out.Level.Value)
	return out
}

// SuggestedLevel is the level the current experience qualifies for.
func (c *Character) SuggestedLevel(table *progression.Table) int {
	return table.LevelForExperience(c.Experience)
}

// Progress returns how far the character is into its stored level.
func (c *Character) Progress(table *progression.Table) progression.Progress {
	return table.ProgressInLevel(c.Experience, c.LevelValue())
}
