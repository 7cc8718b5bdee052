package sheet

import (
	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
	"github.com/cory-johannsen/charsheet/internal/game/resource"
)

// Report is the read-only derived surface of a character, as consumed by
// printable sheets and the CLI.
type Report struct {
	Name       string `yaml:"name"`
	Class      string `yaml:"class"`
	Race       string `yaml:"race"`
	Level      int    `yaml:"level"`
	LevelMode  string `yaml:"level_mode"`
	Experience int    `yaml:"experience"`

	Progress         progression.Progress `yaml:"progress"`
	CanLevelUp       bool                 `yaml:"can_level_up"`
	ProficiencyBonus int                  `yaml:"proficiency_bonus"`

	Abilities         []AbilityLine `yaml:"abilities"`
	Skills            []SkillLine   `yaml:"skills"`
	PassivePerception int           `yaml:"passive_perception"`

	ArmorClass     int                   `yaml:"armor_class"`
	ArmorClassMode string                `yaml:"armor_class_mode"`
	ComputedAC     inventory.ACBreakdown `yaml:"computed_ac"`

	CurrentHP  int `yaml:"current_hp"`
	MaxHP      int `yaml:"max_hp"`
	TempHP     int `yaml:"temp_hp"`
	MaxHPBonus int `yaml:"max_hp_bonus"`
	Sanity     int `yaml:"sanity"`

	Limbs       []LimbLine             `yaml:"limbs"`
	Resources   []resource.Resource    `yaml:"resources"`
	Attacks     []AttackLine           `yaml:"attacks"`
	Currency    string                 `yaml:"currency"`
	Conditions  []condition.ID         `yaml:"conditions"`
	Resistances []condition.Resistance `yaml:"resistances"`
}

// AbilityLine is one row of the abilities block.
type AbilityLine struct {
	ID             ability.ID `yaml:"id"`
	Short          string     `yaml:"short"`
	Score          int        `yaml:"score"`
	Bonus          int        `yaml:"bonus"`
	Modifier       int        `yaml:"modifier"`
	Save           int        `yaml:"save"`
	SaveProficient bool       `yaml:"save_proficient"`
}

// SkillLine is one row of the skills block.
type SkillLine struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Attribute  ability.ID `yaml:"attribute"`
	Bonus      int        `yaml:"bonus"`
	Proficient bool       `yaml:"proficient"`
	Expertise  bool       `yaml:"expertise"`
}

// LimbLine is one row of the limb table.
type LimbLine struct {
	ID          limb.ID   `yaml:"id"`
	Name        string    `yaml:"name"`
	AC          int       `yaml:"ac"`
	CurrentHP   int       `yaml:"current_hp"`
	MaxHP       int       `yaml:"max_hp"`
	Tier        limb.Tier `yaml:"tier"`
	Description string    `yaml:"description"`
}

// AttackLine is one row of the attacks table. Damage statistics are zero when
// the damage expression does not parse.
type AttackLine struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	ToHit         int     `yaml:"to_hit"`
	Damage        string  `yaml:"damage"`
	DamageType    string  `yaml:"damage_type"`
	AverageDamage float64 `yaml:"average_damage"`
	MinDamage     int     `yaml:"min_damage"`
	MaxDamage     int     `yaml:"max_damage"`
	FromWeapon    bool    `yaml:"from_weapon"`
}

// BuildReport derives the report for c. It never modifies c.
//
// Precondition: c and table are non-nil.
func BuildReport(c *character.Character, table *progression.Table) Report {
	r := Report{
		Name:              c.Name,
		Class:             c.Class,
		Race:              c.Race,
		Level:             c.LevelValue(),
		LevelMode:         modeName(c.Level),
		Experience:        c.Experience,
		Progress:          c.Progress(table),
		CanLevelUp:        table.CanLevelUp(c.Experience, c.LevelValue()),
		ProficiencyBonus:  c.ProficiencyBonus,
		ArmorClass:        c.ArmorClass.Value,
		ArmorClassMode:    modeName(c.ArmorClass),
		ComputedAC:        c.ACBreakdown(),
		CurrentHP:         c.CurrentHP,
		MaxHP:             c.MaxHP,
		TempHP:            c.TempHP,
		MaxHPBonus:        c.MaxHPBonus,
		Sanity:            c.Sanity,
		PassivePerception: c.PassiveScore("perception"),
		Resources:         append([]resource.Resource(nil), c.Resources...),
		Currency:          inventory.FormatCurrency(c.Currency),
		Conditions:        append([]condition.ID(nil), c.Conditions...),
		Resistances:       append([]condition.Resistance(nil), c.Resistances...),
	}

	for _, id := range ability.All {
		r.Abilities = append(r.Abilities, AbilityLine{
			ID:             id,
			Short:          ability.Short(id),
			Score:          c.Score(id),
			Bonus:          c.Bonus(id),
			Modifier:       c.CheckBonus(id),
			Save:           c.SaveBonus(id),
			SaveProficient: c.HasSaveProficiency(id),
		})
	}
	for _, s := range c.Skills {
		b, _ := c.SkillBonus(s.ID)
		r.Skills = append(r.Skills, SkillLine{
			ID: s.ID, Name: s.Name, Attribute: s.Attribute,
			Bonus: b, Proficient: s.Proficient, Expertise: s.Expertise,
		})
	}
	for _, l := range c.Limbs {
		tier := limb.InjuryTier(l)
		r.Limbs = append(r.Limbs, LimbLine{
			ID: l.ID, Name: l.Name, AC: l.AC, CurrentHP: l.CurrentHP, MaxHP: l.MaxHP,
			Tier: tier, Description: limb.TierDescription(limb.CategoryOf(l.ID), tier),
		})
	}
	for _, a := range c.Attacks {
		line := AttackLine{
			ID: a.ID, Name: a.Name, ToHit: ToHitBonus(c, a),
			Damage: a.Damage, DamageType: a.DamageType, FromWeapon: a.FromWeaponItem(),
		}
		if expr, err := dice.Parse(a.Damage); err == nil {
			expr.Modifier += c.CheckBonus(a.Attribute)
			line.AverageDamage = expr.Average()
			line.MinDamage = expr.Min()
			line.MaxDamage = expr.Max()
		}
		r.Attacks = append(r.Attacks, line)
	}
	return r
}

func modeName(t character.Tracked) string {
	if t.IsAuto() {
		return string(character.Auto)
	}
	return string(character.Manual)
}
