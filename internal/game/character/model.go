// Package character defines the Character sheet aggregate, its pure creation
// logic, and the attribute resolver that derives check, save and skill bonuses.
//
// A Character is treated as an immutable snapshot: every operation in this
// and the mutator packages returns a new *Character built from Clone and never
// writes through the pointer it was given.
package character

import (
	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
	"github.com/cory-johannsen/charsheet/internal/game/resource"
)

// Mode says whether a Tracked value follows its derivation or was pinned by the user.
type Mode string

const (
	// Auto values are rewritten whenever their inputs change.
	Auto Mode = "auto"
	// Manual values are only changed by an explicit override.
	Manual Mode = "manual"
)

// Tracked is a derived value that the user may override.
type Tracked struct {
	Mode  Mode `json:"mode" yaml:"mode"`
	Value int  `json:"value" yaml:"value"`
}

// IsAuto reports whether t follows its derivation. The zero Mode counts as Auto.
func (t Tracked) IsAuto() bool {
	return t.Mode != Manual
}

// Skill is one row of the skills table.
//
// Invariant: Expertise implies Proficient; the toggle operations maintain it.
type Skill struct {
	ID         string     `json:"id" yaml:"id"`
	Name       string     `json:"name" yaml:"name"`
	Attribute  ability.ID `json:"attribute" yaml:"attribute"`
	Proficient bool       `json:"proficient" yaml:"proficient"`
	Expertise  bool       `json:"expertise" yaml:"expertise"`
}

// Loadout indexes the equipped inventory so consumers need not scan item flags.
//
// Invariant: ArmorID is the only equipped body armor; WeaponIDs are the
// equipped weapons in equip order.
type Loadout struct {
	ArmorID   string   `json:"armorId,omitempty" yaml:"armor_id,omitempty"`
	WeaponIDs []string `json:"weaponIds,omitempty" yaml:"weapon_ids,omitempty"`
}

// Character is the root aggregate of a character sheet.
type Character struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Class      string `json:"class" yaml:"class"`
	Race       string `json:"race" yaml:"race"`
	Background string `json:"background" yaml:"background"`
	Alignment  string `json:"alignment" yaml:"alignment"`
	Notes      string `json:"notes,omitempty" yaml:"notes,omitempty"`

	Attributes               map[ability.ID]int `json:"attributes" yaml:"attributes"`
	AttributeBonuses         map[ability.ID]int `json:"attributeBonuses" yaml:"attribute_bonuses"`
	ProficiencyBonus         int                `json:"proficiencyBonus" yaml:"proficiency_bonus"`
	SavingThrowProficiencies []ability.ID       `json:"savingThrowProficiencies" yaml:"saving_throw_proficiencies"`
	Skills                   []Skill            `json:"skills" yaml:"skills"`

	Resources []resource.Resource `json:"resources" yaml:"resources"`
	Inventory []inventory.Item    `json:"inventory" yaml:"inventory"`
	Attacks   []attack.Attack     `json:"attacks" yaml:"attacks"`
	Limbs     []limb.Limb         `json:"limbs" yaml:"limbs"`
	Loadout   Loadout             `json:"loadout" yaml:"loadout"`

	ArmorClass Tracked `json:"armorClass" yaml:"armor_class"`
	Level      Tracked `json:"level" yaml:"level"`
	Experience int     `json:"experience" yaml:"experience"`

	CurrentHP  int `json:"currentHP" yaml:"current_hp"`
	MaxHP      int `json:"maxHP" yaml:"max_hp"`
	TempHP     int `json:"tempHP" yaml:"temp_hp"`
	MaxHPBonus int `json:"maxHPBonus" yaml:"max_hp_bonus"`
	Sanity     int `json:"sanity" yaml:"sanity"`

	Currency    inventory.Currency     `json:"currency" yaml:"currency"`
	Conditions  []condition.ID         `json:"conditions" yaml:"conditions"`
	Resistances []condition.Resistance `json:"resistances" yaml:"resistances"`
}

// Clone returns a deep copy of c that shares no slices, maps or pointers with it.
//
// Precondition: c is non-nil.
func (c *Character) Clone() *Character {
	out := *c
	out.Attributes = cloneMap(c.Attributes)
	out.AttributeBonuses = cloneMap(c.AttributeBonuses)
	out.SavingThrowProficiencies = cloneSlice(c.SavingThrowProficiencies)
	out.Skills = cloneSlice(c.Skills)
	out.Resources = cloneSlice(c.Resources)
	out.Inventory = inventory.CloneAll(c.Inventory)
	out.Attacks = cloneSlice(c.Attacks)
	out.Limbs = cloneSlice(c.Limbs)
	out.Loadout.WeaponIDs = cloneSlice(c.Loadout.WeaponIDs)
	out.Conditions = cloneSlice(c.Conditions)
	out.Resistances = cloneSlice(c.Resistances)
	return &out
}

// LevelValue returns the stored level clamped to [1, 20].
func (c *Character) LevelValue() int {
	return progression.ClampLevel(c.Level.Value)
}

// Score returns the raw ability score for id; missing scores read as 10.
func (c *Character) Score(id ability.ID) int {
	if v, ok := c.Attributes[id]; ok {
		return v
	}
	return 10
}

// Bonus returns the flat attribute bonus for id.
func (c *Character) Bonus(id ability.ID) int {
	return c.AttributeBonuses[id]
}

// EffectiveMaxHP is MaxHP plus MaxHPBonus.
func (c *Character) EffectiveMaxHP() int {
	return c.MaxHP + c.MaxHPBonus
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return nil
	}
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
