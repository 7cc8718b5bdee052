package character

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
)

// Legal ability score range accepted at creation.
const (
	MinScore = 1
	MaxScore = 30
)

// Draft collects the answers of the creation wizard.
type Draft struct {
	Name       string
	Class      string
	Race       string
	Background string
	Alignment  string

	// Attributes missing from the map start at 10.
	Attributes         map[ability.ID]int
	SavingThrows       []ability.ID
	SkillProficiencies []string

	MaxHP      int
	Sanity     int
	Experience int
	// Level 0 means "derive from Experience".
	Level int

	Currency inventory.Currency
}

// Validate reports every problem with the draft at once.
func (d Draft) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	for id, v := range d.Attributes {
		if !ability.Valid(id) {
			errs = append(errs, fmt.Errorf("unknown attribute %q", id))
			continue
		}
		if v < MinScore || v > MaxScore {
			errs = append(errs, fmt.Errorf("attribute %s score %d must be in [%d, %d]", id, v, MinScore, MaxScore))
		}
	}
	for _, id := range d.SavingThrows {
		if !ability.Valid(id) {
			errs = append(errs, fmt.Errorf("unknown saving throw %q", id))
		}
	}
	known := make(map[string]bool)
	for _, s := range DefaultSkills() {
		known[s.ID] = true
	}
	for _, id := range d.SkillProficiencies {
		if !known[id] {
			errs = append(errs, fmt.Errorf("unknown skill %q", id))
		}
	}
	if d.MaxHP < 0 {
		errs = append(errs, errors.New("max_hp must be >= 0"))
	}
	if d.Experience < 0 {
		errs = append(errs, errors.New("experience must be >= 0"))
	}
	if d.Level < 0 || d.Level > progression.MaxLevel {
		errs = append(errs, fmt.Errorf("level %d must be in [0, %d]", d.Level, progression.MaxLevel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character draft validation failed: %v", errs)
	}
	return nil
}

// Build constructs a new Character from a completed Draft.
//
// Limb hit points start at the suggested per-limb value, the armor class and
// level start in automatic mode, and the proficiency bonus follows the level.
//
// Precondition: table must be non-nil.
// Postcondition: Returns a Character with a fresh uuid, six limbs and the
// eighteen default skills, or a non-nil error.
func Build(d Draft, table *progression.Table) (*Character, error) {
	if table == nil {
		return nil, errors.New("progression table must not be nil")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	attrs := make(map[ability.ID]int, len(ability.All))
	bonuses := make(map[ability.ID]int, len(ability.All))
	for _, id := range ability.All {
		attrs[id] = 10
		bonuses[id] = 0
	}
	for id, v := range d.Attributes {
		attrs[id] = v
	}

	level := d.Level
	if level == 0 {
		level = table.LevelForExperience(d.Experience)
	}
	level = progression.ClampLevel(level)

	saves := make([]ability.ID, 0, len(d.SavingThrows))
	for _, id := range d.SavingThrows {
		if !slices.Contains(saves, id) {
			saves = append(saves, id)
		}
	}

	skills := DefaultSkills()
	for _, id := range d.SkillProficiencies {
		for i := range skills {
			if skills[i].ID == id {
				skills[i].Proficient = true
			}
		}
	}

	perLimb := max(limb.SuggestedMaxHP(d.MaxHP, attrs[ability.Constitution]), 0)

	c := &Character{
		ID:                       uuid.New().String(),
		Name:                     d.Name,
		Class:                    d.Class,
		Race:                     d.Race,
		Background:               d.Background,
		Alignment:                d.Alignment,
		Attributes:               attrs,
		AttributeBonuses:         bonuses,
		ProficiencyBonus:         table.ProficiencyBonus(level),
		SavingThrowProficiencies: saves,
		Skills:                   skills,
		Limbs:                    limb.Defaults(perLimb),
		Level:                    Tracked{Mode: Auto, Value: level},
		Experience:               d.Experience,
		CurrentHP:                d.MaxHP,
		MaxHP:                    d.MaxHP,
		Sanity:                   max(d.Sanity, 0),
		Currency:                 d.Currency.Sanitize(),
		Conditions:               []condition.ID{},
		Resistances:              []condition.Resistance{},
	}
	c.ArmorClass = Tracked{Mode: Auto, Value: c.ComputedAC()}
	return c, nil
}
