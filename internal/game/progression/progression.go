// Package progression maps experience to level and level to proficiency bonus.
package progression

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MinLevel and MaxLevel bound every level handled by a Table.
const (
	MinLevel = 1
	MaxLevel = 20
)

// Table is an ascending experience-threshold → level → proficiency-bonus mapping.
// Index 0 of both arrays is unused so that Thresholds[level] is the experience
// at which level begins.
type Table struct {
	Thresholds         [MaxLevel + 1]int
	ProficiencyBonuses [MaxLevel + 1]int
}

// Progress describes how far a character is into its current level.
type Progress struct {
	XPIntoLevel int `json:"xpIntoLevel" yaml:"xp_into_level"`
	XPSpan      int `json:"xpSpan" yaml:"xp_span"`
	Percent     int `json:"percent" yaml:"percent"`
}

var defaultTable = Table{
	Thresholds: [MaxLevel + 1]int{
		0,
		0, 300, 900, 2700, 6500,
		14000, 23000, 34000, 48000, 64000,
		85000, 100000, 120000, 140000, 165000,
		195000, 225000, 265000, 305000, 355000,
	},
	ProficiencyBonuses: [MaxLevel + 1]int{
		0,
		2, 2, 2, 2, 3,
		3, 3, 3, 4, 4,
		4, 4, 5, 5, 5,
		5, 6, 6, 6, 6,
	},
}

// Default returns the built-in fifth-edition progression table.
func Default() *Table {
	t := defaultTable
	return &t
}

// ClampLevel forces level into [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	if level < MinLevel {
		return MinLevel
	}
	if level > MaxLevel {
		return MaxLevel
	}
	return level
}

// ProficiencyBonus returns the proficiency bonus for level.
//
// Postcondition: levels outside [1,20] are clamped before lookup.
func (t *Table) ProficiencyBonus(level int) int {
	return t.ProficiencyBonuses[ClampLevel(level)]
}

// LevelForExperience returns the highest level whose threshold xp has reached.
//
// Postcondition: result is in [MinLevel, MaxLevel] and is non-decreasing in xp.
func (t *Table) LevelForExperience(xp int) int {
	level := MinLevel
	for l := MinLevel + 1; l <= MaxLevel; l++ {
		if xp < t.Thresholds[l] {
			break
		}
		level = l
	}
	return level
}

// ProgressInLevel reports xp earned into level and the span to the next level.
// At MaxLevel the span is zero and Percent is 100.
//
// Postcondition: 0 <= Percent <= 100; Percent is non-decreasing in xp for a fixed level.
func (t *Table) ProgressInLevel(xp, level int) Progress {
	level = ClampLevel(level)
	into := xp - t.Thresholds[level]
	if level == MaxLevel {
		return Progress{XPIntoLevel: into, XPSpan: 0, Percent: 100}
	}
	span := t.Thresholds[level+1] - t.Thresholds[level]
	p := Progress{XPIntoLevel: into, XPSpan: span}
	if span <= 0 {
		p.Percent = 100
		return p
	}
	p.Percent = 100 * into / span
	if p.Percent < 0 {
		p.Percent = 0
	}
	if p.Percent > 100 {
		p.Percent = 100
	}
	return p
}

// CanLevelUp reports whether xp has reached the threshold of the next level.
func (t *Table) CanLevelUp(xp, level int) bool {
	if level >= MaxLevel {
		return false
	}
	return xp >= t.Thresholds[ClampLevel(level)+1]
}

// Validate reports an error unless thresholds are strictly ascending from 0 at
// level 1 and proficiency bonuses are positive and non-decreasing.
func (t *Table) Validate() error {
	var errs []error
	if t.Thresholds[MinLevel] != 0 {
		errs = append(errs, fmt.Errorf("threshold for level 1 must be 0, got %d", t.Thresholds[MinLevel]))
	}
	for l := MinLevel + 1; l <= MaxLevel; l++ {
		if t.Thresholds[l] <= t.Thresholds[l-1] {
			errs = append(errs, fmt.Errorf("threshold for level %d (%d) must exceed level %d (%d)",
				l, t.Thresholds[l], l-1, t.Thresholds[l-1]))
		}
	}
	for l := MinLevel; l <= MaxLevel; l++ {
		if t.ProficiencyBonuses[l] <= 0 {
			errs = append(errs, fmt.Errorf("proficiency bonus for level %d must be > 0", l))
		}
		if l > MinLevel && t.ProficiencyBonuses[l] < t.ProficiencyBonuses[l-1] {
			errs = append(errs, fmt.Errorf("proficiency bonus for level %d must not decrease", l))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("progression validation failed: %v", errs)
	}
	return nil
}

type tableFile struct {
	Thresholds         []int `yaml:"thresholds"`
	ProficiencyBonuses []int `yaml:"proficiency_bonuses"`
}

// Load reads a progression table from a YAML file holding twenty thresholds and
// twenty proficiency bonuses, one per level starting at level 1.
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a validated Table or a non-nil error.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("progression: cannot read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a progression table from YAML bytes.
//
// Postcondition: Returns a validated Table or a non-nil error.
func Parse(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("progression: cannot parse table: %w", err)
	}
	if len(f.Thresholds) != MaxLevel {
		return nil, fmt.Errorf("progression: expected %d thresholds, got %d", MaxLevel, len(f.Thresholds))
	}
	if len(f.ProficiencyBonuses) != MaxLevel {
		return nil, errors.New("progression: proficiency_bonuses must list one value per level")
	}
	var t Table
	copy(t.Thresholds[1:], f.Thresholds)
	copy(t.ProficiencyBonuses[1:], f.ProficiencyBonuses)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}
