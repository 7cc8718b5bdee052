package condition

import "github.com/google/uuid"

// Level is how a character is affected by a damage type.
type Level string

const (
	Resistant  Level = "resistance"
	Vulnerable Level = "vulnerability"
	Immune     Level = "immunity"
)

// ValidLevel reports whether l is one of the three known levels.
func ValidLevel(l Level) bool {
	switch l {
	case Resistant, Vulnerable, Immune:
		return true
	}
	return false
}

// Resistance records the Level a character has against one damage Type.
type Resistance struct {
	ID    string `json:"id" yaml:"id"`
	Type  string `json:"type" yaml:"type"`
	Level Level  `json:"level" yaml:"level"`
}

// NewResistance returns a Resistance with a fresh uuid. An unknown level
// falls back to Resistant.
func NewResistance(damageType string, level Level) Resistance {
	if !ValidLevel(level) {
		level = Resistant
	}
	return Resistance{ID: uuid.New().String(), Type: damageType, Level: level}
}

// Scale applies r to an incoming amount: half (rounded down) for resistance,
// double for vulnerability, zero for immunity.
func (r Resistance) Scale(amount int) int {
	switch r.Level {
	case Resistant:
		return amount / 2
	case Vulnerable:
		return amount * 2
	case Immune:
		return 0
	}
	return amount
}

// ForType returns the first resistance against damageType.
func ForType(list []Resistance, damageType string) (Resistance, bool) {
	for _, r := range list {
		if r.Type == damageType {
			return r, true
		}
	}
	return Resistance{}, false
}

// UpsertResistance replaces the entry with r.ID or appends r, returning a new slice.
func UpsertResistance(list []Resistance, r Resistance) []Resistance {
	out := make([]Resistance, 0, len(list)+1)
	replaced := false
	for _, v := range list {
		if v.ID == r.ID {
			out = append(out, r)
			replaced = true
			continue
		}
		out = append(out, v)
	}
	if !replaced {
		out = append(out, r)
	}
	return out
}

// RemoveResistance returns list without the entry id, and whether it was present.
func RemoveResistance(list []Resistance, id string) ([]Resistance, bool) {
	out := make([]Resistance, 0, len(list))
	found := false
	for _, v := range list {
		if v.ID == id {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		return list, false
	}
	return out, true
}
