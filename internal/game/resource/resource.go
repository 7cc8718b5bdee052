// Package resource implements clamped consumable counters such as rage charges or
// ki points, and the list-level ledger operations a character sheet applies to them.
package resource

import "github.com/google/uuid"

// Resource is a named counter whose Current value always lies in [0, Max].
type Resource struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	IconName    string `json:"iconName" yaml:"icon_name"`
	Current     int    `json:"current" yaml:"current"`
	Max         int    `json:"max" yaml:"max"`
	Description string `json:"description" yaml:"description"`
}

// New creates a Resource with a fresh id.
//
// Postcondition: Max >= 0 and 0 <= Current <= Max.
func New(name, iconName string, max int, description string, initialCurrent int) Resource {
	if max < 0 {
		max = 0
	}
	return Resource{
		ID:          uuid.New().String(),
		Name:        name,
		IconName:    iconName,
		Current:     clamp(initialCurrent, 0, max),
		Max:         max,
		Description: description,
	}
}

// Adjust returns r with delta added to Current, saturating at 0 and Max.
// Overspending is not an error.
//
// Postcondition: 0 <= result.Current <= result.Max.
func Adjust(r Resource, delta int) Resource {
	r.Current = clamp(r.Current+delta, 0, r.Max)
	return r
}

// RestoreToFull returns r with Current set to Max.
func RestoreToFull(r Resource) Resource {
	r.Current = r.Max
	return r
}

// Patch carries optional replacements for an Update. Nil fields are left unchanged.
type Patch struct {
	Name        *string
	IconName    *string
	Current     *int
	Max         *int
	Description *string
}

// Apply returns r with the non-nil fields of p applied. Max is applied before
// Current so that a lowered Max clamps Current in the same operation.
//
// Postcondition: 0 <= result.Current <= result.Max.
func (p Patch) Apply(r Resource) Resource {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.IconName != nil {
		r.IconName = *p.IconName
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Max != nil {
		r.Max = *p.Max
		if r.Max < 0 {
			r.Max = 0
		}
	}
	if p.Current != nil {
		r.Current = *p.Current
	}
	r.Current = clamp(r.Current, 0, r.Max)
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
