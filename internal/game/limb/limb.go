// Package limb models the six body regions that carry independent hit points and
// armor class on a character sheet.
package limb

import "github.com/cory-johannsen/charsheet/internal/game/ability"

// ID identifies one of the six body regions.
type ID string

const (
	// Head is the head region.
	Head ID = "head"
	// Torso is the torso region.
	Torso ID = "torso"
	// LeftArm is the left-arm region.
	LeftArm ID = "leftArm"
	// RightArm is the right-arm region.
	RightArm ID = "rightArm"
	// LeftLeg is the left-leg region.
	LeftLeg ID = "leftLeg"
	// RightLeg is the right-leg region.
	RightLeg ID = "rightLeg"
)

// All lists the six limb ids in sheet order.
var All = []ID{Head, Torso, LeftArm, RightArm, LeftLeg, RightLeg}

// Category groups limbs that share flavor text.
type Category string

const (
	CategoryHead  Category = "head"
	CategoryTorso Category = "torso"
	CategoryArm   Category = "arm"
	CategoryLeg   Category = "leg"
)

var categories = map[ID]Category{
	Head:     CategoryHead,
	Torso:    CategoryTorso,
	LeftArm:  CategoryArm,
	RightArm: CategoryArm,
	LeftLeg:  CategoryLeg,
	RightLeg: CategoryLeg,
}

var displayNames = map[ID]string{
	Head:     "Голова",
	Torso:    "Торс",
	LeftArm:  "Левая рука",
	RightArm: "Правая рука",
	LeftLeg:  "Левая нога",
	RightLeg: "Правая нога",
}

// CategoryOf returns the flavor category of id. Unknown ids fall back to torso.
func CategoryOf(id ID) Category {
	if c, ok := categories[id]; ok {
		return c
	}
	return CategoryTorso
}

// Valid reports whether id is one of the six limb ids.
func Valid(id ID) bool {
	_, ok := categories[id]
	return ok
}

// Limb is one body region's health and armor class.
type Limb struct {
	ID        ID     `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	AC        int    `json:"ac" yaml:"ac"`
	CurrentHP int    `json:"currentHP" yaml:"current_hp"`
	MaxHP     int    `json:"maxHP" yaml:"max_hp"`
}

// Defaults returns the six limbs with display names, zero AC and maxHP hit points.
//
// Postcondition: len(result) == 6, ordered as All.
func Defaults(maxHP int) []Limb {
	out := make([]Limb, len(All))
	for i, id := range All {
		out[i] = Limb{ID: id, Name: displayNames[id], CurrentHP: maxHP, MaxHP: maxHP}
	}
	return out
}

// ApplyDamage returns l with amount subtracted from CurrentHP. Hit points floor
// at 0; negative amounts are ignored.
//
// Postcondition: 0 <= result.CurrentHP <= max(l.CurrentHP, 0).
func ApplyDamage(l Limb, amount int) Limb {
	if amount < 0 {
		amount = 0
	}
	l.CurrentHP = max(l.CurrentHP-amount, 0)
	return l
}

// ApplyHeal returns l with amount added to CurrentHP, capped at MaxHP.
// Negative amounts are ignored.
func ApplyHeal(l Limb, amount int) Limb {
	if amount < 0 {
		amount = 0
	}
	l.CurrentHP = min(l.MaxHP, l.CurrentHP+amount)
	return l
}

// SetMaxHP replaces MaxHP; CurrentHP is lowered if it would exceed the new maximum.
func SetMaxHP(l Limb, maxHP int) Limb {
	l.MaxHP = maxHP
	if l.CurrentHP > maxHP {
		l.CurrentHP = maxHP
	}
	return l
}

// SetAC replaces AC.
func SetAC(l Limb, ac int) Limb {
	l.AC = ac
	return l
}

// SuggestedMaxHP returns ceil(totalMaxHP/2) + floor((constitution-10)/2).
func SuggestedMaxHP(totalMaxHP, constitution int) int {
	half := totalMaxHP / 2
	if totalMaxHP%2 != 0 && totalMaxHP > 0 {
		half++
	}
	return half + ability.Modifier(constitution, 0)
}

// ApplySuggestedMaxHP sets every limb's MaxHP and CurrentHP to SuggestedMaxHP.
//
// Postcondition: limbs is not modified; the result is a new slice.
func ApplySuggestedMaxHP(limbs []Limb, totalMaxHP, constitution int) []Limb {
	hp := SuggestedMaxHP(totalMaxHP, constitution)
	out := make([]Limb, len(limbs))
	for i, l := range limbs {
		l.MaxHP = hp
		l.CurrentHP = hp
		out[i] = l
	}
	return out
}

// Update applies fn to the limb with id in a copy of limbs.
// An unknown id returns limbs unchanged and false.
func Update(limbs []Limb, id ID, fn func(Limb) Limb) ([]Limb, bool) {
	idx := -1
	for i, l := range limbs {
		if l.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return limbs, false
	}
	out := make([]Limb, len(limbs))
	copy(out, limbs)
	out[idx] = fn(out[idx])
	return out, true
}
