// Package ability defines the six ability score identifiers and the modifier
// formula shared by every derived statistic on a character sheet.
package ability

// ID identifies one of the six ability scores.
type ID string

const (
	// Strength is the strength ability.
	Strength ID = "strength"
	// Dexterity is the dexterity ability.
	Dexterity ID = "dexterity"
	// Constitution is the constitution ability.
	Constitution ID = "constitution"
	// Intelligence is the intelligence ability.
	Intelligence ID = "intelligence"
	// Wisdom is the wisdom ability.
	Wisdom ID = "wisdom"
	// Charisma is the charisma ability.
	Charisma ID = "charisma"
)

// All lists the six ability ids in sheet order.
var All = []ID{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

var shortNames = map[ID]string{
	Strength:     "STR",
	Dexterity:    "DEX",
	Constitution: "CON",
	Intelligence: "INT",
	Wisdom:       "WIS",
	Charisma:     "CHA",
}

// Valid reports whether id is one of the six ability ids.
func Valid(id ID) bool {
	_, ok := shortNames[id]
	return ok
}

// Short returns the three-letter label for id, or id itself when unknown.
func Short(id ID) string {
	if s, ok := shortNames[id]; ok {
		return s
	}
	return string(id)
}

// Modifier returns floor((score-10)/2) + bonus.
//
// Postcondition: the result is never clamped and may be negative; scores below 10
// round toward negative infinity (score 9 yields -1).
func Modifier(score, bonus int) int {
	return floorDiv(score-10, 2) + bonus
}

// floorDiv divides a by b rounding toward negative infinity.
//
// Precondition: b > 0.
func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && a < 0 {
		q--
	}
	return q
}
