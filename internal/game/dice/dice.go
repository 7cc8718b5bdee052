// Package dice parses and rolls the dice expressions used by weapon damage
// and d20 checks on a character sheet.
package dice

import (
	"fmt"
	"strings"
)

// Source supplies randomness. Intn returns a value in [0, n) for n > 0.
type Source interface {
	Intn(n int) int
}

// RollResult is one evaluated expression: the kept dice, any dice dropped
// by advantage or disadvantage, and the flat modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Dropped    []int
	Modifier   int
}

// Total is the kept dice plus the modifier; dropped dice never count.
func (r RollResult) Total() int {
	sum := r.Modifier
	for _, face := range r.Dice {
		sum += face
	}
	return sum
}

// String formats r as "2d6+3 → [4 5] +3 = 12", with dropped dice in
// parentheses after the kept ones. It panics on a result with no expression.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: String called on a RollResult without an expression")
	}
	parts := []string{r.Expression, "→", fmt.Sprint(r.Dice)}
	if len(r.Dropped) > 0 {
		parts = append(parts, fmt.Sprintf("(%v)", r.Dropped))
	}
	parts = append(parts, fmt.Sprintf("%+d", r.Modifier), "=", fmt.Sprint(r.Total()))
	return strings.Join(parts, " ")
}
