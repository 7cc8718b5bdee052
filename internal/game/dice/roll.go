package dice

import (
	"sort"
	"strconv"
)

// Mode selects how a d20 is rolled.
type Mode int

const (
	// Normal rolls a single d20.
	Normal Mode = iota
	// Advantage rolls two d20 and keeps the higher.
	Advantage
	// Disadvantage rolls two d20 and keeps the lower.
	Disadvantage
)

func (m Mode) String() string {
	switch m {
	case Normal:
		return "normal"
	case Advantage:
		return "advantage"
	case Disadvantage:
		return "disadvantage"
	}
	return "Mode(" + strconv.Itoa(int(m)) + ")"
}

// Roll evaluates expr using src.
//
// Precondition: expr must come from Parse; src must be non-nil.
// Postcondition: len(result.Dice) == expr.Kept(); len(result.Dropped) == expr.Count - expr.Kept().
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}

	res := RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
	if expr.KeepHighest > 0 {
		sorted := append([]int(nil), rolled...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		res.Dice = sorted[:expr.KeepHighest]
		res.Dropped = sorted[expr.KeepHighest:]
	}
	return res
}

// RollExpr parses expr and rolls it using src.
//
// Postcondition: Returns a RollResult or a parse error.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}

// D20 rolls a d20 check with the given flat bonus.
//
// Postcondition: len(result.Dice) == 1; 1 <= result.Dice[0] <= 20.
func D20(bonus int, mode Mode, src Source) RollResult {
	first := src.Intn(20) + 1
	res := RollResult{Expression: "1d20", Dice: []int{first}, Modifier: bonus}
	if mode == Normal {
		return res
	}
	second := src.Intn(20) + 1
	keep, drop := first, second
	if (mode == Advantage && second > first) || (mode == Disadvantage && second < first) {
		keep, drop = second, first
	}
	res.Expression = "2d20"
	res.Dice = []int{keep}
	res.Dropped = []int{drop}
	return res
}

// Natural reports whether a d20 result shows a natural 20 (crit) or natural 1 (fumble).
func Natural(r RollResult) (crit, fumble bool) {
	if len(r.Dice) != 1 {
		return false, false
	}
	return r.Dice[0] == 20, r.Dice[0] == 1
}
