package dice

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Expression is a parsed "NdS[khK][+M]" dice expression.
//
// Invariant: Count >= 1, Sides >= 2, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int
}

// Parse parses a dice expression such as "d20", "2d6", "1d8+3", "4d8-2" or "4d6kh3".
// Whitespace and letter case are ignored.
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.Join(strings.Fields(expr), ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	e := Expression{Raw: expr, Count: 1}
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q: must be >= 1", expr)
		}
		e.Count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", expr)
	}
	e.Sides = sides
	if m[3] != "" {
		kh, err := strconv.Atoi(m[3])
		if err != nil || kh <= 0 || kh >= e.Count {
			return Expression{}, fmt.Errorf("dice: kh value in %q must be > 0 and < count %d", expr, e.Count)
		}
		e.KeepHighest = kh
	}
	if m[4] != "" {
		mod, err := strconv.Atoi(m[4])
		if err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
		e.Modifier = mod
	}
	return e, nil
}

// MustParse parses expr and panics on error.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// Kept returns how many dice contribute to the total.
func (e Expression) Kept() int {
	if e.KeepHighest > 0 {
		return e.KeepHighest
	}
	return e.Count
}

// Min returns the smallest possible total.
func (e Expression) Min() int {
	return e.Kept() + e.Modifier
}

// Max returns the largest possible total.
func (e Expression) Max() int {
	return e.Kept()*e.Sides + e.Modifier
}

// Average returns the expected total.
//
// Postcondition: Min() <= Average() <= Max().
func (e Expression) Average() float64 {
	if e.KeepHighest == 0 {
		return float64(e.Count)*float64(e.Sides+1)/2 + float64(e.Modifier)
	}
	// Sum of the expected values of the top KeepHighest order statistics.
	// P(r-th smallest >= v) = P(at least Count-r+1 dice show >= v).
	total := 0.0
	for r := e.Count - e.KeepHighest + 1; r <= e.Count; r++ {
		need := e.Count - r + 1
		for v := 1; v <= e.Sides; v++ {
			p := float64(e.Sides-v+1) / float64(e.Sides)
			total += atLeast(e.Count, need, p)
		}
	}
	return total + float64(e.Modifier)
}

// String returns the canonical form of e, e.g. "4d6kh3+1".
func (e Expression) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%dd%d", e.Count, e.Sides)
	if e.KeepHighest > 0 {
		fmt.Fprintf(&b, "kh%d", e.KeepHighest)
	}
	if e.Modifier != 0 {
		fmt.Fprintf(&b, "%+d", e.Modifier)
	}
	return b.String()
}

// atLeast returns the probability of at least k successes in n trials with success chance p.
func atLeast(n, k int, p float64) float64 {
	sum := 0.0
	for i := k; i <= n; i++ {
		sum += binomial(n, i) * math.Pow(p, float64(i)) * math.Pow(1-p, float64(n-i))
	}
	return sum
}

func binomial(n, k int) float64 {
	r := 1.0
	for i := 1; i <= k; i++ {
		r = r * float64(n-k+i) / float64(i)
	}
	return r
}
