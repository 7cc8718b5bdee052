package inventory

import (
	"fmt"
	"strings"
)

const (
	// CopperPerSilver is the number of copper pieces in one silver piece.
	CopperPerSilver = 10
	// CopperPerGold is the number of copper pieces in one gold piece.
	CopperPerGold = 100
)

// Currency is a purse of independent coin counts. Coins are never converted
// automatically; conversion happens only for display.
type Currency struct {
	Copper int `json:"copper" yaml:"copper"`
	Silver int `json:"silver" yaml:"silver"`
	Gold   int `json:"gold" yaml:"gold"`
}

// Sanitize returns c with negative counts raised to 0.
//
// Postcondition: every field of the result is >= 0.
func (c Currency) Sanitize() Currency {
	return Currency{Copper: max(c.Copper, 0), Silver: max(c.Silver, 0), Gold: max(c.Gold, 0)}
}

// TotalCopper returns the purse value expressed in copper pieces.
func (c Currency) TotalCopper() int {
	return c.Copper + c.Silver*CopperPerSilver + c.Gold*CopperPerGold
}

// DecomposeCopper converts a copper total into the fewest coins.
//
// Precondition: total >= 0.
// Postcondition: gold*100 + silver*10 + copper == total; 0 <= silver < 10; 0 <= copper < 10.
func DecomposeCopper(total int) Currency {
	gold := total / CopperPerGold
	remainder := total % CopperPerGold
	return Currency{
		Gold:   gold,
		Silver: remainder / CopperPerSilver,
		Copper: remainder % CopperPerSilver,
	}
}

// FormatCurrency returns a display string such as "2 зм, 1 см, 7 мм" for the
// purse value, omitting zero-valued higher denominations.
func FormatCurrency(c Currency) string {
	d := DecomposeCopper(c.Sanitize().TotalCopper())

	var parts []string
	if d.Gold > 0 {
		parts = append(parts, fmt.Sprintf("%d зм", d.Gold))
	}
	if d.Silver > 0 {
		parts = append(parts, fmt.Sprintf("%d см", d.Silver))
	}
	parts = append(parts, fmt.Sprintf("%d мм", d.Copper))

	return strings.Join(parts, ", ")
}
