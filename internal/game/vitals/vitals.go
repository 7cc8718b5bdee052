// Package vitals mutates the health, sanity, currency, condition and
// resistance fields of a character. Every operation returns the new snapshot
// together with a Delta the host can use to decide on a notification.
package vitals

import (
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
)

// Health is the total hit point pool.
type Health struct {
	Current int
	Max     int
	Temp    int
	Bonus   int
}

// Delta is a before/after pair of one vital.
type Delta[T comparable] struct {
	Before T
	After  T
}

// Changed reports whether the operation altered the value.
func (d Delta[T]) Changed() bool {
	return d.Before != d.After
}

// HealthOf reads the health pool of c.
func HealthOf(c *character.Character) Health {
	return Health{Current: c.CurrentHP, Max: c.MaxHP, Temp: c.TempHP, Bonus: c.MaxHPBonus}
}

func withHealth(c *character.Character, h Health) *character.Character {
	out := c.Clone()
	out.CurrentHP = h.Current
	out.MaxHP = h.Max
	out.TempHP = h.Temp
	out.MaxHPBonus = h.Bonus
	return out
}

// UpdateHealth replaces all four health fields. Values are trusted as given:
// callers that edit through a form are expected to have clamped them already.
func UpdateHealth(c *character.Character, current, maxHP, temp, bonus int) (*character.Character, Delta[Health]) {
	before := HealthOf(c)
	after := Health{Current: current, Max: maxHP, Temp: temp, Bonus: bonus}
	return withHealth(c, after), Delta[Health]{Before: before, After: after}
}

// ApplyDamage consumes temporary hit points first and then current hit points.
// Negative amounts are ignored.
//
// Postcondition: result.TempHP >= 0; result.CurrentHP >= 0 unless it was already negative.
func ApplyDamage(c *character.Character, amount int) (*character.Character, Delta[Health]) {
	before := HealthOf(c)
	if amount <= 0 {
		return c, Delta[Health]{Before: before, After: before}
	}
	after := before
	absorbed := min(max(after.Temp, 0), amount)
	after.Temp -= absorbed
	amount -= absorbed
	if amount > 0 {
		after.Current = max(after.Current-amount, min(after.Current, 0))
	}
	return withHealth(c, after), Delta[Health]{Before: before, After: after}
}

// Heal restores current hit points up to MaxHP + MaxHPBonus. Temporary hit
// points are not restored by healing.
func Heal(c *character.Character, amount int) (*character.Character, Delta[Health]) {
	before := HealthOf(c)
	if amount <= 0 || before.Current >= before.Max+before.Bonus {
		return c, Delta[Health]{Before: before, After: before}
	}
	after := before
	after.Current = min(after.Current+amount, after.Max+after.Bonus)
	return withHealth(c, after), Delta[Health]{Before: before, After: after}
}

// GrantTempHP sets temporary hit points to the larger of the current and granted values.
// Temporary hit points do not stack.
func GrantTempHP(c *character.Character, amount int) (*character.Character, Delta[Health]) {
	before := HealthOf(c)
	if amount <= before.Temp {
		return c, Delta[Health]{Before: before, After: before}
	}
	after := before
	after.Temp = amount
	return withHealth(c, after), Delta[Health]{Before: before, After: after}
}

// UpdateSanity stores value clamped to [0, maxSanity]. A negative maxSanity is treated as 0.
func UpdateSanity(c *character.Character, value, maxSanity int) (*character.Character, Delta[int]) {
	clamped := min(max(value, 0), max(maxSanity, 0))
	out := c.Clone()
	out.Sanity = clamped
	return out, Delta[int]{Before: c.Sanity, After: clamped}
}

// UpdateCurrency replaces the purse; negative counts become 0. No coins are converted.
func UpdateCurrency(c *character.Character, purse inventory.Currency) (*character.Character, Delta[inventory.Currency]) {
	after := purse.Sanitize()
	out := c.Clone()
	out.Currency = after
	return out, Delta[inventory.Currency]{Before: c.Currency, After: after}
}
