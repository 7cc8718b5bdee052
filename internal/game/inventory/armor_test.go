package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
)

func intPtr(v int) *int { return &v }

func halfPlate(equipped bool) inventory.Item {
	return inventory.Item{
		ID: "half_plate", Name: "Полулаты", Type: inventory.TypeArmor, Quantity: 1, Equipped: equipped,
		Armor: &inventory.ArmorProps{
			BaseAC: 14, DexModifier: true, MaxDexModifier: intPtr(2),
			LimbACs: map[limb.ID]int{limb.Head: 1, limb.Torso: 4, limb.LeftArm: 2, limb.RightArm: 2},
		},
	}
}

func TestComputeAC_NoArmor(t *testing.T) {
	assert.Equal(t, 12, inventory.ComputeAC(nil, 14))
	assert.Equal(t, 9, inventory.ComputeAC(nil, 8))
}

func TestComputeAC_CappedDex(t *testing.T) {
	items := []inventory.Item{halfPlate(true)}
	assert.Equal(t, 16, inventory.ComputeAC(items, 18))
}

func TestComputeAC_CappedDexWithShield(t *testing.T) {
	items := []inventory.Item{halfPlate(true), {ID: "s", Name: "Wooden Shield", Type: inventory.TypeItem, Equipped: true}}
	assert.Equal(t, 18, inventory.ComputeAC(items, 18))
}

func TestComputeAC_ArmorIgnoringDex(t *testing.T) {
	plate := inventory.Item{ID: "plate", Name: "Plate", Type: inventory.TypeArmor, Equipped: true,
		Armor: &inventory.ArmorProps{BaseAC: 18}}
	assert.Equal(t, 18, inventory.ComputeAC([]inventory.Item{plate}, 20))
}

func TestComputeAC_UncappedDex(t *testing.T) {
	leather := inventory.Item{ID: "leather", Name: "Leather", Type: inventory.TypeArmor, Equipped: true,
		Armor: &inventory.ArmorProps{BaseAC: 11, DexModifier: true}}
	assert.Equal(t, 15, inventory.ComputeAC([]inventory.Item{leather}, 18))
}

func TestComputeAC_UnequippedArmorIgnored(t *testing.T) {
	assert.Equal(t, 14, inventory.ComputeAC([]inventory.Item{halfPlate(false)}, 18))
}

func TestComputeAC_NegativeDexStillCapped(t *testing.T) {
	assert.Equal(t, 13, inventory.ComputeAC([]inventory.Item{halfPlate(true)}, 8))
}

func TestComputeAC_ShieldScenario(t *testing.T) {
	assert.Equal(t, 12, inventory.ComputeAC(nil, 14))
	shield := inventory.Item{ID: "shield", Name: "Щит", Type: inventory.TypeItem, Equipped: true}
	assert.Equal(t, 14, inventory.ComputeAC([]inventory.Item{shield}, 14))

	armorShield := inventory.Item{ID: "shield", Name: "Щит", Type: inventory.TypeArmor, Equipped: true}
	assert.Equal(t, 14, inventory.ComputeAC([]inventory.Item{armorShield}, 14),
		"an armor-typed shield must not replace the unarmored base")
}

func TestBreakdown_ReportsArmor(t *testing.T) {
	b := inventory.Breakdown([]inventory.Item{halfPlate(true)}, 18)
	assert.Equal(t, "half_plate", b.ArmorID)
	assert.Equal(t, 14, b.Base)
	assert.Equal(t, 2, b.Dex)
	assert.Equal(t, 0, b.Shield)
}

func TestDistributeLimbAC(t *testing.T) {
	limbs := limb.Defaults(5)
	out := inventory.DistributeLimbAC(halfPlate(true), limbs)
	want := map[limb.ID]int{limb.Head: 1, limb.Torso: 4, limb.LeftArm: 2, limb.RightArm: 2, limb.LeftLeg: 0, limb.RightLeg: 0}
	for _, l := range out {
		assert.Equal(t, want[l.ID], l.AC, "limb %s", l.ID)
	}
	for _, l := range limbs {
		assert.Equal(t, 0, l.AC, "input limbs must not be mutated")
	}
}

func TestResetLimbAC(t *testing.T) {
	limbs := inventory.DistributeLimbAC(halfPlate(true), limb.Defaults(5))
	for _, l := range inventory.ResetLimbAC(limbs) {
		assert.Equal(t, 0, l.AC)
	}
}

func TestProperty_ComputeAC_NoArmorIsTenPlusDex(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dex := rapid.IntRange(1, 30).Draw(rt, "dex")
		shield := rapid.Bool().Draw(rt, "shield")
		var items []inventory.Item
		if shield {
			items = append(items, inventory.Item{ID: "s", Name: "Shield", Type: inventory.TypeItem, Equipped: true})
		}
		want := 10 + ability.Modifier(dex, 0)
		if shield {
			want += 2
		}
		if got := inventory.ComputeAC(items, dex); got != want {
			rt.Fatalf("ComputeAC = %d, want %d", got, want)
		}
	})
}

func TestProperty_ComputeAC_DexNeverExceedsCap(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		dex := rapid.IntRange(1, 30).Draw(rt, "dex")
		limit := rapid.IntRange(0, 5).Draw(rt, "cap")
		base := rapid.IntRange(10, 18).Draw(rt, "base")
		armor := inventory.Item{ID: "a", Name: "Armor", Type: inventory.TypeArmor, Equipped: true,
			Armor: &inventory.ArmorProps{BaseAC: base, DexModifier: true, MaxDexModifier: &limit}}
		b := inventory.Breakdown([]inventory.Item{armor}, dex)
		if b.Dex > limit {
			rt.Fatalf("applied dex %d exceeds cap %d", b.Dex, limit)
		}
		if b.Total() != base+min(ability.Modifier(dex, 0), limit) {
			rt.Fatalf("unexpected total %d", b.Total())
		}
	})
}
