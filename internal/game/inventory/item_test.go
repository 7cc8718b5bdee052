package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
)

func TestItem_Shield(t *testing.T) {
	cases := map[string]bool{
		"Щит":             true,
		"Большой ЩИТ":     true,
		"Tower Shield":    true,
		"shield of faith": true,
		"Меч":             false,
		"Chain Mail":      false,
	}
	for name, want := range cases {
		assert.Equal(t, want, inventory.Item{Name: name}.Shield(), name)
	}
	assert.True(t, inventory.Item{Name: "Buckler", IsShield: true}.Shield())
}

func TestItem_BodyArmor(t *testing.T) {
	assert.True(t, inventory.Item{Name: "Chain Mail", Type: inventory.TypeArmor}.BodyArmor())
	assert.False(t, inventory.Item{Name: "Shield", Type: inventory.TypeArmor}.BodyArmor())
	assert.False(t, inventory.Item{Name: "Rope", Type: inventory.TypeItem}.BodyArmor())
}

func TestItem_CloneIsDeep(t *testing.T) {
	orig := halfPlate(false)
	cp := orig.Clone()
	cp.Armor.LimbACs[limb.Head] = 99
	*cp.Armor.MaxDexModifier = 7
	assert.Equal(t, 1, orig.Armor.LimbACs[limb.Head])
	assert.Equal(t, 2, *orig.Armor.MaxDexModifier)
}

func TestWeaponDefaults(t *testing.T) {
	bare := inventory.Item{Type: inventory.TypeWeapon}
	assert.Equal(t, inventory.DefaultWeaponDamage, bare.DamageOrDefault())
	assert.Equal(t, inventory.DefaultWeaponDamageType, bare.DamageTypeOrDefault())
	assert.False(t, bare.IsMelee())
	assert.False(t, bare.IsRanged())

	bow := inventory.Item{Type: inventory.TypeWeapon, Weapon: &inventory.WeaponProps{Damage: "1d8", DamageType: "Колющий", WeaponClass: inventory.WeaponClassRanged}}
	assert.Equal(t, "1d8", bow.DamageOrDefault())
	assert.Equal(t, "Колющий", bow.DamageTypeOrDefault())
	assert.True(t, bow.IsRanged())
}

func TestFind(t *testing.T) {
	items := []inventory.Item{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	got, ok := inventory.Find(items, "b")
	require.True(t, ok)
	assert.Equal(t, "B", got.Name)
	_, ok = inventory.Find(items, "c")
	assert.False(t, ok)
	assert.Nil(t, inventory.CloneAll(nil))
}
