package equipment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/equipment"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
)

func intPtr(v int) *int { return &v }

func newChar(t testing.TB, dex int, items ...inventory.Item) *character.Character {
	t.Helper()
	c, err := character.Build(character.Draft{
		Name:       "Тест",
		Attributes: map[ability.ID]int{ability.Dexterity: dex},
		MaxHP:      20,
	}, progression.Default())
	require.NoError(t, err)
	for _, it := range items {
		var ok bool
		c, _, ok = equipment.AddItem(c, it)
		require.True(t, ok)
	}
	return c
}

func halfPlate() inventory.Item {
	return inventory.Item{ID: "half", Name: "Полулаты", Type: inventory.TypeArmor, Quantity: 1,
		Armor: &inventory.ArmorProps{BaseAC: 14, DexModifier: true, MaxDexModifier: intPtr(2),
			LimbACs: map[limb.ID]int{limb.Torso: 4, limb.LeftArm: 2, limb.RightArm: 2}}}
}

func chainMail() inventory.Item {
	return inventory.Item{ID: "chain", Name: "Кольчуга", Type: inventory.TypeArmor, Quantity: 1,
		Armor: &inventory.ArmorProps{BaseAC: 16, LimbACs: map[limb.ID]int{limb.Torso: 5, limb.Head: 1}}}
}

func sword() inventory.Item {
	return inventory.Item{ID: "sword1", Name: "Меч", Type: inventory.TypeWeapon, Quantity: 1,
		Weapon: &inventory.WeaponProps{Damage: "1d8", WeaponClass: inventory.WeaponClassMelee}}
}

func bow() inventory.Item {
	return inventory.Item{ID: "bow1", Name: "Лук", Type: inventory.TypeWeapon, Quantity: 1,
		Weapon: &inventory.WeaponProps{Damage: "1d8", WeaponClass: inventory.WeaponClassRanged}}
}

func shield() inventory.Item {
	return inventory.Item{ID: "shield", Name: "Щит", Type: inventory.TypeItem, Quantity: 1}
}

func limbAC(c *character.Character, id limb.ID) int {
	for _, l := range c.Limbs {
		if l.ID == id {
			return l.AC
		}
	}
	return -1
}

func equippedBodyArmor(c *character.Character) []string {
	var ids []string
	for _, it := range c.Inventory {
		if it.Equipped && it.BodyArmor() {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

func TestEquip_ArmorIsExclusive(t *testing.T) {
	c := newChar(t, 14, halfPlate(), chainMail())
	c = equipment.Equip(c, "half")
	c = equipment.Equip(c, "chain")

	assert.Equal(t, []string{"chain"}, equippedBodyArmor(c))
	assert.Equal(t, "chain", c.Loadout.ArmorID)
	assert.Equal(t, 5, limbAC(c, limb.Torso))
	assert.Equal(t, 1, limbAC(c, limb.Head))
	assert.Equal(t, 0, limbAC(c, limb.LeftArm), "limbs missing from the new armor reset to 0")
	assert.Equal(t, 16, c.ArmorClass.Value)
	assert.True(t, equipment.Consistent(c))
}

func TestEquip_ArmorWithCappedDex(t *testing.T) {
	c := equipment.Equip(newChar(t, 18, halfPlate(), shield()), "half")
	assert.Equal(t, 16, c.ArmorClass.Value, "14 + min(4, 2)")
	c = equipment.Equip(c, "shield")
	assert.Equal(t, 18, c.ArmorClass.Value)
}

func TestUnequip_ArmorResetsLimbsAndAC(t *testing.T) {
	c := newChar(t, 18, halfPlate(), shield())
	c = equipment.Equip(equipment.Equip(c, "half"), "shield")
	c = equipment.Unequip(c, "half")

	for _, l := range c.Limbs {
		assert.Equal(t, 0, l.AC, l.ID)
	}
	assert.Equal(t, 10+4+2, c.ArmorClass.Value)
	assert.Empty(t, c.Loadout.ArmorID)
}

func TestEquip_WeaponsAreNotExclusive(t *testing.T) {
	c := newChar(t, 14, sword(), bow())
	c = equipment.Equip(equipment.Equip(c, "sword1"), "bow1")

	for _, it := range c.Inventory {
		assert.True(t, it.Equipped, it.ID)
	}
	assert.Equal(t, []string{"sword1", "bow1"}, c.Loadout.WeaponIDs)
	assert.Len(t, c.Attacks, 2)
}

func TestEquip_WeaponAttackLifecycle(t *testing.T) {
	c := newChar(t, 14, sword(), bow())
	user := attack.New("Пинок", ability.Strength, "1", "Дробящий", 0, "")
	c.Attacks = append(c.Attacks, user)

	c = equipment.Equip(c, "bow1")
	c = equipment.Equip(c, "sword1")
	a, ok := attack.Find(c.Attacks, "attack_weapon_sword1")
	require.True(t, ok)
	assert.Equal(t, "1d8", a.Damage)
	assert.Equal(t, ability.Strength, a.Attribute)
	assert.False(t, a.UsesAmmunition)

	again := equipment.Equip(c, "sword1")
	assert.Len(t, again.Attacks, len(c.Attacks), "re-equip never duplicates the attack")

	c = equipment.Unequip(c, "sword1")
	_, ok = attack.Find(c.Attacks, "attack_weapon_sword1")
	assert.False(t, ok)
	_, ok = attack.Find(c.Attacks, "attack_weapon_bow1")
	assert.True(t, ok, "other weapon attacks are untouched")
	_, ok = attack.Find(c.Attacks, user.ID)
	assert.True(t, ok, "user attacks are untouched")
}

func TestEquip_ShieldScenario(t *testing.T) {
	for _, typ := range []inventory.Type{inventory.TypeItem, inventory.TypeArmor} {
		s := shield()
		s.Type = typ
		c := newChar(t, 14, s)
		assert.Equal(t, 12, c.ArmorClass.Value)
		c = equipment.Equip(c, "shield")
		assert.Equal(t, 14, c.ArmorClass.Value, typ)
		assert.Empty(t, c.Loadout.ArmorID, "a shield is not body armor")
		c = equipment.Unequip(c, "shield")
		assert.Equal(t, 12, c.ArmorClass.Value, typ)
	}
}

func TestEquip_ShieldDoesNotDisplaceArmor(t *testing.T) {
	s := shield()
	s.Type = inventory.TypeArmor
	c := newChar(t, 14, chainMail(), s)
	c = equipment.Equip(equipment.Equip(c, "chain"), "shield")
	assert.Equal(t, []string{"chain"}, equippedBodyArmor(c))
	assert.Equal(t, 18, c.ArmorClass.Value)
	assert.Equal(t, 5, limbAC(c, limb.Torso))
}

func TestEquip_ManualACIsPreserved(t *testing.T) {
	c := character.SetArmorClass(newChar(t, 14, chainMail()), 21)
	c = equipment.Equip(c, "chain")
	assert.Equal(t, 21, c.ArmorClass.Value)
	assert.Equal(t, 5, limbAC(c, limb.Torso), "limbs follow armor in manual mode")

	c = character.ResetArmorClass(c)
	assert.Equal(t, 16, c.ArmorClass.Value)
}

func TestEquip_PlainItemOnlyFlips(t *testing.T) {
	rope := inventory.Item{ID: "rope", Name: "Верёвка", Type: inventory.TypeItem, Quantity: 1}
	arrows := inventory.Item{ID: "arrows", Name: "Стрелы", Type: inventory.TypeAmmunition, Quantity: 20}
	c := newChar(t, 14, rope, arrows)
	before := c.Clone()
	c = equipment.Toggle(equipment.Toggle(c, "rope"), "arrows")
	assert.True(t, c.Inventory[0].Equipped)
	assert.True(t, c.Inventory[1].Equipped)
	assert.Equal(t, before.Limbs, c.Limbs)
	assert.Equal(t, before.Attacks, c.Attacks)
	assert.Equal(t, before.ArmorClass, c.ArmorClass)
	assert.Equal(t, before.Loadout, c.Loadout)

	c = equipment.Toggle(c, "rope")
	assert.False(t, c.Inventory[0].Equipped)
}

func TestMissingIDIsNoOp(t *testing.T) {
	c := newChar(t, 14, sword())
	assert.Same(t, c, equipment.Equip(c, "nope"))
	assert.Same(t, c, equipment.Unequip(c, "nope"))
	assert.Same(t, c, equipment.Toggle(c, "nope"))
	assert.Same(t, c, equipment.Unequip(c, "sword1"), "unequipping an unequipped item")
	assert.Same(t, c, equipment.RemoveItem(c, "nope"))
	assert.Same(t, c, equipment.UpdateItem(c, inventory.Item{ID: "nope", Type: inventory.TypeItem}))
	assert.Same(t, c, equipment.AdjustQuantity(c, "nope", 1))
}

func TestOperationsDoNotMutateInput(t *testing.T) {
	c := newChar(t, 14, halfPlate(), sword(), shield())
	snapshot := c.Clone()
	_ = equipment.Equip(c, "half")
	_ = equipment.Equip(c, "sword1")
	_ = equipment.Equip(c, "shield")
	_ = equipment.RemoveItem(c, "half")
	assert.Equal(t, snapshot, c)
}

func TestReindex(t *testing.T) {
	c := newChar(t, 14, halfPlate(), chainMail(), sword())
	for i := range c.Inventory {
		c.Inventory[i].Equipped = true
	}
	c.Loadout = character.Loadout{}

	r := equipment.Reindex(c)
	assert.Equal(t, "half", r.Loadout.ArmorID)
	assert.Equal(t, []string{"half", "chain"}, equippedBodyArmor(r), "flags are left as imported")
	assert.Equal(t, []string{"sword1"}, r.Loadout.WeaponIDs)
	assert.Empty(t, r.Attacks, "missing weapon attacks are not resynthesized")
	assert.False(t, equipment.Consistent(r))
}

func TestReindex_KeepsStoredOrder(t *testing.T) {
	c := newChar(t, 14, halfPlate(), chainMail(), sword(), bow())
	c = equipment.Equip(c, "chain")
	c = equipment.Equip(c, "bow1")
	c = equipment.Equip(c, "sword1")
	require.Equal(t, []string{"bow1", "sword1"}, c.Loadout.WeaponIDs)

	r := equipment.Reindex(c)
	assert.Equal(t, c.Loadout, r.Loadout)
	assert.True(t, equipment.Consistent(r))
}

func TestReindex_DropsStaleAndAppendsUnindexed(t *testing.T) {
	c := newChar(t, 14, halfPlate(), sword(), bow())
	for i := range c.Inventory {
		c.Inventory[i].Equipped = c.Inventory[i].ID != "half"
	}
	c.Loadout = character.Loadout{ArmorID: "half", WeaponIDs: []string{"bow1", "gone", "bow1"}}

	r := equipment.Reindex(c)
	assert.Empty(t, r.Loadout.ArmorID)
	assert.Equal(t, []string{"bow1", "sword1"}, r.Loadout.WeaponIDs)
}

func TestAddItem(t *testing.T) {
	c := newChar(t, 14)
	c, stored, ok := equipment.AddItem(c, inventory.Item{Name: "Факел", Type: inventory.TypeItem, Quantity: -3})
	require.True(t, ok)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, 0, stored.Quantity)

	_, _, ok = equipment.AddItem(c, stored)
	assert.False(t, ok, "duplicate id")
	_, _, ok = equipment.AddItem(c, inventory.Item{Name: "x", Type: "gizmo"})
	assert.False(t, ok, "bad type")

	s := sword()
	s.Equipped = true
	c, stored, ok = equipment.AddItem(c, s)
	require.True(t, ok)
	assert.True(t, stored.Equipped)
	assert.True(t, equipment.Consistent(c))
}

func TestAddFromCatalog(t *testing.T) {
	cat := inventory.NewCatalog()
	require.NoError(t, cat.Register(&inventory.Template{ID: "dagger", Name: "Кинжал", Type: inventory.TypeWeapon,
		Weapon: &inventory.WeaponProps{Damage: "1d4", WeaponClass: inventory.WeaponClassMelee}}))
	c := newChar(t, 14)
	c, it, ok := equipment.AddFromCatalog(c, cat, "dagger")
	require.True(t, ok)
	assert.False(t, it.Equipped)
	assert.Len(t, c.Inventory, 1)

	same, _, ok := equipment.AddFromCatalog(c, cat, "missing")
	assert.False(t, ok)
	assert.Same(t, c, same)
}

func TestUpdateItem_EquippedWeaponRefreshesAttack(t *testing.T) {
	c := equipment.Equip(newChar(t, 14, sword()), "sword1")
	s := sword()
	s.Weapon.Damage = "2d6"
	s.Equipped = false
	c = equipment.UpdateItem(c, s)

	assert.True(t, c.Inventory[0].Equipped, "stored equipped state wins")
	a, ok := attack.Find(c.Attacks, "attack_weapon_sword1")
	require.True(t, ok)
	assert.Equal(t, "2d6", a.Damage)
	assert.Len(t, c.Attacks, 1)
}

func TestUpdateItem_EquippedArmorRedistributes(t *testing.T) {
	c := equipment.Equip(newChar(t, 14, chainMail()), "chain")
	upgraded := chainMail()
	upgraded.Armor.BaseAC = 17
	upgraded.Armor.LimbACs[limb.Torso] = 6
	c = equipment.UpdateItem(c, upgraded)
	assert.Equal(t, 17, c.ArmorClass.Value)
	assert.Equal(t, 6, limbAC(c, limb.Torso))
}

func TestRemoveItem_UnequipsFirst(t *testing.T) {
	c := newChar(t, 14, chainMail(), sword())
	c = equipment.Equip(equipment.Equip(c, "chain"), "sword1")

	c = equipment.RemoveItem(c, "chain")
	assert.Equal(t, 12, c.ArmorClass.Value)
	assert.Equal(t, 0, limbAC(c, limb.Torso))
	c = equipment.RemoveItem(c, "sword1")
	assert.Empty(t, c.Inventory)
	assert.Empty(t, c.Attacks)
	assert.True(t, equipment.Consistent(c))
}

func TestAdjustQuantity(t *testing.T) {
	arrows := inventory.Item{ID: "arrows", Name: "Стрелы", Type: inventory.TypeAmmunition, Quantity: 3}
	c := equipment.AdjustQuantity(newChar(t, 14, arrows), "arrows", -5)
	assert.Equal(t, 0, c.Inventory[0].Quantity)
}

func TestProperty_EquipSequencesStayConsistent(t *testing.T) {
	s := shield()
	s.Type = inventory.TypeArmor
	base := newChar(t, 16, halfPlate(), chainMail(), sword(), bow(), s,
		inventory.Item{ID: "rope", Name: "Верёвка", Type: inventory.TypeItem, Quantity: 1})
	ids := []string{"half", "chain", "sword1", "bow1", "shield", "rope", "ghost"}

	rapid.Check(t, func(rt *rapid.T) {
		c := base
		steps := rapid.IntRange(1, 30).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			id := rapid.SampledFrom(ids).Draw(rt, "id")
			switch rapid.IntRange(0, 2).Draw(rt, "op") {
			case 0:
				c = equipment.Equip(c, id)
			case 1:
				c = equipment.Unequip(c, id)
			default:
				c = equipment.Toggle(c, id)
			}

			require.LessOrEqual(rt, len(equippedBodyArmor(c)), 1)
			require.True(rt, equipment.Consistent(c))
			require.Equal(rt, inventory.ComputeAC(c.Inventory, 16), c.ArmorClass.Value)
			for _, it := range c.Inventory {
				n := 0
				for _, a := range c.Attacks {
					if a.WeaponID == it.ID {
						n++
					}
				}
				if it.Type == inventory.TypeWeapon && it.Equipped {
					require.Equal(rt, 1, n, it.ID)
				} else {
					require.Equal(rt, 0, n, it.ID)
				}
			}
			armor, ok := inventory.EquippedBodyArmor(c.Inventory)
			for _, l := range c.Limbs {
				want := 0
				if ok {
					want = armor.Armor.LimbACs[l.ID]
				}
				require.Equal(rt, want, l.AC, l.ID)
			}
		}
	})
}
