package sheet_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/attack"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/limb"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
	"github.com/cory-johannsen/charsheet/internal/game/resource"
	"github.com/cory-johannsen/charsheet/internal/game/sheet"
)

func newRanger(t testing.TB) *character.Character {
	t.Helper()
	c, err := character.Build(character.Draft{
		Name:  "Лира",
		Class: "Следопыт",
		Attributes: map[ability.ID]int{
			ability.Strength:     16,
			ability.Dexterity:    14,
			ability.Constitution: 12,
			ability.Wisdom:       12,
		},
		SkillProficiencies: []string{"perception"},
		MaxHP:              12,
	}, progression.Default())
	require.NoError(t, err)
	return c
}

func newSession(t testing.TB, rolls []int, mutate func(*sheet.Deps)) *sheet.Session {
	t.Helper()
	logger := zap.NewNop()
	deps := sheet.Deps{
		Table:  progression.Default(),
		Roller: dice.NewLoggedRoller(&dice.Sequence{Values: rolls}, logger),
		Logger: logger,
	}
	if mutate != nil {
		mutate(&deps)
	}
	return sheet.New(newRanger(t), deps)
}

func swordItem() inventory.Item {
	return inventory.Item{ID: "sword1", Name: "Меч", Type: inventory.TypeWeapon, Quantity: 1,
		Weapon: &inventory.WeaponProps{Damage: "1d8", WeaponClass: inventory.WeaponClassMelee}}
}

func TestSession_EquipNotifiesListeners(t *testing.T) {
	s := newSession(t, nil, nil)
	var changes []sheet.Change
	s.Subscribe(func(ch sheet.Change) { changes = append(changes, ch) })

	_, ok := s.AddItem(swordItem())
	require.True(t, ok)
	before := s.Character()
	after := s.Equip("sword1")

	require.Len(t, changes, 2)
	assert.Equal(t, "equip", changes[1].Intent)
	assert.Same(t, before, changes[1].Before)
	assert.Same(t, after, changes[1].After)
	assert.Same(t, after, s.Character())
	assert.Empty(t, before.Attacks, "previous snapshot stays inert")

	s.Equip("missing")
	assert.Len(t, changes, 2, "no-op intents do not notify")
}

func TestSession_LogsIntents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	s := newSession(t, nil, func(d *sheet.Deps) { d.Logger = logger })
	s.Unequip("missing")

	entries := logs.FilterMessage("intent").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unequip", entries[0].ContextMap()["intent"])
	assert.Equal(t, false, entries[0].ContextMap()["changed"])
}

func TestSession_SerializesConcurrentIntents(t *testing.T) {
	s := newSession(t, nil, nil)
	s.UpdateHealth(100, 100, 0, 0)
	var notified atomic.Int64
	s.Subscribe(func(sheet.Change) { notified.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Damage(1)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, s.Character().CurrentHP)
	assert.Equal(t, int64(50), notified.Load())
}

func TestSession_GainExperience(t *testing.T) {
	s := newSession(t, nil, nil)
	c := s.GainExperience(900)
	assert.Equal(t, 3, c.Level.Value)
	assert.Equal(t, 2, c.ProficiencyBonus)

	manual := character.SetLevelMode(newRanger(t), character.Manual)
	s2 := sheet.New(manual, sheet.Deps{Table: progression.Default(), Logger: zap.NewNop()})
	c = s2.GainExperience(7000)
	assert.Equal(t, 1, c.Level.Value, "manual level is kept")
	assert.Equal(t, 7000, c.Experience)
}

func TestSession_SetSanityUsesFormula(t *testing.T) {
	s := newSession(t, nil, func(d *sheet.Deps) {
		d.SanityCap = func(class string, wisMod, level int) (int, error) {
			return 10 + wisMod + level, nil
		}
	})
	maxSanity, err := s.MaxSanity()
	require.NoError(t, err)
	assert.Equal(t, 12, maxSanity)

	d, err := s.SetSanity(40)
	require.NoError(t, err)
	assert.Equal(t, 12, d.After)
	assert.Equal(t, 12, s.Character().Sanity)
}

func TestSession_SetSanityFormulaError(t *testing.T) {
	boom := errors.New("boom")
	s := newSession(t, nil, func(d *sheet.Deps) {
		d.SanityCap = func(string, int, int) (int, error) { return 0, boom }
	})
	before := s.Character()
	_, err := s.SetSanity(5)
	assert.ErrorIs(t, err, boom)
	assert.Same(t, before, s.Character())
}

func TestSession_SetSanityWithoutFormula(t *testing.T) {
	s := newSession(t, nil, nil)
	d, err := s.SetSanity(500)
	require.NoError(t, err)
	assert.Equal(t, 500, d.After)
}

func TestSession_ConditionsValidatedByRegistry(t *testing.T) {
	reg := condition.NewRegistry()
	reg.Register(&condition.Definition{ID: "poisoned", Name: "Отравлен"})
	s := newSession(t, nil, func(d *sheet.Deps) { d.Conditions = reg })

	require.NoError(t, s.AddCondition("poisoned"))
	assert.ErrorIs(t, s.AddCondition("flying"), sheet.ErrUnknownCondition)
	assert.ErrorIs(t, s.SetConditions([]condition.ID{"poisoned", "flying"}), sheet.ErrUnknownCondition)
	assert.Equal(t, []condition.ID{"poisoned"}, s.Character().Conditions)

	s.RemoveCondition("poisoned")
	assert.Empty(t, s.Character().Conditions)
}

func TestSession_Catalog(t *testing.T) {
	s := newSession(t, nil, nil)
	_, err := s.AddFromCatalog("dagger")
	assert.ErrorIs(t, err, sheet.ErrNoCatalog)

	cat := inventory.NewCatalog()
	require.NoError(t, cat.Register(&inventory.Template{ID: "dagger", Name: "Кинжал", Type: inventory.TypeWeapon}))
	s = newSession(t, nil, func(d *sheet.Deps) { d.Catalog = cat })
	it, err := s.AddFromCatalog("dagger")
	require.NoError(t, err)
	assert.Equal(t, "Кинжал", it.Name)
	_, err = s.AddFromCatalog("axe")
	assert.Error(t, err)
}

func TestSession_ResourcesAndLongRest(t *testing.T) {
	s := newSession(t, nil, nil)
	ki := s.CreateResource("Ки", "spark", 4, "", 4)
	s.SpendResource(ki.ID, 10)
	r, _ := resource.Find(s.Character().Resources, ki.ID)
	assert.Equal(t, 0, r.Current)

	newMax := 2
	s.RestoreResource(ki.ID, 3)
	s.UpdateResource(ki.ID, resource.Patch{Max: &newMax})
	r, _ = resource.Find(s.Character().Resources, ki.ID)
	assert.Equal(t, 2, r.Current)
	assert.Equal(t, 2, r.Max)

	s.SpendResource(ki.ID, 2)
	s.Damage(5)
	s.DamageLimb(limb.Head, 3)
	c := s.LongRest()
	r, _ = resource.Find(c.Resources, ki.ID)
	assert.Equal(t, 2, r.Current)
	assert.Equal(t, 12, c.CurrentHP)
	assert.Equal(t, c.Limbs[0].MaxHP, c.Limbs[0].CurrentHP)

	s.DeleteResource(ki.ID)
	assert.Empty(t, s.Character().Resources)
	before := s.Character()
	assert.Same(t, before, s.RefillResource("ghost"))
}

func TestSession_Limbs(t *testing.T) {
	s := newSession(t, nil, nil)
	s.SetLimbMaxHP(limb.Torso, 10)
	s.SetLimbAC(limb.Torso, 3)
	s.DamageLimb(limb.Torso, 8)
	s.HealLimb(limb.Torso, 1)
	torso := s.Character().Limbs[1]
	assert.Equal(t, limb.Torso, torso.ID)
	assert.Equal(t, 1, torso.CurrentHP)
	assert.Equal(t, 10, torso.MaxHP)
	assert.Equal(t, 3, torso.AC)

	c := s.ApplySuggestedLimbHP()
	for _, l := range c.Limbs {
		assert.Equal(t, 7, l.MaxHP, "ceil(12/2) + con mod 1")
	}
	before := s.Character()
	assert.Same(t, before, s.DamageLimb("tail", 1))
}

func TestSession_Attacks(t *testing.T) {
	s := newSession(t, nil, nil)
	kick := attack.New("Пинок", ability.Strength, "1d4", "Дробящий", 0, "")
	s.AddAttack(kick)
	kick.HitBonus = 1
	s.UpdateAttack(kick)
	got, ok := attack.Find(s.Character().Attacks, kick.ID)
	require.True(t, ok)
	assert.Equal(t, 1, got.HitBonus)

	s.AddItem(swordItem())
	s.Equip("sword1")
	s.DeleteAttack(attack.WeaponAttackID("sword1"))
	assert.Len(t, s.Character().Attacks, 2, "weapon attacks are not deletable")
	s.DeleteAttack(kick.ID)
	assert.Len(t, s.Character().Attacks, 1)
}

func TestSession_SetDexterityRefreshesAutoAC(t *testing.T) {
	s := newSession(t, nil, nil)
	assert.Equal(t, 12, s.Character().ArmorClass.Value)
	assert.Equal(t, 14, s.SetAttribute(ability.Dexterity, 18).ArmorClass.Value)

	s.SetArmorClass(20)
	assert.Equal(t, 20, s.SetAttribute(ability.Dexterity, 10).ArmorClass.Value)
	assert.Equal(t, 10, s.ResetArmorClass().ArmorClass.Value)
}

func TestSession_Rolls(t *testing.T) {
	s := newSession(t, []int{9}, nil)
	assert.Equal(t, 12, s.RollCheck(ability.Dexterity, dice.Normal).Total())
	assert.Equal(t, 11, s.RollSave(ability.Wisdom, dice.Normal).Total())

	res, ok := s.RollSkill("perception", dice.Normal)
	require.True(t, ok)
	assert.Equal(t, 10+1+2, res.Total())
	_, ok = s.RollSkill("juggling", dice.Normal)
	assert.False(t, ok)
}

func TestSession_RollAttack(t *testing.T) {
	s := newSession(t, []int{14, 4}, nil)
	s.AddItem(swordItem())
	s.Equip("sword1")

	roll, err := s.RollAttack(attack.WeaponAttackID("sword1"), dice.Normal)
	require.NoError(t, err)
	assert.Equal(t, 15+3+2, roll.ToHit.Total())
	assert.Equal(t, 5+3, roll.Damage.Total())
	assert.False(t, roll.Crit)

	_, err = s.RollAttack("ghost", dice.Normal)
	assert.Error(t, err)
}

func TestSession_RollAttackCritDoublesDice(t *testing.T) {
	s := newSession(t, []int{19, 0, 0}, nil)
	s.AddItem(swordItem())
	s.Equip("sword1")
	roll, err := s.RollAttack(attack.WeaponAttackID("sword1"), dice.Normal)
	require.NoError(t, err)
	assert.True(t, roll.Crit)
	assert.Len(t, roll.Damage.Dice, 2)
	assert.Equal(t, 1+1+3, roll.Damage.Total())
}

func TestSession_RollAttackConsumesAmmunition(t *testing.T) {
	s := newSession(t, []int{5}, nil)
	s.AddItem(inventory.Item{ID: "bow", Name: "Лук", Type: inventory.TypeWeapon, Quantity: 1,
		Weapon: &inventory.WeaponProps{Damage: "1d8", WeaponClass: inventory.WeaponClassRanged}})
	s.Equip("bow")
	id := attack.WeaponAttackID("bow")

	_, err := s.RollAttack(id, dice.Normal)
	assert.ErrorIs(t, err, sheet.ErrNoAmmunition)

	s.AddItem(inventory.Item{ID: "arrows", Name: "Стрелы", Type: inventory.TypeAmmunition, Quantity: 2, Equipped: true})
	for i := 0; i < 2; i++ {
		roll, err := s.RollAttack(id, dice.Normal)
		require.NoError(t, err)
		assert.Equal(t, "arrows", roll.AmmunitionID)
	}
	arrows, _ := inventory.Find(s.Character().Inventory, "arrows")
	assert.Equal(t, 0, arrows.Quantity)
	_, err = s.RollAttack(id, dice.Normal)
	assert.ErrorIs(t, err, sheet.ErrNoAmmunition)
}

func TestSession_RollAttackConcurrentShotsShareAmmunition(t *testing.T) {
	s := newSession(t, nil, func(d *sheet.Deps) {
		d.Roller = dice.NewLoggedRoller(dice.NewSource(), zap.NewNop())
	})
	s.AddItem(inventory.Item{ID: "bow", Name: "Лук", Type: inventory.TypeWeapon, Quantity: 1,
		Weapon: &inventory.WeaponProps{Damage: "1d8", WeaponClass: inventory.WeaponClassRanged}})
	s.Equip("bow")
	s.AddItem(inventory.Item{ID: "arrows", Name: "Стрелы", Type: inventory.TypeAmmunition, Quantity: 3, Equipped: true})
	id := attack.WeaponAttackID("bow")

	var (
		wg     sync.WaitGroup
		hits   atomic.Int32
		misses atomic.Int32
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.RollAttack(id, dice.Normal)
			switch {
			case err == nil:
				hits.Add(1)
			case errors.Is(err, sheet.ErrNoAmmunition):
				misses.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 3, hits.Load())
	assert.EqualValues(t, 13, misses.Load())
	arrows, _ := inventory.Find(s.Character().Inventory, "arrows")
	assert.Equal(t, 0, arrows.Quantity)
}

func TestSession_VitalsAndResistances(t *testing.T) {
	s := newSession(t, nil, nil)
	s.GrantTempHP(3)
	d := s.Damage(5)
	assert.Equal(t, 3, d.Before.Temp)
	assert.Equal(t, 10, d.After.Current)
	assert.Equal(t, 12, s.Heal(50).After.Current)

	fire := s.AddResistance("Огонь", condition.Immune)
	assert.False(t, s.DamageTyped(8, "Огонь").Changed())
	fire.Level = condition.Vulnerable
	s.UpdateResistance(fire)
	assert.Equal(t, 4, s.DamageTyped(4, "Огонь").After.Current)
	s.RemoveResistance(fire.ID)
	assert.Empty(t, s.Character().Resistances)

	purse := s.UpdateCurrency(inventory.Currency{Gold: 3, Copper: -2})
	assert.Equal(t, inventory.Currency{Gold: 3}, purse.After)
}

func TestSession_SkillAndSaveToggles(t *testing.T) {
	s := newSession(t, nil, nil)
	s.ToggleSkillExpertise("perception")
	s.ToggleSavingThrow(ability.Strength)
	s.SetAttributeBonus(ability.Strength, 1)
	c := s.Character()
	b, _ := c.SkillBonus("perception")
	assert.Equal(t, 1+2+2, b)
	assert.Equal(t, 3+1+2, c.SaveBonus(ability.Strength))

	c = s.ToggleSkillProficiency("perception")
	sk, _ := c.FindSkill("perception")
	assert.False(t, sk.Expertise)
}

func TestSession_InventoryIntents(t *testing.T) {
	s := newSession(t, nil, nil)
	s.AddItem(swordItem())
	s.ToggleEquip("sword1")
	upd := swordItem()
	upd.Weapon.Damage = "1d10"
	c := s.UpdateItem(upd)
	a, _ := attack.Find(c.Attacks, attack.WeaponAttackID("sword1"))
	assert.Equal(t, "1d10", a.Damage)
	c = s.RemoveItem("sword1")
	assert.Empty(t, c.Inventory)
	assert.Empty(t, c.Attacks)
}
