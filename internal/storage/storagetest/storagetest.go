// Package storagetest holds the behaviour suite every storage.CharacterStore
// must pass.
package storagetest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/equipment"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
	"github.com/cory-johannsen/charsheet/internal/storage"
)

// RunCharacterStore runs the suite against one store. The subtests share it,
// so each creates characters under fresh ids.
func RunCharacterStore(t *testing.T, store storage.CharacterStore) {
	t.Run("CreateAndGet", func(t *testing.T) { testCreateAndGet(t, store) })
	t.Run("CreateDuplicate", func(t *testing.T) { testCreateDuplicate(t, store) })
	t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, store) })
	t.Run("SaveRevisions", func(t *testing.T) { testSaveRevisions(t, store) })
	t.Run("ListAndDelete", func(t *testing.T) { testListAndDelete(t, store) })
	t.Run("RoundTripProperty", func(t *testing.T) { testRoundTripProperty(t, store) })
}

// NewCharacter builds a level 1 rogue with an equipped dagger.
func NewCharacter(t testing.TB, name string) *character.Character {
	t.Helper()
	c, err := character.Build(character.Draft{
		Name:       name,
		Class:      "Плут",
		Attributes: map[ability.ID]int{ability.Dexterity: 16},
		MaxHP:      9,
	}, progression.Default())
	require.NoError(t, err)
	c, _, _ = equipment.AddItem(c, inventory.Item{
		ID: "dagger", Name: "Кинжал", Type: inventory.TypeWeapon, Quantity: 1, Equipped: true,
		Weapon: &inventory.WeaponProps{Damage: "1d4", WeaponClass: inventory.WeaponClassMelee},
	})
	return c
}

func testCreateAndGet(t *testing.T, store storage.CharacterStore) {
	ctx := context.Background()

	c := NewCharacter(t, "Вейла")
	rec, err := store.Create(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Revision)
	assert.False(t, rec.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, got.Character)
	assert.True(t, equipment.Consistent(got.Character))
}

func testCreateDuplicate(t *testing.T, store storage.CharacterStore) {
	ctx := context.Background()
	c := NewCharacter(t, "Дубль")
	_, err := store.Create(ctx, c)
	require.NoError(t, err)
	_, err = store.Create(ctx, c)
	assert.ErrorIs(t, err, storage.ErrCharacterExists)
}

func testGetMissing(t *testing.T, store storage.CharacterStore) {
	_, err := store.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
}

func testSaveRevisions(t *testing.T, store storage.CharacterStore) {
	ctx := context.Background()
	c := NewCharacter(t, "Ревизия")
	_, err := store.Create(ctx, c)
	require.NoError(t, err)

	c2 := equipment.Unequip(c, "dagger")
	rev, err := store.Save(ctx, c2, 1, "unequip")
	require.NoError(t, err)
	assert.Equal(t, int64(2), rev)

	_, err = store.Save(ctx, c, 1, "equip")
	assert.ErrorIs(t, err, storage.ErrRevisionConflict)

	got, err := store.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Character.Attacks)
	assert.Equal(t, int64(2), got.Revision)

	journal, err := store.Journal(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, journal, 1)
	assert.Equal(t, "unequip", journal[0].Intent)
	assert.Equal(t, int64(2), journal[0].Revision)

	other := NewCharacter(t, "Призрак")
	_, err = store.Save(ctx, other, 1, "noop")
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
}

func testListAndDelete(t *testing.T, store storage.CharacterStore) {
	ctx := context.Background()
	c := NewCharacter(t, "Список")
	_, err := store.Create(ctx, c)
	require.NoError(t, err)

	list, err := store.List(ctx)
	require.NoError(t, err)
	var found bool
	for _, s := range list {
		if s.ID == c.ID {
			found = true
			assert.Equal(t, "Список", s.Name)
			assert.Equal(t, 1, s.Level)
			assert.Equal(t, int64(1), s.Revision)
		}
	}
	assert.True(t, found)

	require.NoError(t, store.Delete(ctx, c.ID))
	assert.ErrorIs(t, store.Delete(ctx, c.ID), storage.ErrCharacterNotFound)
	journal, err := store.Journal(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, journal)
}

func testRoundTripProperty(t *testing.T, store storage.CharacterStore) {
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		c := NewCharacter(t, rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "name"))
		c.Experience = rapid.IntRange(0, 355000).Draw(rt, "xp")
		c.CurrentHP = rapid.IntRange(0, c.MaxHP).Draw(rt, "hp")
		if _, err := store.Create(ctx, c); err != nil {
			rt.Fatalf("create: %v", err)
		}
		got, err := store.GetByID(ctx, c.ID)
		if err != nil {
			rt.Fatalf("get: %v", err)
		}
		assert.Equal(rt, c, got.Character)
	})
}
