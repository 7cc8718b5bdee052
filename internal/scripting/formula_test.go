package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charsheet/internal/scripting"
)

func TestDefaultSanityScript(t *testing.T) {
	f, err := scripting.LoadSanityFormula("", 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()

	got, err := f.Cap("Воин", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 14, got)

	got, err = f.Cap("Колдун", 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 22, got)
}

func TestSanityFormula_CustomScriptUsesModifier(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sanity.lua")
	src := `function sanity_cap(class, wis_mod, level) return sheet.modifier(18) * level + wis_mod end`
	require.NoError(t, os.WriteFile(path, []byte(src), 0644))

	f, err := scripting.LoadSanityFormula(path, 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()
	got, err := f.Cap("", -1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestSanityFormula_NegativeResultFloors(t *testing.T) {
	f, err := scripting.NewSanityFormula(`function sanity_cap() return -5 end`, 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()
	got, err := f.Cap("x", 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, got)
}

func TestSanityFormula_LoadErrors(t *testing.T) {
	_, err := scripting.NewSanityFormula(`this is not lua`, 0, zap.NewNop())
	assert.Error(t, err)
	_, err = scripting.NewSanityFormula(`x = 1`, 0, zap.NewNop())
	assert.ErrorContains(t, err, "sanity_cap")
	_, err = scripting.LoadSanityFormula(filepath.Join(t.TempDir(), "missing.lua"), 0, zap.NewNop())
	assert.Error(t, err)
}

func TestSanityFormula_RuntimeErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f, err := scripting.NewSanityFormula(`function sanity_cap() error("boom") end`, 0, zap.New(core))
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Cap("x", 0, 1)
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestSanityFormula_NonNumber(t *testing.T) {
	f, err := scripting.NewSanityFormula(`function sanity_cap() return "lots" end`, 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Cap("x", 0, 1)
	assert.ErrorContains(t, err, "want number")
}

func TestSanityFormula_BudgetExceeded(t *testing.T) {
	f, err := scripting.NewSanityFormula(`function sanity_cap() while true do end end`, 500, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Cap("x", 0, 1)
	assert.Error(t, err)
}

func TestSanityFormula_Concurrent(t *testing.T) {
	f, err := scripting.LoadSanityFormula("", 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(level int) {
			defer wg.Done()
			got, err := f.Cap("Воин", 0, level)
			assert.NoError(t, err)
			assert.Equal(t, 10+level, got)
		}(i)
	}
	wg.Wait()
}

func TestProperty_DefaultSanityCapWithinRange(t *testing.T) {
	f, err := scripting.LoadSanityFormula("", 0, zap.NewNop())
	require.NoError(t, err)
	defer f.Close()
	rapid.Check(t, func(rt *rapid.T) {
		wis := rapid.IntRange(-5, 10).Draw(rt, "wis")
		level := rapid.IntRange(1, 20).Draw(rt, "level")
		got, err := f.Cap(rapid.SampledFrom([]string{"Воин", "Колдун", "Wizard", ""}).Draw(rt, "class"), wis, level)
		require.NoError(rt, err)
		assert.GreaterOrEqual(rt, got, 0)
		assert.LessOrEqual(rt, got, 99)
	})
}
