package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
	"github.com/cory-johannsen/charsheet/internal/game/sheet"
	"github.com/cory-johannsen/charsheet/internal/scripting"
)

// loadDeps builds the session collaborators from the content section of cfg.
// The returned func releases the Lua state.
func loadDeps(cfg config.Config, roller *dice.Roller, logger *zap.Logger) (sheet.Deps, func(), error) {
	deps := sheet.Deps{Table: progression.Default(), Roller: roller, Logger: logger}
	c := cfg.Content

	if c.ProgressionFile != "" {
		t, err := progression.Load(c.ProgressionFile)
		if err != nil {
			return sheet.Deps{}, nil, err
		}
		deps.Table = t
	}
	if c.ItemsDir != "" {
		cat, err := inventory.LoadCatalog(c.ItemsDir)
		if err != nil {
			return sheet.Deps{}, nil, err
		}
		deps.Catalog = cat
		logger.Debug("item catalog loaded", zap.Int("templates", len(cat.All())))
	}
	if c.ConditionsDir != "" {
		reg, err := condition.LoadDirectory(c.ConditionsDir)
		if err != nil {
			return sheet.Deps{}, nil, err
		}
		deps.Conditions = reg
		logger.Debug("conditions loaded", zap.Int("definitions", len(reg.All())))
	}

	formula, err := scripting.LoadSanityFormula(c.SanityScript, cfg.Scripting.InstructionLimit, logger)
	if err != nil {
		return sheet.Deps{}, nil, fmt.Errorf("loading sanity formula: %w", err)
	}
	deps.SanityCap = formula.Cap
	return deps, formula.Close, nil
}
