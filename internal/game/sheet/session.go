// Package sheet hosts one character behind a Session that serializes intents,
// injects the rule collaborators (progression table, item catalog, condition
// registry, sanity formula, dice roller) and notifies listeners of every change.
package sheet

import (
	"errors"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/ability"
	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/game/condition"
	"github.com/cory-johannsen/charsheet/internal/game/dice"
	"github.com/cory-johannsen/charsheet/internal/game/inventory"
	"github.com/cory-johannsen/charsheet/internal/game/progression"
)

// ErrUnknownCondition is returned when a condition id is not in the registry.
var ErrUnknownCondition = errors.New("unknown condition")

// ErrNoCatalog is returned by catalog intents when no catalog is configured.
var ErrNoCatalog = errors.New("no item catalog configured")

// SanityCapFunc returns the maximum sanity for a class, wisdom modifier and level.
// *scripting.SanityFormula's Cap method satisfies it.
type SanityCapFunc func(class string, wisMod, level int) (int, error)

// Change describes one committed intent.
type Change struct {
	Intent string
	Before *character.Character
	After  *character.Character
}

// Listener observes committed changes. Listeners run after the session lock is
// released and must not retain Before or After for mutation.
type Listener func(Change)

// Deps are the collaborators a Session reads. Table and Logger are required.
type Deps struct {
	Table      *progression.Table
	Catalog    *inventory.Catalog
	Conditions *condition.Registry
	SanityCap  SanityCapFunc
	Roller     *dice.Roller
	Logger     *zap.Logger
}

// Session owns the current snapshot of one character.
//
// All methods are safe for concurrent use; mutations are applied one at a time.
type Session struct {
	mu        sync.Mutex
	current   *character.Character
	deps      Deps
	listeners []Listener
}

// New creates a Session around c.
//
// Precondition: c, deps.Table and deps.Logger must be non-nil.
func New(c *character.Character, deps Deps) *Session {
	if deps.Roller == nil {
		deps.Roller = dice.NewLoggedRoller(dice.NewSource(), deps.Logger)
	}
	return &Session{current: c, deps: deps}
}

// Character returns the current snapshot. The snapshot must be treated as read-only.
func (s *Session) Character() *character.Character {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe registers l for every subsequent change.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Table returns the progression table in use.
func (s *Session) Table() *progression.Table {
	return s.deps.Table
}

// apply runs fn against the current snapshot and commits its result. A result
// identical to the input pointer is a no-op and notifies nobody.
func (s *Session) apply(intent string, fn func(*character.Character) *character.Character) *character.Character {
	s.mu.Lock()
	before := s.current
	after := fn(before)
	changed := after != before
	if changed {
		s.current = after
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.deps.Logger.Debug("intent",
		zap.String("intent", intent),
		zap.String("character", before.ID),
		zap.Bool("changed", changed),
	)
	if changed {
		ch := Change{Intent: intent, Before: before, After: after}
		for _, l := range listeners {
			l(ch)
		}
	}
	return after
}

// MaxSanity evaluates the sanity formula for the current snapshot. Without a
// formula, sanity is unbounded above.
func (s *Session) MaxSanity() (int, error) {
	return s.maxSanityFor(s.Character())
}

func (s *Session) maxSanityFor(c *character.Character) (int, error) {
	if s.deps.SanityCap == nil {
		return math.MaxInt, nil
	}
	return s.deps.SanityCap(c.Class, c.CheckBonus(ability.Wisdom), c.LevelValue())
}
