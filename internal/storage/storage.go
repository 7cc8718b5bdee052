// Package storage defines the contract shared by the character sheet stores.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/cory-johannsen/charsheet/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterExists is returned when creating a character whose id is already stored.
var ErrCharacterExists = errors.New("character already exists")

// ErrRevisionConflict is returned by Save when the stored revision is not the expected one.
var ErrRevisionConflict = errors.New("character revision conflict")

// Record is a stored character with its bookkeeping columns.
type Record struct {
	Character *character.Character
	// Revision increases by one on every successful Save.
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary is the listing projection of a stored character.
type Summary struct {
	ID        string
	Name      string
	Class     string
	Level     int
	Revision  int64
	UpdatedAt time.Time
}

// JournalEntry is one committed change recorded by Save.
type JournalEntry struct {
	Revision  int64
	Intent    string
	CreatedAt time.Time
}

// CharacterStore persists whole character sheets with optimistic revisions.
type CharacterStore interface {
	// Create inserts c at revision 1, or fails with ErrCharacterExists.
	Create(ctx context.Context, c *character.Character) (Record, error)
	// GetByID loads one character, or fails with ErrCharacterNotFound.
	GetByID(ctx context.Context, id string) (Record, error)
	// List returns every stored character ordered by name, then id.
	List(ctx context.Context) ([]Summary, error)
	// Save replaces c when the stored revision equals expected and journals intent.
	// It returns the new revision, ErrCharacterNotFound or ErrRevisionConflict.
	Save(ctx context.Context, c *character.Character, expected int64, intent string) (int64, error)
	// Delete removes a character and its journal, or fails with ErrCharacterNotFound.
	Delete(ctx context.Context, id string) error
	// Journal returns the recorded changes of id, oldest first.
	Journal(ctx context.Context, id string) ([]JournalEntry, error)
}
