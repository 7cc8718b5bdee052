package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/sheetio"
	"github.com/cory-johannsen/charsheet/internal/storage"
)

// CharacterRepository stores whole character sheets as JSONB documents.
// It implements storage.CharacterStore.
type CharacterRepository struct {
	db *pgxpool.Pool
}

var _ storage.CharacterStore = (*CharacterRepository)(nil)

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

// Create inserts c at revision 1.
//
// Precondition: c.ID must be a UUID.
// Postcondition: Returns the stored record, or storage.ErrCharacterExists on a duplicate id.
func (r *CharacterRepository) Create(ctx context.Context, c *character.Character) (storage.Record, error) {
	doc, err := sheetio.MarshalJSON(c)
	if err != nil {
		return storage.Record{}, err
	}
	rec := storage.Record{Character: c}
	err = r.db.QueryRow(ctx, `
		INSERT INTO characters (id, name, class, level, revision, sheet)
		VALUES ($1, $2, $3, $4, 1, $5)
		RETURNING revision, created_at, updated_at`,
		c.ID, c.Name, c.Class, c.LevelValue(), doc,
	).Scan(&rec.Revision, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.Record{}, storage.ErrCharacterExists
		}
		return storage.Record{}, fmt.Errorf("inserting character: %w", err)
	}
	return rec, nil
}

// GetByID loads the character with id.
//
// Postcondition: Returns the record, or storage.ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id string) (storage.Record, error) {
	var doc []byte
	var rec storage.Record
	err := r.db.QueryRow(ctx, `
		SELECT sheet, revision, created_at, updated_at
		FROM characters WHERE id = $1`, id,
	).Scan(&doc, &rec.Revision, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.Record{}, storage.ErrCharacterNotFound
		}
		return storage.Record{}, fmt.Errorf("querying character: %w", err)
	}
	rec.Character, err = sheetio.UnmarshalJSON(doc)
	if err != nil {
		return storage.Record{}, fmt.Errorf("character %s: %w", id, err)
	}
	return rec, nil
}

// List returns a summary of every stored character ordered by name.
func (r *CharacterRepository) List(ctx context.Context) ([]storage.Summary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, class, level, revision, updated_at
		FROM characters ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []storage.Summary
	for rows.Next() {
		var s storage.Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Class, &s.Level, &s.Revision, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}
	return out, nil
}

// Save replaces the stored sheet of c if its revision is still expected and
// records intent in the change journal.
//
// Postcondition: Returns the new revision, storage.ErrCharacterNotFound, or storage.ErrRevisionConflict.
func (r *CharacterRepository) Save(ctx context.Context, c *character.Character, expected int64, intent string) (int64, error) {
	doc, err := sheetio.MarshalJSON(c)
	if err != nil {
		return 0, err
	}
	var revision int64
	err = withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE characters
			SET name = $2, class = $3, level = $4, sheet = $5,
			    revision = revision + 1, updated_at = NOW()
			WHERE id = $1 AND revision = $6
			RETURNING revision`,
			c.ID, c.Name, c.Class, c.LevelValue(), doc, expected,
		).Scan(&revision)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missOrConflict(ctx, tx, c.ID)
		}
		if err != nil {
			return fmt.Errorf("updating character: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO sheet_changes (character_id, revision, intent)
			VALUES ($1, $2, $3)`, c.ID, revision, intent)
		if err != nil {
			return fmt.Errorf("journaling change: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return revision, nil
}

func (r *CharacterRepository) missOrConflict(ctx context.Context, tx pgx.Tx, id string) error {
	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM characters WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking character: %w", err)
	}
	if exists {
		return storage.ErrRevisionConflict
	}
	return storage.ErrCharacterNotFound
}

// Delete removes the character with id and its change journal.
//
// Postcondition: Returns nil, or storage.ErrCharacterNotFound if no row was deleted.
func (r *CharacterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM characters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting character: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrCharacterNotFound
	}
	return nil
}

// Journal returns the recorded changes of id, oldest first.
func (r *CharacterRepository) Journal(ctx context.Context, id string) ([]storage.JournalEntry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT revision, intent, created_at
		FROM sheet_changes WHERE character_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []storage.JournalEntry
	for rows.Next() {
		var e storage.JournalEntry
		if err := rows.Scan(&e.Revision, &e.Intent, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return out, nil
}
