// Package sqlite stores character sheets in a local SQLite file, for use
// without a database server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/sheetio"
	"github.com/cory-johannsen/charsheet/internal/storage"
	"github.com/cory-johannsen/charsheet/internal/storage/sqlite/migrations"
)

const pragmas = "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// Store persists character sheets as JSON text in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ storage.CharacterStore = (*Store)(nil)

// Open opens the SQLite file at path, creating it if needed, and applies the
// embedded migrations.
//
// Postcondition: Returns a ready Store or a non-nil error.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}
	if err := migrateUp(abs); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", abs+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows one writer, so the pool is a single connection.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func migrateUp(path string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("opening embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite://"+path)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts c at revision 1.
func (s *Store) Create(ctx context.Context, c *character.Character) (storage.Record, error) {
	doc, err := sheetio.MarshalJSON(c)
	if err != nil {
		return storage.Record{}, err
	}
	now := s.now()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO characters (id, name, class, level, revision, sheet, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?, ?)`,
		c.ID, c.Name, c.Class, c.LevelValue(), string(doc), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Record{}, storage.ErrCharacterExists
		}
		return storage.Record{}, fmt.Errorf("inserting character: %w", err)
	}
	return storage.Record{Character: c, Revision: 1, CreatedAt: fromMillis(now.UnixMilli()), UpdatedAt: fromMillis(now.UnixMilli())}, nil
}

// GetByID loads the character with id.
func (s *Store) GetByID(ctx context.Context, id string) (storage.Record, error) {
	var (
		doc              string
		rec              storage.Record
		created, updated int64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT sheet, revision, created_at, updated_at
		FROM characters WHERE id = ?`, id,
	).Scan(&doc, &rec.Revision, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Record{}, storage.ErrCharacterNotFound
		}
		return storage.Record{}, fmt.Errorf("querying character: %w", err)
	}
	rec.CreatedAt, rec.UpdatedAt = fromMillis(created), fromMillis(updated)
	rec.Character, err = sheetio.UnmarshalJSON([]byte(doc))
	if err != nil {
		return storage.Record{}, fmt.Errorf("character %s: %w", id, err)
	}
	return rec, nil
}

// List returns a summary of every stored character ordered by name.
func (s *Store) List(ctx context.Context) ([]storage.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, class, level, revision, updated_at
		FROM characters ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	var out []storage.Summary
	for rows.Next() {
		var (
			sum     storage.Summary
			updated int64
		)
		if err := rows.Scan(&sum.ID, &sum.Name, &sum.Class, &sum.Level, &sum.Revision, &updated); err != nil {
			return nil, fmt.Errorf("scanning character: %w", err)
		}
		sum.UpdatedAt = fromMillis(updated)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating characters: %w", err)
	}
	return out, nil
}

// Save replaces the stored sheet of c if its revision is still expected and
// records intent in the change journal.
func (s *Store) Save(ctx context.Context, c *character.Character, expected int64, intent string) (int64, error) {
	doc, err := sheetio.MarshalJSON(c)
	if err != nil {
		return 0, err
	}
	var revision int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		now := s.now().UnixMilli()
		res, err := tx.ExecContext(ctx, `
			UPDATE characters
			SET name = ?, class = ?, level = ?, sheet = ?,
			    revision = revision + 1, updated_at = ?
			WHERE id = ? AND revision = ?`,
			c.Name, c.Class, c.LevelValue(), string(doc), now, c.ID, expected,
		)
		if err != nil {
			return fmt.Errorf("updating character: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("updating character: %w", err)
		}
		if n == 0 {
			return missOrConflict(ctx, tx, c.ID)
		}
		revision = expected + 1
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sheet_changes (character_id, revision, intent, created_at)
			VALUES (?, ?, ?, ?)`, c.ID, revision, intent, now)
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

func missOrConflict(ctx context.Context, tx *sql.Tx, id string) error {
	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM characters WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("checking character: %w", err)
	}
	if exists {
		return storage.ErrRevisionConflict
	}
	return storage.ErrCharacterNotFound
}

// Delete removes the character with id and its change journal.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_changes WHERE character_id = ?`, id); err != nil {
			return fmt.Errorf("deleting journal: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("deleting character: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting character: %w", err)
		}
		if n == 0 {
			return storage.ErrCharacterNotFound
		}
		return nil
	})
}

// Journal returns the recorded changes of id, oldest first.
func (s *Store) Journal(ctx context.Context, id string) ([]storage.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT revision, intent, created_at
		FROM sheet_changes WHERE character_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var out []storage.JournalEntry
	for rows.Next() {
		var (
			e       storage.JournalEntry
			created int64
		)
		if err := rows.Scan(&e.Revision, &e.Intent, &created); err != nil {
			return nil, fmt.Errorf("scanning journal entry: %w", err)
		}
		e.CreatedAt = fromMillis(created)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return out, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, fmt.Errorf("rolling back: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
