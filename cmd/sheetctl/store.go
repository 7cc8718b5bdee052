package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charsheet/internal/game/character"
	"github.com/cory-johannsen/charsheet/internal/sheetio"
	"github.com/cory-johannsen/charsheet/internal/storage"
	"github.com/cory-johannsen/charsheet/internal/storage/postgres"
	"github.com/cory-johannsen/charsheet/internal/storage/redis"
	"github.com/cory-johannsen/charsheet/internal/storage/sqlite"
)

// store is where one invocation reads its sheet from and writes it back to.
type store interface {
	load(ctx context.Context) (*character.Character, error)
	store(ctx context.Context, c *character.Character, intent string) error
	close()
}

func openStore(ctx context.Context, e env, o *options) (store, error) {
	if o.sheetPath != "" {
		return &fileStore{path: o.sheetPath}, nil
	}
	cs, closeFn, err := openCharacterStore(ctx, e)
	if err != nil {
		return nil, err
	}
	return &dbStore{repo: cs, closeFn: closeFn, id: o.id}, nil
}

// openCharacterStore connects the configured backend, behind the Redis cache
// when one is configured. The returned func releases every connection.
func openCharacterStore(ctx context.Context, e env) (storage.CharacterStore, func(), error) {
	var (
		cs      storage.CharacterStore
		closers []func()
	)
	switch e.cfg.Storage.Backend {
	case "sqlite":
		s, err := sqlite.Open(e.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		cs = s
		closers = append(closers, func() { _ = s.Close() })
	default:
		pool, err := postgres.NewPool(ctx, e.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		cs = postgres.NewCharacterRepository(pool.DB())
		closers = append(closers, pool.Close)
	}
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if e.cfg.Cache.Enabled() {
		client, err := redis.NewClient(ctx, e.cfg.Cache)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = client.Close() })
		cs = redis.NewCachedStore(cs, client, e.cfg.Cache.TTL, e.logger)
	}
	e.logger.Debug("character store open",
		zap.String("backend", e.cfg.Storage.Backend),
		zap.Bool("cache", e.cfg.Cache.Enabled()),
	)
	return cs, closeAll, nil
}

type fileStore struct {
	path string
}

func (f *fileStore) load(context.Context) (*character.Character, error) {
	return sheetio.ReadFile(f.path)
}

func (f *fileStore) store(_ context.Context, c *character.Character, _ string) error {
	return sheetio.WriteFile(f.path, c)
}

func (f *fileStore) close() {}

type dbStore struct {
	repo     storage.CharacterStore
	closeFn  func()
	id       string
	revision int64
}

func (d *dbStore) load(ctx context.Context) (*character.Character, error) {
	rec, err := d.repo.GetByID(ctx, d.id)
	if err != nil {
		return nil, err
	}
	d.revision = rec.Revision
	return rec.Character, nil
}

func (d *dbStore) store(ctx context.Context, c *character.Character, intent string) error {
	rev, err := d.repo.Save(ctx, c, d.revision, intent)
	if err != nil {
		return err
	}
	d.revision = rev
	return nil
}

func (d *dbStore) close() { d.closeFn() }

// push copies a sheet file into the store, creating or replacing the record.
func push(ctx context.Context, e env, path string, w io.Writer) error {
	c, err := sheetio.ReadFile(path)
	if err != nil {
		return err
	}
	cs, closeFn, err := openCharacterStore(ctx, e)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, err := cs.Create(ctx, c)
	if errors.Is(err, storage.ErrCharacterExists) {
		var current storage.Record
		current, err = cs.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		rec.Revision, err = cs.Save(ctx, c, current.Revision, "push")
	}
	if err != nil {
		return err
	}
	e.logger.Info("sheet pushed", zap.String("character_id", c.ID), zap.Int64("revision", rec.Revision))
	_, err = fmt.Fprintf(w, "%s revision=%d\n", c.ID, rec.Revision)
	return err
}

func listStored(ctx context.Context, e env, w io.Writer) error {
	cs, closeFn, err := openCharacterStore(ctx, e)
	if err != nil {
		return err
	}
	defer closeFn()
	list, err := cs.List(ctx)
	if err != nil {
		return err
	}
	for _, s := range list {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\tlevel %d\trevision %d\n", s.ID, s.Name, s.Class, s.Level, s.Revision); err != nil {
			return err
		}
	}
	return nil
}
