package redis_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/storage"
	"github.com/cory-johannsen/charsheet/internal/storage/redis"
	"github.com/cory-johannsen/charsheet/internal/storage/sqlite"
	"github.com/cory-johannsen/charsheet/internal/storage/storagetest"
)

const ttl = time.Minute

type fixture struct {
	mr      *miniredis.Miniredis
	backing *sqlite.Store
	cached  *redis.CachedStore
	logs    *observer.ObservedLogs
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient(context.Background(), config.CacheConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	backing, err := sqlite.Open(filepath.Join(t.TempDir(), "sheets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = backing.Close() })

	core, logs := observer.New(zapcore.DebugLevel)
	return fixture{
		mr:      mr,
		backing: backing,
		cached:  redis.NewCachedStore(backing, client, ttl, zap.New(core)),
		logs:    logs,
	}
}

func TestCachedStore_Suite(t *testing.T) {
	storagetest.RunCharacterStore(t, newFixture(t).cached)
}

func TestNewClient_RequiresAddr(t *testing.T) {
	_, err := redis.NewClient(context.Background(), config.CacheConfig{})
	assert.Error(t, err)
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := redis.NewClient(context.Background(), config.CacheConfig{Addr: addr})
	assert.Error(t, err)
}

func TestCachedStore_ServesFromCacheUntilExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := storagetest.NewCharacter(t, "Кэш")
	_, err := f.cached.Create(ctx, c)
	require.NoError(t, err)
	assert.True(t, f.mr.Exists("charsheet:character:"+c.ID))

	// A write that bypasses the cache stays invisible until the entry expires.
	_, err = f.backing.Save(ctx, c, 1, "direct")
	require.NoError(t, err)

	rec, err := f.cached.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Revision)
	assert.Equal(t, 1, f.logs.FilterMessage("sheet cache hit").Len())

	f.mr.FastForward(ttl + time.Second)
	rec, err = f.cached.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rec.Revision)
}

func TestCachedStore_SaveEvicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := storagetest.NewCharacter(t, "Запись")
	_, err := f.cached.Create(ctx, c)
	require.NoError(t, err)

	rev, err := f.cached.Save(ctx, c, 1, "rest")
	require.NoError(t, err)
	assert.False(t, f.mr.Exists("charsheet:character:"+c.ID))

	rec, err := f.cached.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, rev, rec.Revision)
	assert.False(t, rec.CreatedAt.IsZero())
	assert.True(t, f.mr.Exists("charsheet:character:"+c.ID))

	_, err = f.cached.Save(ctx, c, 1, "stale")
	assert.ErrorIs(t, err, storage.ErrRevisionConflict)
	assert.False(t, f.mr.Exists("charsheet:character:"+c.ID))
}

func TestCachedStore_CorruptEntryFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := storagetest.NewCharacter(t, "Битый")
	_, err := f.backing.Create(ctx, c)
	require.NoError(t, err)
	require.NoError(t, f.mr.Set("charsheet:character:"+c.ID, "{not json"))

	rec, err := f.cached.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c, rec.Character)
	assert.Equal(t, 1, f.logs.FilterMessage("sheet cache entry corrupt").Len())
}

func TestCachedStore_RedisDownFallsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := storagetest.NewCharacter(t, "Офлайн")
	_, err := f.backing.Create(ctx, c)
	require.NoError(t, err)
	f.mr.Close()

	rec, err := f.cached.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, rec.Character.ID)
	assert.GreaterOrEqual(t, f.logs.FilterMessage("sheet cache read failed").Len(), 1)
}

func TestCachedStore_DeleteEvicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	c := storagetest.NewCharacter(t, "Удалённый")
	_, err := f.cached.Create(ctx, c)
	require.NoError(t, err)

	require.NoError(t, f.cached.Delete(ctx, c.ID))
	assert.False(t, f.mr.Exists("charsheet:character:"+c.ID))
	_, err = f.cached.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, storage.ErrCharacterNotFound)
}
