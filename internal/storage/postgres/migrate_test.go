package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/charsheet/internal/storage/postgres"
	"github.com/cory-johannsen/charsheet/internal/testutil"
)

func TestMigrate_UpDown(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pc := testutil.NewPostgresContainer(t)
	dsn := pc.Config.DSN()

	res, err := postgres.Migrate(dsn, postgres.Up, 0)
	require.NoError(t, err)
	assert.False(t, res.Changed, "container is already migrated")
	assert.Equal(t, uint(2), res.Version)

	res, err = postgres.Migrate(dsn, postgres.Down, 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, uint(1), res.Version)

	var exists bool
	err = pc.Pool.DB().QueryRow(context.Background(),
		`SELECT to_regclass('sheet_changes') IS NOT NULL`).Scan(&exists)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = postgres.Migrate(dsn, "sideways", 0)
	assert.Error(t, err)
}

const defaultTimeout = 5 * time.Second

func TestPool_Health(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test")
	}
	pc := testutil.NewPostgresContainer(t)
	assert.NoError(t, pc.Pool.Health(context.Background(), defaultTimeout))
}
