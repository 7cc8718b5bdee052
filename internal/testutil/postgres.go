// Package testutil starts disposable infrastructure for integration tests.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cory-johannsen/charsheet/internal/config"
	"github.com/cory-johannsen/charsheet/internal/storage/postgres"
)

const postgresImage = "postgres:16-alpine"

// PostgresContainer is a running, migrated PostgreSQL server owned by one test.
type PostgresContainer struct {
	Pool   *postgres.Pool
	Config config.DatabaseConfig
}

// testDatabase is the connection config for a throwaway server at host:port.
func testDatabase(host string, port int) config.DatabaseConfig {
	return config.DatabaseConfig{
		Host:            host,
		Port:            port,
		User:            envOr("TEST_DATABASE_USER", "charsheet"),
		Password:        envOr("TEST_DATABASE_PASSWORD", "charsheet"),
		Name:            envOr("TEST_DATABASE_NAME", "charsheet_test"),
		SSLMode:         "disable",
		MaxConns:        4,
		MinConns:        0,
		MaxConnLifetime: time.Minute,
	}
}

// NewPostgresContainer runs postgresImage, applies the migrations and returns
// a connected Pool. The test is skipped when Docker is unavailable.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()
	began := time.Now()

	cfg := testDatabase("", 0)
	ctr, err := testcontainers.Run(ctx, postgresImage,
		testcontainers.WithExposedPorts("5432/tcp"),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     cfg.User,
			"POSTGRES_PASSWORD": cfg.Password,
			"POSTGRES_DB":       cfg.Name,
		}),
		// The entrypoint restarts the server once after initdb.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("running %s: %v", postgresImage, err)
	}

	if cfg.Host, err = ctr.Host(ctx); err != nil {
		t.Fatalf("resolving container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("resolving container port: %v", err)
	}
	cfg.Port = port.Int()

	pool := connect(t, cfg)
	t.Logf("%s ready at %s:%d after %s", postgresImage, cfg.Host, cfg.Port, time.Since(began).Round(time.Millisecond))
	return &PostgresContainer{Pool: pool, Config: cfg}
}

// NewPool returns a migrated pool. TEST_DATABASE_HOST (with the optional
// _USER, _PASSWORD and _NAME variables) selects an existing server on port
// 5432; otherwise a container is started.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if host := os.Getenv("TEST_DATABASE_HOST"); host != "" {
		return connect(t, testDatabase(host, 5432)).DB()
	}
	return NewPostgresContainer(t).Pool.DB()
}

func connect(t *testing.T, cfg config.DatabaseConfig) *postgres.Pool {
	t.Helper()
	if _, err := postgres.Migrate(cfg.DSN(), postgres.Up, 0); err != nil {
		t.Fatalf("migrating %s: %v", cfg.Name, err)
	}
	pool, err := postgres.NewPool(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connecting to %s: %v", cfg.Name, err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
