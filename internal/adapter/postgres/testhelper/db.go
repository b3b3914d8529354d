package testhelper

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for goose
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/heartmarshall/lexibridge/internal/adapter/postgres"
	"github.com/heartmarshall/lexibridge/internal/config"
	"github.com/heartmarshall/lexibridge/migrations"
)

const (
	containerUser     = "bridge"
	containerPassword = "bridge"
	containerDB       = "lexicon"
)

var (
	startOnce sync.Once
	sharedCfg config.DatabaseConfig
	startErr  error
)

// SetupTestDB returns a pool on a migrated PostgreSQL container shared by
// the whole test binary. The pool goes through postgres.NewPool so tests use
// the same connection settings as the importer.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	startOnce.Do(func() {
		sharedCfg, startErr = startPostgres()
	})
	if startErr != nil {
		t.Fatalf("testhelper: postgres container: %v", startErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, sharedCfg)
	if err != nil {
		t.Fatalf("testhelper: pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}

// DatabaseConfig exposes the container settings for tests that build their
// own connections.
func DatabaseConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	SetupTestDB(t)
	return sharedCfg
}

func startPostgres() (config.DatabaseConfig, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     containerUser,
				"POSTGRES_PASSWORD": containerPassword,
				"POSTGRES_DB":       containerDB,
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("container host: %w", err)
	}
	mapped, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("mapped port: %w", err)
	}
	port, err := strconv.Atoi(mapped.Port())
	if err != nil {
		return config.DatabaseConfig{}, fmt.Errorf("mapped port %q: %w", mapped.Port(), err)
	}

	cfg := config.DatabaseConfig{
		Driver:          config.DriverPostgres,
		Host:            host,
		Port:            port,
		Name:            containerDB,
		User:            containerUser,
		Password:        containerPassword,
		SSLMode:         "disable",
		MaxConns:        8,
		MinConns:        1,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
	}

	if err := migrate(ctx, cfg.ConnString()); err != nil {
		return config.DatabaseConfig{}, err
	}
	return cfg, nil
}

func migrate(ctx context.Context, dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open for migrations: %w", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.Postgres())
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
