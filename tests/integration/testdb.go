// Package integration runs repository and schema tests against a real
// PostgreSQL started with testcontainers. Every test skips under -short.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/wayfarer/backend/internal/infrastructure/config"
	"github.com/wayfarer/backend/internal/infrastructure/migration"
	"github.com/wayfarer/backend/internal/infrastructure/persistence"
	"github.com/wayfarer/backend/migrations"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm/logger"
)

var (
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedDBConfig    config.DatabaseConfig
)

// TestDB is a migrated database opened through the production constructor
type TestDB struct {
	*persistence.Database
	SqlDB *sql.DB
	t     *testing.T
}

// NewTestDB returns a connection to the shared container with empty tables.
// The container and schema are created on first use.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := ensureContainer(t)

	gormLog := logger.Default.LogMode(logger.Silent)
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormLog = logger.Default.LogMode(logger.Info)
	}
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg, gormLog)
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)

	tdb := &TestDB{Database: db, SqlDB: sqlDB, t: t}
	tdb.CleanTables()
	t.Cleanup(func() {
		_ = db.Close()
	})
	return tdb
}

func ensureContainer(t *testing.T) config.DatabaseConfig {
	t.Helper()
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		return sharedDBConfig
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("wayfarer_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("wayfarer"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		User:            "postgres",
		Password:        "wayfarer",
		DBName:          "wayfarer_test",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5,
		ConnMaxIdleTime: 1,
	}
	migrateUp(t, cfg)

	sharedContainer = container
	sharedDBConfig = cfg
	return cfg
}

// migrateUp applies the embedded schema the same way cmd/migrate does
func migrateUp(t *testing.T, cfg config.DatabaseConfig) {
	t.Helper()

	sqlDB, err := sql.Open("postgres", cfg.DSN())
	require.NoError(t, err)
	defer sqlDB.Close()

	m, err := migration.NewFromFS(sqlDB, migrations.FS, zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel)))
	require.NoError(t, err, "Failed to create migrator")
	defer m.Close()
	require.NoError(t, m.Up(), "Failed to run migrations")
}

// CleanTables truncates every application table
func (tdb *TestDB) CleanTables() {
	tdb.t.Helper()

	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public'
		AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	require.NoError(tdb.t, err, "Failed to get table names")

	for _, table := range tables {
		err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error
		require.NoError(tdb.t, err, "Failed to truncate %s", table)
	}
}

// CleanupSharedContainer terminates the shared container; call it from TestMain
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()

	if sharedContainer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = sharedContainer.Terminate(ctx)
		sharedContainer = nil
	}
}
