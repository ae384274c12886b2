package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testDatabaseName = "ledger_test"

var testDB *gorm.DB

// TestMain runs the store suite against TEST_DB_HOST when set, otherwise against a throwaway container
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn, teardown, err := testDatabaseDSN(ctx)
	if err != nil {
		fmt.Printf("Failed to provision test database: %v\n", err)
		os.Exit(1)
	}

	testDB, err = openTestDatabase(dsn)
	if err != nil {
		fmt.Printf("Failed to prepare test database: %v\n", err)
		teardown()
		os.Exit(1)
	}

	code := m.Run()
	teardown()
	os.Exit(code)
}

func testDatabaseDSN(ctx context.Context) (string, func(), error) {
	if host := os.Getenv("TEST_DB_HOST"); host != "" {
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host,
			envOr("TEST_DB_PORT", "5432"),
			envOr("TEST_DB_USER", "postgres"),
			envOr("TEST_DB_PASSWORD", "postgres"),
			envOr("TEST_DB_NAME", testDatabaseName),
		)
		fmt.Printf("Using external database at %s\n", host)
		return dsn, func() {}, nil
	}

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase(testDatabaseName),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to start PostgreSQL container: %w", err)
	}

	teardown := func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate PostgreSQL container: %v\n", err)
		}
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		teardown()
		return "", nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	return dsn, teardown, nil
}

func openTestDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// initPGTestDB scopes each test to a transaction that is rolled back on cleanup
func initPGTestDB(t *testing.T) Store {
	tx := testDB.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() {
		tx.Rollback()
	})

	return NewPGStore(tx)
}

func TestPostgreSQLStore(t *testing.T) {
	require.NotNil(t, testDB, "test database not initialized")

	RunStoreTests(t, initPGTestDB)
}
