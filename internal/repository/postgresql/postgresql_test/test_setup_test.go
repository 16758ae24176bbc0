package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds the connection used by the integration tests.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the schema.
// ok is false when the variable is unset so callers can skip.
func NewTestDatabase(ctx context.Context) (setup *TestDatabaseSetup, ok bool, err error) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		return nil, false, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4, MinConns: 1})
	if err != nil {
		return nil, true, fmt.Errorf("failed to connect to test database: %w", err)
	}

	schema, err := os.ReadFile(filepath.Join("..", "..", "..", "..", "migrations", "0001_attendance_events.sql"))
	if err != nil {
		db.Close()
		return nil, true, fmt.Errorf("failed to read schema: %w", err)
	}
	if _, err := db.Exec(ctx, string(schema)); err != nil {
		db.Close()
		return nil, true, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &TestDatabaseSetup{DB: db}, true, nil
}

// TruncateAllTables removes all rows touched by the tests.
func (t *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := t.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"attendance_events",
		"devices",
		"employees",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

func (t *TestDatabaseSetup) Close() {
	t.DB.Close()
}
