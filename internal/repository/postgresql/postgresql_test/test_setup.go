package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/cmlabs-hris/workforce-sync-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

const schemaPath = "../../../../db/schema.sql"

var syncTables = []string{
	"import_logs",
	"sync_sources",
	"attendances",
	"manager_assignments",
	"employees",
	"departments",
	"designations",
	"org_units",
	"time_policies",
}

// newTestDB connects to TEST_DATABASE_URL, applies the schema and truncates the
// sync tables. Tests are skipped when no database is configured.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.NewPostgreSQLDB(ctx, dsn, database.PoolConfig{MaxConns: 4})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	require.NoError(t, truncate(ctx, db))
	return db
}

func truncate(ctx context.Context, db *database.DB) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, table := range syncTables {
		if _, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
