package testutil

import (
	"testing"

	"blastkit/internal/blast"
	"blastkit/internal/database"
)

// NewTestStore creates a migrated in-memory operation journal.
// The database is automatically closed when the test completes.
func NewTestStore(t *testing.T, clock blast.Clock) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:", clock)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := db.Migrate(); err != nil {
		db.Close()
		t.Fatalf("failed to migrate database: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
	})

	return db
}
