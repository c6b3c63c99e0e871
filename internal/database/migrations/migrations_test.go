package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"operations", "operation_databases", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if !errors.Is(err, ErrNoVersion) {
		t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNoVersion", err)
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Migrate up
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Status should be OK now
	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestLatestVersion(t *testing.T) {
	got, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if got != 2 {
		t.Errorf("LatestVersion() = %d, want 2", got)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Run migration twice
	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	// Status should still be OK
	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// operation_databases rows must point at an existing operation
	_, err := db.Exec(`
		INSERT INTO operation_databases (operation_id, db_path)
		VALUES (42, 'blastdb/id-1')
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_Operations(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	res, err := db.Exec("INSERT INTO operations (operation, started_at) VALUES ('Search', datetime('now'))")
	if err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("LastInsertId() error: %v", err)
	}

	var status, parameters string
	err = db.QueryRow("SELECT status, parameters FROM operations WHERE id = ?", id).Scan(&status, &parameters)
	if err != nil {
		t.Fatalf("Failed to retrieve operation: %v", err)
	}

	if status != "running" {
		t.Errorf("default status = %q, want %q", status, "running")
	}
	if parameters != "" {
		t.Errorf("default parameters = %q, want empty", parameters)
	}
}

func TestSchema_OperationDatabasesCascade(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	if _, err := db.Exec("INSERT INTO operations (id, operation, started_at) VALUES (1, 'MakeDatabase', datetime('now'))"); err != nil {
		t.Fatalf("Failed to insert operation: %v", err)
	}
	if _, err := db.Exec("INSERT INTO operation_databases (operation_id, db_path) VALUES (1, 'blastdb/id-1')"); err != nil {
		t.Fatalf("Failed to insert operation database: %v", err)
	}
	if _, err := db.Exec("DELETE FROM operations WHERE id = 1"); err != nil {
		t.Fatalf("Failed to delete operation: %v", err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM operation_databases").Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	if n != 0 {
		t.Errorf("operation_databases rows = %d after delete, want 0", n)
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
